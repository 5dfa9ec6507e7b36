// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package render

import (
	"code.hybscloud.com/graphcore/graphnode"
	"code.hybscloud.com/graphcore/pool"
	"code.hybscloud.com/graphcore/resource"
)

// RenderSequence is a compiled, linear schedule of node closures grouped
// into one RootSequence per root, in the order Build visited them
// (active roots first, then fading roots). It is shared, via a pool.Handle,
// between the control thread that built it and the audio thread that
// executes it; once fully built it is never mutated, so handing it across
// the publication queue needs no further synchronization beyond the queue
// itself.
type RenderSequence struct {
	roots       []*RootSequence
	resources   *resource.Map
	nodeHandles []*pool.Handle[graphnode.GraphNode]
}

// Release drops this sequence's reference on every node it visited at
// Build time. Call exactly once, once this sequence is permanently
// displaced and before its own pool.Handle is released back to available
// (after that the pool may hand the handle to a new build) — never while
// the audio thread might still execute it.
func (rs *RenderSequence) Release() {
	for _, h := range rs.nodeHandles {
		h.Release()
	}
}

// Process runs every root's subsequence (summing into outputs), then
// promotes every TapOut node visited by a still-active root. Call once per
// audio callback, after adopting the latest published sequence and zeroing
// outputs. Audio-thread only: no allocation.
func (rs *RenderSequence) Process(outputs [][]float32, numSamples int) {
	for _, r := range rs.roots {
		r.process(outputs, numSamples)
	}
	for _, r := range rs.roots {
		r.promoteTaps(rs.resources)
	}
}

// Roots returns the compiled root sequences, in build order. Exposed for
// diagnostics and tests; audio-thread code should use
// Process instead of iterating this directly.
func (rs *RenderSequence) Roots() []*RootSequence { return rs.roots }

// VisitNodes calls fn once for every distinct node visited while this
// sequence was built. graphhost's process_queued_events uses this to drain
// analyzer/event queues for exactly the nodes in the currently active
// sequence (spec §4.8), rather than every live node in the host's table.
func (rs *RenderSequence) VisitNodes(fn func(graphnode.GraphNode)) {
	for _, h := range rs.nodeHandles {
		fn(*h.Value())
	}
}
