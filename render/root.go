// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package render

import (
	"math"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/graphcore/graphnode"
	"code.hybscloud.com/graphcore/resource"
)

// gainStepPerSecond is the crossfade rate; the per-sample step is
// ±gainStepPerSecond/sampleRate (spec §4.6).
const gainStepPerSecond = 20.0

// gainEpsilon is the convergence tolerance used by StillRunning.
const gainEpsilon = 1e-6

// RootState is a root node's persistent crossfade state: target gain
// (written by the control thread, via ACTIVATE_ROOTS), current gain
// (mutated only by the audio thread), and output channel (written by the
// control thread via the root's "channel" property). It outlives any one
// RenderSequence — rebuilding the graph must not reset an in-flight
// crossfade, so graphhost keeps exactly one RootState per root node across
// rebuilds and simply has each new RenderSequence's RootSequence wrap the
// same RootState pointer.
type RootState struct {
	NodeID      int32
	targetGain  atomix.Uint64 // float64 bits; 0 or 1
	currentGain atomix.Uint64 // float64 bits; audio-thread owned
	channel     atomix.Int32
}

// NewRootState creates a RootState for nodeID with target and current gain
// both starting at 0 and channel 0, matching a freshly created root that
// has not yet been listed in an ACTIVATE_ROOTS instruction.
func NewRootState(nodeID int32) *RootState {
	s := &RootState{NodeID: nodeID}
	s.targetGain.StoreRelaxed(math.Float64bits(0))
	s.currentGain.StoreRelaxed(math.Float64bits(0))
	s.channel.StoreRelaxed(0)
	return s
}

// SetActive sets the target gain to 1 (active) or 0 (fading out). Call only
// from the control thread, in response to ACTIVATE_ROOTS.
func (s *RootState) SetActive(active bool) {
	g := 0.0
	if active {
		g = 1.0
	}
	s.targetGain.StoreRelease(math.Float64bits(g))
}

// Active reports whether this root's target gain is 1. Safe from either
// thread.
func (s *RootState) Active() bool {
	return math.Float64frombits(s.targetGain.LoadAcquire()) >= 0.5
}

// SetChannel sets the output channel this root sums into. Call only from
// the control thread.
func (s *RootState) SetChannel(ch int32) {
	s.channel.StoreRelease(ch)
}

// Channel returns the root's current output channel index.
func (s *RootState) Channel() int32 {
	return s.channel.LoadAcquire()
}

// StillRunning reports whether the audio thread must keep executing this
// root: true while active, or while the current gain has not yet converged
// to the target (spec §4.6).
func (s *RootState) StillRunning() bool {
	target := math.Float64frombits(s.targetGain.LoadAcquire())
	if target >= 0.5 {
		return true
	}
	current := math.Float64frombits(s.currentGain.LoadRelaxed())
	return math.Abs(current-target) > gainEpsilon
}

// nodeClosure is one compiled node.Process call: the node and the
// BlockContext pre-wired to its scratch output and its children's scratch
// buffers, built once at Build time and reused unchanged for every block
// until the next rebuild.
type nodeClosure struct {
	node graphnode.GraphNode
	ctx  *graphnode.BlockContext
}

// RootSequence is the compiled, per-root wrapper around one root's ordered
// node closures (spec §4.6): it gates execution on StillRunning and channel
// range, runs its closures, and additively sums its root node's scratch
// output into the selected output channel with a ramped gain.
type RootSequence struct {
	state      *RootState
	closures   []nodeClosure
	output     []float32 // the root node's own scratch buffer
	taps       []graphnode.TapPromoter
	sampleRate float64
}

// process executes this root's subsequence and sums into outputs, if it is
// still running and its channel is in range. It does not promote taps —
// that happens in a separate pass across all roots, after every root has
// executed for the block (spec §4.7).
func (r *RootSequence) process(outputs [][]float32, numSamples int) {
	ch := int(r.state.Channel())
	if !r.state.StillRunning() || ch < 0 || ch >= len(outputs) {
		return
	}

	for _, nc := range r.closures {
		nc.node.Process(nc.ctx)
	}

	target := math.Float64frombits(r.state.targetGain.LoadAcquire())
	current := math.Float64frombits(r.state.currentGain.LoadRelaxed())
	step := gainStepPerSecond / r.sampleRate

	out := outputs[ch]
	for i := 0; i < numSamples; i++ {
		if current < target {
			current += step
			if current > target {
				current = target
			}
		} else if current > target {
			current -= step
			if current < target {
				current = target
			}
		}
		out[i] += r.output[i] * float32(current)
	}
	r.state.currentGain.StoreRelaxed(math.Float64bits(current))
}

// ClosureLen returns the number of node closures this root's subsequence
// owns. Exposed for diagnostics and tests; most callers want Process, not
// this count.
func (r *RootSequence) ClosureLen() int { return len(r.closures) }

// promoteTaps copies every TapOut node visited while building this root's
// subsequence into the shared resource map, provided this root's target
// gain is >= 0.5 (spec §4.7: "a root whose target gain is < 0.5 does not
// promote").
func (r *RootSequence) promoteTaps(res *resource.Map) {
	if !r.state.Active() {
		return
	}
	for _, t := range r.taps {
		t.PromoteTap(res)
	}
}
