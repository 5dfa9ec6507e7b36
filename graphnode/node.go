// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package graphnode defines the uniform GraphNode contract every node
// variant implements (spec §4.2), plus the small built-in node set needed
// to exercise the protocols this core is responsible for (§4.2.2). The
// full DSP catalog — filters, oscillators, samplers, pitch-stretchers,
// sequencers — is out of scope; see the builtin subpackage for what is
// implemented and why.
//
// The contract is a capability set, not an inheritance hierarchy (spec §9):
// a closed four-method interface plus three optional capability interfaces,
// mirroring the teacher's own preference for small, flat interfaces
// (Producer/Consumer in lfq) over deep type hierarchies.
package graphnode

import (
	"code.hybscloud.com/graphcore/resource"
	"code.hybscloud.com/graphcore/status"
	"code.hybscloud.com/graphcore/value"
)

// BlockContext bundles one Process call's input/output pointers and sample
// count. Channel data is non-interleaved, matching the audio callback
// surface in spec §6.
type BlockContext struct {
	// Inputs holds one scratch-buffer slice per child, in edge-table
	// order. A node with zero children sees an empty (not nil-panicking)
	// slice of slices.
	Inputs [][]float32
	// Output is the node's own scratch buffer; Process must write
	// exactly len(Output) samples to it.
	Output []float32
	// NumSamples is len(Output); carried separately because nodes that
	// never touch Inputs still need the block length to write silence.
	NumSamples int
	// UserData is the opaque pointer passed through from the host's
	// Process entry point (spec §6's "opaque user pointer").
	UserData any
}

// EventEmitter publishes one (kind, payload) event, per spec §6's event
// wire format. kind is one of the catalog's known kinds ("meter",
// "snapshot", "scope", "capture", ...) or a caller-defined string.
type EventEmitter func(kind string, payload value.Value)

// GraphNode is the uniform per-node interface every node variant
// implements. Implementations must satisfy the silent-degradation rule in
// spec §7: when required input channels are missing, Process must write
// zeros rather than read out of bounds.
type GraphNode interface {
	// SetProperty stores or applies a property change. Runs on the
	// control thread; may allocate; may enqueue messages for the audio
	// thread. Must never block the audio thread. Unknown property names
	// are silently stored (status.Ok); invalid types/values return
	// status.InvalidPropertyType / status.InvalidPropertyValue.
	SetProperty(key string, v value.Value, res *resource.Map) status.Code

	// Process renders one block. Runs on the audio thread: no
	// allocation, no blocking, no file I/O. Must write exactly
	// ctx.NumSamples samples to ctx.Output.
	Process(ctx *BlockContext)

	// ProcessEvents drains any analyzer/event queues accumulated during
	// recent Process calls and publishes them via emit. Runs on the
	// control thread.
	ProcessEvents(emit EventEmitter)

	// Reset restores transient state (readers, delays, sequencer
	// position) to initial values. Control-thread-visible; the node
	// decides how. Per spec §9's resolved Open Question: if a node can
	// also receive a "trigger" signal via SetProperty, a Reset requested
	// in the same instruction batch as a trigger wins — the node starts
	// the next block from its reset state and only then begins honoring
	// the trigger from index 0.
	Reset()
}

// PropertyReader is an optional capability for nodes that want their
// stored properties visible to Runtime.Snapshot. Not required by the core.
type PropertyReader interface {
	Properties() map[string]value.Value
}

// Factory constructs a new GraphNode instance for a registered type name.
// sampleRate and blockSize are fixed for the runtime's lifetime.
type Factory func(sampleRate float64, blockSize int) GraphNode

// TapPromoter is an optional capability implemented by TapOut-shaped nodes
// (spec §4.7). After all root subsequences have executed for a block, the
// render sequence visits every node in the current sequence that implements
// TapPromoter, in root order, and calls PromoteTap so it can copy its
// internal scratch delay buffer into the shared mutable resource buffer of
// the matching name. PromoteTap runs on the audio thread, at the end of the
// same RenderSequence.Process call that ran every root — not on the control
// thread — since it is part of finishing the same block, not a later
// diagnostic drain.
type TapPromoter interface {
	PromoteTap(res *resource.Map)
}

// Closer is an optional capability for nodes holding a reference into the
// shared resource map or another external handle (e.g. Sample's acquired
// resource.Map buffer handle) that must be released once the node itself
// becomes unreachable. The host's garbage sweep calls Close exactly once,
// on the control thread, the moment a deleted node's handle falls back to
// available — spec §9's "destruction ... happens later on the control
// thread when the pool sweeps for count==1 objects", generalized from
// pool objects to node-held external references.
type Closer interface {
	Close()
}

