// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package builtin

import (
	"sync/atomic"

	"code.hybscloud.com/graphcore/graphnode"
	"code.hybscloud.com/graphcore/resource"
	"code.hybscloud.com/graphcore/status"
	"code.hybscloud.com/graphcore/value"
)

// TapOut copies its input through to its own output unchanged, and also
// buffers it internally so that, once all root subsequences have executed
// for the block, the render sequence can call PromoteTap to publish that
// buffer into the shared mutable resource map under TapOut's "name"
// property (spec §4.7's one-block-delayed feedback protocol).
//
// "name" is handed across threads as an atomic pointer to the destination
// slice rather than behind a lock: SetProperty (control thread) resolves
// the shared buffer once and publishes the pointer; PromoteTap (audio
// thread) only ever Loads it.
type TapOut struct {
	blockSize int
	scratch   []float32
	dest      atomic.Pointer[[]float32]
}

// NewTapOut satisfies graphnode.Factory.
func NewTapOut(sampleRate float64, blockSize int) graphnode.GraphNode {
	return &TapOut{blockSize: blockSize, scratch: make([]float32, blockSize)}
}

func (t *TapOut) SetProperty(key string, v value.Value, res *resource.Map) status.Code {
	if key != "name" {
		return status.Ok
	}
	name, ok := v.AsString()
	if !ok {
		return status.InvalidPropertyType
	}
	h := res.GetOrCreateMutable(name, t.blockSize)
	t.dest.Store(h.Value())
	return status.Ok
}

func (t *TapOut) Process(ctx *graphnode.BlockContext) {
	if len(ctx.Inputs) == 0 {
		for i := range ctx.Output {
			ctx.Output[i] = 0
			t.scratch[i] = 0
		}
		return
	}
	in := ctx.Inputs[0]
	copy(ctx.Output, in)
	copy(t.scratch, in)
}

// PromoteTap implements graphnode.TapPromoter. It copies this block's input
// into the shared mutable buffer resolved by the last "name" SetProperty,
// so the matching TapIn observes it starting next block.
func (t *TapOut) PromoteTap(res *resource.Map) {
	dst := t.dest.Load()
	if dst == nil {
		return
	}
	copy(*dst, t.scratch)
}

func (t *TapOut) ProcessEvents(emit graphnode.EventEmitter) {}

func (t *TapOut) Reset() {
	for i := range t.scratch {
		t.scratch[i] = 0
	}
}

// TapIn reads the shared mutable buffer published by the matching TapOut's
// most recent PromoteTap. SetProperty resolves the slot with
// resource.Map.GetOrCreateMutable, so TapIn and TapOut share one buffer
// whichever of them names it first; until a TapOut promotes into it the
// buffer is zero-initialized and TapIn emits silence.
type TapIn struct {
	blockSize int
	src       atomic.Pointer[[]float32]
}

// NewTapIn satisfies graphnode.Factory.
func NewTapIn(sampleRate float64, blockSize int) graphnode.GraphNode {
	return &TapIn{blockSize: blockSize}
}

func (t *TapIn) SetProperty(key string, v value.Value, res *resource.Map) status.Code {
	if key != "name" {
		return status.Ok
	}
	name, ok := v.AsString()
	if !ok {
		return status.InvalidPropertyType
	}
	h := res.GetOrCreateMutable(name, t.blockSize)
	t.src.Store(h.Value())
	return status.Ok
}

func (t *TapIn) Process(ctx *graphnode.BlockContext) {
	src := t.src.Load()
	if src == nil {
		for i := range ctx.Output {
			ctx.Output[i] = 0
		}
		return
	}
	copy(ctx.Output, *src)
}

func (t *TapIn) ProcessEvents(emit graphnode.EventEmitter) {}

func (t *TapIn) Reset() {}
