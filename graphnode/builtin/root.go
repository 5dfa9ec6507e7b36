// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package builtin implements the minimal node catalog the core exercises in
// its own tests (spec §4.2.2): root, const, TapOut, TapIn, sample, SDelay,
// and scope. These are plumbing and diagnostic nodes, not the full DSP
// catalog (filters, oscillators, samplers, sequencers) — that catalog is
// explicitly out of scope, per spec's own Non-goals.
package builtin

import (
	"code.hybscloud.com/graphcore/graphnode"
	"code.hybscloud.com/graphcore/resource"
	"code.hybscloud.com/graphcore/status"
	"code.hybscloud.com/graphcore/value"
)

// Root is the identity/sum node every active root's subgraph is rooted at.
// It has no properties of its own; Process sums its children's scratch
// buffers sample-by-sample. Zero children renders silence.
type Root struct{}

// NewRoot satisfies graphnode.Factory.
func NewRoot(sampleRate float64, blockSize int) graphnode.GraphNode {
	return &Root{}
}

func (r *Root) SetProperty(key string, v value.Value, res *resource.Map) status.Code {
	return status.Ok
}

func (r *Root) Process(ctx *graphnode.BlockContext) {
	for i := range ctx.Output {
		ctx.Output[i] = 0
	}
	for _, in := range ctx.Inputs {
		for i, s := range in {
			ctx.Output[i] += s
		}
	}
}

func (r *Root) ProcessEvents(emit graphnode.EventEmitter) {}

func (r *Root) Reset() {}
