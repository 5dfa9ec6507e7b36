// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package builtin

import (
	"math"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/graphcore/graphnode"
	"code.hybscloud.com/graphcore/resource"
	"code.hybscloud.com/graphcore/status"
	"code.hybscloud.com/graphcore/value"
)

// Const outputs its "value" property, held constant across every sample of
// every block, until SetProperty changes it again. The property is handed
// to the audio thread as float64 bits in an atomix.Uint64 rather than
// behind a lock, the same cross-thread scalar hand-off atomix itself is
// built for.
type Const struct {
	bits atomix.Uint64
}

// NewConst satisfies graphnode.Factory.
func NewConst(sampleRate float64, blockSize int) graphnode.GraphNode {
	c := &Const{}
	c.bits.StoreRelaxed(math.Float64bits(0))
	return c
}

func (c *Const) SetProperty(key string, v value.Value, res *resource.Map) status.Code {
	if key != "value" {
		return status.Ok
	}
	n, ok := v.AsNumber()
	if !ok {
		return status.InvalidPropertyType
	}
	c.bits.StoreRelease(math.Float64bits(n))
	return status.Ok
}

func (c *Const) Process(ctx *graphnode.BlockContext) {
	n := float32(math.Float64frombits(c.bits.LoadAcquire()))
	for i := range ctx.Output {
		ctx.Output[i] = n
	}
}

func (c *Const) ProcessEvents(emit graphnode.EventEmitter) {}

func (c *Const) Reset() {}
