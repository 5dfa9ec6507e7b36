// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package builtin

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/graphcore/graphnode"
	"code.hybscloud.com/graphcore/resource"
	"code.hybscloud.com/graphcore/status"
	"code.hybscloud.com/graphcore/value"
)

// SDelay delays its input by an exact, fixed number of samples, "size",
// which must be an integer in [0, blockSize]. size == 0 is a literal
// passthrough; size == blockSize behaves as a one-block delay, matching the
// one-block delay TapOut/TapIn already give the feedback protocol for free
// — SDelay is the general-purpose version a graph can apply anywhere.
type SDelay struct {
	blockSize int
	size      atomix.Int64 // samples; control thread writes, audio thread reads
	buf       []float32    // ring, capacity blockSize+1; audio-thread only
	pos       uint64       // absolute write position; audio-thread only
}

// NewSDelay satisfies graphnode.Factory.
func NewSDelay(sampleRate float64, blockSize int) graphnode.GraphNode {
	return &SDelay{
		blockSize: blockSize,
		buf:       make([]float32, blockSize+1),
	}
}

func (d *SDelay) SetProperty(key string, v value.Value, res *resource.Map) status.Code {
	if key != "size" {
		return status.Ok
	}
	n, ok := v.AsNumber()
	if !ok {
		return status.InvalidPropertyType
	}
	size := int64(n)
	if float64(size) != n || size < 0 || size > int64(d.blockSize) {
		return status.InvalidPropertyValue
	}
	d.size.StoreRelease(size)
	return status.Ok
}

func (d *SDelay) Process(ctx *graphnode.BlockContext) {
	size := uint64(d.size.LoadAcquire())
	bufLen := uint64(len(d.buf))

	var in []float32
	if len(ctx.Inputs) > 0 {
		in = ctx.Inputs[0]
	}

	for i := range ctx.Output {
		var sample float32
		if len(in) > i {
			sample = in[i]
		}
		if size == 0 {
			ctx.Output[i] = sample
		} else {
			readIdx := (d.pos - size + bufLen) % bufLen
			if d.pos >= size {
				ctx.Output[i] = d.buf[readIdx]
			} else {
				ctx.Output[i] = 0
			}
			d.buf[d.pos%bufLen] = sample
		}
		d.pos++
	}
}

func (d *SDelay) ProcessEvents(emit graphnode.EventEmitter) {}

func (d *SDelay) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.pos = 0
}
