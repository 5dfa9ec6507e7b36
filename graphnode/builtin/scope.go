// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package builtin

import (
	"sync/atomic"

	"code.hybscloud.com/graphcore/graphnode"
	"code.hybscloud.com/graphcore/resource"
	"code.hybscloud.com/graphcore/ringbuffer"
	"code.hybscloud.com/graphcore/status"
	"code.hybscloud.com/graphcore/value"
)

const (
	scopeMinSize = 256
	scopeMaxSize = 8192
)

// Scope passes its input through unchanged while also mirroring it into a
// lock-free capture ring (ringbuffer.Multi), and on ProcessEvents publishes
// the most recent window as a "scope" event whose payload's "source" field
// mirrors Scope's own "name" property. "size" must be an integer in
// [256, 8192]; it is the only built-in node in this catalog that emits
// events, so it is the one example built against ringbuffer.Multi and the
// event-emission half of the GraphNode contract.
type Scope struct {
	name  atomic.Pointer[string]
	ring  atomic.Pointer[ringbuffer.Multi]
	props map[string]value.Value // control-thread only; backs Properties()
}

// NewScope satisfies graphnode.Factory.
func NewScope(sampleRate float64, blockSize int) graphnode.GraphNode {
	s := &Scope{props: make(map[string]value.Value)}
	empty := ""
	s.name.Store(&empty)
	return s
}

func (s *Scope) SetProperty(key string, v value.Value, res *resource.Map) status.Code {
	switch key {
	case "name":
		name, ok := v.AsString()
		if !ok {
			return status.InvalidPropertyType
		}
		s.name.Store(&name)
		s.props[key] = v.Clone()
		return status.Ok
	case "size":
		n, ok := v.AsNumber()
		if !ok {
			return status.InvalidPropertyType
		}
		size := int(n)
		if float64(size) != n || size < scopeMinSize || size > scopeMaxSize {
			return status.InvalidPropertyValue
		}
		s.ring.Store(ringbuffer.NewMulti(1, size))
		s.props[key] = v.Clone()
		return status.Ok
	default:
		return status.Ok
	}
}

// Properties satisfies graphnode.PropertyReader, for Runtime.Snapshot.
func (s *Scope) Properties() map[string]value.Value {
	out := make(map[string]value.Value, len(s.props))
	for k, v := range s.props {
		out[k] = v
	}
	return out
}

func (s *Scope) Process(ctx *graphnode.BlockContext) {
	var in []float32
	if len(ctx.Inputs) > 0 {
		in = ctx.Inputs[0]
	}
	if in == nil {
		for i := range ctx.Output {
			ctx.Output[i] = 0
		}
	} else {
		copy(ctx.Output, in)
	}
	if r := s.ring.Load(); r != nil {
		r.Write(0, ctx.Output)
	}
}

func (s *Scope) ProcessEvents(emit graphnode.EventEmitter) {
	r := s.ring.Load()
	if r == nil {
		return
	}
	samples := r.Snapshot(0)
	name := ""
	if p := s.name.Load(); p != nil {
		name = *p
	}
	payload := value.ObjectValue(value.NewObject().
		Set("source", value.String(name)).
		Set("samples", value.Float32Array(samples)))
	emit("scope", payload)
}

func (s *Scope) Reset() {}
