// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package builtin

import (
	"sync/atomic"

	"code.hybscloud.com/graphcore/graphnode"
	"code.hybscloud.com/graphcore/pool"
	"code.hybscloud.com/graphcore/resource"
	"code.hybscloud.com/graphcore/status"
	"code.hybscloud.com/graphcore/value"
)

// Sample plays a single immutable shared buffer sequentially, starting at
// index 0, holding silence once exhausted. Its "resource" property names
// the buffer in the shared resource map (spec §2.4/§4.4); SetProperty
// Acquires that buffer's handle so resource.Map.Prune cannot reclaim it
// while Sample still references it.
type Sample struct {
	handle  *pool.Handle[resource.Buffer]
	current atomic.Pointer[resource.Buffer]
	cursor  int // audio-thread only
}

// NewSample satisfies graphnode.Factory.
func NewSample(sampleRate float64, blockSize int) graphnode.GraphNode {
	return &Sample{}
}

func (s *Sample) SetProperty(key string, v value.Value, res *resource.Map) status.Code {
	if key != "resource" {
		return status.Ok
	}
	name, ok := v.AsString()
	if !ok {
		return status.InvalidPropertyType
	}
	h, found := res.Get(name)
	if !found {
		return status.InvalidPropertyValue
	}
	h.Acquire()
	buf := h.Value()
	s.current.Store(buf)
	if s.handle != nil {
		s.handle.Release()
	}
	s.handle = h
	s.cursor = 0
	return status.Ok
}

func (s *Sample) Process(ctx *graphnode.BlockContext) {
	bufPtr := s.current.Load()
	if bufPtr == nil {
		for i := range ctx.Output {
			ctx.Output[i] = 0
		}
		return
	}
	buf := *bufPtr
	n := buf.Len()
	for i := range ctx.Output {
		if s.cursor < n {
			ctx.Output[i] = float32(buf.At(s.cursor))
			s.cursor++
		} else {
			ctx.Output[i] = 0
		}
	}
}

func (s *Sample) ProcessEvents(emit graphnode.EventEmitter) {}

// Reset rewinds playback to the start of the referenced buffer.
func (s *Sample) Reset() {
	s.cursor = 0
}

// Close releases the acquired resource handle, satisfying
// graphnode.Closer. Called by the host's garbage sweep once this node
// itself is no longer referenced, so a deleted Sample doesn't hold its
// backing buffer alive forever.
func (s *Sample) Close() {
	if s.handle != nil {
		s.handle.Release()
		s.handle = nil
	}
}
