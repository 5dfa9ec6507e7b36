// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ringbuffer implements a lock-free, multi-channel circular buffer
// of audio samples with overwrite-on-full semantics, used by analyzer-shaped
// nodes (scope, meter, capture) to hand the control thread a recent window
// of samples without ever making the audio thread block.
//
// Unlike the teacher's SPSC queue (lfq.SPSC), which refuses to enqueue once
// full, Multi always accepts a Write: it is a lossy ring, not a backpressure
// channel, because an analyzer tap must never cause the producer — the
// audio thread — to stall or fail. The mask-based indexing and cache-line
// padding are the same technique lfq.SPSC uses for its ring; what's
// generalized here is allowing the write cursor to simply lap the read
// cursor instead of refusing to advance.
package ringbuffer

import (
	"code.hybscloud.com/atomix"
)

type channel struct {
	_      [64]byte
	write  atomix.Uint64 // next write index; monotonically increasing
	_      [64]byte
	buffer []float32
	mask   uint64
}

// Multi is a fixed-capacity, per-channel circular buffer of float32 samples.
// Capacity (per channel) rounds up to the next power of 2.
type Multi struct {
	channels []channel
}

// NewMulti creates a Multi with numChannels independent rings, each of the
// given per-channel capacity.
func NewMulti(numChannels, capacity int) *Multi {
	if capacity < 1 {
		panic("ringbuffer: capacity must be >= 1")
	}
	if numChannels < 1 {
		panic("ringbuffer: numChannels must be >= 1")
	}
	n := uint64(roundToPow2(capacity))
	m := &Multi{channels: make([]channel, numChannels)}
	for i := range m.channels {
		m.channels[i].buffer = make([]float32, n)
		m.channels[i].mask = n - 1
	}
	return m
}

// NumChannels returns the number of channels m was constructed with.
func (m *Multi) NumChannels() int { return len(m.channels) }

// Cap returns the per-channel capacity.
func (m *Multi) Cap() int {
	if len(m.channels) == 0 {
		return 0
	}
	return int(m.channels[0].mask + 1)
}

// Write appends samples to channel ch, overwriting the oldest samples once
// the ring is full. Write is the only method safe to call from the audio
// thread; it never blocks and never fails.
func (m *Multi) Write(ch int, samples []float32) {
	c := &m.channels[ch]
	w := c.write.LoadRelaxed()
	for _, s := range samples {
		c.buffer[w&c.mask] = s
		w++
	}
	c.write.StoreRelease(w)
}

// Snapshot copies out channel ch's current window, oldest sample first.
// Snapshot is control-thread only: it is the copying half of the analyzer
// protocol, called from a node's ProcessEvents, never from Process.
func (m *Multi) Snapshot(ch int) []float32 {
	c := &m.channels[ch]
	w := c.write.LoadAcquire()
	n := uint64(len(c.buffer))
	if w < n {
		n = w
	}
	out := make([]float32, n)
	start := w - n
	for i := uint64(0); i < n; i++ {
		out[i] = c.buffer[(start+i)&c.mask]
	}
	return out
}

func roundToPow2(n int) int {
	if n < 2 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
