// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package resource implements the shared resource map: the process-scope
// table of immutable named sample buffers and mutable named feedback-tap
// buffers that graph nodes reference by name.
package resource

// Buffer is a read-only sample buffer inserted into the immutable section
// of a Map. Either precision a node might want to ingest — f32 or f64, per
// spec §3 — satisfies Buffer; the render path itself is always float32
// (spec §6), so f64 buffers are converted at the point a node reads them,
// not at insertion.
type Buffer interface {
	// Len returns the number of samples in the buffer.
	Len() int
	// At returns the sample at index i, widened to float64 for f32
	// buffers so callers have one numeric type to reason about before
	// narrowing back down to float32 for the render path.
	At(i int) float64
}

// Float32Buffer adapts a []float32 to Buffer.
type Float32Buffer []float32

func (b Float32Buffer) Len() int          { return len(b) }
func (b Float32Buffer) At(i int) float64  { return float64(b[i]) }

// Float64Buffer adapts a []float64 to Buffer.
type Float64Buffer []float64

func (b Float64Buffer) Len() int         { return len(b) }
func (b Float64Buffer) At(i int) float64 { return b[i] }

// CopyCastInto narrows src into dst as float32, narrowing f64 samples where
// needed. len(dst) samples are written, or len(src) if shorter; any
// remaining tail of dst is left untouched so callers typically zero dst
// first. Grounded on elem::util::copy_cast_n
// (original_source/runtime/elem/builtins/helpers/BufferUtils.h), adapted
// into the two-precision Buffer interface used here.
func CopyCastInto(dst []float32, src Buffer) {
	n := len(dst)
	if src.Len() < n {
		n = src.Len()
	}
	for i := 0; i < n; i++ {
		dst[i] = float32(src.At(i))
	}
}
