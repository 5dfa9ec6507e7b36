// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package render implements the render-sequence build/publish pipeline
// (spec §4.5–§4.7): a bump-style scratch allocator, the per-root crossfade
// wrapper, and the post-order DFS build algorithm that compiles a graph's
// current topology into a linear schedule of node.Process calls.
package render

// chunkBlocks is the default number of block-sized scratch buffers a single
// allocation chunk holds, per spec §4.5 step 2. graphhost.WithScratchChunkBlocks
// overrides this via NewScratchAllocatorSize.
const chunkBlocks = 32

// ScratchAllocator hands out block-sized []float32 scratch buffers from
// pre-allocated chunks, growing by one chunk on exhaustion. It is a
// control-thread-only, non-realtime bump allocator: Build calls Reset once
// per rebuild and then Alloc once per node visited, never freeing
// individual buffers — the whole chunk set is simply reused (via Reset)
// across builds, and grows only when a build visits more nodes than any
// previous one.
type ScratchAllocator struct {
	blockSize int
	chunkSize int
	chunks    [][]float32 // each chunk is chunkSize*blockSize contiguous
	pos       int         // next block index to hand out, across all chunks
}

// NewScratchAllocator creates an allocator that hands out blockSize-length
// buffers, growing in the default chunkBlocks-sized increments.
func NewScratchAllocator(blockSize int) *ScratchAllocator {
	return NewScratchAllocatorSize(blockSize, chunkBlocks)
}

// NewScratchAllocatorSize is NewScratchAllocator with an explicit chunk
// granularity, for callers (graphhost.WithScratchChunkBlocks) that want to
// tune the grow-by-one-chunk increment.
func NewScratchAllocatorSize(blockSize, chunkBlocks int) *ScratchAllocator {
	if chunkBlocks < 1 {
		chunkBlocks = 1
	}
	return &ScratchAllocator{blockSize: blockSize, chunkSize: chunkBlocks}
}

// Reset rewinds the allocator to the start of its first chunk. Call once at
// the start of each Build.
func (a *ScratchAllocator) Reset() {
	a.pos = 0
}

// Alloc returns the next block-sized scratch buffer, growing by one chunk
// of chunkSize buffers if the current chunk set is exhausted.
func (a *ScratchAllocator) Alloc() []float32 {
	chunkIdx := a.pos / a.chunkSize
	offset := a.pos % a.chunkSize
	for chunkIdx >= len(a.chunks) {
		a.chunks = append(a.chunks, make([]float32, a.chunkSize*a.blockSize))
	}
	buf := a.chunks[chunkIdx][offset*a.blockSize : (offset+1)*a.blockSize]
	a.pos++
	return buf
}

// Chunks reports how many chunks the allocator has grown to. Advisory,
// used by tests and diagnostics only.
func (a *ScratchAllocator) Chunks() int { return len(a.chunks) }
