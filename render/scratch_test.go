// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package render_test

import (
	"testing"

	"code.hybscloud.com/graphcore/render"
)

func TestScratchAllocatorAssignsDistinctBuffers(t *testing.T) {
	a := render.NewScratchAllocator(8)
	b1 := a.Alloc()
	b2 := a.Alloc()
	if len(b1) != 8 || len(b2) != 8 {
		t.Fatalf("Alloc length = %d,%d want 8,8", len(b1), len(b2))
	}
	b1[0] = 1
	if b2[0] != 0 {
		t.Fatal("distinct Alloc calls returned overlapping buffers")
	}
}

func TestScratchAllocatorGrowsByChunk(t *testing.T) {
	a := render.NewScratchAllocator(4)
	for i := 0; i < 33; i++ {
		a.Alloc()
	}
	if a.Chunks() != 2 {
		t.Fatalf("Chunks() = %d, want 2 after exhausting the first 32-block chunk", a.Chunks())
	}
}

func TestScratchAllocatorResetReusesChunks(t *testing.T) {
	a := render.NewScratchAllocator(4)
	for i := 0; i < 40; i++ {
		a.Alloc()
	}
	chunksAfterFirstBuild := a.Chunks()
	a.Reset()
	for i := 0; i < 40; i++ {
		a.Alloc()
	}
	if a.Chunks() != chunksAfterFirstBuild {
		t.Fatalf("Chunks() grew again on an identical second build: %d vs %d", a.Chunks(), chunksAfterFirstBuild)
	}
}
