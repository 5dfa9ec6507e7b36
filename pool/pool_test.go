// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pool_test

import (
	"testing"

	"code.hybscloud.com/graphcore/pool"
)

func TestAllocateGrowsWhenNoneAvailable(t *testing.T) {
	calls := 0
	p := pool.New(func() int {
		calls++
		return calls
	})

	h1 := p.Allocate()
	h2 := p.Allocate()
	if h1 == h2 {
		t.Fatal("Allocate returned the same handle twice while both were in use")
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
}

func TestAllocateRecyclesOnceReleased(t *testing.T) {
	p := pool.New(func() int { return 0 })

	h1 := p.Allocate()
	h1.Acquire()
	h1.Release()

	h2 := p.Allocate()
	if h1 != h2 {
		t.Fatal("Allocate did not recycle a handle whose count returned to 1")
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (no growth should have been needed)", p.Len())
	}
}

func TestAllocateRTNeverGrows(t *testing.T) {
	p := pool.New(func() int { return 0 })
	h1 := p.Allocate()
	h1.Acquire() // mark unavailable

	fallback := &pool.Handle[int]{}
	got := p.AllocateRT(fallback)
	if got != fallback {
		t.Fatal("AllocateRT returned a handle when none was available; want the fallback")
	}
	if p.Len() != 1 {
		t.Fatalf("AllocateRT grew the pool: Len() = %d, want 1", p.Len())
	}
}

func TestAllocateRTFindsAvailableHandle(t *testing.T) {
	p := pool.New(func() int { return 0 })
	h1 := p.Allocate()

	got := p.AllocateRT(nil)
	if got != h1 {
		t.Fatal("AllocateRT did not find the one available handle")
	}
}

func TestStaleContentMustBeOverwritten(t *testing.T) {
	p := pool.New(func() []float32 { return make([]float32, 4) })
	h := p.Allocate()
	buf := h.Value()
	(*buf)[0] = 42
	h.Acquire()
	h.Release()

	h2 := p.Allocate()
	if h2 != h {
		t.Fatal("expected recycled handle")
	}
	if (*h2.Value())[0] != 42 {
		t.Fatal("recycled handle lost its stale content unexpectedly; this test documents that callers, not the pool, must overwrite")
	}
}
