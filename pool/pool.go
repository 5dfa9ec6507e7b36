// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pool implements the ref-counted pool that backs every
// control-to-audio hand-off that must be reclaimed without ever freeing on
// the audio thread.
//
// An object is "available" exactly when its reference count is 1 — only the
// pool itself holds it. Allocate finds (or creates) such an object; a
// Handle's Acquire/Release move the count up and down. Decrementing to 1 is
// a wait-free atomic op and is the only thing that ever happens on the
// audio thread; actual destruction never happens at all here — entries live
// for the pool's lifetime and are simply recycled once their count falls
// back to 1.
//
// This mirrors the teacher queue package's use of code.hybscloud.com/atomix
// for every piece of cross-thread state: a Handle's count is an atomix.Int64
// exactly the way an MPSC queue's draining flag is an atomix.Bool.
package pool

import (
	"sync"
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// Handle is a reference-counted slot holding one pooled object of type T.
// The pool always holds one implicit reference (hence "available" means
// count==1, not count==0); Acquire/Release manage any additional holders.
type Handle[T any] struct {
	count atomix.Int64
	value T
}

// NewHandle wraps v in a standalone Handle with an initial reference count
// of 1 (owned by whichever container holds it). Used by containers, such as
// resource.Map, that manage their own entries directly rather than through
// a RefCounted pool.
func NewHandle[T any](v T) *Handle[T] {
	h := &Handle[T]{value: v}
	h.count.StoreRelaxed(1)
	return h
}

// Value returns a pointer to the object held by h. Callers that Acquired h
// must not retain the returned pointer past their matching Release.
func (h *Handle[T]) Value() *T { return &h.value }

// Acquire increments h's reference count and returns h for chaining. Safe to
// call from the audio thread; wait-free, lock-free, allocation-free.
func (h *Handle[T]) Acquire() *Handle[T] {
	h.count.AddAcqRel(1)
	return h
}

// Release decrements h's reference count. Safe to call from the audio
// thread. The pool's own implicit reference means Release never needs to
// free anything: the lowest a correctly used Handle's count ever reaches is
// 1, at which point Allocate may hand it out again.
func (h *Handle[T]) Release() {
	h.count.AddAcqRel(-1)
}

// available reports whether h is held only by the pool (count == 1).
func (h *Handle[T]) available() bool {
	return h.count.LoadAcquire() == 1
}

// Available reports whether h is currently unreferenced by anyone but its
// owning container (reference count == 1). Exported so other packages
// (resource.Map's prune, graphhost's garbage sweep) can build their own
// reclaim-on-count-1 containers directly on top of Handle.
func (h *Handle[T]) Available() bool { return h.available() }

// Refs returns h's current reference count. Advisory: by the time the
// caller observes it, a concurrent Acquire/Release may have changed it.
func (h *Handle[T]) Refs() int64 { return h.count.LoadAcquire() }

// RefCounted is a pool of pre-allocated Handle[T] objects. New objects are
// created via newFn and start with a reference count of 1 (owned by the
// pool alone, i.e. available).
//
// The live handle list is published through an atomic pointer snapshot
// rather than guarded by a mutex, so AllocateRT can linear-scan it from the
// audio thread without ever locking: only Allocate (control thread only)
// grows the list, by publishing a new snapshot slice, never mutating the
// one a concurrent reader might be scanning.
type RefCounted[T any] struct {
	mu       sync.Mutex // serializes growth; control thread only
	newFn    func() T
	snapshot atomic.Pointer[[]*Handle[T]]
}

// New creates an empty ref-counted pool. newFn constructs a fresh T whenever
// Allocate must grow the pool; the returned T's contents are not assumed to
// be zeroed — callers must overwrite before handing a freshly dealt-out
// object to the audio thread.
func New[T any](newFn func() T) *RefCounted[T] {
	return &RefCounted[T]{newFn: newFn}
}

func (p *RefCounted[T]) scan() *Handle[T] {
	cur := p.snapshot.Load()
	if cur == nil {
		return nil
	}
	for _, h := range *cur {
		if h.available() {
			return h
		}
	}
	return nil
}

// Allocate returns the first handle whose reference count is 1, creating
// and appending a new one if none is available. This is the non-realtime
// path: it may allocate. Never call Allocate from the audio thread.
func (p *RefCounted[T]) Allocate() *Handle[T] {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h := p.scan(); h != nil {
		return h
	}

	h := &Handle[T]{value: p.newFn()}
	h.count.StoreRelaxed(1)

	cur := p.snapshot.Load()
	next := make([]*Handle[T], 0, len(derefOrNil(cur))+1)
	next = append(next, derefOrNil(cur)...)
	next = append(next, h)
	p.snapshot.Store(&next)
	return h
}

// AllocateRT is the realtime-safe variant of Allocate: it never grows the
// pool and never allocates. If no handle is available it returns fallback
// instead, so a caller on the audio thread always gets a non-nil handle to
// write into, even if that handle is shared and must be discarded rather
// than published.
func (p *RefCounted[T]) AllocateRT(fallback *Handle[T]) *Handle[T] {
	if h := p.scan(); h != nil {
		return h
	}
	return fallback
}

// Len returns the number of handles currently tracked by the pool,
// available or not. Advisory only, like lfq's queue Cap/size reporting.
func (p *RefCounted[T]) Len() int {
	return len(derefOrNil(p.snapshot.Load()))
}

func derefOrNil[T any](p *[]*Handle[T]) []*Handle[T] {
	if p == nil {
		return nil
	}
	return *p
}
