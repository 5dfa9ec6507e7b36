// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resource

import (
	"sync"

	"code.hybscloud.com/graphcore/pool"
)

// Map holds two sub-maps: an immutable section of named, read-only sample
// buffers, and a mutable section of named, writable block-sized tap
// buffers used by the TapOut/TapIn feedback protocol.
//
// Both sections are keyed by string and reference-counted via
// pool.Handle, the same "available iff count==1" container used for
// render-sequence recycling — insertion hands out one held by the map (the
// map's own reference) that only ever reaches count==1 again once no live
// graph node still holds it.
//
// The audio thread never calls into Map directly: by the time a render
// sequence is built, every node that reads a shared resource already holds
// a direct pointer to the buffer baked in at build time (§5: the audio
// thread never acquires a lock). Map's mutex therefore only ever contends
// between control-thread callers (insert, prune, get-or-create-mutable).
type Map struct {
	mu        sync.RWMutex
	immutable map[string]*pool.Handle[Buffer]
	mutable   map[string]*pool.Handle[[]float32]
}

// New returns an empty shared resource map.
func New() *Map {
	return &Map{
		immutable: make(map[string]*pool.Handle[Buffer]),
		mutable:   make(map[string]*pool.Handle[[]float32]),
	}
}

// Insert adds buf under name to the immutable section. Insert never
// overwrites: if name already exists, Insert returns false and leaves the
// existing entry untouched.
func (m *Map) Insert(name string, buf Buffer) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.immutable[name]; exists {
		return false
	}
	m.immutable[name] = pool.NewHandle(buf)
	return true
}

// Get returns the handle holding name's immutable buffer. The caller
// should Acquire the handle before handing it to a render sequence, and
// Release it once the referencing node is retired, so that Prune can later
// reclaim the entry.
func (m *Map) Get(name string) (*pool.Handle[Buffer], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.immutable[name]
	return h, ok
}

// Prune removes every immutable entry whose reference count has fallen
// back to 1 (held only by the map itself).
func (m *Map) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, h := range m.immutable {
		if h.Available() {
			delete(m.immutable, name)
		}
	}
}

// Keys returns the immutable section's names. Values are never exposed by
// this method; callers must use Get.
func (m *Map) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.immutable))
	for k := range m.immutable {
		out = append(out, k)
	}
	return out
}

// GetOrCreateMutable returns the existing mutable tap buffer named name, or
// creates a new zero-initialized one of blockSize samples on first request.
func (m *Map) GetOrCreateMutable(name string, blockSize int) *pool.Handle[[]float32] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.mutable[name]; ok {
		return h
	}
	h := pool.NewHandle(make([]float32, blockSize))
	m.mutable[name] = h
	return h
}

// GetMutable returns the mutable tap buffer named name without creating it.
// ok is false if no caller has created it via GetOrCreateMutable yet.
func (m *Map) GetMutable(name string) (*pool.Handle[[]float32], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.mutable[name]
	return h, ok
}
