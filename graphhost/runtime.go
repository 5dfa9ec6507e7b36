// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package graphhost ties the graph/node/resource/render packages into the
// runtime described in spec §4.8: a control thread mutates the node/edge
// graph by applying batches of wire.Instruction values; an audio thread
// calls Process once per block to render the most recently published
// render.RenderSequence.
//
// Construction uses the functional-options shape
// (New(sampleRate, blockSize, opts...)) since a graph host has a handful of
// independent knobs (logger, queue capacity, pool size, scratch chunk
// size) rather than a single axis to select an algorithm from.
package graphhost

import (
	"log/slog"
	"sort"
	"sync/atomic"

	"code.hybscloud.com/graphcore/graphnode"
	"code.hybscloud.com/graphcore/graphnode/builtin"
	"code.hybscloud.com/graphcore/lfq"
	"code.hybscloud.com/graphcore/pool"
	"code.hybscloud.com/graphcore/render"
	"code.hybscloud.com/graphcore/resource"
	"code.hybscloud.com/graphcore/value"
)

// defaultQueueCapacity is the render-sequence publish queue's capacity
// (rounds up to a power of 2, per lfq.SPSC). One in-flight rebuild plus a
// little slack is all a correctly paced control thread ever needs; a full
// queue just means the previous rebuild hasn't been adopted yet, not an
// error.
const defaultQueueCapacity = 4

// seqHandle is the unit exchanged over the publish queue: a pool handle
// holding the *render.RenderSequence currently owned by that handle slot.
type seqHandle = *pool.Handle[*render.RenderSequence]

// Runtime is one graph host instance. All methods except Process run on
// the control thread, including ProcessEvents and its emit callback;
// Process runs on the audio thread. Concurrent use from more than one control-thread
// goroutine is not supported, matching spec §5.
type Runtime struct {
	sampleRate float64
	blockSize  int
	logger     *slog.Logger

	factories map[string]graphnode.Factory

	nodes      map[int32]*pool.Handle[graphnode.GraphNode]
	garbage    map[int32]*pool.Handle[graphnode.GraphNode]
	children   map[int32][]int32
	rootStates map[int32]*render.RootState

	resources *resource.Map
	scratch   *render.ScratchAllocator
	seqPool   *pool.RefCounted[*render.RenderSequence]
	publish   *lfq.SPSC[seqHandle]

	// active is the most recently adopted sequence, published by Process
	// (audio thread) and read by ProcessEvents (control thread). Plain
	// struct pointer, not a handle: refcounting for the handle backing it
	// is entirely the audio thread's concern (see adopt).
	active atomic.Pointer[render.RenderSequence]

	// current is the handle Process currently holds a reference to.
	// Audio-thread-only: never read or written from the control thread.
	current seqHandle
}

// Option configures a Runtime at construction time.
type Option func(*options)

type options struct {
	logger           *slog.Logger
	queueCapacity    int
	poolSize         int
	scratchChunkSize int
}

// WithLogger sets the *slog.Logger used for control-thread diagnostics
// (instruction failures, node-type registration, garbage-sweep activity).
// Defaults to slog.Default() when unset or nil, mirroring the fallback
// pattern the reference pack's audio pipelines use for the same purpose.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithQueueCapacity sets the render-sequence publish queue's capacity.
// Rounds up to a power of 2; defaults to defaultQueueCapacity.
func WithQueueCapacity(n int) Option {
	return func(o *options) { o.queueCapacity = n }
}

// WithPoolSize pre-warms the render-sequence pool with n handles so the
// first n rebuilds never grow it. Purely a warm-up hint; Allocate still
// grows the pool on demand regardless.
func WithPoolSize(n int) Option {
	return func(o *options) { o.poolSize = n }
}

// WithScratchChunkBlocks overrides the scratch allocator's grow-by-one-chunk
// granularity (default 32 blocks; see render.ScratchAllocator).
func WithScratchChunkBlocks(n int) Option {
	return func(o *options) { o.scratchChunkSize = n }
}

// New creates a Runtime for the given sample rate and block size, with the
// built-in node catalog (graphnode/builtin.Factories) already registered.
func New(sampleRate float64, blockSize int, opts ...Option) *Runtime {
	o := options{queueCapacity: defaultQueueCapacity, scratchChunkSize: 32}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	rt := &Runtime{
		sampleRate: sampleRate,
		blockSize:  blockSize,
		logger:     logger,
		factories:  make(map[string]graphnode.Factory),
		nodes:      make(map[int32]*pool.Handle[graphnode.GraphNode]),
		garbage:    make(map[int32]*pool.Handle[graphnode.GraphNode]),
		children:   make(map[int32][]int32),
		rootStates: make(map[int32]*render.RootState),
		resources:  resource.New(),
		scratch:    render.NewScratchAllocatorSize(blockSize, o.scratchChunkSize),
		seqPool:    pool.New(func() *render.RenderSequence { return nil }),
		publish:    lfq.NewSPSC[seqHandle](o.queueCapacity),
	}
	for name, factory := range builtin.Factories() {
		rt.factories[name] = factory
	}
	if o.poolSize > 0 {
		warm := make([]seqHandle, 0, o.poolSize)
		for i := 0; i < o.poolSize; i++ {
			// Acquire so the next Allocate can't just hand back the same
			// still-available handle; this is what actually forces the
			// pool to grow to poolSize distinct entries.
			warm = append(warm, rt.seqPool.Allocate().Acquire())
		}
		for _, h := range warm {
			h.Release()
		}
	}

	// Seed an empty sequence so Process never sees a nil active sequence
	// before the first COMMIT_UPDATES.
	empty := render.Build(nil, rt.children, rt.nodes, rt.rootStates, rt.blockSize, rt.sampleRate, rt.resources, rt.scratch)
	h := rt.seqPool.Allocate()
	*h.Value() = empty
	h.Acquire()
	rt.current = h
	rt.active.Store(empty)

	return rt
}

// RegisterNodeType extends the catalog with a caller-defined factory,
// overwriting any existing registration under the same name. Control
// thread only.
func (rt *Runtime) RegisterNodeType(name string, factory graphnode.Factory) {
	rt.factories[name] = factory
	rt.logger.Debug("node type registered", "type", name)
}

// UpdateSharedResource inserts an immutable named buffer into the shared
// resource map. Returns false if name already exists (no delete/replace,
// per spec §6).
func (rt *Runtime) UpdateSharedResource(name string, data resource.Buffer) bool {
	return rt.resources.Insert(name, data)
}

// PruneSharedResources removes every immutable shared-resource entry whose
// only remaining holder is the map itself. Also runs the garbage sweep
// first, so a node that acquired a resource handle (e.g. sample) releases
// it as soon as the node itself becomes unreachable, rather than waiting
// for the next instruction batch.
func (rt *Runtime) PruneSharedResources() {
	rt.sweepGarbage()
	rt.resources.Prune()
}

// HasSharedResource reports whether name is currently present in the
// immutable shared resource map. Diagnostic only.
func (rt *Runtime) HasSharedResource(name string) bool {
	_, ok := rt.resources.Get(name)
	return ok
}

// Reset invokes Reset on every live node in the host's table (not just
// those in the currently active sequence), matching spec §4.8's
// unqualified "invokes each node's reset()".
func (rt *Runtime) Reset() {
	for _, h := range rt.nodes {
		(*h.Value()).Reset()
	}
}

// Snapshot returns the full nodeId -> properties mapping for diagnostic
// use. Nodes that don't implement graphnode.PropertyReader contribute an
// empty map rather than being omitted, so callers can tell "no properties
// reported" from "node doesn't exist".
func (rt *Runtime) Snapshot() map[int32]map[string]value.Value {
	out := make(map[int32]map[string]value.Value, len(rt.nodes))
	for id, h := range rt.nodes {
		node := *h.Value()
		if pr, ok := node.(graphnode.PropertyReader); ok {
			out[id] = pr.Properties()
		} else {
			out[id] = map[string]value.Value{}
		}
	}
	return out
}

// ProcessEvents drains the analyzer/event queues of every node in the
// currently active render sequence (spec §4.8), via the sequence as last
// adopted by Process — not the host's full live-node table, since a node
// not yet wired into any activated root has nothing to drain from the
// audio path.
func (rt *Runtime) ProcessEvents(emit graphnode.EventEmitter) {
	seq := rt.active.Load()
	if seq == nil {
		return
	}
	seq.VisitNodes(func(n graphnode.GraphNode) {
		n.ProcessEvents(emit)
	})
}

// Process is the realtime audio callback entry point (spec §6). It zeros
// outputs, adopts the most recently published render sequence (if any),
// and renders one block. Audio-thread only: no allocation, no blocking,
// no locking.
func (rt *Runtime) Process(outputs [][]float32, numSamples int, userData any) {
	for _, ch := range outputs {
		for i := range ch {
			ch[i] = 0
		}
	}
	rt.adopt()
	if rt.current != nil {
		(*rt.current.Value()).Process(outputs, numSamples)
	}
}

// adopt drains the publish queue to the latest sequence, releasing every
// handle it passes over along the way (including, for each one, that
// sequence's own node references) so displaced nodes fall back to a
// reclaimable reference count without the control thread's involvement.
// Every op here is a wait-free atomic increment/decrement, allowed on the
// audio thread per spec §5.
func (rt *Runtime) adopt() {
	for {
		next, err := rt.publish.Dequeue()
		if err != nil {
			break
		}
		if rt.current != nil {
			(*rt.current.Value()).Release()
			rt.current.Release()
		}
		rt.current = next
		rt.active.Store(*next.Value())
	}
}

// computeOrder returns the root ids render.Build should visit, active
// roots first (so a node shared with a fading root is always claimed by
// the active one) then fading roots, both sorted by id for a deterministic
// build given the same root-state set.
func (rt *Runtime) computeOrder() []int32 {
	var active, fading []int32
	for id, st := range rt.rootStates {
		switch {
		case st.Active():
			active = append(active, id)
		case st.StillRunning():
			fading = append(fading, id)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i] < active[j] })
	sort.Slice(fading, func(i, j int) bool { return fading[i] < fading[j] })
	return append(active, fading...)
}

// ensureRootState returns id's RootState, creating one (target/current
// gain 0, channel 0) on first reference. A node becomes a root either by
// appearing in an ACTIVATE_ROOTS instruction or by receiving a "channel"
// SET_PROPERTY first — whichever happens first in the instruction stream.
func (rt *Runtime) ensureRootState(id int32) *render.RootState {
	rs, ok := rt.rootStates[id]
	if !ok {
		rs = render.NewRootState(id)
		rt.rootStates[id] = rs
	}
	return rs
}

// sweepGarbage scans the garbage holding area and drops every entry whose
// reference count has fallen back to 1 (held only by the garbage map
// itself), per spec §4.8's "garbage sweep" paragraph. Runs once per
// instruction batch.
func (rt *Runtime) sweepGarbage() {
	swept := 0
	for id, h := range rt.garbage {
		if h.Available() {
			if c, ok := (*h.Value()).(graphnode.Closer); ok {
				c.Close()
			}
			delete(rt.garbage, id)
			swept++
		}
	}
	if swept > 0 {
		rt.logger.Debug("garbage swept", "nodes", swept)
	}
}

// rebuildAndPublish compiles the current topology into a new render
// sequence and pushes it onto the publish queue. If the queue is full
// (the audio thread hasn't drained the previous rebuild yet), the new
// sequence is discarded and the previous one keeps running; this is
// surfaced only as a log line; spec §4.8 does not define a return code
// for COMMIT_UPDATES itself.
func (rt *Runtime) rebuildAndPublish() {
	order := rt.computeOrder()
	seq := render.Build(order, rt.children, rt.nodes, rt.rootStates, rt.blockSize, rt.sampleRate, rt.resources, rt.scratch)

	h := rt.seqPool.Allocate()
	*h.Value() = seq
	h.Acquire()
	if err := rt.publish.Enqueue(&h); err != nil {
		seq.Release()
		h.Release()
		rt.logger.Warn("render sequence publish queue full, dropping rebuild")
		return
	}
}
