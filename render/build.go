// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package render

import (
	"code.hybscloud.com/graphcore/graphnode"
	"code.hybscloud.com/graphcore/pool"
	"code.hybscloud.com/graphcore/resource"
)

// Build compiles the current graph topology into a new RenderSequence
// (spec §4.5). order lists the root node ids to include, already sorted by
// the caller with active roots first and fading roots after (so that any
// node shared between an active and a fading root is claimed — and thus
// kept running every block — by the active root's subsequence). children
// maps a node id to its ordered child ids; nodes maps a node id to the
// pool.Handle holding its GraphNode (graphhost's live-node table); rootStates
// maps a root node id to its persistent RootState, which must outlive this
// call (graphhost owns one RootState per root across rebuilds).
//
// Build Acquires every node handle it visits, pinning that node alive for as
// long as the resulting RenderSequence is referenced by the audio thread;
// callers must call the returned RenderSequence's Release once it is
// permanently displaced, so those references eventually fall back to 1 and
// the node becomes eligible for graphhost's garbage sweep.
//
// Build is non-realtime: it allocates (via alloc, and via Go maps/slices
// for the visited set and closures) and must only ever run on the control
// thread.
func Build(
	order []int32,
	children map[int32][]int32,
	nodes map[int32]*pool.Handle[graphnode.GraphNode],
	rootStates map[int32]*RootState,
	blockSize int,
	sampleRate float64,
	resources *resource.Map,
	alloc *ScratchAllocator,
) *RenderSequence {
	alloc.Reset()

	visited := make(map[int32][]float32, len(nodes))
	rootSeqs := make([]*RootSequence, 0, len(order))
	var nodeHandles []*pool.Handle[graphnode.GraphNode]
	silence := make([]float32, blockSize)

	var dfs func(id int32) []float32
	var closures []nodeClosure
	var taps []graphnode.TapPromoter

	dfs = func(id int32) []float32 {
		if buf, ok := visited[id]; ok {
			return buf
		}
		handle, ok := nodes[id]
		if !ok {
			// A child id with no live node, e.g. a parent still lists a
			// node that was deleted after the edge was appended. Treat it
			// as silence rather than panicking; cascading edge cleanup on
			// delete is out of scope.
			return silence
		}
		node := *handle.Value()
		handle.Acquire()
		nodeHandles = append(nodeHandles, handle)

		childIDs := children[id]
		inputs := make([][]float32, len(childIDs))
		for i, cid := range childIDs {
			inputs[i] = dfs(cid)
		}

		out := alloc.Alloc()
		visited[id] = out

		ctx := &graphnode.BlockContext{
			Inputs:     inputs,
			Output:     out,
			NumSamples: blockSize,
		}
		closures = append(closures, nodeClosure{node: node, ctx: ctx})
		if tp, ok := node.(graphnode.TapPromoter); ok {
			taps = append(taps, tp)
		}
		return out
	}

	for _, rootID := range order {
		closures = nil
		taps = nil
		rootOut := dfs(rootID)
		rootSeqs = append(rootSeqs, &RootSequence{
			state:      rootStates[rootID],
			closures:   closures,
			output:     rootOut,
			taps:       taps,
			sampleRate: sampleRate,
		})
	}

	return &RenderSequence{roots: rootSeqs, resources: resources, nodeHandles: nodeHandles}
}
