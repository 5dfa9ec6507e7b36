// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package render_test

import (
	"math"
	"testing"

	"code.hybscloud.com/graphcore/graphnode"
	"code.hybscloud.com/graphcore/graphnode/builtin"
	"code.hybscloud.com/graphcore/render"
	"code.hybscloud.com/graphcore/resource"
	"code.hybscloud.com/graphcore/value"
)

const (
	testSampleRate = 48000.0
	testBlockSize  = 4
)

// settleBlocks is enough blocks for a ±20/sampleRate ramp to fully
// converge (spec: ⌈sample_rate/20⌉), with margin for block-size rounding.
const settleBlocks = (int(testSampleRate)/20)/testBlockSize + 4

func TestBuildSmallestGraphSettlesTo(t *testing.T) {
	res := resource.New()
	root := builtin.NewRoot(testSampleRate, testBlockSize)
	constNode := builtin.NewConst(testSampleRate, testBlockSize)
	if code := constNode.SetProperty("value", value.Number(0.5), res); code != 0 {
		t.Fatalf("SetProperty(value) = %v", code)
	}

	nodes := map[int32]graphnode.GraphNode{1: root, 2: constNode}
	children := map[int32][]int32{1: {2}}
	rootState := render.NewRootState(1)
	rootState.SetChannel(0)
	rootState.SetActive(true)
	rootStates := map[int32]*render.RootState{1: rootState}

	alloc := render.NewScratchAllocator(testBlockSize)
	seq := render.Build([]int32{1}, children, handles(nodes), rootStates, testBlockSize, testSampleRate, res, alloc)

	outputs := [][]float32{make([]float32, testBlockSize)}
	for i := 0; i < settleBlocks; i++ {
		for ch := range outputs {
			for j := range outputs[ch] {
				outputs[ch][j] = 0
			}
		}
		seq.Process(outputs, testBlockSize)
	}

	for _, s := range outputs[0] {
		if math.Abs(float64(s)-0.5) > 1e-4 {
			t.Fatalf("settled output = %v, want all ~0.5", outputs[0])
		}
	}
}

func TestBuildRootCrossfadeDecaysToZero(t *testing.T) {
	res := resource.New()
	root := builtin.NewRoot(testSampleRate, testBlockSize)
	constNode := builtin.NewConst(testSampleRate, testBlockSize)
	constNode.SetProperty("value", value.Number(0.5), res)

	nodes := map[int32]graphnode.GraphNode{1: root, 2: constNode}
	children := map[int32][]int32{1: {2}}
	rootState := render.NewRootState(1)
	rootState.SetChannel(0)
	rootState.SetActive(true)
	rootStates := map[int32]*render.RootState{1: rootState}

	nodeHandles := handles(nodes)
	alloc := render.NewScratchAllocator(testBlockSize)
	seq := render.Build([]int32{1}, children, nodeHandles, rootStates, testBlockSize, testSampleRate, res, alloc)

	outputs := [][]float32{make([]float32, testBlockSize)}
	for i := 0; i < settleBlocks; i++ {
		seq.Process(outputs, testBlockSize)
	}

	// Deactivate; root must still be included in the next build (fading).
	rootState.SetActive(false)
	seq2 := render.Build([]int32{1}, children, nodeHandles, rootStates, testBlockSize, testSampleRate, res, alloc)

	prev := float32(0.5)
	for i := 0; i < settleBlocks; i++ {
		for j := range outputs[0] {
			outputs[0][j] = 0
		}
		seq2.Process(outputs, testBlockSize)
		for _, s := range outputs[0] {
			if s > prev+1e-6 {
				t.Fatalf("output increased during decay: %v after %v", s, prev)
			}
			prev = s
		}
	}

	for j := range outputs[0] {
		outputs[0][j] = 0
	}
	seq2.Process(outputs, testBlockSize)
	for _, s := range outputs[0] {
		if s != 0 {
			t.Fatalf("output after full decay = %v, want 0", outputs[0])
		}
	}
}

func TestBuildDedupesSharedNode(t *testing.T) {
	res := resource.New()
	rootA := builtin.NewRoot(testSampleRate, testBlockSize)
	rootB := builtin.NewRoot(testSampleRate, testBlockSize)
	shared := builtin.NewConst(testSampleRate, testBlockSize)
	shared.SetProperty("value", value.Number(1), res)

	nodes := map[int32]graphnode.GraphNode{1: rootA, 2: rootB, 3: shared}
	children := map[int32][]int32{1: {3}, 2: {3}}

	stateA := render.NewRootState(1)
	stateA.SetChannel(0)
	stateA.SetActive(true)
	stateB := render.NewRootState(2)
	stateB.SetChannel(1)
	stateB.SetActive(true)
	rootStates := map[int32]*render.RootState{1: stateA, 2: stateB}

	alloc := render.NewScratchAllocator(testBlockSize)
	seq := render.Build([]int32{1, 2}, children, handles(nodes), rootStates, testBlockSize, testSampleRate, res, alloc)

	if len(seq.Roots()) != 2 {
		t.Fatalf("len(Roots()) = %d, want 2", len(seq.Roots()))
	}
	// The shared const node's closure lives only in root A's subsequence
	// (root A visits it first); root B's subsequence holds only its own root
	// node's closure.
	if n := seq.Roots()[0].ClosureLen(); n != 2 {
		t.Fatalf("root A closure count = %d, want 2 (the shared const node and root A)", n)
	}
	if n := seq.Roots()[1].ClosureLen(); n != 1 {
		t.Fatalf("root B closure count = %d, want 1 (root B only; const dedup'd against root A)", n)
	}

	outputs := [][]float32{make([]float32, testBlockSize), make([]float32, testBlockSize)}
	for i := 0; i < settleBlocks; i++ {
		for ch := range outputs {
			for j := range outputs[ch] {
				outputs[ch][j] = 0
			}
		}
		seq.Process(outputs, testBlockSize)
	}
	for ch := 0; ch < 2; ch++ {
		for _, s := range outputs[ch] {
			if math.Abs(float64(s)-1) > 1e-4 {
				t.Fatalf("channel %d settled output = %v, want all ~1 (both roots read the shared node)", ch, outputs[ch])
			}
		}
	}
}
