// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package graphhost_test

import (
	"errors"
	"math"
	"testing"

	"code.hybscloud.com/graphcore/graphhost"
	"code.hybscloud.com/graphcore/resource"
	"code.hybscloud.com/graphcore/value"
	"code.hybscloud.com/graphcore/wire"
)

const (
	testSampleRate = 48000.0
	testBlockSize  = 4
)

// settleBlocks is enough blocks for a ±20/sampleRate gain ramp to fully
// converge, with margin for block-size rounding.
const settleBlocks = (int(testSampleRate)/20)/testBlockSize + 4

func apply(t *testing.T, rt *graphhost.Runtime, batch ...wire.Instruction) {
	t.Helper()
	if err := rt.Apply(batch); err != nil {
		t.Fatalf("Apply(%v) = %v, want nil", batch, err)
	}
}

// TestSmallestGraphSettles is spec scenario 1.
func TestSmallestGraphSettles(t *testing.T) {
	rt := graphhost.New(testSampleRate, testBlockSize)
	apply(t, rt,
		wire.CreateNode{NodeID: 1, Type: "root"},
		wire.CreateNode{NodeID: 2, Type: "const"},
		wire.SetProperty{NodeID: 2, Key: "value", Value: value.Number(0.5)},
		wire.AppendChild{ParentID: 1, ChildID: 2},
		wire.ActivateRoots{NodeIDs: []int32{1}},
		wire.CommitUpdates{},
	)

	outputs := [][]float32{make([]float32, testBlockSize)}
	for i := 0; i < settleBlocks; i++ {
		for j := range outputs[0] {
			outputs[0][j] = 0
		}
		rt.Process(outputs, testBlockSize, nil)
	}

	for _, s := range outputs[0] {
		if math.Abs(float64(s)-0.5) > 1e-4 {
			t.Fatalf("settled output = %v, want all ~0.5", outputs[0])
		}
	}
}

// TestRootCrossfadeDecays is spec scenario 2.
func TestRootCrossfadeDecays(t *testing.T) {
	rt := graphhost.New(testSampleRate, testBlockSize)
	apply(t, rt,
		wire.CreateNode{NodeID: 1, Type: "root"},
		wire.CreateNode{NodeID: 2, Type: "const"},
		wire.SetProperty{NodeID: 2, Key: "value", Value: value.Number(0.5)},
		wire.AppendChild{ParentID: 1, ChildID: 2},
		wire.ActivateRoots{NodeIDs: []int32{1}},
		wire.CommitUpdates{},
	)

	outputs := [][]float32{make([]float32, testBlockSize)}
	for i := 0; i < settleBlocks; i++ {
		rt.Process(outputs, testBlockSize, nil)
	}

	apply(t, rt, wire.ActivateRoots{NodeIDs: nil}, wire.CommitUpdates{})

	prev := float32(0.5)
	for i := 0; i < settleBlocks; i++ {
		for j := range outputs[0] {
			outputs[0][j] = 0
		}
		rt.Process(outputs, testBlockSize, nil)
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
	rt.Process(outputs, testBlockSize, nil)
	for _, s := range outputs[0] {
		if s != 0 {
			t.Fatalf("output after full decay = %v, want 0", outputs[0])
		}
	}
}

// TestFeedbackTapOneBlockDelay is spec scenario 3. A sample rate of 20
// makes the crossfade step exactly 1 so both roots reach full gain within
// their first sample, isolating the tap delay from the (separately
// tested) crossfade ramp.
func TestFeedbackTapOneBlockDelay(t *testing.T) {
	const sampleRate = 20.0
	rt := graphhost.New(sampleRate, testBlockSize)

	apply(t, rt,
		wire.CreateNode{NodeID: 1, Type: "root"},
		wire.CreateNode{NodeID: 2, Type: "TapIn"},
		wire.CreateNode{NodeID: 3, Type: "TapOut"},
		wire.CreateNode{NodeID: 4, Type: "const"},
		wire.SetProperty{NodeID: 2, Key: "name", Value: value.String("L")},
		wire.SetProperty{NodeID: 3, Key: "name", Value: value.String("L")},
		wire.SetProperty{NodeID: 4, Key: "value", Value: value.Number(1)},
		wire.SetProperty{NodeID: 3, Key: "channel", Value: value.Number(1)},
		wire.AppendChild{ParentID: 1, ChildID: 2},
		wire.AppendChild{ParentID: 3, ChildID: 4},
		wire.ActivateRoots{NodeIDs: []int32{1, 3}},
		wire.CommitUpdates{},
	)

	outputs := [][]float32{make([]float32, testBlockSize), make([]float32, testBlockSize)}
	rt.Process(outputs, testBlockSize, nil)
	for _, s := range outputs[0] {
		if s != 0 {
			t.Fatalf("block 1 channel 0 = %v, want silence before any promotion", outputs[0])
		}
	}

	for ch := range outputs {
		for j := range outputs[ch] {
			outputs[ch][j] = 0
		}
	}
	rt.Process(outputs, testBlockSize, nil)
	for _, s := range outputs[0] {
		if s != 1 {
			t.Fatalf("block 2 channel 0 = %v, want all 1 (one-block-delayed tap)", outputs[0])
		}
	}
}

// TestPropertyErrorLeavesPriorValueUnchanged is spec scenario 4.
func TestPropertyErrorLeavesPriorValueUnchanged(t *testing.T) {
	rt := graphhost.New(testSampleRate, testBlockSize)
	apply(t, rt, wire.CreateNode{NodeID: 1, Type: "scope"})
	apply(t, rt, wire.SetProperty{NodeID: 1, Key: "size", Value: value.Number(1024)})

	err := rt.Apply([]wire.Instruction{wire.SetProperty{NodeID: 1, Key: "size", Value: value.Number(16)}})
	if err == nil {
		t.Fatal("Apply(size=16) = nil, want InvalidPropertyValue")
	}
	var serr *graphhost.Error
	if !errors.As(err, &serr) || serr.Code != graphhost.InvalidPropertyValue {
		t.Fatalf("Apply(size=16) = %v, want InvalidPropertyValue", err)
	}

	props := rt.Snapshot()[1]
	n, ok := props["size"].AsNumber()
	if !ok || n != 1024 {
		t.Fatalf("size property = %v, want unchanged 1024", props["size"])
	}
}

// TestDuplicateCreateFails is spec scenario 5.
func TestDuplicateCreateFails(t *testing.T) {
	rt := graphhost.New(testSampleRate, testBlockSize)
	apply(t, rt, wire.CreateNode{NodeID: 7, Type: "const"})

	err := rt.Apply([]wire.Instruction{wire.CreateNode{NodeID: 7, Type: "const"}})
	if !errors.Is(err, graphhost.ErrNodeAlreadyExists) {
		t.Fatalf("second CreateNode(7) = %v, want NodeAlreadyExists", err)
	}
}

// TestSharedResourceLifecycle is spec scenario 6.
func TestSharedResourceLifecycle(t *testing.T) {
	rt := graphhost.New(testSampleRate, testBlockSize)
	if !rt.UpdateSharedResource("X", resource.Float32Buffer{1, 2, 3, 4}) {
		t.Fatal("UpdateSharedResource(X) = false, want true")
	}

	apply(t, rt,
		wire.CreateNode{NodeID: 1, Type: "root"},
		wire.CreateNode{NodeID: 2, Type: "sample"},
		wire.SetProperty{NodeID: 2, Key: "resource", Value: value.String("X")},
		wire.AppendChild{ParentID: 1, ChildID: 2},
		wire.ActivateRoots{NodeIDs: []int32{1}},
		wire.CommitUpdates{},
	)

	apply(t, rt, wire.DeleteNode{NodeID: 2})
	rt.PruneSharedResources()
	// The deleted node's handle is still referenced by the render sequence
	// the audio thread hasn't adopted a replacement for yet (no further
	// ACTIVATE_ROOTS/COMMIT followed the delete), so "X" must survive.
	if !rt.HasSharedResource("X") {
		t.Fatal("resource X pruned while still referenced by the active sequence")
	}

	apply(t, rt, wire.ActivateRoots{NodeIDs: []int32{1}}, wire.CommitUpdates{})
	outputs := [][]float32{make([]float32, testBlockSize)}
	rt.Process(outputs, testBlockSize, nil) // adopts the post-deletion sequence
	rt.PruneSharedResources()

	if rt.HasSharedResource("X") {
		t.Fatal("resource X retained after the referencing sequence was displaced and pruned")
	}
}

func TestChannelPropertyCreatesRootStateBeforeActivation(t *testing.T) {
	rt := graphhost.New(testSampleRate, testBlockSize)
	apply(t, rt,
		wire.CreateNode{NodeID: 1, Type: "root"},
		wire.CreateNode{NodeID: 2, Type: "const"},
		wire.SetProperty{NodeID: 2, Key: "value", Value: value.Number(1)},
		wire.AppendChild{ParentID: 1, ChildID: 2},
		wire.SetProperty{NodeID: 1, Key: "channel", Value: value.Number(1)},
		wire.ActivateRoots{NodeIDs: []int32{1}},
		wire.CommitUpdates{},
	)

	outputs := [][]float32{make([]float32, testBlockSize), make([]float32, testBlockSize)}
	for i := 0; i < settleBlocks; i++ {
		rt.Process(outputs, testBlockSize, nil)
	}
	for _, s := range outputs[1] {
		if math.Abs(float64(s)-1) > 1e-4 {
			t.Fatalf("channel 1 settled output = %v, want all ~1", outputs[1])
		}
	}
	for _, s := range outputs[0] {
		if s != 0 {
			t.Fatalf("channel 0 output = %v, want silence (root routed to channel 1)", outputs[0])
		}
	}
}

func TestDeletedNodeReferenceIsNodeNotFound(t *testing.T) {
	rt := graphhost.New(testSampleRate, testBlockSize)
	apply(t, rt, wire.CreateNode{NodeID: 1, Type: "const"})
	apply(t, rt, wire.DeleteNode{NodeID: 1})

	err := rt.Apply([]wire.Instruction{wire.SetProperty{NodeID: 1, Key: "value", Value: value.Number(1)}})
	if !errors.Is(err, graphhost.ErrNodeNotFound) {
		t.Fatalf("SetProperty on deleted node = %v, want NodeNotFound", err)
	}
}

func TestPartialBatchRetainsEffectsBeforeFailure(t *testing.T) {
	rt := graphhost.New(testSampleRate, testBlockSize)
	err := rt.Apply([]wire.Instruction{
		wire.CreateNode{NodeID: 1, Type: "const"},
		wire.SetProperty{NodeID: 1, Key: "value", Value: value.Number(2)},
		wire.CreateNode{NodeID: 99, Type: "not-a-real-type"},
	})
	if !errors.Is(err, graphhost.ErrUnknownNodeType) {
		t.Fatalf("batch err = %v, want UnknownNodeType", err)
	}
	// Node 1's creation and property set, earlier in the same batch, must
	// have stuck despite the later failure.
	if dup := rt.Apply([]wire.Instruction{wire.CreateNode{NodeID: 1, Type: "const"}}); !errors.Is(dup, graphhost.ErrNodeAlreadyExists) {
		t.Fatalf("node 1 did not survive the partial batch: %v", dup)
	}
}

func TestNoRebuildWithoutActivateRoots(t *testing.T) {
	rt := graphhost.New(testSampleRate, testBlockSize)
	apply(t, rt, wire.CreateNode{NodeID: 1, Type: "root"}, wire.CommitUpdates{})

	// No ACTIVATE_ROOTS has ever run, so root 1 has no RootState and
	// Process must render silence from the seeded empty sequence, not a
	// sequence newly built around node 1.
	outputs := [][]float32{make([]float32, testBlockSize)}
	rt.Process(outputs, testBlockSize, nil)
	for _, s := range outputs[0] {
		if s != 0 {
			t.Fatalf("output = %v, want silence (no ACTIVATE_ROOTS yet)", outputs[0])
		}
	}
}
