// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package graphhost

import (
	"fmt"

	"code.hybscloud.com/graphcore/pool"
	"code.hybscloud.com/graphcore/status"
	"code.hybscloud.com/graphcore/wire"
)

// Apply processes batch one instruction at a time (spec §4.8). On the
// first error, processing stops and the error is returned; instructions
// already applied earlier in the batch remain applied (see SPEC_FULL.md
// §9's note on the non-transactional-batches open question). A render sequence
// is built and published at most once per batch, only when COMMIT_UPDATES
// is reached and at least one ACTIVATE_ROOTS was processed first — per the
// quantified invariant in spec §8 ("no ACTIVATE_ROOTS between batches, no
// new sequence published"), CREATE_NODE/DELETE_NODE/APPEND_CHILD alone
// never trigger a rebuild.
func (rt *Runtime) Apply(batch []wire.Instruction) error {
	rebuildNeeded := false

	for _, instr := range batch {
		var ierr *status.Error

		switch ins := instr.(type) {
		case wire.CreateNode:
			ierr = rt.createNode(ins)
		case wire.DeleteNode:
			ierr = rt.deleteNode(ins)
		case wire.AppendChild:
			ierr = rt.appendChild(ins)
		case wire.SetProperty:
			ierr = rt.setProperty(ins)
		case wire.ActivateRoots:
			rt.activateRoots(ins)
			rebuildNeeded = true
		case wire.CommitUpdates:
			if rebuildNeeded {
				rt.rebuildAndPublish()
				rebuildNeeded = false
			}
		default:
			ierr = status.New(status.InvalidInstructionFormat, "APPLY").
				WithCause(fmt.Errorf("unknown instruction type %T", instr))
		}

		if ierr != nil {
			rt.logger.Warn("instruction failed", "op", ierr.Op, "code", ierr.Code.String(), "node", ierr.NodeID)
			rt.sweepGarbage()
			return ierr
		}
	}

	rt.sweepGarbage()
	return nil
}

func (rt *Runtime) createNode(ins wire.CreateNode) *status.Error {
	if _, exists := rt.nodes[ins.NodeID]; exists {
		return status.New(status.NodeAlreadyExists, "CREATE_NODE").WithNode(ins.NodeID)
	}
	if _, exists := rt.garbage[ins.NodeID]; exists {
		return status.New(status.NodeAlreadyExists, "CREATE_NODE").WithNode(ins.NodeID)
	}
	factory, ok := rt.factories[ins.Type]
	if !ok {
		return status.New(status.UnknownNodeType, "CREATE_NODE").WithNode(ins.NodeID)
	}

	node := factory(rt.sampleRate, rt.blockSize)
	rt.nodes[ins.NodeID] = pool.NewHandle(node)
	rt.children[ins.NodeID] = nil
	return nil
}

func (rt *Runtime) deleteNode(ins wire.DeleteNode) *status.Error {
	h, ok := rt.nodes[ins.NodeID]
	if !ok {
		return status.New(status.NodeNotFound, "DELETE_NODE").WithNode(ins.NodeID)
	}
	delete(rt.nodes, ins.NodeID)
	rt.garbage[ins.NodeID] = h
	return nil
}

func (rt *Runtime) appendChild(ins wire.AppendChild) *status.Error {
	if _, ok := rt.nodes[ins.ParentID]; !ok {
		return status.New(status.NodeNotFound, "APPEND_CHILD").WithNode(ins.ParentID)
	}
	if _, ok := rt.nodes[ins.ChildID]; !ok {
		return status.New(status.NodeNotFound, "APPEND_CHILD").WithNode(ins.ChildID)
	}
	rt.children[ins.ParentID] = append(rt.children[ins.ParentID], ins.ChildID)
	return nil
}

func (rt *Runtime) setProperty(ins wire.SetProperty) *status.Error {
	h, ok := rt.nodes[ins.NodeID]
	if !ok {
		return status.New(status.NodeNotFound, "SET_PROPERTY").WithNode(ins.NodeID).WithKey(ins.Key)
	}

	if ins.Key == "channel" {
		n, numOk := ins.Value.AsNumber()
		if !numOk {
			return status.New(status.InvalidPropertyType, "SET_PROPERTY").WithNode(ins.NodeID).WithKey(ins.Key)
		}
		rt.ensureRootState(ins.NodeID).SetChannel(int32(n))
		return nil
	}

	node := *h.Value()
	code := node.SetProperty(ins.Key, ins.Value, rt.resources)
	if code != status.Ok {
		return status.New(code, "SET_PROPERTY").WithNode(ins.NodeID).WithKey(ins.Key)
	}
	return nil
}

// activateRoots sets every listed id's target gain to active and any
// previously active root not listed to fading (spec §4.8). Listing the
// same set twice in a row is a no-op on top of what's already there: both
// calls just StoreRelease the same target gain, so no extra crossfade
// occurs (spec §8's ACTIVATE_ROOTS idempotence law).
func (rt *Runtime) activateRoots(ins wire.ActivateRoots) {
	want := make(map[int32]bool, len(ins.NodeIDs))
	for _, id := range ins.NodeIDs {
		want[id] = true
		rt.ensureRootState(id).SetActive(true)
	}
	for id, rs := range rt.rootStates {
		if !want[id] {
			rs.SetActive(false)
		}
	}
}
