// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire defines the instruction and event formats that cross the
// control-thread API boundary (spec §6): a batch is an ordered sequence of
// typed Instruction values; a node-emitted Event is a (kind, payload) pair.
//
// Each opcode gets its own concrete struct rather than a single
// `args []any` tuple — the same preference for small concrete types over a
// grab-bag that value.Value's closed union and graphnode's capability
// interfaces already follow.
package wire

import "code.hybscloud.com/graphcore/value"

// Opcode identifies which instruction a batch entry carries, matching the
// six integer opcodes in spec §6.
type Opcode int

const (
	OpCreateNode Opcode = iota
	OpDeleteNode
	OpAppendChild
	OpSetProperty
	OpActivateRoots
	OpCommitUpdates
)

func (o Opcode) String() string {
	switch o {
	case OpCreateNode:
		return "CREATE_NODE"
	case OpDeleteNode:
		return "DELETE_NODE"
	case OpAppendChild:
		return "APPEND_CHILD"
	case OpSetProperty:
		return "SET_PROPERTY"
	case OpActivateRoots:
		return "ACTIVATE_ROOTS"
	case OpCommitUpdates:
		return "COMMIT_UPDATES"
	default:
		return "Opcode(?)"
	}
}

// Instruction is one entry in a batch. Every concrete instruction type
// below implements it.
type Instruction interface {
	Opcode() Opcode
}

// CreateNode creates a node of Type under NodeID via the registered
// factory. Fails on duplicate id (NodeAlreadyExists) or unknown type
// (UnknownNodeType).
type CreateNode struct {
	NodeID int32
	Type   string
}

func (CreateNode) Opcode() Opcode { return OpCreateNode }

// DeleteNode moves NodeID from the live table into the garbage holding
// area.
type DeleteNode struct {
	NodeID int32
}

func (DeleteNode) Opcode() Opcode { return OpDeleteNode }

// AppendChild appends ChildID to ParentID's ordered child list. Both must
// already exist.
type AppendChild struct {
	ParentID int32
	ChildID  int32
}

func (AppendChild) Opcode() Opcode { return OpAppendChild }

// SetProperty delegates to NodeID's GraphNode.SetProperty.
type SetProperty struct {
	NodeID int32
	Key    string
	Value  value.Value
}

func (SetProperty) Opcode() Opcode { return OpSetProperty }

// ActivateRoots sets every listed id's root target gain to active; any
// previously active root not listed here has its target gain set to
// inactive (but is retained, fading, until the audio thread converges).
// Always requests a rebuild.
type ActivateRoots struct {
	NodeIDs []int32
}

func (ActivateRoots) Opcode() Opcode { return OpActivateRoots }

// CommitUpdates builds and publishes a new render sequence if any earlier
// instruction in this batch requested a rebuild; otherwise it is a no-op.
type CommitUpdates struct{}

func (CommitUpdates) Opcode() Opcode { return OpCommitUpdates }

// Event is one node-emitted (kind, payload) pair (spec §6). Known kinds in
// the built-in catalog include "scope"; callers may define their own.
type Event struct {
	Kind    string
	Payload value.Value
}
