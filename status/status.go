// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package status defines the graph host's return-code vocabulary (spec §6,
// §7) and the sentinel errors built on top of it.
//
// This is deliberately a separate, small leaf package rather than living in
// graphhost: graphnode.GraphNode.SetProperty must return a Code without
// graphnode importing graphhost (which in turn depends on graphnode to call
// into nodes), and the wire-level instruction errors are a distinct
// vocabulary from lfq's iox.ErrWouldBlock — a queue backpressure signal is
// "try again", a status.Code is a terminal outcome of one instruction.
package status

// Code is one of the nine integer return codes named in spec §6.
type Code int

const (
	Ok Code = iota
	UnknownNodeType
	NodeNotFound
	NodeAlreadyExists
	NodeTypeAlreadyExists
	InvalidPropertyType
	InvalidPropertyValue
	InvariantViolation
	InvalidInstructionFormat
)

func (c Code) String() string {
	switch c {
	case Ok:
		return "Ok"
	case UnknownNodeType:
		return "UnknownNodeType"
	case NodeNotFound:
		return "NodeNotFound"
	case NodeAlreadyExists:
		return "NodeAlreadyExists"
	case NodeTypeAlreadyExists:
		return "NodeTypeAlreadyExists"
	case InvalidPropertyType:
		return "InvalidPropertyType"
	case InvalidPropertyValue:
		return "InvalidPropertyValue"
	case InvariantViolation:
		return "InvariantViolation"
	case InvalidInstructionFormat:
		return "InvalidInstructionFormat"
	default:
		return "Code(?)"
	}
}

// Error wraps a Code with the instruction context that produced it. It
// implements Unwrap so errors.Is(err, status.ErrNodeNotFound) works against
// the package-level sentinels below, matching the ergonomics lfq gives
// ErrWouldBlock.
type Error struct {
	Code   Code
	Op     string // which instruction/operation failed, e.g. "SET_PROPERTY"
	NodeID int32
	Key    string // property key, when applicable
	Cause  error  // wrapped cause, when the error originated deeper (e.g. a node's own validation)
}

func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return sentinel(e.Code)
}

// Is reports whether e's Code matches target when target is one of this
// package's sentinel errors, so errors.Is(err, status.ErrNodeNotFound)
// works without needing e.Cause to be set.
func (e *Error) Is(target error) bool {
	se, ok := target.(*sentinelErr)
	if !ok {
		return false
	}
	return e.Code == se.code
}

type sentinelErr struct{ code Code }

func (s *sentinelErr) Error() string { return s.code.String() }

func sentinel(c Code) error { return &sentinelErr{code: c} }

// Package-level sentinels, one per non-Ok code, for errors.Is comparisons.
var (
	ErrUnknownNodeType          = sentinel(UnknownNodeType)
	ErrNodeNotFound             = sentinel(NodeNotFound)
	ErrNodeAlreadyExists        = sentinel(NodeAlreadyExists)
	ErrNodeTypeAlreadyExists    = sentinel(NodeTypeAlreadyExists)
	ErrInvalidPropertyType      = sentinel(InvalidPropertyType)
	ErrInvalidPropertyValue     = sentinel(InvalidPropertyValue)
	ErrInvariantViolation       = sentinel(InvariantViolation)
	ErrInvalidInstructionFormat = sentinel(InvalidInstructionFormat)
)

// New builds an *Error for code c in operation op.
func New(c Code, op string) *Error {
	return &Error{Code: c, Op: op}
}

// WithNode sets the NodeID field and returns e for chaining.
func (e *Error) WithNode(id int32) *Error {
	e.NodeID = id
	return e
}

// WithKey sets the Key field and returns e for chaining.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithCause sets the wrapped Cause and returns e for chaining.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}
