// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package graphhost

import "code.hybscloud.com/graphcore/status"

// Code and Error are aliases for the status package's return-code
// vocabulary (spec §6, §7). status is its own leaf package — see its doc
// comment — but a caller of this package should never need to import it
// directly: Apply returns errors satisfying this package's Code/Error
// surface, matching the external interface spec §6 describes.
type (
	Code  = status.Code
	Error = status.Error
)

const (
	Ok                       = status.Ok
	UnknownNodeType          = status.UnknownNodeType
	NodeNotFound             = status.NodeNotFound
	NodeAlreadyExists        = status.NodeAlreadyExists
	NodeTypeAlreadyExists    = status.NodeTypeAlreadyExists
	InvalidPropertyType      = status.InvalidPropertyType
	InvalidPropertyValue     = status.InvalidPropertyValue
	InvariantViolation       = status.InvariantViolation
	InvalidInstructionFormat = status.InvalidInstructionFormat
)

// Package-level sentinels for errors.Is(err, graphhost.ErrNodeNotFound).
var (
	ErrUnknownNodeType          = status.ErrUnknownNodeType
	ErrNodeNotFound             = status.ErrNodeNotFound
	ErrNodeAlreadyExists        = status.ErrNodeAlreadyExists
	ErrNodeTypeAlreadyExists    = status.ErrNodeTypeAlreadyExists
	ErrInvalidPropertyType      = status.ErrInvalidPropertyType
	ErrInvalidPropertyValue     = status.ErrInvalidPropertyValue
	ErrInvariantViolation       = status.ErrInvariantViolation
	ErrInvalidInstructionFormat = status.ErrInvalidInstructionFormat
)
