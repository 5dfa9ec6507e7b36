// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package builtin

import "code.hybscloud.com/graphcore/graphnode"

// Factories returns the built-in node type name -> graphnode.Factory table
// graphhost.New registers by default, so a fresh runtime has root, const,
// TapOut, TapIn, sample, SDelay, and scope available without any explicit
// RegisterNodeType call.
func Factories() map[string]graphnode.Factory {
	return map[string]graphnode.Factory{
		"root":   NewRoot,
		"const":  NewConst,
		"TapOut": NewTapOut,
		"TapIn":  NewTapIn,
		"sample": NewSample,
		"SDelay": NewSDelay,
		"scope":  NewScope,
	}
}
