// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package render_test

import (
	"code.hybscloud.com/graphcore/graphnode"
	"code.hybscloud.com/graphcore/pool"
)

// handles wraps a plain nodeID->GraphNode map the way graphhost's live-node
// table does, so tests can call render.Build directly without spinning up a
// full Runtime.
func handles(nodes map[int32]graphnode.GraphNode) map[int32]*pool.Handle[graphnode.GraphNode] {
	out := make(map[int32]*pool.Handle[graphnode.GraphNode], len(nodes))
	for id, n := range nodes {
		out[id] = pool.NewHandle(n)
	}
	return out
}
