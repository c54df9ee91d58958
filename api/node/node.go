// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/moot/api/utils"
	"github.com/vechain/moot/moot"
)

// Info identifies the running agent.
type Info struct {
	Pubkey         moot.PubKey         `json:"pubkey"`
	PaymentAddress moot.PaymentAddress `json:"payment_address"`
	Version        string              `json:"version"`
}

type Node struct {
	info Info
}

func New(info Info) *Node {
	return &Node{info}
}

func (n *Node) handleNodeInfo(w http.ResponseWriter, req *http.Request) error {
	return utils.WriteJSON(w, n.info)
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/info").
		Methods(http.MethodGet).
		Name("node_get_info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleNodeInfo))
}
