// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/moot/api"
	"github.com/vechain/moot/api/proposals"
	"github.com/vechain/moot/coord"
	"github.com/vechain/moot/cry"
	"github.com/vechain/moot/eventdb"
	"github.com/vechain/moot/lvldb"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/node"
)

func newServer(t *testing.T) (*httptest.Server, *node.Node) {
	t.Helper()
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	master, err := cry.GenerateKey()
	require.NoError(t, err)
	n, err := node.New(master, db, store, node.Options{
		PaymentAddress: "g.agents.self",
		SkipClockCheck: true,
	})
	require.NoError(t, err)
	t.Cleanup(n.Close)

	handler, closer := api.New(n, api.Options{
		Version:        "1.0.0",
		AllowedOrigins: "*",
		QueryLimit:     100,
	})
	t.Cleanup(closer)
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts, n
}

func TestAPIWiring(t *testing.T) {
	ts, n := newServer(t)

	// node info reflects the running agent
	res, err := http.Get(ts.URL + "/node/info")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var info struct {
		Pubkey         moot.PubKey `json:"pubkey"`
		PaymentAddress string      `json:"payment_address"`
	}
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, n.PubKey(), info.Pubkey)
	assert.Equal(t, "g.agents.self", info.PaymentAddress)

	// proposals round-trip through the tracker
	member, err := cry.GenerateKey()
	require.NoError(t, err)
	payload, err := json.Marshal(&proposals.Draft{
		Type:         coord.TypeMajority,
		Participants: []moot.PubKey{cry.PubKeyOf(member)},
		ExpiresIn:    3600,
		Description:  "enable the new relay",
	})
	require.NoError(t, err)
	createRes, err := http.Post(ts.URL+"/proposals", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	createRes.Body.Close()
	require.Equal(t, http.StatusCreated, createRes.StatusCode)
	assert.Len(t, n.Tracker().List(), 1)

	// unknown routes fall through to 404
	missRes, err := http.Get(ts.URL + "/teapot")
	require.NoError(t, err)
	missRes.Body.Close()
	assert.Equal(t, http.StatusNotFound, missRes.StatusCode)
}
