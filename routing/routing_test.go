// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/moot/cry"
	"github.com/vechain/moot/lvldb"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
	"github.com/vechain/moot/routing"
	"github.com/vechain/moot/test/datagen"
)

func newRouter(t *testing.T) *routing.Router {
	t.Helper()
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return routing.NewRouter(store)
}

func TestRouterAddLookupRemove(t *testing.T) {
	router := newRouter(t)

	f := &routing.Follow{
		Pubkey:         datagen.RandPubKey(),
		PaymentAddress: "g.us.bank.alice",
		Nickname:       "alice",
		RelayHint:      "wss://relay.example",
		AddedAt:        1000,
	}
	require.NoError(t, router.Add(f))

	got, err := router.Lookup(f.Pubkey)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, f, got)

	missing, err := router.Lookup(datagen.RandPubKey())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, router.Remove(f.Pubkey))
	gone, err := router.Lookup(f.Pubkey)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestRouterAddRejectsBadFollows(t *testing.T) {
	router := newRouter(t)

	assert.Error(t, router.Add(&routing.Follow{PaymentAddress: "g.a"}))
	assert.Error(t, router.Add(&routing.Follow{
		Pubkey:         datagen.RandPubKey(),
		PaymentAddress: "g..bad",
	}))
}

func TestRouterListOrder(t *testing.T) {
	router := newRouter(t)

	var pubkeys []moot.PubKey
	for i := range 5 {
		pk := datagen.RandPubKey()
		pubkeys = append(pubkeys, pk)
		require.NoError(t, router.Add(&routing.Follow{
			Pubkey:         pk,
			PaymentAddress: "g.peer",
			AddedAt:        uint64(1000 - i*100),
		}))
	}

	follows, err := router.List()
	require.NoError(t, err)
	require.Len(t, follows, 5)
	for i := 1; i < len(follows); i++ {
		assert.LessOrEqual(t, follows[i-1].AddedAt, follows[i].AddedAt)
	}
	assert.Equal(t, pubkeys[4], follows[0].Pubkey)
}

func TestFollowRecordRoundTrip(t *testing.T) {
	router := newRouter(t)

	follows := []*routing.Follow{
		{Pubkey: datagen.RandPubKey(), PaymentAddress: "g.us.alice", Nickname: "alice", AddedAt: 100},
		{Pubkey: datagen.RandPubKey(), PaymentAddress: "g.eu.bob", RelayHint: "wss://r.example", AddedAt: 200},
		{Pubkey: datagen.RandPubKey(), PaymentAddress: "g.ap.carol", AddedAt: 300},
	}
	for _, f := range follows {
		require.NoError(t, router.Add(f))
	}

	pk, err := cry.GenerateKey()
	require.NoError(t, err)
	r, err := router.BuildFollowRecord(pk, 5000)
	require.NoError(t, err)
	assert.Equal(t, moot.KindFollows, r.Kind())
	assert.True(t, r.Verify())

	parsed, err := routing.ParseFollows(r)
	require.NoError(t, err)
	require.Len(t, parsed, 3)

	byPubkey := make(map[moot.PubKey]*routing.Follow)
	for _, f := range parsed {
		assert.Equal(t, uint64(5000), f.AddedAt)
		byPubkey[f.Pubkey] = f
	}
	assert.Equal(t, "alice", byPubkey[follows[0].Pubkey].Nickname)
	assert.Equal(t, "wss://r.example", byPubkey[follows[1].Pubkey].RelayHint)
	assert.Equal(t, moot.PaymentAddress("g.ap.carol"), byPubkey[follows[2].Pubkey].PaymentAddress)
}

func TestParseFollowsRejects(t *testing.T) {
	pk, err := cry.GenerateKey()
	require.NoError(t, err)

	// wrong kind
	wrong := record.MustSign(new(record.Builder).Kind(moot.KindProposal).Build(), pk)
	_, err = routing.ParseFollows(wrong)
	assert.Error(t, err)

	// unsigned
	_, err = routing.ParseFollows(new(record.Builder).Kind(moot.KindFollows).Build())
	assert.Error(t, err)

	// malformed entries are skipped, valid ones kept
	good := datagen.RandPubKey()
	r := record.MustSign(new(record.Builder).
		Kind(moot.KindFollows).
		CreatedAt(42).
		Tag("ilp", "zz").                          // too short
		Tag("ilp", "nothex", "g.x").               // bad pubkey
		Tag("ilp", good.String(), "g..bad").       // bad address
		Tag("ilp", good.String(), "g.good", "gn"). // valid
		Build(), pk)
	parsed, err := routing.ParseFollows(r)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, good, parsed[0].Pubkey)
	assert.Equal(t, "gn", parsed[0].Nickname)
}
