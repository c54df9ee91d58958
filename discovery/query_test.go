// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package discovery_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/moot/discovery"
	"github.com/vechain/moot/eventdb"
	"github.com/vechain/moot/moot"
)

func newQueryService(t *testing.T) (*discovery.QueryService, *eventdb.EventDB) {
	t.Helper()
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return discovery.NewQueryService(db), db
}

func authors(caps []*discovery.Capability) []moot.PubKey {
	keys := make([]moot.PubKey, 0, len(caps))
	for _, c := range caps {
		keys = append(keys, c.Author)
	}
	return keys
}

func TestQueryFilters(t *testing.T) {
	service, db := newQueryService(t)

	dvm := newAgent(t, "g.agents.dvm")
	dvm.advertise(t, db, 1000, func(d *discovery.CapabilityDraft) {
		d.SupportedKinds = []uint32{5000, 5100}
		d.Pricing = map[uint32]discovery.Price{5000: msat(100), 5100: msat(200)}
	})
	assistant := newAgent(t, "g.agents.assistant")
	assistant.advertise(t, db, 1001, func(d *discovery.CapabilityDraft) {
		d.AgentType = discovery.AgentTypeAssistant
		d.SupportedKinds = []uint32{5000}
		d.Pricing = map[uint32]discovery.Price{5000: msat(5000)}
	})
	relay := newAgent(t, "test.relay")
	relay.advertise(t, db, 1002, func(d *discovery.CapabilityDraft) {
		d.AgentType = discovery.AgentTypeRelay
		d.SupportedKinds = []uint32{10002}
	})

	ctx := context.Background()

	t.Run("zero query returns all", func(t *testing.T) {
		caps, err := service.Find(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, caps, 3)
	})

	t.Run("by author", func(t *testing.T) {
		caps, err := service.Find(ctx, &discovery.CapabilityQuery{Pubkeys: []moot.PubKey{dvm.pubkey}})
		require.NoError(t, err)
		require.Len(t, caps, 1)
		assert.Equal(t, dvm.pubkey, caps[0].Author)
	})

	t.Run("by agent type", func(t *testing.T) {
		caps, err := service.Find(ctx, &discovery.CapabilityQuery{
			AgentTypes: []discovery.AgentType{discovery.AgentTypeAssistant, discovery.AgentTypeRelay},
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []moot.PubKey{assistant.pubkey, relay.pubkey}, authors(caps))
	})

	t.Run("required kinds are ANDed", func(t *testing.T) {
		caps, err := service.Find(ctx, &discovery.CapabilityQuery{RequiredKinds: []uint32{5000, 5100}})
		require.NoError(t, err)
		require.Len(t, caps, 1)
		assert.Equal(t, dvm.pubkey, caps[0].Author)
	})

	t.Run("max price per required kind", func(t *testing.T) {
		caps, err := service.Find(ctx, &discovery.CapabilityQuery{
			RequiredKinds: []uint32{5000},
			MaxPrice:      big.NewInt(1000),
		})
		require.NoError(t, err)
		require.Len(t, caps, 1)
		assert.Equal(t, dvm.pubkey, caps[0].Author)
	})

	t.Run("max price without required kinds matches any entry", func(t *testing.T) {
		caps, err := service.Find(ctx, &discovery.CapabilityQuery{MaxPrice: big.NewInt(5000)})
		require.NoError(t, err)
		assert.ElementsMatch(t, []moot.PubKey{dvm.pubkey, assistant.pubkey}, authors(caps))
	})

	t.Run("unpriced kind fails the per-kind ceiling", func(t *testing.T) {
		caps, err := service.Find(ctx, &discovery.CapabilityQuery{
			RequiredKinds: []uint32{10002},
			MaxPrice:      big.NewInt(1),
		})
		require.NoError(t, err)
		assert.Empty(t, caps)
	})

	t.Run("address prefix", func(t *testing.T) {
		caps, err := service.Find(ctx, &discovery.CapabilityQuery{AddressPrefix: "g.agents."})
		require.NoError(t, err)
		assert.ElementsMatch(t, []moot.PubKey{dvm.pubkey, assistant.pubkey}, authors(caps))
	})

	t.Run("limit truncates", func(t *testing.T) {
		caps, err := service.Find(ctx, &discovery.CapabilityQuery{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, caps, 1)
	})
}

func TestQueryRanking(t *testing.T) {
	service, db := newQueryService(t)

	cheap := newAgent(t, "g.agents.cheap")
	cheap.advertise(t, db, 1000, func(d *discovery.CapabilityDraft) {
		d.Pricing = map[uint32]discovery.Price{5000: msat(10)}
	})
	pricey := newAgent(t, "g.agents.pricey")
	pricey.advertise(t, db, 2000, func(d *discovery.CapabilityDraft) {
		d.Pricing = map[uint32]discovery.Price{5000: msat(500)}
	})
	unpriced := newAgent(t, "g.agents.unpriced")
	unpriced.advertise(t, db, 3000, nil)

	caps, err := service.Find(context.Background(), &discovery.CapabilityQuery{RequiredKinds: []uint32{5000}})
	require.NoError(t, err)
	require.Len(t, caps, 3)

	// priced before unpriced, lower sum first
	assert.Equal(t, cheap.pubkey, caps[0].Author)
	assert.Equal(t, pricey.pubkey, caps[1].Author)
	assert.Equal(t, unpriced.pubkey, caps[2].Author)
}

func TestQueryRankingCapacityAndFreshness(t *testing.T) {
	service, db := newQueryService(t)

	small := newAgent(t, "g.agents.small")
	small.advertise(t, db, 2000, func(d *discovery.CapabilityDraft) {
		d.Capacity = &discovery.Capacity{MaxConcurrent: 2, QueueDepth: 4}
	})
	roomy := newAgent(t, "g.agents.big")
	roomy.advertise(t, db, 1000, func(d *discovery.CapabilityDraft) {
		d.Capacity = &discovery.Capacity{MaxConcurrent: 16, QueueDepth: 4}
	})
	fresh := newAgent(t, "g.agents.fresh")
	fresh.advertise(t, db, 3000, func(d *discovery.CapabilityDraft) {
		d.Capacity = &discovery.Capacity{MaxConcurrent: 2, QueueDepth: 4}
	})

	caps, err := service.Find(context.Background(), &discovery.CapabilityQuery{RequiredKinds: []uint32{5000}})
	require.NoError(t, err)
	require.Len(t, caps, 3)

	// no pricing anywhere, so capacity decides, then freshness
	assert.Equal(t, roomy.pubkey, caps[0].Author)
	assert.Equal(t, fresh.pubkey, caps[1].Author)
	assert.Equal(t, small.pubkey, caps[2].Author)
}

func TestQueryReplaceableNewestWins(t *testing.T) {
	service, db := newQueryService(t)

	a := newAgent(t, "g.agents.flip")
	a.advertise(t, db, 1000, func(d *discovery.CapabilityDraft) {
		d.SupportedKinds = []uint32{5000}
	})
	a.advertise(t, db, 2000, func(d *discovery.CapabilityDraft) {
		d.SupportedKinds = []uint32{6000}
	})

	caps, err := service.Find(context.Background(), &discovery.CapabilityQuery{Pubkeys: []moot.PubKey{a.pubkey}})
	require.NoError(t, err)
	require.Len(t, caps, 1)
	assert.Equal(t, []uint32{6000}, caps[0].SupportedKinds)
	assert.Equal(t, uint64(2000), caps[0].CreatedAt)
}
