// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package discovery_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/moot/discovery"
	"github.com/vechain/moot/eventdb"
	"github.com/vechain/moot/lvldb"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
	"github.com/vechain/moot/routing"
)

type socialEnv struct {
	self   *agent
	db     *eventdb.EventDB
	router *routing.Router
	query  *discovery.QueryService
}

func newSocialEnv(t *testing.T) *socialEnv {
	t.Helper()
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return &socialEnv{
		self:   newAgent(t, "g.agents.self"),
		db:     db,
		router: routing.NewRouter(store),
		query:  discovery.NewQueryService(db),
	}
}

func (e *socialEnv) follow(t *testing.T, a *agent, addedAt uint64) {
	t.Helper()
	require.NoError(t, e.router.Add(&routing.Follow{
		Pubkey:         a.pubkey,
		PaymentAddress: a.address,
		AddedAt:        addedAt,
	}))
}

// publishFollows stores a kind 3 record authored by the agent referencing
// the given peers.
func (e *socialEnv) publishFollows(t *testing.T, author *agent, createdAt uint64, peers ...*agent) {
	t.Helper()
	b := new(record.Builder).
		Kind(moot.KindFollows).
		CreatedAt(createdAt)
	for _, p := range peers {
		b.Tag("ilp", p.pubkey.String(), string(p.address))
	}
	rec, err := record.Sign(b.Build(), author.priv)
	require.NoError(t, err)
	_, err = e.db.Store(rec)
	require.NoError(t, err)
}

func (e *socialEnv) social(cache *discovery.Cache) *discovery.Social {
	return discovery.NewSocial(e.self.pubkey, e.router, e.query, cache)
}

func TestSocialDirectFollows(t *testing.T) {
	env := newSocialEnv(t)

	a := newAgent(t, "g.agents.a")
	b := newAgent(t, "g.agents.b")
	a.advertise(t, env.db, 1000, nil) // serves 5000
	b.advertise(t, env.db, 1000, func(d *discovery.CapabilityDraft) {
		d.SupportedKinds = []uint32{6000}
	})
	env.follow(t, a, 100)
	env.follow(t, b, 200)

	neighbors, err := env.social(nil).DiscoverForKind(context.Background(), 5000, discovery.SocialOptions{})
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, a.pubkey, neighbors[0].Author)
	assert.Equal(t, 1, neighbors[0].SocialDistance)
	assert.Equal(t, a.address, neighbors[0].RoutingAddress)
}

func TestSocialExtendedHops(t *testing.T) {
	env := newSocialEnv(t)

	direct := newAgent(t, "g.agents.direct")
	distant := newAgent(t, "g.agents.distant")
	direct.advertise(t, env.db, 1000, nil)
	distant.advertise(t, env.db, 1000, nil)
	env.follow(t, direct, 100)

	// direct's follow record references self, direct itself and the distant
	// agent; only the latter is a valid 2-hop candidate
	env.publishFollows(t, direct, 1000, env.self, direct, distant)

	neighbors, err := env.social(nil).DiscoverForKind(context.Background(), 5000,
		discovery.SocialOptions{ExtendedHops: true})
	require.NoError(t, err)
	require.Len(t, neighbors, 2)
	assert.Equal(t, direct.pubkey, neighbors[0].Author)
	assert.Equal(t, 1, neighbors[0].SocialDistance)
	assert.Equal(t, distant.pubkey, neighbors[1].Author)
	assert.Equal(t, 2, neighbors[1].SocialDistance)
	assert.Equal(t, distant.address, neighbors[1].RoutingAddress)
}

func TestSocialLimit(t *testing.T) {
	env := newSocialEnv(t)

	for i, addr := range []string{"g.agents.a", "g.agents.b", "g.agents.c"} {
		a := newAgent(t, addr)
		a.advertise(t, env.db, 1000, nil)
		env.follow(t, a, uint64(100+i))
	}

	neighbors, err := env.social(nil).DiscoverForKind(context.Background(), 5000,
		discovery.SocialOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, neighbors, 2)
}

func TestSocialExcludesSelf(t *testing.T) {
	env := newSocialEnv(t)

	env.self.advertise(t, env.db, 1000, nil)
	env.follow(t, env.self, 100)

	neighbors, err := env.social(nil).DiscoverForKind(context.Background(), 5000, discovery.SocialOptions{})
	require.NoError(t, err)
	assert.Empty(t, neighbors)
}

func TestSocialDegradesToDirectOnExtendedFailure(t *testing.T) {
	env := newSocialEnv(t)

	a := newAgent(t, "g.agents.a")
	b := newAgent(t, "g.agents.b")
	capA := a.advertise(t, env.db, 1000, nil)
	capB := b.advertise(t, env.db, 1000, func(d *discovery.CapabilityDraft) {
		d.SupportedKinds = []uint32{6000}
	})
	env.follow(t, a, 100)
	env.follow(t, b, 200)

	cache := newCache(t, env.db, discovery.CacheOptions{})
	cache.Set(a.pubkey, capA)
	cache.Set(b.pubkey, capB)

	// direct lookups are served from the cache; the 2-hop fetch hits the
	// closed store and fails, which degrades the pass to direct results
	env.db.Close()

	neighbors, err := env.social(cache).DiscoverForKind(context.Background(), 5000,
		discovery.SocialOptions{ExtendedHops: true, UseCache: true})
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, a.pubkey, neighbors[0].Author)
	assert.Equal(t, 1, neighbors[0].SocialDistance)
}

func TestSocialCancellation(t *testing.T) {
	env := newSocialEnv(t)

	a := newAgent(t, "g.agents.a")
	a.advertise(t, env.db, 1000, nil)
	env.follow(t, a, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	neighbors, err := env.social(nil).DiscoverForKind(ctx, 5000, discovery.SocialOptions{})
	require.NoError(t, err)
	assert.Empty(t, neighbors)
}
