// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package discovery

import (
	"context"
	"sort"

	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
	"github.com/vechain/moot/routing"
)

// SocialOptions tunes a social discovery pass.
type SocialOptions struct {
	ExtendedHops bool // also walk follows of follows
	Limit        int  // max neighbors, 0 for no limit
	UseCache     bool // consult and fill the capability cache
}

// Neighbor is a capable agent found through the follow graph.
type Neighbor struct {
	*Capability
	SocialDistance int                 // hops from the local agent, 1 or 2
	RoutingAddress moot.PaymentAddress // payment address learned from the graph
}

// Social walks the local follow graph to find agents serving a record kind,
// closest first. A capability cache is optional; without one every lookup
// hits the query service.
type Social struct {
	self   moot.PubKey
	router *routing.Router
	query  *QueryService
	cache  *Cache
}

// NewSocial creates the social discovery walker. The cache may be nil.
func NewSocial(self moot.PubKey, router *routing.Router, query *QueryService, cache *Cache) *Social {
	return &Social{
		self:   self,
		router: router,
		query:  query,
		cache:  cache,
	}
}

// DiscoverForKind finds followed agents whose capability covers the kind,
// then optionally agents followed by them. Results are ordered by social
// distance. Failures in the extended hop degrade to the direct results, and
// cancellation returns whatever was collected so far.
func (s *Social) DiscoverForKind(ctx context.Context, kind uint32, opts SocialOptions) ([]*Neighbor, error) {
	follows, err := s.router.List()
	if err != nil {
		return nil, err
	}

	var neighbors []*Neighbor
	full := func() bool { return opts.Limit > 0 && len(neighbors) >= opts.Limit }

	for _, f := range follows {
		if ctx.Err() != nil {
			return neighbors, nil
		}
		if f.Pubkey == s.self {
			continue
		}
		if capability := s.lookup(ctx, f.Pubkey, kind, opts.UseCache); capability != nil {
			neighbors = append(neighbors, &Neighbor{
				Capability:     capability,
				SocialDistance: 1,
				RoutingAddress: f.PaymentAddress,
			})
			metricSocialCounter().AddWithLabel(1, map[string]string{"hop": "direct"})
			if full() {
				break
			}
		}
	}

	if opts.ExtendedHops && !full() && ctx.Err() == nil {
		extended, err := s.extend(ctx, follows, kind, opts, len(neighbors))
		if err != nil {
			logger.Warn("extended discovery failed, keeping direct results", "err", err)
		} else {
			neighbors = append(neighbors, extended...)
		}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].SocialDistance < neighbors[j].SocialDistance
	})
	if opts.Limit > 0 && len(neighbors) > opts.Limit {
		neighbors = neighbors[:opts.Limit]
	}
	return neighbors, nil
}

// extend walks one hop further: agents referenced by the follow records of
// direct follows, minus self and the direct follows themselves.
func (s *Social) extend(ctx context.Context, directs []*routing.Follow, kind uint32, opts SocialOptions, have int) ([]*Neighbor, error) {
	direct := make(map[moot.PubKey]bool, len(directs))
	authors := make([]moot.PubKey, 0, len(directs))
	for _, f := range directs {
		direct[f.Pubkey] = true
		authors = append(authors, f.Pubkey)
	}
	if len(authors) == 0 {
		return nil, nil
	}

	records, err := s.query.db.Query(ctx, &record.Filter{
		Kinds:   []uint32{moot.KindFollows},
		Authors: authors,
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[moot.PubKey]bool)
	var candidates []*routing.Follow
	for _, r := range records {
		follows, err := routing.ParseFollows(r)
		if err != nil {
			logger.Debug("skipping invalid follow record",
				"id", r.ID().AbbrevString(), "err", err)
			continue
		}
		for _, f := range follows {
			if f.Pubkey == s.self || direct[f.Pubkey] || seen[f.Pubkey] {
				continue
			}
			seen[f.Pubkey] = true
			candidates = append(candidates, f)
		}
	}

	var neighbors []*Neighbor
	for _, f := range candidates {
		if ctx.Err() != nil {
			return neighbors, nil
		}
		if capability := s.lookup(ctx, f.Pubkey, kind, opts.UseCache); capability != nil {
			neighbors = append(neighbors, &Neighbor{
				Capability:     capability,
				SocialDistance: 2,
				RoutingAddress: f.PaymentAddress,
			})
			metricSocialCounter().AddWithLabel(1, map[string]string{"hop": "extended"})
			if opts.Limit > 0 && have+len(neighbors) >= opts.Limit {
				break
			}
		}
	}
	return neighbors, nil
}

// lookup resolves the pubkey's capability and reports it only when it covers
// the kind. A cached capability is authoritative for its pubkey, so a cache
// hit that lacks the kind does not fall through to the query service.
func (s *Social) lookup(ctx context.Context, pubkey moot.PubKey, kind uint32, useCache bool) *Capability {
	if useCache && s.cache != nil {
		if capability, ok := s.cache.Get(pubkey); ok {
			if capability.Supports(kind) {
				return capability
			}
			return nil
		}
	}

	caps, err := s.query.Find(ctx, &CapabilityQuery{
		Pubkeys:       []moot.PubKey{pubkey},
		RequiredKinds: []uint32{kind},
		Limit:         1,
	})
	if err != nil {
		logger.Debug("capability lookup failed",
			"pubkey", pubkey.AbbrevString(), "err", err)
		return nil
	}
	if len(caps) == 0 {
		return nil
	}
	if useCache && s.cache != nil {
		s.cache.Set(pubkey, caps[0])
	}
	return caps[0]
}
