// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package discovery exposes social discovery and the capability cache over
// HTTP: walking the follow graph for capable agents, snapshotting cache
// counters and forcing refreshes.
package discovery

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/moot/api/utils"
	"github.com/vechain/moot/discovery"
	"github.com/vechain/moot/moot"
)

// Neighbor is the wire view of a socially discovered agent.
type Neighbor struct {
	Author         moot.PubKey         `json:"author"`
	SupportedKinds []uint32            `json:"supported_kinds"`
	AgentType      discovery.AgentType `json:"agent_type"`
	PaymentAddress moot.PaymentAddress `json:"payment_address"`
	SocialDistance int                 `json:"social_distance"`
	RoutingAddress moot.PaymentAddress `json:"routing_address"`
	RecordID       moot.Bytes32        `json:"record_id"`
}

type Discovery struct {
	social *discovery.Social
	cache  *discovery.Cache
}

func New(social *discovery.Social, cache *discovery.Cache) *Discovery {
	return &Discovery{social, cache}
}

func (d *Discovery) handleDiscoverSocial(w http.ResponseWriter, req *http.Request) error {
	values := req.URL.Query()

	kind, err := strconv.ParseUint(values.Get("kind"), 10, 32)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "kind"))
	}
	opts := discovery.SocialOptions{
		ExtendedHops: values.Get("extended") == "true",
		UseCache:     values.Get("no-cache") != "true",
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return utils.BadRequest(errors.Errorf("malformed limit %q", raw))
		}
		opts.Limit = limit
	}

	neighbors, err := d.social.DiscoverForKind(req.Context(), uint32(kind), opts)
	if err != nil {
		return err
	}
	converted := make([]*Neighbor, 0, len(neighbors))
	for _, n := range neighbors {
		converted = append(converted, &Neighbor{
			Author:         n.Author,
			SupportedKinds: n.SupportedKinds,
			AgentType:      n.AgentType,
			PaymentAddress: n.PaymentAddress,
			SocialDistance: n.SocialDistance,
			RoutingAddress: n.RoutingAddress,
			RecordID:       n.RecordID,
		})
	}
	return utils.WriteJSON(w, converted)
}

func (d *Discovery) handleCacheMetrics(w http.ResponseWriter, req *http.Request) error {
	m := d.cache.Metrics()
	return utils.WriteJSON(w, utils.M{
		"hits":          m.Hits,
		"misses":        m.Misses,
		"refresh_count": m.RefreshCount,
		"evictions":     m.Evictions,
		"size":          m.Size,
	})
}

func (d *Discovery) handleRefresh(w http.ResponseWriter, req *http.Request) error {
	pubkey, err := moot.ParsePubKey(mux.Vars(req)["pubkey"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "pubkey"))
	}
	capability, err := d.cache.Refresh(req.Context(), pubkey)
	if err != nil {
		if discovery.IsCapabilityMissing(err) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, utils.M{
		"author":     capability.Author,
		"created_at": capability.CreatedAt,
		"record_id":  capability.RecordID,
	})
}

func (d *Discovery) handleInvalidate(w http.ResponseWriter, req *http.Request) error {
	pubkey, err := moot.ParsePubKey(mux.Vars(req)["pubkey"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "pubkey"))
	}
	d.cache.Invalidate(pubkey)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (d *Discovery) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/social").
		Methods(http.MethodGet).
		Name("discovery_social").
		HandlerFunc(utils.WrapHandlerFunc(d.handleDiscoverSocial))
	sub.Path("/cache/metrics").
		Methods(http.MethodGet).
		Name("discovery_cache_metrics").
		HandlerFunc(utils.WrapHandlerFunc(d.handleCacheMetrics))
	sub.Path("/cache/{pubkey}/refresh").
		Methods(http.MethodPost).
		Name("discovery_cache_refresh").
		HandlerFunc(utils.WrapHandlerFunc(d.handleRefresh))
	sub.Path("/cache/{pubkey}").
		Methods(http.MethodDelete).
		Name("discovery_cache_invalidate").
		HandlerFunc(utils.WrapHandlerFunc(d.handleInvalidate))
}
