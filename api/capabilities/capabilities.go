// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package capabilities exposes capability discovery over HTTP: querying
// advertised capabilities and publishing the local agent's own advertisement.
package capabilities

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/moot/api/utils"
	"github.com/vechain/moot/discovery"
	"github.com/vechain/moot/moot"
)

// Advertiser publishes the local agent's capability advertisement.
type Advertiser interface {
	Advertise(*discovery.CapabilityDraft) (*discovery.Capability, error)
}

type Capabilities struct {
	query      *discovery.QueryService
	advertiser Advertiser
	queryLimit int
}

// New creates the capabilities sub-API. queryLimit caps the number of results
// a single query may return.
func New(query *discovery.QueryService, advertiser Advertiser, queryLimit int) *Capabilities {
	return &Capabilities{query, advertiser, queryLimit}
}

// parseQuery maps the request's query string onto a capability query.
// Repeated kind and agent-type parameters are combined the way the query
// service combines them: kinds are required together, agent types are
// alternatives.
func (c *Capabilities) parseQuery(req *http.Request) (*discovery.CapabilityQuery, error) {
	query := &discovery.CapabilityQuery{Limit: c.queryLimit}
	values := req.URL.Query()

	for _, raw := range values["pubkey"] {
		pubkey, err := moot.ParsePubKey(raw)
		if err != nil {
			return nil, errors.WithMessage(err, "pubkey")
		}
		query.Pubkeys = append(query.Pubkeys, pubkey)
	}
	for _, raw := range values["kind"] {
		kind, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, errors.WithMessage(err, "kind")
		}
		query.RequiredKinds = append(query.RequiredKinds, uint32(kind))
	}
	for _, raw := range values["agent-type"] {
		agentType := discovery.AgentType(raw)
		if !agentType.Valid() {
			return nil, errors.Errorf("unknown agent-type %q", raw)
		}
		query.AgentTypes = append(query.AgentTypes, agentType)
	}
	if raw := values.Get("max-price"); raw != "" {
		price, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, errors.Errorf("malformed max-price %q", raw)
		}
		query.MaxPrice = price
	}
	query.AddressPrefix = values.Get("address-prefix")
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return nil, errors.Errorf("malformed limit %q", raw)
		}
		if limit > 0 && (c.queryLimit == 0 || limit < c.queryLimit) {
			query.Limit = limit
		}
	}
	return query, nil
}

func (c *Capabilities) handleQuery(w http.ResponseWriter, req *http.Request) error {
	query, err := c.parseQuery(req)
	if err != nil {
		return utils.BadRequest(err)
	}
	caps, err := c.query.Find(req.Context(), query)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertCapabilities(caps))
}

func (c *Capabilities) handleAdvertise(w http.ResponseWriter, req *http.Request) error {
	var draft Draft
	if err := utils.ParseJSON(req.Body, &draft); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	discoveryDraft, err := draft.toDraft()
	if err != nil {
		return utils.BadRequest(err)
	}
	capability, err := c.advertiser.Advertise(discoveryDraft)
	if err != nil {
		if discovery.IsInvalidCapability(err) {
			return utils.BadRequest(err)
		}
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return utils.WriteJSON(w, convertCapability(capability))
}

func (c *Capabilities) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("capabilities_query").
		HandlerFunc(utils.WrapHandlerFunc(c.handleQuery))
	sub.Path("").
		Methods(http.MethodPost).
		Name("capabilities_advertise").
		HandlerFunc(utils.WrapHandlerFunc(c.handleAdvertise))
}
