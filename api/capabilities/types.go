// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package capabilities

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/moot/discovery"
	"github.com/vechain/moot/moot"
)

// Price mirrors discovery.Price on the wire, amounts as decimal strings.
type Price struct {
	Amount   string             `json:"amount"`
	Currency discovery.Currency `json:"currency"`
}

// Capability is the wire view of a capability advertisement.
type Capability struct {
	Identifier     string              `json:"identifier"`
	Author         moot.PubKey         `json:"author"`
	SupportedKinds []uint32            `json:"supported_kinds"`
	SupportedNIPs  []string            `json:"supported_nips,omitempty"`
	AgentType      discovery.AgentType `json:"agent_type"`
	PaymentAddress moot.PaymentAddress `json:"payment_address"`
	Pricing        map[uint32]Price    `json:"pricing,omitempty"`
	Capacity       *discovery.Capacity `json:"capacity,omitempty"`
	Model          string              `json:"model,omitempty"`
	Skills         []string            `json:"skills,omitempty"`
	Metadata       discovery.Metadata  `json:"metadata,omitempty"`
	CreatedAt      uint64              `json:"created_at"`
	RecordID       moot.Bytes32        `json:"record_id"`
}

// Draft is the request body of POST /capabilities.
type Draft struct {
	Identifier     string              `json:"identifier,omitempty"`
	SupportedKinds []uint32            `json:"supported_kinds"`
	SupportedNIPs  []string            `json:"supported_nips,omitempty"`
	AgentType      discovery.AgentType `json:"agent_type"`
	PaymentAddress moot.PaymentAddress `json:"payment_address,omitempty"`
	Pricing        map[uint32]Price    `json:"pricing,omitempty"`
	Capacity       *discovery.Capacity `json:"capacity,omitempty"`
	Model          string              `json:"model,omitempty"`
	Skills         []string            `json:"skills,omitempty"`
	Metadata       discovery.Metadata  `json:"metadata,omitempty"`
}

func (d *Draft) toDraft() (*discovery.CapabilityDraft, error) {
	draft := &discovery.CapabilityDraft{
		Identifier:     d.Identifier,
		SupportedKinds: d.SupportedKinds,
		SupportedNIPs:  d.SupportedNIPs,
		AgentType:      d.AgentType,
		PaymentAddress: d.PaymentAddress,
		Capacity:       d.Capacity,
		Model:          d.Model,
		Skills:         d.Skills,
		Metadata:       d.Metadata,
	}
	if len(d.Pricing) > 0 {
		draft.Pricing = make(map[uint32]discovery.Price, len(d.Pricing))
		for kind, price := range d.Pricing {
			amount, ok := new(big.Int).SetString(price.Amount, 10)
			if !ok {
				return nil, errors.Errorf("malformed amount %q of kind %d", price.Amount, kind)
			}
			draft.Pricing[kind] = discovery.Price{Amount: amount, Currency: price.Currency}
		}
	}
	return draft, nil
}

func convertCapability(c *discovery.Capability) *Capability {
	converted := &Capability{
		Identifier:     c.Identifier,
		Author:         c.Author,
		SupportedKinds: c.SupportedKinds,
		SupportedNIPs:  c.SupportedNIPs,
		AgentType:      c.AgentType,
		PaymentAddress: c.PaymentAddress,
		Capacity:       c.Capacity,
		Model:          c.Model,
		Skills:         c.Skills,
		Metadata:       c.Metadata,
		CreatedAt:      c.CreatedAt,
		RecordID:       c.RecordID,
	}
	if len(c.Pricing) > 0 {
		converted.Pricing = make(map[uint32]Price, len(c.Pricing))
		for kind, price := range c.Pricing {
			converted.Pricing[kind] = Price{Amount: price.Amount.String(), Currency: price.Currency}
		}
	}
	return converted
}

func convertCapabilities(caps []*discovery.Capability) []*Capability {
	converted := make([]*Capability, 0, len(caps))
	for _, c := range caps {
		converted = append(converted, convertCapability(c))
	}
	return converted
}
