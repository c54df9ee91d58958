// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package discovery implements capability discovery over signed records.
// Agents advertise what they serve with replaceable kind 31990 records;
// peers query, rank and cache those advertisements, and the follow graph
// scopes lookups to socially close agents.
package discovery

import (
	"encoding/json"
	"math/big"
	"slices"
	"sort"
	"strconv"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/vechain/moot/log"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
)

var logger = log.WithContext("pkg", "discovery")

// AgentType classifies what kind of agent stands behind a capability.
type AgentType string

// Known agent types.
const (
	AgentTypeDVM         AgentType = "dvm"
	AgentTypeAssistant   AgentType = "assistant"
	AgentTypeSpecialist  AgentType = "specialist"
	AgentTypeCoordinator AgentType = "coordinator"
	AgentTypeRelay       AgentType = "relay"
)

// Valid tells whether the agent type is known.
func (a AgentType) Valid() bool {
	switch a {
	case AgentTypeDVM, AgentTypeAssistant, AgentTypeSpecialist, AgentTypeCoordinator, AgentTypeRelay:
		return true
	}
	return false
}

// Currency denominates a price.
type Currency string

// Known currencies.
const (
	CurrencyMsat Currency = "msat"
	CurrencySat  Currency = "sat"
	CurrencyUSD  Currency = "usd"
)

// Valid tells whether the currency is known.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyMsat, CurrencySat, CurrencyUSD:
		return true
	}
	return false
}

// Price is what an agent charges for serving one kind.
type Price struct {
	Amount   *big.Int `json:"amount"`
	Currency Currency `json:"currency"`
}

// Capacity advertises how much load an agent accepts.
type Capacity struct {
	MaxConcurrent int `json:"max_concurrent"`
	QueueDepth    int `json:"queue_depth"`
}

// Metadata is the free-form profile carried in the record content.
type Metadata struct {
	Name    string `json:"name,omitempty"`
	About   string `json:"about,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Capability is the parsed view of a kind 31990 record. For any
// (author, identifier) pair only the newest record is authoritative.
type Capability struct {
	Identifier     string
	Author         moot.PubKey
	SupportedKinds []uint32
	SupportedNIPs  []string
	AgentType      AgentType
	PaymentAddress moot.PaymentAddress
	Pricing        map[uint32]Price
	Capacity       *Capacity
	Model          string
	Skills         []string
	Metadata       Metadata
	CreatedAt      uint64
	RecordID       moot.Bytes32
}

// Supports tells whether the agent serves the kind.
func (c *Capability) Supports(kind uint32) bool {
	return slices.Contains(c.SupportedKinds, kind)
}

// PriceOf returns the advertised price of a kind.
func (c *Capability) PriceOf(kind uint32) (Price, bool) {
	p, ok := c.Pricing[kind]
	return p, ok
}

// CapabilityDraft carries the author-side inputs of an advertisement.
type CapabilityDraft struct {
	Identifier     string // defaults to the payment address
	SupportedKinds []uint32
	SupportedNIPs  []string
	AgentType      AgentType
	PaymentAddress moot.PaymentAddress
	Pricing        map[uint32]Price
	Capacity       *Capacity
	Model          string
	Skills         []string
	Metadata       Metadata
}

// BuildCapability validates the draft and signs the kind 31990 record.
// Pricing tags are emitted in ascending kind order so the record bytes are
// reproducible.
func BuildCapability(draft *CapabilityDraft, pk *secp256k1.PrivateKey, now uint64) (*record.Record, *Capability, error) {
	if !draft.AgentType.Valid() {
		return nil, nil, invalidCapability("unknown agent type %q", string(draft.AgentType))
	}
	if err := draft.PaymentAddress.Validate(); err != nil {
		return nil, nil, invalidCapability("payment address: %s", err)
	}
	if len(draft.SupportedKinds) == 0 {
		return nil, nil, invalidCapability("at least one supported kind required")
	}
	identifier := draft.Identifier
	if identifier == "" {
		identifier = string(draft.PaymentAddress)
	}
	for kind, price := range draft.Pricing {
		if price.Amount == nil || price.Amount.Sign() < 0 {
			return nil, nil, invalidCapability("price of kind %d must be non-negative", kind)
		}
		if !price.Currency.Valid() {
			return nil, nil, invalidCapability("unknown currency %q", string(price.Currency))
		}
	}
	if draft.Capacity != nil && (draft.Capacity.MaxConcurrent < 0 || draft.Capacity.QueueDepth < 0) {
		return nil, nil, invalidCapability("capacity must be non-negative")
	}

	content, err := json.Marshal(draft.Metadata)
	if err != nil {
		return nil, nil, err
	}

	b := new(record.Builder).
		Kind(moot.KindCapability).
		CreatedAt(now).
		Tag("d", identifier)
	kinds := make([]uint32, 0, len(draft.SupportedKinds))
	for _, kind := range draft.SupportedKinds {
		if slices.Contains(kinds, kind) {
			continue
		}
		kinds = append(kinds, kind)
		b.Tag("k", strconv.FormatUint(uint64(kind), 10))
	}
	b.Tag("ilp-address", string(draft.PaymentAddress)).
		Tag("agent-type", string(draft.AgentType))
	for _, nip := range draft.SupportedNIPs {
		b.Tag("nip", nip)
	}
	pricedKinds := make([]uint32, 0, len(draft.Pricing))
	for kind := range draft.Pricing {
		pricedKinds = append(pricedKinds, kind)
	}
	sort.Slice(pricedKinds, func(i, j int) bool { return pricedKinds[i] < pricedKinds[j] })
	for _, kind := range pricedKinds {
		price := draft.Pricing[kind]
		b.Tag("pricing",
			strconv.FormatUint(uint64(kind), 10),
			price.Amount.String(),
			string(price.Currency))
	}
	if draft.Capacity != nil {
		b.Tag("capacity",
			strconv.Itoa(draft.Capacity.MaxConcurrent),
			strconv.Itoa(draft.Capacity.QueueDepth))
	}
	if draft.Model != "" {
		b.Tag("model", draft.Model)
	}
	if len(draft.Skills) > 0 {
		b.Tag("skills", draft.Skills...)
	}
	b.Content(string(content))

	rec, err := record.Sign(b.Build(), pk)
	if err != nil {
		return nil, nil, err
	}
	capability, err := ParseCapability(rec)
	if err != nil {
		return nil, nil, err
	}
	return rec, capability, nil
}

// ParseCapability validates a kind 31990 record and returns the capability.
func ParseCapability(r *record.Record) (*Capability, error) {
	if r.Kind() != moot.KindCapability {
		return nil, invalidCapability("kind %d is not a capability", r.Kind())
	}
	if !r.Verify() {
		return nil, invalidCapability("signature verification failed")
	}
	tags := r.Tags()

	identifier := r.Identifier()
	if identifier == "" {
		return nil, invalidCapability("missing d tag")
	}

	var kinds []uint32
	for _, t := range tags.All("k") {
		kind, err := strconv.ParseUint(t.Value(), 10, 32)
		if err != nil {
			return nil, invalidCapability("malformed k tag %q", t.Value())
		}
		if !slices.Contains(kinds, uint32(kind)) {
			kinds = append(kinds, uint32(kind))
		}
	}
	if len(kinds) == 0 {
		return nil, invalidCapability("missing k tags")
	}

	addressTag, ok := tags.First("ilp-address")
	if !ok {
		return nil, invalidCapability("missing ilp-address tag")
	}
	address, err := moot.ParsePaymentAddress(addressTag.Value())
	if err != nil {
		return nil, invalidCapability("ilp-address: %s", err)
	}

	typeTag, ok := tags.First("agent-type")
	if !ok {
		return nil, invalidCapability("missing agent-type tag")
	}
	agentType := AgentType(typeTag.Value())
	if !agentType.Valid() {
		return nil, invalidCapability("unknown agent type %q", typeTag.Value())
	}

	var nips []string
	for _, t := range tags.All("nip") {
		nips = append(nips, t.Value())
	}

	var pricing map[uint32]Price
	for _, t := range tags.All("pricing") {
		values := t.Values()
		if len(values) < 3 {
			return nil, invalidCapability("pricing tag needs kind, amount and currency")
		}
		kind, err := strconv.ParseUint(values[0], 10, 32)
		if err != nil {
			return nil, invalidCapability("malformed pricing kind %q", values[0])
		}
		amount, ok := new(big.Int).SetString(values[1], 10)
		if !ok || amount.Sign() < 0 {
			return nil, invalidCapability("malformed pricing amount %q", values[1])
		}
		currency := Currency(values[2])
		if !currency.Valid() {
			return nil, invalidCapability("unknown currency %q", values[2])
		}
		if pricing == nil {
			pricing = make(map[uint32]Price)
		}
		if _, dup := pricing[uint32(kind)]; !dup {
			pricing[uint32(kind)] = Price{Amount: amount, Currency: currency}
		}
	}

	var capacity *Capacity
	if t, ok := tags.First("capacity"); ok {
		values := t.Values()
		if len(values) < 2 {
			return nil, invalidCapability("capacity tag needs max and queue")
		}
		maxConcurrent, err := strconv.Atoi(values[0])
		if err != nil || maxConcurrent < 0 {
			return nil, invalidCapability("malformed capacity max %q", values[0])
		}
		queueDepth, err := strconv.Atoi(values[1])
		if err != nil || queueDepth < 0 {
			return nil, invalidCapability("malformed capacity queue %q", values[1])
		}
		capacity = &Capacity{MaxConcurrent: maxConcurrent, QueueDepth: queueDepth}
	}

	var model string
	if t, ok := tags.First("model"); ok {
		model = t.Value()
	}
	var skills []string
	if t, ok := tags.First("skills"); ok {
		skills = t.Values()
	}

	var metadata Metadata
	if content := r.Content(); content != "" {
		if err := json.Unmarshal([]byte(content), &metadata); err != nil {
			return nil, invalidCapability("metadata is not a JSON object: %s", err)
		}
	}

	return &Capability{
		Identifier:     identifier,
		Author:         r.Author(),
		SupportedKinds: kinds,
		SupportedNIPs:  nips,
		AgentType:      agentType,
		PaymentAddress: address,
		Pricing:        pricing,
		Capacity:       capacity,
		Model:          model,
		Skills:         skills,
		Metadata:       metadata,
		CreatedAt:      r.CreatedAt(),
		RecordID:       r.ID(),
	}, nil
}
