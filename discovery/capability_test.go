// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package discovery_test

import (
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/moot/cry"
	"github.com/vechain/moot/discovery"
	"github.com/vechain/moot/eventdb"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
)

type agent struct {
	priv    *secp256k1.PrivateKey
	pubkey  moot.PubKey
	address moot.PaymentAddress
}

func newAgent(t *testing.T, address string) *agent {
	t.Helper()
	pk, err := cry.GenerateKey()
	require.NoError(t, err)
	return &agent{
		priv:    pk,
		pubkey:  cry.PubKeyOf(pk),
		address: moot.PaymentAddress(address),
	}
}

// advertise signs and stores a capability record for the agent.
func (a *agent) advertise(t *testing.T, db *eventdb.EventDB, createdAt uint64, mod func(*discovery.CapabilityDraft)) *discovery.Capability {
	t.Helper()
	draft := &discovery.CapabilityDraft{
		SupportedKinds: []uint32{5000},
		AgentType:      discovery.AgentTypeDVM,
		PaymentAddress: a.address,
	}
	if mod != nil {
		mod(draft)
	}
	rec, capability, err := discovery.BuildCapability(draft, a.priv, createdAt)
	require.NoError(t, err)
	_, err = db.Store(rec)
	require.NoError(t, err)
	return capability
}

func msat(amount int64) discovery.Price {
	return discovery.Price{Amount: big.NewInt(amount), Currency: discovery.CurrencyMsat}
}

func TestCapabilityRoundTrip(t *testing.T) {
	a := newAgent(t, "g.agents.alice")
	draft := &discovery.CapabilityDraft{
		Identifier:     "alice-worker",
		SupportedKinds: []uint32{5000, 5100},
		SupportedNIPs:  []string{"NIP-89", "NIP-90"},
		AgentType:      discovery.AgentTypeSpecialist,
		PaymentAddress: a.address,
		Pricing: map[uint32]discovery.Price{
			5000: msat(1000),
			5100: {Amount: big.NewInt(2), Currency: discovery.CurrencyUSD},
		},
		Capacity: &discovery.Capacity{MaxConcurrent: 4, QueueDepth: 16},
		Model:    "gpt-x",
		Skills:   []string{"translation", "summarization"},
		Metadata: discovery.Metadata{Name: "alice", About: "text worker"},
	}

	rec, built, err := discovery.BuildCapability(draft, a.priv, 1000)
	require.NoError(t, err)
	assert.Equal(t, moot.KindCapability, rec.Kind())
	assert.Equal(t, "alice-worker", rec.Identifier())
	assert.True(t, rec.Verify())

	parsed, err := discovery.ParseCapability(rec)
	require.NoError(t, err)
	assert.Equal(t, built, parsed)

	assert.Equal(t, a.pubkey, parsed.Author)
	assert.Equal(t, []uint32{5000, 5100}, parsed.SupportedKinds)
	assert.Equal(t, discovery.AgentTypeSpecialist, parsed.AgentType)
	assert.Equal(t, a.address, parsed.PaymentAddress)
	assert.Equal(t, big.NewInt(1000), parsed.Pricing[5000].Amount)
	assert.Equal(t, discovery.CurrencyUSD, parsed.Pricing[5100].Currency)
	require.NotNil(t, parsed.Capacity)
	assert.Equal(t, 4, parsed.Capacity.MaxConcurrent)
	assert.Equal(t, []string{"translation", "summarization"}, parsed.Skills)
	assert.Equal(t, "alice", parsed.Metadata.Name)
	assert.Equal(t, uint64(1000), parsed.CreatedAt)
	assert.Equal(t, rec.ID(), parsed.RecordID)
}

func TestCapabilityIdentifierDefaultsToAddress(t *testing.T) {
	a := newAgent(t, "g.agents.bob")
	rec, capability, err := discovery.BuildCapability(&discovery.CapabilityDraft{
		SupportedKinds: []uint32{5000, 5000}, // duplicates collapse
		AgentType:      discovery.AgentTypeAssistant,
		PaymentAddress: a.address,
	}, a.priv, 1000)
	require.NoError(t, err)
	assert.Equal(t, "g.agents.bob", rec.Identifier())
	assert.Equal(t, "g.agents.bob", capability.Identifier)
	assert.Equal(t, []uint32{5000}, capability.SupportedKinds)
}

func TestBuildCapabilityValidation(t *testing.T) {
	a := newAgent(t, "g.agents.carol")

	tests := []struct {
		name string
		mod  func(*discovery.CapabilityDraft)
	}{
		{"unknown agent type", func(d *discovery.CapabilityDraft) { d.AgentType = "oracle" }},
		{"bad payment address", func(d *discovery.CapabilityDraft) { d.PaymentAddress = "g..bad" }},
		{"no supported kinds", func(d *discovery.CapabilityDraft) { d.SupportedKinds = nil }},
		{"negative price", func(d *discovery.CapabilityDraft) {
			d.Pricing = map[uint32]discovery.Price{5000: {Amount: big.NewInt(-1), Currency: discovery.CurrencyMsat}}
		}},
		{"unknown currency", func(d *discovery.CapabilityDraft) {
			d.Pricing = map[uint32]discovery.Price{5000: {Amount: big.NewInt(1), Currency: "eur"}}
		}},
		{"negative capacity", func(d *discovery.CapabilityDraft) {
			d.Capacity = &discovery.Capacity{MaxConcurrent: -1}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := &discovery.CapabilityDraft{
				SupportedKinds: []uint32{5000},
				AgentType:      discovery.AgentTypeDVM,
				PaymentAddress: a.address,
			}
			tt.mod(draft)
			_, _, err := discovery.BuildCapability(draft, a.priv, 1000)
			assert.True(t, discovery.IsInvalidCapability(err), "got %v", err)
		})
	}
}

func TestParseCapabilityRejects(t *testing.T) {
	a := newAgent(t, "g.agents.dave")

	t.Run("wrong kind", func(t *testing.T) {
		rec := record.MustSign(new(record.Builder).
			Kind(moot.KindProposal).
			Tag("d", "x").
			Build(), a.priv)
		_, err := discovery.ParseCapability(rec)
		assert.True(t, discovery.IsInvalidCapability(err))
	})

	t.Run("missing tags", func(t *testing.T) {
		rec := record.MustSign(new(record.Builder).
			Kind(moot.KindCapability).
			Tag("d", "dave").
			Tag("k", "5000").
			Build(), a.priv)
		// no ilp-address tag
		_, err := discovery.ParseCapability(rec)
		assert.True(t, discovery.IsInvalidCapability(err))
	})

	t.Run("malformed k tag", func(t *testing.T) {
		rec := record.MustSign(new(record.Builder).
			Kind(moot.KindCapability).
			Tag("d", "dave").
			Tag("k", "not-a-kind").
			Tag("ilp-address", "g.agents.dave").
			Tag("agent-type", "dvm").
			Build(), a.priv)
		_, err := discovery.ParseCapability(rec)
		assert.True(t, discovery.IsInvalidCapability(err))
	})

	t.Run("tampered signature", func(t *testing.T) {
		rec := record.MustSign(new(record.Builder).
			Kind(moot.KindCapability).
			Tag("d", "dave").
			Tag("k", "5000").
			Tag("ilp-address", "g.agents.dave").
			Tag("agent-type", "dvm").
			Build(), a.priv)
		sig := rec.Signature()
		sig[0] ^= 0xff
		tampered, err := rec.WithSignature(sig)
		require.NoError(t, err)
		_, err = discovery.ParseCapability(tampered)
		assert.True(t, discovery.IsInvalidCapability(err))
	})
}
