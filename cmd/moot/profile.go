// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/moot/discovery"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/node"
	"github.com/vechain/moot/routing"
)

// profile is the YAML agent profile. Everything is optional; the flags win
// over the profile where both name the same setting.
type profile struct {
	PaymentAddress string `yaml:"payment_address"`
	Nickname       string `yaml:"nickname"`

	Follows []profileFollow `yaml:"follows"`

	Capability *profileCapability `yaml:"capability"`
}

type profileFollow struct {
	Pubkey         string `yaml:"pubkey"`
	PaymentAddress string `yaml:"payment_address"`
	Nickname       string `yaml:"nickname"`
	RelayHint      string `yaml:"relay_hint"`
}

type profileCapability struct {
	Identifier     string                  `yaml:"identifier"`
	SupportedKinds []uint32                `yaml:"supported_kinds"`
	SupportedNIPs  []string                `yaml:"supported_nips"`
	AgentType      string                  `yaml:"agent_type"`
	Model          string                  `yaml:"model"`
	Skills         []string                `yaml:"skills"`
	Pricing        map[uint32]profilePrice `yaml:"pricing"`
	MaxConcurrent  int                     `yaml:"max_concurrent"`
	QueueDepth     int                     `yaml:"queue_depth"`
	About          string                  `yaml:"about"`
	Picture        string                  `yaml:"picture"`
}

type profilePrice struct {
	Amount   string `yaml:"amount"`
	Currency string `yaml:"currency"`
}

func loadProfile(path string) (*profile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var p profile
	if err := decoder.Decode(&p); err != nil {
		return nil, errors.Wrap(err, "decode profile")
	}
	return &p, nil
}

// applyProfile seeds the follow table and publishes the capability
// advertisement described by the profile.
func applyProfile(p *profile, n *node.Node) error {
	now := uint64(time.Now().Unix())

	added := 0
	for _, f := range p.Follows {
		pubkey, err := moot.ParsePubKey(f.Pubkey)
		if err != nil {
			return errors.WithMessagef(err, "follow [%v]", f.Pubkey)
		}
		if followed, err := n.Router().Lookup(pubkey); err != nil {
			return err
		} else if followed != nil {
			continue
		}
		if err := n.Router().Add(&routing.Follow{
			Pubkey:         pubkey,
			PaymentAddress: moot.PaymentAddress(f.PaymentAddress),
			Nickname:       f.Nickname,
			RelayHint:      f.RelayHint,
			AddedAt:        now,
		}); err != nil {
			return errors.WithMessagef(err, "follow [%v]", f.Pubkey)
		}
		added++
	}
	if added > 0 {
		if _, err := n.PublishFollows(); err != nil {
			return errors.Wrap(err, "publish follows")
		}
		logger.Info("follow seeds applied", "added", added)
	}

	if p.Capability != nil {
		draft, err := p.Capability.toDraft(p.Nickname)
		if err != nil {
			return err
		}
		capability, err := n.Advertise(draft)
		if err != nil {
			return errors.Wrap(err, "advertise capability")
		}
		logger.Info("capability advertised",
			"identifier", capability.Identifier, "kinds", len(capability.SupportedKinds))
	}
	return nil
}

func (c *profileCapability) toDraft(nickname string) (*discovery.CapabilityDraft, error) {
	draft := &discovery.CapabilityDraft{
		Identifier:     c.Identifier,
		SupportedKinds: c.SupportedKinds,
		SupportedNIPs:  c.SupportedNIPs,
		AgentType:      discovery.AgentType(c.AgentType),
		Model:          c.Model,
		Skills:         c.Skills,
		Metadata: discovery.Metadata{
			Name:    nickname,
			About:   c.About,
			Picture: c.Picture,
		},
	}
	if len(c.Pricing) > 0 {
		draft.Pricing = make(map[uint32]discovery.Price, len(c.Pricing))
		for kind, price := range c.Pricing {
			amount, ok := new(big.Int).SetString(price.Amount, 10)
			if !ok {
				return nil, errors.Errorf("malformed price amount [%v] for kind %d", price.Amount, kind)
			}
			draft.Pricing[kind] = discovery.Price{
				Amount:   amount,
				Currency: discovery.Currency(price.Currency),
			}
		}
	}
	if c.MaxConcurrent > 0 || c.QueueDepth > 0 {
		draft.Capacity = &discovery.Capacity{
			MaxConcurrent: c.MaxConcurrent,
			QueueDepth:    c.QueueDepth,
		}
	}
	return draft, nil
}
