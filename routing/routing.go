// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package routing keeps the follow graph of the local agent. Follows are
// persisted in a key-value store keyed by pubkey and exchanged with peers
// through kind 3 follow records.
package routing

import (
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/moot/kv"
	"github.com/vechain/moot/log"
	"github.com/vechain/moot/moot"
)

var logger = log.WithContext("pkg", "routing")

// Follow is one followed agent.
type Follow struct {
	Pubkey         moot.PubKey
	PaymentAddress moot.PaymentAddress
	Nickname       string
	RelayHint      string
	AddedAt        uint64 // unix seconds
}

// followBody is the stored value; the pubkey is the store key.
type followBody struct {
	PaymentAddress string
	Nickname       string
	RelayHint      string
	AddedAt        uint64
}

// Router reads and mutates the local follow list.
type Router struct {
	store kv.GetPutter
}

// NewRouter creates a router over the given store.
func NewRouter(store kv.GetPutter) *Router {
	return &Router{store: store}
}

// Add puts or overwrites a follow.
func (r *Router) Add(f *Follow) error {
	if f.Pubkey.IsZero() {
		return errors.New("zero pubkey")
	}
	if err := f.PaymentAddress.Validate(); err != nil {
		return err
	}
	data, err := rlp.EncodeToBytes(&followBody{
		PaymentAddress: string(f.PaymentAddress),
		Nickname:       f.Nickname,
		RelayHint:      f.RelayHint,
		AddedAt:        f.AddedAt,
	})
	if err != nil {
		return err
	}
	return r.store.Put(f.Pubkey.Bytes(), data)
}

// Remove deletes a follow. Removing an unknown pubkey is a no-op.
func (r *Router) Remove(pubkey moot.PubKey) error {
	return r.store.Delete(pubkey.Bytes())
}

// Lookup returns the follow for the pubkey, or nil when not followed.
func (r *Router) Lookup(pubkey moot.PubKey) (*Follow, error) {
	data, err := r.store.Get(pubkey.Bytes())
	if err != nil {
		if r.store.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var b followBody
	if err := rlp.DecodeBytes(data, &b); err != nil {
		return nil, err
	}
	return &Follow{
		Pubkey:         pubkey,
		PaymentAddress: moot.PaymentAddress(b.PaymentAddress),
		Nickname:       b.Nickname,
		RelayHint:      b.RelayHint,
		AddedAt:        b.AddedAt,
	}, nil
}

// List returns all follows ordered by time added, then pubkey.
func (r *Router) List() ([]*Follow, error) {
	iter := r.store.NewIterator(kv.Range{})
	defer iter.Release()

	var follows []*Follow
	for iter.Next() {
		var b followBody
		if err := rlp.DecodeBytes(iter.Value(), &b); err != nil {
			logger.Warn("skipping undecodable follow entry", "key", iter.Key(), "err", err)
			continue
		}
		follows = append(follows, &Follow{
			Pubkey:         moot.BytesToPubKey(iter.Key()),
			PaymentAddress: moot.PaymentAddress(b.PaymentAddress),
			Nickname:       b.Nickname,
			RelayHint:      b.RelayHint,
			AddedAt:        b.AddedAt,
		})
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	sort.SliceStable(follows, func(i, j int) bool {
		if follows[i].AddedAt != follows[j].AddedAt {
			return follows[i].AddedAt < follows[j].AddedAt
		}
		return follows[i].Pubkey.String() < follows[j].Pubkey.String()
	})
	return follows, nil
}
