// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package routing

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
)

// followTagName marks follow entries carrying a payment address.
const followTagName = "ilp"

// BuildFollowRecord signs a kind 3 record advertising the router's current
// follow list. One "ilp" tag per follow: pubkey, payment address, then
// optional nickname and relay hint.
func (r *Router) BuildFollowRecord(pk *secp256k1.PrivateKey, createdAt uint64) (*record.Record, error) {
	follows, err := r.List()
	if err != nil {
		return nil, err
	}

	b := new(record.Builder).
		Kind(moot.KindFollows).
		CreatedAt(createdAt)
	for _, f := range follows {
		values := []string{f.Pubkey.String(), string(f.PaymentAddress)}
		if f.Nickname != "" || f.RelayHint != "" {
			values = append(values, f.Nickname)
		}
		if f.RelayHint != "" {
			values = append(values, f.RelayHint)
		}
		b.Tag(followTagName, values...)
	}
	return record.Sign(b.Build(), pk)
}

// ParseFollows extracts the follows referenced by a kind 3 record. Malformed
// entries are skipped with a warning, matching the tolerant read side of the
// follow graph.
func ParseFollows(r *record.Record) ([]*Follow, error) {
	if r.Kind() != moot.KindFollows {
		return nil, errors.Errorf("not a follow record: kind %d", r.Kind())
	}
	if !r.Verify() {
		return nil, errors.New("invalid follow record signature")
	}

	var follows []*Follow
	for _, t := range r.Tags().All(followTagName) {
		values := t.Values()
		if len(values) < 2 {
			logger.Warn("skipping short follow tag", "author", r.Author(), "len", len(values))
			continue
		}
		pubkey, err := moot.ParsePubKey(values[0])
		if err != nil {
			logger.Warn("skipping follow with bad pubkey", "author", r.Author(), "err", err)
			continue
		}
		addr, err := moot.ParsePaymentAddress(values[1])
		if err != nil {
			logger.Warn("skipping follow with bad payment address", "author", r.Author(), "err", err)
			continue
		}
		f := &Follow{
			Pubkey:         pubkey,
			PaymentAddress: addr,
			AddedAt:        r.CreatedAt(),
		}
		if len(values) > 2 {
			f.Nickname = values[2]
		}
		if len(values) > 3 {
			f.RelayHint = values[3]
		}
		follows = append(follows, f)
	}
	return follows, nil
}
