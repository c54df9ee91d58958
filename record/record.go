// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package record implements the signed record, the unit of exchange between
// agents. A record is identified by the blake2b hash of the RLP encoding of
// its author, timestamp, kind, tags and content, and carries a BIP-340
// schnorr signature over that id.
package record

import (
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/moot/cry"
	"github.com/vechain/moot/moot"
)

var errShortSignature = errors.New("invalid signature length")

// Record is an immutable signed record.
type Record struct {
	body body

	cache struct {
		id       atomic.Value
		size     atomic.Value
		verified atomic.Value
	}
}

// body describes details of a record. Field order fixes the canonical
// serialization, so it must not change.
type body struct {
	Author    moot.PubKey
	CreatedAt uint64
	Kind      uint32
	Tags      Tags
	Content   string
	Signature []byte
}

// Author returns the author pubkey.
func (r *Record) Author() moot.PubKey { return r.body.Author }

// CreatedAt returns the creation timestamp in unix seconds.
func (r *Record) CreatedAt() uint64 { return r.body.CreatedAt }

// Kind returns the record kind.
func (r *Record) Kind() uint32 { return r.body.Kind }

// Tags returns a copy of the tag list.
func (r *Record) Tags() Tags { return r.body.Tags.Copy() }

// Content returns the record content.
func (r *Record) Content() string { return r.body.Content }

// Signature returns a copy of the signature.
func (r *Record) Signature() []byte {
	return append([]byte(nil), r.body.Signature...)
}

// Identifier returns the value of the first "d" tag, or "" if the record
// carries none. Replaceable kinds above 30000 are keyed per author and
// identifier.
func (r *Record) Identifier() string {
	if t, ok := r.body.Tags.First("d"); ok {
		return t.Value()
	}
	return ""
}

// ID computes the record id, the blake2b hash of the canonical serialization
// of (author, created_at, kind, tags, content). The signature is not part of
// the hashed material.
func (r *Record) ID() (id moot.Bytes32) {
	if cached := r.cache.id.Load(); cached != nil {
		return cached.(moot.Bytes32)
	}
	defer func() { r.cache.id.Store(id) }()

	id = moot.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []interface{}{
			r.body.Author,
			r.body.CreatedAt,
			r.body.Kind,
			r.body.Tags,
			r.body.Content,
		})
	})
	return
}

// Verify checks the schnorr signature against the record id and author
// pubkey. The result is cached.
func (r *Record) Verify() bool {
	if cached := r.cache.verified.Load(); cached != nil {
		return cached.(bool)
	}
	ok := cry.Verify(r.ID(), r.body.Signature, r.body.Author)
	r.cache.verified.Store(ok)
	return ok
}

// WithSignature creates a new record with the given signature attached.
func (r *Record) WithSignature(sig []byte) (*Record, error) {
	if len(sig) != cry.SignatureLength {
		return nil, errShortSignature
	}
	newRecord := Record{body: r.body}
	newRecord.body.Signature = append([]byte(nil), sig...)
	return &newRecord, nil
}

// Size returns the RLP-encoded size of the record.
func (r *Record) Size() (size uint64) {
	if cached := r.cache.size.Load(); cached != nil {
		return cached.(uint64)
	}
	defer func() { r.cache.size.Store(size) }()

	data, _ := rlp.EncodeToBytes(&r.body)
	size = uint64(len(data))
	return
}

// EncodeRLP implements rlp.Encoder.
func (r *Record) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &r.body)
}

// DecodeRLP implements rlp.Decoder.
func (r *Record) DecodeRLP(s *rlp.Stream) error {
	var b body
	if err := s.Decode(&b); err != nil {
		return err
	}
	*r = Record{body: b}
	return nil
}

// MarshalBinary returns the canonical RLP encoding of the record.
func (r *Record) MarshalBinary() ([]byte, error) {
	return rlp.EncodeToBytes(r)
}

// UnmarshalBinary decodes a record from its canonical RLP encoding.
func (r *Record) UnmarshalBinary(data []byte) error {
	return rlp.DecodeBytes(data, r)
}
