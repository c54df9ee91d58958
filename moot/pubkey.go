// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package moot

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// PubKeyLength length of an x-only public key in bytes.
	PubKeyLength = 32
)

// PubKey 32-byte x-only schnorr public key of an agent.
// The wire form is 64 lowercase hex characters, no prefix.
type PubKey [PubKeyLength]byte

var (
	_ json.Marshaler   = PubKey{}
	_ json.Unmarshaler = (*PubKey)(nil)
)

// String implements the stringer interface
func (p PubKey) String() string {
	return hex.EncodeToString(p[:])
}

// AbbrevString returns the abbreviated string presentation of the pubkey.
func (p PubKey) AbbrevString() string {
	return fmt.Sprintf("%x…%x", p[:4], p[28:])
}

// Bytes returns byte slice form of the pubkey.
func (p PubKey) Bytes() []byte {
	return p[:]
}

// IsZero returns if the pubkey has all zero bytes.
func (p PubKey) IsZero() bool {
	return p == PubKey{}
}

// MarshalJSON implements json.Marshaler.
// The value receiver matters: pubkeys are held by value in API payloads.
func (p PubKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PubKey) UnmarshalJSON(data []byte) error {
	var hex string
	if err := json.Unmarshal(data, &hex); err != nil {
		return err
	}
	parsed, err := ParsePubKey(hex)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePubKey converts a string presented pubkey into PubKey type.
// Uppercase hex is rejected, the wire form is normatively lowercase.
func ParsePubKey(s string) (PubKey, error) {
	if len(s) != PubKeyLength*2 {
		return PubKey{}, errors.New("invalid length")
	}
	if s != strings.ToLower(s) {
		return PubKey{}, errors.New("pubkey hex must be lowercase")
	}

	var p PubKey
	if _, err := hex.Decode(p[:], []byte(s)); err != nil {
		return PubKey{}, err
	}
	return p, nil
}

// MustParsePubKey converts a string presented pubkey into PubKey type, panics on error.
func MustParsePubKey(s string) PubKey {
	p, err := ParsePubKey(s)
	if err != nil {
		panic(err)
	}
	return p
}

// BytesToPubKey converts a bytes slice into a pubkey.
// If b is larger than the pubkey length, b will be cropped (from the left).
// If b is smaller than the pubkey length, b will be extended (from the left).
func BytesToPubKey(b []byte) PubKey {
	var p PubKey
	if len(b) > PubKeyLength {
		b = b[len(b)-PubKeyLength:]
	}
	copy(p[PubKeyLength-len(b):], b)
	return p
}
