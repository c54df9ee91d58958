// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/vechain/moot/moot"
)

// jsonRecord is the wire form of a record used by the HTTP API and
// subscriptions.
type jsonRecord struct {
	ID        moot.Bytes32 `json:"id"`
	Author    moot.PubKey  `json:"author_pubkey"`
	CreatedAt uint64       `json:"created_at"`
	Kind      uint32       `json:"kind"`
	Tags      Tags         `json:"tags"`
	Content   string       `json:"content"`
	Signature string       `json:"signature"`
}

// MarshalJSON implements json.Marshaler.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(&jsonRecord{
		ID:        r.ID(),
		Author:    r.body.Author,
		CreatedAt: r.body.CreatedAt,
		Kind:      r.body.Kind,
		Tags:      r.body.Tags,
		Content:   r.body.Content,
		Signature: hex.EncodeToString(r.body.Signature),
	})
}

// UnmarshalJSON implements json.Unmarshaler. The embedded id must match the
// hash of the decoded fields.
func (r *Record) UnmarshalJSON(data []byte) error {
	var jr jsonRecord
	if err := json.Unmarshal(data, &jr); err != nil {
		return err
	}
	sig, err := hex.DecodeString(jr.Signature)
	if err != nil {
		return errors.Wrap(err, "signature")
	}

	decoded := Record{body: body{
		Author:    jr.Author,
		CreatedAt: jr.CreatedAt,
		Kind:      jr.Kind,
		Tags:      jr.Tags,
		Content:   jr.Content,
		Signature: sig,
	}}
	if decoded.ID() != jr.ID {
		return errors.New("record id mismatch")
	}
	*r = decoded
	return nil
}
