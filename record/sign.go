// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/vechain/moot/cry"
)

// Sign stamps the record with the author pubkey derived from pk, then signs
// the record id and returns the signed record.
func Sign(r *Record, pk *secp256k1.PrivateKey) (*Record, error) {
	if pk == nil {
		return nil, errors.New("invalid private key")
	}

	stamped := Record{body: r.body}
	stamped.body.Author = cry.PubKeyOf(pk)
	stamped.body.Signature = nil

	sig, err := cry.Sign(stamped.ID(), pk)
	if err != nil {
		return nil, errors.Wrap(err, "unable to sign record")
	}

	return stamped.WithSignature(sig)
}

// MustSign signs the record or panics.
func MustSign(r *Record, pk *secp256k1.PrivateKey) *Record {
	signed, err := Sign(r, pk)
	if err != nil {
		panic(err)
	}
	return signed
}
