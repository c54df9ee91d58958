// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cry provides BIP-340 schnorr signing over secp256k1, the signature
// scheme of signed records. Public keys are in 32-byte x-only form.
package cry

import (
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/vechain/moot/moot"
)

// SignatureLength length of a schnorr signature in bytes.
const SignatureLength = 64

// GenerateKey creates a fresh secp256k1 private key.
func GenerateKey() (*secp256k1.PrivateKey, error) {
	return secp256k1.GeneratePrivateKey()
}

// PubKeyOf derives the x-only public key of the given private key.
func PubKeyOf(priv *secp256k1.PrivateKey) moot.PubKey {
	return moot.BytesToPubKey(schnorr.SerializePubKey(priv.PubKey()))
}

// Sign calculates a schnorr signature over the 32-byte digest.
//
// The digest must not be chosen by an adversary. Callers are expected to
// hash the message before signing.
func Sign(digest moot.Bytes32, priv *secp256k1.PrivateKey) ([]byte, error) {
	if priv == nil {
		return nil, errors.New("nil private key")
	}
	sig, err := schnorr.Sign(priv, digest.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "schnorr sign")
	}
	return sig.Serialize(), nil
}

// Verify reports whether sig is a valid signature of digest by pub.
func Verify(digest moot.Bytes32, sig []byte, pub moot.PubKey) bool {
	if len(sig) != SignatureLength {
		return false
	}
	s, err := schnorr.ParseSignature(sig)
	if err != nil {
		return false
	}
	p, err := schnorr.ParsePubKey(pub.Bytes())
	if err != nil {
		return false
	}
	return s.Verify(digest.Bytes(), p)
}
