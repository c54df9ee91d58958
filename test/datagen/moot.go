// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/vechain/moot/moot"
)

func RandBytes32() (b moot.Bytes32) {
	rand.Read(b[:])
	return
}

func RandBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}

func RandPubKey() (pk moot.PubKey) {
	rand.Read(pk[:])
	return
}

// RandProposalID returns a random 32-char hex proposal id.
func RandProposalID() string {
	return hex.EncodeToString(RandBytes(16))
}
