// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/moot/cry"
)

func FuzzRecordMarshalling(f *testing.F) {
	f.Fuzz(func(t *testing.T, b []byte, ui32 uint32, ui64 uint64) {
		newRecord := randomRecord(t, b, ui32, ui64)
		enc, err := newRecord.MarshalBinary()
		if err != nil {
			t.Errorf("MarshalBinary: %v", err)
		}
		decRecord := new(Record)
		err = decRecord.UnmarshalBinary(enc)
		if err != nil {
			t.Errorf("UnmarshalBinary: %v", err)
		}
		if err := checkRecordsEquality(newRecord, decRecord); err != nil {
			t.Errorf("record expected to be the same but: %v", err)
		}
	})
}

func randomRecord(t *testing.T, b []byte, ui32 uint32, ui64 uint64) *Record {
	pk, err := cry.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	r := new(Builder).
		Kind(ui32).
		CreatedAt(ui64).
		Tag("d", hex.EncodeToString(b)).
		Tag("x", string(b)).
		Content(string(b)).
		Build()
	return MustSign(r, pk)
}

func checkRecordsEquality(expected, actual *Record) error {
	if expected.ID() != actual.ID() {
		return fmt.Errorf("ID: expected %v, got %v", expected.ID(), actual.ID())
	}
	if expected.Author() != actual.Author() {
		return fmt.Errorf("Author: expected %v, got %v", expected.Author(), actual.Author())
	}
	if !actual.Verify() {
		return fmt.Errorf("signature of %v expected to verify", actual.ID())
	}
	return nil
}

func FuzzRecordDecoding(f *testing.F) {
	f.Fuzz(func(t *testing.T, input []byte) {
		var (
			r1 Record
			r2 Record
		)
		_ = rlp.DecodeBytes(input, &r1)
		_ = r2.UnmarshalBinary(input)
	})
}
