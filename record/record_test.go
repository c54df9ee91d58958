// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/moot/cry"
	"github.com/vechain/moot/moot"
)

func TestRecordBuildSignVerify(t *testing.T) {
	pk, err := cry.GenerateKey()
	require.NoError(t, err)

	r := new(Builder).
		Kind(moot.KindProposal).
		CreatedAt(1700000000).
		Tag("d", "c0ffee0000000000c0ffee0000000000").
		Tag("type", "consensus").
		Content("upgrade the fleet").
		Build()

	signed := MustSign(r, pk)

	assert.Equal(t, cry.PubKeyOf(pk), signed.Author())
	assert.Equal(t, uint64(1700000000), signed.CreatedAt())
	assert.Equal(t, moot.KindProposal, signed.Kind())
	assert.Equal(t, "upgrade the fleet", signed.Content())
	assert.Len(t, signed.Signature(), cry.SignatureLength)
	assert.True(t, signed.Verify())

	// unsigned record never verifies
	assert.False(t, r.Verify())
}

func TestRecordVerifyTampered(t *testing.T) {
	pk, err := cry.GenerateKey()
	require.NoError(t, err)

	signed := MustSign(new(Builder).
		Kind(moot.KindVote).
		CreatedAt(1700000001).
		Content("approve").
		Build(), pk)
	require.True(t, signed.Verify())

	// same signature over altered content
	tampered, err := new(Builder).
		Author(signed.Author()).
		Kind(moot.KindVote).
		CreatedAt(1700000001).
		Content("reject").
		Build().
		WithSignature(signed.Signature())
	require.NoError(t, err)
	assert.False(t, tampered.Verify())

	// altered author
	other, err := cry.GenerateKey()
	require.NoError(t, err)
	wrongAuthor, err := new(Builder).
		Author(cry.PubKeyOf(other)).
		Kind(moot.KindVote).
		CreatedAt(1700000001).
		Content("approve").
		Build().
		WithSignature(signed.Signature())
	require.NoError(t, err)
	assert.False(t, wrongAuthor.Verify())
}

func TestRecordID(t *testing.T) {
	build := func() *Record {
		return new(Builder).
			Kind(moot.KindCapability).
			CreatedAt(1700000002).
			Tag("d", "agent").
			Content("{}").
			Build()
	}

	r1 := build()
	r2 := build()
	assert.Equal(t, r1.ID(), r2.ID())

	pk, err := cry.GenerateKey()
	require.NoError(t, err)
	signed := MustSign(new(Builder).
		Author(cry.PubKeyOf(pk)).
		Kind(moot.KindCapability).
		CreatedAt(1700000002).
		Tag("d", "agent").
		Content("{}").
		Build(), pk)

	// signature is excluded from the hashed material
	unsigned := new(Builder).
		Author(cry.PubKeyOf(pk)).
		Kind(moot.KindCapability).
		CreatedAt(1700000002).
		Tag("d", "agent").
		Content("{}").
		Build()
	assert.Equal(t, unsigned.ID(), signed.ID())

	// any field change moves the id
	changed := new(Builder).
		Kind(moot.KindCapability).
		CreatedAt(1700000003).
		Tag("d", "agent").
		Content("{}").
		Build()
	assert.NotEqual(t, r1.ID(), changed.ID())
}

func TestRecordSignRejectsNilKey(t *testing.T) {
	_, err := Sign(new(Builder).Build(), nil)
	assert.Error(t, err)
}

func TestWithSignatureLength(t *testing.T) {
	r := new(Builder).Build()
	_, err := r.WithSignature([]byte{1, 2, 3})
	assert.EqualError(t, err, errShortSignature.Error())
}

func TestRecordEncodeDecode(t *testing.T) {
	pk, err := cry.GenerateKey()
	require.NoError(t, err)

	signed := MustSign(new(Builder).
		Kind(moot.KindProposal).
		CreatedAt(1700000004).
		Tag("d", "deadbeefdeadbeefdeadbeefdeadbeef").
		Tag("p", "aa", "worker").
		Content("rotated keys").
		Build(), pk)

	data, err := signed.MarshalBinary()
	require.NoError(t, err)

	decoded := new(Record)
	require.NoError(t, decoded.UnmarshalBinary(data))

	assert.Equal(t, signed.ID(), decoded.ID())
	assert.Equal(t, signed.Author(), decoded.Author())
	assert.Equal(t, signed.CreatedAt(), decoded.CreatedAt())
	assert.Equal(t, signed.Kind(), decoded.Kind())
	assert.Equal(t, signed.Content(), decoded.Content())
	assert.Equal(t, signed.Signature(), decoded.Signature())
	assert.Equal(t, signed.Size(), decoded.Size())
	assert.True(t, decoded.Verify())
}

func TestRecordJSON(t *testing.T) {
	pk, err := cry.GenerateKey()
	require.NoError(t, err)

	signed := MustSign(new(Builder).
		Kind(moot.KindVote).
		CreatedAt(1700000005).
		Tag("vote", "approve").
		Build(), pk)

	data, err := json.Marshal(signed)
	require.NoError(t, err)

	decoded := new(Record)
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, signed.ID(), decoded.ID())
	assert.True(t, decoded.Verify())

	// a forged id is rejected
	var loose map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &loose))
	loose["id"] = json.RawMessage(`"` + moot.Bytes32{0xff}.String() + `"`)
	forged, err := json.Marshal(loose)
	require.NoError(t, err)
	assert.Error(t, json.Unmarshal(forged, new(Record)))
}

func TestRecordIdentifier(t *testing.T) {
	assert.Equal(t, "", new(Builder).Build().Identifier())

	r := new(Builder).
		Tag("e", "abc").
		Tag("d", "first").
		Tag("d", "second").
		Build()
	assert.Equal(t, "first", r.Identifier())
}

func TestTags(t *testing.T) {
	ts := Tags{
		NewTag("e", "id1", "proposal"),
		NewTag("p", "aa"),
		NewTag("e", "id2"),
		NewTag("empty"),
	}

	first, ok := ts.First("e")
	require.True(t, ok)
	assert.Equal(t, "id1", first.Value())
	assert.Equal(t, []string{"id1", "proposal"}, first.Values())

	_, ok = ts.First("x")
	assert.False(t, ok)

	assert.Len(t, ts.All("e"), 2)
	assert.Equal(t, "", Tag{"empty"}.Value())
	assert.Equal(t, "", Tag{}.Name())

	cpy := ts.Copy()
	cpy[0][1] = "mutated"
	assert.Equal(t, "id1", ts[0].Value())
}
