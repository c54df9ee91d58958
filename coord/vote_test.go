// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package coord_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/moot/coord"
	"github.com/vechain/moot/cry"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
	"github.com/vechain/moot/test/datagen"
)

func TestVoteRoundTrip(t *testing.T) {
	coordinator, members, pubkeys := newCouncil(t, 3)
	_, p, err := coordinator.BuildProposal(&coord.ProposalDraft{
		Type:         coord.TypeMajority,
		Participants: pubkeys,
		ExpiresIn:    3600,
		Description:  "pick a relay",
	})
	require.NoError(t, err)

	rec, built, err := members[1].BuildVote(p, coord.VoteApprove, "fastest uplink", []int64{2, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, "fastest uplink", rec.Content())

	parsed, err := coord.ParseVote(rec, p)
	require.NoError(t, err)
	assert.Equal(t, built, parsed)
	assert.Equal(t, pubkeys[1], parsed.Voter)
	assert.Equal(t, p.ID, parsed.ProposalID)
	assert.Equal(t, p.RecordID, parsed.ProposalRef)
	assert.Equal(t, coord.VoteApprove, parsed.Value)
	assert.Equal(t, "fastest uplink", parsed.Reason)
	assert.Equal(t, []int64{2, 0, 1}, parsed.Rank)
}

func TestBuildVoteValidation(t *testing.T) {
	coordinator, members, pubkeys := newCouncil(t, 2)
	_, p, err := coordinator.BuildProposal(&coord.ProposalDraft{
		Type:         coord.TypeConsensus,
		Participants: pubkeys,
		ExpiresIn:    3600,
		Description:  "rotate keys",
	})
	require.NoError(t, err)

	_, _, err = coordinator.BuildVote(p, coord.VoteApprove, "", nil)
	assert.True(t, coord.IsNotParticipant(err))

	_, _, err = members[0].BuildVote(p, "maybe", "", nil)
	assert.True(t, coord.IsInvalidRecord(err))

	_, _, err = members[0].BuildVote(p, coord.VoteApprove, strings.Repeat("x", moot.MaxReasonLength+1), nil)
	assert.True(t, coord.IsInvalidRecord(err))

	_, _, err = members[0].BuildVote(p, coord.VoteApprove, "", make([]int64, moot.MaxRankEntries+1))
	assert.True(t, coord.IsInvalidRecord(err))
}

func TestParseVoteRejects(t *testing.T) {
	memberKey, err := cry.GenerateKey()
	require.NoError(t, err)
	member, err := coord.NewAuthor(memberKey, "agents.member0")
	require.NoError(t, err)

	coordinator := newAuthor(t, "agents.coordinator")
	_, p, err := coordinator.BuildProposal(&coord.ProposalDraft{
		Type:         coord.TypeConsensus,
		Participants: []moot.PubKey{member.PubKey(), datagen.RandPubKey()},
		ExpiresIn:    3600,
		Description:  "adopt new schema",
	})
	require.NoError(t, err)

	sign := func(b *record.Builder) *record.Record {
		rec, err := record.Sign(b.Build(), memberKey)
		require.NoError(t, err)
		return rec
	}
	base := func() *record.Builder {
		return new(record.Builder).
			Kind(moot.KindVote).
			CreatedAt(2000).
			Tag("e", p.RecordID.String(), "proposal").
			Tag("d", p.ID).
			Tag("vote", "approve")
	}

	tests := []struct {
		name  string
		build func() *record.Record
		check func(*testing.T, error)
	}{
		{
			"wrong kind",
			func() *record.Record { return sign(base().Kind(moot.KindResult)) },
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"unsigned record",
			func() *record.Record { return base().Build() },
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"missing proposal reference",
			func() *record.Record {
				return sign(new(record.Builder).
					Kind(moot.KindVote).
					CreatedAt(2000).
					Tag("d", p.ID).
					Tag("vote", "approve"))
			},
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"duplicate proposal reference",
			func() *record.Record {
				return sign(base().Tag("e", p.RecordID.String(), "proposal"))
			},
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"foreign proposal reference",
			func() *record.Record {
				return sign(new(record.Builder).
					Kind(moot.KindVote).
					CreatedAt(2000).
					Tag("e", datagen.RandBytes32().String(), "proposal").
					Tag("d", p.ID).
					Tag("vote", "approve"))
			},
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"missing d tag",
			func() *record.Record {
				return sign(new(record.Builder).
					Kind(moot.KindVote).
					CreatedAt(2000).
					Tag("e", p.RecordID.String(), "proposal").
					Tag("vote", "approve"))
			},
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"d names another proposal",
			func() *record.Record {
				return sign(new(record.Builder).
					Kind(moot.KindVote).
					CreatedAt(2000).
					Tag("e", p.RecordID.String(), "proposal").
					Tag("d", datagen.RandProposalID()).
					Tag("vote", "approve"))
			},
			func(t *testing.T, err error) { assert.True(t, coord.IsProposalMismatch(err)) },
		},
		{
			"unknown vote value",
			func() *record.Record {
				return sign(new(record.Builder).
					Kind(moot.KindVote).
					CreatedAt(2000).
					Tag("e", p.RecordID.String(), "proposal").
					Tag("d", p.ID).
					Tag("vote", "maybe"))
			},
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"non-numeric rank",
			func() *record.Record {
				return sign(base().Tag("rank", "1", "second", "3"))
			},
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"voter not listed",
			func() *record.Record { return signRecord(t, base()) },
			func(t *testing.T, err error) { assert.True(t, coord.IsNotParticipant(err)) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := coord.ParseVote(tt.build(), p)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
