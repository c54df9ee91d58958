// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package coord_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/moot/coord"
	"github.com/vechain/moot/cry"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
	"github.com/vechain/moot/test/datagen"
)

func TestResultRoundTrip(t *testing.T) {
	coordinator, members, pubkeys := newCouncil(t, 3)
	_, p, err := coordinator.BuildProposal(&coord.ProposalDraft{
		Type:         coord.TypeThreshold,
		Participants: pubkeys,
		Threshold:    2,
		ExpiresIn:    3600,
		Description:  "ship the release",
	})
	require.NoError(t, err)

	votes := make(map[moot.PubKey]*coord.Vote)
	for _, member := range members[:2] {
		_, v, err := member.BuildVote(p, coord.VoteApprove, "", nil)
		require.NoError(t, err)
		votes[v.Voter] = v
	}

	outcome, err := coord.Evaluate(p, votes, p.CreatedAt)
	require.NoError(t, err)
	require.Equal(t, coord.OutcomeApproved, outcome)

	rec, built, err := coordinator.BuildResult(p, votes, outcome)
	require.NoError(t, err)
	assert.Equal(t, "Proposal approved with 2/0/0 votes.", rec.Content())
	assert.Equal(t, []string{"e", "d", "outcome", "votes", "participants", "e", "e"}, tagNames(rec))

	parsed, err := coord.ParseResult(rec, p)
	require.NoError(t, err)
	assert.Equal(t, built, parsed)
	assert.Equal(t, coord.OutcomeApproved, parsed.Outcome)
	assert.Equal(t, coord.Tally{Approve: 2}, parsed.Tally)
	assert.Equal(t, 2, parsed.Voted)
	assert.Equal(t, 3, parsed.Total)
	assert.Equal(t, []moot.Bytes32{votes[pubkeys[0]].RecordID, votes[pubkeys[1]].RecordID}, parsed.VoteRefs)
}

func TestBuildResultRejectsNonTerminal(t *testing.T) {
	coordinator, _, pubkeys := newCouncil(t, 2)
	_, p, err := coordinator.BuildProposal(&coord.ProposalDraft{
		Type:         coord.TypeConsensus,
		Participants: pubkeys,
		ExpiresIn:    3600,
		Description:  "still undecided",
	})
	require.NoError(t, err)

	_, _, err = coordinator.BuildResult(p, nil, coord.OutcomePending)
	assert.True(t, coord.IsInvalidRecord(err))
}

func TestParseResultRejects(t *testing.T) {
	coordKey, err := cry.GenerateKey()
	require.NoError(t, err)
	coordinator, err := coord.NewAuthor(coordKey, "agents.coordinator")
	require.NoError(t, err)

	_, p, err := coordinator.BuildProposal(&coord.ProposalDraft{
		Type:         coord.TypeConsensus,
		Participants: []moot.PubKey{datagen.RandPubKey(), datagen.RandPubKey()},
		ExpiresIn:    3600,
		Description:  "verify results",
	})
	require.NoError(t, err)

	sign := func(b *record.Builder) *record.Record {
		rec, err := record.Sign(b.Build(), coordKey)
		require.NoError(t, err)
		return rec
	}
	base := func() *record.Builder {
		return new(record.Builder).
			Kind(moot.KindResult).
			CreatedAt(2000).
			Tag("e", p.RecordID.String(), "proposal").
			Tag("d", p.ID).
			Tag("outcome", "inconclusive").
			Tag("votes", "1", "0", "1").
			Tag("participants", "2", "2").
			Tag("e", datagen.RandBytes32().String(), "vote").
			Tag("e", datagen.RandBytes32().String(), "vote").
			Content("Proposal inconclusive with 1/0/1 votes.")
	}

	rec := sign(base())
	parsed, err := coord.ParseResult(rec, p)
	require.NoError(t, err)
	assert.Equal(t, coord.OutcomeInconclusive, parsed.Outcome)

	tests := []struct {
		name  string
		build func() *record.Record
		check func(*testing.T, error)
	}{
		{
			"wrong kind",
			func() *record.Record { return sign(base().Kind(moot.KindVote)) },
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"not the coordinator",
			func() *record.Record { return signRecord(t, base()) },
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"d names another proposal",
			func() *record.Record {
				return sign(new(record.Builder).
					Kind(moot.KindResult).
					CreatedAt(2000).
					Tag("e", p.RecordID.String(), "proposal").
					Tag("d", datagen.RandProposalID()).
					Tag("outcome", "approved").
					Tag("votes", "0", "0", "0").
					Tag("participants", "0", "2").
					Content("forged"))
			},
			func(t *testing.T, err error) { assert.True(t, coord.IsProposalMismatch(err)) },
		},
		{
			"non-terminal outcome",
			func() *record.Record {
				return sign(new(record.Builder).
					Kind(moot.KindResult).
					CreatedAt(2000).
					Tag("e", p.RecordID.String(), "proposal").
					Tag("d", p.ID).
					Tag("outcome", "pending").
					Tag("votes", "0", "0", "0").
					Tag("participants", "0", "2").
					Content("not settled"))
			},
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"tally disagrees with participation",
			func() *record.Record {
				return sign(new(record.Builder).
					Kind(moot.KindResult).
					CreatedAt(2000).
					Tag("e", p.RecordID.String(), "proposal").
					Tag("d", p.ID).
					Tag("outcome", "approved").
					Tag("votes", "2", "0", "0").
					Tag("participants", "1", "2").
					Tag("e", datagen.RandBytes32().String(), "vote").
					Content("bad math"))
			},
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"more votes than participants",
			func() *record.Record {
				return sign(new(record.Builder).
					Kind(moot.KindResult).
					CreatedAt(2000).
					Tag("e", p.RecordID.String(), "proposal").
					Tag("d", p.ID).
					Tag("outcome", "approved").
					Tag("votes", "3", "0", "0").
					Tag("participants", "3", "2").
					Tag("e", datagen.RandBytes32().String(), "vote").
					Tag("e", datagen.RandBytes32().String(), "vote").
					Tag("e", datagen.RandBytes32().String(), "vote").
					Content("stuffed ballot"))
			},
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"vote reference count mismatch",
			func() *record.Record {
				return sign(new(record.Builder).
					Kind(moot.KindResult).
					CreatedAt(2000).
					Tag("e", p.RecordID.String(), "proposal").
					Tag("d", p.ID).
					Tag("outcome", "approved").
					Tag("votes", "2", "0", "0").
					Tag("participants", "2", "2").
					Tag("e", datagen.RandBytes32().String(), "vote").
					Content("lost a reference"))
			},
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
		{
			"malformed votes tag",
			func() *record.Record {
				return sign(new(record.Builder).
					Kind(moot.KindResult).
					CreatedAt(2000).
					Tag("e", p.RecordID.String(), "proposal").
					Tag("d", p.ID).
					Tag("outcome", "approved").
					Tag("votes", "2", "0").
					Tag("participants", "2", "2").
					Content("two counts only"))
			},
			func(t *testing.T, err error) { assert.True(t, coord.IsInvalidRecord(err)) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := coord.ParseResult(tt.build(), p)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestCreateResultWithAction(t *testing.T) {
	coordinator, members, pubkeys := newCouncil(t, 2)
	_, p, err := coordinator.BuildProposal(&coord.ProposalDraft{
		Type:         coord.TypeConsensus,
		Participants: pubkeys,
		ExpiresIn:    3600,
		Description:  "dispatch the task",
		Action:       &coord.Action{Kind: 1000, Data: `{"task":"x"}`},
	})
	require.NoError(t, err)

	votes := make(map[moot.PubKey]*coord.Vote)
	for _, member := range members {
		_, v, err := member.BuildVote(p, coord.VoteApprove, "", nil)
		require.NoError(t, err)
		votes[v.Voter] = v
	}

	settlement, err := coordinator.CreateResultWithAction(p, votes, coord.OutcomeApproved, coord.NewEscrow())
	require.NoError(t, err)
	require.NotNil(t, settlement.ResultRecord)
	require.NotNil(t, settlement.ActionRecord)

	action := settlement.ActionRecord
	assert.Equal(t, uint32(1000), action.Kind())
	assert.Equal(t, `{"task":"x"}`, action.Content())
	assert.Equal(t, coordinator.PubKey(), action.Author())
	assert.True(t, action.Verify())

	ref, ok := action.Tags().First("e")
	require.True(t, ok)
	assert.Equal(t, p.RecordID.String(), ref.Value())
}

func TestCreateResultSkipsBadActionData(t *testing.T) {
	coordinator, _, pubkeys := newCouncil(t, 2)
	p := &coord.Proposal{
		ID:           datagen.RandProposalID(),
		Type:         coord.TypeConsensus,
		Coordinator:  coordinator.PubKey(),
		Participants: pubkeys,
		ExpiresAt:    5000,
		Action:       &coord.Action{Kind: 1000, Data: "invalid json {"},
		RecordID:     datagen.RandBytes32(),
	}

	settlement, err := coordinator.CreateResultWithAction(p, nil, coord.OutcomeApproved, nil)
	require.NoError(t, err)
	assert.NotNil(t, settlement.ResultRecord)
	assert.Nil(t, settlement.ActionRecord)
}

func TestCreateResultSkipsActionUnlessApproved(t *testing.T) {
	coordinator, _, pubkeys := newCouncil(t, 2)
	_, p, err := coordinator.BuildProposal(&coord.ProposalDraft{
		Type:         coord.TypeConsensus,
		Participants: pubkeys,
		ExpiresIn:    3600,
		Description:  "dispatch the task",
		Action:       &coord.Action{Kind: 1000, Data: `{"task":"x"}`},
	})
	require.NoError(t, err)

	settlement, err := coordinator.CreateResultWithAction(p, nil, coord.OutcomeInconclusive, nil)
	require.NoError(t, err)
	assert.NotNil(t, settlement.ResultRecord)
	assert.Nil(t, settlement.ActionRecord)
}

func TestEscrowResolve(t *testing.T) {
	escrow := coord.NewEscrow()
	p := &coord.Proposal{
		ID:            datagen.RandProposalID(),
		Type:          coord.TypeConsensus,
		Participants:  []moot.PubKey{datagen.RandPubKey(), datagen.RandPubKey()},
		StakeRequired: big.NewInt(100),
	}
	p.EscrowAddress = coord.EscrowAddress("agents.coordinator", p.ID)
	p.Stakes = map[moot.PubKey]*big.Int{
		p.Participants[0]: big.NewInt(100),
		p.Participants[1]: big.NewInt(100),
	}

	escrow.Resolve(p, coord.OutcomeApproved)
	assert.Empty(t, p.Stakes)

	// resolving again, or with nothing staked, is a no-op
	escrow.Resolve(p, coord.OutcomeApproved)
	assert.Empty(t, p.Stakes)

	p.Stakes[p.Participants[0]] = big.NewInt(40)
	escrow.Resolve(p, coord.OutcomeExpired)
	assert.Empty(t, p.Stakes)

	unstaked := &coord.Proposal{ID: datagen.RandProposalID(), Type: coord.TypeConsensus}
	escrow.Resolve(unstaked, coord.OutcomeRejected)
	assert.Empty(t, unstaked.Stakes)
}

func TestEscrowAddress(t *testing.T) {
	addr := coord.EscrowAddress("agents.coordinator.main", "00112233445566778899aabbccddeeff")
	assert.Equal(t, moot.PaymentAddress("agents.coordinator.main.escrow.00112233445566778899aabbccddeeff"), addr)
	assert.NoError(t, addr.Validate())
}
