// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package coord

import (
	"strconv"
	"unicode/utf8"

	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
)

// Markers of proposal and vote references in e tags.
const (
	markerProposal = "proposal"
	markerVote     = "vote"
)

// BuildVote validates the ballot against the proposal and signs the
// kind 6910 record.
func (a *Author) BuildVote(p *Proposal, value VoteValue, reason string, rank []int64) (*record.Record, *Vote, error) {
	if !p.IsParticipant(a.pub) {
		return nil, nil, NotParticipantError{Pubkey: a.pub, ProposalID: p.ID}
	}
	if !value.Valid() {
		return nil, nil, invalidRecord("unknown vote value %q", string(value))
	}
	if utf8.RuneCountInString(reason) > moot.MaxReasonLength {
		return nil, nil, invalidRecord("reason exceeds %d chars", moot.MaxReasonLength)
	}
	if len(rank) > moot.MaxRankEntries {
		return nil, nil, invalidRecord("rank exceeds %d entries", moot.MaxRankEntries)
	}

	now := a.nowFn()
	b := new(record.Builder).
		Kind(moot.KindVote).
		CreatedAt(now).
		Tag("e", p.RecordID.String(), markerProposal).
		Tag("d", p.ID).
		Tag("vote", string(value))
	if reason != "" {
		b.Tag("reason", reason)
	}
	if len(rank) > 0 {
		values := make([]string, 0, len(rank))
		for _, entry := range rank {
			values = append(values, strconv.FormatInt(entry, 10))
		}
		b.Tag("rank", values...)
	}
	b.Content(reason)

	rec, err := record.Sign(b.Build(), a.pk)
	if err != nil {
		return nil, nil, err
	}
	return rec, &Vote{
		Voter:       a.pub,
		ProposalID:  p.ID,
		ProposalRef: p.RecordID,
		Value:       value,
		Reason:      reason,
		Rank:        append([]int64(nil), rank...),
		CreatedAt:   now,
		RecordID:    rec.ID(),
	}, nil
}

// ParseVote validates a kind 6910 record against the proposal it claims to
// answer and returns the vote.
func ParseVote(r *record.Record, p *Proposal) (*Vote, error) {
	if r.Kind() != moot.KindVote {
		return nil, invalidRecord("kind %d is not a vote", r.Kind())
	}
	if !r.Verify() {
		return nil, invalidRecord("signature verification failed")
	}
	tags := r.Tags()

	ref, err := proposalRef(tags)
	if err != nil {
		return nil, err
	}
	if ref != p.RecordID {
		return nil, invalidRecord("vote references proposal record %s, want %s", ref.AbbrevString(), p.RecordID.AbbrevString())
	}

	d, ok := firstTagValue(tags, "d")
	if !ok {
		return nil, invalidRecord("missing d tag")
	}
	if d != p.ID {
		return nil, ProposalMismatchError{VoteD: d, ProposalID: p.ID}
	}

	voteValue, err := requiredTagValue(tags, "vote")
	if err != nil {
		return nil, err
	}
	value := VoteValue(voteValue)
	if !value.Valid() {
		return nil, invalidRecord("unknown vote value %q", voteValue)
	}

	reason, ok := firstTagValue(tags, "reason")
	if !ok {
		reason = r.Content()
	}
	if utf8.RuneCountInString(reason) > moot.MaxReasonLength {
		return nil, invalidRecord("reason exceeds %d chars", moot.MaxReasonLength)
	}

	rank, err := parseRank(tags)
	if err != nil {
		return nil, err
	}

	voter := r.Author()
	if !p.IsParticipant(voter) {
		return nil, NotParticipantError{Pubkey: voter, ProposalID: p.ID}
	}

	return &Vote{
		Voter:       voter,
		ProposalID:  p.ID,
		ProposalRef: ref,
		Value:       value,
		Reason:      reason,
		Rank:        rank,
		CreatedAt:   r.CreatedAt(),
		RecordID:    r.ID(),
	}, nil
}

// proposalRef extracts the single e tag carrying the proposal marker.
// Zero or multiple such tags make the vote ambiguous and invalid.
func proposalRef(tags record.Tags) (moot.Bytes32, error) {
	var (
		ref   moot.Bytes32
		found bool
	)
	for _, t := range tags.All("e") {
		values := t.Values()
		if len(values) < 2 || values[1] != markerProposal {
			continue
		}
		if found {
			return moot.Bytes32{}, invalidRecord("multiple proposal references")
		}
		parsed, err := moot.ParseBytes32(values[0])
		if err != nil {
			return moot.Bytes32{}, invalidRecord("malformed proposal reference %q", values[0])
		}
		ref, found = parsed, true
	}
	if !found {
		return moot.Bytes32{}, invalidRecord("missing proposal reference")
	}
	return ref, nil
}

func parseRank(tags record.Tags) ([]int64, error) {
	t, ok := tags.First("rank")
	if !ok {
		return nil, nil
	}
	values := t.Values()
	if len(values) > moot.MaxRankEntries {
		return nil, invalidRecord("rank exceeds %d entries", moot.MaxRankEntries)
	}
	rank := make([]int64, 0, len(values))
	for _, v := range values {
		entry, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, invalidRecord("non-numeric rank entry %q", v)
		}
		rank = append(rank, entry)
	}
	return rank, nil
}
