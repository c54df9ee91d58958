// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package coord

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
)

// BuildResult computes tally and participation and signs the kind 7910
// record. Vote references are emitted in participant order so the record
// bytes are reproducible for a given vote set.
func (a *Author) BuildResult(p *Proposal, votes map[moot.PubKey]*Vote, outcome Outcome) (*record.Record, *Result, error) {
	if !outcome.Terminal() {
		return nil, nil, invalidRecord("outcome %q does not settle the proposal", string(outcome))
	}

	tally := TallyVotes(votes)
	voted := tally.Votes()

	voteRefs := make([]moot.Bytes32, 0, voted)
	for _, pk := range p.Participants {
		if v, ok := votes[pk]; ok {
			voteRefs = append(voteRefs, v.RecordID)
		}
	}

	content := fmt.Sprintf("Proposal %s with %d/%d/%d votes.",
		outcome, tally.Approve, tally.Reject, tally.Abstain)

	b := new(record.Builder).
		Kind(moot.KindResult).
		CreatedAt(a.nowFn()).
		Tag("e", p.RecordID.String(), markerProposal).
		Tag("d", p.ID).
		Tag("outcome", string(outcome)).
		Tag("votes", strconv.Itoa(tally.Approve), strconv.Itoa(tally.Reject), strconv.Itoa(tally.Abstain)).
		Tag("participants", strconv.Itoa(voted), strconv.Itoa(len(p.Participants)))
	for _, ref := range voteRefs {
		b.Tag("e", ref.String(), markerVote)
	}
	b.Content(content)

	rec, err := record.Sign(b.Build(), a.pk)
	if err != nil {
		return nil, nil, err
	}
	return rec, &Result{
		ProposalID:  p.ID,
		ProposalRef: p.RecordID,
		Outcome:     outcome,
		Tally:       tally,
		Voted:       voted,
		Total:       len(p.Participants),
		VoteRefs:    voteRefs,
		RecordID:    rec.ID(),
	}, nil
}

// Settlement bundles the records produced when a proposal settles.
type Settlement struct {
	Result       *Result
	ResultRecord *record.Record
	ActionRecord *record.Record // nil unless an approved action was emitted
}

// CreateResultWithAction settles a proposal. The result record is created
// first so it exists even if the later steps fail, then stakes are resolved
// through the escrow coordinator when one is present, and finally the
// promised action is emitted if the proposal was approved. Escrow and
// action failures are logged and swallowed.
func (a *Author) CreateResultWithAction(p *Proposal, votes map[moot.PubKey]*Vote, outcome Outcome, escrow *Escrow) (*Settlement, error) {
	rec, result, err := a.BuildResult(p, votes, outcome)
	if err != nil {
		return nil, err
	}
	settlement := &Settlement{Result: result, ResultRecord: rec}

	if p.StakeRequired != nil && escrow != nil {
		escrow.Resolve(p, outcome)
	}

	if outcome == OutcomeApproved && p.Action != nil {
		settlement.ActionRecord = a.emitAction(p)
	}
	return settlement, nil
}

// emitAction signs the approved side effect. A nil return means the action
// was skipped, never that settlement failed.
func (a *Author) emitAction(p *Proposal) *record.Record {
	var data bytes.Buffer
	if err := json.Compact(&data, []byte(p.Action.Data)); err != nil {
		logger.Error("skipping action of approved proposal, data is not valid JSON",
			"proposal", p.ID, "kind", p.Action.Kind, "err", err)
		return nil
	}

	rec, err := record.Sign(new(record.Builder).
		Kind(p.Action.Kind).
		CreatedAt(a.nowFn()).
		Tag("e", p.RecordID.String(), markerProposal).
		Content(data.String()).
		Build(), a.pk)
	if err != nil {
		logger.Error("skipping action of approved proposal, signing failed",
			"proposal", p.ID, "kind", p.Action.Kind, "err", err)
		return nil
	}
	return rec
}

// ParseResult validates a kind 7910 record against the proposal it settles
// and returns the result.
func ParseResult(r *record.Record, p *Proposal) (*Result, error) {
	if r.Kind() != moot.KindResult {
		return nil, invalidRecord("kind %d is not a result", r.Kind())
	}
	if !r.Verify() {
		return nil, invalidRecord("signature verification failed")
	}
	if r.Author() != p.Coordinator {
		return nil, invalidRecord("result not signed by the coordinator")
	}
	tags := r.Tags()

	ref, err := proposalRef(tags)
	if err != nil {
		return nil, err
	}
	if ref != p.RecordID {
		return nil, invalidRecord("result references proposal record %s, want %s", ref.AbbrevString(), p.RecordID.AbbrevString())
	}

	d, err := requiredTagValue(tags, "d")
	if err != nil {
		return nil, err
	}
	if d != p.ID {
		return nil, ProposalMismatchError{VoteD: d, ProposalID: p.ID}
	}

	outcomeValue, err := requiredTagValue(tags, "outcome")
	if err != nil {
		return nil, err
	}
	outcome := Outcome(outcomeValue)
	if !outcome.Terminal() {
		return nil, invalidRecord("unknown outcome %q", outcomeValue)
	}

	tally, err := parseTally(tags)
	if err != nil {
		return nil, err
	}

	voted, total, err := parseParticipation(tags)
	if err != nil {
		return nil, err
	}
	if tally.Votes() != voted {
		return nil, invalidRecord("tally sums to %d votes, participation says %d", tally.Votes(), voted)
	}
	if voted > total {
		return nil, invalidRecord("%d votes exceed %d participants", voted, total)
	}

	var voteRefs []moot.Bytes32
	for _, t := range tags.All("e") {
		values := t.Values()
		if len(values) < 2 || values[1] != markerVote {
			continue
		}
		parsed, err := moot.ParseBytes32(values[0])
		if err != nil {
			return nil, invalidRecord("malformed vote reference %q", values[0])
		}
		voteRefs = append(voteRefs, parsed)
	}
	if len(voteRefs) != voted {
		return nil, invalidRecord("%d vote references, participation says %d", len(voteRefs), voted)
	}

	return &Result{
		ProposalID:  d,
		ProposalRef: ref,
		Outcome:     outcome,
		Tally:       tally,
		Voted:       voted,
		Total:       total,
		VoteRefs:    voteRefs,
		RecordID:    r.ID(),
	}, nil
}

func parseTally(tags record.Tags) (Tally, error) {
	t, ok := tags.First("votes")
	if !ok {
		return Tally{}, invalidRecord("missing votes tag")
	}
	values := t.Values()
	if len(values) != 3 {
		return Tally{}, invalidRecord("votes tag needs 3 counts, got %d", len(values))
	}
	counts := make([]int, 3)
	for i, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Tally{}, invalidRecord("malformed vote count %q", v)
		}
		counts[i] = n
	}
	return Tally{Approve: counts[0], Reject: counts[1], Abstain: counts[2]}, nil
}

func parseParticipation(tags record.Tags) (voted, total int, err error) {
	t, ok := tags.First("participants")
	if !ok {
		return 0, 0, invalidRecord("missing participants tag")
	}
	values := t.Values()
	if len(values) != 2 {
		return 0, 0, invalidRecord("participants tag needs 2 counts, got %d", len(values))
	}
	if voted, err = strconv.Atoi(values[0]); err != nil || voted < 0 {
		return 0, 0, invalidRecord("malformed voted count %q", values[0])
	}
	if total, err = strconv.Atoi(values[1]); err != nil || total <= 0 {
		return 0, 0, invalidRecord("malformed participant count %q", values[1])
	}
	return voted, total, nil
}
