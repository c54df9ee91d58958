// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package coord

import (
	"math/big"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
)

// PublishFn delivers a signed record to the transport.
type PublishFn func(*record.Record) error

// Tracker owns the runtime state of the coordinator's own proposals:
// observed votes, posted stakes and the settlement records. Peers hold
// read-only replicas, so the tracker is the single writer; its mutex only
// lets observers call in from any goroutine.
//
// A proposal settles at most once. Once the result record exists, further
// votes are rejected and repeated evaluation is skipped.
type Tracker struct {
	author  *Author
	escrow  *Escrow
	publish PublishFn

	mu        sync.Mutex
	proposals map[string]*trackedProposal
}

type trackedProposal struct {
	proposal    *Proposal
	votes       map[moot.PubKey]*Vote
	settlement  *Settlement
	unsupported bool // evaluation unavailable for this type, logged once
}

// NewTracker creates a tracker for the author's proposals. escrow may be
// nil when stakes are not settled here, publish may be nil when records
// are delivered by other means.
func NewTracker(author *Author, escrow *Escrow, publish PublishFn) *Tracker {
	return &Tracker{
		author:    author,
		escrow:    escrow,
		publish:   publish,
		proposals: make(map[string]*trackedProposal),
	}
}

// Propose builds, signs, tracks and publishes a new proposal.
func (t *Tracker) Propose(draft *ProposalDraft) (*Proposal, error) {
	rec, p, err := t.author.BuildProposal(draft)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if _, dup := t.proposals[p.ID]; dup {
		t.mu.Unlock()
		return nil, errors.Errorf("proposal id collision %q", p.ID)
	}
	t.proposals[p.ID] = &trackedProposal{
		proposal: p,
		votes:    make(map[moot.PubKey]*Vote),
	}
	t.mu.Unlock()

	if t.publish != nil {
		if err := t.publish(rec); err != nil {
			t.mu.Lock()
			delete(t.proposals, p.ID)
			t.mu.Unlock()
			return nil, errors.Wrap(err, "publish proposal")
		}
	}

	metricProposalsGauge().Add(1)
	logger.Info("proposal created",
		"id", p.ID, "type", string(p.Type), "participants", len(p.Participants))
	return p.Copy(), nil
}

// Track registers an already published proposal, typically recovered from
// the event store after a restart. Tracking the same record again is a
// no-op.
func (t *Tracker) Track(p *Proposal) error {
	if p.Coordinator != t.author.PubKey() {
		return errors.Errorf("proposal %s belongs to another coordinator", p.ID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.proposals[p.ID]; ok {
		if existing.proposal.RecordID == p.RecordID {
			return nil
		}
		return errors.Errorf("proposal id collision %q", p.ID)
	}
	t.proposals[p.ID] = &trackedProposal{
		proposal: p.Copy(),
		votes:    make(map[moot.PubKey]*Vote),
	}
	metricProposalsGauge().Add(1)
	return nil
}

// ObserveVote counts a vote record against the proposal its d tag names.
// The first vote per participant wins; later ballots from the same voter
// fail with DuplicateVoteError. Counting a decisive vote settles the
// proposal before the call returns.
func (t *Tracker) ObserveVote(r *record.Record) (*Vote, error) {
	id := r.Identifier()
	if id == "" {
		return nil, invalidRecord("missing d tag")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	tracked, ok := t.proposals[id]
	if !ok {
		return nil, errors.Errorf("unknown proposal %q", id)
	}
	if tracked.settlement != nil {
		metricVoteErrCounter().AddWithLabel(1, map[string]string{"reason": "settled"})
		return nil, errProposalSettled
	}

	v, err := ParseVote(r, tracked.proposal)
	if err != nil {
		metricVoteErrCounter().AddWithLabel(1, map[string]string{"reason": "invalid"})
		return nil, err
	}
	if _, dup := tracked.votes[v.Voter]; dup {
		metricVoteErrCounter().AddWithLabel(1, map[string]string{"reason": "duplicate"})
		return nil, DuplicateVoteError{Pubkey: v.Voter}
	}

	tracked.votes[v.Voter] = v
	metricVoteCounter().AddWithLabel(1, map[string]string{"value": string(v.Value)})
	logger.Debug("vote observed",
		"proposal", v.ProposalID, "voter", v.Voter.AbbrevString(), "value", string(v.Value))

	t.maybeSettleLocked(tracked, t.author.nowFn())
	return v, nil
}

// ObserveStake books a deposit on the proposal's escrow address. Deposits
// accumulate per staker until escrow resolution zeroes them.
func (t *Tracker) ObserveStake(proposalID string, staker moot.PubKey, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return invalidRecord("stake must be positive")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	tracked, ok := t.proposals[proposalID]
	if !ok {
		return errors.Errorf("unknown proposal %q", proposalID)
	}
	if tracked.settlement != nil {
		return errProposalSettled
	}
	p := tracked.proposal
	if p.StakeRequired == nil {
		return errors.Errorf("proposal %s requires no stake", p.ID)
	}
	if !p.IsParticipant(staker) {
		return NotParticipantError{Pubkey: staker, ProposalID: p.ID}
	}

	if p.Stakes == nil {
		p.Stakes = make(map[moot.PubKey]*big.Int)
	}
	total := new(big.Int).Set(amount)
	if prev, ok := p.Stakes[staker]; ok {
		total.Add(total, prev)
	}
	p.Stakes[staker] = total
	logger.Debug("stake observed",
		"proposal", p.ID, "staker", staker.AbbrevString(), "amount", amount.String())
	return nil
}

// Sweep settles every tracked proposal whose outcome is terminal at the
// given time. Expired proposals settle here even when no further vote
// arrives. It returns the number of proposals settled.
func (t *Tracker) Sweep(now uint64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	settled := 0
	for _, tracked := range t.proposals {
		if tracked.settlement != nil {
			continue
		}
		t.maybeSettleLocked(tracked, now)
		if tracked.settlement != nil {
			settled++
		}
	}
	return settled
}

// maybeSettleLocked evaluates the proposal and, on a terminal outcome,
// creates and publishes the settlement records. Publication failures are
// logged, the settlement stands either way.
func (t *Tracker) maybeSettleLocked(tracked *trackedProposal, now uint64) {
	if tracked.settlement != nil {
		return
	}
	p := tracked.proposal

	outcome, err := Evaluate(p, tracked.votes, now)
	if err != nil {
		if !tracked.unsupported {
			tracked.unsupported = true
			logger.Warn("proposal type cannot be evaluated",
				"proposal", p.ID, "type", string(p.Type))
		}
		return
	}
	if !outcome.Terminal() {
		return
	}

	settlement, err := t.author.CreateResultWithAction(p, tracked.votes, outcome, t.escrow)
	if err != nil {
		logger.Error("result creation failed", "proposal", p.ID, "err", err)
		return
	}
	tracked.settlement = settlement

	metricResultCounter().AddWithLabel(1, map[string]string{"outcome": string(outcome)})
	logger.Info("proposal settled",
		"proposal", p.ID, "outcome", string(outcome), "votes", settlement.Result.Voted)

	if t.publish != nil {
		if err := t.publish(settlement.ResultRecord); err != nil {
			logger.Error("result publication failed", "proposal", p.ID, "err", err)
		}
	}
	if settlement.ActionRecord != nil {
		metricActionCounter().Add(1)
		if t.publish != nil {
			if err := t.publish(settlement.ActionRecord); err != nil {
				logger.Error("action publication failed", "proposal", p.ID, "err", err)
			}
		}
	}
}

// ProposalStatus is a point-in-time view of a tracked proposal. Outcome is
// empty when the proposal's type cannot be evaluated yet.
type ProposalStatus struct {
	Proposal *Proposal
	Outcome  Outcome
	Tally    Tally
	Voted    int
	Result   *Result // nil until settled
}

// Status reports the current state of one tracked proposal.
func (t *Tracker) Status(proposalID string) (*ProposalStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tracked, ok := t.proposals[proposalID]
	if !ok {
		return nil, false
	}
	return t.statusLocked(tracked), true
}

// List reports the state of every tracked proposal, newest first.
func (t *Tracker) List() []*ProposalStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	statuses := make([]*ProposalStatus, 0, len(t.proposals))
	for _, tracked := range t.proposals {
		statuses = append(statuses, t.statusLocked(tracked))
	}
	sort.Slice(statuses, func(i, j int) bool {
		a, b := statuses[i].Proposal, statuses[j].Proposal
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt > b.CreatedAt
		}
		return a.ID < b.ID
	})
	return statuses
}

func (t *Tracker) statusLocked(tracked *trackedProposal) *ProposalStatus {
	status := &ProposalStatus{
		Proposal: tracked.proposal.Copy(),
		Tally:    TallyVotes(tracked.votes),
		Voted:    len(tracked.votes),
	}
	if tracked.settlement != nil {
		status.Outcome = tracked.settlement.Result.Outcome
		status.Result = tracked.settlement.Result
	} else if outcome, err := Evaluate(tracked.proposal, tracked.votes, t.author.nowFn()); err == nil {
		status.Outcome = outcome
	}
	return status
}

// Votes returns the observed votes of a tracked proposal in participant
// order.
func (t *Tracker) Votes(proposalID string) ([]*Vote, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tracked, ok := t.proposals[proposalID]
	if !ok {
		return nil, false
	}
	votes := make([]*Vote, 0, len(tracked.votes))
	for _, pk := range tracked.proposal.Participants {
		if v, ok := tracked.votes[pk]; ok {
			votes = append(votes, v)
		}
	}
	return votes, true
}
