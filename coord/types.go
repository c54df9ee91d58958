// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package coord implements multi-party coordination over signed records:
// proposals (kind 5910), votes (kind 6910) and results (kind 7910), with
// consensus, majority, threshold and weighted evaluation rules plus stake
// escrow bookkeeping.
package coord

import (
	"math/big"

	"github.com/vechain/moot/log"
	"github.com/vechain/moot/moot"
)

var logger = log.WithContext("pkg", "coord")

// Type is the coordination rule of a proposal.
type Type string

const (
	TypeConsensus  Type = "consensus"  // unanimous approval, any rejection fails
	TypeMajority   Type = "majority"   // more than half of the participants
	TypeThreshold  Type = "threshold"  // fixed number of approvals
	TypeRanked     Type = "ranked"     // parses, not evaluable
	TypeAllocation Type = "allocation" // parses, not evaluable
)

// Valid tells whether the type is a known coordination rule.
func (t Type) Valid() bool {
	switch t {
	case TypeConsensus, TypeMajority, TypeThreshold, TypeRanked, TypeAllocation:
		return true
	}
	return false
}

// Evaluable tells whether the evaluator implements the type.
func (t Type) Evaluable() bool {
	switch t {
	case TypeConsensus, TypeMajority, TypeThreshold:
		return true
	}
	return false
}

// VoteValue is a cast ballot value.
type VoteValue string

const (
	VoteApprove VoteValue = "approve"
	VoteReject  VoteValue = "reject"
	VoteAbstain VoteValue = "abstain"
)

// Valid tells whether the value is a known ballot value.
func (v VoteValue) Valid() bool {
	switch v {
	case VoteApprove, VoteReject, VoteAbstain:
		return true
	}
	return false
}

// Outcome is the state of a proposal as seen by the evaluator. Pending is
// the only non-terminal outcome.
type Outcome string

const (
	OutcomeApproved     Outcome = "approved"
	OutcomeRejected     Outcome = "rejected"
	OutcomeExpired      Outcome = "expired"
	OutcomeInconclusive Outcome = "inconclusive"
	OutcomePending      Outcome = "pending"
)

// Terminal tells whether the outcome ends the proposal's lifecycle.
func (o Outcome) Terminal() bool {
	return o != OutcomePending && o != ""
}

// Action is the side effect a proposal promises to emit on approval.
type Action struct {
	Kind uint32 // record kind of the emitted event
	Data string // JSON payload, re-serialized on emission
}

// Proposal is the parsed view of a kind 5910 record, plus the runtime stake
// bookkeeping owned by the coordinator.
type Proposal struct {
	ID           string // 32 hex chars, the d tag
	Type         Type
	Coordinator  moot.PubKey
	Participants []moot.PubKey // unique, in authored order
	Threshold    uint32        // 0 when unset
	Quorum       uint32        // 0 when unset
	CreatedAt    uint64
	ExpiresAt    uint64
	Action       *Action
	Weights      map[moot.PubKey]float64 // nil when unset
	Description  string                  // record content

	StakeRequired *big.Int            // nil when no stake
	EscrowAddress moot.PaymentAddress // set iff stake required

	// Stakes tracks observed deposits per participant. Owned by the
	// coordinator's tracker, zeroed by escrow resolution.
	Stakes map[moot.PubKey]*big.Int

	RecordID moot.Bytes32 // id of the signed proposal record
}

// IsParticipant tells whether the pubkey is listed on the proposal.
func (p *Proposal) IsParticipant(pubkey moot.PubKey) bool {
	for _, participant := range p.Participants {
		if participant == pubkey {
			return true
		}
	}
	return false
}

// Expired tells whether the proposal is past its expiry at the given time.
func (p *Proposal) Expired(now uint64) bool {
	return now > p.ExpiresAt
}

// Copy returns an independent copy of the proposal, detached from the
// coordinator's runtime state.
func (p *Proposal) Copy() *Proposal {
	dup := *p
	dup.Participants = append([]moot.PubKey(nil), p.Participants...)
	if p.Action != nil {
		action := *p.Action
		dup.Action = &action
	}
	if p.Weights != nil {
		dup.Weights = make(map[moot.PubKey]float64, len(p.Weights))
		for pk, w := range p.Weights {
			dup.Weights[pk] = w
		}
	}
	if p.StakeRequired != nil {
		dup.StakeRequired = new(big.Int).Set(p.StakeRequired)
	}
	if p.Stakes != nil {
		dup.Stakes = make(map[moot.PubKey]*big.Int, len(p.Stakes))
		for pk, amount := range p.Stakes {
			dup.Stakes[pk] = new(big.Int).Set(amount)
		}
	}
	return &dup
}

// Vote is the parsed view of a kind 6910 record.
type Vote struct {
	Voter       moot.PubKey
	ProposalID  string       // d tag
	ProposalRef moot.Bytes32 // referenced proposal record id
	Value       VoteValue
	Reason      string
	Rank        []int64 // ranked-choice preference, unused by evaluation
	CreatedAt   uint64
	RecordID    moot.Bytes32
}

// Tally is the raw vote count of a proposal.
type Tally struct {
	Approve int `json:"approve"`
	Reject  int `json:"reject"`
	Abstain int `json:"abstain"`
}

// Votes returns the number of cast votes.
func (t Tally) Votes() int {
	return t.Approve + t.Reject + t.Abstain
}

// TallyVotes counts the ballots of the observed votes.
func TallyVotes(votes map[moot.PubKey]*Vote) (tally Tally) {
	for _, v := range votes {
		switch v.Value {
		case VoteApprove:
			tally.Approve++
		case VoteReject:
			tally.Reject++
		case VoteAbstain:
			tally.Abstain++
		}
	}
	return
}

// Result is the parsed view of a kind 7910 record.
type Result struct {
	ProposalID  string
	ProposalRef moot.Bytes32
	Outcome     Outcome
	Tally       Tally
	Voted       int
	Total       int
	VoteRefs    []moot.Bytes32 // counted votes, in participant order
	RecordID    moot.Bytes32
}
