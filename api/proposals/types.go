// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package proposals

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/moot/coord"
	"github.com/vechain/moot/moot"
)

// Draft is the request body of POST /proposals.
type Draft struct {
	Type          coord.Type         `json:"type"`
	Participants  []moot.PubKey      `json:"participants"`
	ExpiresIn     uint64             `json:"expires_in"`
	Description   string             `json:"description,omitempty"`
	Threshold     uint32             `json:"threshold,omitempty"`
	Quorum        uint32             `json:"quorum,omitempty"`
	Action        *Action            `json:"action,omitempty"`
	Weights       map[string]float64 `json:"weights,omitempty"`
	StakeRequired string             `json:"stake_required,omitempty"`
}

// Action mirrors coord.Action on the wire.
type Action struct {
	Kind uint32 `json:"kind"`
	Data string `json:"data"`
}

// toDraft converts the wire draft into the coordination draft. Weight keys
// and the stake amount arrive as strings, json maps cannot key on pubkeys.
func (d *Draft) toDraft() (*coord.ProposalDraft, error) {
	draft := &coord.ProposalDraft{
		Type:         d.Type,
		Participants: d.Participants,
		ExpiresIn:    d.ExpiresIn,
		Description:  d.Description,
		Threshold:    d.Threshold,
		Quorum:       d.Quorum,
	}
	if d.Action != nil {
		draft.Action = &coord.Action{Kind: d.Action.Kind, Data: d.Action.Data}
	}
	if len(d.Weights) > 0 {
		draft.Weights = make(map[moot.PubKey]float64, len(d.Weights))
		for key, weight := range d.Weights {
			pubkey, err := moot.ParsePubKey(key)
			if err != nil {
				return nil, errors.WithMessagef(err, "weights[%s]", key)
			}
			draft.Weights[pubkey] = weight
		}
	}
	if d.StakeRequired != "" {
		stake, ok := new(big.Int).SetString(d.StakeRequired, 10)
		if !ok {
			return nil, errors.Errorf("malformed stake_required %q", d.StakeRequired)
		}
		draft.StakeRequired = stake
	}
	return draft, nil
}

// Proposal is the wire view of a tracked proposal.
type Proposal struct {
	ID            string              `json:"id"`
	Type          coord.Type          `json:"type"`
	Coordinator   moot.PubKey         `json:"coordinator"`
	Participants  []moot.PubKey       `json:"participants"`
	Threshold     uint32              `json:"threshold,omitempty"`
	Quorum        uint32              `json:"quorum,omitempty"`
	CreatedAt     uint64              `json:"created_at"`
	ExpiresAt     uint64              `json:"expires_at"`
	Description   string              `json:"description,omitempty"`
	Action        *Action             `json:"action,omitempty"`
	Weights       map[string]float64  `json:"weights,omitempty"`
	StakeRequired string              `json:"stake_required,omitempty"`
	EscrowAddress moot.PaymentAddress `json:"escrow_address,omitempty"`
	RecordID      moot.Bytes32        `json:"record_id"`
}

// Status is the wire view of a proposal's current state.
type Status struct {
	Proposal *Proposal     `json:"proposal"`
	Outcome  coord.Outcome `json:"outcome,omitempty"`
	Tally    coord.Tally   `json:"tally"`
	Voted    int           `json:"voted"`
	Result   *Result       `json:"result,omitempty"`
}

// Result is the wire view of a settlement result.
type Result struct {
	ProposalID  string         `json:"proposal_id"`
	ProposalRef moot.Bytes32   `json:"proposal_ref"`
	Outcome     coord.Outcome  `json:"outcome"`
	Tally       coord.Tally    `json:"tally"`
	Voted       int            `json:"voted"`
	Total       int            `json:"total"`
	VoteRefs    []moot.Bytes32 `json:"vote_refs,omitempty"`
	RecordID    moot.Bytes32   `json:"record_id"`
}

// Vote is the wire view of an observed vote.
type Vote struct {
	Voter      moot.PubKey     `json:"voter"`
	ProposalID string          `json:"proposal_id"`
	Value      coord.VoteValue `json:"value"`
	Reason     string          `json:"reason,omitempty"`
	Rank       []int64         `json:"rank,omitempty"`
	CreatedAt  uint64          `json:"created_at"`
	RecordID   moot.Bytes32    `json:"record_id"`
}

// StakeDeposit is the request body of POST /proposals/{id}/stakes.
type StakeDeposit struct {
	Staker moot.PubKey `json:"staker"`
	Amount string      `json:"amount"`
}

func convertProposal(p *coord.Proposal) *Proposal {
	converted := &Proposal{
		ID:            p.ID,
		Type:          p.Type,
		Coordinator:   p.Coordinator,
		Participants:  p.Participants,
		Threshold:     p.Threshold,
		Quorum:        p.Quorum,
		CreatedAt:     p.CreatedAt,
		ExpiresAt:     p.ExpiresAt,
		Description:   p.Description,
		EscrowAddress: p.EscrowAddress,
		RecordID:      p.RecordID,
	}
	if p.Action != nil {
		converted.Action = &Action{Kind: p.Action.Kind, Data: p.Action.Data}
	}
	if len(p.Weights) > 0 {
		converted.Weights = make(map[string]float64, len(p.Weights))
		for pubkey, weight := range p.Weights {
			converted.Weights[pubkey.String()] = weight
		}
	}
	if p.StakeRequired != nil {
		converted.StakeRequired = p.StakeRequired.String()
	}
	return converted
}

func convertResult(r *coord.Result) *Result {
	return &Result{
		ProposalID:  r.ProposalID,
		ProposalRef: r.ProposalRef,
		Outcome:     r.Outcome,
		Tally:       r.Tally,
		Voted:       r.Voted,
		Total:       r.Total,
		VoteRefs:    r.VoteRefs,
		RecordID:    r.RecordID,
	}
}

func convertStatus(s *coord.ProposalStatus) *Status {
	status := &Status{
		Proposal: convertProposal(s.Proposal),
		Outcome:  s.Outcome,
		Tally:    s.Tally,
		Voted:    s.Voted,
	}
	if s.Result != nil {
		status.Result = convertResult(s.Result)
	}
	return status
}

func convertVote(v *coord.Vote) *Vote {
	return &Vote{
		Voter:      v.Voter,
		ProposalID: v.ProposalID,
		Value:      v.Value,
		Reason:     v.Reason,
		Rank:       v.Rank,
		CreatedAt:  v.CreatedAt,
		RecordID:   v.RecordID,
	}
}
