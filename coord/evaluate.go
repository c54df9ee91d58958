// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package coord

import (
	"math"

	"github.com/vechain/moot/moot"
)

// Evaluate computes the outcome of a proposal from the votes observed so far,
// at most one per participant. It is stateless and deterministic: equal
// inputs always produce equal outcomes.
//
// Ranked and allocation proposals parse but do not evaluate yet.
func Evaluate(p *Proposal, votes map[moot.PubKey]*Vote, now uint64) (Outcome, error) {
	if !p.Type.Evaluable() {
		return "", UnsupportedTypeError{Type: p.Type}
	}

	expired := p.Expired(now)

	if p.Quorum > 0 && len(votes) < int(p.Quorum) {
		if expired {
			return OutcomeInconclusive, nil
		}
		return OutcomePending, nil
	}

	if len(p.Weights) > 0 {
		return evaluateWeighted(p, votes, expired), nil
	}

	n := len(p.Participants)
	tally := TallyVotes(votes)

	switch p.Type {
	case TypeConsensus:
		// Unanimity. Any single rejection fails the proposal.
		switch {
		case tally.Approve == n:
			return OutcomeApproved, nil
		case tally.Reject > 0:
			return OutcomeRejected, nil
		case len(votes) < n && !expired:
			return OutcomePending, nil
		default:
			return OutcomeInconclusive, nil
		}
	case TypeMajority:
		m := n/2 + 1
		switch {
		case tally.Approve >= m:
			return OutcomeApproved, nil
		case tally.Reject >= m:
			return OutcomeRejected, nil
		case len(votes) == n, expired:
			return OutcomeInconclusive, nil
		default:
			return OutcomePending, nil
		}
	default: // TypeThreshold
		t := int(p.Threshold)
		if t == 0 {
			t = n/2 + 1
		}
		switch {
		case tally.Approve >= t:
			return OutcomeApproved, nil
		case tally.Approve+(n-len(votes)) < t:
			// Even if every remaining participant approved, the
			// threshold is out of reach.
			return OutcomeRejected, nil
		case expired:
			return OutcomeExpired, nil
		default:
			return OutcomePending, nil
		}
	}
}

// evaluateWeighted overlays per-participant weights on the threshold rule.
// Missing weights default to 1 and non-positive ones clamp to 1 with a
// warning, so the total weight never undercuts the participant count.
func evaluateWeighted(p *Proposal, votes map[moot.PubKey]*Vote, expired bool) Outcome {
	weightOf := func(pk moot.PubKey) float64 {
		w, ok := p.Weights[pk]
		if !ok {
			return 1
		}
		if w <= 0 {
			logger.Warn("clamping non-positive vote weight",
				"proposal", p.ID, "pubkey", pk.AbbrevString(), "weight", w)
		}
		return math.Max(w, 1)
	}

	// One pass in participant order keeps the float sums reproducible.
	var total, approved, rejected, abstained float64
	for _, pk := range p.Participants {
		w := weightOf(pk)
		total += w
		if v, ok := votes[pk]; ok {
			switch v.Value {
			case VoteApprove:
				approved += w
			case VoteReject:
				rejected += w
			case VoteAbstain:
				abstained += w
			}
		}
	}

	var target float64
	if p.Threshold > 0 {
		target = float64(p.Threshold) / float64(len(p.Participants)) * total
	} else {
		target = total/2 + 1
	}

	switch {
	case approved >= target:
		return OutcomeApproved
	case rejected+abstained > total-target:
		// Abstained weight can never approve. Even if every silent
		// participant approved, the target is out of reach.
		return OutcomeRejected
	case len(votes) == len(p.Participants), expired:
		return OutcomeInconclusive
	default:
		return OutcomePending
	}
}
