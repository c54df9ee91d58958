// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package coord

import (
	"math/big"

	"github.com/vechain/moot/moot"
)

// EscrowAddress derives the escrow account of a proposal from its
// coordinator's payment address.
func EscrowAddress(coordinator moot.PaymentAddress, proposalID string) moot.PaymentAddress {
	return moot.PaymentAddress(string(coordinator) + ".escrow." + proposalID)
}

// Escrow decides whether settled proposals release their stakes to the
// coordinator or refund them to the stakers. It is advisory: the logged
// intent is the durable record of the decision, actual payment is left to
// an external settlement collaborator.
type Escrow struct{}

// NewEscrow creates an escrow coordinator.
func NewEscrow() *Escrow {
	return &Escrow{}
}

// Resolve records the settlement intent of a settled proposal and zeroes
// its stakes. Resolving a proposal without stakes is a no-op, which makes
// repeated calls idempotent. It never fails: internal errors are logged so
// result publication is not blocked.
func (e *Escrow) Resolve(p *Proposal, outcome Outcome) {
	defer func() {
		if err := recover(); err != nil {
			logger.Error("escrow resolution failed",
				"proposal", p.ID, "outcome", string(outcome), "err", err)
		}
	}()

	if p.StakeRequired == nil || len(p.Stakes) == 0 {
		return
	}

	total := new(big.Int)
	for _, amount := range p.Stakes {
		total.Add(total, amount)
	}

	intent := "refund to stakers"
	if outcome == OutcomeApproved {
		intent = "release to coordinator"
	}
	logger.Info("escrow resolved",
		"proposal", p.ID,
		"outcome", string(outcome),
		"intent", intent,
		"escrow", string(p.EscrowAddress),
		"stakers", len(p.Stakes),
		"total", total.String())

	for pk := range p.Stakes {
		delete(p.Stakes, pk)
	}
}
