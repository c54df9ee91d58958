// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package moot

// Record kinds of the coordination and discovery protocol.
const (
	KindFollows    uint32 = 3     // follow list, replaceable per author
	KindProposal   uint32 = 5910  // coordination proposal
	KindVote       uint32 = 6910  // coordination vote
	KindResult     uint32 = 7910  // coordination result
	KindCapability uint32 = 31990 // capability advertisement, replaceable per (author, d)
)

// Normative bounds, enforced on author and parse.
const (
	MaxParticipants       = 1000       // participants per proposal
	MaxWeight     float64 = 1e9        // per-participant vote weight
	MaxActionData         = 100 * 1024 // bytes of proposal action payload
	MaxReasonLength       = 500        // chars of vote reason
	MaxRankEntries        = 100        // entries of ranked-choice vote
	ProposalIDLength      = 16         // bytes; 32 hex chars on the wire
)

// IsReplaceableKind tells whether records of the kind replace older records
// of the same author and identifier instead of accumulating.
func IsReplaceableKind(kind uint32) bool {
	if kind == KindFollows {
		return true
	}
	return kind >= 30000 && kind < 40000
}
