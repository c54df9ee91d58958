// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package coord

import (
	"github.com/vechain/moot/metrics"
)

var (
	metricProposalsGauge = metrics.LazyLoadGauge("coord_proposal_tracked_gauge")
	metricVoteCounter    = metrics.LazyLoadCounterVec("coord_vote_observed_count", []string{"value"})
	metricResultCounter  = metrics.LazyLoadCounterVec("coord_result_published_count", []string{"outcome"})
	metricActionCounter  = metrics.LazyLoadCounter("coord_action_emitted_count")
	metricVoteErrCounter = metrics.LazyLoadCounterVec("coord_vote_rejected_count", []string{"reason"})
)
