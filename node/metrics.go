// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/vechain/moot/metrics"
)

var metricIngestCounter = metrics.LazyLoadCounterVec("node_record_ingest_count", []string{"outcome"})
