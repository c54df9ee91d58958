// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/vechain/moot/metrics"
)

var (
	metricStoredCounter = metrics.LazyLoadCounterVec("eventdb_stored_count", []string{"outcome"})
	metricQueryCounter  = metrics.LazyLoadCounter("eventdb_query_count")
	metricResultBucket  = metrics.LazyLoadHistogram("eventdb_query_result_bucket", []int64{
		0, 1, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
	metricCacheHitMiss = metrics.LazyLoadCounterVec("eventdb_cache_count", []string{"event"})
)
