// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package discovery

import (
	"github.com/vechain/moot/metrics"
)

var (
	metricQueryCounter   = metrics.LazyLoadCounter("discovery_query_count")
	metricCacheCounter   = metrics.LazyLoadCounterVec("discovery_cache_count", []string{"event"})
	metricCacheSizeGauge = metrics.LazyLoadGauge("discovery_cache_size_gauge")
	metricSocialCounter  = metrics.LazyLoadCounterVec("discovery_social_count", []string{"hop"})
)
