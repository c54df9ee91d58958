// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/moot/co"
)

func TestParallel(t *testing.T) {
	var n atomic.Int64
	co.Parallel(func(enqueue co.Enqueue) {
		for range 50 {
			enqueue(func() {
				n.Add(1)
			})
		}
	})
	assert.Equal(t, int64(50), n.Load())
}

func TestParallelN(t *testing.T) {
	var (
		n       atomic.Int64
		inRun   atomic.Int64
		maxSeen atomic.Int64
	)
	co.ParallelN(3, func(enqueue co.Enqueue) {
		for range 100 {
			enqueue(func() {
				cur := inRun.Add(1)
				for {
					prev := maxSeen.Load()
					if cur <= prev || maxSeen.CompareAndSwap(prev, cur) {
						break
					}
				}
				n.Add(1)
				inRun.Add(-1)
			})
		}
	})
	assert.Equal(t, int64(100), n.Load())
	assert.LessOrEqual(t, maxSeen.Load(), int64(3))

	// n < 1 clamps to a single worker
	var m atomic.Int64
	co.ParallelN(0, func(enqueue co.Enqueue) {
		for range 10 {
			enqueue(func() { m.Add(1) })
		}
	})
	assert.Equal(t, int64(10), m.Load())
}
