// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"runtime"
)

// Enqueue function to enqueue parallel works.
type Enqueue func(work func())

// Parallel to run a batch of work using as many CPU as it can.
func Parallel(cb func(Enqueue)) {
	ParallelN(runtime.NumCPU(), cb)
}

// ParallelN to run a batch of work with a bounded fan-out of n workers.
// n less than 1 is treated as 1. It returns after all enqueued work is done.
func ParallelN(n int, cb func(Enqueue)) {
	if n < 1 {
		n = 1
	}
	var goes Goes
	defer goes.Wait()
	ch := make(chan func(), n*2)
	defer close(ch)
	for range n {
		goes.Go(func() {
			for work := range ch {
				work()
			}
		})
	}
	cb(func(work func()) { ch <- work })
}
