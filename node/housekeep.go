// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
)

const (
	clockSyncInterval = 10 * time.Minute
	// maxClockOffset is how far the local clock may drift before proposal
	// expiry decisions become unreliable.
	maxClockOffset = 10 * time.Second
)

func (n *Node) houseKeeping() {
	logger.Debug("enter house keeping")
	defer logger.Debug("leave house keeping")

	sweepTicker := time.NewTicker(n.opts.SweepInterval)
	defer sweepTicker.Stop()
	clockSyncTicker := time.NewTicker(clockSyncInterval)
	defer clockSyncTicker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			return
		case <-sweepTicker.C:
			if settled := n.track.Sweep(uint64(time.Now().Unix())); settled > 0 {
				logger.Debug("expiry sweep settled proposals", "count", settled)
			}
		case <-clockSyncTicker.C:
			if !n.opts.SkipClockCheck {
				go checkClockOffset()
			}
		}
	}
}

func checkClockOffset() {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset > maxClockOffset || resp.ClockOffset < -maxClockOffset {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}
