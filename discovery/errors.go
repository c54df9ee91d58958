// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package discovery

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/vechain/moot/moot"
)

// InvalidCapabilityError is returned when a kind 31990 record violates the
// capability schema or its signature does not verify.
type InvalidCapabilityError struct {
	Msg string
}

func (e InvalidCapabilityError) Error() string { return "invalid capability: " + e.Msg }

func invalidCapability(format string, args ...interface{}) InvalidCapabilityError {
	return InvalidCapabilityError{Msg: fmt.Sprintf(format, args...)}
}

// IsInvalidCapability reports whether err means a malformed capability record.
func IsInvalidCapability(err error) bool {
	var target InvalidCapabilityError
	return errors.As(err, &target)
}

// CapabilityMissingError is returned by a forced refresh when the agent has
// no capability record in the event store.
type CapabilityMissingError struct {
	Pubkey moot.PubKey
}

func (e CapabilityMissingError) Error() string {
	return fmt.Sprintf("no capability record for %s", e.Pubkey.AbbrevString())
}

// IsCapabilityMissing reports whether err means the agent advertises nothing.
func IsCapabilityMissing(err error) bool {
	var target CapabilityMissingError
	return errors.As(err, &target)
}
