// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package record

import (
	"github.com/vechain/moot/moot"
)

// Filter selects stored records. Conditions combine with AND; values within
// one condition combine with OR.
type Filter struct {
	Kinds   []uint32            // any of these kinds
	Authors []moot.PubKey       // any of these authors
	IDs     []moot.Bytes32      // any of these ids
	Tags    map[string][]string // tag name to any of these first values
	Since   uint64              // created_at >= Since, if non-zero
	Until   uint64              // created_at <= Until, if non-zero
	Limit   uint64              // max records returned, 0 for no limit
}

// WithTag adds a tag condition, creating the map on first use.
func (f *Filter) WithTag(name string, values ...string) *Filter {
	if f.Tags == nil {
		f.Tags = make(map[string][]string)
	}
	f.Tags[name] = append(f.Tags[name], values...)
	return f
}
