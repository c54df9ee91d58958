// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package moot

import (
	"errors"
	"strings"
)

// PaymentAddress hierarchical dot-segmented ILP-style routing address,
// e.g. "g.alice.agent". Every segment is non-empty.
type PaymentAddress string

// String implements the stringer interface
func (a PaymentAddress) String() string {
	return string(a)
}

// Validate checks that the address consists of dot-separated non-empty segments.
func (a PaymentAddress) Validate() error {
	if len(a) == 0 {
		return errors.New("empty payment address")
	}
	for _, seg := range strings.Split(string(a), ".") {
		if seg == "" {
			return errors.New("payment address contains empty segment")
		}
	}
	return nil
}

// Segments returns the dot-separated segments of the address.
func (a PaymentAddress) Segments() []string {
	return strings.Split(string(a), ".")
}

// HasPrefix tests whether the address starts with prefix. The match is
// case-sensitive.
func (a PaymentAddress) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(a), prefix)
}

// ParsePaymentAddress validates s and converts it into PaymentAddress type.
func ParsePaymentAddress(s string) (PaymentAddress, error) {
	a := PaymentAddress(s)
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}
