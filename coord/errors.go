// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package coord

import (
	"errors"
	"fmt"

	"github.com/vechain/moot/moot"
)

// InvalidRecordError reports a schema, bound, type or signature violation.
type InvalidRecordError struct {
	Msg string
}

func (e InvalidRecordError) Error() string { return "invalid record: " + e.Msg }

func invalidRecord(format string, args ...interface{}) InvalidRecordError {
	return InvalidRecordError{Msg: fmt.Sprintf(format, args...)}
}

// IsInvalidRecord tells whether the error is an InvalidRecordError.
func IsInvalidRecord(err error) bool {
	var e InvalidRecordError
	return errors.As(err, &e)
}

// ExpiredProposalError reports a proposal already past its expiry when
// parsed.
type ExpiredProposalError struct {
	ProposalID string
	ExpiresAt  uint64
}

func (e ExpiredProposalError) Error() string {
	return fmt.Sprintf("proposal %s expired at %d", e.ProposalID, e.ExpiresAt)
}

// IsExpiredProposal tells whether the error is an ExpiredProposalError.
func IsExpiredProposal(err error) bool {
	var e ExpiredProposalError
	return errors.As(err, &e)
}

// NotParticipantError reports a vote whose author is not listed on the
// proposal.
type NotParticipantError struct {
	Pubkey     moot.PubKey
	ProposalID string
}

func (e NotParticipantError) Error() string {
	return fmt.Sprintf("pubkey %s is not a participant of proposal %s", e.Pubkey.AbbrevString(), e.ProposalID)
}

// IsNotParticipant tells whether the error is a NotParticipantError.
func IsNotParticipant(err error) bool {
	var e NotParticipantError
	return errors.As(err, &e)
}

// ProposalMismatchError reports a vote referencing a different proposal.
type ProposalMismatchError struct {
	VoteD      string
	ProposalID string
}

func (e ProposalMismatchError) Error() string {
	return fmt.Sprintf("vote references proposal %s, want %s", e.VoteD, e.ProposalID)
}

// IsProposalMismatch tells whether the error is a ProposalMismatchError.
func IsProposalMismatch(err error) bool {
	var e ProposalMismatchError
	return errors.As(err, &e)
}

// DuplicateVoteError reports a second vote from the same voter on the same
// proposal. The first observed vote stays counted.
type DuplicateVoteError struct {
	Pubkey moot.PubKey
}

func (e DuplicateVoteError) Error() string {
	return fmt.Sprintf("duplicate vote from %s", e.Pubkey.AbbrevString())
}

// IsDuplicateVote tells whether the error is a DuplicateVoteError.
func IsDuplicateVote(err error) bool {
	var e DuplicateVoteError
	return errors.As(err, &e)
}

// UnsupportedTypeError reports a coordination type that parses but cannot be
// evaluated.
type UnsupportedTypeError struct {
	Type Type
}

func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported coordination type %q", string(e.Type))
}

// IsUnsupportedType tells whether the error is an UnsupportedTypeError.
func IsUnsupportedType(err error) bool {
	var e UnsupportedTypeError
	return errors.As(err, &e)
}

// errProposalSettled marks votes arriving after the result was published.
var errProposalSettled = errors.New("proposal already settled")

// IsProposalSettled tells whether the error marks a vote observed after
// result publication.
func IsProposalSettled(err error) bool {
	return errors.Is(err, errProposalSettled)
}
