// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package coord

import (
	"encoding/hex"
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/vechain/moot/cry"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
)

// escrowTrailer prefixes the human-readable escrow line appended to the
// description of staked proposals.
const escrowTrailer = "Escrow Address: "

// Author signs coordination records for one agent key.
type Author struct {
	pk    *secp256k1.PrivateKey
	pub   moot.PubKey
	addr  moot.PaymentAddress
	nowFn func() uint64
}

// NewAuthor creates an author bound to the agent's key and payment address.
func NewAuthor(pk *secp256k1.PrivateKey, paymentAddress moot.PaymentAddress) (*Author, error) {
	if pk == nil {
		return nil, errors.New("nil private key")
	}
	if err := paymentAddress.Validate(); err != nil {
		return nil, errors.Wrap(err, "payment address")
	}
	return &Author{
		pk:    pk,
		pub:   cry.PubKeyOf(pk),
		addr:  paymentAddress,
		nowFn: func() uint64 { return uint64(time.Now().Unix()) },
	}, nil
}

// PubKey returns the author's pubkey.
func (a *Author) PubKey() moot.PubKey { return a.pub }

// PaymentAddress returns the author's payment address.
func (a *Author) PaymentAddress() moot.PaymentAddress { return a.addr }

// ProposalDraft carries the author-side inputs of a new proposal.
type ProposalDraft struct {
	Type          Type
	Participants  []moot.PubKey
	ExpiresIn     uint64 // seconds until expiry
	Description   string
	Threshold     uint32                  // 0 when unset
	Quorum        uint32                  // 0 when unset
	Action        *Action                 // optional approved side effect
	Weights       map[moot.PubKey]float64 // optional vote weights
	StakeRequired *big.Int                // optional stake per participant
}

// BuildProposal validates the draft, signs the kind 5910 record and returns
// it together with the populated proposal.
func (a *Author) BuildProposal(draft *ProposalDraft) (*record.Record, *Proposal, error) {
	if !draft.Type.Valid() {
		return nil, nil, invalidRecord("unknown coordination type %q", string(draft.Type))
	}
	n := len(draft.Participants)
	if n == 0 {
		return nil, nil, invalidRecord("proposal needs at least one participant")
	}
	if n > moot.MaxParticipants {
		return nil, nil, invalidRecord("%d participants exceed the maximum of %d", n, moot.MaxParticipants)
	}
	seen := make(map[moot.PubKey]bool, n)
	for _, p := range draft.Participants {
		if p.IsZero() {
			return nil, nil, invalidRecord("zero participant pubkey")
		}
		if seen[p] {
			return nil, nil, invalidRecord("duplicate participant %s", p.AbbrevString())
		}
		seen[p] = true
	}
	if draft.Threshold > 0 && int(draft.Threshold) > n {
		return nil, nil, invalidRecord("threshold %d exceeds %d participants", draft.Threshold, n)
	}
	if draft.ExpiresIn == 0 {
		return nil, nil, invalidRecord("expiry must be strictly in the future")
	}
	if draft.Description == "" {
		return nil, nil, invalidRecord("description must not be empty")
	}
	if draft.Action != nil {
		if err := validateAction(draft.Action); err != nil {
			return nil, nil, err
		}
	}
	for p, w := range draft.Weights {
		if !seen[p] {
			return nil, nil, invalidRecord("weight for non-participant %s", p.AbbrevString())
		}
		if err := validateWeight(w); err != nil {
			return nil, nil, err
		}
	}
	if draft.StakeRequired != nil && draft.StakeRequired.Sign() <= 0 {
		return nil, nil, invalidRecord("stake must be positive")
	}

	id := hex.EncodeToString(uuid.NewRandom())
	now := a.nowFn()
	expiresAt := now + draft.ExpiresIn

	content := draft.Description
	var escrowAddr moot.PaymentAddress
	if draft.StakeRequired != nil {
		escrowAddr = EscrowAddress(a.addr, id)
		content += "\n\n" + escrowTrailer + string(escrowAddr)
	}

	b := new(record.Builder).
		Kind(moot.KindProposal).
		CreatedAt(now).
		Tag("d", id).
		Tag("type", string(draft.Type))
	for _, p := range draft.Participants {
		b.Tag("p", p.String())
	}
	if draft.Threshold > 0 {
		b.Tag("threshold", strconv.FormatUint(uint64(draft.Threshold), 10))
	}
	if draft.Quorum > 0 {
		b.Tag("quorum", strconv.FormatUint(uint64(draft.Quorum), 10))
	}
	b.Tag("expires", strconv.FormatUint(expiresAt, 10))
	if draft.Action != nil {
		b.Tag("action", strconv.FormatUint(uint64(draft.Action.Kind), 10), draft.Action.Data)
	}
	for _, p := range draft.Participants {
		if w, ok := draft.Weights[p]; ok {
			b.Tag("weight", p.String(), strconv.FormatFloat(w, 'f', -1, 64))
		}
	}
	if draft.StakeRequired != nil {
		b.Tag("stake", draft.StakeRequired.String())
	}
	b.Content(content)

	rec, err := record.Sign(b.Build(), a.pk)
	if err != nil {
		return nil, nil, err
	}

	p := &Proposal{
		ID:           id,
		Type:         draft.Type,
		Coordinator:  a.pub,
		Participants: append([]moot.PubKey(nil), draft.Participants...),
		Threshold:    draft.Threshold,
		Quorum:       draft.Quorum,
		CreatedAt:    now,
		ExpiresAt:    expiresAt,
		Description:  content,
		RecordID:     rec.ID(),
	}
	if draft.Action != nil {
		action := *draft.Action
		p.Action = &action
	}
	if len(draft.Weights) > 0 {
		p.Weights = make(map[moot.PubKey]float64, len(draft.Weights))
		for pk, w := range draft.Weights {
			p.Weights[pk] = w
		}
	}
	if draft.StakeRequired != nil {
		p.StakeRequired = new(big.Int).Set(draft.StakeRequired)
		p.EscrowAddress = escrowAddr
		p.Stakes = make(map[moot.PubKey]*big.Int)
	}
	return rec, p, nil
}

// ParseProposal validates a kind 5910 record against the wire rules and
// returns the proposal. The expiry check runs last so structural violations
// surface first.
func ParseProposal(r *record.Record, now uint64) (*Proposal, error) {
	if r.Kind() != moot.KindProposal {
		return nil, invalidRecord("kind %d is not a proposal", r.Kind())
	}
	if !r.Verify() {
		return nil, invalidRecord("signature verification failed")
	}
	tags := r.Tags()

	id, err := requiredTagValue(tags, "d")
	if err != nil {
		return nil, err
	}
	if err := validateProposalID(id); err != nil {
		return nil, err
	}

	typeValue, err := requiredTagValue(tags, "type")
	if err != nil {
		return nil, err
	}
	coordType := Type(typeValue)
	if !coordType.Valid() {
		return nil, invalidRecord("unknown coordination type %q", typeValue)
	}

	participants, err := parseParticipants(tags)
	if err != nil {
		return nil, err
	}
	isParticipant := make(map[moot.PubKey]bool, len(participants))
	for _, p := range participants {
		isParticipant[p] = true
	}

	var threshold uint32
	if v, ok := firstTagValue(tags, "threshold"); ok {
		t, err := parsePositiveInt(v, "threshold")
		if err != nil {
			return nil, err
		}
		if int(t) > len(participants) {
			return nil, invalidRecord("threshold %d exceeds %d participants", t, len(participants))
		}
		threshold = t
	}

	var quorum uint32
	if v, ok := firstTagValue(tags, "quorum"); ok {
		q, err := parsePositiveInt(v, "quorum")
		if err != nil {
			return nil, err
		}
		quorum = q
	}

	expiresValue, err := requiredTagValue(tags, "expires")
	if err != nil {
		return nil, err
	}
	expiresAt, err := strconv.ParseUint(expiresValue, 10, 64)
	if err != nil {
		return nil, invalidRecord("malformed expires tag %q", expiresValue)
	}

	var action *Action
	if t, ok := tags.First("action"); ok {
		values := t.Values()
		if len(values) < 2 {
			return nil, invalidRecord("action tag needs kind and data")
		}
		kind, err := strconv.ParseUint(values[0], 10, 32)
		if err != nil || kind == 0 {
			return nil, invalidRecord("malformed action kind %q", values[0])
		}
		action = &Action{Kind: uint32(kind), Data: values[1]}
		if err := validateAction(action); err != nil {
			return nil, err
		}
	}

	weights, err := parseWeights(tags, isParticipant)
	if err != nil {
		return nil, err
	}

	var stake *big.Int
	if v, ok := firstTagValue(tags, "stake"); ok {
		s, ok := new(big.Int).SetString(v, 10)
		if !ok || s.Sign() <= 0 {
			return nil, invalidRecord("malformed stake %q", v)
		}
		stake = s
	}

	if r.Content() == "" {
		return nil, invalidRecord("empty description")
	}

	if expiresAt <= now {
		return nil, ExpiredProposalError{ProposalID: id, ExpiresAt: expiresAt}
	}

	p := &Proposal{
		ID:            id,
		Type:          coordType,
		Coordinator:   r.Author(),
		Participants:  participants,
		Threshold:     threshold,
		Quorum:        quorum,
		CreatedAt:     r.CreatedAt(),
		ExpiresAt:     expiresAt,
		Action:        action,
		Weights:       weights,
		Description:   r.Content(),
		StakeRequired: stake,
		RecordID:      r.ID(),
	}
	if stake != nil {
		p.EscrowAddress = parseEscrowTrailer(r.Content())
		p.Stakes = make(map[moot.PubKey]*big.Int)
	}
	return p, nil
}

func validateProposalID(id string) error {
	if len(id) != moot.ProposalIDLength*2 {
		return invalidRecord("proposal id must be %d hex chars", moot.ProposalIDLength*2)
	}
	if _, err := hex.DecodeString(id); err != nil {
		return invalidRecord("proposal id is not hex: %q", id)
	}
	return nil
}

func validateAction(a *Action) error {
	if a.Kind == 0 {
		return invalidRecord("action kind must be positive")
	}
	if len(a.Data) > moot.MaxActionData {
		return invalidRecord("action data exceeds %d bytes", moot.MaxActionData)
	}
	if !json.Valid([]byte(a.Data)) {
		return invalidRecord("action data is not valid JSON")
	}
	return nil
}

func validateWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return invalidRecord("weight is not a finite number")
	}
	if w < 0 {
		return invalidRecord("negative weight %v", w)
	}
	if w > moot.MaxWeight {
		return invalidRecord("weight %v exceeds the maximum of %v", w, moot.MaxWeight)
	}
	return nil
}

func parseParticipants(tags record.Tags) ([]moot.PubKey, error) {
	pTags := tags.All("p")
	if len(pTags) == 0 {
		return nil, invalidRecord("proposal needs at least one participant")
	}
	if len(pTags) > moot.MaxParticipants {
		return nil, invalidRecord("%d participants exceed the maximum of %d", len(pTags), moot.MaxParticipants)
	}
	participants := make([]moot.PubKey, 0, len(pTags))
	seen := make(map[moot.PubKey]bool, len(pTags))
	for _, t := range pTags {
		p, err := moot.ParsePubKey(t.Value())
		if err != nil {
			return nil, invalidRecord("malformed participant %q: %s", t.Value(), err)
		}
		if seen[p] {
			return nil, invalidRecord("duplicate participant %s", p.AbbrevString())
		}
		seen[p] = true
		participants = append(participants, p)
	}
	return participants, nil
}

func parseWeights(tags record.Tags, isParticipant map[moot.PubKey]bool) (map[moot.PubKey]float64, error) {
	wTags := tags.All("weight")
	if len(wTags) == 0 {
		return nil, nil
	}
	weights := make(map[moot.PubKey]float64, len(wTags))
	for _, t := range wTags {
		values := t.Values()
		if len(values) < 2 {
			return nil, invalidRecord("weight tag needs pubkey and value")
		}
		p, err := moot.ParsePubKey(values[0])
		if err != nil {
			return nil, invalidRecord("malformed weight pubkey %q: %s", values[0], err)
		}
		if !isParticipant[p] {
			return nil, invalidRecord("weight for non-participant %s", p.AbbrevString())
		}
		w, err := strconv.ParseFloat(values[1], 64)
		if err != nil {
			return nil, invalidRecord("malformed weight value %q", values[1])
		}
		if err := validateWeight(w); err != nil {
			return nil, err
		}
		if _, ok := weights[p]; !ok {
			weights[p] = w
		}
	}
	return weights, nil
}

func parseEscrowTrailer(content string) moot.PaymentAddress {
	lines := strings.Split(content, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if rest, ok := strings.CutPrefix(lines[i], escrowTrailer); ok {
			return moot.PaymentAddress(strings.TrimSpace(rest))
		}
	}
	return ""
}

func firstTagValue(tags record.Tags, name string) (string, bool) {
	if t, ok := tags.First(name); ok {
		return t.Value(), true
	}
	return "", false
}

func requiredTagValue(tags record.Tags, name string) (string, error) {
	v, ok := firstTagValue(tags, name)
	if !ok {
		return "", invalidRecord("missing %s tag", name)
	}
	return v, nil
}

func parsePositiveInt(v, what string) (uint32, error) {
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil || n == 0 {
		return 0, invalidRecord("malformed %s %q", what, v)
	}
	return uint32(n), nil
}
