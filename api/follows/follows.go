// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package follows exposes the local follow table over HTTP and publishes the
// agent's kind 3 follow record after edits.
package follows

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/moot/api/utils"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
	"github.com/vechain/moot/routing"
)

// Publisher signs and publishes the agent's follow record.
type Publisher interface {
	PublishFollows() (*record.Record, error)
}

// Follow is the wire view of a follow table entry.
type Follow struct {
	Pubkey         moot.PubKey         `json:"pubkey"`
	PaymentAddress moot.PaymentAddress `json:"payment_address"`
	Nickname       string              `json:"nickname,omitempty"`
	RelayHint      string              `json:"relay_hint,omitempty"`
	AddedAt        uint64              `json:"added_at"`
}

type Follows struct {
	router    *routing.Router
	publisher Publisher
}

// New creates the follows sub-API. The publisher may be nil when edits
// should not publish a new follow record.
func New(router *routing.Router, publisher Publisher) *Follows {
	return &Follows{router, publisher}
}

func (f *Follows) handleList(w http.ResponseWriter, req *http.Request) error {
	follows, err := f.router.List()
	if err != nil {
		return err
	}
	converted := make([]*Follow, 0, len(follows))
	for _, entry := range follows {
		converted = append(converted, convertFollow(entry))
	}
	return utils.WriteJSON(w, converted)
}

func (f *Follows) handleGet(w http.ResponseWriter, req *http.Request) error {
	pubkey, err := moot.ParsePubKey(mux.Vars(req)["pubkey"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "pubkey"))
	}
	entry, err := f.router.Lookup(pubkey)
	if err != nil {
		return err
	}
	if entry == nil {
		return utils.NotFound(errors.Errorf("not following %s", pubkey.AbbrevString()))
	}
	return utils.WriteJSON(w, convertFollow(entry))
}

func (f *Follows) handleAdd(w http.ResponseWriter, req *http.Request) error {
	var body Follow
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.AddedAt == 0 {
		body.AddedAt = uint64(time.Now().Unix())
	}
	if err := f.router.Add(&routing.Follow{
		Pubkey:         body.Pubkey,
		PaymentAddress: body.PaymentAddress,
		Nickname:       body.Nickname,
		RelayHint:      body.RelayHint,
		AddedAt:        body.AddedAt,
	}); err != nil {
		return utils.BadRequest(err)
	}
	if err := f.republish(); err != nil {
		return err
	}
	w.WriteHeader(http.StatusCreated)
	return utils.WriteJSON(w, &body)
}

func (f *Follows) handleRemove(w http.ResponseWriter, req *http.Request) error {
	pubkey, err := moot.ParsePubKey(mux.Vars(req)["pubkey"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "pubkey"))
	}
	if err := f.router.Remove(pubkey); err != nil {
		return err
	}
	if err := f.republish(); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (f *Follows) republish() error {
	if f.publisher == nil {
		return nil
	}
	_, err := f.publisher.PublishFollows()
	return errors.WithMessage(err, "publish follow record")
}

func convertFollow(entry *routing.Follow) *Follow {
	return &Follow{
		Pubkey:         entry.Pubkey,
		PaymentAddress: entry.PaymentAddress,
		Nickname:       entry.Nickname,
		RelayHint:      entry.RelayHint,
		AddedAt:        entry.AddedAt,
	}
}

func (f *Follows) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("follows_list").
		HandlerFunc(utils.WrapHandlerFunc(f.handleList))
	sub.Path("").
		Methods(http.MethodPost).
		Name("follows_add").
		HandlerFunc(utils.WrapHandlerFunc(f.handleAdd))
	sub.Path("/{pubkey}").
		Methods(http.MethodGet).
		Name("follows_get").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGet))
	sub.Path("/{pubkey}").
		Methods(http.MethodDelete).
		Name("follows_remove").
		HandlerFunc(utils.WrapHandlerFunc(f.handleRemove))
}
