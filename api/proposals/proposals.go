// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package proposals exposes the coordinator's proposal tracker over HTTP:
// creating proposals, inspecting their status, votes and results, and
// booking stake deposits.
package proposals

import (
	"math/big"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/moot/api/utils"
	"github.com/vechain/moot/coord"
)

type Proposals struct {
	track *coord.Tracker
}

func New(track *coord.Tracker) *Proposals {
	return &Proposals{track}
}

func (p *Proposals) handleCreateProposal(w http.ResponseWriter, req *http.Request) error {
	var draft Draft
	if err := utils.ParseJSON(req.Body, &draft); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	coordDraft, err := draft.toDraft()
	if err != nil {
		return utils.BadRequest(err)
	}
	proposal, err := p.track.Propose(coordDraft)
	if err != nil {
		return utils.BadRequest(err)
	}
	status, ok := p.track.Status(proposal.ID)
	if !ok {
		return errors.Errorf("proposal %s vanished after creation", proposal.ID)
	}
	w.WriteHeader(http.StatusCreated)
	return utils.WriteJSON(w, convertStatus(status))
}

func (p *Proposals) handleListProposals(w http.ResponseWriter, req *http.Request) error {
	statuses := p.track.List()
	converted := make([]*Status, 0, len(statuses))
	for _, s := range statuses {
		converted = append(converted, convertStatus(s))
	}
	return utils.WriteJSON(w, converted)
}

func (p *Proposals) handleGetProposal(w http.ResponseWriter, req *http.Request) error {
	id := mux.Vars(req)["id"]
	status, ok := p.track.Status(id)
	if !ok {
		return utils.NotFound(errors.Errorf("unknown proposal %q", id))
	}
	return utils.WriteJSON(w, convertStatus(status))
}

func (p *Proposals) handleGetVotes(w http.ResponseWriter, req *http.Request) error {
	id := mux.Vars(req)["id"]
	votes, ok := p.track.Votes(id)
	if !ok {
		return utils.NotFound(errors.Errorf("unknown proposal %q", id))
	}
	converted := make([]*Vote, 0, len(votes))
	for _, v := range votes {
		converted = append(converted, convertVote(v))
	}
	return utils.WriteJSON(w, converted)
}

func (p *Proposals) handleGetResult(w http.ResponseWriter, req *http.Request) error {
	id := mux.Vars(req)["id"]
	status, ok := p.track.Status(id)
	if !ok {
		return utils.NotFound(errors.Errorf("unknown proposal %q", id))
	}
	if status.Result == nil {
		return utils.NotFound(errors.Errorf("proposal %q not settled", id))
	}
	return utils.WriteJSON(w, convertResult(status.Result))
}

func (p *Proposals) handleDepositStake(w http.ResponseWriter, req *http.Request) error {
	id := mux.Vars(req)["id"]
	var deposit StakeDeposit
	if err := utils.ParseJSON(req.Body, &deposit); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, ok := new(big.Int).SetString(deposit.Amount, 10)
	if !ok {
		return utils.BadRequest(errors.Errorf("malformed amount %q", deposit.Amount))
	}
	if err := p.track.ObserveStake(id, deposit.Staker, amount); err != nil {
		return utils.BadRequest(err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (p *Proposals) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("proposals_create").
		HandlerFunc(utils.WrapHandlerFunc(p.handleCreateProposal))
	sub.Path("").
		Methods(http.MethodGet).
		Name("proposals_list").
		HandlerFunc(utils.WrapHandlerFunc(p.handleListProposals))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("proposals_get").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetProposal))
	sub.Path("/{id}/votes").
		Methods(http.MethodGet).
		Name("proposals_get_votes").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetVotes))
	sub.Path("/{id}/result").
		Methods(http.MethodGet).
		Name("proposals_get_result").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetResult))
	sub.Path("/{id}/stakes").
		Methods(http.MethodPost).
		Name("proposals_deposit_stake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleDepositStake))
}
