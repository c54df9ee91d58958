// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package records exposes the raw record store over HTTP: ingesting signed
// records received out of band and querying stored ones.
package records

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/moot/api/utils"
	"github.com/vechain/moot/eventdb"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
)

// Ingester verifies, stores and routes a record received from a peer.
type Ingester interface {
	Ingest(*record.Record) error
}

type Records struct {
	db         *eventdb.EventDB
	ingester   Ingester
	queryLimit uint64
}

// New creates the records sub-API. queryLimit caps the number of records a
// single query may return.
func New(db *eventdb.EventDB, ingester Ingester, queryLimit uint64) *Records {
	return &Records{db, ingester, queryLimit}
}

func (r *Records) handleIngest(w http.ResponseWriter, req *http.Request) error {
	var rec record.Record
	if err := utils.ParseJSON(req.Body, &rec); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := r.ingester.Ingest(&rec); err != nil {
		return utils.BadRequest(err)
	}
	w.WriteHeader(http.StatusCreated)
	return utils.WriteJSON(w, utils.M{"id": rec.ID()})
}

func (r *Records) handleGetRecord(w http.ResponseWriter, req *http.Request) error {
	id, err := moot.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	rec, err := r.db.Get(req.Context(), id)
	if err != nil {
		return err
	}
	if rec == nil {
		return utils.NotFound(errors.Errorf("unknown record %s", id.AbbrevString()))
	}
	return utils.WriteJSON(w, rec)
}

// parseFilter maps the request's query string onto a store filter. Tags are
// given as tag=<name>:<value>, repeatable.
func (r *Records) parseFilter(req *http.Request) (*record.Filter, error) {
	filter := &record.Filter{Limit: r.queryLimit}
	values := req.URL.Query()

	for _, raw := range values["kind"] {
		kind, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, errors.WithMessage(err, "kind")
		}
		filter.Kinds = append(filter.Kinds, uint32(kind))
	}
	for _, raw := range values["author"] {
		author, err := moot.ParsePubKey(raw)
		if err != nil {
			return nil, errors.WithMessage(err, "author")
		}
		filter.Authors = append(filter.Authors, author)
	}
	for _, raw := range values["id"] {
		id, err := moot.ParseBytes32(raw)
		if err != nil {
			return nil, errors.WithMessage(err, "id")
		}
		filter.IDs = append(filter.IDs, id)
	}
	for _, raw := range values["tag"] {
		name, value, found := strings.Cut(raw, ":")
		if !found || name == "" {
			return nil, errors.Errorf("malformed tag %q, want name:value", raw)
		}
		filter.WithTag(name, value)
	}
	if raw := values.Get("since"); raw != "" {
		since, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, errors.WithMessage(err, "since")
		}
		filter.Since = since
	}
	if raw := values.Get("until"); raw != "" {
		until, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, errors.WithMessage(err, "until")
		}
		filter.Until = until
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, errors.WithMessage(err, "limit")
		}
		if limit > 0 && (r.queryLimit == 0 || limit < r.queryLimit) {
			filter.Limit = limit
		}
	}
	return filter, nil
}

func (r *Records) handleQuery(w http.ResponseWriter, req *http.Request) error {
	filter, err := r.parseFilter(req)
	if err != nil {
		return utils.BadRequest(err)
	}
	records, err := r.db.Query(req.Context(), filter)
	if err != nil {
		return err
	}
	if records == nil {
		records = []*record.Record{}
	}
	return utils.WriteJSON(w, records)
}

func (r *Records) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("records_ingest").
		HandlerFunc(utils.WrapHandlerFunc(r.handleIngest))
	sub.Path("").
		Methods(http.MethodGet).
		Name("records_query").
		HandlerFunc(utils.WrapHandlerFunc(r.handleQuery))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("records_get").
		HandlerFunc(utils.WrapHandlerFunc(r.handleGetRecord))
}
