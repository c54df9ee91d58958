// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams newly stored records over WebSocket, with
// optional kind and author filters.
package subscriptions

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/moot/api/utils"
	"github.com/vechain/moot/log"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// recordQueueSize bounds the per-connection backlog; a client that
	// cannot keep up loses records rather than stalling the feed.
	recordQueueSize = 128

	pingPeriod   = 10 * time.Second
	writeTimeout = 10 * time.Second
)

// RecordStream delivers newly stored records until unsubscribed.
type RecordStream interface {
	SubscribeRecords(chan *record.Record) event.Subscription
}

type Subscriptions struct {
	stream   RecordStream
	upgrader *websocket.Upgrader

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates the subscriptions sub-API. allowedOrigins follows the CORS
// origin syntax, "*" admits everyone.
func New(stream RecordStream, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		stream: stream,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(req *http.Request) bool {
				origin := req.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// Close terminates all hijacked connections and waits for their pumps to
// return. Calling Close again is a no-op.
func (s *Subscriptions) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}

// recordFilter narrows the streamed records. Zero fields match everything.
type recordFilter struct {
	kinds   []uint32
	authors []moot.PubKey
}

func parseRecordFilter(req *http.Request) (*recordFilter, error) {
	var filter recordFilter
	values := req.URL.Query()

	for _, raw := range values["kind"] {
		kind, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, errors.WithMessage(err, "kind")
		}
		filter.kinds = append(filter.kinds, uint32(kind))
	}
	for _, raw := range values["author"] {
		author, err := moot.ParsePubKey(raw)
		if err != nil {
			return nil, errors.WithMessage(err, "author")
		}
		filter.authors = append(filter.authors, author)
	}
	return &filter, nil
}

func (f *recordFilter) match(r *record.Record) bool {
	if len(f.kinds) > 0 {
		found := false
		for _, kind := range f.kinds {
			if r.Kind() == kind {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.authors) > 0 {
		found := false
		for _, author := range f.authors {
			if r.Author() == author {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *Subscriptions) handleSubscribeRecords(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseRecordFilter(req)
	if err != nil {
		return utils.BadRequest(err)
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader already replied to the client
		logger.Debug("upgrade to websocket failed", "err", err)
		return nil
	}
	defer conn.Close()

	s.wg.Add(1)
	defer s.wg.Done()

	// the read pump only notices the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := make(chan *record.Record, recordQueueSize)
	sub := s.stream.SubscribeRecords(ch)
	defer sub.Unsubscribe()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case err := <-sub.Err():
			return err
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case r := <-ch:
			if !filter.match(r) {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(r); err != nil {
				logger.Debug("record stream write failed", "err", err)
				return nil
			}
		}
	}
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/records").
		Methods(http.MethodGet).
		Name("subscriptions_records").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeRecords))
}
