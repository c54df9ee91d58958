// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node wires the coordination and discovery engines into a running
// agent: it owns the record store, the follow table, the capability cache
// and the proposal tracker, routes ingested records between them and runs
// the background housekeeping loops.
package node

import (
	"context"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/moot/co"
	"github.com/vechain/moot/coord"
	"github.com/vechain/moot/discovery"
	"github.com/vechain/moot/eventdb"
	"github.com/vechain/moot/kv"
	"github.com/vechain/moot/log"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/record"
	"github.com/vechain/moot/routing"
)

var logger = log.WithContext("pkg", "node")

// Options tunes the node runtime. Zero values select defaults.
type Options struct {
	PaymentAddress moot.PaymentAddress
	SweepInterval  time.Duration // proposal expiry sweep period
	Cache          discovery.CacheOptions
	SkipClockCheck bool // disable the NTP clock-offset probe
}

const defaultSweepInterval = 10 * time.Second

// Node is a running agent process.
type Node struct {
	master *secp256k1.PrivateKey
	author *coord.Author
	db     *eventdb.EventDB
	router *routing.Router
	query  *discovery.QueryService
	cache  *discovery.Cache
	social *discovery.Social
	track  *coord.Tracker
	opts   Options

	recordFeed event.Feed
	scope      event.SubscriptionScope

	ctx    context.Context
	cancel context.CancelFunc
	goes   co.Goes
}

// New assembles a node around the master key, the record store and the
// key-value store backing the follow table. Open proposals authored by the
// master key are recovered from the store before the node starts serving.
func New(master *secp256k1.PrivateKey, db *eventdb.EventDB, followStore kv.GetPutter, opts Options) (*Node, error) {
	if master == nil {
		return nil, errors.New("nil master key")
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}

	author, err := coord.NewAuthor(master, opts.PaymentAddress)
	if err != nil {
		return nil, err
	}

	query := discovery.NewQueryService(db)
	cache, err := discovery.NewCache(query, opts.Cache)
	if err != nil {
		return nil, err
	}
	router := routing.NewRouter(followStore)

	ctx, cancel := context.WithCancel(context.Background())
	n := &Node{
		master: master,
		author: author,
		db:     db,
		router: router,
		query:  query,
		cache:  cache,
		social: discovery.NewSocial(author.PubKey(), router, query, cache),
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
	}
	n.track = coord.NewTracker(author, coord.NewEscrow(), n.Publish)

	if err := n.restore(); err != nil {
		cache.Close()
		cancel()
		return nil, errors.Wrap(err, "restore proposals")
	}

	n.goes.Go(n.houseKeeping)
	logger.Info("node started",
		"pubkey", author.PubKey().AbbrevString(), "address", string(author.PaymentAddress()))
	return n, nil
}

// Close stops the background loops and the capability cache. The stores
// passed to New stay open, their lifecycle belongs to the caller.
func (n *Node) Close() {
	n.cancel()
	n.scope.Close()
	n.goes.Wait()
	n.cache.Close()
	logger.Info("node stopped")
}

// PubKey returns the agent's x-only pubkey.
func (n *Node) PubKey() moot.PubKey { return n.author.PubKey() }

// PaymentAddress returns the agent's payment address.
func (n *Node) PaymentAddress() moot.PaymentAddress { return n.author.PaymentAddress() }

// Author returns the signing author bound to the master key.
func (n *Node) Author() *coord.Author { return n.author }

// Tracker returns the proposal tracker.
func (n *Node) Tracker() *coord.Tracker { return n.track }

// Query returns the capability query service.
func (n *Node) Query() *discovery.QueryService { return n.query }

// Cache returns the capability cache.
func (n *Node) Cache() *discovery.Cache { return n.cache }

// Social returns the social discovery walker.
func (n *Node) Social() *discovery.Social { return n.social }

// Router returns the follow table.
func (n *Node) Router() *routing.Router { return n.router }

// DB returns the record store.
func (n *Node) DB() *eventdb.EventDB { return n.db }

// SubscribeRecords delivers every newly stored record to ch until the
// subscription is unsubscribed or the node closes.
func (n *Node) SubscribeRecords(ch chan *record.Record) event.Subscription {
	return n.scope.Track(n.recordFeed.Subscribe(ch))
}

// Publish stores a record signed by this node and announces it on the
// record feed. The transport non-goal leaves relaying to the embedding
// process.
func (n *Node) Publish(r *record.Record) error {
	if _, err := n.db.Store(r); err != nil {
		return errors.Wrap(err, "store record")
	}
	n.recordFeed.Send(r)
	return nil
}

// Ingest verifies and stores a record received from a peer, then routes it:
// votes feed the tracker, capability advertisements refresh the cache and
// everything is announced on the record feed. Routing failures are logged,
// only verification and storage errors reject the record.
func (n *Node) Ingest(r *record.Record) error {
	if !r.Verify() {
		metricIngestCounter().AddWithLabel(1, map[string]string{"outcome": "bad_signature"})
		return errors.New("invalid record signature")
	}
	stored, err := n.db.Store(r)
	if err != nil {
		metricIngestCounter().AddWithLabel(1, map[string]string{"outcome": "store_failed"})
		return errors.Wrap(err, "store record")
	}
	if !stored {
		metricIngestCounter().AddWithLabel(1, map[string]string{"outcome": "known"})
		return nil
	}
	metricIngestCounter().AddWithLabel(1, map[string]string{"outcome": "stored"})

	switch r.Kind() {
	case moot.KindVote:
		if _, err := n.track.ObserveVote(r); err != nil {
			logger.Debug("vote not counted",
				"id", r.ID().AbbrevString(), "voter", r.Author().AbbrevString(), "err", err)
		}
	case moot.KindProposal:
		if r.Author() == n.author.PubKey() {
			n.trackOwnProposal(r)
		}
	case moot.KindCapability:
		if capability, err := discovery.ParseCapability(r); err != nil {
			logger.Debug("skipping invalid capability record",
				"id", r.ID().AbbrevString(), "err", err)
		} else {
			n.cache.Set(capability.Author, capability)
		}
	}

	n.recordFeed.Send(r)
	return nil
}

func (n *Node) trackOwnProposal(r *record.Record) {
	p, err := coord.ParseProposal(r, uint64(time.Now().Unix()))
	if err != nil {
		logger.Warn("own proposal record rejected",
			"id", r.ID().AbbrevString(), "err", err)
		return
	}
	if err := n.track.Track(p); err != nil {
		logger.Warn("own proposal not tracked", "proposal", p.ID, "err", err)
	}
}

// restore recovers open proposals authored by the master key and replays
// their stored votes. Expired or malformed records are skipped.
func (n *Node) restore() error {
	records, err := n.db.Query(n.ctx, &record.Filter{
		Kinds:   []uint32{moot.KindProposal},
		Authors: []moot.PubKey{n.author.PubKey()},
	})
	if err != nil {
		return err
	}

	now := uint64(time.Now().Unix())
	var open []string
	for _, r := range records {
		p, err := coord.ParseProposal(r, now)
		if err != nil {
			if !coord.IsExpiredProposal(err) {
				logger.Warn("skipping unparseable proposal",
					"id", r.ID().AbbrevString(), "err", err)
			}
			continue
		}
		if err := n.track.Track(p); err != nil {
			logger.Warn("proposal not recovered", "proposal", p.ID, "err", err)
			continue
		}
		open = append(open, p.ID)
	}
	if len(open) == 0 {
		return nil
	}

	votes, err := n.db.Query(n.ctx, &record.Filter{
		Kinds: []uint32{moot.KindVote},
		Tags:  map[string][]string{"d": open},
	})
	if err != nil {
		return err
	}
	for _, r := range votes {
		if _, err := n.track.ObserveVote(r); err != nil {
			logger.Debug("stored vote not replayed",
				"id", r.ID().AbbrevString(), "err", err)
		}
	}
	logger.Info("proposals recovered", "open", len(open), "votes", len(votes))
	return nil
}

// Advertise signs and publishes the node's own capability record.
func (n *Node) Advertise(draft *discovery.CapabilityDraft) (*discovery.Capability, error) {
	if draft.PaymentAddress == "" {
		draft.PaymentAddress = n.author.PaymentAddress()
	}
	rec, capability, err := discovery.BuildCapability(draft, n.master, uint64(time.Now().Unix()))
	if err != nil {
		return nil, err
	}
	if err := n.Publish(rec); err != nil {
		return nil, err
	}
	n.cache.Set(capability.Author, capability)
	return capability, nil
}

// PublishFollows signs and publishes the node's kind 3 follow record so
// peers can walk this agent in their extended discovery hop.
func (n *Node) PublishFollows() (*record.Record, error) {
	rec, err := n.router.BuildFollowRecord(n.master, uint64(time.Now().Unix()))
	if err != nil {
		return nil, err
	}
	if err := n.Publish(rec); err != nil {
		return nil, err
	}
	return rec, nil
}
