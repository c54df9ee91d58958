// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/moot/api/capabilities"
	apidiscovery "github.com/vechain/moot/api/discovery"
	"github.com/vechain/moot/api/follows"
	apinode "github.com/vechain/moot/api/node"
	"github.com/vechain/moot/api/proposals"
	"github.com/vechain/moot/api/records"
	"github.com/vechain/moot/api/subscriptions"
	"github.com/vechain/moot/log"
	"github.com/vechain/moot/node"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	Version         string
	AllowedOrigins  string
	QueryLimit      uint64
	PprofOn         bool
	EnableReqLogger bool
	EnableMetrics   bool
}

// New returns the api handler and a closer terminating the hijacked
// subscription connections.
func New(n *node.Node, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	proposals.New(n.Tracker()).
		Mount(router, "/proposals")
	capabilities.New(n.Query(), n, int(opts.QueryLimit)).
		Mount(router, "/capabilities")
	apidiscovery.New(n.Social(), n.Cache()).
		Mount(router, "/discovery")
	records.New(n.DB(), n, opts.QueryLimit).
		Mount(router, "/records")
	follows.New(n.Router(), n).
		Mount(router, "/follows")
	apinode.New(apinode.Info{
		Pubkey:         n.PubKey(),
		PaymentAddress: n.PaymentAddress(),
		Version:        opts.Version,
	}).Mount(router, "/node")
	subs := subscriptions.New(n, origins)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
