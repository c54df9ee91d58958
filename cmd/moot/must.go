// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/moot/co"
	"github.com/vechain/moot/eventdb"
	"github.com/vechain/moot/log"
	"github.com/vechain/moot/lvldb"
	"github.com/vechain/moot/metrics"
	"github.com/vechain/moot/node"
)

func initLogger(ctx *cli.Context) *slog.LevelVar {
	logLevel := log.FromLegacyLevel(int(ctx.Uint64(verbosityFlag.Name)))
	level := &slog.LevelVar{}
	level.Set(logLevel)

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(os.Stdout, level)
	} else {
		useColor := isatty.IsTerminal(os.Stdout.Fd())
		handler = log.NewTerminalHandlerWithLevel(os.Stdout, level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return level
}

func makeConfigDir(ctx *cli.Context) string {
	configDir := ctx.String(configDirFlag.Name)
	if configDir == "" {
		fatal(fmt.Sprintf("unable to infer default config dir, use -%s to specify", configDirFlag.Name))
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		fatal(fmt.Sprintf("create config dir [%v]: %v", configDir, err))
	}
	return configDir
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func masterKeyPath(ctx *cli.Context) string {
	return filepath.Join(makeConfigDir(ctx), "master.key")
}

// loadOrGenerateMasterKey reads the hex encoded master key, creating a fresh
// one on first run. The file format is go-ethereum's plain ECDSA key file.
func loadOrGenerateMasterKey(path string) (*secp256k1.PrivateKey, error) {
	ethKey, err := crypto.LoadECDSA(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if ethKey, err = crypto.GenerateKey(); err != nil {
			return nil, err
		}
		if err := crypto.SaveECDSA(path, ethKey); err != nil {
			return nil, err
		}
	}
	return secp256k1.PrivKeyFromBytes(crypto.FromECDSA(ethKey)), nil
}

// readMasterKeyFromStdin expects a single hex encoded key line, the way
// secret injection from a process manager delivers it.
func readMasterKeyFromStdin() (*secp256k1.PrivateKey, error) {
	var keyHex string
	if _, err := fmt.Scanln(&keyHex); err != nil {
		return nil, errors.Wrap(err, "read master key from stdin")
	}
	ethKey, err := crypto.HexToECDSA(strings.TrimSpace(keyHex))
	if err != nil {
		return nil, errors.Wrap(err, "parse master key")
	}
	return secp256k1.PrivKeyFromBytes(crypto.FromECDSA(ethKey)), nil
}

func openRecordStore(dataDir string) *eventdb.EventDB {
	dir := filepath.Join(dataDir, "records.db")
	db, err := eventdb.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open record store [%v]: %v", dir, err))
	}
	return db
}

func openFollowStore(ctx *cli.Context, dataDir string) *lvldb.LevelDB {
	cacheMB := normalizeCacheSize(ctx.Int(storeCacheFlag.Name))
	logger.Debug("cache size(MB)", "size", cacheMB)

	// go-ethereum stuff
	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))

	logger.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "follows.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		fatal(fmt.Sprintf("open follow store [%v]: %v", dir, err))
	}
	return db
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		fatal("failed to get fd limit:", err)
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

// handleAPITimeout bounds every request context. Subscription streams stay
// open past the request timeout.
func handleAPITimeout(handler http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/subscriptions") {
			handler.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		handler.ServeHTTP(w, r.WithContext(ctx))
	})
}

func startAPIServer(ctx *cli.Context, handler http.Handler) (string, func()) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen API addr [%v]: %v", addr, err))
	}
	if timeout := ctx.Uint64(apiTimeoutFlag.Name); timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	srv := &http.Server{Handler: handler}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen metrics API addr [%v]: %w", addr, err)
	}

	router := http.NewServeMux()
	router.Handle("/metrics", metrics.HTTPHandler())
	srv := &http.Server{Handler: router, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func printStartupMessage(n *node.Node, dataDir string, apiURL string) {
	fmt.Printf(`Starting %v
    Pubkey       [ %v ]
    Payment addr [ %v ]
    Open props   [ %v ]
    Data dir     [ %v ]
    API portal   [ %v ]
`,
		fmt.Sprintf("Moot/%v", fullVersion()),
		n.PubKey(),
		string(n.PaymentAddress()),
		len(n.Tracker().List()),
		dataDir,
		apiURL)
}
