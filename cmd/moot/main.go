// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/moot/admin"
	"github.com/vechain/moot/api"
	"github.com/vechain/moot/discovery"
	"github.com/vechain/moot/log"
	"github.com/vechain/moot/metrics"
	"github.com/vechain/moot/moot"
	"github.com/vechain/moot/node"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Moot",
		Usage:     "Agent coordination node",
		Copyright: "2026 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			configDirFlag,
			dataDirFlag,
			profileFlag,
			paymentAddressFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiQueryLimitFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			cacheTTLFlag,
			cacheSizeFlag,
			sweepIntervalFlag,
			skipClockCheckFlag,
			masterKeyStdinFlag,
			pprofFlag,
			storeCacheFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "master-key",
				Usage: "master key management",
				Flags: []cli.Flag{
					configDirFlag,
					importMasterKeyFlag,
					exportMasterKeyFlag,
				},
				Action: masterKeyAction,
			},
			{
				Name:      "export",
				Usage:     "export the record store to an archive file",
				ArgsUsage: "<output-file>",
				Flags: []cli.Flag{
					dataDirFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: exportRecordsAction,
			},
			{
				Name:      "import",
				Usage:     "import records from an archive file",
				ArgsUsage: "<input-file>",
				Flags: []cli.Flag{
					dataDirFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: importRecordsAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	var prof *profile
	if path := ctx.String(profileFlag.Name); path != "" {
		p, err := loadProfile(path)
		if err != nil {
			fatal(fmt.Sprintf("load profile [%v]: %v", path, err))
		}
		prof = p
	}

	paymentAddress := ctx.String(paymentAddressFlag.Name)
	if paymentAddress == "" && prof != nil {
		paymentAddress = prof.PaymentAddress
	}
	if paymentAddress == "" {
		fatal(fmt.Sprintf("payment address not set, use -%s or the profile", paymentAddressFlag.Name))
	}

	var (
		master *secp256k1.PrivateKey
		err    error
	)
	if ctx.Bool(masterKeyStdinFlag.Name) {
		master, err = readMasterKeyFromStdin()
	} else {
		master, err = loadOrGenerateMasterKey(masterKeyPath(ctx))
	}
	if err != nil {
		fatal("load master key:", err)
	}

	dataDir := makeDataDir(ctx)

	db := openRecordStore(dataDir)
	defer func() { logger.Info("closing record store..."); db.Close() }()

	followStore := openFollowStore(ctx, dataDir)
	defer func() { logger.Info("closing follow store..."); followStore.Close() }()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			fatal("start metrics server:", err)
		}
		logger.Info("metrics server started", "url", url)
		defer closeFunc()
	}

	n, err := node.New(master, db, followStore, node.Options{
		PaymentAddress: moot.PaymentAddress(paymentAddress),
		SweepInterval:  ctx.Duration(sweepIntervalFlag.Name),
		Cache: discovery.CacheOptions{
			TTL:        ctx.Duration(cacheTTLFlag.Name),
			MaxEntries: ctx.Int(cacheSizeFlag.Name),
		},
		SkipClockCheck: ctx.Bool(skipClockCheckFlag.Name),
	})
	if err != nil {
		fatal("start node:", err)
	}
	defer n.Close()

	if prof != nil {
		if err := applyProfile(prof, n); err != nil {
			fatal("apply profile:", err)
		}
	}

	apiHandler, apiCloser := api.New(n, api.Options{
		Version:         fullVersion(),
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		QueryLimit:      ctx.Uint64(apiQueryLimitFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})
	defer func() { logger.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, apiHandler)
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := admin.StartServer(ctx.String(adminAddrFlag.Name), logLevel, func() admin.Health {
			return admin.Health{
				Healthy:            true,
				Pubkey:             n.PubKey(),
				TrackedProposals:   len(n.Tracker().List()),
				CachedCapabilities: n.Cache().Metrics().Size,
			}
		})
		if err != nil {
			fatal("start admin server:", err)
		}
		logger.Info("admin server started", "url", url)
		defer closeFunc()
	}

	printStartupMessage(n, dataDir, apiURL)

	<-exitSignal.Done()
	return nil
}
