// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configDirFlag = cli.StringFlag{
		Name:   "config-dir",
		Value:  defaultConfigDir(),
		Hidden: true,
		Usage:  "directory for user global configurations",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for record databases",
	}
	profileFlag = cli.StringFlag{
		Name:  "profile",
		Usage: "path to the YAML agent profile",
	}
	paymentAddressFlag = cli.StringFlag{
		Name:  "payment-address",
		Usage: "ILP payment address advertised by this agent",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiQueryLimitFlag = cli.Uint64Flag{
		Name:  "api-query-limit",
		Value: 1000,
		Usage: "limit the number of records returned by query APIs",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	cacheTTLFlag = cli.DurationFlag{
		Name:  "cache-ttl",
		Usage: "capability cache entry lifetime (default per cache settings)",
	}
	cacheSizeFlag = cli.IntFlag{
		Name:  "cache-size",
		Usage: "maximum number of capability cache entries (default per cache settings)",
	}
	sweepIntervalFlag = cli.DurationFlag{
		Name:   "sweep-interval",
		Hidden: true,
		Usage:  "proposal expiry sweep period",
	}
	skipClockCheckFlag = cli.BoolFlag{
		Name:   "skip-clock-check",
		Hidden: true,
		Usage:  "skip the NTP clock offset check",
	}
	importMasterKeyFlag = cli.BoolFlag{
		Name:  "import",
		Usage: "import master key from keystore",
	}
	exportMasterKeyFlag = cli.BoolFlag{
		Name:  "export",
		Usage: "export master key to keystore",
	}
	masterKeyStdinFlag = cli.BoolFlag{
		Name:   "master-key-stdin",
		Usage:  "read master key from stdin",
		Hidden: true,
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	storeCacheFlag = cli.Uint64Flag{
		Name:  "cache",
		Value: 1024,
		Usage: "megabytes of ram allocated to the record store cache",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
)
