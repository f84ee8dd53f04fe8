// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

// Command ledgerbase inspects and maintains ledgerbase databases.
//
// Usage:
//
//	ledgerbase [--db-type sqlite --dsn ./ledgerbase.db] <command>
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/toeirei/ledgerbase/buildvars"
	"github.com/toeirei/ledgerbase/internal/cli"
	"github.com/toeirei/ledgerbase/internal/logging"
)

// version is the fallback when buildvars.Version is not linked in.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cli.Execute(ctx, buildvars.VersionOrDefault(version)); err != nil {
		logging.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}
