// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

// Package cli implements the ledgerbase command: table setup, version
// inspection, loading checks, copies between databases, snapshots and
// engine maintenance.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/ledgerbase/internal/backend"
	"github.com/toeirei/ledgerbase/internal/config"
	"github.com/toeirei/ledgerbase/internal/db"
	"github.com/toeirei/ledgerbase/internal/i18n"
	"github.com/toeirei/ledgerbase/internal/logging"
	"github.com/toeirei/ledgerbase/internal/model"
	"github.com/toeirei/ledgerbase/internal/objects"
)

// app carries the configuration resolved for one invocation.
type app struct {
	cfgFile string
	cfg     config.Config
}

// NewRootCommand builds the command tree. version is printed by --version.
func NewRootCommand(version string) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ledgerbase",
		Short:         i18n.T("root.short"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ledgerbase.yaml in the user or system config dir)")
	pf.String("db-type", "", "database type: sqlite, postgres or mysql")
	pf.String("dsn", "", "data source name")
	pf.String("lang", "", "message language")
	pf.Bool("debug", false, "log SQL statements and debug messages")
	for flag, key := range map[string]string{
		"db-type": "database.type",
		"dsn":     "database.dsn",
		"lang":    "language",
		"debug":   "debug",
	} {
		if err := config.BindFlag(pf, flag, key); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		newInitCmd(a),
		newVersionsCmd(a),
		newCheckCmd(a),
		newCopyCmd(a),
		newDumpCmd(a),
		newRestoreCmd(a),
		newMaintainCmd(a),
		newConfigCmd(a),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

func (a *app) load(cmd *cobra.Command) error {
	var file *string
	if a.cfgFile != "" {
		file = &a.cfgFile
	}
	cfg, err := config.LoadConfig[config.Config](cmd, config.Defaults(), file)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	a.cfg = cfg
	logging.SetDebug(cfg.Debug)
	db.SetDebug(cfg.Debug)
	i18n.Init(cfg.Language)
	return nil
}

// open connects to dbType at dsn with the configured retry policy.
func (a *app) open(ctx context.Context, dbType, dsn string) (*db.Conn, error) {
	conn, err := db.Open(ctx, dbType, dsn, db.WithRetry(a.cfg.Retry.Attempts, a.cfg.RetryDelay()))
	if err != nil {
		return nil, fmt.Errorf("%s", i18n.T("error.open", dbType, err))
	}
	return conn, nil
}

// openBackend connects to the configured database and returns a Backend
// over an empty book with every object type registered.
func (a *app) openBackend(ctx context.Context) (*backend.Backend, *db.Conn, error) {
	conn, err := a.open(ctx, a.cfg.Database.Type, a.cfg.Database.Dsn)
	if err != nil {
		return nil, nil, err
	}
	return backend.New(conn, model.NewBook(), objects.NewRegistry()), conn, nil
}

// countObjects returns the number of objects in book.
func countObjects(book *model.Book) int {
	n := 0
	for _, typeName := range book.TypeNames() {
		n += book.Count(typeName)
	}
	return n
}
