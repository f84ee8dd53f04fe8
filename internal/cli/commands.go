// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/ledgerbase/internal/backend"
	"github.com/toeirei/ledgerbase/internal/backup"
	"github.com/toeirei/ledgerbase/internal/config"
	"github.com/toeirei/ledgerbase/internal/i18n"
	"github.com/toeirei/ledgerbase/internal/model"
	"github.com/toeirei/ledgerbase/internal/objects"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: i18n.T("init.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			be, conn, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			if err := be.InitVersionInfo(ctx); err != nil {
				return err
			}
			if err := be.CreateAllTables(ctx); err != nil {
				return err
			}
			if err := be.FinalizeVersionInfo(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("init.done", conn.Type()))
			return nil
		},
	}
}

func newVersionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: i18n.T("versions.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			be, conn, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			if err := be.InitVersionInfo(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(be.Versions()) == 0 {
				fmt.Fprintln(out, i18n.T("versions.none"))
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, i18n.T("versions.header"))
			for _, ob := range be.Registry().All() {
				stored := "-"
				if v := be.TableVersion(ob.TableName()); v > 0 {
					stored = strconv.Itoa(v)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\n", ob.TableName(), stored, ob.Version())
			}
			return w.Flush()
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: i18n.T("check.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			be, conn, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			start := time.Now()
			book := model.NewBook()
			if err := be.Load(ctx, book, backend.LoadInitial); err != nil {
				return fmt.Errorf("%s", i18n.T("error.failed", "check", err))
			}
			out := cmd.OutOrStdout()
			for _, typeName := range book.TypeNames() {
				fmt.Fprintln(out, i18n.T("check.count", typeName, book.Count(typeName)))
			}
			fmt.Fprintln(out, i18n.T("check.done", countObjects(book), time.Since(start).Round(time.Millisecond)))
			return nil
		},
	}
}

func newCopyCmd(a *app) *cobra.Command {
	var toType, toDSN string
	cmd := &cobra.Command{
		Use:   "copy --to-type <type> --to-dsn <dsn>",
		Short: i18n.T("copy.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if toDSN == "" {
				return errors.New("--to-dsn is required")
			}
			if toType == "" {
				toType = a.cfg.Database.Type
			}
			ctx := cmd.Context()
			src, srcConn, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = srcConn.Close() }()
			book := model.NewBook()
			if err := src.Load(ctx, book, backend.LoadInitial); err != nil {
				return fmt.Errorf("%s", i18n.T("error.failed", "load", err))
			}

			dstConn, err := a.open(ctx, toType, toDSN)
			if err != nil {
				return err
			}
			defer func() { _ = dstConn.Close() }()
			dst := backend.New(dstConn, book, objects.NewRegistry())
			if err := dst.InitVersionInfo(ctx); err != nil {
				return err
			}
			if err := dst.SyncAll(ctx, book); err != nil {
				return fmt.Errorf("%s", i18n.T("error.failed", "copy", err))
			}
			if err := dst.FinalizeVersionInfo(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("copy.done", countObjects(book), toType))
			return nil
		},
	}
	cmd.Flags().StringVar(&toType, "to-type", "", "target database type (default: source type)")
	cmd.Flags().StringVar(&toDSN, "to-dsn", "", "target data source name")
	return cmd
}

func newDumpCmd(a *app) *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: i18n.T("dump.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outFile == "" {
				outFile = fmt.Sprintf("ledgerbase-%s.yaml.zst", time.Now().Format("2006-01-02"))
			}
			ctx := cmd.Context()
			be, conn, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			if err := be.InitVersionInfo(ctx); err != nil {
				return err
			}
			f, err := os.Create(outFile)
			if err != nil {
				return err
			}
			snap, err := backup.Dump(ctx, be, conn.Type(), f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("%s", i18n.T("error.failed", "dump", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("dump.done", snap.RowCount(), outFile))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: ledgerbase-YYYY-MM-DD.yaml.zst)")
	return cmd
}

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: i18n.T("restore.short"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			snap, err := backup.Read(f)
			_ = f.Close()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			be, conn, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			if err := be.InitVersionInfo(ctx); err != nil {
				return err
			}
			if err := backup.Restore(ctx, be, snap); err != nil {
				return fmt.Errorf("%s", i18n.T("error.failed", "restore", err))
			}
			if err := be.FinalizeVersionInfo(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("restore.done", snap.RowCount(), args[0]))
			return nil
		},
	}
}

func newMaintainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "maintain",
		Short: i18n.T("maintain.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			conn, err := a.open(ctx, a.cfg.Database.Type, a.cfg.Database.Dsn)
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()
			if err := conn.Maintain(ctx); err != nil {
				return fmt.Errorf("%s", i18n.T("error.failed", "maintain", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("maintain.done", conn.Type()))
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	var system bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: i18n.T("config.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.WriteConfigFile(&a.cfg, system)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("config.written", path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&system, "system", false, "write the system-wide file instead")
	return cmd
}
