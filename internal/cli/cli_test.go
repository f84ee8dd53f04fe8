package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/ledgerbase/internal/i18n"
)

// run executes the command tree with args against an isolated config dir.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)
	t.Chdir(tmp)
	t.Cleanup(func() { i18n.Init("en") })
	return tmp
}

func TestInitVersionsCheck(t *testing.T) {
	dir := isolate(t)
	dsn := filepath.Join(dir, "book.db")

	out, err := run(t, "--dsn", dsn, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "current versions in sqlite")

	out, err = run(t, "--dsn", dsn, "versions")
	require.NoError(t, err)
	assert.Contains(t, out, "TABLE")
	for _, table := range []string{"slots", "commodities", "accounts", "lots", "customers", "orders"} {
		assert.Contains(t, out, table)
	}
	assert.NotContains(t, out, "no version information")

	out, err = run(t, "--dsn", dsn, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 0 objects")
}

func TestVersionsOnEmptyDatabase(t *testing.T) {
	dir := isolate(t)
	out, err := run(t, "--dsn", filepath.Join(dir, "empty.db"), "versions")
	require.NoError(t, err)
	assert.Contains(t, out, "no version information")
}

func TestDumpRestoreCopy(t *testing.T) {
	dir := isolate(t)
	src := filepath.Join(dir, "src.db")
	_, err := run(t, "--dsn", src, "init")
	require.NoError(t, err)

	snap := filepath.Join(dir, "snap.yaml.zst")
	out, err := run(t, "--dsn", src, "dump", "--out", snap)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 0 rows")
	_, err = os.Stat(snap)
	require.NoError(t, err)

	restored := filepath.Join(dir, "restored.db")
	out, err = run(t, "--dsn", restored, "restore", snap)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored 0 rows")

	copied := filepath.Join(dir, "copy.db")
	out, err = run(t, "--dsn", src, "copy", "--to-dsn", copied)
	require.NoError(t, err)
	assert.Contains(t, out, "Copied 0 objects to sqlite")

	out, err = run(t, "--dsn", copied, "versions")
	require.NoError(t, err)
	assert.Contains(t, out, "customers")
}

func TestCopyNeedsTarget(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, "--dsn", filepath.Join(dir, "a.db"), "copy")
	assert.ErrorContains(t, err, "--to-dsn")
}

func TestMaintainSQLite(t *testing.T) {
	dir := isolate(t)
	out, err := run(t, "--dsn", filepath.Join(dir, "m.db"), "maintain")
	require.NoError(t, err)
	assert.Contains(t, out, "Maintenance finished on sqlite")
}

func TestGermanMessages(t *testing.T) {
	dir := isolate(t)
	out, err := run(t, "--lang", "de", "--dsn", filepath.Join(dir, "de.db"), "init")
	require.NoError(t, err)
	assert.Contains(t, out, "aktuellen Stand")
}

func TestUnsupportedDatabaseType(t *testing.T) {
	isolate(t)
	_, err := run(t, "--db-type", "oracle", "--dsn", "x", "init")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "oracle"))
}

func TestConfigCommandWritesFile(t *testing.T) {
	dir := isolate(t)
	out, err := run(t, "--dsn", "custom.db", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written to")
	data, err := os.ReadFile(filepath.Join(dir, "ledgerbase", "ledgerbase.yaml"))
	if err != nil {
		// macOS keeps user config under Library/Application Support.
		t.Skipf("config not in XDG location: %v", err)
	}
	assert.Contains(t, string(data), "custom.db")
}
