// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars contains variables injected at build time.
package buildvars

// Version is set at link time via
// -ldflags "-X github.com/toeirei/ledgerbase/buildvars.Version=...".
// It is empty for local builds.
var Version string

// Commit is the short commit SHA, set the same way.
var Commit string

// VersionOrDefault returns Version if set, otherwise def. The commit is
// appended when known.
func VersionOrDefault(def string) string {
	v := def
	if Version != "" {
		v = Version
	}
	if Commit != "" {
		v += " (" + Commit + ")"
	}
	return v
}
