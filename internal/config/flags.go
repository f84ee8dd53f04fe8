// Copyright (c) 2026 ToeiRei
// Ledgerbase - SQL persistence core for ledger books
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import "github.com/spf13/pflag"

const annotationKey = "ledgerbase.config-key"

// BindFlag maps the flag name of fs onto config key, so that for example
// --dsn overrides database.dsn.
func BindFlag(fs *pflag.FlagSet, name, key string) error {
	return fs.SetAnnotation(name, annotationKey, []string{key})
}
