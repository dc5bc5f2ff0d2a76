// Package migrations embeds the PostgreSQL schema migrations so the binaries
// work regardless of working directory.
package migrations

import "embed"

// FS holds the numbered golang-migrate files in this directory.
//
//go:embed *.sql
var FS embed.FS
