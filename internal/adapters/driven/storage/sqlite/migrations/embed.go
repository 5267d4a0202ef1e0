// Package migrations embeds the SQL migrations of the SQLite store.
package migrations

import "embed"

// FS holds the numbered up and down scripts applied by sqlite.NewStore.
//
//go:embed *.sql
var FS embed.FS
