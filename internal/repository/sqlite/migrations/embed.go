package migrations

import "embed"

// FS contains embedded SQLite migrations for meal storage.
//
//go:embed *.sql
var FS embed.FS
