// Package migrations embeds the SQL schema for the article store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
