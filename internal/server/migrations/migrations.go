// Package migrations embeds the goose SQL migrations for the checker store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
