// Package migrations embeds the goose SQL migrations applied to the local
// client database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
