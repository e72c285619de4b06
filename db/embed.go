// Package db embeds the SQL migrations so the binary and tests carry their schema.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
