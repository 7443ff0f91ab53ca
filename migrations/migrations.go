// Package migrations embeds the SQL schema so the migrate binary runs from any directory.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

const PostgresDir = "postgres"
