// Package migrations embeds the schema for both supported databases.
package migrations

import "embed"

const (
	DirSQLite   = "sqlite"
	DirPostgres = "postgres"
)

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS
