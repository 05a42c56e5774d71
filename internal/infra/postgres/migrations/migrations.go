// Package migrations holds the schema, applied with bun's migrator by the migrate command and
// on server start when Postgres is configured.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations collects one registration per file; bun names each migration after its file.
var Migrations = migrate.NewMigrations()
