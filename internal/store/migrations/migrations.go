// Package migrations holds the versioned schema for the local database.
// Each file registers one migration; bun derives its name from the file.
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the ordered set applied by store.Open.
var Migrations = migrate.NewMigrations()
