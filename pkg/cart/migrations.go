package cart

import (
	"embed"
	"io/fs"
)

//go:embed migrations
var migrations embed.FS

// PostgresMigrations returns the goose migrations for PostgresStore.
func PostgresMigrations() fs.FS {
	sub, _ := fs.Sub(migrations, "migrations/postgres")
	return sub
}

// SQLiteMigrations returns the goose migrations for SQLiteStore.
func SQLiteMigrations() fs.FS {
	sub, _ := fs.Sub(migrations, "migrations/sqlite")
	return sub
}
