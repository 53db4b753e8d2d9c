package database

import "errors"

var (
	// ErrNoPath is returned by Open when Config.Path is empty.
	ErrNoPath = errors.New("database: no path configured")

	// ErrMigrationNotFound is returned by MigrateDown when the latest applied
	// version has no file in MigrationsFS.
	ErrMigrationNotFound = errors.New("database: migration not found")

	// ErrNoDownSQL is returned by MigrateDown when the latest migration has no
	// .down.sql file.
	ErrNoDownSQL = errors.New("database: migration has no down SQL")
)
