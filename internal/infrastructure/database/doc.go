// Package database provides the SQLite store behind the CakeBoard session
// trace.
//
// It manages:
//   - the connection, with WAL mode and a busy timeout
//   - schema migrations embedded into the binary
//   - connection lifecycle and health checks
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "./data/trace.db", WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if _, err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with a
// matching .down.sql, and are registered by the migrations package through
// MigrationsFS and MigrationsDir.
package database
