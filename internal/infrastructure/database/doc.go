// Package database provides SQLite connectivity for babylog.
//
// This package manages:
//   - The connection pool with WAL mode, busy timeout and foreign keys enabled
//   - Schema migrations read from an fs.FS (normally the embedded migrations package)
//   - Health checks and lifecycle
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    log.Fatal(err)
//	}
//
// Migrations are additive: each file pair is YYYYMMDD_HHMMSS_name.up.sql and
// YYYYMMDD_HHMMSS_name.down.sql, and tables are declared STRICT.
package database
