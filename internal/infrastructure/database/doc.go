// Package database provides SQLite connection management and schema
// migrations for the Hearth core.
//
// The database is the source of truth for device configuration and
// schedule definitions. Runtime state lives in memory (see the
// controller package) and is persisted back on change.
//
// Migrations are embedded into the binary by the top-level migrations
// package and applied automatically at startup. Each migration runs in
// its own transaction so a failure leaves earlier migrations committed
// and the failing one rolled back.
//
// SQLite is configured with WAL mode and a busy timeout by default,
// and the pool is capped at a single connection since SQLite permits
// only one writer.
package database
