// Package store is the optional SQLite sink for cleaning runs.
//
// Open applies the versioned migrations in order and records each applied
// version in schema_migrations. SaveRun writes the run audit row, its stage
// statistics and the cleaned incidents in one transaction, keyed by
// (run_id, position). Timestamps are stored as RFC 3339 text in UTC and
// missing values as NULL.
package store
