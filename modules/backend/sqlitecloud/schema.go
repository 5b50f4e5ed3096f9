package sqlitecloud

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schemaStatements are executed in order to create the inventory schema.
// All use IF NOT EXISTS for idempotent re-application. Names are unique
// per resource kind so ID-or-name lookup is unambiguous.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS images (
		id       TEXT PRIMARY KEY,
		name     TEXT NOT NULL UNIQUE,
		min_disk INTEGER NOT NULL DEFAULT 0,
		status   TEXT NOT NULL DEFAULT 'active'
	)`,

	`CREATE TABLE IF NOT EXISTS flavors (
		id      TEXT PRIMARY KEY,
		name    TEXT NOT NULL UNIQUE,
		vcpus   INTEGER NOT NULL,
		ram_mb  INTEGER NOT NULL,
		disk_gb INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS networks (
		id     TEXT PRIMARY KEY,
		name   TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'ACTIVE'
	)`,

	`CREATE TABLE IF NOT EXISTS subnets (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		cidr       TEXT NOT NULL,
		network_id TEXT NOT NULL REFERENCES networks(id) ON DELETE CASCADE
	)`,

	`CREATE TABLE IF NOT EXISTS servers (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		status     TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
		flavor_id  TEXT NOT NULL REFERENCES flavors(id),
		image_id   TEXT NOT NULL REFERENCES images(id),
		network_id TEXT NOT NULL REFERENCES networks(id),
		ip_address TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS volumes (
		id        TEXT PRIMARY KEY,
		name      TEXT NOT NULL UNIQUE,
		status    TEXT NOT NULL DEFAULT 'available',
		size_gb   INTEGER NOT NULL,
		server_id TEXT REFERENCES servers(id)
	)`,

	`CREATE TABLE IF NOT EXISTS floating_ips (
		id         TEXT PRIMARY KEY,
		address    TEXT NOT NULL UNIQUE,
		status     TEXT NOT NULL DEFAULT 'DOWN',
		network_id TEXT NOT NULL REFERENCES networks(id),
		server_id  TEXT REFERENCES servers(id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_volumes_server ON volumes(server_id)`,
	`CREATE INDEX IF NOT EXISTS idx_subnets_network ON subnets(network_id)`,
	`CREATE INDEX IF NOT EXISTS idx_fips_server ON floating_ips(server_id)`,

	`CREATE TABLE IF NOT EXISTS usage_snapshots (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		taken_at     TEXT NOT NULL,
		servers      INTEGER NOT NULL,
		volumes      INTEGER NOT NULL,
		networks     INTEGER NOT NULL,
		floating_ips INTEGER NOT NULL,
		vcpus        INTEGER NOT NULL,
		ram_mb       INTEGER NOT NULL,
		storage_gb   INTEGER NOT NULL
	)`,
}

// migrate creates or updates the database schema to the latest version.
// All DDL uses IF NOT EXISTS, making migration idempotent.
func migrate(db *sql.DB) error {
	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("sqlitecloud: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("sqlitecloud: read schema version: %w", err)
	}

	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlitecloud: migrate: %w\nstatement: %s", err, stmt)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("sqlitecloud: record schema version: %w", err)
	}

	return nil
}
