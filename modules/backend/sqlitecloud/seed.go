package sqlitecloud

import (
	"context"
	"database/sql"
	"fmt"
)

// Stock inventory inserted on first boot. IDs are stable so tests and
// operators can refer to seeded resources without listing first.
// INSERT OR IGNORE keeps re-seeding a no-op.
var seedStatements = []string{
	`INSERT OR IGNORE INTO images (id, name, min_disk) VALUES
		('img-ubuntu-2004',  'Ubuntu-20.04',     5),
		('img-ubuntu-2204',  'Ubuntu-22.04',     5),
		('img-debian-12',    'Debian-12',        5),
		('img-centos-9',     'CentOS-Stream-9', 10)`,

	`INSERT OR IGNORE INTO flavors (id, name, vcpus, ram_mb, disk_gb) VALUES
		('flv-m1-tiny',   'm1.tiny',   1,   512,   5),
		('flv-m1-small',  'm1.small',  2,  2048,  20),
		('flv-m1-medium', 'm1.medium', 2,  4096,  40),
		('flv-m1-large',  'm1.large',  4,  8192,  80),
		('flv-m1-xlarge', 'm1.xlarge', 8, 16384, 160)`,

	`INSERT OR IGNORE INTO networks (id, name) VALUES
		('net-default', 'default'),
		('net-private', 'private-net'),
		('net-public',  'public')`,

	`INSERT OR IGNORE INTO subnets (id, name, cidr, network_id) VALUES
		('sub-default', 'default-subnet', '192.168.1.0/24', 'net-default'),
		('sub-private', 'private-subnet', '10.0.0.0/24',    'net-private'),
		('sub-public',  'public-subnet',  '203.0.113.0/24', 'net-public')`,
}

// seed populates the stock images, flavors, and networks.
func seed(db *sql.DB) error {
	ctx := context.TODO()
	for _, stmt := range seedStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlitecloud: seed: %w", err)
		}
	}
	return nil
}
