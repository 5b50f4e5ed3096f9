package sqlitecloud

import (
	"context"
	"fmt"
	"time"
)

// UsageReport aggregates resource consumption across the project.
type UsageReport struct {
	Servers     int          `json:"servers"`
	Volumes     int          `json:"volumes"`
	Networks    int          `json:"networks"`
	FloatingIPs int          `json:"floating_ips"`
	VCPUs       int          `json:"vcpus_used"`
	RAMMB       int          `json:"ram_mb_used"`
	StorageGB   int          `json:"storage_gb_used"`
	Detail      *UsageDetail `json:"detail,omitempty"`
}

// UsageDetail carries the per-resource breakdown of a detailed report.
type UsageDetail struct {
	Servers []ServerUsage `json:"servers"`
	Volumes []Volume      `json:"volumes"`
}

// ServerUsage describes what a single server consumes.
type ServerUsage struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Status  string   `json:"status"`
	Flavor  string   `json:"flavor"`
	VCPUs   int      `json:"vcpus"`
	RAMMB   int      `json:"ram_mb"`
	DiskGB  int      `json:"disk_gb"`
	IP      string   `json:"ip_address"`
	Volumes []Volume `json:"volumes,omitempty"`
}

// ProjectUsage computes the live aggregate. With detailed set it also
// includes per-server and per-volume rows.
func (s *Store) ProjectUsage(ctx context.Context, detailed bool) (*UsageReport, error) {
	report := &UsageReport{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(f.vcpus), 0), COALESCE(SUM(f.ram_mb), 0)
		FROM servers s JOIN flavors f ON f.id = s.flavor_id`).
		Scan(&report.Servers, &report.VCPUs, &report.RAMMB)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: aggregate servers: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(size_gb), 0) FROM volumes").
		Scan(&report.Volumes, &report.StorageGB)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: aggregate volumes: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM networks").Scan(&report.Networks); err != nil {
		return nil, fmt.Errorf("sqlitecloud: count networks: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM floating_ips").Scan(&report.FloatingIPs); err != nil {
		return nil, fmt.Errorf("sqlitecloud: count floating ips: %w", err)
	}

	if !detailed {
		return report, nil
	}

	servers, err := s.serverUsageRows(ctx, "")
	if err != nil {
		return nil, err
	}
	volumes, err := s.ListVolumes(ctx)
	if err != nil {
		return nil, err
	}
	report.Detail = &UsageDetail{Servers: servers, Volumes: volumes}
	return report, nil
}

// ServerUsage reports what one server, found by ID or name, consumes.
func (s *Store) ServerUsage(ctx context.Context, idOrName string) (*ServerUsage, error) {
	id, _, err := s.serverRef(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	rows, err := s.serverUsageRows(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("server", idOrName)
	}
	return &rows[0], nil
}

func (s *Store) serverUsageRows(ctx context.Context, onlyID string) ([]ServerUsage, error) {
	query := `
		SELECT s.id, s.name, s.status, f.name, f.vcpus, f.ram_mb, f.disk_gb, s.ip_address
		FROM servers s JOIN flavors f ON f.id = s.flavor_id`
	var args []any
	if onlyID != "" {
		query += " WHERE s.id = ?"
		args = append(args, onlyID)
	}
	query += " ORDER BY s.created_at, s.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: server usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ServerUsage
	for rows.Next() {
		var su ServerUsage
		if err := rows.Scan(&su.ID, &su.Name, &su.Status, &su.Flavor,
			&su.VCPUs, &su.RAMMB, &su.DiskGB, &su.IP); err != nil {
			return nil, fmt.Errorf("sqlitecloud: scan server usage: %w", err)
		}
		out = append(out, su)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		volumes, err := s.volumesOf(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Volumes = volumes
	}
	return out, nil
}

func (s *Store) volumesOf(ctx context.Context, serverID string) ([]Volume, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, status, size_gb, COALESCE(server_id, '')
		FROM volumes WHERE server_id = ? ORDER BY name`, serverID)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: server volumes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Volume
	for rows.Next() {
		var vol Volume
		if err := rows.Scan(&vol.ID, &vol.Name, &vol.Status, &vol.SizeGB, &vol.AttachedTo); err != nil {
			return nil, fmt.Errorf("sqlitecloud: scan server volume: %w", err)
		}
		out = append(out, vol)
	}
	return out, rows.Err()
}

// SnapshotUsage records the current aggregate in usage_snapshots. The
// scheduler calls this on its accounting cadence.
func (s *Store) SnapshotUsage(ctx context.Context) error {
	report, err := s.ProjectUsage(ctx, false)
	if err != nil {
		return err
	}

	takenAt := s.now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO usage_snapshots (taken_at, servers, volumes, networks, floating_ips, vcpus, ram_mb, storage_gb)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		takenAt, report.Servers, report.Volumes, report.Networks,
		report.FloatingIPs, report.VCPUs, report.RAMMB, report.StorageGB)
	if err != nil {
		return fmt.Errorf("sqlitecloud: insert usage snapshot: %w", err)
	}

	s.logger.Info("usage snapshot recorded",
		"servers", report.Servers, "volumes", report.Volumes,
		"vcpus", report.VCPUs, "storage_gb", report.StorageGB)
	return nil
}
