package sqlitecloud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateServerParams collects everything needed to boot a server.
type CreateServerParams struct {
	Name        string
	ImageName   string
	FlavorName  string
	NetworkName string
	// VolumeSizeGB, when positive, also creates a boot volume of that
	// size and attaches it to the new server.
	VolumeSizeGB int
}

// DeleteServerResult reports what a server deletion touched.
type DeleteServerResult struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	DetachedVolumes     int    `json:"detached_volumes"`
	ReleasedFloatingIPs int    `json:"released_floating_ips"`
}

// CreateServer provisions a server. In the simulation servers come up
// ACTIVE immediately with a deterministic address.
func (s *Store) CreateServer(ctx context.Context, p CreateServerParams) (*Server, error) {
	var imageID string
	var minDisk int
	err := s.db.QueryRowContext(ctx,
		"SELECT id, min_disk FROM images WHERE name = ?", p.ImageName).Scan(&imageID, &minDisk)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("image", p.ImageName)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: resolve image: %w", err)
	}

	var flavorID string
	err = s.db.QueryRowContext(ctx,
		"SELECT id FROM flavors WHERE name = ?", p.FlavorName).Scan(&flavorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("flavor", p.FlavorName)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: resolve flavor: %w", err)
	}

	networkID, _, err := s.networkRef(ctx, p.NetworkName)
	if err != nil {
		return nil, err
	}

	if p.VolumeSizeGB > 0 && p.VolumeSizeGB < minDisk {
		return nil, fmt.Errorf("volume size %d GB is below the %d GB minimum for image %q",
			p.VolumeSizeGB, minDisk, p.ImageName)
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM servers WHERE name = ?", p.Name).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: check server name: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("server %q already exists: %w", p.Name, ErrConflict)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM servers").Scan(&count); err != nil {
		return nil, fmt.Errorf("sqlitecloud: count servers: %w", err)
	}

	id := s.newID()
	ip := fmt.Sprintf("192.168.%d.100", count+1)
	created := s.now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: begin create server: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO servers (id, name, status, created_at, flavor_id, image_id, network_id, ip_address)
		VALUES (?, ?, 'ACTIVE', ?, ?, ?, ?, ?)`,
		id, p.Name, created, flavorID, imageID, networkID, ip)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: insert server: %w", err)
	}

	if p.VolumeSizeGB > 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO volumes (id, name, status, size_gb, server_id)
			VALUES (?, ?, 'in-use', ?, ?)`,
			s.newID(), p.Name+"-boot-volume", p.VolumeSizeGB, id)
		if err != nil {
			return nil, fmt.Errorf("sqlitecloud: insert boot volume: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlitecloud: commit create server: %w", err)
	}

	s.logger.Info("server created", "id", id, "name", p.Name, "flavor", p.FlavorName, "ip", ip)
	return s.getServer(ctx, id)
}

// DeleteServer removes a server. Attached volumes are detached and kept,
// and assigned floating IPs go back to the pool unassigned.
func (s *Store) DeleteServer(ctx context.Context, idOrName string) (*DeleteServerResult, error) {
	id, name, err := s.serverRef(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: begin delete server: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE volumes SET server_id = NULL, status = 'available' WHERE server_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: detach volumes: %w", err)
	}
	detached, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx,
		"UPDATE floating_ips SET server_id = NULL, status = 'DOWN' WHERE server_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: release floating ips: %w", err)
	}
	released, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, "DELETE FROM servers WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("sqlitecloud: delete server: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlitecloud: commit delete server: %w", err)
	}

	s.logger.Info("server deleted", "id", id, "name", name,
		"detached_volumes", detached, "released_floating_ips", released)
	return &DeleteServerResult{
		ID:                  id,
		Name:                name,
		DetachedVolumes:     int(detached),
		ReleasedFloatingIPs: int(released),
	}, nil
}

// ResizeServer moves a server to a new flavor.
func (s *Store) ResizeServer(ctx context.Context, idOrName, flavorName string) (*Server, error) {
	id, name, err := s.serverRef(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	var flavorID string
	err = s.db.QueryRowContext(ctx,
		"SELECT id FROM flavors WHERE name = ?", flavorName).Scan(&flavorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("flavor", flavorName)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: resolve flavor: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE servers SET flavor_id = ? WHERE id = ?", flavorID, id); err != nil {
		return nil, fmt.Errorf("sqlitecloud: resize server: %w", err)
	}

	s.logger.Info("server resized", "id", id, "name", name, "flavor", flavorName)
	return s.getServer(ctx, id)
}

// getServer loads one server by ID with references resolved.
func (s *Store) getServer(ctx context.Context, id string) (*Server, error) {
	var srv Server
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.name, s.status, s.created_at, f.name, i.name, n.name, s.ip_address
		FROM servers s
		JOIN flavors f ON f.id = s.flavor_id
		JOIN images i ON i.id = s.image_id
		JOIN networks n ON n.id = s.network_id
		WHERE s.id = ?`, id).
		Scan(&srv.ID, &srv.Name, &srv.Status, &srv.Created, &srv.Flavor, &srv.Image, &srv.Network, &srv.IP)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("server", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: load server: %w", err)
	}
	return &srv, nil
}
