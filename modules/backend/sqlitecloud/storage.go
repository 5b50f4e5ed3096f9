package sqlitecloud

import (
	"context"
	"fmt"
)

// CreateVolume provisions a detached volume.
func (s *Store) CreateVolume(ctx context.Context, name string, sizeGB int) (*Volume, error) {
	if sizeGB < 1 {
		return nil, fmt.Errorf("volume size must be at least 1 GB, got %d", sizeGB)
	}

	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM volumes WHERE name = ?", name).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: check volume name: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("volume %q already exists: %w", name, ErrConflict)
	}

	id := s.newID()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO volumes (id, name, status, size_gb) VALUES (?, ?, 'available', ?)`,
		id, name, sizeGB)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: insert volume: %w", err)
	}

	s.logger.Info("volume created", "id", id, "name", name, "size_gb", sizeGB)
	return &Volume{ID: id, Name: name, Status: "available", SizeGB: sizeGB}, nil
}

// DeleteVolume removes a volume. Attached volumes must be detached first.
func (s *Store) DeleteVolume(ctx context.Context, idOrName string) (*Volume, error) {
	vol, err := s.volumeRef(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if vol.AttachedTo != "" {
		return nil, fmt.Errorf("volume %q is attached to a server, detach it first: %w", vol.Name, ErrInUse)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM volumes WHERE id = ?", vol.ID); err != nil {
		return nil, fmt.Errorf("sqlitecloud: delete volume: %w", err)
	}

	s.logger.Info("volume deleted", "id", vol.ID, "name", vol.Name)
	return &vol, nil
}

// ExtendVolume grows a volume. Shrinking is not supported.
func (s *Store) ExtendVolume(ctx context.Context, idOrName string, newSizeGB int) (*Volume, error) {
	vol, err := s.volumeRef(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if newSizeGB <= vol.SizeGB {
		return nil, fmt.Errorf("new size %d GB must exceed the current %d GB of volume %q",
			newSizeGB, vol.SizeGB, vol.Name)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE volumes SET size_gb = ? WHERE id = ?", newSizeGB, vol.ID); err != nil {
		return nil, fmt.Errorf("sqlitecloud: extend volume: %w", err)
	}

	s.logger.Info("volume extended", "id", vol.ID, "name", vol.Name,
		"from_gb", vol.SizeGB, "to_gb", newSizeGB)
	vol.SizeGB = newSizeGB
	return &vol, nil
}

// AttachVolume connects a volume to a server. A volume attaches to at
// most one server at a time.
func (s *Store) AttachVolume(ctx context.Context, volumeRef, serverRef string) (*Volume, error) {
	vol, err := s.volumeRef(ctx, volumeRef)
	if err != nil {
		return nil, err
	}
	serverID, serverName, err := s.serverRef(ctx, serverRef)
	if err != nil {
		return nil, err
	}
	if vol.AttachedTo != "" {
		if vol.AttachedTo == serverID {
			return nil, fmt.Errorf("volume %q is already attached to server %q: %w",
				vol.Name, serverName, ErrInUse)
		}
		return nil, fmt.Errorf("volume %q is already attached to another server: %w", vol.Name, ErrInUse)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE volumes SET server_id = ?, status = 'in-use' WHERE id = ?", serverID, vol.ID); err != nil {
		return nil, fmt.Errorf("sqlitecloud: attach volume: %w", err)
	}

	s.logger.Info("volume attached", "volume", vol.Name, "server", serverName)
	vol.AttachedTo = serverID
	vol.Status = "in-use"
	return &vol, nil
}

// DetachVolume disconnects a volume from the named server.
func (s *Store) DetachVolume(ctx context.Context, volumeRef, serverRef string) (*Volume, error) {
	vol, err := s.volumeRef(ctx, volumeRef)
	if err != nil {
		return nil, err
	}
	serverID, serverName, err := s.serverRef(ctx, serverRef)
	if err != nil {
		return nil, err
	}
	if vol.AttachedTo != serverID {
		return nil, fmt.Errorf("volume %q is not attached to server %q: %w",
			vol.Name, serverName, ErrConflict)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE volumes SET server_id = NULL, status = 'available' WHERE id = ?", vol.ID); err != nil {
		return nil, fmt.Errorf("sqlitecloud: detach volume: %w", err)
	}

	s.logger.Info("volume detached", "volume", vol.Name, "server", serverName)
	vol.AttachedTo = ""
	vol.Status = "available"
	return &vol, nil
}
