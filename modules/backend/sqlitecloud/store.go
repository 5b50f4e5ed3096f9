package sqlitecloud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store is the inventory behind the simulated cloud. All mutations go
// through the single-connection pool, so SQLite serialises them.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	// Injectable for deterministic tests.
	now   func() time.Time
	newID func() string
}

// NewStore wraps an opened inventory database.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Server is one virtual server row with its references resolved to names.
type Server struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Created string `json:"created"`
	Flavor  string `json:"flavor"`
	Image   string `json:"image"`
	Network string `json:"network"`
	IP      string `json:"ip_address"`
}

// Image is a bootable image.
type Image struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	MinDisk int    `json:"min_disk_gb"`
	Status  string `json:"status"`
}

// Flavor is a hardware preset.
type Flavor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	VCPUs  int    `json:"vcpus"`
	RAMMB  int    `json:"ram_mb"`
	DiskGB int    `json:"disk_gb"`
}

// Network is a network with its subnets.
type Network struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Status  string   `json:"status"`
	Subnets []Subnet `json:"subnets"`
}

// Subnet is one subnet of a network.
type Subnet struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CIDR      string `json:"cidr"`
	NetworkID string `json:"network_id"`
}

// Volume is a block storage volume. AttachedTo is empty while available.
type Volume struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	SizeGB     int    `json:"size_gb"`
	AttachedTo string `json:"attached_to,omitempty"`
}

// FloatingIP is an allocated floating IP. AssignedTo is empty while DOWN.
type FloatingIP struct {
	ID         string `json:"id"`
	Address    string `json:"address"`
	Status     string `json:"status"`
	Network    string `json:"network"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

// --- List operations ---

// ListServers returns all servers ordered by creation time.
func (s *Store) ListServers(ctx context.Context) ([]Server, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.status, s.created_at, f.name, i.name, n.name, s.ip_address
		FROM servers s
		JOIN flavors f ON f.id = s.flavor_id
		JOIN images i ON i.id = s.image_id
		JOIN networks n ON n.id = s.network_id
		ORDER BY s.created_at, s.id`)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: list servers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Server
	for rows.Next() {
		var srv Server
		if err := rows.Scan(&srv.ID, &srv.Name, &srv.Status, &srv.Created, &srv.Flavor, &srv.Image, &srv.Network, &srv.IP); err != nil {
			return nil, fmt.Errorf("sqlitecloud: scan server: %w", err)
		}
		out = append(out, srv)
	}
	return out, rows.Err()
}

// ListImages returns all images ordered by name.
func (s *Store) ListImages(ctx context.Context) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, min_disk, status FROM images ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: list images: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.Name, &img.MinDisk, &img.Status); err != nil {
			return nil, fmt.Errorf("sqlitecloud: scan image: %w", err)
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// ListFlavors returns all flavors ordered by vCPU count then name.
func (s *Store) ListFlavors(ctx context.Context) ([]Flavor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, vcpus, ram_mb, disk_gb FROM flavors ORDER BY vcpus, name`)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: list flavors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Flavor
	for rows.Next() {
		var flv Flavor
		if err := rows.Scan(&flv.ID, &flv.Name, &flv.VCPUs, &flv.RAMMB, &flv.DiskGB); err != nil {
			return nil, fmt.Errorf("sqlitecloud: scan flavor: %w", err)
		}
		out = append(out, flv)
	}
	return out, rows.Err()
}

// ListNetworks returns all networks with their subnets, ordered by name.
func (s *Store) ListNetworks(ctx context.Context) ([]Network, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, status FROM networks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: list networks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Network
	for rows.Next() {
		var net Network
		if err := rows.Scan(&net.ID, &net.Name, &net.Status); err != nil {
			return nil, fmt.Errorf("sqlitecloud: scan network: %w", err)
		}
		out = append(out, net)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		subnets, err := s.subnetsOf(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Subnets = subnets
	}
	return out, nil
}

func (s *Store) subnetsOf(ctx context.Context, networkID string) ([]Subnet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, cidr, network_id FROM subnets WHERE network_id = ? ORDER BY name`, networkID)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: list subnets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Subnet
	for rows.Next() {
		var sub Subnet
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.CIDR, &sub.NetworkID); err != nil {
			return nil, fmt.Errorf("sqlitecloud: scan subnet: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// ListVolumes returns all volumes ordered by name.
func (s *Store) ListVolumes(ctx context.Context) ([]Volume, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, status, size_gb, COALESCE(server_id, '') FROM volumes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: list volumes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Volume
	for rows.Next() {
		var vol Volume
		if err := rows.Scan(&vol.ID, &vol.Name, &vol.Status, &vol.SizeGB, &vol.AttachedTo); err != nil {
			return nil, fmt.Errorf("sqlitecloud: scan volume: %w", err)
		}
		out = append(out, vol)
	}
	return out, rows.Err()
}

// ListFloatingIPs returns all floating IPs ordered by address.
func (s *Store) ListFloatingIPs(ctx context.Context) ([]FloatingIP, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fip.id, fip.address, fip.status, n.name, COALESCE(fip.server_id, '')
		FROM floating_ips fip
		JOIN networks n ON n.id = fip.network_id
		ORDER BY fip.address`)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: list floating ips: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []FloatingIP
	for rows.Next() {
		var fip FloatingIP
		if err := rows.Scan(&fip.ID, &fip.Address, &fip.Status, &fip.Network, &fip.AssignedTo); err != nil {
			return nil, fmt.Errorf("sqlitecloud: scan floating ip: %w", err)
		}
		out = append(out, fip)
	}
	return out, rows.Err()
}

// --- ID-or-name resolution ---

// serverRef resolves a server by ID or name.
func (s *Store) serverRef(ctx context.Context, idOrName string) (id, name string, err error) {
	err = s.db.QueryRowContext(ctx,
		"SELECT id, name FROM servers WHERE id = ? OR name = ?", idOrName, idOrName).Scan(&id, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", notFound("server", idOrName)
	}
	if err != nil {
		return "", "", fmt.Errorf("sqlitecloud: resolve server: %w", err)
	}
	return id, name, nil
}

// volumeRef resolves a volume by ID or name, returning its current state.
func (s *Store) volumeRef(ctx context.Context, idOrName string) (Volume, error) {
	var vol Volume
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, status, size_gb, COALESCE(server_id, '') FROM volumes WHERE id = ? OR name = ?",
		idOrName, idOrName).Scan(&vol.ID, &vol.Name, &vol.Status, &vol.SizeGB, &vol.AttachedTo)
	if errors.Is(err, sql.ErrNoRows) {
		return Volume{}, notFound("volume", idOrName)
	}
	if err != nil {
		return Volume{}, fmt.Errorf("sqlitecloud: resolve volume: %w", err)
	}
	return vol, nil
}

// networkRef resolves a network by ID or name.
func (s *Store) networkRef(ctx context.Context, idOrName string) (id, name string, err error) {
	err = s.db.QueryRowContext(ctx,
		"SELECT id, name FROM networks WHERE id = ? OR name = ?", idOrName, idOrName).Scan(&id, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", notFound("network", idOrName)
	}
	if err != nil {
		return "", "", fmt.Errorf("sqlitecloud: resolve network: %w", err)
	}
	return id, name, nil
}

// floatingIPRef resolves a floating IP by address or ID.
func (s *Store) floatingIPRef(ctx context.Context, ipOrID string) (FloatingIP, error) {
	var fip FloatingIP
	err := s.db.QueryRowContext(ctx, `
		SELECT fip.id, fip.address, fip.status, n.name, COALESCE(fip.server_id, '')
		FROM floating_ips fip
		JOIN networks n ON n.id = fip.network_id
		WHERE fip.id = ? OR fip.address = ?`,
		ipOrID, ipOrID).Scan(&fip.ID, &fip.Address, &fip.Status, &fip.Network, &fip.AssignedTo)
	if errors.Is(err, sql.ErrNoRows) {
		return FloatingIP{}, notFound("floating IP", ipOrID)
	}
	if err != nil {
		return FloatingIP{}, fmt.Errorf("sqlitecloud: resolve floating ip: %w", err)
	}
	return fip, nil
}
