package sqlitecloud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/netip"
)

// CreateNetworkWithSubnet provisions a network and its first subnet in
// one step. The CIDR must be a valid prefix such as 10.1.0.0/24.
func (s *Store) CreateNetworkWithSubnet(ctx context.Context, networkName, subnetName, cidr string) (*Network, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM networks WHERE name = ?", networkName).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: check network name: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("network %q already exists: %w", networkName, ErrConflict)
	}

	networkID := s.newID()
	subnetID := s.newID()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: begin create network: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO networks (id, name, status) VALUES (?, ?, 'ACTIVE')", networkID, networkName)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: insert network: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO subnets (id, name, cidr, network_id) VALUES (?, ?, ?, ?)",
		subnetID, subnetName, prefix.String(), networkID)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: insert subnet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlitecloud: commit create network: %w", err)
	}

	s.logger.Info("network created", "id", networkID, "name", networkName,
		"subnet", subnetName, "cidr", prefix.String())
	return &Network{
		ID:     networkID,
		Name:   networkName,
		Status: "ACTIVE",
		Subnets: []Subnet{{
			ID:        subnetID,
			Name:      subnetName,
			CIDR:      prefix.String(),
			NetworkID: networkID,
		}},
	}, nil
}

// DeleteNetwork removes a network and its subnets. Networks still used
// by servers or floating IPs cannot be removed.
func (s *Store) DeleteNetwork(ctx context.Context, idOrName string) (*Network, error) {
	id, name, err := s.networkRef(ctx, idOrName)
	if err != nil {
		return nil, err
	}

	var servers int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM servers WHERE network_id = ?", id).Scan(&servers)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: count network servers: %w", err)
	}
	if servers > 0 {
		return nil, fmt.Errorf("network %q has %d server(s) attached: %w", name, servers, ErrInUse)
	}

	var fips int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM floating_ips WHERE network_id = ?", id).Scan(&fips)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: count network floating ips: %w", err)
	}
	if fips > 0 {
		return nil, fmt.Errorf("network %q has %d floating IP(s) allocated: %w", name, fips, ErrInUse)
	}

	subnets, err := s.subnetsOf(ctx, id)
	if err != nil {
		return nil, err
	}

	// Subnets go with the network via the FK cascade.
	if _, err := s.db.ExecContext(ctx, "DELETE FROM networks WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("sqlitecloud: delete network: %w", err)
	}

	s.logger.Info("network deleted", "id", id, "name", name, "subnets", len(subnets))
	return &Network{ID: id, Name: name, Status: "DELETED", Subnets: subnets}, nil
}

// DeleteSubnet removes one subnet, leaving its network in place.
func (s *Store) DeleteSubnet(ctx context.Context, idOrName string) (*Subnet, error) {
	var sub Subnet
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, cidr, network_id FROM subnets WHERE id = ? OR name = ?",
		idOrName, idOrName).Scan(&sub.ID, &sub.Name, &sub.CIDR, &sub.NetworkID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("subnet", idOrName)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: resolve subnet: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM subnets WHERE id = ?", sub.ID); err != nil {
		return nil, fmt.Errorf("sqlitecloud: delete subnet: %w", err)
	}

	s.logger.Info("subnet deleted", "id", sub.ID, "name", sub.Name)
	return &sub, nil
}

// CreateFloatingIP allocates an address from the 203.0.113.0/24 pool on
// the given network.
func (s *Store) CreateFloatingIP(ctx context.Context, networkName string) (*FloatingIP, error) {
	networkID, netName, err := s.networkRef(ctx, networkName)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT address FROM floating_ips")
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: list addresses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	taken := make(map[string]bool)
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("sqlitecloud: scan address: %w", err)
		}
		taken[addr] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var address string
	for octet := 10; octet <= 254; octet++ {
		candidate := fmt.Sprintf("203.0.113.%d", octet)
		if !taken[candidate] {
			address = candidate
			break
		}
	}
	if address == "" {
		return nil, errors.New("floating IP pool exhausted")
	}

	id := s.newID()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO floating_ips (id, address, status, network_id) VALUES (?, ?, 'DOWN', ?)",
		id, address, networkID)
	if err != nil {
		return nil, fmt.Errorf("sqlitecloud: insert floating ip: %w", err)
	}

	s.logger.Info("floating ip created", "id", id, "address", address, "network", netName)
	return &FloatingIP{ID: id, Address: address, Status: "DOWN", Network: netName}, nil
}

// DeleteFloatingIP releases a floating IP, assigned or not.
func (s *Store) DeleteFloatingIP(ctx context.Context, ipOrID string) (*FloatingIP, error) {
	fip, err := s.floatingIPRef(ctx, ipOrID)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM floating_ips WHERE id = ?", fip.ID); err != nil {
		return nil, fmt.Errorf("sqlitecloud: delete floating ip: %w", err)
	}

	s.logger.Info("floating ip deleted", "id", fip.ID, "address", fip.Address)
	return &fip, nil
}

// AddFloatingIP assigns a floating IP to a server.
func (s *Store) AddFloatingIP(ctx context.Context, serverRef, ipOrID string) (*FloatingIP, error) {
	serverID, serverName, err := s.serverRef(ctx, serverRef)
	if err != nil {
		return nil, err
	}
	fip, err := s.floatingIPRef(ctx, ipOrID)
	if err != nil {
		return nil, err
	}
	if fip.AssignedTo != "" {
		return nil, fmt.Errorf("floating IP %s is already assigned: %w", fip.Address, ErrInUse)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE floating_ips SET server_id = ?, status = 'ACTIVE' WHERE id = ?",
		serverID, fip.ID); err != nil {
		return nil, fmt.Errorf("sqlitecloud: assign floating ip: %w", err)
	}

	s.logger.Info("floating ip assigned", "address", fip.Address, "server", serverName)
	fip.AssignedTo = serverID
	fip.Status = "ACTIVE"
	return &fip, nil
}

// RemoveFloatingIP unassigns a floating IP from the named server. The
// address stays allocated.
func (s *Store) RemoveFloatingIP(ctx context.Context, serverRef, ipOrID string) (*FloatingIP, error) {
	serverID, serverName, err := s.serverRef(ctx, serverRef)
	if err != nil {
		return nil, err
	}
	fip, err := s.floatingIPRef(ctx, ipOrID)
	if err != nil {
		return nil, err
	}
	if fip.AssignedTo != serverID {
		return nil, fmt.Errorf("floating IP %s is not assigned to server %q: %w",
			fip.Address, serverName, ErrConflict)
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE floating_ips SET server_id = NULL, status = 'DOWN' WHERE id = ?", fip.ID); err != nil {
		return nil, fmt.Errorf("sqlitecloud: unassign floating ip: %w", err)
	}

	s.logger.Info("floating ip unassigned", "address", fip.Address, "server", serverName)
	fip.AssignedTo = ""
	fip.Status = "DOWN"
	return &fip, nil
}
