package capability

// Catalog returns the declared backend operation schema. This is the single
// source of truth the pipeline resolves against; backend modules bind a
// handler per name. Critical marks everything that creates, deletes,
// resizes, extends, attaches, or detaches a resource.
func Catalog() []Operation {
	return []Operation{
		{
			Name: "list_servers",
			Doc:  "List all virtual servers with their status, flavor, and addresses.",
		},
		{
			Name: "list_images",
			Doc:  "List all bootable images available for server creation.",
		},
		{
			Name: "list_flavors",
			Doc:  "List all hardware flavors (vCPU, RAM, disk presets).",
		},
		{
			Name: "list_networks",
			Doc:  "List all networks and their subnets.",
		},
		{
			Name: "list_volumes",
			Doc:  "List all block storage volumes with size and attachment state.",
		},
		{
			Name: "list_floating_ips",
			Doc:  "List all floating IPs and the servers they are assigned to.",
		},
		{
			Name: "get_usage",
			Doc:  "Report aggregate resource usage: servers, volumes, networks, floating IPs, vCPU and storage totals.",
			Params: []ParamSpec{
				{Name: "identifier", Type: TypeString, Doc: "Server ID or name to narrow the report to a single server."},
				{Name: "detailed", Type: TypeBoolean, Default: false, Doc: "Include per-resource rows in the report."},
			},
		},
		{
			Name:     "create_server",
			Doc:      "Create a new virtual server from an image and flavor, optionally with a boot volume.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "name", Type: TypeString, Required: true, Doc: "Name for the new server."},
				{Name: "image_name", Type: TypeString, Required: true, Doc: "Image to boot from, e.g. Ubuntu-20.04."},
				{Name: "flavor_name", Type: TypeString, Required: true, Doc: "Hardware flavor, e.g. m1.small."},
				{Name: "network_name", Type: TypeString, Default: "default", Doc: "Network to attach the server to."},
				{Name: "volume_size", Type: TypeInteger, Doc: "Size in GB of an optional boot volume."},
			},
		},
		{
			Name:     "delete_server",
			Doc:      "Delete a server by ID or name. Attached volumes are detached first.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "id_or_name", Type: TypeString, Required: true, Doc: "Server ID or name."},
			},
		},
		{
			Name:     "resize_server",
			Doc:      "Resize a server to a different hardware flavor.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "id_or_name", Type: TypeString, Required: true, Doc: "Server ID or name."},
				{Name: "flavor_name", Type: TypeString, Required: true, Doc: "Target flavor, e.g. m1.medium."},
			},
		},
		{
			Name:     "create_volume",
			Doc:      "Create a new block storage volume.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "name", Type: TypeString, Required: true, Doc: "Name for the new volume."},
				{Name: "size_gb", Type: TypeInteger, Required: true, Doc: "Volume size in GB."},
			},
		},
		{
			Name:     "delete_volume",
			Doc:      "Delete a volume by ID or name. Fails while the volume is attached.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "id_or_name", Type: TypeString, Required: true, Doc: "Volume ID or name."},
			},
		},
		{
			Name:     "extend_volume",
			Doc:      "Grow a volume to a new, larger size.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "id_or_name", Type: TypeString, Required: true, Doc: "Volume ID or name."},
				{Name: "new_size_gb", Type: TypeInteger, Required: true, Doc: "New size in GB, must exceed the current size."},
			},
		},
		{
			Name:     "attach_volume_to_server",
			Doc:      "Attach a volume to a server.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "volume", Type: TypeString, Required: true, Doc: "Volume ID or name."},
				{Name: "server", Type: TypeString, Required: true, Doc: "Server ID or name."},
			},
		},
		{
			Name:     "detach_volume_from_server",
			Doc:      "Detach a volume from the server it is attached to.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "volume", Type: TypeString, Required: true, Doc: "Volume ID or name."},
				{Name: "server", Type: TypeString, Required: true, Doc: "Server ID or name."},
			},
		},
		{
			Name:     "create_network_with_subnet",
			Doc:      "Create a network together with one subnet.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "network_name", Type: TypeString, Required: true, Doc: "Name for the new network."},
				{Name: "subnet_cidr", Type: TypeString, Required: true, Doc: "Subnet CIDR, e.g. 192.168.100.0/24."},
				{Name: "subnet_name", Type: TypeString, Required: true, Doc: "Name for the subnet."},
			},
		},
		{
			Name:     "delete_network",
			Doc:      "Delete a network and its subnets by ID or name. Fails while servers use it.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "id_or_name", Type: TypeString, Required: true, Doc: "Network ID or name."},
			},
		},
		{
			Name:     "delete_subnet",
			Doc:      "Delete a subnet by ID or name.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "id_or_name", Type: TypeString, Required: true, Doc: "Subnet ID or name."},
			},
		},
		{
			Name:     "create_floating_ip",
			Doc:      "Allocate a new floating IP from a network's pool.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "network_name", Type: TypeString, Default: "public", Doc: "Pool network to allocate from."},
			},
		},
		{
			Name:     "delete_floating_ip",
			Doc:      "Release a floating IP by address or ID.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "ip_or_id", Type: TypeString, Required: true, Doc: "Floating IP address or ID."},
			},
		},
		{
			Name:     "add_floating_ip_to_server",
			Doc:      "Assign a floating IP to a server.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "server", Type: TypeString, Required: true, Doc: "Server ID or name."},
				{Name: "floating_ip", Type: TypeString, Required: true, Doc: "Floating IP address or ID."},
			},
		},
		{
			Name:     "remove_floating_ip_from_server",
			Doc:      "Unassign a floating IP from a server.",
			Critical: true,
			Params: []ParamSpec{
				{Name: "server", Type: TypeString, Required: true, Doc: "Server ID or name."},
				{Name: "floating_ip", Type: TypeString, Required: true, Doc: "Floating IP address or ID."},
			},
		},
	}
}
