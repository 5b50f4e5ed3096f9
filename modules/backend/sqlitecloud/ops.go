package sqlitecloud

import (
	"context"
	"errors"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
)

// errAuthSimulated stands in for a cloud that rejects our credentials.
// The fail_auth config flag turns every operation into this error.
var errAuthSimulated = errors.New("401 Unauthorized: authentication required (simulated)")

// bindOperations attaches a handler for every catalog operation. With
// failAuth set, all of them reject with a simulated credential failure.
func bindOperations(reg *capability.Registry, store *Store, failAuth bool) error {
	handlers := map[string]capability.Handler{
		"list_servers": func(ctx context.Context, _ map[string]any) (any, error) {
			return store.ListServers(ctx)
		},
		"list_images": func(ctx context.Context, _ map[string]any) (any, error) {
			return store.ListImages(ctx)
		},
		"list_flavors": func(ctx context.Context, _ map[string]any) (any, error) {
			return store.ListFlavors(ctx)
		},
		"list_networks": func(ctx context.Context, _ map[string]any) (any, error) {
			return store.ListNetworks(ctx)
		},
		"list_volumes": func(ctx context.Context, _ map[string]any) (any, error) {
			return store.ListVolumes(ctx)
		},
		"list_floating_ips": func(ctx context.Context, _ map[string]any) (any, error) {
			return store.ListFloatingIPs(ctx)
		},
		"get_usage": func(ctx context.Context, args map[string]any) (any, error) {
			if identifier := stringArg(args, "identifier"); identifier != "" {
				return store.ServerUsage(ctx, identifier)
			}
			return store.ProjectUsage(ctx, boolArg(args, "detailed"))
		},
		"create_server": func(ctx context.Context, args map[string]any) (any, error) {
			return store.CreateServer(ctx, CreateServerParams{
				Name:         stringArg(args, "name"),
				ImageName:    stringArg(args, "image_name"),
				FlavorName:   stringArg(args, "flavor_name"),
				NetworkName:  stringArg(args, "network_name"),
				VolumeSizeGB: intArg(args, "volume_size"),
			})
		},
		"delete_server": func(ctx context.Context, args map[string]any) (any, error) {
			return store.DeleteServer(ctx, stringArg(args, "id_or_name"))
		},
		"resize_server": func(ctx context.Context, args map[string]any) (any, error) {
			return store.ResizeServer(ctx, stringArg(args, "id_or_name"), stringArg(args, "flavor_name"))
		},
		"create_volume": func(ctx context.Context, args map[string]any) (any, error) {
			return store.CreateVolume(ctx, stringArg(args, "name"), intArg(args, "size_gb"))
		},
		"delete_volume": func(ctx context.Context, args map[string]any) (any, error) {
			return store.DeleteVolume(ctx, stringArg(args, "id_or_name"))
		},
		"extend_volume": func(ctx context.Context, args map[string]any) (any, error) {
			return store.ExtendVolume(ctx, stringArg(args, "id_or_name"), intArg(args, "new_size_gb"))
		},
		"attach_volume_to_server": func(ctx context.Context, args map[string]any) (any, error) {
			return store.AttachVolume(ctx, stringArg(args, "volume"), stringArg(args, "server"))
		},
		"detach_volume_from_server": func(ctx context.Context, args map[string]any) (any, error) {
			return store.DetachVolume(ctx, stringArg(args, "volume"), stringArg(args, "server"))
		},
		"create_network_with_subnet": func(ctx context.Context, args map[string]any) (any, error) {
			return store.CreateNetworkWithSubnet(ctx,
				stringArg(args, "network_name"), stringArg(args, "subnet_name"), stringArg(args, "subnet_cidr"))
		},
		"delete_network": func(ctx context.Context, args map[string]any) (any, error) {
			return store.DeleteNetwork(ctx, stringArg(args, "id_or_name"))
		},
		"delete_subnet": func(ctx context.Context, args map[string]any) (any, error) {
			return store.DeleteSubnet(ctx, stringArg(args, "id_or_name"))
		},
		"create_floating_ip": func(ctx context.Context, args map[string]any) (any, error) {
			return store.CreateFloatingIP(ctx, stringArg(args, "network_name"))
		},
		"delete_floating_ip": func(ctx context.Context, args map[string]any) (any, error) {
			return store.DeleteFloatingIP(ctx, stringArg(args, "ip_or_id"))
		},
		"add_floating_ip_to_server": func(ctx context.Context, args map[string]any) (any, error) {
			return store.AddFloatingIP(ctx, stringArg(args, "server"), stringArg(args, "floating_ip"))
		},
		"remove_floating_ip_from_server": func(ctx context.Context, args map[string]any) (any, error) {
			return store.RemoveFloatingIP(ctx, stringArg(args, "server"), stringArg(args, "floating_ip"))
		},
	}

	for name, h := range handlers {
		if failAuth {
			h = rejectAuth
		}
		if err := reg.Bind(name, h); err != nil {
			return err
		}
	}
	return nil
}

func rejectAuth(context.Context, map[string]any) (any, error) {
	return nil, errAuthSimulated
}

// Arguments arrive validated and coerced by the pipeline, so the
// extractors only need to pick defaults for absent optional values.

func stringArg(args map[string]any, name string) string {
	if s, ok := args[name].(string); ok {
		return s
	}
	return ""
}

func intArg(args map[string]any, name string) int {
	switch v := args[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func boolArg(args map[string]any, name string) bool {
	if b, ok := args[name].(bool); ok {
		return b
	}
	return false
}
