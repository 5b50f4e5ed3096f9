package sqlitecloud

import (
	"context"
	"errors"
	"testing"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/capability"
)

func newTestRegistry(t *testing.T, failAuth bool) (*capability.Registry, *Store) {
	t.Helper()

	reg, err := capability.NewRegistry(capability.Catalog())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	store := newTestStore(t)
	if err := bindOperations(reg, store, failAuth); err != nil {
		t.Fatalf("bind operations: %v", err)
	}
	return reg, store
}

func callOp(t *testing.T, reg *capability.Registry, name string, args map[string]any) (any, error) {
	t.Helper()

	h, err := reg.Handler(name)
	if err != nil {
		t.Fatalf("handler %s: %v", name, err)
	}
	return h(context.Background(), args)
}

func TestBindOperationsCoversCatalog(t *testing.T) {
	reg, _ := newTestRegistry(t, false)

	if got, want := len(reg.Bound()), reg.Len(); got != want {
		t.Errorf("bound %d operations, catalog declares %d", got, want)
	}
}

func TestHandlerListServers(t *testing.T) {
	reg, store := newTestRegistry(t, false)
	mustCreateServer(t, store, "web-01")

	out, err := callOp(t, reg, "list_servers", nil)
	if err != nil {
		t.Fatalf("list_servers: %v", err)
	}
	servers, ok := out.([]Server)
	if !ok {
		t.Fatalf("result type %T, want []Server", out)
	}
	if len(servers) != 1 || servers[0].Name != "web-01" {
		t.Errorf("unexpected servers: %+v", servers)
	}
}

func TestHandlerCreateServer(t *testing.T) {
	reg, store := newTestRegistry(t, false)

	// volume_size arrives as float64 when the arguments came through JSON.
	out, err := callOp(t, reg, "create_server", map[string]any{
		"name":         "api-01",
		"image_name":   "Debian-12",
		"flavor_name":  "m1.tiny",
		"network_name": "default",
		"volume_size":  float64(20),
	})
	if err != nil {
		t.Fatalf("create_server: %v", err)
	}
	srv, ok := out.(*Server)
	if !ok {
		t.Fatalf("result type %T, want *Server", out)
	}
	if srv.Name != "api-01" || srv.Image != "Debian-12" {
		t.Errorf("unexpected server: %+v", srv)
	}

	vol, err := store.volumeRef(context.Background(), "api-01-boot-volume")
	if err != nil {
		t.Fatalf("boot volume: %v", err)
	}
	if vol.SizeGB != 20 {
		t.Errorf("boot volume size = %d, want 20", vol.SizeGB)
	}
}

func TestHandlerGetUsage(t *testing.T) {
	reg, store := newTestRegistry(t, false)
	mustCreateServer(t, store, "web-01")

	out, err := callOp(t, reg, "get_usage", map[string]any{"detailed": false})
	if err != nil {
		t.Fatalf("get_usage: %v", err)
	}
	if _, ok := out.(*UsageReport); !ok {
		t.Errorf("project report type %T, want *UsageReport", out)
	}

	out, err = callOp(t, reg, "get_usage", map[string]any{"identifier": "web-01"})
	if err != nil {
		t.Fatalf("get_usage with identifier: %v", err)
	}
	usage, ok := out.(*ServerUsage)
	if !ok {
		t.Fatalf("server report type %T, want *ServerUsage", out)
	}
	if usage.Name != "web-01" {
		t.Errorf("narrowed to %q, want web-01", usage.Name)
	}
}

func TestHandlerVolumeRoundTrip(t *testing.T) {
	reg, _ := newTestRegistry(t, false)

	if _, err := callOp(t, reg, "create_volume", map[string]any{"name": "data-01", "size_gb": 10}); err != nil {
		t.Fatalf("create_volume: %v", err)
	}
	out, err := callOp(t, reg, "extend_volume", map[string]any{"id_or_name": "data-01", "new_size_gb": 40})
	if err != nil {
		t.Fatalf("extend_volume: %v", err)
	}
	vol, ok := out.(*Volume)
	if !ok {
		t.Fatalf("result type %T, want *Volume", out)
	}
	if vol.SizeGB != 40 {
		t.Errorf("size = %d, want 40", vol.SizeGB)
	}
	if _, err := callOp(t, reg, "delete_volume", map[string]any{"id_or_name": "data-01"}); err != nil {
		t.Fatalf("delete_volume: %v", err)
	}
}

func TestFailAuthRejectsEverything(t *testing.T) {
	reg, _ := newTestRegistry(t, true)

	for _, name := range reg.Bound() {
		_, err := callOp(t, reg, name, map[string]any{})
		if !errors.Is(err, errAuthSimulated) {
			t.Errorf("%s: got %v, want simulated auth failure", name, err)
		}
	}
}
