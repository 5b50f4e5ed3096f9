package confirm

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPendingCollector(t *testing.T) {
	t.Parallel()

	s := NewStore(0, discardLogger())
	col := NewPendingCollector(s)

	if got := testutil.ToFloat64(col); got != 0 {
		t.Errorf("pending = %v, want 0", got)
	}

	token := mustPut(t, s, "delete_server(id_or_name=web-01)")
	mustPut(t, s, "delete_server(id_or_name=web-02)")

	if got := testutil.ToFloat64(col); got != 2 {
		t.Errorf("pending = %v, want 2", got)
	}

	if _, err := s.Take(token); err != nil {
		t.Fatalf("Take: %v", err)
	}
	if got := testutil.ToFloat64(col); got != 1 {
		t.Errorf("pending after take = %v, want 1", got)
	}
}
