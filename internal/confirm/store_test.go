package confirm

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/resolve"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCall() resolve.ResolvedCall {
	return resolve.ResolvedCall{
		FunctionName: "delete_server",
		Parameters:   map[string]any{"id_or_name": "web-01"},
	}
}

func mustPut(t *testing.T, s *Store, details string) string {
	t.Helper()
	token, err := s.Put(testCall(), details)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	return token
}

func TestStore_PutTake(t *testing.T) {
	t.Parallel()

	s := NewStore(0, discardLogger())
	token := mustPut(t, s, "delete_server(id_or_name=web-01)")
	if token == "" {
		t.Fatal("Put returned empty token")
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}

	p, err := s.Take(token)
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}
	if p.Call.FunctionName != "delete_server" {
		t.Errorf("Call.FunctionName = %q, want delete_server", p.Call.FunctionName)
	}
	if p.Details != "delete_server(id_or_name=web-01)" {
		t.Errorf("Details = %q", p.Details)
	}
	if s.Len() != 0 {
		t.Errorf("Len() after Take = %d, want 0", s.Len())
	}
}

func TestStore_TakeUnknown(t *testing.T) {
	t.Parallel()

	s := NewStore(0, discardLogger())
	for range 3 {
		if _, err := s.Take("no-such-token"); !errors.Is(err, ErrUnknownToken) {
			t.Fatalf("Take(unknown) error = %v, want ErrUnknownToken", err)
		}
	}
}

func TestStore_TakeTwice(t *testing.T) {
	t.Parallel()

	s := NewStore(0, discardLogger())
	token := mustPut(t, s, "")

	if _, err := s.Take(token); err != nil {
		t.Fatalf("first Take() error = %v", err)
	}
	if _, err := s.Take(token); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("second Take() error = %v, want ErrUnknownToken", err)
	}
}

func TestStore_ConcurrentTakeRedeemsOnce(t *testing.T) {
	t.Parallel()

	s := NewStore(0, discardLogger())
	token := mustPut(t, s, "")

	const workers = 32
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := s.Take(token); err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := wins.Load(); got != 1 {
		t.Fatalf("successful Take count = %d, want exactly 1", got)
	}
}

func TestStore_ExpiredTokenOnRedeem(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute, discardLogger())
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	token := mustPut(t, s, "")
	current = current.Add(2 * time.Minute)

	if _, err := s.Take(token); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("Take(expired) error = %v, want ErrUnknownToken", err)
	}
	if s.Len() != 0 {
		t.Errorf("expired entry should be evicted on redeem, Len() = %d", s.Len())
	}
}

func TestStore_TakeWithinTTL(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute, discardLogger())
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	token := mustPut(t, s, "")
	current = current.Add(59 * time.Second)

	if _, err := s.Take(token); err != nil {
		t.Fatalf("Take() within TTL error = %v", err)
	}
}

func TestStore_Sweep(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute, discardLogger())
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	mustPut(t, s, "old-1")
	mustPut(t, s, "old-2")
	current = current.Add(90 * time.Second)
	fresh := mustPut(t, s, "fresh")

	if removed := s.Sweep(); removed != 2 {
		t.Fatalf("Sweep() = %d, want 2", removed)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() after sweep = %d, want 1", s.Len())
	}
	if _, err := s.Take(fresh); err != nil {
		t.Errorf("fresh token should survive the sweep: %v", err)
	}
	if removed := s.Sweep(); removed != 0 {
		t.Errorf("second Sweep() = %d, want 0", removed)
	}
}

func TestStore_PutFull(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute, discardLogger())
	current := time.Unix(1000, 0)
	s.now = func() time.Time { return current }

	for range maxPending {
		mustPut(t, s, "")
	}
	if _, err := s.Put(testCall(), ""); !errors.Is(err, ErrStoreFull) {
		t.Fatalf("Put() at capacity error = %v, want ErrStoreFull", err)
	}

	// Once the existing entries go stale, Put reclaims their slots.
	current = current.Add(2 * time.Minute)
	token := mustPut(t, s, "")
	if token == "" {
		t.Fatal("Put() after expiry returned empty token")
	}
	if s.Len() != 1 {
		t.Errorf("Len() after reclaim = %d, want 1", s.Len())
	}
}

func TestStore_TokensAreUnique(t *testing.T) {
	t.Parallel()

	s := NewStore(0, discardLogger())
	seen := make(map[string]bool)
	for range 100 {
		token := mustPut(t, s, "")
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}
