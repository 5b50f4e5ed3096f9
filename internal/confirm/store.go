// Package confirm gates critical operations behind explicit consent. The
// Gate prompts synchronously when a Prompter is available and otherwise
// parks the resolved call in a token Store for a later resume request.
package confirm

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akshit7093/VM-manager-AgenticAi/internal/resolve"
)

// DefaultTTL is how long a parked call stays redeemable.
const DefaultTTL = 15 * time.Minute

// maxPending caps unredeemed tokens held at once.
const maxPending = 256

// Pending is a critical call waiting for its confirmation.
type Pending struct {
	Token     string
	Call      resolve.ResolvedCall
	Details   string
	CreatedAt time.Time
}

// Store holds parked calls keyed by single-use token. Take removes the
// entry under the same lock that finds it, so concurrent redeems of one
// token succeed at most once.
type Store struct {
	mu      sync.Mutex
	pending map[string]Pending

	ttl    time.Duration
	logger *slog.Logger

	// now is injectable for testing. Defaults to time.Now.
	now func() time.Time
}

// NewStore creates a token store. A non-positive ttl means DefaultTTL.
func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		pending: make(map[string]Pending),
		ttl:     ttl,
		logger:  logger.With("component", "confirm.store"),
		now:     time.Now,
	}
}

// Put parks a call and returns its fresh token. A store at capacity
// returns ErrStoreFull; expired entries are evicted first so a full
// store of stale tokens does not wedge new confirmations.
func (s *Store) Put(call resolve.ResolvedCall, details string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) >= maxPending {
		now := s.now()
		for token, p := range s.pending {
			if now.Sub(p.CreatedAt) > s.ttl {
				delete(s.pending, token)
			}
		}
		if len(s.pending) >= maxPending {
			return "", ErrStoreFull
		}
	}

	token := uuid.NewString()
	s.pending[token] = Pending{
		Token:     token,
		Call:      call,
		Details:   details,
		CreatedAt: s.now(),
	}
	return token, nil
}

// Take redeems a token exactly once. Unknown, already-redeemed, and
// expired tokens all return ErrUnknownToken; an expired entry is evicted
// on the way out.
func (s *Store) Take(token string) (Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[token]
	if !ok {
		return Pending{}, ErrUnknownToken
	}
	delete(s.pending, token)

	if s.now().Sub(p.CreatedAt) > s.ttl {
		s.logger.Info("confirmation token expired on redeem", "action", p.Call.FunctionName)
		return Pending{}, ErrUnknownToken
	}
	return p, nil
}

// Sweep evicts every expired entry and returns how many were removed.
// The cron scheduler calls this every minute.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for token, p := range s.pending {
		if now.Sub(p.CreatedAt) > s.ttl {
			delete(s.pending, token)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("swept expired confirmation tokens", "removed", removed, "remaining", len(s.pending))
	}
	return removed
}

// Len reports how many calls are currently parked.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
