package credentials

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. It is the default backend and the
// one used throughout tests; contents do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	access   string
	refresh  string
	identity Identity
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save applies the non-nil fields of the update.
func (s *MemoryStore) Save(_ context.Context, update Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if update.Access != nil {
		s.access = *update.Access
	}
	if update.Refresh != nil {
		s.refresh = *update.Refresh
	}
	if update.Identity != nil {
		s.identity = cloneIdentity(*update.Identity)
	}
	return nil
}

// Read returns the current snapshot.
func (s *MemoryStore) Read(_ context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Pair:     Pair{Access: s.access, Refresh: s.refresh},
		Identity: cloneIdentity(s.identity),
	}, nil
}

// Clear removes all fields.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = ""
	s.refresh = ""
	s.identity = Identity{}
	return nil
}

// cloneIdentity copies the profile map so callers cannot mutate stored state.
func cloneIdentity(id Identity) Identity {
	if id.Profile == nil {
		return id
	}
	profile := make(map[string]any, len(id.Profile))
	for k, v := range id.Profile {
		profile[k] = v
	}
	id.Profile = profile
	return id
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
