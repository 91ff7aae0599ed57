package session

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/opsdesk/sessionkit/credentials"
)

// RenewalProbe reports whether a renewal exchange is currently in flight.
// *refresh.Coordinator satisfies it.
type RenewalProbe interface {
	InFlight() bool
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// Store holds the credential pair and identity snapshot. Required.
	Store credentials.Store

	// Probe reports renewal in-flight status. If nil, the Renewing
	// state is never reported.
	Probe RenewalProbe
}

// Manager is the session façade consumed by the application shell. It is
// an explicitly constructed object passed by reference to the HTTP
// pipeline and the UI, not ambient module state.
type Manager struct {
	store credentials.Store
	probe RenewalProbe

	mu      sync.Mutex
	subs    map[int]func(Change)
	nextID  int
	expired bool
}

// NewManager creates a Manager.
func NewManager(config ManagerConfig) (*Manager, error) {
	if config.Store == nil {
		return nil, errors.New("session: store is required")
	}
	return &Manager{
		store: config.Store,
		probe: config.Probe,
		subs:  make(map[int]func(Change)),
	}, nil
}

// SetProbe attaches the renewal probe after construction. The manager
// and the refresh coordinator reference each other, so one side has to
// be wired late; call this once during assembly, before any reads.
func (m *Manager) SetProbe(probe RenewalProbe) {
	m.probe = probe
}

// Current derives the session state. Reads never notify subscribers.
func (m *Manager) Current(ctx context.Context) (State, error) {
	if m.probe != nil && m.probe.InFlight() {
		return Renewing, nil
	}

	snap, err := m.store.Read(ctx)
	if err != nil {
		return Anonymous, err
	}
	if snap.Access != "" {
		return Authenticated, nil
	}

	m.mu.Lock()
	expired := m.expired
	m.mu.Unlock()
	if expired {
		return Expired, nil
	}
	return Anonymous, nil
}

// Snapshot returns the stored credential pair and identity.
func (m *Manager) Snapshot(ctx context.Context) (credentials.Snapshot, error) {
	return m.store.Read(ctx)
}

// SetAuthenticated is the login-equivalent state setter: it writes the
// credential pair and identity through to the store and notifies
// subscribers synchronously.
func (m *Manager) SetAuthenticated(ctx context.Context, pair credentials.Pair, identity credentials.Identity) error {
	update := credentials.UpdatePair(pair)
	update.Identity = &identity
	if err := m.store.Save(ctx, update); err != nil {
		return err
	}

	m.mu.Lock()
	m.expired = false
	m.mu.Unlock()

	m.notify(Change{State: Authenticated, Role: identity.Role, Reason: ReasonLogin})
	return nil
}

// Logout clears the store and notifies subscribers synchronously, so any
// currently rendered authenticated view can react without a stale read.
// Calling it twice leaves the same observable state as calling it once.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.expired = false
	m.mu.Unlock()

	m.notify(Change{State: Anonymous, Reason: ReasonLogout})
	return nil
}

// Invalidate marks the session terminally lost after a failed or
// impossible renewal. The refresh coordinator has already cleared the
// store; this records the Expired state and broadcasts the loss.
func (m *Manager) Invalidate(_ context.Context, reason Reason) {
	m.mu.Lock()
	m.expired = true
	m.mu.Unlock()

	m.notify(Change{State: Anonymous, Reason: reason})
}

// Renewed broadcasts that a renewal restored the Authenticated state.
func (m *Manager) Renewed(ctx context.Context) {
	snap, err := m.store.Read(ctx)
	if err != nil {
		return
	}
	m.notify(Change{State: Authenticated, Role: snap.Identity.Role, Reason: ReasonRenewed})
}

// Subscribe registers a synchronous observer and returns its unsubscribe
// function. Subscribers are invoked in registration order on every
// state-changing call; never on reads.
func (m *Manager) Subscribe(fn func(Change)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// notify invokes subscribers outside the lock so a subscriber may call
// back into the manager.
func (m *Manager) notify(change Change) {
	m.mu.Lock()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}
