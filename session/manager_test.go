package session

import (
	"context"
	"testing"

	"github.com/opsdesk/sessionkit/credentials"
)

type stubProbe struct{ inflight bool }

func (s *stubProbe) InFlight() bool { return s.inflight }

func newManager(t *testing.T) (*Manager, credentials.Store) {
	t.Helper()
	store := credentials.NewMemoryStore()
	m, err := NewManager(ManagerConfig{Store: store})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m, store
}

func mustState(t *testing.T, m *Manager, want State) {
	t.Helper()
	got, err := m.Current(context.Background())
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if got != want {
		t.Fatalf("Current() = %v, want %v", got, want)
	}
}

func TestManager_StartsAnonymous(t *testing.T) {
	m, _ := newManager(t)
	mustState(t, m, Anonymous)
}

func TestManager_LoginTransition(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	var changes []Change
	m.Subscribe(func(c Change) { changes = append(changes, c) })

	pair := credentials.Pair{Access: "a1", Refresh: "r1"}
	identity := credentials.Identity{UserID: "u-9", Role: credentials.RoleOwner}
	if err := m.SetAuthenticated(ctx, pair, identity); err != nil {
		t.Fatalf("SetAuthenticated() error = %v", err)
	}

	mustState(t, m, Authenticated)
	if len(changes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(changes))
	}
	if changes[0].State != Authenticated || changes[0].Role != credentials.RoleOwner || changes[0].Reason != ReasonLogin {
		t.Errorf("change = %+v, want authenticated owner login", changes[0])
	}

	snap, err := m.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Access != "a1" || snap.Identity.UserID != "u-9" {
		t.Errorf("snapshot = %+v, want stored pair and identity", snap)
	}
}

func TestManager_NotificationIsSynchronous(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	// The subscriber reads back through the manager: the new state must
	// already be visible when the notification fires.
	var observed State
	m.Subscribe(func(c Change) {
		observed, _ = m.Current(ctx)
	})

	m.SetAuthenticated(ctx, credentials.Pair{Access: "a1"}, credentials.Identity{Role: credentials.RoleCustomer})
	if observed != Authenticated {
		t.Errorf("state inside notification = %v, want Authenticated", observed)
	}
}

func TestManager_SubscribersInRegistrationOrder(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	var order []string
	m.Subscribe(func(Change) { order = append(order, "first") })
	m.Subscribe(func(Change) { order = append(order, "second") })
	m.Subscribe(func(Change) { order = append(order, "third") })

	m.Logout(ctx)

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("notified %d subscribers, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestManager_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	var count int
	unsubscribe := m.Subscribe(func(Change) { count++ })

	m.Logout(ctx)
	unsubscribe()
	m.Logout(ctx)

	if count != 1 {
		t.Errorf("notifications after unsubscribe = %d, want 1", count)
	}
}

func TestManager_LogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)
	m.SetAuthenticated(ctx, credentials.Pair{Access: "a1", Refresh: "r1"}, credentials.Identity{Role: credentials.RoleEmployee})

	var changes []Change
	m.Subscribe(func(c Change) { changes = append(changes, c) })

	if err := m.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("second Logout() error = %v", err)
	}

	mustState(t, m, Anonymous)
	for i, c := range changes {
		if c.State != Anonymous || c.Reason != ReasonLogout {
			t.Errorf("change[%d] = %+v, want anonymous logout", i, c)
		}
	}
}

func TestManager_RenewingWhileExchangeInFlight(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)
	probe := &stubProbe{}
	m.SetProbe(probe)
	store.Save(ctx, credentials.UpdatePair(credentials.Pair{Access: "a1", Refresh: "r1"}))

	mustState(t, m, Authenticated)
	probe.inflight = true
	mustState(t, m, Renewing)
	probe.inflight = false
	mustState(t, m, Authenticated)
}

func TestManager_InvalidateMarksExpired(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	var changes []Change
	m.Subscribe(func(c Change) { changes = append(changes, c) })

	// The coordinator clears the store before invalidating.
	store.Clear(ctx)
	m.Invalidate(ctx, ReasonRenewalFailed)

	mustState(t, m, Expired)
	if len(changes) != 1 || changes[0].Reason != ReasonRenewalFailed {
		t.Fatalf("changes = %+v, want a single renewal_failed broadcast", changes)
	}

	// A fresh login leaves Expired behind.
	m.SetAuthenticated(ctx, credentials.Pair{Access: "a2"}, credentials.Identity{Role: credentials.RoleCustomer})
	mustState(t, m, Authenticated)
}

func TestManager_RenewedBroadcastsAuthenticated(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)
	store.Save(ctx, credentials.Update{
		Access:   strPtr("a2"),
		Identity: &credentials.Identity{UserID: "u-1", Role: credentials.RoleEmployee},
	})

	var changes []Change
	m.Subscribe(func(c Change) { changes = append(changes, c) })

	m.Renewed(ctx)

	if len(changes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(changes))
	}
	c := changes[0]
	if c.State != Authenticated || c.Role != credentials.RoleEmployee || c.Reason != ReasonRenewed {
		t.Errorf("change = %+v, want authenticated employee renewal", c)
	}
}

func TestManager_RequiresStore(t *testing.T) {
	if _, err := NewManager(ManagerConfig{}); err == nil {
		t.Fatal("NewManager() without a store, want error")
	}
}

func strPtr(s string) *string { return &s }
