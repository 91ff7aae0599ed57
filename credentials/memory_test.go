package credentials

import (
	"context"
	"testing"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Save(ctx, UpdatePair(Pair{Access: "a1", Refresh: "r1"})); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	snap, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if snap.Access != "a1" || snap.Refresh != "r1" {
		t.Errorf("Read() = {%q, %q}, want {a1, r1}", snap.Access, snap.Refresh)
	}
}

func TestMemoryStore_EmptyRead(t *testing.T) {
	snap, err := NewMemoryStore().Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if snap.Access != "" || snap.Refresh != "" || !snap.Identity.IsZero() {
		t.Errorf("Read() on empty store = %+v, want all fields absent", snap)
	}
}

func TestMemoryStore_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	identity := Identity{UserID: "u1", Role: RoleCustomer}
	if err := store.Save(ctx, Update{
		Access:   strPtr("a1"),
		Refresh:  strPtr("r1"),
		Identity: &identity,
	}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Renewal path: access only, everything else untouched.
	if err := store.Save(ctx, UpdateAccess("a2")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	snap, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if snap.Access != "a2" {
		t.Errorf("Access = %q, want a2", snap.Access)
	}
	if snap.Refresh != "r1" {
		t.Errorf("Refresh = %q, want r1 (partial update must not clear it)", snap.Refresh)
	}
	if snap.Identity.UserID != "u1" || snap.Identity.Role != RoleCustomer {
		t.Errorf("Identity = %+v, want unchanged", snap.Identity)
	}
}

func TestMemoryStore_ClearIsTotal(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	identity := Identity{UserID: "u1", Role: RoleOwner, Profile: map[string]any{"name": "A"}}
	if err := store.Save(ctx, Update{Access: strPtr("a"), Refresh: strPtr("r"), Identity: &identity}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	snap, err := store.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if snap.Access != "" || snap.Refresh != "" || !snap.Identity.IsZero() {
		t.Errorf("Read() after Clear() = %+v, want all fields absent", snap)
	}
}

func TestMemoryStore_ProfileIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	profile := map[string]any{"name": "A"}
	identity := Identity{UserID: "u1", Role: RoleEmployee, Profile: profile}
	if err := store.Save(ctx, Update{Identity: &identity}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	profile["name"] = "mutated"

	snap, _ := store.Read(ctx)
	if snap.Identity.Profile["name"] != "A" {
		t.Errorf("stored profile affected by caller mutation: %v", snap.Identity.Profile)
	}

	snap.Identity.Profile["name"] = "mutated-again"
	snap2, _ := store.Read(ctx)
	if snap2.Identity.Profile["name"] != "A" {
		t.Errorf("stored profile affected by snapshot mutation: %v", snap2.Identity.Profile)
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"customer", RoleCustomer, false},
		{"employee", RoleEmployee, false},
		{"owner", RoleOwner, false},
		{"admin", "", true},
		{"", "", true},
		{"Customer", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
