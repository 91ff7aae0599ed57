package credentials

import "fmt"

// Role identifies which surface of the admin panel a user belongs to.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleEmployee Role = "employee"
	RoleOwner    Role = "owner"
)

// ParseRole validates a persisted or claimed role value.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleEmployee, RoleOwner:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Pair is the current credential pair. Either token may be empty: an empty
// Access means the session is anonymous, an empty Refresh makes renewal
// impossible.
type Pair struct {
	Access  string
	Refresh string
}

// Identity is the user snapshot written once at login and read-only until
// the next login or logout.
type Identity struct {
	// UserID is the backend identifier for the user.
	UserID string

	// Role gates which landing surface the shell routes to.
	Role Role

	// Profile is the opaque user record as returned by the backend.
	Profile map[string]any
}

// IsZero reports whether no identity has been stored.
func (id Identity) IsZero() bool {
	return id.UserID == "" && id.Role == "" && len(id.Profile) == 0
}

// Snapshot is what Store.Read returns: the credential pair plus the
// identity snapshot, with absent fields left at their zero values.
type Snapshot struct {
	Pair
	Identity Identity
}

// Update describes a partial write. Only non-nil fields are persisted;
// omitted fields keep their stored values.
type Update struct {
	Access   *string
	Refresh  *string
	Identity *Identity
}

// UpdatePair builds an Update that replaces both tokens.
func UpdatePair(p Pair) Update {
	return Update{Access: &p.Access, Refresh: &p.Refresh}
}

// UpdateAccess builds an Update that replaces the access token only.
func UpdateAccess(token string) Update {
	return Update{Access: &token}
}
