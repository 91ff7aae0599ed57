package session

import "github.com/opsdesk/sessionkit/credentials"

// State is the derived session state. It is never persisted: it is
// computed from the credential store contents plus the renewal in-flight
// flag at read time.
type State int

const (
	// Anonymous means no access token is stored.
	Anonymous State = iota

	// Authenticated means an access token is present; this is the only
	// state from which business requests are attempted.
	Authenticated

	// Renewing means a refresh exchange is in flight.
	Renewing

	// Expired means the last renewal failed (or no refresh token was
	// available) and nothing has been stored since; terminal for this
	// session.
	Expired
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	case Renewing:
		return "renewing"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Reason explains why a Change was broadcast.
type Reason string

const (
	ReasonLogin          Reason = "login"
	ReasonLogout         Reason = "logout"
	ReasonRenewed        Reason = "renewed"
	ReasonRenewalFailed  Reason = "renewal_failed"
	ReasonRefreshMissing Reason = "refresh_missing"
)

// Change is delivered synchronously to subscribers on every
// state-changing call. Role is set only when State is Authenticated, so
// the shell can route to the matching landing surface.
type Change struct {
	State  State
	Role   credentials.Role
	Reason Reason
}
