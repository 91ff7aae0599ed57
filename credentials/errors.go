package credentials

import "errors"

// Sentinel errors for credential storage.
var (
	// ErrUnknownRole indicates a role value outside customer/employee/owner.
	ErrUnknownRole = errors.New("credentials: unknown role")

	// ErrStoreUnavailable indicates the persistence backend could not be
	// reached. Malformed persisted data never produces an error; it reads
	// as absent.
	ErrStoreUnavailable = errors.New("credentials: store unavailable")

	// ErrInvalidToken indicates an access token that could not be parsed
	// as a JWT.
	ErrInvalidToken = errors.New("credentials: invalid token")
)

// Logical storage keys shared by the file and Redis backends. Each key is
// independently settable and clearable; readers tolerate any subset being
// absent or malformed.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserIdentity = "user_identity"
	KeyRole         = "role"
	KeyUserID       = "user_id"
)
