package refresh

import "errors"

// Sentinel errors for token renewal.
var (
	// ErrRenewalFailed indicates the renewal exchange itself failed:
	// the refresh token was rejected, the endpoint was unreachable, or
	// the response was unusable. Credentials are cleared before this is
	// returned; the session is terminally logged out.
	ErrRenewalFailed = errors.New("refresh: renewal failed")

	// ErrNoRefreshToken indicates a renewal was requested with no
	// refresh token on hand. No exchange is attempted; credentials are
	// cleared.
	ErrNoRefreshToken = errors.New("refresh: no refresh token")

	// ErrEmptyAccessToken indicates the exchange succeeded at the HTTP
	// level but carried no access token.
	ErrEmptyAccessToken = errors.New("refresh: empty access token in response")
)
