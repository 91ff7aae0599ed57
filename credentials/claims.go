package credentials

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claim names the backend places in access tokens.
const (
	claimSubject = "sub"
	claimRole    = "role"
)

// IdentityFromToken extracts an identity snapshot from an access token's
// claims. The token is parsed without signature verification: the client
// never holds signing keys, and the backend remains the authority — this
// is a convenience for callers that do not receive a separate user record
// at login.
//
// Missing claims leave the corresponding fields zero; an unparseable
// token returns ErrInvalidToken.
func IdentityFromToken(token string) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id := Identity{Profile: map[string]any(claims)}
	if sub, ok := claims[claimSubject].(string); ok {
		id.UserID = sub
	}
	if raw, ok := claims[claimRole].(string); ok {
		if role, err := ParseRole(raw); err == nil {
			id.Role = role
		}
	}
	return id, nil
}
