package transport

import (
	"context"
	"net/http"

	"github.com/opsdesk/sessionkit/credentials"
)

// CredentialSource is the read-only slice of the credential store the
// pipeline needs.
type CredentialSource interface {
	Read(ctx context.Context) (credentials.Snapshot, error)
}

// Bearer returns an interceptor that attaches the current access token as
// an Authorization: Bearer header. Requests with no stored token pass
// through unauthenticated. The attachment is a pure transform with one
// read side effect; it never triggers renewal — renewal is reactive, on
// failure, not proactive.
func Bearer(source CredentialSource) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			snap, err := source.Read(req.Context())
			if err != nil {
				return nil, err
			}
			if snap.Access != "" {
				// Clone before mutating: RoundTrippers must not
				// modify the caller's request.
				req = req.Clone(req.Context())
				req.Header.Set("Authorization", "Bearer "+snap.Access)
			}
			return next.RoundTrip(req)
		})
	}
}
