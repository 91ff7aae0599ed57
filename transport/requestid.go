package transport

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader is the correlation header stamped on outbound requests.
const RequestIDHeader = "X-Request-Id"

// RequestID returns an interceptor that stamps a UUID request ID on
// requests that do not already carry one. A replayed request keeps the
// original ID so both attempts correlate on the backend.
func RequestID() Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) == "" {
				req = req.Clone(req.Context())
				req.Header.Set(RequestIDHeader, uuid.NewString())
			}
			return next.RoundTrip(req)
		})
	}
}
