package transport

import "net/http"

// Interceptor wraps an http.RoundTripper with one pipeline stage. Each
// stage receives the request on the way out and the response on the way
// back; stages must not retain the request after RoundTrip returns.
type Interceptor func(next http.RoundTripper) http.RoundTripper

// RoundTripFunc adapts a function to http.RoundTripper.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain composes interceptors around a base transport. The first
// interceptor is the outermost stage: Chain(base, a, b) dispatches
// a -> b -> base. A nil base defaults to http.DefaultTransport.
func Chain(base http.RoundTripper, interceptors ...Interceptor) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	rt := base
	for i := len(interceptors) - 1; i >= 0; i-- {
		rt = interceptors[i](rt)
	}
	return rt
}
