// Package refresh renews an expired access token against the backend's
// refresh endpoint. The Coordinator guarantees at most one renewal
// exchange is in flight at any time: concurrent callers share the
// outstanding exchange's outcome instead of starting their own.
package refresh
