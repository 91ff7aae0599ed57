// Package credentials stores the current session's credential pair and
// identity snapshot. It provides in-memory, file-backed, and Redis-backed
// stores behind a single Store interface, plus best-effort identity
// extraction from access token claims.
package credentials
