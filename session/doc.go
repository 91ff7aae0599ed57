// Package session derives the current session state from the credential
// store and broadcasts state changes synchronously to subscribers, so the
// application shell can gate navigation without a stale read.
package session
