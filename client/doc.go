// Package client assembles the session layer into the façade the rest of
// the application consumes: "perform this request as the current
// authenticated user". Bearer attachment, renewal, and the one-shot
// replay are invisible to callers; the only session machinery they see is
// ErrNoCredential and the session.Manager's change notifications.
package client
