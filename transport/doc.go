// Package transport composes the outbound HTTP pipeline for authenticated
// API calls: an ordered interceptor chain that stamps request IDs, attaches
// the current bearer token, and transparently renews-and-replays a request
// exactly once when the backend answers 401.
package transport
