package transport

import "context"

type attemptKey struct{}

// Attempt returns how many times the request carried by ctx has already
// been replayed. Fresh requests report 0.
func Attempt(ctx context.Context) int {
	n, _ := ctx.Value(attemptKey{}).(int)
	return n
}

// withAttempt records an immutable attempt count on the context. The
// count is threaded through the replayed request instead of mutating
// shared call state.
func withAttempt(ctx context.Context, n int) context.Context {
	return context.WithValue(ctx, attemptKey{}, n)
}
