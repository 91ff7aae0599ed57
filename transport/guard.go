package transport

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/opsdesk/sessionkit/observe"
	"github.com/opsdesk/sessionkit/refresh"
)

// Renewer is the slice of the refresh coordinator the guard needs.
type Renewer interface {
	Renew(ctx context.Context) (string, error)
}

// GuardConfig configures the authentication guard.
type GuardConfig struct {
	// Renewer performs the single-flight token renewal. Required.
	Renewer Renewer

	// Logger receives replay lifecycle logs. If nil, logging is disabled.
	Logger observe.Logger

	// Metrics receives the replay counter. If nil, metrics are disabled.
	Metrics observe.Metrics
}

// AuthGuard returns the response-side interceptor that recovers from an
// expired access token. On a 401 it renews the credential through the
// coordinator and replays the original request exactly once through the
// rest of the pipeline, so the replay picks up the renewed bearer token.
//
// Invariants:
//   - a request is replayed at most once; a 401 on the replay is returned
//     to the caller untouched (the session itself is still valid — the
//     renewal succeeded);
//   - a 401 with no refresh token on hand clears the session and returns
//     the original 401 without any exchange;
//   - a failed renewal clears the session and surfaces the renewal error
//     to every request that was waiting on it.
func AuthGuard(config GuardConfig) Interceptor {
	logger := config.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = observe.NopMetrics()
	}
	logger = logger.WithOp(observe.OpMeta{Component: "transport", Operation: "replay"})

	return func(next http.RoundTripper) http.RoundTripper {
		return &guard{
			next:    next,
			renewer: config.Renewer,
			logger:  logger,
			metrics: metrics,
		}
	}
}

type guard struct {
	next    http.RoundTripper
	renewer Renewer
	logger  observe.Logger
	metrics observe.Metrics
}

func (g *guard) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := g.next.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	ctx := req.Context()
	if Attempt(ctx) > 0 {
		// Second authentication failure on a replayed request. The
		// renewal succeeded, so this is a backend inconsistency, not
		// session expiry; surface it as a plain request failure.
		g.logger.Warn(ctx, "replayed request rejected again",
			observe.Field{Key: "url", Value: req.URL.Path})
		return resp, nil
	}

	if req.Body != nil && req.GetBody == nil {
		// The body was consumed by the first attempt and cannot be
		// rewound; replaying would send a truncated request.
		return resp, nil
	}

	token, renewErr := g.renewer.Renew(ctx)
	if renewErr != nil {
		if errors.Is(renewErr, refresh.ErrNoRefreshToken) {
			// Terminal transition with no exchange attempted: the
			// coordinator cleared the credentials; the caller gets
			// the original failure.
			return resp, nil
		}
		drain(resp)
		return nil, renewErr
	}
	_ = token // the replay reads the renewed token from the store

	drain(resp)

	retry := req.Clone(withAttempt(ctx, Attempt(ctx)+1))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}

	g.metrics.RecordReplay(ctx)
	g.logger.Info(ctx, "replaying request with renewed credential",
		observe.Field{Key: "url", Value: req.URL.Path})
	return g.next.RoundTrip(retry)
}

// drain discards and closes a response body so the underlying connection
// can be reused.
func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// Ensure guard implements http.RoundTripper
var _ http.RoundTripper = (*guard)(nil)
