package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opsdesk/sessionkit/credentials"
	"github.com/opsdesk/sessionkit/observe"
	"github.com/opsdesk/sessionkit/refresh"
	"github.com/opsdesk/sessionkit/session"
	"github.com/opsdesk/sessionkit/transport"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the root of the business API. Required.
	BaseURL string

	// RefreshPath is the renewal endpoint relative to BaseURL.
	// Default: "/auth/refresh". Ignored when Exchanger is set.
	RefreshPath string

	// Timeout bounds every outbound call. Default: 30 seconds.
	Timeout time.Duration

	// Store holds the credential pair. Default: an in-memory store.
	Store credentials.Store

	// Exchanger overrides the HTTP renewal exchanger.
	Exchanger refresh.Exchanger

	// Observer supplies telemetry. If nil, telemetry is disabled.
	Observer observe.Observer

	// Base is the innermost transport. Default: http.DefaultTransport.
	Base http.RoundTripper
}

// Client is the authenticated API client façade.
type Client struct {
	baseURL     *url.URL
	httpClient  *http.Client
	store       credentials.Store
	coordinator *refresh.Coordinator
	manager     *session.Manager
}

// New creates a Client, wiring the credential store, the single-flight
// refresh coordinator, the session manager, and the transport pipeline
// together. The pipeline, outermost first: telemetry, request ID,
// authentication guard, bearer attachment.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("client: parse base URL: %w", err)
	}
	if cfg.RefreshPath == "" {
		cfg.RefreshPath = "/auth/refresh"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Store == nil {
		cfg.Store = credentials.NewMemoryStore()
	}

	var (
		logger  observe.Logger = observe.NopLogger()
		tracer  observe.Tracer = observe.NopTracer()
		metrics observe.Metrics = observe.NopMetrics()
	)
	if cfg.Observer != nil {
		logger = cfg.Observer.Logger()
		tracer = observe.NewTracer(cfg.Observer.Tracer())
		m, err := observe.NewMetrics(cfg.Observer.Meter())
		if err != nil {
			return nil, fmt.Errorf("client: create metrics: %w", err)
		}
		metrics = m
	}

	exchanger := cfg.Exchanger
	if exchanger == nil {
		exchanger = refresh.NewHTTPExchanger(refresh.HTTPExchangerConfig{
			Endpoint: baseURL.JoinPath(cfg.RefreshPath).String(),
			Timeout:  cfg.Timeout,
		})
	}

	// The manager and coordinator reference each other: the manager
	// probes the coordinator's in-flight flag, the coordinator reports
	// settled renewals back through the hooks.
	manager, err := session.NewManager(session.ManagerConfig{Store: cfg.Store})
	if err != nil {
		return nil, err
	}
	coordinator, err := refresh.NewCoordinator(refresh.CoordinatorConfig{
		Store:     cfg.Store,
		Exchanger: exchanger,
		Logger:    logger.WithOp(observe.OpMeta{Component: "refresh", Operation: "exchange"}),
		Metrics:   metrics,
		OnRenewed: manager.Renewed,
		OnFailure: func(ctx context.Context, err error) {
			reason := session.ReasonRenewalFailed
			if errors.Is(err, refresh.ErrNoRefreshToken) {
				reason = session.ReasonRefreshMissing
			}
			manager.Invalidate(ctx, reason)
		},
	})
	if err != nil {
		return nil, err
	}
	manager.SetProbe(coordinator)

	rt := transport.Chain(cfg.Base,
		transport.Telemetry(tracer, metrics, logger),
		transport.RequestID(),
		transport.AuthGuard(transport.GuardConfig{
			Renewer: coordinator,
			Logger:  logger,
			Metrics: metrics,
		}),
		transport.Bearer(cfg.Store),
	)

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: rt,
			Timeout:   cfg.Timeout,
		},
		store:       cfg.Store,
		coordinator: coordinator,
		manager:     manager,
	}, nil
}

// Session returns the session manager for the UI shell: state reads,
// login/logout, and change subscriptions.
func (c *Client) Session() *session.Manager {
	return c.manager
}

// Store returns the credential store.
func (c *Client) Store() credentials.Store {
	return c.store
}

// Do performs a business request as the current session. While the
// session is anonymous it fails immediately with ErrNoCredential, unless
// the request context carries AllowAnonymous.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if !anonymousAllowed(ctx) {
		snap, err := c.store.Read(ctx)
		if err != nil {
			return nil, err
		}
		if snap.Access == "" {
			return nil, ErrNoCredential
		}
	}
	return c.httpClient.Do(req)
}

// Get performs an authenticated GET against a path relative to BaseURL.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path), nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// PostJSON performs an authenticated POST with a JSON body against a path
// relative to BaseURL.
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("client: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.Do(req)
}

func (c *Client) resolve(path string) string {
	return c.baseURL.JoinPath(strings.TrimPrefix(path, "/")).String()
}

type anonymousKey struct{}

// AllowAnonymous marks a request as valid without a stored credential,
// for endpoints like login or health that precede authentication.
func AllowAnonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func anonymousAllowed(ctx context.Context) bool {
	allowed, _ := ctx.Value(anonymousKey{}).(bool)
	return allowed
}
