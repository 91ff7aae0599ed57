package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/opsdesk/sessionkit/credentials"
	"github.com/opsdesk/sessionkit/observe"
)

// CoordinatorConfig configures a Coordinator.
type CoordinatorConfig struct {
	// Store holds the credential pair. Required.
	Store credentials.Store

	// Exchanger performs the network exchange. Required.
	Exchanger Exchanger

	// OnRenewed is called after a successful renewal has been persisted.
	OnRenewed func(ctx context.Context)

	// OnFailure is called after a terminal renewal failure, once the
	// credentials have been cleared. The error is ErrNoRefreshToken or
	// wraps ErrRenewalFailed.
	OnFailure func(ctx context.Context, err error)

	// Logger receives renewal lifecycle logs. If nil, logging is disabled.
	Logger observe.Logger

	// Metrics receives renewal counters. If nil, metrics are disabled.
	Metrics observe.Metrics
}

// Coordinator serializes token renewal. However many callers observe an
// authentication failure at the same instant, exactly one exchange runs;
// every caller gets that exchange's outcome. The flight is released when
// the exchange settles, success or failure, so a later episode can renew
// again.
type Coordinator struct {
	store     credentials.Store
	exchanger Exchanger
	onRenewed func(ctx context.Context)
	onFailure func(ctx context.Context, err error)
	logger    observe.Logger
	metrics   observe.Metrics

	group    singleflight.Group
	inflight atomic.Int32
}

// renewKey is the single-flight key: one renewal per session, process-wide.
const renewKey = "renew"

// NewCoordinator creates a Coordinator.
func NewCoordinator(config CoordinatorConfig) (*Coordinator, error) {
	if config.Store == nil {
		return nil, errors.New("refresh: store is required")
	}
	if config.Exchanger == nil {
		return nil, errors.New("refresh: exchanger is required")
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = observe.NopMetrics()
	}

	return &Coordinator{
		store:     config.Store,
		exchanger: config.Exchanger,
		onRenewed: config.OnRenewed,
		onFailure: config.OnFailure,
		logger:    config.Logger,
		metrics:   config.Metrics,
	}, nil
}

// Renew returns a fresh access token, performing at most one exchange no
// matter how many goroutines call it concurrently. On failure the stored
// credentials are cleared before the error is returned, and every waiter
// receives the same error.
func (c *Coordinator) Renew(ctx context.Context) (string, error) {
	token, err, _ := c.group.Do(renewKey, func() (any, error) {
		c.inflight.Add(1)
		defer c.inflight.Add(-1)
		return c.renew(ctx)
	})
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

// InFlight reports whether a renewal exchange is currently outstanding.
func (c *Coordinator) InFlight() bool {
	return c.inflight.Load() > 0
}

func (c *Coordinator) renew(ctx context.Context) (string, error) {
	snap, err := c.store.Read(ctx)
	if err != nil {
		return "", c.fail(ctx, fmt.Errorf("%w: read credentials: %v", ErrRenewalFailed, err))
	}
	if snap.Refresh == "" {
		return "", c.fail(ctx, ErrNoRefreshToken)
	}

	c.logger.Debug(ctx, "renewal exchange started")
	renewed, err := c.exchanger.Exchange(ctx, snap.Refresh)
	if err != nil {
		return "", c.fail(ctx, fmt.Errorf("%w: %v", ErrRenewalFailed, err))
	}

	update := credentials.UpdateAccess(renewed.AccessToken)
	if renewed.RefreshToken != "" {
		// The backend rotated the refresh token; adopt the new one.
		update.Refresh = &renewed.RefreshToken
	}
	if err := c.store.Save(ctx, update); err != nil {
		return "", c.fail(ctx, fmt.Errorf("%w: persist renewed token: %v", ErrRenewalFailed, err))
	}

	c.metrics.RecordRenewal(ctx, nil)
	c.logger.Info(ctx, "renewal succeeded",
		observe.Field{Key: "rotated_refresh", Value: renewed.RefreshToken != ""})
	if c.onRenewed != nil {
		c.onRenewed(ctx)
	}
	return renewed.AccessToken, nil
}

// fail clears the credentials, notifies, and hands the error back for
// every waiter on the shared flight.
func (c *Coordinator) fail(ctx context.Context, renewErr error) error {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error(ctx, "clear credentials after failed renewal",
			observe.Field{Key: "error", Value: err.Error()})
	}
	c.metrics.RecordRenewal(ctx, renewErr)
	c.logger.Warn(ctx, "renewal failed",
		observe.Field{Key: "error", Value: renewErr.Error()})
	if c.onFailure != nil {
		c.onFailure(ctx, renewErr)
	}
	return renewErr
}
