package transport

import (
	"net/http"
	"time"

	"github.com/opsdesk/sessionkit/observe"
)

// Telemetry returns an interceptor that wraps every call with a client
// span, a duration histogram, and a structured log line. Place it
// outermost so renewed-and-replayed attempts land inside the same span.
func Telemetry(tracer observe.Tracer, metrics observe.Metrics, logger observe.Logger) Interceptor {
	if tracer == nil {
		tracer = observe.NopTracer()
	}
	if metrics == nil {
		metrics = observe.NopMetrics()
	}
	if logger == nil {
		logger = observe.NopLogger()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			meta := observe.OpMeta{Component: "transport", Operation: req.Method}

			ctx, span := tracer.StartSpan(req.Context(), meta)
			start := time.Now()

			resp, err := next.RoundTrip(req.WithContext(ctx))

			duration := time.Since(start)
			tracer.EndSpan(span, err)
			metrics.RecordRequest(ctx, meta, duration, err)

			opLogger := logger.WithOp(meta)
			fields := []observe.Field{
				{Key: "url", Value: req.URL.Path},
				{Key: "duration_ms", Value: float64(duration.Milliseconds())},
			}
			if err != nil {
				fields = append(fields, observe.Field{Key: "error", Value: err.Error()})
				opLogger.Error(ctx, "request failed", fields...)
			} else {
				fields = append(fields, observe.Field{Key: "status", Value: resp.StatusCode})
				opLogger.Debug(ctx, "request completed", fields...)
			}

			return resp, err
		})
	}
}
