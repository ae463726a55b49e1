package services

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/bendaklara/restaurantsaround/config"
	"github.com/bendaklara/restaurantsaround/metrics"
	"github.com/bendaklara/restaurantsaround/tracer"
)

const (
	providerMapQuest  = "mapquest"
	providerGraph     = "graph"
	providerMessenger = "messenger"
)

// NewHTTPClient returns the client shared by every outbound call: keep-alive
// pooling and a hard per-request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          50,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		Timeout: timeout,
	}
}

// newBreaker trips only on connection failures. Provider-level errors such as
// a MapQuest 400 or a Graph code 190 mean the provider is reachable.
func newBreaker[T any](provider string, cfg config.BreakerConfig) *gobreaker.CircuitBreaker[T] {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        provider,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrConnection)
		},
	})
}

// call runs fn through the breaker inside a span and records metrics.
func call[T any](ctx context.Context, provider, spanName string, cb *gobreaker.CircuitBreaker[T], fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.StartSpan(ctx, spanName)
	start := time.Now()

	v, err := cb.Execute(func() (T, error) {
		return fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = connectionError(provider, err)
	}

	metrics.ProviderRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	metrics.ProviderRequestsTotal.WithLabelValues(provider, outcome(err)).Inc()
	tracer.End(span, err)
	return v, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConnection):
		return "connection"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrUpstreamAuth):
		return "auth"
	case errors.Is(err, ErrNoResults):
		return "no_results"
	default:
		return "error"
	}
}
