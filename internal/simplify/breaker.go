package simplify

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/cassiomorais/simplify-gateway/internal/domain/errors"
	"github.com/cassiomorais/simplify-gateway/internal/infrastructure/observability"
	"github.com/sony/gobreaker/v2"
)

// BreakerGateway decorates a Gateway with a circuit breaker. Only
// transport failures count against the breaker: an *APIError means the
// processor answered, so declines and validation failures keep the
// circuit closed.
type BreakerGateway struct {
	inner   Gateway
	breaker *gobreaker.CircuitBreaker[any]
	metrics *observability.Metrics
}

// BreakerOption configures a BreakerGateway.
type BreakerOption func(*BreakerGateway)

// WithBreakerMetrics publishes breaker state and request outcomes.
func WithBreakerMetrics(m *observability.Metrics) BreakerOption {
	return func(g *BreakerGateway) {
		g.metrics = m
	}
}

// NewBreakerGateway wraps the given gateway.
func NewBreakerGateway(inner Gateway, opts ...BreakerOption) *BreakerGateway {
	g := &BreakerGateway{inner: inner}
	for _, opt := range opts {
		opt(g)
	}

	g.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "simplify",
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			return errors.As(err, &apiErr)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if g.metrics != nil {
				g.metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			}
		},
	})
	return g
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

func (g *BreakerGateway) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	return execute(g, func() (*Customer, error) { return g.inner.CreateCustomer(ctx, req) })
}

func (g *BreakerGateway) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	return execute(g, func() (*Payment, error) { return g.inner.CreatePayment(ctx, req) })
}

func (g *BreakerGateway) CreateAuthorization(ctx context.Context, req AuthorizationRequest) (*Authorization, error) {
	return execute(g, func() (*Authorization, error) { return g.inner.CreateAuthorization(ctx, req) })
}

func (g *BreakerGateway) CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error) {
	return execute(g, func() (*Refund, error) { return g.inner.CreateRefund(ctx, req) })
}

func (g *BreakerGateway) FindAuthorization(ctx context.Context, id string) (*Authorization, error) {
	return execute(g, func() (*Authorization, error) { return g.inner.FindAuthorization(ctx, id) })
}

func (g *BreakerGateway) VoidAuthorization(ctx context.Context, id string) error {
	_, err := execute(g, func() (*struct{}, error) { return nil, g.inner.VoidAuthorization(ctx, id) })
	return err
}

func execute[T any](g *BreakerGateway, call func() (T, error)) (T, error) {
	result, err := g.breaker.Execute(func() (any, error) {
		return call()
	})
	g.countRequest(err)
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: circuit open", domainErrors.ErrGatewayUnavailable)
		}
		return zero, err
	}
	typed, _ := result.(T)
	return typed, nil
}

func (g *BreakerGateway) countRequest(err error) {
	if g.metrics == nil {
		return
	}
	var apiErr *APIError
	result := "success"
	if err != nil && !errors.As(err, &apiErr) {
		result = "failure"
	}
	g.metrics.CircuitBreakerRequests.WithLabelValues("simplify", result).Inc()
}
