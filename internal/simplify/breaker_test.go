package simplify

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/cassiomorais/simplify-gateway/internal/domain/errors"
	"github.com/cassiomorais/simplify-gateway/internal/infrastructure/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	payment    *Payment
	paymentErr error
}

func (s *stubGateway) CreateCustomer(context.Context, CustomerRequest) (*Customer, error) {
	return &Customer{ID: "cust_1"}, nil
}

func (s *stubGateway) CreatePayment(context.Context, PaymentRequest) (*Payment, error) {
	return s.payment, s.paymentErr
}

func (s *stubGateway) CreateAuthorization(context.Context, AuthorizationRequest) (*Authorization, error) {
	return &Authorization{ID: "auth_1"}, nil
}

func (s *stubGateway) CreateRefund(context.Context, RefundRequest) (*Refund, error) {
	return &Refund{ID: "ref_1"}, nil
}

func (s *stubGateway) FindAuthorization(context.Context, string) (*Authorization, error) {
	return &Authorization{ID: "auth_1"}, nil
}

func (s *stubGateway) VoidAuthorization(context.Context, string) error {
	return nil
}

func TestBreakerGateway_PassesResultsThrough(t *testing.T) {
	stub := &stubGateway{payment: &Payment{ID: "pay_1", PaymentStatus: PaymentStatusApproved}}
	gw := NewBreakerGateway(stub)

	payment, err := gw.CreatePayment(context.Background(), PaymentRequest{Amount: 100, Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "pay_1", payment.ID)

	require.NoError(t, gw.VoidAuthorization(context.Background(), "auth_1"))
}

func TestBreakerGateway_DeclinesDoNotTripBreaker(t *testing.T) {
	stub := &stubGateway{paymentErr: &APIError{Code: "validation", Message: "declined"}}
	gw := NewBreakerGateway(stub)

	// Well past the trip threshold; every call must still reach the stub.
	for i := 0; i < 25; i++ {
		_, err := gw.CreatePayment(context.Background(), PaymentRequest{Amount: 100, Currency: "USD"})
		require.Error(t, err)
		_, ok := AsAPIError(err)
		assert.True(t, ok, "call %d should return the processor error, not an open circuit", i)
	}
}

func TestBreakerGateway_TransportFailuresOpenCircuit(t *testing.T) {
	stub := &stubGateway{paymentErr: errors.New("connection refused")}
	gw := NewBreakerGateway(stub)

	var sawOpen bool
	for i := 0; i < 25; i++ {
		_, err := gw.CreatePayment(context.Background(), PaymentRequest{Amount: 100, Currency: "USD"})
		require.Error(t, err)
		if errors.Is(err, domainErrors.ErrGatewayUnavailable) {
			sawOpen = true
			break
		}
	}
	assert.True(t, sawOpen, "circuit should open after repeated transport failures")
}

func TestBreakerGateway_CountsRequests(t *testing.T) {
	metrics := observability.NewMetrics("breaker_test", prometheus.NewRegistry())
	stub := &stubGateway{payment: &Payment{ID: "pay_1", PaymentStatus: PaymentStatusApproved}}
	gw := NewBreakerGateway(stub, WithBreakerMetrics(metrics))

	_, err := gw.CreatePayment(context.Background(), PaymentRequest{Amount: 100, Currency: "USD"})
	require.NoError(t, err)

	stub.payment = nil
	stub.paymentErr = errors.New("connection refused")
	_, err = gw.CreatePayment(context.Background(), PaymentRequest{Amount: 100, Currency: "USD"})
	require.Error(t, err)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("simplify", "success")))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("simplify", "failure")))
}
