package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cassiomorais/simplify-gateway/internal/auditlog"
	"github.com/cassiomorais/simplify-gateway/internal/domain/order"
	"github.com/cassiomorais/simplify-gateway/internal/infrastructure/config"
	"github.com/cassiomorais/simplify-gateway/internal/infrastructure/observability"
	"github.com/cassiomorais/simplify-gateway/internal/service"
	"github.com/cassiomorais/simplify-gateway/internal/simplify"
	"github.com/cassiomorais/simplify-gateway/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFixture struct {
	handler *GatewayController
	repo    *testutil.MemoryOrderRepository
	gateway *testutil.MockGateway
	cfg     *config.Config
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	cfg := &config.Config{
		Gateway: config.GatewayConfig{
			Enabled:           true,
			Sandbox:           true,
			SandboxPublicKey:  "sbpb_test",
			SandboxPrivateKey: "sbpr_test",
			TxnMode:           config.TxnModePurchase,
			IntegrationMode:   config.IntegrationModal,
			HostedURL:         "https://www.simplify.com/commerce",
			CallbackURL:       "https://gateway.example.com/gateway/return",
			LockTTL:           30 * time.Second,
			MaxRetries:        3,
			RetryDelay:        time.Millisecond,
		},
		Store: config.StoreConfig{
			Name:          "Test Store",
			PriceDecimals: 2,
			AddressLine1:  "100 Warehouse Rd",
			City:          "Capital City",
			Zip:           "99999",
			Country:       "US",
		},
		Platform: config.PlatformConfig{
			ReturnURL: "https://shop.example.com/order-received",
			CartURL:   "https://shop.example.com/cart",
		},
	}

	repo := testutil.NewMemoryOrderRepository()
	gateway := &testutil.MockGateway{}
	audit := auditlog.New(filepath.Join(t.TempDir(), "gateway.log"), "sbpb_test", "sbpr_test", true)
	metrics := observability.NewMetrics("handler_test", prometheus.NewRegistry())
	txManager := &testutil.MemoryTxManager{Repo: repo}
	svc := service.NewGatewayService(repo, gateway, txManager, testutil.NoopLocker{}, audit, cfg, metrics, zerolog.Nop())

	return &handlerFixture{
		handler: NewGatewayController(svc),
		repo:    repo,
		gateway: gateway,
		cfg:     cfg,
	}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGatewayController_CreateOrder(t *testing.T) {
	f := newHandlerFixture(t)

	body, _ := json.Marshal(CreateOrderRequest{
		Number:   "1001",
		Total:    19.99,
		Currency: "usd",
		Email:    "buyer@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	f.handler.CreateOrder(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1001", resp.Number)
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, order.PaymentMethodSimplify, resp.PaymentMethod)
}

func TestGatewayController_CreateOrder_ValidationFailure(t *testing.T) {
	f := newHandlerFixture(t)

	body := []byte(`{"total": 19.99, "currency": "USD"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	f.handler.CreateOrder(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestGatewayController_GetOrder_InvalidID(t *testing.T) {
	f := newHandlerFixture(t)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/orders/nope", nil), "id", "nope")
	rec := httptest.NewRecorder()

	f.handler.GetOrder(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_id")
}

func TestGatewayController_GetOrder_NotFound(t *testing.T) {
	f := newHandlerFixture(t)

	id := uuid.NewString()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+id, nil), "id", id)
	rec := httptest.NewRecorder()

	f.handler.GetOrder(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestGatewayController_Pay(t *testing.T) {
	f := newHandlerFixture(t)
	o := testutil.NewTestOrder("1001", 19.99, "USD")
	require.NoError(t, f.repo.Create(context.Background(), o))

	id := o.ID.String()
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+id+"/pay", nil), "id", id)
	rec := httptest.NewRecorder()

	f.handler.Pay(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp service.HostedPayment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1999", resp.Args["amount"])
	assert.Equal(t, config.IntegrationModal, resp.IntegrationMode)
	assert.Equal(t, "https://www.simplify.com/commerce", resp.HostedURL)
}

func TestGatewayController_Capture(t *testing.T) {
	f := newHandlerFixture(t)
	o := testutil.NewAuthorizedOrder("1001", 19.99, "USD", "auth_1")
	require.NoError(t, f.repo.Create(context.Background(), o))

	f.gateway.CreatePaymentFn = func(context.Context, simplify.PaymentRequest) (*simplify.Payment, error) {
		return &simplify.Payment{ID: "cap_1", PaymentStatus: simplify.PaymentStatusApproved}, nil
	}

	id := o.ID.String()
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+id+"/capture", nil), "id", id)
	rec := httptest.NewRecorder()

	f.handler.Capture(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "1", resp.Metadata[order.MetaCaptured])
	assert.NotEmpty(t, resp.Notes)
}

func TestGatewayController_Capture_WrongState(t *testing.T) {
	f := newHandlerFixture(t)
	o := testutil.NewTestOrder("1001", 19.99, "USD")
	require.NoError(t, f.repo.Create(context.Background(), o))

	id := o.ID.String()
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+id+"/capture", nil), "id", id)
	rec := httptest.NewRecorder()

	f.handler.Capture(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_state_transition")
}

func TestGatewayController_Refund_NoPaymentID(t *testing.T) {
	f := newHandlerFixture(t)
	o := testutil.NewTestOrder("1001", 19.99, "USD")
	require.NoError(t, f.repo.Create(context.Background(), o))

	body, _ := json.Marshal(RefundOrderRequest{Amount: 19.99})
	id := o.ID.String()
	req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+id+"/refund", bytes.NewReader(body)), "id", id)
	rec := httptest.NewRecorder()

	f.handler.Refund(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "refund_unavailable")
}

func TestGatewayController_Return_AlwaysOK(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/gateway/return", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	f.handler.Return(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result service.ReturnResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Failed)
	assert.Equal(t, "https://shop.example.com/cart", result.RedirectURL)
}

func TestGatewayController_Return_Approved(t *testing.T) {
	f := newHandlerFixture(t)
	o := testutil.NewTestOrder("1001", 19.99, "USD")
	require.NoError(t, f.repo.Create(context.Background(), o))

	f.gateway.CreatePaymentFn = func(context.Context, simplify.PaymentRequest) (*simplify.Payment, error) {
		return &simplify.Payment{ID: "pay_1", PaymentStatus: simplify.PaymentStatusApproved, AuthCode: "AC1"}, nil
	}

	form := url.Values{}
	form.Set("reference", o.ID.String())
	form.Set("cardToken", "tok_1")
	form.Set("amount", "1999")

	req := httptest.NewRequest(http.MethodPost, "/gateway/return", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	f.handler.Return(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result service.ReturnResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Failed)
	assert.Contains(t, result.RedirectURL, "order-received")
}

func TestGatewayController_AuditLog(t *testing.T) {
	f := newHandlerFixture(t)
	o := testutil.NewTestOrder("1001", 19.99, "USD")
	require.NoError(t, f.repo.Create(context.Background(), o))

	f.gateway.CreatePaymentFn = func(context.Context, simplify.PaymentRequest) (*simplify.Payment, error) {
		return &simplify.Payment{ID: "pay_1", PaymentStatus: simplify.PaymentStatusApproved}, nil
	}

	form := url.Values{}
	form.Set("reference", o.ID.String())
	form.Set("cardToken", "tok_1")
	form.Set("amount", "1999")
	payReq := httptest.NewRequest(http.MethodPost, "/gateway/return", strings.NewReader(form.Encode()))
	payReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	f.handler.Return(httptest.NewRecorder(), payReq)

	req := httptest.NewRequest(http.MethodGet, "/admin/log", nil)
	rec := httptest.NewRecorder()

	f.handler.AuditLog(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuditLogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Entries)
	assert.Contains(t, resp.Entries[0], "Payment Request")
}
