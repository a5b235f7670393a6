package simplify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("sbpr_test_key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestCreatePayment_Approved(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payment", r.URL.Path)

		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "sbpr_test_key", user)

		var req PaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(1999), req.Amount)
		assert.Equal(t, "USD", req.Currency)

		json.NewEncoder(w).Encode(Payment{
			ID:            "pay_123",
			PaymentStatus: PaymentStatusApproved,
			AuthCode:      "auth_abc",
		})
	})

	payment, err := client.CreatePayment(context.Background(), PaymentRequest{
		Amount:   1999,
		Currency: "USD",
		Token:    "tok_xyz",
	})
	require.NoError(t, err)
	assert.Equal(t, "pay_123", payment.ID)
	assert.Equal(t, PaymentStatusApproved, payment.PaymentStatus)
}

func TestCreatePayment_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{
			"error": {
				"code": "validation",
				"message": "Field errors",
				"fieldErrors": [
					{"field": "payment", "code": "payment.already.captured", "message": "This payment has already been captured"}
				]
			},
			"reference": "ref_1"
		}`))
	})

	_, err := client.CreatePayment(context.Background(), PaymentRequest{Amount: 1999, Currency: "USD"})
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, ClassAlreadyCaptured, apiErr.Class())
	assert.Equal(t, "ref_1", apiErr.Reference)
}

func TestCreatePayment_MalformedErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})

	_, err := client.CreatePayment(context.Background(), PaymentRequest{Amount: 100, Currency: "USD"})
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "unknown", apiErr.Code)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestFindAndVoidAuthorization(t *testing.T) {
	var voided bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/authorization/auth_1", r.URL.Path)
			json.NewEncoder(w).Encode(Authorization{ID: "auth_1", PaymentStatus: PaymentStatusApproved})
		case http.MethodDelete:
			assert.Equal(t, "/authorization/auth_1", r.URL.Path)
			voided = true
			w.Write([]byte(`{}`))
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	})

	auth, err := client.FindAuthorization(context.Background(), "auth_1")
	require.NoError(t, err)
	assert.Equal(t, "auth_1", auth.ID)

	require.NoError(t, client.VoidAuthorization(context.Background(), "auth_1"))
	assert.True(t, voided)
}

func TestTransportError_IsNotAPIError(t *testing.T) {
	client := NewClient("sbpr_test_key", WithBaseURL("http://127.0.0.1:1"))

	_, err := client.CreatePayment(context.Background(), PaymentRequest{Amount: 100, Currency: "USD"})
	require.Error(t, err)
	_, ok := AsAPIError(err)
	assert.False(t, ok)
}
