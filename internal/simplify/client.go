package simplify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultAPIBase is the production API endpoint.
const DefaultAPIBase = "https://api.simplify.com/v1/api"

const defaultTimeout = 30 * time.Second

// Client is the HTTP implementation of Gateway. Credentials follow
// the processor's scheme: the private key authenticates via basic
// auth, the public key only ever appears in hosted-page arguments.
type Client struct {
	baseURL    string
	privateKey string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint, for custom gateway hosts
// and tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a gateway client authenticating with the given
// private key.
func NewClient(privateKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultAPIBase,
		privateKey: privateKey,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	var customer Customer
	if err := c.do(ctx, http.MethodPost, "/customer", req, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/payment", req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) CreateAuthorization(ctx context.Context, req AuthorizationRequest) (*Authorization, error) {
	var auth Authorization
	if err := c.do(ctx, http.MethodPost, "/authorization", req, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

func (c *Client) CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error) {
	var refund Refund
	if err := c.do(ctx, http.MethodPost, "/refund", req, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

func (c *Client) FindAuthorization(ctx context.Context, id string) (*Authorization, error) {
	var auth Authorization
	if err := c.do(ctx, http.MethodGet, "/authorization/"+id, nil, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

func (c *Client) VoidAuthorization(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/authorization/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.SetBasicAuth(c.privateKey, "")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading gateway response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseAPIError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding gateway response: %w", err)
		}
	}
	return nil
}

type errorEnvelope struct {
	Error struct {
		Code        string       `json:"code"`
		Message     string       `json:"message"`
		FieldErrors []FieldError `json:"fieldErrors"`
	} `json:"error"`
	Reference string `json:"reference"`
}

func parseAPIError(status int, raw []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Error.Code == "" && env.Error.Message == "" {
		return &APIError{
			Status:  status,
			Code:    "unknown",
			Message: fmt.Sprintf("unexpected gateway response (HTTP %d)", status),
		}
	}
	return &APIError{
		Status:      status,
		Code:        env.Error.Code,
		Message:     env.Error.Message,
		Reference:   env.Reference,
		FieldErrors: env.Error.FieldErrors,
	}
}
