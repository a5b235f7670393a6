// Package simplify is the client adapter for the Simplify card API:
// a typed gateway interface, the HTTP implementation and a circuit
// breaker wrapper.
package simplify

import "context"

// PaymentStatusApproved is the only status the processor returns for
// a successful transaction. Anything else is a decline.
const PaymentStatusApproved = "APPROVED"

// CustomerRequest creates a customer record at the processor before
// charging. Best effort; a payment can proceed without one.
type CustomerRequest struct {
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// Customer is the processor's customer record.
type Customer struct {
	ID string `json:"id"`
}

// PaymentRequest charges a card token, or captures a previous
// authorization when Authorization is set instead of Token.
type PaymentRequest struct {
	Amount        int64          `json:"amount"`
	Currency      string         `json:"currency"`
	Description   string         `json:"description,omitempty"`
	Reference     string         `json:"reference,omitempty"`
	Token         string         `json:"token,omitempty"`
	Customer      string         `json:"customer,omitempty"`
	Authorization string         `json:"authorization,omitempty"`
	Order         map[string]any `json:"order,omitempty"`
}

// Payment is the processor's response to a charge or capture.
type Payment struct {
	ID            string `json:"id"`
	PaymentStatus string `json:"paymentStatus"`
	AuthCode      string `json:"authCode"`
	Captured      bool   `json:"captured"`
}

// AuthorizationRequest places a hold on a card token without
// capturing.
type AuthorizationRequest struct {
	Amount      int64          `json:"amount"`
	Currency    string         `json:"currency"`
	Description string         `json:"description,omitempty"`
	Reference   string         `json:"reference,omitempty"`
	Token       string         `json:"token,omitempty"`
	Customer    string         `json:"customer,omitempty"`
	Order       map[string]any `json:"order,omitempty"`
}

// Authorization is the processor's hold record. Captured reports
// whether the processor captured immediately despite the authorize
// request.
type Authorization struct {
	ID            string `json:"id"`
	PaymentStatus string `json:"paymentStatus"`
	AuthCode      string `json:"authCode"`
	Captured      bool   `json:"captured"`
}

// RefundRequest refunds a settled payment or capture.
type RefundRequest struct {
	Amount    int64  `json:"amount"`
	Payment   string `json:"payment"`
	Reason    string `json:"reason,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// Refund is the processor's refund record.
type Refund struct {
	ID            string `json:"id"`
	PaymentStatus string `json:"paymentStatus"`
}

// Gateway is the boundary to the card processor. Implementations
// return *APIError for errors the processor reported and plain errors
// for transport failures. Mutating calls are never retried by
// implementations; retry decisions belong to the caller.
type Gateway interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error)
	CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error)
	CreateAuthorization(ctx context.Context, req AuthorizationRequest) (*Authorization, error)
	CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error)
	FindAuthorization(ctx context.Context, id string) (*Authorization, error)
	VoidAuthorization(ctx context.Context, id string) error
}
