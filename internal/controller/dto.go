package controller

import (
	"time"

	"github.com/cassiomorais/simplify-gateway/internal/domain/order"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (float64 for money, string for IDs, validation tags).
// Controllers convert these to domain types before calling business logic.

// AddressRequest carries one side of the order contact data.
type AddressRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company,omitempty"`
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// CreateOrderRequest holds the input for registering an order.
type CreateOrderRequest struct {
	Number   string         `json:"number" validate:"required"`
	Total    float64        `json:"total" validate:"required,gt=0"`
	Currency string         `json:"currency" validate:"required,len=3"`
	Email    string         `json:"email" validate:"omitempty,email"`
	Billing  AddressRequest `json:"billing"`
	Shipping AddressRequest `json:"shipping"`
}

// RefundOrderRequest holds the input for refunding an order.
type RefundOrderRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Reason string  `json:"reason,omitempty"`
}

// --- Response DTOs ---

// AddressResponse mirrors AddressRequest in API responses.
type AddressResponse struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Line1     string `json:"line1,omitempty"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Country   string `json:"country,omitempty"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID            string            `json:"id"`
	Number        string            `json:"number"`
	Total         float64           `json:"total"`
	Currency      string            `json:"currency"`
	Email         string            `json:"email,omitempty"`
	PaymentMethod string            `json:"payment_method"`
	Status        string            `json:"status"`
	Billing       AddressResponse   `json:"billing"`
	Shipping      AddressResponse   `json:"shipping"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Notes         []NoteResponse    `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// NoteResponse represents an order note in API responses.
type NoteResponse struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditLogResponse carries the decrypted audit trail.
type AuditLogResponse struct {
	Entries []string `json:"entries"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromOrder converts a domain order to API response.
func FromOrder(o *order.Order, notes []order.Note) *OrderResponse {
	resp := &OrderResponse{
		ID:            o.ID.String(),
		Number:        o.Number,
		Total:         o.Total,
		Currency:      o.Currency,
		Email:         o.Email,
		PaymentMethod: o.PaymentMethod,
		Status:        string(o.Status),
		Billing:       fromAddress(o.Billing),
		Shipping:      fromAddress(o.Shipping),
		Metadata:      o.Metadata,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, n := range notes {
		resp.Notes = append(resp.Notes, NoteResponse{Content: n.Content, CreatedAt: n.CreatedAt})
	}
	return resp
}

func fromAddress(a order.Address) AddressResponse {
	return AddressResponse{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Company:   a.Company,
		Line1:     a.Line1,
		Line2:     a.Line2,
		City:      a.City,
		State:     a.State,
		Zip:       a.Zip,
		Country:   a.Country,
	}
}

func toAddress(a AddressRequest) order.Address {
	return order.Address{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Company:   a.Company,
		Line1:     a.Line1,
		Line2:     a.Line2,
		City:      a.City,
		State:     a.State,
		Zip:       a.Zip,
		Country:   a.Country,
	}
}
