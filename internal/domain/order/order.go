package order

import (
	"strings"
	"time"

	"github.com/cassiomorais/simplify-gateway/internal/domain/errors"
	"github.com/google/uuid"
)

// Status represents the order status in the state machine
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// PaymentMethodSimplify is the payment method id this service owns.
// Orders paid by other methods are never touched.
const PaymentMethodSimplify = "simplify_commerce"

// Payment metadata keys. The captured flag is a string on purpose: the
// capture guard requires the exact value "0", so an absent key never
// qualifies for capture.
const (
	MetaAuthCode      = "authorization_code"
	MetaCaptured      = "captured"
	MetaCaptureID     = "capture_id"
	MetaTransactionID = "transaction_id"
)

// Address holds one side of the order contact data, as supplied by the
// commerce platform.
type Address struct {
	FirstName string
	LastName  string
	Company   string
	Line1     string
	Line2     string
	City      string
	State     string
	Zip       string
	Country   string
}

// Order is the platform's order as seen by the gateway. This service
// only ever mutates Status, Metadata and the notes trail.
type Order struct {
	ID            uuid.UUID
	Number        string
	Total         float64
	Currency      string
	Email         string
	Billing       Address
	Shipping      Address
	PaymentMethod string
	Status        Status
	Metadata      map[string]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Note is an append-only audit record of a state-machine decision.
type Note struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Content   string
	CreatedAt time.Time
}

// NewOrder creates a pending order owned by the given payment method.
func NewOrder(number string, total float64, currency, method string) *Order {
	now := time.Now()
	return &Order{
		ID:            uuid.New(),
		Number:        number,
		Total:         total,
		Currency:      strings.ToUpper(currency),
		PaymentMethod: method,
		Status:        StatusPending,
		Metadata:      make(map[string]string),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CanTransitionTo checks if the order can transition to the given status
func (o *Order) CanTransitionTo(newStatus Status) bool {
	transitions := map[Status][]Status{
		StatusPending: {
			StatusProcessing,
			StatusCompleted,
			StatusFailed,
			StatusCancelled,
		},
		StatusProcessing: {
			StatusCompleted, // capture
			StatusCancelled, // void
			StatusFailed,
		},
		StatusCompleted: {
			StatusRefunded,
		},
		StatusFailed: {
			StatusProcessing, // buyer retries payment
			StatusCompleted,
		},
		StatusCancelled: {}, // Terminal state
		StatusRefunded:  {}, // Terminal state
	}

	allowed, exists := transitions[o.Status]
	if !exists {
		return false
	}

	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// TransitionTo transitions the order to a new status
func (o *Order) TransitionTo(newStatus Status) error {
	if !o.CanTransitionTo(newStatus) {
		return errors.NewDomainError(
			"invalid_transition",
			"cannot transition from "+string(o.Status)+" to "+string(newStatus),
			errors.ErrInvalidStateTransition,
		)
	}

	o.Status = newStatus
	o.UpdatedAt = time.Now()
	return nil
}

// Authorized records an approved, uncaptured authorization: the order
// moves to processing and the capture flag is armed.
func (o *Order) Authorized(authCode string) error {
	if err := o.TransitionTo(StatusProcessing); err != nil {
		return err
	}
	o.setMeta(MetaAuthCode, authCode)
	o.setMeta(MetaCaptured, "0")
	return nil
}

// PaymentComplete records an immediately-captured payment.
func (o *Order) PaymentComplete(transactionID string) error {
	if err := o.TransitionTo(StatusCompleted); err != nil {
		return err
	}
	o.setMeta(MetaTransactionID, transactionID)
	return nil
}

// MarkCaptured completes the order after a successful capture of a
// prior authorization. An empty captureID records a capture reconciled
// from the gateway side, where no new capture transaction exists.
func (o *Order) MarkCaptured(captureID string) error {
	if err := o.TransitionTo(StatusCompleted); err != nil {
		return err
	}
	o.setMeta(MetaCaptured, "1")
	if captureID != "" {
		o.setMeta(MetaCaptureID, captureID)
	}
	return nil
}

// MarkVoided cancels the order after its authorization was reversed.
// The captured flag moves off "0" so the order can never be captured
// afterwards.
func (o *Order) MarkVoided() error {
	if err := o.TransitionTo(StatusCancelled); err != nil {
		return err
	}
	o.setMeta(MetaCaptured, "voided")
	return nil
}

// MarkFailed transitions the order to failed status
func (o *Order) MarkFailed() error {
	return o.TransitionTo(StatusFailed)
}

// MarkRefunded transitions the order to refunded status
func (o *Order) MarkRefunded() error {
	return o.TransitionTo(StatusRefunded)
}

// IsTerminal checks if the order is in a terminal payment state
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCancelled || o.Status == StatusRefunded
}

// Captured returns the raw captured flag ("0", "1" or "" when unset).
func (o *Order) Captured() string {
	return o.Metadata[MetaCaptured]
}

// AuthorizationCode returns the stored authorization code, if any.
func (o *Order) AuthorizationCode() string {
	return o.Metadata[MetaAuthCode]
}

// PaymentID returns the id a refund must target: the transaction id of
// an immediate payment, falling back to the capture id of a captured
// authorization. Empty means neither exists and the refund cannot be
// performed through this service.
func (o *Order) PaymentID() string {
	if id := o.Metadata[MetaTransactionID]; id != "" {
		return id
	}
	return o.Metadata[MetaCaptureID]
}

// FullName returns the billing contact name.
func (o *Order) FullName() string {
	return strings.TrimSpace(o.Billing.FirstName + " " + o.Billing.LastName)
}

func (o *Order) setMeta(key, value string) {
	if o.Metadata == nil {
		o.Metadata = make(map[string]string)
	}
	o.Metadata[key] = value
	o.UpdatedAt = time.Now()
}
