package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists orders and their audit notes.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	Update(ctx context.Context, o *Order) error
	AddNote(ctx context.Context, orderID uuid.UUID, content string) error
	ListNotes(ctx context.Context, orderID uuid.UUID) ([]Note, error)

	// ClaimCapture atomically flips the captured flag from "0" to "1".
	// It returns false when the flag was not exactly "0", which means a
	// concurrent capture already claimed the order.
	ClaimCapture(ctx context.Context, id uuid.UUID) (bool, error)

	// ClaimVoid atomically clears the captured flag, guarded the same
	// way: it only succeeds while the flag is exactly "0".
	ClaimVoid(ctx context.Context, id uuid.UUID) (bool, error)
}
