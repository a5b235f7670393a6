package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/cassiomorais/simplify-gateway/internal/domain/errors"
	"github.com/cassiomorais/simplify-gateway/internal/domain/order"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository persists orders and notes. Payment metadata lives in
// a jsonb column; the captured flag inside it is only ever flipped
// through the Claim methods so concurrent captures and voids cannot
// both win.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

const orderColumns = `
	id, number, total, currency, email,
	billing_first_name, billing_last_name, billing_company,
	billing_line1, billing_line2, billing_city, billing_state, billing_zip, billing_country,
	shipping_first_name, shipping_last_name, shipping_company,
	shipping_line1, shipping_line2, shipping_city, shipping_state, shipping_zip, shipping_country,
	payment_method, status, metadata, created_at, updated_at`

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	row := r.db(ctx).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	metadata, err := json.Marshal(o.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	_, err = r.db(ctx).Exec(ctx,
		`INSERT INTO orders (`+orderColumns+`)
		 VALUES ($1, $2, $3, $4, $5,
		         $6, $7, $8, $9, $10, $11, $12, $13, $14,
		         $15, $16, $17, $18, $19, $20, $21, $22, $23,
		         $24, $25, $26, $27, $28)`,
		o.ID, o.Number, o.Total, o.Currency, o.Email,
		o.Billing.FirstName, o.Billing.LastName, o.Billing.Company,
		o.Billing.Line1, o.Billing.Line2, o.Billing.City, o.Billing.State, o.Billing.Zip, o.Billing.Country,
		o.Shipping.FirstName, o.Shipping.LastName, o.Shipping.Company,
		o.Shipping.Line1, o.Shipping.Line2, o.Shipping.City, o.Shipping.State, o.Shipping.Zip, o.Shipping.Country,
		o.PaymentMethod, o.Status, metadata, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// Update writes back the mutable part of an order: status and payment
// metadata. Everything else belongs to the platform.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	metadata, err := json.Marshal(o.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE orders SET status = $2, metadata = $3, updated_at = $4 WHERE id = $1`,
		o.ID, o.Status, metadata, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) AddNote(ctx context.Context, orderID uuid.UUID, content string) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO order_notes (id, order_id, content, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.New(), orderID, content, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert order note: %w", err)
	}
	return nil
}

func (r *OrderRepository) ListNotes(ctx context.Context, orderID uuid.UUID) ([]order.Note, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, order_id, content, created_at FROM order_notes
		 WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order notes: %w", err)
	}
	defer rows.Close()

	var notes []order.Note
	for rows.Next() {
		var n order.Note
		if err := rows.Scan(&n.ID, &n.OrderID, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ClaimCapture flips the captured flag "0" -> "1". The WHERE guard
// makes the flip first-writer-wins across instances.
func (r *OrderRepository) ClaimCapture(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.claim(ctx, id, "1")
}

// ClaimVoid flips the captured flag "0" -> "voided" so a concurrent
// capture can no longer claim the same authorization.
func (r *OrderRepository) ClaimVoid(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.claim(ctx, id, "voided")
}

func (r *OrderRepository) claim(ctx context.Context, id uuid.UUID, newValue string) (bool, error) {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE orders
		 SET metadata = jsonb_set(metadata, '{captured}', to_jsonb($2::text)),
		     updated_at = NOW()
		 WHERE id = $1 AND metadata->>'captured' = '0'`,
		id, newValue,
	)
	if err != nil {
		return false, fmt.Errorf("claim captured flag: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	var metadata []byte

	err := row.Scan(
		&o.ID, &o.Number, &o.Total, &o.Currency, &o.Email,
		&o.Billing.FirstName, &o.Billing.LastName, &o.Billing.Company,
		&o.Billing.Line1, &o.Billing.Line2, &o.Billing.City, &o.Billing.State, &o.Billing.Zip, &o.Billing.Country,
		&o.Shipping.FirstName, &o.Shipping.LastName, &o.Shipping.Company,
		&o.Shipping.Line1, &o.Shipping.Line2, &o.Shipping.City, &o.Shipping.State, &o.Shipping.Zip, &o.Shipping.Country,
		&o.PaymentMethod, &o.Status, &metadata, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	o.Metadata = make(map[string]string)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &o.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
	}
	return &o, nil
}
