package testutil

import (
	"context"
	"errors"
	"sync"

	domainErrors "github.com/cassiomorais/simplify-gateway/internal/domain/errors"
	"github.com/cassiomorais/simplify-gateway/internal/domain/order"
	"github.com/cassiomorais/simplify-gateway/internal/simplify"
	"github.com/google/uuid"
)

// MemoryOrderRepository is an in-memory order.Repository with the same
// claim semantics as the postgres implementation. UpdateFn, when set,
// replaces Update so tests can inject persistence failures.
type MemoryOrderRepository struct {
	UpdateFn func(ctx context.Context, o *order.Order) error

	mu     sync.Mutex
	orders map[uuid.UUID]*order.Order
	notes  map[uuid.UUID][]order.Note
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[uuid.UUID]*order.Order),
		notes:  make(map[uuid.UUID][]order.Note),
	}
}

func (r *MemoryOrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *MemoryOrderRepository) GetByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domainErrors.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepository) Update(ctx context.Context, o *order.Order) error {
	if r.UpdateFn != nil {
		return r.UpdateFn(ctx, o)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if !ok {
		return domainErrors.ErrOrderNotFound
	}
	stored.Status = o.Status
	stored.Metadata = cloneMeta(o.Metadata)
	return nil
}

func (r *MemoryOrderRepository) AddNote(_ context.Context, orderID uuid.UUID, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[orderID] = append(r.notes[orderID], order.Note{
		ID:      uuid.New(),
		OrderID: orderID,
		Content: content,
	})
	return nil
}

func (r *MemoryOrderRepository) ListNotes(_ context.Context, orderID uuid.UUID) ([]order.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]order.Note(nil), r.notes[orderID]...), nil
}

func (r *MemoryOrderRepository) ClaimCapture(_ context.Context, id uuid.UUID) (bool, error) {
	return r.claim(id, "1")
}

func (r *MemoryOrderRepository) ClaimVoid(_ context.Context, id uuid.UUID) (bool, error) {
	return r.claim(id, "voided")
}

func (r *MemoryOrderRepository) claim(id uuid.UUID, newValue string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, domainErrors.ErrOrderNotFound
	}
	if o.Metadata[order.MetaCaptured] != "0" {
		return false, nil
	}
	o.Metadata[order.MetaCaptured] = newValue
	return true, nil
}

// Notes returns the recorded note texts for an order.
func (r *MemoryOrderRepository) Notes(orderID uuid.UUID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var texts []string
	for _, n := range r.notes[orderID] {
		texts = append(texts, n.Content)
	}
	return texts
}

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	c.Metadata = cloneMeta(o.Metadata)
	return &c
}

func cloneMeta(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// MockGateway is a simplify.Gateway with pluggable behavior per call.
type MockGateway struct {
	CreateCustomerFn      func(ctx context.Context, req simplify.CustomerRequest) (*simplify.Customer, error)
	CreatePaymentFn       func(ctx context.Context, req simplify.PaymentRequest) (*simplify.Payment, error)
	CreateAuthorizationFn func(ctx context.Context, req simplify.AuthorizationRequest) (*simplify.Authorization, error)
	CreateRefundFn        func(ctx context.Context, req simplify.RefundRequest) (*simplify.Refund, error)
	FindAuthorizationFn   func(ctx context.Context, id string) (*simplify.Authorization, error)
	VoidAuthorizationFn   func(ctx context.Context, id string) error
}

func (m *MockGateway) CreateCustomer(ctx context.Context, req simplify.CustomerRequest) (*simplify.Customer, error) {
	if m.CreateCustomerFn == nil {
		return &simplify.Customer{ID: "cust_test"}, nil
	}
	return m.CreateCustomerFn(ctx, req)
}

func (m *MockGateway) CreatePayment(ctx context.Context, req simplify.PaymentRequest) (*simplify.Payment, error) {
	if m.CreatePaymentFn == nil {
		return nil, errors.New("CreatePaymentFn not set")
	}
	return m.CreatePaymentFn(ctx, req)
}

func (m *MockGateway) CreateAuthorization(ctx context.Context, req simplify.AuthorizationRequest) (*simplify.Authorization, error) {
	if m.CreateAuthorizationFn == nil {
		return nil, errors.New("CreateAuthorizationFn not set")
	}
	return m.CreateAuthorizationFn(ctx, req)
}

func (m *MockGateway) CreateRefund(ctx context.Context, req simplify.RefundRequest) (*simplify.Refund, error) {
	if m.CreateRefundFn == nil {
		return nil, errors.New("CreateRefundFn not set")
	}
	return m.CreateRefundFn(ctx, req)
}

func (m *MockGateway) FindAuthorization(ctx context.Context, id string) (*simplify.Authorization, error) {
	if m.FindAuthorizationFn == nil {
		return nil, errors.New("FindAuthorizationFn not set")
	}
	return m.FindAuthorizationFn(ctx, id)
}

func (m *MockGateway) VoidAuthorization(ctx context.Context, id string) error {
	if m.VoidAuthorizationFn == nil {
		return errors.New("VoidAuthorizationFn not set")
	}
	return m.VoidAuthorizationFn(ctx, id)
}

// NoopLocker runs the callback without any locking.
type NoopLocker struct{}

func (NoopLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MemoryTxManager is a service.TransactionManager over a
// MemoryOrderRepository: the repository state is snapshotted before fn
// and restored when fn fails, matching the commit/rollback behavior of
// the postgres transaction manager.
type MemoryTxManager struct {
	Repo *MemoryOrderRepository
}

func (m *MemoryTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	orders, notes := m.Repo.snapshot()
	if err := fn(ctx); err != nil {
		m.Repo.restore(orders, notes)
		return err
	}
	return nil
}

func (r *MemoryOrderRepository) snapshot() (map[uuid.UUID]*order.Order, map[uuid.UUID][]order.Note) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := make(map[uuid.UUID]*order.Order, len(r.orders))
	for id, o := range r.orders {
		orders[id] = cloneOrder(o)
	}
	notes := make(map[uuid.UUID][]order.Note, len(r.notes))
	for id, ns := range r.notes {
		notes[id] = append([]order.Note(nil), ns...)
	}
	return orders, notes
}

func (r *MemoryOrderRepository) restore(orders map[uuid.UUID]*order.Order, notes map[uuid.UUID][]order.Note) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = orders
	r.notes = notes
}
