package service

import "context"

// TransactionManager defines the interface for transaction management.
// The service uses it to make the capture/void claim and the order
// status update atomic.
type TransactionManager interface {
	// WithTransaction executes the given function within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// Otherwise, it is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
