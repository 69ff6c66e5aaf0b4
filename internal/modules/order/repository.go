package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sndev/marketplace-backend/internal/modules/suborder"
)

var (
	// ErrNotFound is returned when no order matches the given id.
	ErrNotFound = errors.New("order not found")

	// ErrVersionConflict is returned when a save lost an optimistic
	// concurrency race; the caller should reload and retry.
	ErrVersionConflict = errors.New("order version conflict")
)

// Repository defines data access for orders. Every write persists the
// full order (row plus items) inside a single transaction.
type Repository interface {
	// Create persists a new order and its items atomically.
	Create(ctx context.Context, o *Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetAll returns every order, newest first.
	GetAll(ctx context.Context) ([]*Order, error)

	// ListByUser returns all of a user's orders, newest first, items included.
	ListByUser(ctx context.Context, userID string) ([]*Order, error)

	// FindCartByUser returns the user's single CART-status order, or
	// ErrNotFound if the user has no open cart.
	FindCartByUser(ctx context.Context, userID string) (*Order, error)

	// Save replaces an existing order and its items, guarded by the
	// order's version. Returns ErrVersionConflict on a stale write.
	Save(ctx context.Context, o *Order) error

	// SaveSplit persists the confirmed order together with its freshly
	// generated sub-orders in one transaction, so either all sub-orders
	// exist and the parent is marked split, or nothing changed.
	SaveSplit(ctx context.Context, o *Order, subOrders []*suborder.SubOrder) error

	// Delete removes an order and its items.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByUser removes every order belonging to a user.
	DeleteByUser(ctx context.Context, userID string) error
}
