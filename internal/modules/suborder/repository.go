package suborder

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no sub-order matches the given id.
var ErrNotFound = errors.New("sub-order not found")

// Repository defines data access for sub-orders. Creation happens in the
// order module's confirmation transaction; this side only reads and
// advances status.
type Repository interface {
	// GetByID retrieves a single sub-order with its item snapshot.
	GetByID(ctx context.Context, id uuid.UUID) (*SubOrder, error)

	// Update persists status and updatedAt for an existing sub-order.
	Update(ctx context.Context, s *SubOrder) error

	// ListByParent returns every sub-order split off a given order.
	ListByParent(ctx context.Context, parentOrderID uuid.UUID) ([]*SubOrder, error)

	// ListBySeller returns a page of a seller's sub-orders sorted by
	// createdAt descending, optionally filtered by exact status.
	ListBySeller(ctx context.Context, sellerID string, status Status, limit, offset int) ([]*SubOrder, error)

	// CountBySeller returns the total matching ListBySeller without paging.
	CountBySeller(ctx context.Context, sellerID string, status Status) (int64, error)
}
