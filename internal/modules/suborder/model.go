package suborder

import (
	"time"

	"github.com/google/uuid"
)

// Status is the seller-facing fulfilment state of a sub-order. It moves
// independently of the parent order.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// validTransitions defines the allowed status state machine.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether a sub-order may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// KnownStatus reports whether s is one of the closed status values.
func KnownStatus(s Status) bool {
	_, ok := validTransitions[s]
	return ok
}

// SubOrder is the seller-scoped shard of a confirmed order. Exactly one
// exists per (parent order, seller) pair, created at confirmation time.
type SubOrder struct {
	ID            uuid.UUID `json:"id"`
	ParentOrderID uuid.UUID `json:"parent_order_id"`
	SellerID      string    `json:"seller_id"`
	UserID        string    `json:"user_id"`
	SubTotal      float64   `json:"sub_total"`
	Status        Status    `json:"status"`
	Items         []Item    `json:"items"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Item is the sub-order's snapshot of one parent order line. Prices are
// frozen at confirmation; later catalog changes never touch it.
type Item struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// UpdateStatusRequest is the payload for advancing a sub-order's status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Page is the envelope returned by seller listings.
type Page struct {
	Content       []*SubOrder `json:"content"`
	Page          int         `json:"page"`
	Size          int         `json:"size"`
	TotalElements int64       `json:"total_elements"`
	TotalPages    int         `json:"total_pages"`
}
