package order

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an order. CART is the single
// mutable pre-purchase state; everything else is the confirmed lifecycle.
type Status string

const (
	StatusCart       Status = "CART"
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// validTransitions defines the allowed status state machine. A cart
// only leaves CART through confirmation, never through a plain patch.
var validTransitions = map[Status][]Status{
	StatusCart:       {},
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether an order may move from one status to another.
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

// PaymentMethod indicates how the buyer intends to pay.
type PaymentMethod string

const (
	PayDebitCard      PaymentMethod = "DEBIT_CARD"
	PayPaypal         PaymentMethod = "PAYPAL"
	PayWave           PaymentMethod = "WAVE"
	PayCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PayOrangeMoney    PaymentMethod = "ORANGE_MONEY"
)

var paymentMethods = map[PaymentMethod]bool{
	PayDebitCard:      true,
	PayPaypal:         true,
	PayWave:           true,
	PayCashOnDelivery: true,
	PayOrangeMoney:    true,
}

// KnownPaymentMethod reports whether m is one of the accepted methods.
func KnownPaymentMethod(m PaymentMethod) bool { return paymentMethods[m] }

// Order represents either a user's open cart or a confirmed purchase.
// Total is always derived from the items, never trusted from input.
type Order struct {
	ID            uuid.UUID     `json:"id"`
	UserID        string        `json:"user_id"`
	Status        Status        `json:"status"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	Total         float64       `json:"total"`
	IsSplit       bool          `json:"is_split"`
	Version       int64         `json:"-"`
	Items         []*OrderItem  `json:"items"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// OrderItem is a single line item. UnitPrice is snapshotted from the
// catalog when the item enters the order; SellerID stays nil until
// enrichment at confirmation time.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID string    `json:"product_id"`
	SellerID  *string   `json:"seller_id,omitempty"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}

// RecomputeTotal rederives the order total from its items. Called after
// every cart mutation so the stored total is never incrementally trusted.
func (o *Order) RecomputeTotal() {
	var total float64
	for _, item := range o.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	o.Total = round2(total)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// CreateOrderItem is one requested line in a new order.
type CreateOrderItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

// CreateOrderRequest is the payload for creating a new order. Status
// defaults to CART when omitted.
type CreateOrderRequest struct {
	UserID        string            `json:"user_id" validate:"required"`
	Status        string            `json:"status,omitempty"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	Items         []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
}

// PatchOrderRequest updates status and/or payment method on an order.
type PatchOrderRequest struct {
	Status        string `json:"status,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// UpsertItemRequest adds a product to a cart or changes its quantity.
// A non-positive quantity on an existing item removes it. Prices are
// never taken from the caller; every upsert snapshots the current
// catalog price.
type UpsertItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}
