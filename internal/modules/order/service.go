package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sndev/marketplace-backend/internal/modules/product"
	"github.com/sndev/marketplace-backend/internal/modules/suborder"
	"github.com/sndev/marketplace-backend/internal/platform/apperr"
	"go.uber.org/zap"
)

// Service defines the order management business logic: order CRUD, the
// per-user cart, and confirmation with seller splitting.
type Service interface {
	// Create persists a new order, snapshotting each item's unit price
	// from the product catalog. Status defaults to CART; a user may hold
	// at most one CART order at a time.
	Create(ctx context.Context, req CreateOrderRequest) (*Order, error)

	// GetByID retrieves a full order with its items.
	GetByID(ctx context.Context, id string) (*Order, error)

	// GetAll returns every order, newest first.
	GetAll(ctx context.Context) ([]*Order, error)

	// ListByUser returns all orders belonging to a user.
	ListByUser(ctx context.Context, userID string) ([]*Order, error)

	// Patch updates status and/or payment method on an order. Statuses
	// follow the lifecycle transition table; a cart cannot be patched
	// out of CART, only confirmed.
	Patch(ctx context.Context, id string, req PatchOrderRequest) (*Order, error)

	// Delete removes an order and its items.
	Delete(ctx context.Context, id string) error

	// DeleteByUser removes every order belonging to a user.
	DeleteByUser(ctx context.Context, userID string) error

	// CartByUser returns the user's open CART order. Fetching is a
	// lookup, not an implicit create.
	CartByUser(ctx context.Context, userID string) (*Order, error)

	// UpsertItem adds a product to the cart or changes its quantity;
	// a non-positive quantity on an existing item removes it.
	UpsertItem(ctx context.Context, orderID string, req UpsertItemRequest) (*Order, error)

	// RemoveItem removes one line item by product id.
	RemoveItem(ctx context.Context, orderID, productID string) (*Order, error)

	// Confirm transitions a cart into a confirmed order, partitioning
	// its items into one sub-order per seller exactly once.
	Confirm(ctx context.Context, orderID string) (*Order, error)

	// SubOrdersByParent lists the sub-orders split off an order.
	SubOrdersByParent(ctx context.Context, orderID string) ([]*suborder.SubOrder, error)
}

type service struct {
	repo      Repository
	subOrders suborder.Repository
	products  product.Client
	logger    *zap.Logger
}

// NewService creates a new order service.
func NewService(repo Repository, subOrders suborder.Repository, products product.Client, logger *zap.Logger) Service {
	return &service{repo: repo, subOrders: subOrders, products: products, logger: logger}
}

func (s *service) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "order must contain at least one item")
	}

	status := StatusCart
	if req.Status != "" {
		status = Status(strings.ToUpper(req.Status))
		if !KnownStatus(status) {
			return nil, apperr.Newf(apperr.KindInvalidArgument, "unknown order status: %s", req.Status)
		}
	}

	var payment PaymentMethod
	if req.PaymentMethod != "" {
		payment = PaymentMethod(strings.ToUpper(req.PaymentMethod))
		if !KnownPaymentMethod(payment) {
			return nil, apperr.Newf(apperr.KindInvalidArgument, "unknown payment method: %s", req.PaymentMethod)
		}
	}

	if status == StatusCart {
		if _, err := s.repo.FindCartByUser(ctx, req.UserID); err == nil {
			return nil, apperr.Newf(apperr.KindInvalidState, "user %s already has an open cart", req.UserID)
		} else if err != ErrNotFound {
			return nil, err
		}
	}

	now := time.Now().UTC()
	o := &Order{
		ID:            uuid.New(),
		UserID:        req.UserID,
		Status:        status,
		PaymentMethod: payment,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, ci := range req.Items {
		if ci.Quantity < 1 {
			return nil, apperr.Newf(apperr.KindInvalidArgument, "quantity must be >= 1 for product %s", ci.ProductID)
		}
		p, err := s.products.GetByID(ctx, ci.ProductID)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, &OrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: ci.ProductID,
			Quantity:  ci.Quantity,
			UnitPrice: p.Price,
		})
	}
	o.RecomputeTotal()

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("user_id", o.UserID),
		zap.String("status", string(o.Status)))
	return o, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Order, error) {
	return s.load(ctx, id)
}

func (s *service) GetAll(ctx context.Context) ([]*Order, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Patch(ctx context.Context, id string, req PatchOrderRequest) (*Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PaymentMethod != "" {
		payment := PaymentMethod(strings.ToUpper(req.PaymentMethod))
		if !KnownPaymentMethod(payment) {
			return nil, apperr.Newf(apperr.KindInvalidArgument, "unknown payment method: %s", req.PaymentMethod)
		}
		o.PaymentMethod = payment
	}

	if req.Status != "" {
		next := Status(strings.ToUpper(req.Status))
		if !KnownStatus(next) {
			return nil, apperr.Newf(apperr.KindInvalidArgument, "unknown order status: %s", req.Status)
		}
		if next != o.Status {
			if o.Status == StatusCart {
				return nil, apperr.New(apperr.KindInvalidState, "a cart leaves CART only through confirmation")
			}
			if !CanTransition(o.Status, next) {
				return nil, apperr.Newf(apperr.KindInvalidState,
					"cannot transition order from %s to %s", o.Status, next)
			}
			o.Status = next
		}
	}

	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, uid); err != nil {
		if err == ErrNotFound {
			return apperr.Newf(apperr.KindNotFound, "order not found with id: %s", id)
		}
		return err
	}
	return nil
}

func (s *service) DeleteByUser(ctx context.Context, userID string) error {
	return s.repo.DeleteByUser(ctx, userID)
}

func (s *service) SubOrdersByParent(ctx context.Context, orderID string) ([]*suborder.SubOrder, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.subOrders.ListByParent(ctx, o.ID)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (s *service) load(ctx context.Context, id string) (*Order, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	o, err := s.repo.GetByID(ctx, uid)
	if err == ErrNotFound {
		return nil, apperr.Newf(apperr.KindNotFound, "order not found with id: %s", id)
	}
	return o, err
}

func (s *service) save(ctx context.Context, o *Order) error {
	err := s.repo.Save(ctx, o)
	switch err {
	case nil:
		return nil
	case ErrNotFound:
		return apperr.Newf(apperr.KindNotFound, "order not found with id: %s", o.ID)
	case ErrVersionConflict:
		return apperr.Newf(apperr.KindConflict, "order %s was modified concurrently", o.ID)
	default:
		return err
	}
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperr.Newf(apperr.KindInvalidArgument, "invalid order id: %s", id)
	}
	return uid, nil
}
