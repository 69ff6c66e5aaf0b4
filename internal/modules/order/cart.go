package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/sndev/marketplace-backend/internal/platform/apperr"
	"go.uber.org/zap"
)

// Cart operations. The cart is just the user's single CART-status
// order; every mutation recomputes the total and persists the full
// order, so no partial write is ever visible.

func (s *service) CartByUser(ctx context.Context, userID string) (*Order, error) {
	o, err := s.repo.FindCartByUser(ctx, userID)
	if err == ErrNotFound {
		return nil, apperr.Newf(apperr.KindNotFound, "no active cart found for user: %s", userID)
	}
	return o, err
}

func (s *service) UpsertItem(ctx context.Context, orderID string, req UpsertItemRequest) (*Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusCart {
		return nil, apperr.Newf(apperr.KindInvalidState, "order %s is no longer a cart", orderID)
	}

	var existing *OrderItem
	for _, item := range o.Items {
		if item.ProductID == req.ProductID {
			existing = item
			break
		}
	}

	if existing != nil {
		existing.Quantity = req.Quantity
		if existing.Quantity <= 0 {
			o.Items = removeByProduct(o.Items, req.ProductID)
		} else {
			// Quantity changes also refresh the stored price from the
			// catalog so a stale cart never checks out at an old price.
			p, err := s.products.GetByID(ctx, req.ProductID)
			if err != nil {
				return nil, err
			}
			existing.UnitPrice = p.Price
		}
	} else {
		if req.Quantity < 1 {
			return nil, apperr.New(apperr.KindInvalidArgument, "quantity must be positive to add a new item")
		}
		p, err := s.products.GetByID(ctx, req.ProductID)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, &OrderItem{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			UnitPrice: p.Price,
		})
	}

	o.RecomputeTotal()
	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("cart updated",
		zap.String("order_id", o.ID.String()),
		zap.String("product_id", req.ProductID),
		zap.Int("quantity", req.Quantity),
		zap.Float64("total", o.Total))
	return o, nil
}

func (s *service) RemoveItem(ctx context.Context, orderID, productID string) (*Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusCart {
		return nil, apperr.Newf(apperr.KindInvalidState, "order %s is no longer a cart", orderID)
	}
	if len(o.Items) == 0 {
		return nil, apperr.Newf(apperr.KindNotFound, "no items in order: %s", orderID)
	}

	found := false
	for _, item := range o.Items {
		if item.ProductID == productID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperr.Newf(apperr.KindNotFound, "product not found in order: %s", productID)
	}

	o.Items = removeByProduct(o.Items, productID)
	o.RecomputeTotal()
	if err := s.save(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func removeByProduct(items []*OrderItem, productID string) []*OrderItem {
	kept := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	return kept
}
