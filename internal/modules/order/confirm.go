package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sndev/marketplace-backend/internal/modules/suborder"
	"github.com/sndev/marketplace-backend/internal/platform/apperr"
	"go.uber.org/zap"
)

// Confirm turns a cart into a confirmed order and partitions its items
// into one sub-order per distinct seller. Splitting happens exactly
// once: the is_split flag guards re-entry, and the sub-order batch and
// the parent flag are written in one repository transaction so a crash
// cannot leave sub-orders behind an unmarked parent.
func (s *service) Confirm(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.IsSplit {
		return nil, apperr.New(apperr.KindInvalidState, "order has already been split into sub-orders")
	}
	if len(o.Items) == 0 {
		return nil, apperr.New(apperr.KindInvalidArgument, "cannot confirm an order with no items")
	}

	// Enrichment: resolve the owning seller for every item that lacks
	// one. Any lookup failure aborts the whole confirmation; nothing
	// partially enriched is persisted.
	for _, item := range o.Items {
		if item.SellerID != nil {
			continue
		}
		p, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInvalidArgument, err,
				"unable to fetch seller information for product: "+item.ProductID)
		}
		sellerID := p.SellerID
		item.SellerID = &sellerID
	}

	// Partition by seller, keeping first-encounter order. Items still
	// without a seller are passed through unpartitioned, not rejected.
	itemsBySeller := map[string][]*OrderItem{}
	var sellers []string
	for _, item := range o.Items {
		if item.SellerID == nil || *item.SellerID == "" {
			continue
		}
		id := *item.SellerID
		if _, seen := itemsBySeller[id]; !seen {
			sellers = append(sellers, id)
		}
		itemsBySeller[id] = append(itemsBySeller[id], item)
	}

	now := time.Now().UTC()
	subOrders := make([]*suborder.SubOrder, 0, len(sellers))
	for _, sellerID := range sellers {
		sellerItems := itemsBySeller[sellerID]

		var subTotal float64
		items := make([]suborder.Item, 0, len(sellerItems))
		for _, item := range sellerItems {
			subTotal += float64(item.Quantity) * item.UnitPrice
			items = append(items, suborder.Item{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}

		subOrders = append(subOrders, &suborder.SubOrder{
			ID:            uuid.New(),
			ParentOrderID: o.ID,
			SellerID:      sellerID,
			UserID:        o.UserID,
			SubTotal:      round2(subTotal),
			Status:        suborder.StatusPending,
			Items:         items,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	o.Status = StatusPending
	o.IsSplit = true
	if err := s.repo.SaveSplit(ctx, o, subOrders); err != nil {
		switch err {
		case ErrNotFound:
			return nil, apperr.Newf(apperr.KindNotFound, "order not found with id: %s", orderID)
		case ErrVersionConflict:
			return nil, apperr.Newf(apperr.KindConflict, "order %s was modified concurrently", orderID)
		}
		return nil, err
	}

	s.logger.Info("order confirmed and split",
		zap.String("order_id", o.ID.String()),
		zap.String("user_id", o.UserID),
		zap.Int("sub_orders", len(subOrders)),
		zap.Float64("total", o.Total))
	return o, nil
}
