package stats

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sndev/marketplace-backend/internal/modules/order"
	"github.com/sndev/marketplace-backend/internal/modules/product"
	"go.uber.org/zap"
)

// topN bounds the ranking lists in the user summary.
const topN = 5

// Service computes purchase-history aggregates. All operations are
// read-only folds over stored orders; safe to run concurrently.
type Service interface {
	// UserStatistics summarises a user's non-cart orders: totals plus
	// top-5 products by quantity and by revenue.
	UserStatistics(ctx context.Context, userID string) (*UserProfileStatistics, error)
}

type service struct {
	orders   order.Repository
	products product.Client
	logger   *zap.Logger
}

// NewService creates a new statistics service.
func NewService(orders order.Repository, products product.Client, logger *zap.Logger) Service {
	return &service{orders: orders, products: products, logger: logger}
}

func (s *service) UserStatistics(ctx context.Context, userID string) (*UserProfileStatistics, error) {
	all, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var userOrders []*order.Order
	for _, o := range all {
		if o.Status != order.StatusCart {
			userOrders = append(userOrders, o)
		}
	}

	result := &UserProfileStatistics{
		UserID:        userID,
		MostPurchased: []*ProductStatistics{},
		BestSelling:   []*ProductStatistics{},
	}
	result.TotalOrders = int64(len(userOrders))
	for _, o := range userOrders {
		result.TotalSpent += o.Total
	}
	result.TotalSpent = round2(result.TotalSpent)

	// Group items by product in first-encounter order so ranking ties
	// stay stable across runs.
	type group struct {
		stats    *ProductStatistics
		orderIDs map[uuid.UUID]bool
	}
	groups := map[string]*group{}
	var productIDs []string
	for _, o := range userOrders {
		for _, item := range o.Items {
			g, ok := groups[item.ProductID]
			if !ok {
				g = &group{
					stats:    &ProductStatistics{ProductID: item.ProductID},
					orderIDs: map[uuid.UUID]bool{},
				}
				groups[item.ProductID] = g
				productIDs = append(productIDs, item.ProductID)
			}
			g.stats.TotalQuantity += item.Quantity
			g.stats.TotalRevenue += float64(item.Quantity) * item.UnitPrice
			g.orderIDs[item.OrderID] = true
		}
	}

	// Best-effort name resolution, one lookup per distinct product. A
	// failed lookup degrades to the product id instead of aborting the
	// whole aggregation.
	ranked := make([]*ProductStatistics, 0, len(productIDs))
	for _, id := range productIDs {
		g := groups[id]
		g.stats.OrderCount = int64(len(g.orderIDs))
		g.stats.TotalRevenue = round2(g.stats.TotalRevenue)
		g.stats.ProductName = id
		if p, err := s.products.GetByID(ctx, id); err == nil {
			g.stats.ProductName = p.Name
		} else {
			s.logger.Warn("product name lookup degraded",
				zap.String("product_id", id),
				zap.Error(err))
		}
		ranked = append(ranked, g.stats)
	}

	result.MostPurchased = topBy(ranked, func(a, b *ProductStatistics) bool {
		return a.TotalQuantity > b.TotalQuantity
	})
	result.BestSelling = topBy(ranked, func(a, b *ProductStatistics) bool {
		return a.TotalRevenue > b.TotalRevenue
	})
	return result, nil
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// topBy returns the first topN entries under less, without disturbing
// the shared input slice.
func topBy(in []*ProductStatistics, less func(a, b *ProductStatistics) bool) []*ProductStatistics {
	out := make([]*ProductStatistics, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}
