package stats

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sndev/marketplace-backend/internal/modules/order"
	"github.com/sndev/marketplace-backend/internal/modules/product"
	"github.com/sndev/marketplace-backend/internal/modules/suborder"
	"github.com/sndev/marketplace-backend/internal/platform/apperr"
)

type stubOrderRepo struct{ orders []*order.Order }

func (r *stubOrderRepo) Create(context.Context, *order.Order) error { return nil }
func (r *stubOrderRepo) GetByID(context.Context, uuid.UUID) (*order.Order, error) {
	return nil, order.ErrNotFound
}
func (r *stubOrderRepo) GetAll(context.Context) ([]*order.Order, error) { return r.orders, nil }
func (r *stubOrderRepo) ListByUser(_ context.Context, userID string) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}
func (r *stubOrderRepo) FindCartByUser(context.Context, string) (*order.Order, error) {
	return nil, order.ErrNotFound
}
func (r *stubOrderRepo) Save(context.Context, *order.Order) error { return nil }
func (r *stubOrderRepo) SaveSplit(context.Context, *order.Order, []*suborder.SubOrder) error {
	return nil
}
func (r *stubOrderRepo) Delete(context.Context, uuid.UUID) error    { return nil }
func (r *stubOrderRepo) DeleteByUser(context.Context, string) error { return nil }

type stubProducts struct {
	names   map[string]string
	failing map[string]bool
	calls   int
}

func (c *stubProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	c.calls++
	if c.failing[id] {
		return nil, apperr.Newf(apperr.KindUnavailable, "product service unreachable for product %s", id)
	}
	name, ok := c.names[id]
	if !ok {
		return nil, apperr.Newf(apperr.KindNotFound, "product not found: %s", id)
	}
	return &product.Product{ID: id, Name: name, Price: 1, SellerID: "s"}, nil
}

func confirmedOrder(userID string, total float64, items ...*order.OrderItem) *order.Order {
	o := &order.Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: order.StatusConfirmed,
		Total:  total,
		Items:  items,
	}
	for _, item := range items {
		item.OrderID = o.ID
	}
	return o
}

func item(productID string, qty int, price float64) *order.OrderItem {
	return &order.OrderItem{ID: uuid.New(), ProductID: productID, Quantity: qty, UnitPrice: price}
}

func TestUserStatisticsExcludesCarts(t *testing.T) {
	repo := &stubOrderRepo{orders: []*order.Order{
		confirmedOrder("u1", 30, item("p1", 3, 10)),
		{ID: uuid.New(), UserID: "u1", Status: order.StatusCart, Total: 999,
			Items: []*order.OrderItem{item("p2", 1, 999)}},
	}}
	svc := NewService(repo, &stubProducts{names: map[string]string{"p1": "Keyboard"}}, zap.NewNop())

	result, err := svc.UserStatistics(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 30.0, result.TotalSpent)
	require.Equal(t, int64(1), result.TotalOrders)
	require.Len(t, result.MostPurchased, 1)
	require.Equal(t, "p1", result.MostPurchased[0].ProductID)
}

func TestUserStatisticsAggregatesAcrossOrders(t *testing.T) {
	repo := &stubOrderRepo{orders: []*order.Order{
		confirmedOrder("u1", 35, item("p1", 3, 10), item("p2", 1, 5)),
		confirmedOrder("u1", 20, item("p1", 2, 10)),
	}}
	products := &stubProducts{names: map[string]string{"p1": "Keyboard", "p2": "Mouse"}}
	svc := NewService(repo, products, zap.NewNop())

	result, err := svc.UserStatistics(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 55.0, result.TotalSpent)
	require.Equal(t, int64(2), result.TotalOrders)

	require.Equal(t, "p1", result.MostPurchased[0].ProductID)
	p1 := result.MostPurchased[0]
	require.Equal(t, 5, p1.TotalQuantity)
	require.Equal(t, 50.0, p1.TotalRevenue)
	require.Equal(t, int64(2), p1.OrderCount)
	require.Equal(t, "Keyboard", p1.ProductName)

	// one lookup per distinct product, not per line item
	require.Equal(t, 2, products.calls)
}

func TestUserStatisticsRankingsAreIndependent(t *testing.T) {
	// p1 wins on quantity, p2 wins on revenue
	repo := &stubOrderRepo{orders: []*order.Order{
		confirmedOrder("u1", 110, item("p1", 10, 1), item("p2", 1, 100)),
	}}
	svc := NewService(repo, &stubProducts{names: map[string]string{"p1": "Pen", "p2": "Desk"}}, zap.NewNop())

	result, err := svc.UserStatistics(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "p1", result.MostPurchased[0].ProductID)
	require.Equal(t, "p2", result.BestSelling[0].ProductID)
}

func TestUserStatisticsTopFiveOnly(t *testing.T) {
	items := []*order.OrderItem{
		item("p1", 7, 1), item("p2", 6, 1), item("p3", 5, 1), item("p4", 4, 1),
		item("p5", 3, 1), item("p6", 2, 1), item("p7", 1, 1),
	}
	repo := &stubOrderRepo{orders: []*order.Order{confirmedOrder("u1", 28, items...)}}
	svc := NewService(repo, &stubProducts{names: map[string]string{}}, zap.NewNop())

	result, err := svc.UserStatistics(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, result.MostPurchased, 5)
	require.Len(t, result.BestSelling, 5)
	require.Equal(t, "p1", result.MostPurchased[0].ProductID)
	require.Equal(t, "p5", result.MostPurchased[4].ProductID)
}

func TestUserStatisticsNameLookupDegradesToProductID(t *testing.T) {
	repo := &stubOrderRepo{orders: []*order.Order{
		confirmedOrder("u1", 15, item("p1", 1, 10), item("p2", 1, 5)),
	}}
	products := &stubProducts{
		names:   map[string]string{"p1": "Keyboard"},
		failing: map[string]bool{"p2": true},
	}
	svc := NewService(repo, products, zap.NewNop())

	result, err := svc.UserStatistics(context.Background(), "u1")
	require.NoError(t, err)

	byID := map[string]*ProductStatistics{}
	for _, p := range result.MostPurchased {
		byID[p.ProductID] = p
	}
	require.Equal(t, "Keyboard", byID["p1"].ProductName)
	require.Equal(t, "p2", byID["p2"].ProductName)
}

func TestUserStatisticsRoundsTotals(t *testing.T) {
	// 0.1 + 0.2 and 3 * 0.1 both leave float64 residue without rounding
	repo := &stubOrderRepo{orders: []*order.Order{
		confirmedOrder("u1", 0.1, item("p1", 1, 0.1)),
		confirmedOrder("u1", 0.2, item("p1", 2, 0.1)),
	}}
	svc := NewService(repo, &stubProducts{names: map[string]string{"p1": "Pen"}}, zap.NewNop())

	result, err := svc.UserStatistics(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 0.3, result.TotalSpent)
	require.Equal(t, 0.3, result.MostPurchased[0].TotalRevenue)
}

func TestUserStatisticsEmptyHistory(t *testing.T) {
	svc := NewService(&stubOrderRepo{}, &stubProducts{names: map[string]string{}}, zap.NewNop())
	result, err := svc.UserStatistics(context.Background(), "ghost")
	require.NoError(t, err)
	require.Zero(t, result.TotalSpent)
	require.Zero(t, result.TotalOrders)
	require.Empty(t, result.MostPurchased)
	require.Empty(t, result.BestSelling)
}
