package stats

// ProductStatistics aggregates one product across a user's purchase history.
type ProductStatistics struct {
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
	OrderCount    int64   `json:"order_count"`
}

// UserProfileStatistics is the purchase-history summary for one user.
// Carts are excluded; only confirmed-lifecycle orders count.
type UserProfileStatistics struct {
	UserID        string               `json:"user_id"`
	TotalSpent    float64              `json:"total_spent"`
	TotalOrders   int64                `json:"total_orders"`
	MostPurchased []*ProductStatistics `json:"most_purchased_products"`
	BestSelling   []*ProductStatistics `json:"best_selling_products"`
}
