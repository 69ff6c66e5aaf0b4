package product

// Product is the read-only view of a catalog product exposed by the
// remote product service. SellerID is the id of the user who listed it.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	SellerID string  `json:"userId"`
}
