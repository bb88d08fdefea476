package catalog

type Status string

const (
	StatusActive   Status = "active"
	StatusDisabled Status = "disabled"
)

type Product struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PriceCents int    `json:"price_cents"`
	Image      string `json:"image"`
	Wh1Qty     int    `json:"wh1qty"`
	Wh2Qty     int    `json:"wh2qty"`
	Wh3Qty     int    `json:"wh3qty"`
	Status     Status `json:"status"`
}

// TotalStock is the sum over all warehouses. Only warehouse 1 participates in
// checkout; the sum gates listing and add-to-cart.
func (p Product) TotalStock() int {
	return p.Wh1Qty + p.Wh2Qty + p.Wh3Qty
}

// Purchasable: disabled products are never purchasable regardless of stock.
func (p Product) Purchasable() bool {
	return p.Status != StatusDisabled && p.TotalStock() > 0
}
