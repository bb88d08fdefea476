package orders

import "time"

// Order is immutable once written except for Status, which the fulfillment
// worker advances. TotalCents is fixed at creation and never recomputed.
type Order struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ShippingAddress string    `json:"shipping_address"`
	TotalCents      int       `json:"total_cents"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"` // zero when the store never set it
	Lines           []Line    `json:"lines"`
}

// Line is a frozen snapshot of a cart line at checkout time.
type Line struct {
	ProductID  string `json:"product_id"`
	Title      string `json:"title"`
	Image      string `json:"image"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
	Remark     string `json:"remark,omitempty"`
}

// TotalItems counts units across lines; a missing qty counts as one, older
// order documents were written without it.
func (o Order) TotalItems() int {
	n := 0
	for _, l := range o.Lines {
		if l.Qty < 1 {
			n++
			continue
		}
		n += l.Qty
	}
	return n
}
