package feed

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/example/storefront/internal/orders"
)

type OrderSource interface {
	ListByUser(ctx context.Context, userID string) ([]orders.Order, error)
}

// ChangeSource signals that the user's order set may have changed. The
// returned release func must be called when the consumer is done; the channel
// closes once it is.
type ChangeSource interface {
	Subscribe(ctx context.Context, userID string) (<-chan struct{}, func())
}

// OrderView is one order shaped for display.
type OrderView struct {
	OrderID         string        `json:"order_id"`
	Status          orders.Status `json:"status"`
	StatusClass     string        `json:"status_class"`
	TotalItems      int           `json:"total_items"`
	TotalCents      int           `json:"total_cents"`
	ShippingAddress string        `json:"shipping_address"`
	PlacedOn        string        `json:"placed_on"` // "N/A" when the store never set a timestamp
	CreatedAt       time.Time     `json:"created_at"`
	Lines           []orders.Line `json:"lines"`
}

const placedOnLayout = "02 Jan 2006, 03:04 PM"

// Feed recomputes the full visible order list on every change push.
type Feed struct {
	Orders  OrderSource
	Changes ChangeSource
}

// Subscribe emits the user's current order views immediately and again after
// every change, until release is called or ctx ends. The stream channel is
// closed on release; release is idempotent.
func (f *Feed) Subscribe(ctx context.Context, userID string) (<-chan []OrderView, func()) {
	sig, releaseSig := f.Changes.Subscribe(ctx, userID)
	out := make(chan []OrderView, 1)
	done := make(chan struct{})

	go func() {
		defer close(out)
		push := func() bool {
			views, err := f.Snapshot(ctx, userID)
			if err != nil {
				log.Printf("feed: snapshot for %s: %v", userID, err)
				return true
			}
			select {
			case out <- views:
				return true
			case <-done:
				return false
			case <-ctx.Done():
				return false
			}
		}

		if !push() {
			return
		}
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-sig:
				if !ok {
					return
				}
				if !push() {
					return
				}
			}
		}
	}()

	var once sync.Once
	release := func() {
		once.Do(func() {
			close(done)
			releaseSig()
		})
	}
	return out, release
}

// Snapshot builds the current view list: newest first, unset timestamps
// sorting as oldest.
func (f *Feed) Snapshot(ctx context.Context, userID string) ([]OrderView, error) {
	list, err := f.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	views := make([]OrderView, 0, len(list))
	for _, o := range list {
		views = append(views, toView(o))
	}
	return views, nil
}

func toView(o orders.Order) OrderView {
	placedOn := "N/A"
	if !o.CreatedAt.IsZero() {
		placedOn = o.CreatedAt.Format(placedOnLayout)
	}
	return OrderView{
		OrderID:         o.ID,
		Status:          o.Status,
		StatusClass:     orders.DisplayClass(o.Status),
		TotalItems:      o.TotalItems(),
		TotalCents:      o.TotalCents,
		ShippingAddress: o.ShippingAddress,
		PlacedOn:        placedOn,
		CreatedAt:       o.CreatedAt,
		Lines:           o.Lines,
	}
}
