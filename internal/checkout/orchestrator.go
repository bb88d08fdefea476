package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/orders"
	"github.com/example/storefront/internal/users"
)

var (
	ErrNotAuthenticated = errors.New("no authenticated user")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrMissingAddress   = errors.New("shipping address is missing")
)

type CatalogReader interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}

type OrderWriter interface {
	Create(ctx context.Context, o orders.Order) (string, error)
}

type ProfileReader interface {
	Get(ctx context.Context, userID string) (users.Profile, error)
}

// Notifier fans out the fact that a user's order set changed, so live feeds
// recompute.
type Notifier interface {
	OrdersChanged(ctx context.Context, userID string) error
}

// EventPublisher hands the OrderCreated envelope to the fulfillment pipeline.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o orders.Order) error
}

// Orchestrator turns a cart into an order. Validation never mutates anything;
// the commit is a single transaction in the order writer, so a failed attempt
// leaves cart and stock exactly as they were.
type Orchestrator struct {
	Identity identity.Provider
	Cart     *cart.Store
	Catalog  CatalogReader
	Orders   OrderWriter
	Profiles ProfileReader
	Notify   Notifier
	Events   EventPublisher
}

// Checkout walks one attempt through Validating and Committing and returns
// the new order id. Abandoning the attempt (ctx cancel) during validation has
// no side effects; once the order writer is called the transaction either
// fully applies or fully aborts.
func (oc *Orchestrator) Checkout(ctx context.Context) (string, error) {
	user := oc.Identity.CurrentUser(ctx)
	if user == nil {
		log.Println("checkout: no authenticated user")
		return "", ErrNotAuthenticated
	}

	lines := oc.Cart.Lines(ctx)
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	profile, err := oc.Profiles.Get(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("fetch profile: %w", err)
	}
	if profile.Address == "" {
		return "", ErrMissingAddress
	}

	// Re-read stock per line; the first short line aborts the attempt.
	// Only warehouse 1 fulfils orders.
	for _, l := range lines {
		p, err := oc.Catalog.GetProduct(ctx, l.ProductID)
		if err != nil {
			return "", fmt.Errorf("validate %s: %w", l.ProductID, err)
		}
		if p.Wh1Qty < l.Qty {
			return "", &orders.InsufficientStockError{ProductTitle: p.Title}
		}
	}

	// Total comes from the validated snapshot, not a fresh cart read: the
	// order's total must equal the sum of the lines it embeds.
	total := 0
	for _, l := range lines {
		total += l.TotalCents()
	}
	order := orders.Order{
		UserID:          user.ID,
		ShippingAddress: profile.Address,
		TotalCents:      total,
		Status:          orders.StatusProcessing,
		Lines:           toOrderLines(lines),
	}

	orderID, err := oc.Orders.Create(ctx, order)
	if err != nil {
		// Guard at commit time can still fire when stock moved since
		// validation; the transaction rolled back, nothing changed.
		return "", err
	}
	order.ID = orderID

	if err := oc.Cart.Clear(ctx); err != nil {
		log.Printf("checkout: clear cart after order %s: %v", orderID, err)
	}
	if oc.Notify != nil {
		if err := oc.Notify.OrdersChanged(ctx, user.ID); err != nil {
			log.Printf("checkout: notify order change: %v", err)
		}
	}
	if oc.Events != nil {
		if err := oc.Events.PublishOrderCreated(ctx, order); err != nil {
			log.Printf("checkout: publish order created: %v", err)
		}
	}

	log.Printf("checkout: order %s created for user %s", orderID, user.ID)
	return orderID, nil
}

func toOrderLines(lines []cart.Line) []orders.Line {
	out := make([]orders.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, orders.Line{
			ProductID:  l.ProductID,
			Title:      l.Title,
			Image:      l.Image,
			Qty:        l.Qty,
			PriceCents: l.PriceCents,
			Remark:     l.Remark,
		})
	}
	return out
}
