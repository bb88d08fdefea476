package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/identity"
)

// Line is one cart entry. PriceCents is snapshotted at first add and never
// refreshed from the catalog; re-adding the same product only bumps Qty.
type Line struct {
	UserID     string `json:"user_id"`
	ProductID  string `json:"product_id"`
	Title      string `json:"title"`
	Image      string `json:"image"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
	Remark     string `json:"remark,omitempty"`
}

func (l Line) TotalCents() int { return l.Qty * l.PriceCents }

// Cache is the device-local durable store behind the cart. It is one shared
// slot under a fixed name, not per-user, so Restore must filter what it loads.
type Cache interface {
	Get(ctx context.Context) ([]byte, error) // nil, nil when empty
	Set(ctx context.Context, b []byte) error
	Remove(ctx context.Context) error
}

var ErrOutOfStock = errors.New("product is out of stock")

// Store holds cart lines keyed by (userId, productId) and mirrors every
// mutation into the cache. All operations scope to the identity provider's
// current user; with no user they are logged no-ops.
type Store struct {
	identity identity.Provider
	cache    Cache

	mu    sync.Mutex
	lines []Line // issue order preserved
}

func NewStore(idp identity.Provider, cache Cache) *Store {
	return &Store{identity: idp, cache: cache}
}

// Add puts qty units of p in the current user's cart. An existing line keeps
// its original price snapshot; a new line snapshots p's current price.
// qty below 1 counts as 1.
func (s *Store) Add(ctx context.Context, p catalog.Product, qty int, remark string) error {
	user := s.identity.CurrentUser(ctx)
	if user == nil {
		log.Println("cart: add ignored, no authenticated user")
		return nil
	}
	if !p.Purchasable() {
		return ErrOutOfStock
	}
	if qty < 1 {
		qty = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.find(user.ID, p.ID); i >= 0 {
		s.lines[i].Qty += qty
	} else {
		s.lines = append(s.lines, Line{
			UserID:     user.ID,
			ProductID:  p.ID,
			Title:      p.Title,
			Image:      p.Image,
			Qty:        qty,
			PriceCents: p.PriceCents,
			Remark:     remark,
		})
	}
	s.persist(ctx)
	return nil
}

// Decrement lowers the line's qty by one; at qty 1 the line is removed
// entirely rather than kept at zero.
func (s *Store) Decrement(ctx context.Context, productID string) error {
	user := s.identity.CurrentUser(ctx)
	if user == nil {
		log.Println("cart: decrement ignored, no authenticated user")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(user.ID, productID)
	if i < 0 {
		return nil
	}
	if s.lines[i].Qty <= 1 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	} else {
		s.lines[i].Qty--
	}
	s.persist(ctx)
	return nil
}

// Remove deletes the line regardless of qty.
func (s *Store) Remove(ctx context.Context, productID string) error {
	user := s.identity.CurrentUser(ctx)
	if user == nil {
		log.Println("cart: remove ignored, no authenticated user")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.find(user.ID, productID); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		s.persist(ctx)
	}
	return nil
}

// Clear drops every line of the current user and removes the cache slot when
// nothing is left in it.
func (s *Store) Clear(ctx context.Context) error {
	user := s.identity.CurrentUser(ctx)
	if user == nil {
		log.Println("cart: clear ignored, no authenticated user")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.lines[:0]
	for _, l := range s.lines {
		if l.UserID != user.ID {
			kept = append(kept, l)
		}
	}
	s.lines = kept
	s.persist(ctx)
	return nil
}

// Restore reloads the cached line set on session resume, keeping only lines
// owned by userID. The cache slot is shared across every session on the
// device, so lines of previously logged-in users must never leak through.
// Only userID's lines are replaced; other users' active lines in this store
// are left alone.
func (s *Store) Restore(ctx context.Context, userID string) error {
	b, err := s.cache.Get(ctx)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}

	var cached []Line
	if err := json.Unmarshal(b, &cached); err != nil {
		return err
	}

	mine := make([]Line, 0, len(cached))
	for _, l := range cached {
		if l.UserID == userID {
			mine = append(mine, l)
		}
	}

	s.mu.Lock()
	kept := make([]Line, 0, len(s.lines)+len(mine))
	for _, l := range s.lines {
		if l.UserID != userID {
			kept = append(kept, l)
		}
	}
	s.lines = append(kept, mine...)
	s.mu.Unlock()
	return nil
}

// Lines returns the current user's lines in issue order.
func (s *Store) Lines(ctx context.Context) []Line {
	user := s.identity.CurrentUser(ctx)
	if user == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Line
	for _, l := range s.lines {
		if l.UserID == user.ID {
			out = append(out, l)
		}
	}
	return out
}

func (s *Store) TotalCents(ctx context.Context) int {
	total := 0
	for _, l := range s.Lines(ctx) {
		total += l.TotalCents()
	}
	return total
}

// find returns the index of the (userID, productID) line, -1 if absent.
// Caller holds s.mu.
func (s *Store) find(userID, productID string) int {
	for i, l := range s.lines {
		if l.UserID == userID && l.ProductID == productID {
			return i
		}
	}
	return -1
}

// persist mirrors the full line set into the shared cache slot. Cache errors
// are logged, not returned: the in-memory cart is the session's truth and a
// failed write only costs restore-after-reload. Caller holds s.mu.
func (s *Store) persist(ctx context.Context) {
	if len(s.lines) == 0 {
		if err := s.cache.Remove(ctx); err != nil {
			log.Printf("cart: cache remove: %v", err)
		}
		return
	}
	b, err := json.Marshal(s.lines)
	if err != nil {
		log.Printf("cart: cache marshal: %v", err)
		return
	}
	if err := s.cache.Set(ctx, b); err != nil {
		log.Printf("cart: cache set: %v", err)
	}
}
