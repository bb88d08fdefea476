package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/feed"
	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/orders"
	"github.com/example/storefront/internal/redisx"
)

type OrdersHandler struct {
	Checkout *checkout.Orchestrator
	Feed     *feed.Feed
	Repo     *orders.Repo
	Redis    *redis.Client
}

type checkoutResp struct {
	OrderID string `json:"order_id"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.doCheckout)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/stream", h.streamOrders)
	r.Get("/orders/{id}", h.getOrderStatus)
}

func (h *OrdersHandler) doCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orderID, err := h.Checkout.Checkout(ctx)
	if err != nil {
		var insufficient *orders.InsufficientStockError
		switch {
		case errors.Is(err, checkout.ErrNotAuthenticated):
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
		case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrMissingAddress):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.As(err, &insufficient):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}

	// cache the fresh status so tracking reads skip the DB
	if user := identity.FromContext(r.Context()); user != nil {
		statusKey := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		body, _ := json.Marshal(redisx.StatusCache{Status: string(orders.StatusProcessing), UserID: user.ID})
		_ = h.Redis.Set(ctx, statusKey, body, redisx.TTLStatusCache).Err()
	}

	writeJSON(w, http.StatusCreated, checkoutResp{OrderID: orderID})
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	user := identity.FromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	views, err := h.Feed.Snapshot(ctx, user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// streamOrders exposes the live feed as server-sent events. The subscription
// is released on every exit path: client disconnect, write failure, shutdown.
func (h *OrdersHandler) streamOrders(w http.ResponseWriter, r *http.Request) {
	user := identity.FromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	stream, release := h.Feed.Subscribe(r.Context(), user.ID)
	defer release()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case views, ok := <-stream:
			if !ok {
				return
			}
			b, err := json.Marshal(views)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// getOrderStatus answers only for the order's owner; a foreign order id reads
// as not found, cache hit or not.
func (h *OrdersHandler) getOrderStatus(w http.ResponseWriter, r *http.Request) {
	user := identity.FromContext(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// cache first; anything but an owned entry falls through to the DB
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		var cached redisx.StatusCache
		if json.Unmarshal([]byte(s), &cached) == nil && cached.UserID == user.ID {
			writeJSON(w, http.StatusOK, map[string]string{"status": cached.Status})
			return
		}
	}

	// fallback DB
	status, err := h.Repo.GetStatusForUser(ctx, orderID, user.ID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	b, _ := json.Marshal(redisx.StatusCache{Status: string(status), UserID: user.ID})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}
