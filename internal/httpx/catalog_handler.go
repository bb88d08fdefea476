package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/storefront/internal/catalog"
)

type CatalogHandler struct {
	Catalog *catalog.Repo
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
}

// listProducts returns what the shop may show: active products with stock.
// ?all=1 returns the raw catalog including disabled and sold-out products.
func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var (
		ps  []catalog.Product
		err error
	)
	if r.URL.Query().Get("all") == "1" {
		ps, err = h.Catalog.ListProducts(ctx)
	} else {
		ps, err = h.Catalog.ListPurchasable(ctx)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ps)
}
