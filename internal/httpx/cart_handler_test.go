package httpx_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/httpx"
	"github.com/example/storefront/internal/identity"
)

type memCache struct{ b []byte }

func (c *memCache) Get(ctx context.Context) ([]byte, error) { return c.b, nil }
func (c *memCache) Set(ctx context.Context, b []byte) error {
	c.b = append([]byte(nil), b...)
	return nil
}
func (c *memCache) Remove(ctx context.Context) error {
	c.b = nil
	return nil
}

type cartResp struct {
	Lines      []cart.Line `json:"lines"`
	TotalCents int         `json:"total_cents"`
}

func newServer(t *testing.T, cache cart.Cache) (*httptest.Server, *cart.Store) {
	t.Helper()
	store := cart.NewStore(identity.ContextProvider{}, cache)
	router := httpx.NewRouter()
	(&httpx.CartHandler{Cart: store}).Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

func doReq(t *testing.T, method, url, userID string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func seed(t *testing.T, store *cart.Store, userID string) {
	t.Helper()
	ctx := identity.WithUser(context.Background(), &identity.User{ID: userID})
	p := catalog.Product{ID: "p1", Title: "Keyboard", PriceCents: 1000, Wh1Qty: 5, Status: catalog.StatusActive}
	require.NoError(t, store.Add(ctx, p, 2, ""))
}

func TestGetCartScopesToSessionUser(t *testing.T) {
	srv, store := newServer(t, &memCache{})
	seed(t, store, "u1")

	resp := doReq(t, http.MethodGet, srv.URL+"/cart", "u1")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body cartResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Lines, 1)
	require.Equal(t, 2000, body.TotalCents)

	// another user sees nothing
	resp2 := doReq(t, http.MethodGet, srv.URL+"/cart", "u2")
	defer resp2.Body.Close()
	var body2 cartResp
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&body2))
	require.Empty(t, body2.Lines)
}

func TestRestoreRequiresSession(t *testing.T) {
	srv, _ := newServer(t, &memCache{})
	resp := doReq(t, http.MethodPost, srv.URL+"/cart/restore", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRestoreFiltersSharedCache(t *testing.T) {
	cache := &memCache{}
	seedLines := []cart.Line{
		{UserID: "userA", ProductID: "p1", Qty: 1, PriceCents: 1000},
		{UserID: "userB", ProductID: "p2", Qty: 4, PriceCents: 500},
	}
	b, err := json.Marshal(seedLines)
	require.NoError(t, err)
	cache.b = b

	srv, _ := newServer(t, cache)

	resp := doReq(t, http.MethodPost, srv.URL+"/cart/restore", "userA")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body cartResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Lines, 1)
	require.Equal(t, "userA", body.Lines[0].UserID)
}

func TestDecrementToZeroRemovesLineOverHTTP(t *testing.T) {
	srv, store := newServer(t, &memCache{})
	seed(t, store, "u1")

	resp := doReq(t, http.MethodPost, srv.URL+"/cart/items/p1/decrement", "u1")
	resp.Body.Close()
	resp = doReq(t, http.MethodPost, srv.URL+"/cart/items/p1/decrement", "u1")
	defer resp.Body.Close()

	var body cartResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Empty(t, body.Lines)
}
