package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/httpx"
)

func newOrdersServer(t *testing.T) *httptest.Server {
	t.Helper()
	router := httpx.NewRouter()
	(&httpx.OrdersHandler{}).Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestOrderStatusRequiresSession(t *testing.T) {
	srv := newOrdersServer(t)
	resp := doReq(t, http.MethodGet, srv.URL+"/orders/ord-1", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListOrdersRequiresSession(t *testing.T) {
	srv := newOrdersServer(t)
	resp := doReq(t, http.MethodGet, srv.URL+"/orders", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOrdersStreamRequiresSession(t *testing.T) {
	srv := newOrdersServer(t)
	resp := doReq(t, http.MethodGet, srv.URL+"/orders/stream", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
