package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/storefront/internal/identity"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	// no global timeout: /orders/stream is long-lived, handlers set their own
	r.Use(SessionUser)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// SessionUser binds the session identity from the auth gateway's headers to
// the request context. No headers = anonymous request; the engine treats
// those as logged no-ops or auth errors downstream.
func SessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-User-Id"); id != "" {
			u := &identity.User{ID: id, Email: r.Header.Get("X-User-Email")}
			r = r.WithContext(identity.WithUser(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}
