// Package httpx is the presentation layer over the data core. It validates
// input, reads the singleton session, calls the market/auth services and
// re-reads state for the response; it owns no state itself.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/greenleaf/nursery-market/internal/auth"
	"github.com/greenleaf/nursery-market/internal/market"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func errBody(msg string) map[string]string { return map[string]string{"error": msg} }

// writeErr maps the sentinel taxonomy onto status codes. Unknown errors stay
// opaque 500s.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrMissingFields), errors.Is(err, market.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errBody(err.Error()))
	case errors.Is(err, market.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errBody(err.Error()))
	case errors.Is(err, market.ErrAdminRegistration):
		writeJSON(w, http.StatusForbidden, errBody(err.Error()))
	case errors.Is(err, market.ErrDuplicateEmail), errors.Is(err, market.ErrInsufficientStock):
		writeJSON(w, http.StatusConflict, errBody(err.Error()))
	case errors.Is(err, market.ErrPlantNotFound),
		errors.Is(err, market.ErrUserNotFound),
		errors.Is(err, market.ErrOrderNotFound),
		errors.Is(err, market.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errBody(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errBody("internal error"))
	}
}

// requireRole reads the singleton session from the store. The demo keeps at
// most one active session, so there is no per-client cookie plumbing.
func requireRole(w http.ResponseWriter, r *http.Request, a *auth.Service, role market.Role) (market.Session, bool) {
	sess, ok := a.Current(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody("no session"))
		return market.Session{}, false
	}
	if sess.Role != role {
		writeJSON(w, http.StatusForbidden, errBody("wrong role"))
		return market.Session{}, false
	}
	return sess, true
}
