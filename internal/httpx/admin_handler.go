package httpx

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/greenleaf/nursery-market/internal/auth"
	"github.com/greenleaf/nursery-market/internal/market"
)

// AdminHandler is the back office: user management, order status moves and
// catalog removal. Status moves are the one place the forward-only transition
// table is enforced.
type AdminHandler struct {
	Market *market.Service
	Auth   *auth.Service
}

func (h *AdminHandler) Register(r *chi.Mux) {
	r.Get("/admin/users", h.users)
	r.Delete("/admin/users/{id}", h.deleteUser)
	r.Get("/admin/orders", h.orders)
	r.Post("/admin/orders/{id}/status", h.updateStatus)
	r.Delete("/admin/plants/{id}", h.deletePlant)
	r.Put("/admin/vendors", h.replaceVendors)
	r.Get("/admin/stats", h.stats)
}

type adminUser struct {
	ID        string      `json:"id"`
	Role      market.Role `json:"role"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	CreatedAt time.Time   `json:"createdAt"`
}

func (h *AdminHandler) users(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, h.Auth, market.RoleAdmin); !ok {
		return
	}
	out := []adminUser{}
	for _, c := range h.Market.Customers.List(r.Context()) {
		out = append(out, adminUser{ID: c.ID, Role: market.RoleCustomer, Name: c.Name, Email: c.Email, CreatedAt: c.CreatedAt})
	}
	for _, s := range h.Market.Sellers.List(r.Context()) {
		out = append(out, adminUser{ID: s.ID, Role: market.RoleSeller, Name: s.Name, Email: s.Email, CreatedAt: s.CreatedAt})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, h.Auth, market.RoleAdmin); !ok {
		return
	}
	role := market.Role(r.URL.Query().Get("role"))
	if role != market.RoleCustomer && role != market.RoleSeller {
		writeJSON(w, http.StatusBadRequest, errBody("role must be customer or seller"))
		return
	}
	removed, err := h.Market.DeleteUser(r.Context(), chi.URLParam(r, "id"), role)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !removed {
		writeErr(w, market.ErrUserNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AdminHandler) orders(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, h.Auth, market.RoleAdmin); !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Market.Orders.List(r.Context()))
}

func (h *AdminHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, h.Auth, market.RoleAdmin); !ok {
		return
	}
	var req struct {
		Status market.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}
	o, err := h.Market.Orders.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	// urutan maju saja: completed -> shipped -> delivered
	if !market.CanTransition(o.Status, req.Status) {
		writeJSON(w, http.StatusConflict, errBody("invalid status transition"))
		return
	}
	updated, err := h.Market.UpdateOrderStatus(r.Context(), o.ID, req.Status)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) deletePlant(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, h.Auth, market.RoleAdmin); !ok {
		return
	}
	removed, err := h.Market.CascadeDeletePlant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if !removed {
		writeErr(w, market.ErrPlantNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// replaceVendors overwrites the curated directory wholesale; there is no
// per-entry edit.
func (h *AdminHandler) replaceVendors(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, h.Auth, market.RoleAdmin); !ok {
		return
	}
	var vendors []market.Vendor
	if err := json.NewDecoder(r.Body).Decode(&vendors); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}
	if err := h.Market.Vendors.Replace(r.Context(), vendors); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vendors)
}

func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, h.Auth, market.RoleAdmin); !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Market.Orders.Stats(r.Context()))
}
