package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenleaf/nursery-market/internal/auth"
	"github.com/greenleaf/nursery-market/internal/market"
)

// CartHandler drives the shared pre-checkout cart. Lines always snapshot the
// live plant name and price at add time.
type CartHandler struct {
	Market *market.Service
	Auth   *auth.Service
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart", h.items)
	r.Post("/cart", h.add)
	r.Put("/cart/{id}", h.updateQty)
	r.Delete("/cart/{id}", h.remove)
	r.Delete("/cart", h.clear)
	r.Post("/checkout", h.checkout)
}

func (h *CartHandler) items(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"items": h.Market.Cart.Items(r.Context()),
		"count": h.Market.Cart.Count(r.Context()),
		"total": h.Market.Cart.Total(r.Context()),
	})
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlantID string `json:"plantId"`
		Qty     int    `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}
	p, err := h.Market.Plants.Find(r.Context(), req.PlantID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := h.Market.Cart.Add(r.Context(), market.CartItem{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Qty:   req.Qty,
	}); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Market.Cart.Items(r.Context()))
}

func (h *CartHandler) updateQty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}
	if err := h.Market.Cart.UpdateQty(r.Context(), chi.URLParam(r, "id"), req.Qty); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Market.Cart.Items(r.Context()))
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Market.Cart.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Market.Cart.Items(r.Context()))
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Market.Cart.Clear(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, []market.CartItem{})
}

func (h *CartHandler) checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleCustomer)
	if !ok {
		return
	}
	o, err := h.Market.Checkout(r.Context(), sess.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}
