package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/greenleaf/nursery-market/internal/auth"
	"github.com/greenleaf/nursery-market/internal/market"
)

// CatalogHandler serves the storefront: browsing, reviews, reservations and
// the wishlist.
type CatalogHandler struct {
	Market *market.Service
	Auth   *auth.Service
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/plants", h.list)
	r.Get("/plants/types", h.types)
	r.Get("/plants/{id}", h.get)
	r.Get("/plants/{id}/reviews", h.reviews)
	r.Post("/plants/{id}/reviews", h.addReview)
	r.Post("/plants/{id}/reserve", h.reserve)
	r.Post("/plants/{id}/save", h.save)
	r.Delete("/plants/{id}/save", h.unsave)
	r.Get("/reservations", h.myReservations)
	r.Delete("/reservations/{id}", h.cancelReservation)
	r.Get("/orders", h.myOrders)
	r.Get("/notifications", h.notifications)
	r.Put("/profile", h.updateProfile)
	r.Get("/vendors", h.vendors)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minPrice, _ := strconv.ParseFloat(q.Get("min"), 64)
	maxPrice, _ := strconv.ParseFloat(q.Get("max"), 64)
	plants := h.Market.SearchPlants(r.Context(), market.CatalogQuery{
		Text:     q.Get("q"),
		Type:     q.Get("type"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Sort:     q.Get("sort"),
	})
	writeJSON(w, http.StatusOK, plants)
}

func (h *CatalogHandler) types(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Market.PlantTypes(r.Context()))
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Market.Plants.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) reviews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Market.Reviews.List(r.Context(), chi.URLParam(r, "id")))
}

func (h *CatalogHandler) addReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}
	plantID := chi.URLParam(r, "id")
	if _, err := h.Market.Plants.Find(r.Context(), plantID); err != nil {
		writeErr(w, err)
		return
	}
	rec, err := h.Market.Reviews.Add(r.Context(), plantID, req.Name, req.Text)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *CatalogHandler) reserve(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleCustomer)
	if !ok {
		return
	}
	var req struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}
	if req.Qty <= 0 {
		writeJSON(w, http.StatusBadRequest, errBody("qty must be positive"))
		return
	}
	rec, err := h.Market.MakeReservation(r.Context(), sess.ID, chi.URLParam(r, "id"), req.Qty)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *CatalogHandler) save(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleCustomer)
	if !ok {
		return
	}
	plantID := chi.URLParam(r, "id")
	if _, err := h.Market.Plants.Find(r.Context(), plantID); err != nil {
		writeErr(w, err)
		return
	}
	if err := h.Market.Customers.SavePlant(r.Context(), sess.ID, plantID); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *CatalogHandler) unsave(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleCustomer)
	if !ok {
		return
	}
	if err := h.Market.Customers.UnsavePlant(r.Context(), sess.ID, chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *CatalogHandler) myReservations(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleCustomer)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Market.Reservations.ByCustomer(r.Context(), sess.ID))
}

func (h *CatalogHandler) cancelReservation(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleCustomer)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	rec, err := h.Market.Reservations.Find(r.Context(), id)
	if err != nil || rec.CustomerID != sess.ID {
		writeErr(w, market.ErrNotFound)
		return
	}
	// record removal only; the stock hold is not returned
	if _, err := h.Market.CancelReservation(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *CatalogHandler) myOrders(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleCustomer)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Market.Orders.ByCustomer(r.Context(), sess.ID))
}

func (h *CatalogHandler) notifications(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleCustomer)
	if !ok {
		return
	}
	c, err := h.Market.Customers.Find(r.Context(), sess.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Notifications)
}

func (h *CatalogHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleCustomer)
	if !ok {
		return
	}
	var req struct {
		Name    *string `json:"name"`
		Email   *string `json:"email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}
	c, err := h.Market.Customers.Update(r.Context(), sess.ID, market.CustomerPatch{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Address: req.Address,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id": c.ID, "name": c.Name, "email": c.Email, "phone": c.Phone, "address": c.Address,
	})
}

func (h *CatalogHandler) vendors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Market.Vendors.List(r.Context()))
}
