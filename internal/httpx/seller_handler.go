package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenleaf/nursery-market/internal/auth"
	"github.com/greenleaf/nursery-market/internal/market"
)

// SellerHandler is the seller dashboard: profile, listings and analytics.
// Every plant mutation goes through the service layer so ownership checks and
// cascade deletes stay in one place.
type SellerHandler struct {
	Market *market.Service
	Auth   *auth.Service
}

func (h *SellerHandler) Register(r *chi.Mux) {
	r.Get("/seller/profile", h.profile)
	r.Put("/seller/profile", h.updateProfile)
	r.Get("/seller/plants", h.plants)
	r.Post("/seller/plants", h.addPlant)
	r.Put("/seller/plants/{id}", h.updatePlant)
	r.Delete("/seller/plants/{id}", h.deletePlant)
	r.Get("/seller/analytics", h.analytics)
}

type sellerProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Bio   string `json:"bio"`
}

func (h *SellerHandler) profile(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleSeller)
	if !ok {
		return
	}
	s, err := h.Market.Sellers.Find(r.Context(), sess.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sellerProfile{ID: s.ID, Name: s.Name, Email: s.Email, Bio: s.Bio})
}

func (h *SellerHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleSeller)
	if !ok {
		return
	}
	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
		Bio   *string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}
	s, err := h.Market.Sellers.Update(r.Context(), sess.ID, market.SellerPatch{
		Name: req.Name, Email: req.Email, Bio: req.Bio,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sellerProfile{ID: s.ID, Name: s.Name, Email: s.Email, Bio: s.Bio})
}

func (h *SellerHandler) plants(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleSeller)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Market.Plants.ByVendor(r.Context(), sess.ID))
}

type plantReq struct {
	Name    string   `json:"name"`
	Species string   `json:"species"`
	Price   float64  `json:"price"`
	Stock   int      `json:"stock"`
	Type    string   `json:"type"`
	Tags    []string `json:"tags"`
	Image   string   `json:"image"`
	Info    string   `json:"info"`
}

func (h *SellerHandler) addPlant(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleSeller)
	if !ok {
		return
	}
	var req plantReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}
	p, err := h.Market.AddSellerPlant(r.Context(), sess.ID, market.Plant{
		Name:    req.Name,
		Species: req.Species,
		Price:   req.Price,
		Stock:   req.Stock,
		Type:    req.Type,
		Tags:    req.Tags,
		Image:   req.Image,
		Info:    req.Info,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *SellerHandler) updatePlant(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleSeller)
	if !ok {
		return
	}
	var req struct {
		Name    *string   `json:"name"`
		Species *string   `json:"species"`
		Price   *float64  `json:"price"`
		Stock   *int      `json:"stock"`
		Type    *string   `json:"type"`
		Tags    *[]string `json:"tags"`
		Image   *string   `json:"image"`
		Info    *string   `json:"info"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}
	p, err := h.Market.UpdateSellerPlant(r.Context(), sess.ID, chi.URLParam(r, "id"), market.PlantPatch{
		Name:    req.Name,
		Species: req.Species,
		Price:   req.Price,
		Stock:   req.Stock,
		Type:    req.Type,
		Tags:    req.Tags,
		Image:   req.Image,
		Info:    req.Info,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *SellerHandler) deletePlant(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleSeller)
	if !ok {
		return
	}
	removed, err := h.Market.DeleteSellerPlant(r.Context(), sess.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if !removed {
		writeErr(w, market.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *SellerHandler) analytics(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireRole(w, r, h.Auth, market.RoleSeller)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.Market.Analytics(r.Context(), sess.ID))
}
