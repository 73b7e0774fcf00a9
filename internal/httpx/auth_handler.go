package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenleaf/nursery-market/internal/auth"
	"github.com/greenleaf/nursery-market/internal/market"
)

type AuthHandler struct {
	Auth *auth.Service
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Post("/auth/logout", h.logout)
	r.Get("/auth/me", h.me)
}

type credentialsReq struct {
	Role     market.Role `json:"role"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name,omitempty"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}
	acct, err := h.Auth.Register(r.Context(), req.Role, req.Email, req.Password, req.Name)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid json"))
		return
	}
	sess, err := h.Auth.Login(r.Context(), req.Role, req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	acct, err := h.Auth.CurrentAccount(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}
