package api

import (
	"errors"
	"net/http"
	"strings"

	"pizza-hq/pizzeria/pkg/api/middleware"
	"pizza-hq/pizzeria/pkg/auth"
	"pizza-hq/pizzeria/pkg/store"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *store.User `json:"user"`
	Token string      `json:"token"`
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, r, statusError(http.StatusBadRequest, "name, email, and password are required"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.deps.DB.AddUser(r.Context(), req.Name, req.Email, hash)
	if errors.Is(err, store.ErrDuplicate) {
		writeError(w, r, statusError(http.StatusConflict, "email already registered"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.deps.Issuer.Issue(user.Identity())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.deps.Metrics.RecordUserSignup(user.Email)
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

// login records exactly one auth attempt, successful only when a token is
// issued.
func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	success := false
	defer func() { h.deps.Metrics.RecordAuthAttempt(success) }()

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.deps.DB.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, statusError(http.StatusUnauthorized, "invalid credentials"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, r, statusError(http.StatusUnauthorized, "invalid credentials"))
		return
	}

	token, err := h.deps.Issuer.Issue(user.Identity())
	if err != nil {
		writeError(w, r, err)
		return
	}
	success = true
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	h.deps.Issuer.Revoke(middleware.GetClaims(r.Context()))
	middleware.WriteMessage(w, http.StatusOK, "logout successful")
}

func isAdmin(r *http.Request) bool {
	c := middleware.GetClaims(r.Context())
	return c != nil && c.Identity().HasRole(auth.RoleAdmin)
}
