package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"pizza-hq/pizzeria/pkg/api/middleware"
	"pizza-hq/pizzeria/pkg/store"
)

type createFranchiseRequest struct {
	Name   string `json:"name"`
	Admins []struct {
		Email string `json:"email"`
	} `json:"admins"`
}

type createStoreRequest struct {
	Name string `json:"name"`
}

func (h *handlers) listFranchises(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.DB.Franchises(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handlers) createFranchise(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		writeError(w, r, statusError(http.StatusForbidden, "unable to create a franchise"))
		return
	}
	var req createFranchiseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name == "" {
		writeError(w, r, statusError(http.StatusBadRequest, "franchise name is required"))
		return
	}
	emails := make([]string, 0, len(req.Admins))
	for _, a := range req.Admins {
		emails = append(emails, a.Email)
	}

	f, err := h.deps.DB.CreateFranchise(r.Context(), req.Name, emails)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, r, statusError(http.StatusNotFound, "unknown franchise admin"))
		return
	case errors.Is(err, store.ErrDuplicate):
		writeError(w, r, statusError(http.StatusConflict, "franchise already exists"))
		return
	case err != nil:
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *handlers) deleteFranchise(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		writeError(w, r, statusError(http.StatusForbidden, "unable to delete a franchise"))
		return
	}
	id := pathID(r, "franchiseID")
	if err := h.deps.DB.DeleteFranchise(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteMessage(w, http.StatusOK, "franchise deleted")
}

func (h *handlers) createStore(w http.ResponseWriter, r *http.Request) {
	franchiseID := pathID(r, "franchiseID")
	if !h.canManage(r, franchiseID) {
		writeError(w, r, statusError(http.StatusForbidden, "unable to create a store"))
		return
	}
	var req createStoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name == "" {
		writeError(w, r, statusError(http.StatusBadRequest, "store name is required"))
		return
	}
	loc, err := h.deps.DB.CreateStore(r.Context(), franchiseID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (h *handlers) deleteStore(w http.ResponseWriter, r *http.Request) {
	franchiseID := pathID(r, "franchiseID")
	if !h.canManage(r, franchiseID) {
		writeError(w, r, statusError(http.StatusForbidden, "unable to delete a store"))
		return
	}
	if err := h.deps.DB.DeleteStore(r.Context(), franchiseID, pathID(r, "storeID")); err != nil {
		writeError(w, r, err)
		return
	}
	middleware.WriteMessage(w, http.StatusOK, "store deleted")
}

// canManage allows admins and the franchise's own franchisees.
func (h *handlers) canManage(r *http.Request, franchiseID int64) bool {
	if isAdmin(r) {
		return true
	}
	ctx := r.Context()
	claims := middleware.GetClaims(ctx)
	ok, err := h.deps.DB.IsFranchiseAdmin(ctx, claims.UserID, franchiseID)
	if err != nil {
		h.deps.Logger.WarnContext(ctx, "franchise admin lookup failed", "franchise_id", franchiseID, "error", err)
	}
	return ok
}

// pathID parses a numeric route variable. The route pattern guarantees digits.
func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}
