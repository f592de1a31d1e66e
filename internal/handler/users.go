package handler

import (
	"net/http"

	"github.com/Dan9191/bank-api/internal/service"
)

// ListUsers returns every user.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.userCollection(users, h.link("users")))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.userResource(user))
}

// CreateUser handles user registration
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if !h.decode(w, r, &in) {
		return
	}
	user, err := h.svc.CreateUser(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	res := h.userResource(user)
	w.Header().Set("Location", res.Links["self"].Href)
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) ReplaceUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in service.UserInput
	if !h.decode(w, r, &in) {
		return
	}
	user, err := h.svc.ReplaceUser(r.Context(), userID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.userResource(user))
}

// DeleteUser removes the user together with its accounts and their transactions.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(r.Context(), userID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
