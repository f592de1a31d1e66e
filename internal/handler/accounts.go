package handler

import (
	"net/http"

	"github.com/Dan9191/bank-api/internal/service"
)

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.svc.ListAccounts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.accountCollection(accounts, h.link("accounts")))
}

// ListUserAccounts returns the accounts owned by a user. An unknown user yields an empty list.
func (h *Handler) ListUserAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	accounts, err := h.svc.ListAccountsByUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.accountCollection(accounts, h.link("userAccounts", "userId", id(userID))))
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	account, err := h.svc.GetAccount(r.Context(), accountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.accountResource(account))
}

// AddAccount opens an account for the user in the path.
func (h *Handler) AddAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}
	var in service.AccountInput
	if !h.decode(w, r, &in) {
		return
	}
	account, err := h.svc.AddAccount(r.Context(), userID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	res := h.accountResource(account)
	w.Header().Set("Location", res.Links["self"].Href)
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) ReplaceAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in service.AccountInput
	if !h.decode(w, r, &in) {
		return
	}
	account, err := h.svc.ReplaceAccount(r.Context(), accountID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.accountResource(account))
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteAccount(r.Context(), accountID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStatement renders the account's transaction history as XML.
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	doc, err := h.svc.Statement(r.Context(), accountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
