package handler

import (
	"net/http"

	"github.com/Dan9191/bank-api/internal/service"
)

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.svc.ListTransactions(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.transactionCollection(transactions, h.link("transactions")))
}

// ListAccountTransactions returns an account's history, oldest first.
func (h *Handler) ListAccountTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r, "accountId")
	if !ok {
		return
	}
	transactions, err := h.svc.ListTransactionsByAccount(r.Context(), accountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	self := h.link("accountTransactions", "accountId", id(accountID))
	writeJSON(w, http.StatusOK, h.transactionCollection(transactions, self))
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.svc.GetTransaction(r.Context(), transactionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.transactionResource(t))
}

// AddTransaction records a transaction against the account in the path.
func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathID(w, r, "accountId")
	if !ok {
		return
	}
	var in service.TransactionInput
	if !h.decode(w, r, &in) {
		return
	}
	t, err := h.svc.AddTransaction(r.Context(), accountID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	res := h.transactionResource(t)
	w.Header().Set("Location", res.Links["self"].Href)
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) ReplaceTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in service.TransactionInput
	if !h.decode(w, r, &in) {
		return
	}
	t, err := h.svc.ReplaceTransaction(r.Context(), transactionID, in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.transactionResource(t))
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteTransaction(r.Context(), transactionID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
