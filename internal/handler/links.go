package handler

import (
	"strconv"

	"github.com/Dan9191/bank-api/internal/models"
)

// Link is a hypermedia reference to a related resource.
type Link struct {
	Href string `json:"href"`
}

type Links map[string]Link

type userResource struct {
	*models.User
	Links Links `json:"_links"`
}

type accountResource struct {
	*models.Account
	Links Links `json:"_links"`
}

type transactionResource struct {
	*models.Transaction
	Links Links `json:"_links"`
}

// collection wraps a list as {"_embedded": {"<kind>": [...]}, "_links": {...}}.
type collection struct {
	Embedded map[string]any `json:"_embedded"`
	Links    Links          `json:"_links"`
}

// link resolves a named route. Unknown routes or mismatched variables produce
// an empty href; route names are fixed in Router so this does not happen in practice.
func (h *Handler) link(name string, pairs ...string) Link {
	route := h.router.Get(name)
	if route == nil {
		return Link{}
	}
	u, err := route.URL(pairs...)
	if err != nil {
		h.log.WithError(err).Warnf("Failed to build link %q", name)
		return Link{}
	}
	return Link{Href: u.String()}
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}

func (h *Handler) userResource(u *models.User) userResource {
	return userResource{User: u, Links: Links{
		"self":     h.link("user", "id", id(u.ID)),
		"users":    h.link("users"),
		"accounts": h.link("userAccounts", "userId", id(u.ID)),
	}}
}

func (h *Handler) accountResource(a *models.Account) accountResource {
	return accountResource{Account: a, Links: Links{
		"self":         h.link("account", "id", id(a.ID)),
		"accounts":     h.link("accounts"),
		"user":         h.link("user", "id", id(a.UserID)),
		"transactions": h.link("accountTransactions", "accountId", id(a.ID)),
		"statement":    h.link("statement", "id", id(a.ID)),
	}}
}

func (h *Handler) transactionResource(t *models.Transaction) transactionResource {
	return transactionResource{Transaction: t, Links: Links{
		"self":         h.link("transaction", "id", id(t.ID)),
		"transactions": h.link("transactions"),
		"account":      h.link("account", "id", id(t.AccountID)),
	}}
}

func (h *Handler) userCollection(users []*models.User, self Link) collection {
	items := make([]userResource, 0, len(users))
	for _, u := range users {
		items = append(items, h.userResource(u))
	}
	return collection{
		Embedded: map[string]any{"users": items},
		Links:    Links{"self": self},
	}
}

func (h *Handler) accountCollection(accounts []*models.Account, self Link) collection {
	items := make([]accountResource, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, h.accountResource(a))
	}
	return collection{
		Embedded: map[string]any{"accounts": items},
		Links:    Links{"self": self},
	}
}

func (h *Handler) transactionCollection(transactions []*models.Transaction, self Link) collection {
	items := make([]transactionResource, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, h.transactionResource(t))
	}
	return collection{
		Embedded: map[string]any{"transactions": items},
		Links:    Links{"self": self},
	}
}
