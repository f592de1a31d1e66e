package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/bank-api/internal/middleware"
	"github.com/Dan9191/bank-api/internal/service"
)

// Handler serves the REST API on top of the service layer.
type Handler struct {
	svc    *service.Service
	log    *logrus.Logger
	router *mux.Router
}

// Options configures the router.
type Options struct {
	// AuthEnabled requires a bearer token on every mutating route except user creation.
	AuthEnabled bool
	JWTSecret   string
	// Metrics is optional. When set, routes are instrumented and /metrics is served.
	Metrics *middleware.Metrics
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Router builds the route table. GET routes are named so resources can link to each other.
func (h *Handler) Router(opts Options) http.Handler {
	r := mux.NewRouter()
	h.router = r

	protect := func(fn http.HandlerFunc) http.Handler {
		if !opts.AuthEnabled {
			return fn
		}
		return middleware.AuthMiddleware(opts.JWTSecret)(fn)
	}

	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
		r.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)

	// Users
	r.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet).Name("users")
	r.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods(http.MethodGet).Name("user")
	r.Handle("/users/{id:[0-9]+}", protect(h.ReplaceUser)).Methods(http.MethodPut)
	r.Handle("/users/{id:[0-9]+}", protect(h.DeleteUser)).Methods(http.MethodDelete)

	// Accounts
	r.HandleFunc("/accounts", h.ListAccounts).Methods(http.MethodGet).Name("accounts")
	r.HandleFunc("/accounts/user/{userId:[0-9]+}", h.ListUserAccounts).Methods(http.MethodGet).Name("userAccounts")
	r.HandleFunc("/accounts/{id:[0-9]+}", h.GetAccount).Methods(http.MethodGet).Name("account")
	r.HandleFunc("/accounts/{id:[0-9]+}/statement", h.GetStatement).Methods(http.MethodGet).Name("statement")
	r.Handle("/accounts/{userId:[0-9]+}", protect(h.AddAccount)).Methods(http.MethodPost)
	r.Handle("/accounts/{id:[0-9]+}", protect(h.ReplaceAccount)).Methods(http.MethodPut)
	r.Handle("/accounts/{id:[0-9]+}", protect(h.DeleteAccount)).Methods(http.MethodDelete)

	// Transactions
	r.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet).Name("transactions")
	r.HandleFunc("/transactions/account/{accountId:[0-9]+}", h.ListAccountTransactions).Methods(http.MethodGet).Name("accountTransactions")
	r.HandleFunc("/transactions/{id:[0-9]+}", h.GetTransaction).Methods(http.MethodGet).Name("transaction")
	r.Handle("/transactions/{accountId:[0-9]+}", protect(h.AddTransaction)).Methods(http.MethodPost)
	r.Handle("/transactions/{id:[0-9]+}", protect(h.ReplaceTransaction)).Methods(http.MethodPut)
	r.Handle("/transactions/{id:[0-9]+}", protect(h.DeleteTransaction)).Methods(http.MethodDelete)

	return r
}

// Health reports whether the database is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		h.log.WithError(err).Warn("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"token_type": "Bearer",
		"expires_in": int(service.TokenTTL.Seconds()),
	})
}
