package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/bank-api/internal/config"
	"github.com/Dan9191/bank-api/internal/middleware"
	"github.com/Dan9191/bank-api/internal/repository"
	"github.com/Dan9191/bank-api/internal/service"
)

const testSecret = "handler-secret"

type resource struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	AccountID int64           `json:"account_id"`
	Username  string          `json:"username"`
	Number    string          `json:"number"`
	Type      string          `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	Amount    decimal.Decimal `json:"amount"`
	Links     Links           `json:"_links"`
}

type resourceList struct {
	Embedded map[string][]resource `json:"_embedded"`
	Links    Links                 `json:"_links"`
}

func newTestServer(t *testing.T, opts Options) http.Handler {
	t.Helper()

	repo, err := repository.Open(context.Background(), repository.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	opts.JWTSecret = testSecret
	svc := service.NewService(repo, logger, &config.Config{JWTSecret: testSecret})
	return NewHandler(svc, logger).Router(opts)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		buf = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		buf = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}

func TestBankFlow(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := doJSON(t, srv, http.MethodPost, "/users", map[string]string{
		"username": "alice", "password": "secret1", "email": "alice@example.com",
	}, "")
	expectStatus(t, rec, http.StatusCreated)
	user := decodeBody[resource](t, rec)
	if user.Username != "alice" || user.ID == 0 {
		t.Fatalf("unexpected user: %+v", user)
	}
	if got := rec.Header().Get("Location"); got != "/users/"+id(user.ID) {
		t.Errorf("Location = %q", got)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("password hash leaked into response")
	}
	if got := user.Links["accounts"].Href; got != "/accounts/user/"+id(user.ID) {
		t.Errorf("accounts link = %q", got)
	}

	rec = doJSON(t, srv, http.MethodPost, "/accounts/"+id(user.ID), map[string]any{
		"number": "123456", "type": "Checking", "balance": "1000.50",
	}, "")
	expectStatus(t, rec, http.StatusCreated)
	account := decodeBody[resource](t, rec)
	if account.UserID != user.ID || !account.Balance.Equal(decimal.RequireFromString("1000.50")) {
		t.Fatalf("unexpected account: %+v", account)
	}
	if got := account.Links["user"].Href; got != "/users/"+id(user.ID) {
		t.Errorf("user link = %q", got)
	}

	for _, amount := range []string{"100", "50"} {
		rec = doJSON(t, srv, http.MethodPost, "/transactions/"+id(account.ID), map[string]any{
			"type": "Deposit", "amount": amount,
		}, "")
		expectStatus(t, rec, http.StatusCreated)
	}

	t.Run("list account transactions", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/transactions/account/"+id(account.ID), nil, "")
		expectStatus(t, rec, http.StatusOK)
		list := decodeBody[resourceList](t, rec)
		items := list.Embedded["transactions"]
		if len(items) != 2 {
			t.Fatalf("got %d transactions, want 2", len(items))
		}
		for _, item := range items {
			if item.AccountID != account.ID {
				t.Errorf("transaction %d belongs to account %d", item.ID, item.AccountID)
			}
			if got := item.Links["account"].Href; got != "/accounts/"+id(account.ID) {
				t.Errorf("account link = %q", got)
			}
		}
		if got := list.Links["self"].Href; got != "/transactions/account/"+id(account.ID) {
			t.Errorf("self link = %q", got)
		}
	})

	t.Run("user accounts", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/accounts/user/"+id(user.ID), nil, "")
		expectStatus(t, rec, http.StatusOK)
		if n := len(decodeBody[resourceList](t, rec).Embedded["accounts"]); n != 1 {
			t.Errorf("got %d accounts, want 1", n)
		}
	})

	t.Run("statement", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/accounts/"+id(account.ID)+"/statement", nil, "")
		expectStatus(t, rec, http.StatusOK)
		if ct := rec.Header().Get("Content-Type"); ct != "application/xml" {
			t.Errorf("Content-Type = %q", ct)
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(rec.Body.Bytes()); err != nil {
			t.Fatalf("invalid XML: %v", err)
		}
		if n := len(doc.FindElements("//Transaction")); n != 2 {
			t.Errorf("got %d Transaction elements, want 2", n)
		}
	})

	t.Run("replace account keeps owner", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/accounts/"+id(account.ID), map[string]any{
			"number": "999999", "type": "Savings", "balance": "5",
		}, "")
		expectStatus(t, rec, http.StatusOK)
		got := decodeBody[resource](t, rec)
		if got.Number != "999999" || got.Type != "Savings" || got.UserID != user.ID {
			t.Errorf("unexpected account after replace: %+v", got)
		}
	})

	t.Run("delete user cascades", func(t *testing.T) {
		expectStatus(t, doJSON(t, srv, http.MethodDelete, "/users/"+id(user.ID), nil, ""), http.StatusNoContent)
		expectStatus(t, doJSON(t, srv, http.MethodGet, "/users/"+id(user.ID), nil, ""), http.StatusNotFound)
		expectStatus(t, doJSON(t, srv, http.MethodGet, "/accounts/"+id(account.ID), nil, ""), http.StatusNotFound)

		rec := doJSON(t, srv, http.MethodGet, "/transactions", nil, "")
		expectStatus(t, rec, http.StatusOK)
		if n := len(decodeBody[resourceList](t, rec).Embedded["transactions"]); n != 0 {
			t.Errorf("got %d transactions after cascade, want 0", n)
		}
	})
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t, Options{})
	expectStatus(t, doJSON(t, srv, http.MethodPost, "/users", map[string]string{"username": "bob", "password": "pw"}, ""), http.StatusCreated)

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		want    int
		message string
	}{
		{"unknown user", http.MethodGet, "/users/999", nil, http.StatusNotFound, "could not find user with id: 999"},
		{"zero id", http.MethodGet, "/users/0", nil, http.StatusNotFound, "could not find user with id: 0"},
		{"account for zero user", http.MethodPost, "/accounts/0", map[string]string{"type": "Checking"}, http.StatusNotFound, "could not find user with id: 0"},
		{"unknown account", http.MethodGet, "/accounts/42", nil, http.StatusNotFound, "could not find account with id: 42"},
		{"unknown transaction", http.MethodDelete, "/transactions/7", nil, http.StatusNotFound, "could not find transaction with id: 7"},
		{"account for unknown user", http.MethodPost, "/accounts/999", map[string]string{"type": "Checking"}, http.StatusNotFound, "could not find user with id: 999"},
		{"transaction for unknown account", http.MethodPost, "/transactions/5", map[string]string{"type": "Deposit", "amount": "1"}, http.StatusNotFound, "could not find account with id: 5"},
		{"replace unknown user", http.MethodPut, "/users/999", map[string]string{"username": "x"}, http.StatusNotFound, "could not find user with id: 999"},
		{"duplicate username", http.MethodPost, "/users", map[string]string{"username": "bob", "password": "pw"}, http.StatusConflict, ""},
		{"missing password", http.MethodPost, "/users", map[string]string{"username": "carol"}, http.StatusBadRequest, ""},
		{"malformed body", http.MethodPost, "/users", "{not json", http.StatusBadRequest, ""},
		{"non-numeric id", http.MethodGet, "/users/abc", nil, http.StatusNotFound, ""},
		{"bad credentials", http.MethodPost, "/login", map[string]string{"username": "bob", "password": "wrong"}, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, tt.method, tt.path, tt.body, "")
			expectStatus(t, rec, tt.want)
			if tt.message != "" {
				body := decodeBody[map[string]string](t, rec)
				if body["error"] != tt.message {
					t.Errorf("error = %q, want %q", body["error"], tt.message)
				}
			}
		})
	}
}

func TestEmptyCollections(t *testing.T) {
	srv := newTestServer(t, Options{})

	for _, tt := range []struct{ path, kind string }{
		{"/users", "users"},
		{"/accounts", "accounts"},
		{"/accounts/user/1", "accounts"},
		{"/transactions/account/1", "transactions"},
	} {
		rec := doJSON(t, srv, http.MethodGet, tt.path, nil, "")
		expectStatus(t, rec, http.StatusOK)
		items, ok := decodeBody[resourceList](t, rec).Embedded[tt.kind]
		if !ok || items == nil || len(items) != 0 {
			t.Errorf("%s: expected empty %s list, got %s", tt.path, tt.kind, rec.Body.String())
		}
	}
}

func TestAuthEnabled(t *testing.T) {
	srv := newTestServer(t, Options{AuthEnabled: true})

	rec := doJSON(t, srv, http.MethodPost, "/users", map[string]string{"username": "dave", "password": "pw"}, "")
	expectStatus(t, rec, http.StatusCreated)
	user := decodeBody[resource](t, rec)
	accountPath := "/accounts/" + id(user.ID)

	expectStatus(t, doJSON(t, srv, http.MethodPost, accountPath, map[string]string{"type": "Checking"}, ""), http.StatusUnauthorized)
	expectStatus(t, doJSON(t, srv, http.MethodDelete, "/users/"+id(user.ID), nil, "bogus"), http.StatusUnauthorized)

	rec = doJSON(t, srv, http.MethodPost, "/login", map[string]string{"username": "dave", "password": "pw"}, "")
	expectStatus(t, rec, http.StatusOK)
	token, _ := decodeBody[map[string]any](t, rec)["token"].(string)
	if token == "" {
		t.Fatal("expected token in login response")
	}

	rec = doJSON(t, srv, http.MethodPost, accountPath, map[string]string{"type": "Checking"}, token)
	expectStatus(t, rec, http.StatusCreated)
	if number := decodeBody[resource](t, rec).Number; len(number) != 10 {
		t.Errorf("generated number = %q, want 10 digits", number)
	}

	// Reads stay public.
	expectStatus(t, doJSON(t, srv, http.MethodGet, "/accounts", nil, ""), http.StatusOK)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, Options{Metrics: middleware.NewMetrics()})

	rec := doJSON(t, srv, http.MethodGet, "/health", nil, "")
	expectStatus(t, rec, http.StatusOK)
	if status := decodeBody[map[string]string](t, rec)["status"]; status != "ok" {
		t.Errorf("health status = %q", status)
	}

	doJSON(t, srv, http.MethodGet, "/users/5", nil, "")
	rec = doJSON(t, srv, http.MethodGet, "/metrics", nil, "")
	expectStatus(t, rec, http.StatusOK)
	want := `bank_http_requests_total{code="404",method="GET",route="/users/{id:[0-9]+}"} 1`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("metrics output missing %q", want)
	}
}
