package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aureliacommerce/storecredit-backend/internal/storecredit"
	"github.com/aureliacommerce/storecredit-backend/pkg/config"
	"github.com/aureliacommerce/storecredit-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS store_credits (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  memo TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS store_credit_entries (
  id TEXT PRIMARY KEY,
  store_credit_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  originator_kind TEXT,
  originator_id TEXT,
  authorization_code TEXT,
  memo TEXT,
  cleared_at DATETIME,
  voided_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}

	svc, err := storecredit.NewService(storecredit.ServiceParams{
		Repo: storecredit.NewRepository(db),
	})
	require.NoError(t, err)

	return NewRouter(RouterParams{
		Config:      &config.Config{App: config.AppConfig{Env: "test"}},
		Logger:      logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DBPinger:    stubPinger{},
		StoreCredit: svc,
	})
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), "body: %s", resp.Body.String())
	return envelope.Data
}

func TestRouterStoreCreditLifecycle(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/store-credits",
		fmt.Sprintf(`{"user_id":%q}`, uuid.NewString()))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	account := decodeData(t, resp)
	accountID := account["id"].(string)
	assert.Equal(t, "USD", account["currency"])

	base := "/api/v1/store-credits/" + accountID

	resp = doJSON(t, router, http.MethodPost, base+"/credit", `{"amount":"50.00"}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	grant := decodeData(t, resp)
	grantID := grant["id"].(string)
	assert.Equal(t, "pending", grant["status"])
	assert.Equal(t, "50.00", grant["amount"])

	resp = doJSON(t, router, http.MethodPost, base+"/entries/"+grantID+"/clear", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "cleared", decodeData(t, resp)["status"])

	resp = doJSON(t, router, http.MethodPost, base+"/debit", `{"amount":"20.00","authorization_code":"auth-77"}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	debit := decodeData(t, resp)
	debitID := debit["id"].(string)
	assert.Equal(t, "-20.00", debit["amount"])

	resp = doJSON(t, router, http.MethodGet, base+"/balances", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	balances := decodeData(t, resp)
	assert.Equal(t, "50.00", balances["cleared"].(map[string]any)["amount"])
	assert.Equal(t, "-20.00", balances["uncleared"].(map[string]any)["amount"])
	assert.Equal(t, "30.00", balances["working"].(map[string]any)["amount"])

	resp = doJSON(t, router, http.MethodPost, base+"/entries/"+debitID+"/void", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "voided", decodeData(t, resp)["status"])

	resp = doJSON(t, router, http.MethodGet, base+"/balances", "")
	require.Equal(t, http.StatusOK, resp.Code)
	balances = decodeData(t, resp)
	assert.Equal(t, "50.00", balances["working"].(map[string]any)["amount"])

	// Settled entries reject any further transition.
	resp = doJSON(t, router, http.MethodPost, base+"/entries/"+grantID+"/void", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code, resp.Body.String())

	resp = doJSON(t, router, http.MethodGet, base+"/entries", "")
	require.Equal(t, http.StatusOK, resp.Code)
	list := decodeData(t, resp)
	assert.Len(t, list["entries"], 2)
}

func TestRouterRejectsInvalidAmount(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/store-credits",
		fmt.Sprintf(`{"user_id":%q}`, uuid.NewString()))
	require.Equal(t, http.StatusCreated, resp.Code)
	accountID := decodeData(t, resp)["id"].(string)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/store-credits/"+accountID+"/debit", `{"amount":"0"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Amount must be greater than 0", envelope.Error.Message)
}

func TestRouterUnknownAccount(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/store-credits/"+uuid.NewString()+"/balances", "")
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())

	resp = doJSON(t, router, http.MethodGet, "/api/v1/store-credits/not-a-uuid/balances", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "test", resp.Header().Get("X-Aurelia-Env"))

	resp = doJSON(t, router, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}
