package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostasdel/banking-backend/internal/auth"
	"github.com/kostasdel/banking-backend/internal/config"
	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/repository/memory"
	"github.com/kostasdel/banking-backend/internal/services"
	"github.com/kostasdel/banking-backend/internal/worker"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repos := memory.NewRepositories(memory.NewStore())
	guard := ledger.NewGuard(2 * time.Second)
	wp := worker.NewPool(1)
	t.Cleanup(wp.Stop)

	tm := auth.NewTokenManager("test-access", "test-refresh", "banking-backend-test", time.Minute, time.Hour)
	cfg := config.Config{Env: "test", RateRPS: 0}

	r := NewRouter(RouterDeps{
		Cfg: cfg,
		TM:  tm,
		Cus: services.NewCustomerService(repos.Customers, repos.Accounts, "root@example.com"),
		Acc: services.NewAccountService(repos.Accounts, repos.Balances, repos.Transactions, repos.Customers),
		Bal: services.NewBalanceService(repos.Balances, repos.Accounts, repos.AuditLogs, guard, wp),
		Trx: services.NewTransactionService(repos.Transactions, repos.Accounts, repos.Balances, repos.AuditLogs, guard, wp, true),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func registerAndLogin(t *testing.T, base, email string) (customerID, token string) {
	t.Helper()
	var cust struct {
		ID string `json:"id"`
	}
	resp := doJSON(t, http.MethodPost, base+"/api/v1/auth/register", "", map[string]string{
		"full_name":     "Test Customer",
		"email":         email,
		"password":      "correct-horse",
		"date_of_birth": "1990-06-15",
	}, &cust)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	resp = doJSON(t, http.MethodPost, base+"/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "correct-horse",
	}, &tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, tok.AccessToken)
	return cust.ID, tok.AccessToken
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/accounts", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv.URL, "ada@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPostingFlow(t *testing.T) {
	srv := newTestServer(t)
	_, token := registerAndLogin(t, srv.URL, "ada@example.com")

	var acc struct {
		ID     string `json:"id"`
		Number string `json:"number"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/accounts", token, map[string]any{
		"type": "CHECKING",
	}, &acc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, ledger.ValidAccountNumber(acc.Number))

	// Deposit funds the account from outside.
	var dep struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/transactions", token, map[string]any{
		"credit_account_id": acc.ID,
		"amount":            "100.00",
		"currency":          "USD",
		"type":              "DEPOSIT",
	}, &dep)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "COMPLETED", dep.Status)

	var balances []struct {
		Currency string `json:"currency"`
		Amount   string `json:"amount"`
	}
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/accounts/%s/balances", srv.URL, acc.ID), token, nil, &balances)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, balances, 1)
	assert.Equal(t, "USD", balances[0].Currency)
	assert.Equal(t, "100", balances[0].Amount)

	// Overdrawing is a 422 with the available/requested pair.
	var apiErr struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/transactions", token, map[string]any{
		"debit_account_id": acc.ID,
		"amount":           "500.00",
		"currency":         "USD",
		"type":             "WITHDRAWAL",
	}, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "insufficient_funds", apiErr.Code)
	assert.Equal(t, "100.0000", apiErr.Details["available"])
	assert.Equal(t, "500.0000", apiErr.Details["requested"])

	// History shows both the deposit and the failed withdrawal.
	var txns []struct {
		Status string `json:"status"`
	}
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/accounts/%s/transactions", srv.URL, acc.ID), token, nil, &txns)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, txns, 2)
}

func TestDebitingForeignAccountForbidden(t *testing.T) {
	srv := newTestServer(t)
	_, aliceToken := registerAndLogin(t, srv.URL, "alice@example.com")
	_, bobToken := registerAndLogin(t, srv.URL, "bob@example.com")

	var acc struct {
		ID string `json:"id"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/accounts", aliceToken, map[string]any{
		"type": "CHECKING",
	}, &acc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/transactions", bobToken, map[string]any{
		"debit_account_id": acc.ID,
		"amount":           "10.00",
		"currency":         "USD",
		"type":             "WITHDRAWAL",
	}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminRoutesGated(t *testing.T) {
	srv := newTestServer(t)
	_, token := registerAndLogin(t, srv.URL, "ada@example.com")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/customers", token, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/transactions?status=COMPLETED", token, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// The fixture's customer service grants admin to root@example.com, so
// registering that address yields a working admin login.
func TestAdminFlow(t *testing.T) {
	srv := newTestServer(t)
	_, admin := registerAndLogin(t, srv.URL, "root@example.com")
	adaID, ada := registerAndLogin(t, srv.URL, "ada@example.com")

	var customers []struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/customers", admin, nil, &customers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, customers, 2)

	// Fund an account so the ledger views have something to show.
	var acc struct {
		ID string `json:"id"`
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/accounts", ada, map[string]any{
		"type": "CHECKING",
	}, &acc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/transactions", ada, map[string]any{
		"credit_account_id": acc.ID,
		"amount":            "100.00",
		"currency":          "USD",
		"type":              "DEPOSIT",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Ledger-wide listings, with and without a status filter.
	var txns []struct {
		Status string `json:"status"`
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/transactions", admin, nil, &txns)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, txns, 1)
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/transactions?status=COMPLETED", admin, nil, &txns)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, txns, 1)

	var balances []struct {
		ID        string `json:"id"`
		AccountID string `json:"account_id"`
		Amount    string `json:"amount"`
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/balances", admin, nil, &balances)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, balances, 1)
	assert.Equal(t, acc.ID, balances[0].AccountID)

	// Absolute write to someone else's balance.
	var adjusted struct {
		Amount string `json:"amount"`
	}
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/balances/%s/amount", srv.URL, balances[0].ID), admin, map[string]any{
		"amount": "250.00",
	}, &adjusted)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "250", adjusted.Amount)

	// Promotion takes effect on the next login.
	var promoted struct {
		Role string `json:"role"`
	}
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/customers/%s/role", srv.URL, adaID), admin, map[string]any{
		"role": "admin",
	}, &promoted)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "admin", promoted.Role)

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "correct-horse",
	}, &tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/customers", tok.AccessToken, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	srv := newTestServer(t)
	_, admin := registerAndLogin(t, srv.URL, "root@example.com")
	adaID, _ := registerAndLogin(t, srv.URL, "ada@example.com")

	resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/customers/%s/role", srv.URL, adaID), admin, map[string]any{
		"role": "superuser",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefreshTokenRejectedOnAPI(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv.URL, "ada@example.com")

	var tok struct {
		RefreshToken string `json:"refresh_token"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "correct-horse",
	}, &tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/accounts", tok.RefreshToken, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
