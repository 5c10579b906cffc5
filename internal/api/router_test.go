package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankops/ledger-api/internal/config"
	"github.com/bankops/ledger-api/internal/models"
	"github.com/bankops/ledger-api/internal/repository/memory"
	"github.com/bankops/ledger-api/internal/services"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestServer(t *testing.T, accounts ...models.Account) *httptest.Server {
	t.Helper()
	store := memory.NewAccounts()
	for _, a := range accounts {
		_, err := store.Create(context.Background(), a)
		require.NoError(t, err)
	}
	cfg := config.Config{Env: "test", RateRPS: 0}
	r := NewRouter(cfg,
		services.NewLedgerService(store, dec("1.00"), dec("8.00")),
		services.NewAccountService(store),
	)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBalance(t *testing.T, resp *http.Response) decimal.Decimal {
	t.Helper()
	defer resp.Body.Close()
	var out struct {
		Balance decimal.Decimal `json:"balance"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Balance
}

func TestEndToEndScenario(t *testing.T) {
	srv := newTestServer(t,
		models.Account{Branch: 1, Number: 100, Name: "Ana", Balance: dec("100")},
		models.Account{Branch: 2, Number: 200, Name: "Bia", Balance: dec("5")},
	)

	resp := postJSON(t, srv.URL+"/accounts/deposit", `{"branch":1,"account_number":100,"amount":50}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, dec("150").Equal(decodeBalance(t, resp)))

	resp = postJSON(t, srv.URL+"/accounts/withdraw", `{"branch":1,"account_number":100,"amount":20}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, dec("129").Equal(decodeBalance(t, resp)))

	resp = postJSON(t, srv.URL+"/accounts/transfer",
		`{"source_branch":1,"source_account":100,"destination_branch":2,"destination_account":200,"amount":50}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, dec("71").Equal(decodeBalance(t, resp)))

	resp, err := http.Get(srv.URL + "/accounts/balance?branch=2&account_number=200")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, dec("55").Equal(decodeBalance(t, resp)))
}

func TestErrorStatusMapping(t *testing.T) {
	srv := newTestServer(t,
		models.Account{Branch: 1, Number: 100, Name: "Ana", Balance: dec("10")},
	)

	cases := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown account", "/accounts/deposit", `{"branch":1,"account_number":999,"amount":10}`, http.StatusNotFound, "account_not_found"},
		{"bad amount", "/accounts/deposit", `{"branch":1,"account_number":100,"amount":-1}`, http.StatusBadRequest, "validation_failed"},
		{"insufficient funds", "/accounts/withdraw", `{"branch":1,"account_number":100,"amount":10}`, http.StatusConflict, "insufficient_funds"},
		{"same account", "/accounts/transfer", `{"source_branch":1,"source_account":100,"destination_branch":1,"destination_account":100,"amount":5}`, http.StatusBadRequest, "same_account"},
		{"unknown destination", "/accounts/transfer", `{"source_branch":1,"source_account":100,"destination_branch":9,"destination_account":900,"amount":5}`, http.StatusNotFound, "destination_account_not_found"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+tc.path, tc.body)
			defer resp.Body.Close()
			require.Equal(t, tc.status, resp.StatusCode)

			var apiErr struct {
				Code string `json:"code"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
			assert.Equal(t, tc.code, apiErr.Code)
		})
	}
}

func TestAggregationRoutes(t *testing.T) {
	srv := newTestServer(t,
		models.Account{Branch: 1, Number: 100, Name: "Ana", Balance: dec("10")},
		models.Account{Branch: 1, Number: 200, Name: "Bia", Balance: dec("20")},
		models.Account{Branch: 1, Number: 300, Name: "Caio", Balance: dec("30")},
		models.Account{Branch: 2, Number: 100, Name: "Duda", Balance: dec("100")},
	)

	resp, err := http.Get(srv.URL + "/accounts/average/1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var avg struct {
		AverageBalance decimal.Decimal `json:"average_balance"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&avg))
	resp.Body.Close()
	assert.Equal(t, "20.00", avg.AverageBalance.StringFixed(2))

	resp, err = http.Get(srv.URL + "/accounts/average/7")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/accounts/highest/2")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var top []struct {
		Name    string          `json:"name"`
		Balance decimal.Decimal `json:"balance"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&top))
	resp.Body.Close()
	require.Len(t, top, 2)
	assert.Equal(t, "Duda", top[0].Name)
	assert.Equal(t, "Caio", top[1].Name)

	resp, err = http.Get(srv.URL + "/accounts/private")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var private []struct {
		Branch int64  `json:"branch"`
		Name   string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&private))
	resp.Body.Close()
	require.Len(t, private, 2)
	assert.Equal(t, "Caio", private[0].Name)
	assert.Equal(t, "Duda", private[1].Name)

	resp, err = http.Get(srv.URL + "/accounts/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []models.Account
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	resp.Body.Close()
	assert.Len(t, all, 4)
}

func TestDeleteRoute(t *testing.T) {
	srv := newTestServer(t,
		models.Account{Branch: 1, Number: 100, Name: "Ana", Balance: dec("10")},
		models.Account{Branch: 1, Number: 200, Name: "Bia", Balance: dec("20")},
	)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/accounts/?branch=1&account_number=100", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Remaining int64 `json:"active_accounts_in_branch"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(1), out.Remaining)
}
