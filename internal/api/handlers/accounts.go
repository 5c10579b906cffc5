package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bankops/ledger-api/internal/api/httpx"
	"github.com/bankops/ledger-api/internal/api/validate"
	"github.com/bankops/ledger-api/internal/models"
	"github.com/bankops/ledger-api/internal/services"
)

// AccountsHandler is the request shell: it parses and coerces incoming
// requests, hands the services already-typed values, and maps domain errors
// to HTTP statuses. No business rule lives here.
type AccountsHandler struct {
	Ledger   *services.LedgerService
	Accounts *services.AccountService
}

func NewAccountsHandler(ls *services.LedgerService, as *services.AccountService) *AccountsHandler {
	return &AccountsHandler{Ledger: ls, Accounts: as}
}

type moveReq struct {
	Branch int64           `json:"branch"`
	Number int64           `json:"account_number"`
	Amount decimal.Decimal `json:"amount"`
}

type transferReq struct {
	SourceBranch       int64           `json:"source_branch"`
	SourceAccount      int64           `json:"source_account"`
	DestinationBranch  int64           `json:"destination_branch"`
	DestinationAccount int64           `json:"destination_account"`
	Amount             decimal.Decimal `json:"amount"`
}

type createReq struct {
	Branch  int64           `json:"branch"`
	Number  int64           `json:"account_number"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type balanceResp struct {
	Balance decimal.Decimal `json:"balance"`
}

type rankedResp struct {
	Branch  int64           `json:"branch"`
	Number  int64           `json:"account_number"`
	Name    string          `json:"name,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

func (h *AccountsHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if !decodeMove(w, r, &req) {
		return
	}
	balance, err := h.Ledger.Deposit(r.Context(), req.Branch, req.Number, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, balanceResp{Balance: balance})
}

func (h *AccountsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req moveReq
	if !decodeMove(w, r, &req) {
		return
	}
	balance, err := h.Ledger.Withdraw(r.Context(), req.Branch, req.Number, req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, balanceResp{Balance: balance})
}

func (h *AccountsHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body", nil)
		return
	}
	var errs validate.Errs
	for _, e := range []*validate.ErrField{
		validate.PositiveInt("source_branch", req.SourceBranch),
		validate.PositiveInt("source_account", req.SourceAccount),
		validate.PositiveInt("destination_branch", req.DestinationBranch),
		validate.PositiveInt("destination_account", req.DestinationAccount),
		validate.PositiveAmount("amount", req.Amount),
	} {
		if e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
		return
	}
	balance, err := h.Ledger.Transfer(r.Context(),
		req.SourceBranch, req.SourceAccount,
		req.DestinationBranch, req.DestinationAccount,
		req.Amount,
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, balanceResp{Balance: balance})
}

func (h *AccountsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	branch, number, ok := queryRef(w, r)
	if !ok {
		return
	}
	balance, err := h.Accounts.Balance(r.Context(), branch, number)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, balanceResp{Balance: balance})
}

func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	branch, number, ok := queryRef(w, r)
	if !ok {
		return
	}
	remaining, err := h.Accounts.Delete(r.Context(), branch, number)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]int64{"active_accounts_in_branch": remaining})
}

func (h *AccountsHandler) Average(w http.ResponseWriter, r *http.Request) {
	branch, err := strconv.ParseInt(chi.URLParam(r, "branch"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "branch must be numeric", nil)
		return
	}
	avg, err := h.Accounts.AverageByBranch(r.Context(), branch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]decimal.Decimal{"average_balance": avg})
}

func (h *AccountsHandler) Lowest(w http.ResponseWriter, r *http.Request) {
	n, ok := countParam(w, r)
	if !ok {
		return
	}
	accts, err := h.Accounts.Lowest(r.Context(), n)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]rankedResp, 0, len(accts))
	for _, a := range accts {
		out = append(out, rankedResp{Branch: a.Branch, Number: a.Number, Balance: a.Balance})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *AccountsHandler) Highest(w http.ResponseWriter, r *http.Request) {
	n, ok := countParam(w, r)
	if !ok {
		return
	}
	accts, err := h.Accounts.Highest(r.Context(), n)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ranked(accts))
}

func (h *AccountsHandler) Private(w http.ResponseWriter, r *http.Request) {
	accts, err := h.Accounts.PrivateClients(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ranked(accts))
}

func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accts, err := h.Accounts.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if accts == nil {
		accts = []models.Account{}
	}
	httpx.WriteJSON(w, http.StatusOK, accts)
}

func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body", nil)
		return
	}
	var errs validate.Errs
	for _, e := range []*validate.ErrField{
		validate.PositiveInt("branch", req.Branch),
		validate.PositiveInt("account_number", req.Number),
		validate.Required("name", req.Name),
	} {
		if e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
		return
	}
	a, err := h.Accounts.Create(r.Context(), req.Branch, req.Number, req.Name, req.Balance)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}

// ----------------- helpers -----------------

func decodeMove(w http.ResponseWriter, r *http.Request, req *moveReq) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "malformed request body", nil)
		return false
	}
	var errs validate.Errs
	for _, e := range []*validate.ErrField{
		validate.PositiveInt("branch", req.Branch),
		validate.PositiveInt("account_number", req.Number),
		validate.PositiveAmount("amount", req.Amount),
	} {
		if e != nil {
			errs = append(errs, *e)
		}
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
		return false
	}
	return true
}

func queryRef(w http.ResponseWriter, r *http.Request) (branch, number int64, ok bool) {
	var err error
	if branch, err = strconv.ParseInt(r.URL.Query().Get("branch"), 10, 64); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "branch must be numeric", nil)
		return 0, 0, false
	}
	if number, err = strconv.ParseInt(r.URL.Query().Get("account_number"), 10, 64); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "account_number must be numeric", nil)
		return 0, 0, false
	}
	return branch, number, true
}

func countParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "count"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "count must be numeric", nil)
		return 0, false
	}
	return n, true
}

func ranked(accts []models.Account) []rankedResp {
	out := make([]rankedResp, 0, len(accts))
	for _, a := range accts {
		out = append(out, rankedResp{Branch: a.Branch, Number: a.Number, Name: a.Name, Balance: a.Balance})
	}
	return out
}

// writeDomainError maps domain errors onto statuses: not-found family 404,
// bad input 400, funds/conflict 409, everything else 500. Codes mirror the
// error taxonomy so clients can branch without parsing messages.
func writeDomainError(w http.ResponseWriter, err error) {
	var invalidID *models.InvalidIdentifierError
	var invalidAmt *models.InvalidAmountError
	var insufficient *models.InsufficientFundsError

	switch {
	case errors.As(err, &invalidID):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_identifier", err.Error(), map[string]string{"field": invalidID.Field})
	case errors.As(err, &invalidAmt):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_amount", err.Error(), map[string]string{"field": invalidAmt.Field})
	case errors.Is(err, models.ErrSameAccount):
		httpx.WriteError(w, http.StatusBadRequest, "same_account", err.Error(), nil)
	case errors.Is(err, models.ErrNegativeBalance):
		httpx.WriteError(w, http.StatusBadRequest, "negative_balance", err.Error(), nil)
	case errors.Is(err, models.ErrAccountExists):
		httpx.WriteError(w, http.StatusConflict, "account_exists", err.Error(), nil)
	case errors.Is(err, models.ErrSourceAccountNotFound):
		httpx.WriteError(w, http.StatusNotFound, "source_account_not_found", err.Error(), nil)
	case errors.Is(err, models.ErrDestinationAccountNotFound):
		httpx.WriteError(w, http.StatusNotFound, "destination_account_not_found", err.Error(), nil)
	case errors.Is(err, models.ErrAccountNotFound):
		httpx.WriteError(w, http.StatusNotFound, "account_not_found", err.Error(), nil)
	case errors.Is(err, models.ErrNoAccounts):
		httpx.WriteError(w, http.StatusNotFound, "no_accounts", err.Error(), nil)
	case errors.As(err, &insufficient):
		httpx.WriteError(w, http.StatusConflict, "insufficient_funds", err.Error(), map[string]decimal.Decimal{"balance": insufficient.Balance})
	case errors.Is(err, models.ErrUpdateConflict):
		httpx.WriteError(w, http.StatusConflict, "update_conflict", err.Error(), nil)
	case errors.Is(err, models.ErrTransferFailed):
		httpx.WriteError(w, http.StatusInternalServerError, "transfer_failed", err.Error(), nil)
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
