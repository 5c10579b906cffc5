package services

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bankops/ledger-api/internal/models"
	repo "github.com/bankops/ledger-api/internal/repository"
)

// AccountService serves the read side plus account lifecycle: lookups,
// per-branch and global aggregates, creation and deletion. It never goes
// through the mutation engine; everything here is a scan over the store
// with the ranking done in process.
type AccountService struct {
	accounts repo.Accounts
}

func NewAccountService(r repo.Accounts) *AccountService {
	return &AccountService{accounts: r}
}

func (s *AccountService) Create(ctx context.Context, branch, number int64, name string, opening decimal.Decimal) (models.Account, error) {
	if err := checkAccountRef("branch", branch, "account_number", number); err != nil {
		return models.Account{}, err
	}
	if strings.TrimSpace(name) == "" {
		return models.Account{}, &models.InvalidIdentifierError{Field: "name"}
	}
	if opening.IsNegative() {
		return models.Account{}, models.ErrNegativeBalance
	}
	return s.accounts.Create(ctx, models.Account{
		Branch: branch, Number: number, Name: strings.TrimSpace(name), Balance: opening,
	})
}

func (s *AccountService) Balance(ctx context.Context, branch, number int64) (decimal.Decimal, error) {
	if err := checkAccountRef("branch", branch, "account_number", number); err != nil {
		return decimal.Zero, err
	}
	a, err := s.accounts.GetByNumber(ctx, branch, number)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance, nil
}

// Delete removes the account and reports how many accounts remain in its
// branch.
func (s *AccountService) Delete(ctx context.Context, branch, number int64) (int64, error) {
	if err := checkAccountRef("branch", branch, "account_number", number); err != nil {
		return 0, err
	}
	if err := s.accounts.Delete(ctx, branch, number); err != nil {
		return 0, err
	}
	return s.accounts.CountByBranch(ctx, branch)
}

// AverageByBranch is the arithmetic mean over the branch, rounded to two
// places. An empty branch is an error, not a NaN.
func (s *AccountService) AverageByBranch(ctx context.Context, branch int64) (decimal.Decimal, error) {
	if err := checkIdentifier("branch", branch); err != nil {
		return decimal.Zero, err
	}
	accts, err := s.accounts.ListByBranch(ctx, branch)
	if err != nil {
		return decimal.Zero, err
	}
	if len(accts) == 0 {
		return decimal.Zero, models.ErrNoAccounts
	}
	sum := decimal.Zero
	for _, a := range accts {
		sum = sum.Add(a.Balance)
	}
	return sum.Div(decimal.NewFromInt(int64(len(accts)))).Round(2), nil
}

// Lowest returns at most n accounts ordered by ascending balance.
func (s *AccountService) Lowest(ctx context.Context, n int) ([]models.Account, error) {
	if n <= 0 {
		return []models.Account{}, nil
	}
	accts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(accts, func(i, j int) bool {
		return accts[i].Balance.LessThan(accts[j].Balance)
	})
	return truncate(accts, n), nil
}

// Highest returns at most n accounts ordered by descending balance, ties
// broken by holder name ascending.
func (s *AccountService) Highest(ctx context.Context, n int) ([]models.Account, error) {
	if n <= 0 {
		return []models.Account{}, nil
	}
	accts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(accts, func(i, j int) bool { return richer(accts[i], accts[j]) })
	return truncate(accts, n), nil
}

// PrivateClients picks the top-balance account of each branch, same
// tie-break as Highest. Branches appear in the order they are first seen in
// the store, not sorted.
func (s *AccountService) PrivateClients(ctx context.Context) ([]models.Account, error) {
	accts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	best := make(map[int64]models.Account)
	var branches []int64
	for _, a := range accts {
		top, seen := best[a.Branch]
		if !seen {
			best[a.Branch] = a
			branches = append(branches, a.Branch)
			continue
		}
		if richer(a, top) {
			best[a.Branch] = a
		}
	}
	out := make([]models.Account, 0, len(branches))
	for _, b := range branches {
		out = append(out, best[b])
	}
	return out, nil
}

func (s *AccountService) ListAll(ctx context.Context) ([]models.Account, error) {
	return s.accounts.ListAll(ctx)
}

// richer orders by balance descending, then holder name ascending.
func richer(a, b models.Account) bool {
	if !a.Balance.Equal(b.Balance) {
		return a.Balance.GreaterThan(b.Balance)
	}
	return a.Name < b.Name
}

func truncate(accts []models.Account, n int) []models.Account {
	if len(accts) > n {
		accts = accts[:n]
	}
	return accts
}
