// Package memory is an in-process account store with the same conditional
// update semantics as the postgres one. It backs tests and the dev mode
// selected by STORE=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bankops/ledger-api/internal/models"
	repo "github.com/bankops/ledger-api/internal/repository"
)

type accountsRepo struct {
	mu    sync.Mutex
	byID  map[string]*models.Account
	order []string // insertion order, so listings are stable
}

func NewAccounts() repo.Accounts {
	return &accountsRepo{byID: make(map[string]*models.Account)}
}

func (r *accountsRepo) Create(_ context.Context, a models.Account) (models.Account, error) {
	if a.Balance.IsNegative() {
		return models.Account{}, models.ErrNegativeBalance
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
		a.UpdatedAt = a.CreatedAt
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(a.Branch, a.Number) != nil {
		return models.Account{}, models.ErrAccountExists
	}
	cp := a
	r.byID[a.ID] = &cp
	r.order = append(r.order, a.ID)
	return a, nil
}

func (r *accountsRepo) GetByNumber(_ context.Context, branch, number int64) (models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a := r.find(branch, number); a != nil {
		return *a, nil
	}
	return models.Account{}, models.ErrAccountNotFound
}

func (r *accountsRepo) ListByBranch(_ context.Context, branch int64) ([]models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Account
	for _, id := range r.order {
		if a := r.byID[id]; a.Branch == branch {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *accountsRepo) ListAll(_ context.Context) ([]models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Account, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out, nil
}

func (r *accountsRepo) CountByBranch(_ context.Context, branch int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.byID {
		if a.Branch == branch {
			n++
		}
	}
	return n, nil
}

func (r *accountsRepo) UpdateBalance(_ context.Context, u models.BalanceUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.swap(u)
}

// TransferBalances has no transaction primitive to lean on, so it runs as a
// small saga: apply the debit, apply the credit, and reverse the debit if
// the credit side fails. Under the store mutex the reversal cannot itself
// conflict.
func (r *accountsRepo) TransferBalances(_ context.Context, debit, credit models.BalanceUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.swap(debit); err != nil {
		return err
	}
	if err := r.swap(credit); err != nil {
		_ = r.swap(models.BalanceUpdate{
			ID:         debit.ID,
			OldBalance: debit.NewBalance,
			NewBalance: debit.OldBalance,
		})
		return err
	}
	return nil
}

func (r *accountsRepo) Delete(_ context.Context, branch, number int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.find(branch, number)
	if a == nil {
		return models.ErrAccountNotFound
	}
	delete(r.byID, a.ID)
	for i, id := range r.order {
		if id == a.ID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// find and swap expect r.mu held.

func (r *accountsRepo) find(branch, number int64) *models.Account {
	for _, a := range r.byID {
		if a.Branch == branch && a.Number == number {
			return a
		}
	}
	return nil
}

func (r *accountsRepo) swap(u models.BalanceUpdate) error {
	a, ok := r.byID[u.ID]
	if !ok || !a.Balance.Equal(u.OldBalance) {
		return models.ErrUpdateConflict
	}
	a.Balance = u.NewBalance
	a.UpdatedAt = time.Now()
	return nil
}
