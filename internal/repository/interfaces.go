package repository

import (
	"context"

	"github.com/bankops/ledger-api/internal/models"
)

// Accounts is the account store. All balance writes are conditional: they
// carry the prior balance the caller read, and the store applies the new
// value only if the record still holds it, reporting
// models.ErrUpdateConflict otherwise. That keeps concurrent mutations from
// silently clobbering each other without any engine-level locking.
type Accounts interface {
	// Create stores a new account, assigning an ID when none is set.
	// Rejects a negative opening balance with models.ErrNegativeBalance.
	Create(ctx context.Context, a models.Account) (models.Account, error)

	GetByNumber(ctx context.Context, branch, number int64) (models.Account, error)
	ListByBranch(ctx context.Context, branch int64) ([]models.Account, error)
	ListAll(ctx context.Context) ([]models.Account, error)
	CountByBranch(ctx context.Context, branch int64) (int64, error)

	// UpdateBalance applies one conditional balance write.
	UpdateBalance(ctx context.Context, u models.BalanceUpdate) error

	// TransferBalances applies the debit and the credit as a single atomic
	// unit: either both balances change or neither does. A zero-row update
	// on either side aborts the unit with models.ErrUpdateConflict.
	TransferBalances(ctx context.Context, debit, credit models.BalanceUpdate) error

	// Delete removes the account matching (branch, number);
	// models.ErrAccountNotFound when nothing matched.
	Delete(ctx context.Context, branch, number int64) error
}
