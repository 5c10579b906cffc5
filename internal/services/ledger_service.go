package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/bankops/ledger-api/internal/metrics"
	"github.com/bankops/ledger-api/internal/models"
	repo "github.com/bankops/ledger-api/internal/repository"
)

// LedgerService is the balance-mutation engine: it validates inputs,
// computes fees, checks sufficiency and applies conditional balance writes.
// Every operation re-reads the current balance right before computing the
// new one; the losing side of a concurrent write observes
// models.ErrUpdateConflict and may retry from fresh input. The engine never
// retries on its own.
type LedgerService struct {
	accounts      repo.Accounts
	withdrawalFee decimal.Decimal
	transferFee   decimal.Decimal // charged only when branches differ
}

func NewLedgerService(r repo.Accounts, withdrawalFee, transferFee decimal.Decimal) *LedgerService {
	return &LedgerService{accounts: r, withdrawalFee: withdrawalFee, transferFee: transferFee}
}

// Deposit credits amount to the account and returns the new balance. No fee.
func (s *LedgerService) Deposit(ctx context.Context, branch, number int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkAccountRef("branch", branch, "account_number", number); err != nil {
		return decimal.Zero, s.fail("deposit", err)
	}
	if err := checkAmount("amount", amount); err != nil {
		return decimal.Zero, s.fail("deposit", err)
	}

	a, err := s.accounts.GetByNumber(ctx, branch, number)
	if err != nil {
		return decimal.Zero, s.fail("deposit", err)
	}
	newBalance := a.Balance.Add(amount)
	if err := s.accounts.UpdateBalance(ctx, models.BalanceUpdate{
		ID: a.ID, OldBalance: a.Balance, NewBalance: newBalance,
	}); err != nil {
		return decimal.Zero, s.fail("deposit", err)
	}
	metrics.OperationsTotal.WithLabelValues("deposit", "ok").Inc()
	return newBalance, nil
}

// Withdraw debits amount plus the flat withdrawal fee. Draining the balance
// to exactly zero is allowed; anything past it fails with the current
// balance attached.
func (s *LedgerService) Withdraw(ctx context.Context, branch, number int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkAccountRef("branch", branch, "account_number", number); err != nil {
		return decimal.Zero, s.fail("withdraw", err)
	}
	if err := checkAmount("amount", amount); err != nil {
		return decimal.Zero, s.fail("withdraw", err)
	}

	a, err := s.accounts.GetByNumber(ctx, branch, number)
	if err != nil {
		return decimal.Zero, s.fail("withdraw", err)
	}
	total := amount.Add(s.withdrawalFee)
	if total.GreaterThan(a.Balance) {
		return decimal.Zero, s.fail("withdraw", &models.InsufficientFundsError{Balance: a.Balance})
	}
	newBalance := a.Balance.Sub(total)
	if err := s.accounts.UpdateBalance(ctx, models.BalanceUpdate{
		ID: a.ID, OldBalance: a.Balance, NewBalance: newBalance,
	}); err != nil {
		return decimal.Zero, s.fail("withdraw", err)
	}
	metrics.OperationsTotal.WithLabelValues("withdraw", "ok").Inc()
	return newBalance, nil
}

// Transfer moves amount between two accounts, each resolved by its full
// (branch, number) pair. Inter-branch transfers debit the flat transfer fee
// from the source; the destination is always credited the bare amount. Both
// balance writes land as one atomic unit or not at all. Returns the
// source's new balance.
func (s *LedgerService) Transfer(ctx context.Context, srcBranch, srcNumber, dstBranch, dstNumber int64, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := checkAccountRef("source_branch", srcBranch, "source_account", srcNumber); err != nil {
		return decimal.Zero, s.fail("transfer", err)
	}
	if err := checkAccountRef("destination_branch", dstBranch, "destination_account", dstNumber); err != nil {
		return decimal.Zero, s.fail("transfer", err)
	}
	if srcBranch == dstBranch && srcNumber == dstNumber {
		return decimal.Zero, s.fail("transfer", models.ErrSameAccount)
	}
	if err := checkAmount("amount", amount); err != nil {
		return decimal.Zero, s.fail("transfer", err)
	}

	src, err := s.accounts.GetByNumber(ctx, srcBranch, srcNumber)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			err = models.ErrSourceAccountNotFound
		}
		return decimal.Zero, s.fail("transfer", err)
	}
	dst, err := s.accounts.GetByNumber(ctx, dstBranch, dstNumber)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			err = models.ErrDestinationAccountNotFound
		}
		return decimal.Zero, s.fail("transfer", err)
	}

	total := amount
	if srcBranch != dstBranch {
		total = total.Add(s.transferFee)
	}
	if total.GreaterThan(src.Balance) {
		return decimal.Zero, s.fail("transfer", &models.InsufficientFundsError{Balance: src.Balance})
	}

	newSrcBalance := src.Balance.Sub(total)
	err = s.accounts.TransferBalances(ctx,
		models.BalanceUpdate{ID: src.ID, OldBalance: src.Balance, NewBalance: newSrcBalance},
		models.BalanceUpdate{ID: dst.ID, OldBalance: dst.Balance, NewBalance: dst.Balance.Add(amount)},
	)
	if err != nil {
		if errors.Is(err, models.ErrUpdateConflict) {
			err = models.ErrTransferFailed
		}
		return decimal.Zero, s.fail("transfer", err)
	}
	metrics.OperationsTotal.WithLabelValues("transfer", "ok").Inc()
	return newSrcBalance, nil
}

func (s *LedgerService) fail(op string, err error) error {
	metrics.OperationsTotal.WithLabelValues(op, "err").Inc()
	return err
}
