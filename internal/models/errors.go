package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors. Handlers translate these into HTTP statuses; the services
// never pick status codes themselves.
var (
	// ErrAccountNotFound means no account matched the (branch, number) pair.
	ErrAccountNotFound = errors.New("account not found")

	// ErrSourceAccountNotFound / ErrDestinationAccountNotFound are the
	// transfer-specific variants so callers can tell which endpoint failed.
	ErrSourceAccountNotFound      = errors.New("source account not found")
	ErrDestinationAccountNotFound = errors.New("destination account not found")

	// ErrSameAccount means a transfer named the same (branch, number) pair
	// on both ends.
	ErrSameAccount = errors.New("source and destination accounts are the same")

	// ErrUpdateConflict means a conditional balance write matched zero rows:
	// the record changed or vanished between read and write. The caller may
	// retry from a fresh read.
	ErrUpdateConflict = errors.New("account changed concurrently, retry the operation")

	// ErrTransferFailed means the two-sided transfer could not be applied as
	// a unit; the ledger is unchanged.
	ErrTransferFailed = errors.New("transfer could not be applied, retry the operation")

	// ErrNoAccounts means an aggregate was requested over an empty branch.
	ErrNoAccounts = errors.New("branch has no accounts")

	// ErrNegativeBalance rejects creating an account with a negative
	// opening balance.
	ErrNegativeBalance = errors.New("opening balance must be >= 0")

	// ErrAccountExists means the (branch, number) pair is already taken.
	ErrAccountExists = errors.New("account already exists")
)

// InvalidIdentifierError reports a non-positive branch or account number,
// naming the offending field.
type InvalidIdentifierError struct {
	Field string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("%s must be a positive number", e.Field)
}

// InvalidAmountError reports a non-positive monetary amount.
type InvalidAmountError struct {
	Field string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s must be greater than 0", e.Field)
}

// InsufficientFundsError reports that a debit (amount plus fee) exceeds the
// current balance, which it carries for the caller.
type InsufficientFundsError struct {
	Balance decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("debit exceeds current balance (%s)", e.Balance.StringFixed(2))
}
