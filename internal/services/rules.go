package services

import (
	"github.com/shopspring/decimal"

	"github.com/bankops/ledger-api/internal/models"
)

// Pure input checks. They run before any store access and depend only on
// their arguments, so identical inputs always fail identically.

func checkIdentifier(field string, v int64) error {
	if v <= 0 {
		return &models.InvalidIdentifierError{Field: field}
	}
	return nil
}

func checkAccountRef(branchField string, branch int64, numberField string, number int64) error {
	if err := checkIdentifier(branchField, branch); err != nil {
		return err
	}
	return checkIdentifier(numberField, number)
}

func checkAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &models.InvalidAmountError{Field: field}
	}
	return nil
}
