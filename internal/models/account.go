package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the sole persistent entity. The (Branch, Number) pair is the
// natural lookup key; ID is the store-assigned identifier used for targeted
// conditional updates.
type Account struct {
	ID        string          `json:"id"`
	Branch    int64           `json:"branch"`
	Number    int64           `json:"account_number"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BalanceUpdate is a conditional write: the store must only apply NewBalance
// when the record still holds OldBalance, and report a conflict otherwise.
type BalanceUpdate struct {
	ID         string
	OldBalance decimal.Decimal
	NewBalance decimal.Decimal
}
