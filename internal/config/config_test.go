package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.True(t, cfg.WithdrawalFee.Equal(decimal.RequireFromString("1.00")))
	assert.True(t, cfg.TransferFee.Equal(decimal.RequireFromString("8.00")))
}

func TestFeeOverride(t *testing.T) {
	t.Setenv("WITHDRAWAL_FEE", "0.25")
	t.Setenv("TRANSFER_FEE", "not-a-number")

	cfg := Load()
	assert.True(t, cfg.WithdrawalFee.Equal(decimal.RequireFromString("0.25")))
	// unparseable values fall back to the default schedule
	assert.True(t, cfg.TransferFee.Equal(decimal.RequireFromString("8.00")))
}
