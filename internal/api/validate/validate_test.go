package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPositiveInt(t *testing.T) {
	assert.Nil(t, PositiveInt("branch", 1))
	if e := PositiveInt("branch", 0); assert.NotNil(t, e) {
		assert.Equal(t, "branch", e.Field)
	}
	assert.NotNil(t, PositiveInt("branch", -7))
}

func TestPositiveAmount(t *testing.T) {
	assert.Nil(t, PositiveAmount("amount", decimal.RequireFromString("0.01")))
	assert.NotNil(t, PositiveAmount("amount", decimal.Zero))
	assert.NotNil(t, PositiveAmount("amount", decimal.RequireFromString("-3")))
}

func TestRequired(t *testing.T) {
	assert.Nil(t, Required("name", "Ana"))
	assert.NotNil(t, Required("name", "   "))
}

func TestErrsMessage(t *testing.T) {
	errs := Errs{
		{Field: "branch", Msg: "must be > 0"},
		{Field: "amount", Msg: "must be > 0"},
	}
	assert.Equal(t, "branch: must be > 0; amount: must be > 0", errs.Error())
}
