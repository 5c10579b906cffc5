package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankops/ledger-api/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateAndGet(t *testing.T) {
	store := NewAccounts()
	ctx := context.Background()

	a, err := store.Create(ctx, models.Account{Branch: 1, Number: 100, Name: "Ana", Balance: dec("10")})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)

	got, err := store.GetByNumber(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.True(t, dec("10").Equal(got.Balance))

	_, err = store.GetByNumber(ctx, 1, 999)
	require.ErrorIs(t, err, models.ErrAccountNotFound)

	_, err = store.Create(ctx, models.Account{Branch: 1, Number: 200, Name: "Bia", Balance: dec("-1")})
	require.ErrorIs(t, err, models.ErrNegativeBalance)

	_, err = store.Create(ctx, models.Account{Branch: 1, Number: 100, Name: "Dup", Balance: dec("1")})
	require.ErrorIs(t, err, models.ErrAccountExists)
}

func TestConditionalUpdate(t *testing.T) {
	store := NewAccounts()
	ctx := context.Background()

	a, err := store.Create(ctx, models.Account{Branch: 1, Number: 100, Name: "Ana", Balance: dec("10")})
	require.NoError(t, err)

	require.NoError(t, store.UpdateBalance(ctx, models.BalanceUpdate{
		ID: a.ID, OldBalance: dec("10"), NewBalance: dec("25"),
	}))

	// stale prior balance must not win
	err = store.UpdateBalance(ctx, models.BalanceUpdate{
		ID: a.ID, OldBalance: dec("10"), NewBalance: dec("99"),
	})
	require.ErrorIs(t, err, models.ErrUpdateConflict)

	got, err := store.GetByNumber(ctx, 1, 100)
	require.NoError(t, err)
	assert.True(t, dec("25").Equal(got.Balance))

	// unknown id behaves like a vanished record
	err = store.UpdateBalance(ctx, models.BalanceUpdate{
		ID: "nope", OldBalance: dec("25"), NewBalance: dec("30"),
	})
	require.ErrorIs(t, err, models.ErrUpdateConflict)
}

func TestTransferBalancesAllOrNothing(t *testing.T) {
	store := NewAccounts()
	ctx := context.Background()

	src, err := store.Create(ctx, models.Account{Branch: 1, Number: 100, Name: "Ana", Balance: dec("100")})
	require.NoError(t, err)
	dst, err := store.Create(ctx, models.Account{Branch: 2, Number: 200, Name: "Bia", Balance: dec("40")})
	require.NoError(t, err)

	require.NoError(t, store.TransferBalances(ctx,
		models.BalanceUpdate{ID: src.ID, OldBalance: dec("100"), NewBalance: dec("70")},
		models.BalanceUpdate{ID: dst.ID, OldBalance: dec("40"), NewBalance: dec("70")},
	))

	// credit side carries a stale prior balance: the applied debit must be
	// reversed, leaving both balances untouched
	err = store.TransferBalances(ctx,
		models.BalanceUpdate{ID: src.ID, OldBalance: dec("70"), NewBalance: dec("50")},
		models.BalanceUpdate{ID: dst.ID, OldBalance: dec("40"), NewBalance: dec("60")},
	)
	require.ErrorIs(t, err, models.ErrUpdateConflict)

	gotSrc, _ := store.GetByNumber(ctx, 1, 100)
	gotDst, _ := store.GetByNumber(ctx, 2, 200)
	assert.True(t, dec("70").Equal(gotSrc.Balance), "got %s", gotSrc.Balance)
	assert.True(t, dec("70").Equal(gotDst.Balance), "got %s", gotDst.Balance)
}

func TestDeleteAndCount(t *testing.T) {
	store := NewAccounts()
	ctx := context.Background()

	for _, a := range []models.Account{
		{Branch: 1, Number: 100, Name: "Ana", Balance: dec("10")},
		{Branch: 1, Number: 200, Name: "Bia", Balance: dec("20")},
		{Branch: 2, Number: 100, Name: "Caio", Balance: dec("30")},
	} {
		_, err := store.Create(ctx, a)
		require.NoError(t, err)
	}

	require.NoError(t, store.Delete(ctx, 1, 100))
	require.ErrorIs(t, store.Delete(ctx, 1, 100), models.ErrAccountNotFound)

	n, err := store.CountByBranch(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListOrdering(t *testing.T) {
	store := NewAccounts()
	ctx := context.Background()

	for _, a := range []models.Account{
		{Branch: 2, Number: 100, Name: "Caio", Balance: dec("30")},
		{Branch: 1, Number: 100, Name: "Ana", Balance: dec("10")},
		{Branch: 1, Number: 200, Name: "Bia", Balance: dec("20")},
	} {
		_, err := store.Create(ctx, a)
		require.NoError(t, err)
	}

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// insertion order, so branch discovery order downstream is stable
	assert.Equal(t, "Caio", all[0].Name)
	assert.Equal(t, "Ana", all[1].Name)

	branch1, err := store.ListByBranch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, branch1, 2)
	assert.Equal(t, "Ana", branch1[0].Name)
}
