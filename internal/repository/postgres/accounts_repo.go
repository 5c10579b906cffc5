package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bankops/ledger-api/internal/models"
)

type accountsRepo struct{ pool *pgxpool.Pool }

const accountCols = `id, branch, account_number, name, balance::text, created_at, updated_at`

func scanAccount(row pgx.Row) (models.Account, error) {
	var a models.Account
	var balance string
	err := row.Scan(&a.ID, &a.Branch, &a.Number, &a.Name, &balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return models.Account{}, err
	}
	a.Balance, err = decimal.NewFromString(balance)
	return a, err
}

func (r *accountsRepo) Create(ctx context.Context, a models.Account) (models.Account, error) {
	if a.Balance.IsNegative() {
		return models.Account{}, models.ErrNegativeBalance
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	created, err := scanAccount(r.pool.QueryRow(ctx,
		`INSERT INTO accounts(id, branch, account_number, name, balance)
		 VALUES($1,$2,$3,$4,$5)
		 RETURNING `+accountCols,
		a.ID, a.Branch, a.Number, a.Name, a.Balance,
	))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return models.Account{}, models.ErrAccountExists
	}
	return created, err
}

func (r *accountsRepo) GetByNumber(ctx context.Context, branch, number int64) (models.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE branch=$1 AND account_number=$2`,
		branch, number,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Account{}, models.ErrAccountNotFound
	}
	return a, err
}

func (r *accountsRepo) ListByBranch(ctx context.Context, branch int64) ([]models.Account, error) {
	return r.list(ctx, `SELECT `+accountCols+` FROM accounts WHERE branch=$1 ORDER BY account_number`, branch)
}

func (r *accountsRepo) ListAll(ctx context.Context) ([]models.Account, error) {
	return r.list(ctx, `SELECT `+accountCols+` FROM accounts ORDER BY created_at`)
}

func (r *accountsRepo) list(ctx context.Context, q string, args ...any) ([]models.Account, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) CountByBranch(ctx context.Context, branch int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM accounts WHERE branch=$1`, branch,
	).Scan(&n)
	return n, err
}

// UpdateBalance is a compare-and-swap keyed by id plus the balance the
// caller read. Zero rows modified means the record changed or vanished in
// between.
func (r *accountsRepo) UpdateBalance(ctx context.Context, u models.BalanceUpdate) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET balance=$3, updated_at=now() WHERE id=$1 AND balance=$2`,
		u.ID, u.OldBalance, u.NewBalance,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUpdateConflict
	}
	return nil
}

// TransferBalances runs both conditional updates inside one serializable
// transaction so the ledger never observes a half-applied transfer.
func (r *accountsRepo) TransferBalances(ctx context.Context, debit, credit models.BalanceUpdate) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, u := range []models.BalanceUpdate{debit, credit} {
		tag, err := tx.Exec(ctx,
			`UPDATE accounts SET balance=$3, updated_at=now() WHERE id=$1 AND balance=$2`,
			u.ID, u.OldBalance, u.NewBalance,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return models.ErrUpdateConflict
		}
	}
	return tx.Commit(ctx)
}

func (r *accountsRepo) Delete(ctx context.Context, branch, number int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM accounts WHERE branch=$1 AND account_number=$2`,
		branch, number,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}
