package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/bankops/ledger-api/internal/repository"
)

type Repositories struct {
	Accounts repo.Accounts
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Accounts: &accountsRepo{pool},
	}
}
