package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bankops/ledger-api/internal/api"
	"github.com/bankops/ledger-api/internal/config"
	"github.com/bankops/ledger-api/internal/db"
	"github.com/bankops/ledger-api/internal/logger"
	"github.com/bankops/ledger-api/internal/metrics"
	"github.com/bankops/ledger-api/internal/models"
	repo "github.com/bankops/ledger-api/internal/repository"
	"github.com/bankops/ledger-api/internal/repository/memory"
	"github.com/bankops/ledger-api/internal/repository/postgres"
	"github.com/bankops/ledger-api/internal/services"
	"github.com/bankops/ledger-api/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var accounts repo.Accounts
	switch cfg.Store {
	case "memory":
		accounts = memory.NewAccounts()
		log.Info("using in-memory store")
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if os.Getenv("APP_MIGRATE") == "true" {
			if err := db.RunMigrations(ctx, pool); err != nil {
				log.Error("migrations", "err", err)
				os.Exit(1)
			}
		}
		accounts = postgres.NewRepositories(pool).Accounts
	}

	if cfg.SeedFile != "" {
		if err := seed(ctx, accounts, cfg.SeedFile); err != nil {
			log.Error("seed", "file", cfg.SeedFile, "err", err)
			os.Exit(1)
		}
	}

	metrics.Init()
	wp := worker.NewPool(4)
	defer wp.Stop()
	go refreshAccountsGauge(ctx, wp, accounts)

	ledgerSvc := services.NewLedgerService(accounts, cfg.WithdrawalFee, cfg.TransferFee)
	acctSvc := services.NewAccountService(accounts)
	r := api.NewRouter(cfg, ledgerSvc, acctSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// seed loads accounts from a JSON array. Existing (branch, number) pairs in
// a postgres store will fail the unique index, so this is for fresh stores.
func seed(ctx context.Context, accounts repo.Accounts, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var seedAccounts []models.Account
	if err := json.Unmarshal(b, &seedAccounts); err != nil {
		return err
	}
	for _, a := range seedAccounts {
		if _, err := accounts.Create(ctx, a); err != nil {
			return err
		}
	}
	slog.Info("seeded accounts", "count", len(seedAccounts))
	return nil
}

func refreshAccountsGauge(ctx context.Context, wp *worker.Pool, accounts repo.Accounts) {
	t := time.NewTicker(30 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			wp.Submit(func() {
				accts, err := accounts.ListAll(ctx)
				if err != nil {
					return
				}
				metrics.AccountsTotal.Set(float64(len(accts)))
			})
		}
	}
}
