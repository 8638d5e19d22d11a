package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kostasdel/banking-backend/internal/api"
	"github.com/kostasdel/banking-backend/internal/auth"
	"github.com/kostasdel/banking-backend/internal/config"
	"github.com/kostasdel/banking-backend/internal/db"
	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/logger"
	"github.com/kostasdel/banking-backend/internal/metrics"
	repo "github.com/kostasdel/banking-backend/internal/repository"
	"github.com/kostasdel/banking-backend/internal/repository/memory"
	"github.com/kostasdel/banking-backend/internal/repository/postgres"
	"github.com/kostasdel/banking-backend/internal/services"
	"github.com/kostasdel/banking-backend/internal/worker"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour
)

type repositories struct {
	Customers    repo.Customers
	Accounts     repo.Accounts
	Balances     repo.Balances
	Transactions repo.Transactions
	AuditLogs    repo.AuditLogs
}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repos repositories
	if cfg.DatabaseURL != "" {
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
		pg := postgres.NewRepositories(pool)
		repos = repositories{pg.Customers, pg.Accounts, pg.Balances, pg.Transactions, pg.AuditLogs}
		log.Info("store", "backend", "postgres")
	} else {
		mem := memory.NewRepositories(memory.NewStore())
		repos = repositories{mem.Customers, mem.Accounts, mem.Balances, mem.Transactions, mem.AuditLogs}
		log.Info("store", "backend", "memory")
	}

	wp := worker.NewPool(cfg.Workers)
	defer wp.Stop()

	guard := ledger.NewGuard(cfg.GuardTimeout)
	tm := auth.NewTokenManager(cfg.JWTAccessSec, cfg.JWTRefresh, cfg.JWTIssuer, accessTTL, refreshTTL)

	cusSvc := services.NewCustomerService(repos.Customers, repos.Accounts, cfg.AdminEmail)
	accSvc := services.NewAccountService(repos.Accounts, repos.Balances, repos.Transactions, repos.Customers)
	balSvc := services.NewBalanceService(repos.Balances, repos.Accounts, repos.AuditLogs, guard, wp)
	trxSvc := services.NewTransactionService(repos.Transactions, repos.Accounts, repos.Balances, repos.AuditLogs, guard, wp, cfg.SameOwnerTransfers)

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg: cfg,
		TM:  tm,
		Cus: cusSvc,
		Acc: accSvc,
		Bal: balSvc,
		Trx: trxSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
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
