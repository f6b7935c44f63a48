package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/baharkarakas/netbank-dashboard/internal/api"
	"github.com/baharkarakas/netbank-dashboard/internal/auth"
	"github.com/baharkarakas/netbank-dashboard/internal/backend"
	"github.com/baharkarakas/netbank-dashboard/internal/backend/memory"
	pgbackend "github.com/baharkarakas/netbank-dashboard/internal/backend/postgres"
	"github.com/baharkarakas/netbank-dashboard/internal/balancesync"
	"github.com/baharkarakas/netbank-dashboard/internal/config"
	"github.com/baharkarakas/netbank-dashboard/internal/dashboard"
	"github.com/baharkarakas/netbank-dashboard/internal/db"
	"github.com/baharkarakas/netbank-dashboard/internal/logger"
	"github.com/baharkarakas/netbank-dashboard/internal/metrics"
	repo "github.com/baharkarakas/netbank-dashboard/internal/repository"
	memrepo "github.com/baharkarakas/netbank-dashboard/internal/repository/memory"
	"github.com/baharkarakas/netbank-dashboard/internal/repository/postgres"
	"github.com/baharkarakas/netbank-dashboard/internal/scheduler"
	"github.com/baharkarakas/netbank-dashboard/internal/services"
	"github.com/baharkarakas/netbank-dashboard/internal/worker"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)
	if err := cfg.Validate(); err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	var (
		pool  *pgxpool.Pool
		be    backend.Client
		users repo.Users
		audit repo.AuditLogs
	)
	bcfg := backend.Config{
		URL:       cfg.Backend.URL,
		PublicKey: cfg.Backend.PublicKey,
		Schema:    cfg.Backend.Schema,
		Channel:   cfg.Backend.Channel,
	}
	mock, err := decimal.NewFromString(cfg.Dashboard.MockBalance)
	if err != nil {
		log.Error("dashboard.mock_balance", "err", err)
		os.Exit(1)
	}

	switch {
	case cfg.Backend.Driver == "memory":
		mem := memory.New(cfg.Backend.Schema)
		mem.Seed(cfg.Balance.Table, cfg.Balance.Field, mock)
		be = mem
		audit = memrepo.NewAuditLogs(1000)
	case cfg.Backend.URL != "":
		pool, err = db.NewPool(ctx, cfg.Backend.URL, cfg.Backend.PublicKey)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if cfg.Migrate {
			if err := db.RunMigrations(ctx, pool); err != nil {
				log.Error("migrations", "err", err)
				os.Exit(1)
			}
		}
		repos := postgres.NewRepositories(pool)
		users, audit = repos.Users, repos.AuditLogs
		be = pgbackend.New(pool, bcfg, log)
	default:
		// static dashboard with no database behind it
		audit = memrepo.NewAuditLogs(1000)
	}

	wp := worker.NewPool(4)
	defer wp.Stop()

	var (
		src    dashboard.BalanceSource
		syncer *balancesync.Synchronizer
	)
	if cfg.Dashboard.Mode == "live" {
		syncer = balancesync.New(be, balancesync.Options{
			Table:  cfg.Balance.Table,
			Field:  cfg.Balance.Field,
			Logger: log,
			Runner: wp,
		})
		if err := syncer.Start(ctx); err != nil {
			log.Error("balance subscription", "err", err)
		}
		src = syncer
	} else {
		src = dashboard.StaticSource{Value: mock}
	}
	var ready func() bool
	if syncer != nil {
		ready = syncer.Ready
	}

	var authn auth.Authenticator
	if cfg.Auth.Mode == "store" {
		authn = auth.NewStoreAuthenticator(users)
	} else {
		authn = auth.NewStaticAuthenticator(cfg.Auth.LoginID, cfg.Auth.Secret, cfg.Dashboard.Holder)
	}
	tm := auth.NewTokenManager(cfg.Auth.AccessKey, cfg.Auth.RefreshKey, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL, cfg.Auth.Issuer)

	loginSvc := services.NewLoginService(auth.NewGate(authn, cfg.Auth.Delay), tm, audit, wp, log)
	dashSvc := services.NewDashboardService(dashboard.Account{
		Holder:      cfg.Dashboard.Holder,
		AccountType: cfg.Dashboard.AccountType,
		Number:      cfg.Dashboard.AccountNo,
		IFSC:        cfg.Dashboard.IFSC,
		UPIID:       cfg.Dashboard.UPIID,
	}, src)

	rep := scheduler.NewReporter(src, log)
	if err := rep.Register(cfg.ReportCron); err != nil {
		log.Error("scheduler", "err", err)
		os.Exit(1)
	}
	rep.Start()

	r := api.NewRouter(api.RouterDeps{
		Cfg:          cfg,
		Tokens:       tm,
		LoginSvc:     loginSvc,
		DashboardSvc: dashSvc,
		Ready:        ready,
	})

	baseCtx, cancelRequests := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	// balance streams only end when their request context does
	srv.RegisterOnShutdown(cancelRequests)

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort,
			"dashboard_mode", cfg.Dashboard.Mode, "auth_mode", cfg.Auth.Mode, "backend", cfg.Backend.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	if syncer != nil {
		if err := syncer.Stop(); err != nil {
			log.Warn("balance unsubscribe", "err", err)
		}
	}
	rep.Stop()
}
