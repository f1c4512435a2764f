// Package main is the entry point for the tokopos API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tokopos/internal/config"
	"tokopos/internal/domain"
	"tokopos/internal/domain/catalog/customer"
	"tokopos/internal/domain/catalog/stockitem"
	"tokopos/internal/domain/checkout"
	"tokopos/internal/domain/reports"
	"tokopos/internal/feed"
	"tokopos/internal/infrastructure/cache"
	v1 "tokopos/internal/infrastructure/http/v1"
	"tokopos/internal/infrastructure/http/v1/middleware"
	"tokopos/internal/infrastructure/scheduler"
	"tokopos/internal/infrastructure/storage/postgres"
	"tokopos/pkg/logger"
	"tokopos/pkg/numerator"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Server.LogLevel,
		Development: cfg.Server.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting tokopos server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	// Pool stats are logged once a minute.
	statsCtx, stopStats := context.WithCancel(ctx)
	defer stopStats()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				postgres.LogPoolStats(statsCtx, pool.Pool)
			case <-statsCtx.Done():
				return
			}
		}
	}()

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	stockRepo := postgres.NewStockRepo(txManager)
	salesRepo := postgres.NewSalesRepo(txManager)
	debtorsRepo := postgres.NewDebtorsRepo(txManager)
	purchaseRepo := postgres.NewPurchaseRepo(txManager)
	customerRepo := postgres.NewCustomerRepo(txManager)
	reportRepo := postgres.NewReportRepo(txManager)

	auditRepo, err := postgres.NewAuditRepo(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit log", "error", err)
	}

	// --- Services ---
	stockService := stockitem.NewService(stockRepo, auditRepo)
	customerService := customer.NewService(customerRepo)
	numeratorService := numerator.New(pool)

	// --- Report cache (optional) ---
	var reportCache reports.Cache
	if cfg.Redis.Addr != "" {
		rc, err := cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err, "addr", cfg.Redis.Addr)
		}
		defer rc.Close()
		reportCache = rc
		log.Infow("report cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}
	reportsService := reports.NewService(reportRepo, reportCache, cfg.Redis.CacheTTL)

	// --- Change feed ---
	hub := feed.NewHub(func() (any, error) {
		snapCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		filter := stockitem.ListFilter{ListFilter: domain.DefaultListFilter()}
		filter.Limit = 1000
		items, err := stockRepo.List(snapCtx, filter)
		if err != nil {
			return nil, err
		}
		return map[string]any{"stockItems": items.Items}, nil
	})
	defer hub.Close()

	// Every committed transaction invalidates cached report figures.
	if reportCache != nil {
		sub, err := hub.Subscribe()
		if err == nil {
			go func() {
				for range sub.C {
					reportsService.Invalidate(ctx)
				}
			}()
			defer sub.Cancel()
		}
	}

	// --- Checkout orchestrator ---
	checkoutService := checkout.NewService(checkout.Config{
		TxManager:    txManager,
		StockRepo:    stockRepo,
		SalesRepo:    salesRepo,
		DebtorsRepo:  debtorsRepo,
		PurchaseRepo: purchaseRepo,
		Customers:    customerService,
		Numerator:    numeratorService,
		Publisher:    hub,
		AuditLog:     auditRepo,
	})

	// --- Daily close scheduler ---
	sched := scheduler.New(reportsService, cfg.Reporting.DailyCloseSpec)
	if err := sched.Start(); err != nil {
		log.Fatalw("failed to start scheduler", "error", err, "spec", cfg.Reporting.DailyCloseSpec)
	}
	defer sched.Stop()

	// --- JWT guard (optional) ---
	var jwtValidator middleware.JWTValidator
	if cfg.Auth.JWTSecret != "" {
		jwtValidator = middleware.NewHMACValidator(cfg.Auth.JWTSecret)
		log.Info("bearer token auth enabled")
	} else {
		log.Warn("JWT_SECRET not set, API is unguarded")
	}

	// --- Router and HTTP server ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:         pool,
		Logger:       log,
		Checkout:     checkoutService,
		StockService: stockService,
		Customers:    customerService,
		Reports:      reportsService,
		Hub:          hub,
		SalesRepo:    salesRepo,
		DebtorsRepo:  debtorsRepo,
		PurchaseRepo: purchaseRepo,
		AuditHistory: auditRepo,
		JWTValidator: jwtValidator,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
