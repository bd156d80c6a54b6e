package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/billd/internal/backup"
	"github.com/noah-isme/billd/internal/config"
	"github.com/noah-isme/billd/internal/health"
	"github.com/noah-isme/billd/internal/inventory"
	"github.com/noah-isme/billd/internal/invoice"
	"github.com/noah-isme/billd/internal/obs"
	"github.com/noah-isme/billd/internal/settings"
	"github.com/noah-isme/billd/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	if cfg.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}

	kv := store.New(redisClient, logger)
	validate := validator.New()

	settingsSvc := &settings.Service{Store: kv}
	settingsHandler := &settings.Handler{Svc: settingsSvc, Validate: validate}

	inventorySvc := &inventory.Service{Store: kv, Log: logger}
	inventoryHandler := &inventory.Handler{Svc: inventorySvc, Validate: validate}

	invoiceSvc := &invoice.Service{
		Store:    kv,
		Settings: settingsSvc,
		Deducter: inventorySvc,
		Log:      logger,
	}
	invoiceHandler := &invoice.Handler{Svc: invoiceSvc, Validate: validate}

	backupSvc := &backup.Service{Invoices: invoiceSvc, Settings: settingsSvc, Log: logger}
	backupHandler := &backup.Handler{Svc: backupSvc}

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		buckets := obs.ParseBucketsCSV(cfg.MetricsBucketsMS)
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if cfg.MetricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{Checker: readinessChecker{store: kv}}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Route("/invoices", func(i chi.Router) {
			i.Get("/", invoiceHandler.List)
			i.Post("/", invoiceHandler.Save)
			i.Route("/{id}", func(child chi.Router) {
				child.Get("/", invoiceHandler.Get)
				child.Delete("/", invoiceHandler.Delete)
				child.Post("/duplicate", invoiceHandler.Duplicate)
				child.Post("/payments", invoiceHandler.AddPayment)
				child.Delete("/payments/{paymentId}", invoiceHandler.RemovePayment)
			})
		})

		v.Route("/products", func(p chi.Router) {
			p.Get("/", inventoryHandler.ListProducts)
			p.Post("/", inventoryHandler.SaveProduct)
			p.Route("/{id}", func(child chi.Router) {
				child.Delete("/", inventoryHandler.DeleteProduct)
				child.Get("/transactions", inventoryHandler.ProductTransactions)
				child.Get("/movement", inventoryHandler.ProductMovement)
			})
		})

		v.Route("/inventory", func(i chi.Router) {
			i.Get("/transactions", inventoryHandler.ListTransactions)
			i.Post("/transactions", inventoryHandler.RecordTransaction)
			i.Get("/alerts", inventoryHandler.ListAlerts)
			i.Post("/alerts/{id}/ack", inventoryHandler.AcknowledgeAlert)
			i.Get("/availability", inventoryHandler.CheckAvailability)
		})

		v.Get("/settings", settingsHandler.Get)
		v.Put("/settings", settingsHandler.Update)

		v.Get("/backup/export", backupHandler.Export)
		v.Post("/backup/import", backupHandler.Import)
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: r,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdownCh
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	store *store.Store
}

func (c readinessChecker) PingStore(ctx context.Context, timeout time.Duration) error {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.store.Ping(probeCtx)
}
