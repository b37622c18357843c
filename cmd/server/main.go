package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"paymaster/internal/domain/payroll"
	"paymaster/internal/domain/rates"
	"paymaster/internal/platform/config"
	"paymaster/internal/platform/db"
	"paymaster/internal/platform/metrics"
	"paymaster/internal/transport/http/api"
	authhandler "paymaster/internal/transport/http/handlers/auth"
	payrollhandler "paymaster/internal/transport/http/handlers/payroll"
	"paymaster/internal/transport/http/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	rateTables := rates.Default()
	if cfg.RatesFile != "" {
		loaded, err := rates.LoadFile(cfg.RatesFile)
		if err != nil {
			log.Fatalf("rates load failed: %v", err)
		}
		rateTables = loaded
	}

	calculator, err := payroll.NewCalculator(rateTables)
	if err != nil {
		log.Fatalf("rates invalid: %v", err)
	}

	ctx := context.Background()

	var pool *pgxpool.Pool
	var history payroll.HistoryStore = payroll.NewMemoryHistory()
	if cfg.DatabaseURL != "" {
		pool, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db connect failed: %v", err)
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, "migrations"); err != nil {
				log.Fatalf("migrations failed: %v", err)
			}
		}
		history = payroll.NewPgHistory(pool)
	}

	var idempotency middleware.IdempotencyStore = middleware.NewMemoryIdempotency()
	if pool != nil {
		idempotency = middleware.NewPgIdempotency(pool)
	}

	service := payroll.NewService(calculator, history)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(cfg)
		r.Post("/auth/login", authHandler.HandleLogin)

		payrollHandler := payrollhandler.NewHandler(service, collector, idempotency, cfg.StubDir)
		payrollHandler.RegisterRoutes(r)

		if collector != nil {
			r.With(middleware.RequireAuth).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
			})
		}
	})

	log.Printf("payroll server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
