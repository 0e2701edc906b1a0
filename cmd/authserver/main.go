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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"medigate/internal/auth/handler"
	"medigate/internal/auth/lockout"
	"medigate/internal/auth/service"
	"medigate/internal/auth/store/user"
	"medigate/internal/auth/token"
	"medigate/internal/platform/config"
	"medigate/internal/platform/httpserver"
	"medigate/internal/platform/logger"
	"medigate/internal/platform/metrics"
	"medigate/internal/platform/postgres"
	"medigate/internal/platform/redis"
)

func main() {
	cfg := config.AuthFromEnv()
	log := logger.New("auth")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var users user.Store
	if cfg.DatabaseURL != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Error("run migrations", "error", err)
			os.Exit(1)
		}
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		users = user.NewPostgres(db)
	} else {
		log.Warn("no database configured, using in-memory user store")
		users = user.NewInMemory()
	}

	if err := user.Seed(ctx, users, cfg.SeedUsername, cfg.SeedPassword); err != nil {
		log.Error("seed user", "error", err)
		os.Exit(1)
	}

	m := metrics.NewAuth()

	var lockStore lockout.Store
	if cfg.RedisURL != "" {
		rc, err := redis.New(cfg.RedisURL)
		if err != nil {
			log.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		lockStore = lockout.NewRedis(rc.Client)
	} else {
		log.Warn("no redis configured, lockout state is process-local")
		lockStore = lockout.NewInMemory()
	}
	locks := lockout.New(lockStore, lockout.Config{
		Threshold: cfg.LockoutThreshold,
		Window:    cfg.LockoutWindow,
		Cooldown:  cfg.LockoutCooldown,
	}, log, m)

	tokens := token.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenTTL)
	svc := service.New(users, tokens, locks, log, m)

	r := chi.NewRouter()
	handler.New(svc, log).Register(r)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, r)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("auth service listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("auth service stopped", "error", err)
		os.Exit(1)
	}
	log.Info("auth service stopped")
}
