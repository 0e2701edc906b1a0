package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"medigate/internal/gateway"
	"medigate/internal/platform/config"
	"medigate/internal/platform/httpserver"
	"medigate/internal/platform/logger"
	"medigate/internal/platform/metrics"
	"medigate/internal/platform/middleware"
)

func main() {
	cfg := config.GatewayFromEnv()
	log := logger.New("gateway")

	limiter := middleware.NewRateLimiter(cfg.RatePerSecond, cfg.RateBurst)
	defer limiter.Stop()

	router, err := gateway.NewRouter(gateway.RouterConfig{
		AuthServiceURL: cfg.AuthServiceURL,
		PatientBaseURL: cfg.PatientBaseURL,
		Validator:      gateway.NewRemoteValidator(cfg.AuthServiceURL, cfg.ValidateTimeout),
		Logger:         log,
		Metrics:        metrics.NewGateway(),
		RateLimiter:    limiter,
	})
	if err != nil {
		log.Error("build router", "error", err)
		os.Exit(1)
	}

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("gateway listening", "addr", cfg.Addr,
			"auth_service", cfg.AuthServiceURL,
			"patient_service", cfg.PatientBaseURL,
		)
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
		log.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
	log.Info("gateway stopped")
}
