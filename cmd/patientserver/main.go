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

	"medigate/internal/patient/billing"
	"medigate/internal/patient/events"
	"medigate/internal/patient/handler"
	"medigate/internal/patient/service"
	"medigate/internal/patient/store"
	"medigate/internal/platform/config"
	"medigate/internal/platform/httpserver"
	"medigate/internal/platform/logger"
	"medigate/internal/platform/metrics"
	"medigate/internal/platform/postgres"
)

func main() {
	cfg := config.PatientFromEnv()
	log := logger.New("patient")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewPatient()

	var patients service.Store
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
		patients = store.NewPostgres(db)
	} else {
		log.Warn("no database configured, using in-memory patient store")
		patients = store.NewInMemory()
	}

	billingClient, err := billing.NewClient(cfg.BillingServiceAddr, cfg.BillingTimeout)
	if err != nil {
		log.Error("billing client", "error", err)
		os.Exit(1)
	}

	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.PublishTimeout, log, m)
	if err != nil {
		log.Error("kafka publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	svc := service.New(patients, billingClient, publisher, cfg.BillingPolicy, log, m)

	r := chi.NewRouter()
	handler.New(svc, log).Register(r)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, r)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("patient service listening", "addr", cfg.Addr,
			"billing_service", cfg.BillingServiceAddr,
			"billing_policy", string(cfg.BillingPolicy),
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
		log.Error("patient service stopped", "error", err)
		os.Exit(1)
	}
	log.Info("patient service stopped")
}
