package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	pb "medigate/api/proto/billing"
	billinggrpc "medigate/internal/billing/grpc"
	"medigate/internal/platform/config"
	"medigate/internal/platform/logger"
)

func main() {
	cfg := config.BillingFromEnv()
	log := logger.New("billing")

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Error("listen", "addr", cfg.Addr, "error", err)
		os.Exit(1)
	}

	srv := grpc.NewServer()
	pb.RegisterBillingServiceServer(srv, billinggrpc.NewServer(log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("billing service listening", "addr", cfg.Addr)
		return srv.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		srv.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("billing service stopped", "error", err)
		os.Exit(1)
	}
	log.Info("billing service stopped")
}
