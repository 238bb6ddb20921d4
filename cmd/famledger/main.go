package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"famledger/internal/cache"
	"famledger/internal/cli"
	apphttp "famledger/internal/http"
	"famledger/internal/log"
	"famledger/internal/middleware/ratelimit"
	"famledger/internal/middleware/security"
	"famledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	logger.Info("Starting famledger", "backend", cfg.DataBackend, "port", cfg.Port)

	res := cli.InitBackend(context.Background(), logger, cfg)

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	for _, c := range res.Catalog.Caches() {
		caches.Register(c)
	}
	caches.Start(context.Background(), time.Minute)

	opts := []services.Option{
		services.WithCatalog(res.Catalog),
		services.WithLogger(logger.WithComponent(log.ComponentLedger).Logger),
	}
	publisher := cli.InitPublisher(logger.WithComponent(log.ComponentAMQP), cfg)
	if publisher != nil {
		opts = append(opts, services.WithPublisher(publisher))
	}
	ledger := services.NewLedgerService(res.Store, opts...)

	srv := apphttp.NewServer(apphttp.Config{
		Addr:           ":" + cfg.Port,
		Ledger:         ledger,
		Catalog:        res.Catalog,
		Ready:          res.Ping,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		Headers: security.DefaultHeadersConfig(),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logger.Warn("Failed to close AMQP client", "error", err)
			}
		}
		if err := res.Close(); err != nil {
			logger.Error("Failed to close backend", "error", err)
		}
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
