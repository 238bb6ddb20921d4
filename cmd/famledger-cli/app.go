package main

import (
	"context"
	"fmt"
	"os"

	"famledger/internal/backend"
	"famledger/internal/cli"
	"famledger/internal/config"
	"famledger/internal/log"
	"famledger/internal/services"
)

// app is what every subcommand needs: the configured ledger and its catalog.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	ledger *services.LedgerService
	res    *backend.Result
}

// openApp loads configuration and opens the configured backend. Events are published
// when AMQP is configured so the audit worker sees CLI changes too.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := cli.SetupLogger(cfg, log.ComponentCLI)

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bc)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bc.Type, err)
	}

	opts := []services.Option{
		services.WithCatalog(res.Catalog),
		services.WithLogger(logger.WithComponent(log.ComponentLedger).Logger),
	}
	if publisher := cli.InitPublisher(logger.WithComponent(log.ComponentAMQP), cfg); publisher != nil {
		opts = append(opts, services.WithPublisher(publisher))
		cleanup := res.Cleanup
		res.Cleanup = func() error {
			_ = publisher.Close()
			if cleanup != nil {
				return cleanup()
			}
			return nil
		}
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		ledger: services.NewLedgerService(res.Store, opts...),
		res:    res,
	}, nil
}

func (a *app) Close() {
	if err := a.res.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing backend: %v\n", err)
	}
}
