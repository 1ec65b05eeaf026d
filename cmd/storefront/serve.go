package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/clothify/storefront/internal/api"
	"github.com/clothify/storefront/internal/api/handler"
	"github.com/clothify/storefront/internal/core/ports"
	"github.com/clothify/storefront/internal/core/service"
	redisstore "github.com/clothify/storefront/internal/infrastructure/db/redis"
	"github.com/clothify/storefront/internal/infrastructure/queue"
	"github.com/clothify/storefront/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, log, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	sinks := []ports.AuditSink{st.events}
	if cfg.AMQP.URL != "" {
		pub, err := queue.NewPublisher(cfg.AMQP.URL)
		if err != nil {
			log.Warn().Err(err).Msg("auth event publishing disabled")
		} else {
			defer func() { _ = pub.Close() }()
			sinks = append(sinks, pub)
		}
	}

	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, logger.Component("audit"), sinks...)
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	gate, err := newGate(cfg, st.users,
		service.WithRevocationList(redisstore.NewRevocationList(rdb)),
		service.WithAuditRecorder(dispatcher),
		service.WithLogger(logger.Component("auth")),
	)
	if err != nil {
		return err
	}
	products := service.NewProductService(st.products, logger.Component("products"))

	e := api.NewRouter(api.Deps{
		Log:      log,
		Auth:     gate,
		Products: products,
		Cookie: handler.CookieConfig{
			Name:   cfg.Auth.SessionCookie,
			Secure: cfg.Auth.CookieSecure || cfg.IsProduction(),
		},
		AuthRateLimit: cfg.Auth.RateLimit,
		Readiness: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error { return st.client.Ping(ctx, readpref.Primary()) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
		return err
	}
	return nil
}
