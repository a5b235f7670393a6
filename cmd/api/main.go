package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cassiomorais/simplify-gateway/internal/auditlog"
	"github.com/cassiomorais/simplify-gateway/internal/bootstrap"
	"github.com/cassiomorais/simplify-gateway/internal/controller"
	infraRedis "github.com/cassiomorais/simplify-gateway/internal/infrastructure/redis"
	"github.com/cassiomorais/simplify-gateway/internal/repository/postgres"
	"github.com/cassiomorais/simplify-gateway/internal/service"
	"github.com/cassiomorais/simplify-gateway/internal/simplify"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, "simplify-gateway-api", "simplify_gateway")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	orderRepo := postgres.NewOrderRepository(app.Pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Gateway client ---
	publicKey, privateKey := app.Config.Gateway.ActiveKeys()
	var clientOpts []simplify.ClientOption
	if app.Config.Gateway.APIBase != "" {
		clientOpts = append(clientOpts, simplify.WithBaseURL(app.Config.Gateway.APIBase))
	}
	gateway := simplify.NewBreakerGateway(
		simplify.NewClient(privateKey, clientOpts...),
		simplify.WithBreakerMetrics(app.Metrics))

	// --- Services ---
	audit := auditlog.New(app.Config.Gateway.LogPath, publicKey, privateKey, app.Config.Gateway.Debug)
	locker := infraRedis.NewLockManager(app.Redis, app.Config.Gateway.LockTTL)
	gatewaySvc := service.NewGatewayService(
		orderRepo, gateway, txManager, locker, audit, app.Config, app.Metrics, app.Logger)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:            app.Pool,
		RedisClient:     app.Redis,
		GatewayService:  gatewaySvc,
		IdempotencyRepo: idempotencyRepo,
		Metrics:         app.Metrics,
		CORSConfig:      app.Config.Server.CORS,
		AdminPublicKey:  publicKey,
		AdminPrivateKey: privateKey,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.Logger.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		app.Logger.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
	app.Logger.Info().Msg("Server exited")
}
