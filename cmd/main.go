package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwrk-planet/logger/pkg/logger"
	"github.com/cwrk-planet/meet-service/config"
	"github.com/cwrk-planet/meet-service/internal/memstore"
	"github.com/cwrk-planet/meet-service/internal/security"
	"github.com/cwrk-planet/meet-service/internal/service"
	httpx "github.com/cwrk-planet/meet-service/internal/transport/http"
	"github.com/cwrk-planet/meet-service/internal/transport/ws"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting meet-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- registry ---
	registry := memstore.NewRoomRegistry()

	// --- services ---
	roomSvc := service.NewRoomService(registry)
	admissionSvc := service.NewAdmissionService(registry)
	issuer := security.NewAccessTokenIssuer(
		cfg.Transport.APIKey,
		cfg.Transport.APISecret,
		cfg.TokenTTLOrDefault(security.DefaultAccessTokenTTL),
	)

	// --- WS Hub & Server ---
	hub := ws.NewHub()
	wsServer := ws.NewServer(hub, roomSvc)

	// --- HTTP ---
	handler := httpx.NewHandler(roomSvc, admissionSvc, issuer, wsServer, cfg.Transport.URL)
	router := httpx.NewRouter(handler, wsServer, cfg.HTTP.AllowedOrigins)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
