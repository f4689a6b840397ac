package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/quadra-io/quadra/internal"
	"github.com/quadra-io/quadra/internal/config"
	"github.com/quadra-io/quadra/pkg/quadra/server"
)

func main() {
	// Load .env file if present (optional in production)
	_ = godotenv.Load()

	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	srv := server.NewServer(server.Config{
		Port:          cfg.Server.Port,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		MaxClients:    cfg.Server.MaxClients,
	}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received %s, shutting down", sig)
		if err := srv.Stop(); err != nil {
			logger.Error("shutdown error: %v", err)
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil {
			logger.Error("server error: %v", err)
			os.Exit(1)
		}
	}
}
