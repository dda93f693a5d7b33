package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/existflow/kawai/internal/app"
	"github.com/existflow/kawai/internal/config"
	"github.com/existflow/kawai/internal/logger"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	addr := cfg.ListenAddr
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	if err := logger.Init(logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		FilePath:   cfg.LogFile,
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     7,
		MaxBackups: 5,
		Console:    true,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("Error closing session store: %v", err)
		}
	}()

	log.Printf("Kawai web dashboard starting on %s", addr)
	if err := a.Serve(ctx, addr, nil); err != nil {
		log.Printf("Server failed: %v", err)
	}
}
