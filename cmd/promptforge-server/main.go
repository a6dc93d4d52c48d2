package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"promptforge/internal/core"
	"promptforge/internal/llm"
	"promptforge/internal/server"
)

func main() {
	godotenv.Load(".env")

	cfg, err := core.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	log := core.NewLogger(cfg.LogLevel)

	policy, err := core.PolicyFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	client, err := llm.NewClient(&llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create gateway client: %v\n", err)
		os.Exit(1)
	}

	engine, err := core.NewEngine(client, core.NewMemoryStore(), policy, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	e := server.NewServer(engine, cfg.AllowedOrigins)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()
	log.Info("listening", "port", cfg.HTTPPort, "origins", cfg.AllowedOrigins)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
