package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"promptforge/internal/core"
	"promptforge/internal/llm"
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

	cli := core.NewCLISession(engine)
	if err := cli.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
