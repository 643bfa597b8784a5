package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mindfulmakers/ai-meditation/internal/api"
	"github.com/mindfulmakers/ai-meditation/internal/config"
	"github.com/mindfulmakers/ai-meditation/internal/mcpserver"
	"github.com/mindfulmakers/ai-meditation/internal/telemetry"
)

// main serves the meditation library over MCP stdio.
func main() {
	// stdout carries the protocol.
	log.SetOutput(os.Stderr)
	log.SetPrefix("[MCP] ")

	if err := run(); err != nil {
		log.Fatalf("failed to serve MCP: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.TracingEnabled() {
		shutdown, err := telemetry.Setup(context.Background(), "meditate-mcp", cfg.OTelEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Printf("otel shutdown: %v", err)
			}
		}()
	}

	client := api.NewClient(cfg.MeditationsURL(), api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}))
	srv, err := mcpserver.New(client)
	if err != nil {
		return err
	}

	log.Printf("serving %s over stdio", client.Endpoint())
	return srv.Serve()
}
