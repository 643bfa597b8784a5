package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mindfulmakers/ai-meditation/internal/api"
	"github.com/mindfulmakers/ai-meditation/internal/app"
	"github.com/mindfulmakers/ai-meditation/internal/config"
	"github.com/mindfulmakers/ai-meditation/internal/playback"
	"github.com/mindfulmakers/ai-meditation/internal/telemetry"

	tea "github.com/charmbracelet/bubbletea"
)

// main starts the terminal meditation player.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "meditate: %v\n", err)
		os.Exit(1)
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

	// stdout belongs to the UI.
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "meditate")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	ctx := context.Background()
	if cfg.TracingEnabled() {
		shutdown, err := telemetry.Setup(ctx, "meditate", cfg.OTelEndpoint)
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

	loop := playback.NewLoop(playback.SystemClock(), 64)
	defer loop.Close()
	player := playback.NewScheduler(loop,
		playback.NewExecBackend(cfg.AudioPlayer, cfg.BaseURL()),
		playback.WithTickInterval(cfg.TickInterval),
	)
	defer player.Close()

	log.Printf("meditate: fetching %s", client.Endpoint())

	p := tea.NewProgram(app.New(client, player, loop), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run UI: %w", err)
	}
	return nil
}
