package app

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/mindfulmakers/ai-meditation/internal/api"
	"github.com/mindfulmakers/ai-meditation/internal/playback"

	tea "github.com/charmbracelet/bubbletea"
)

// TestLiveTUIFlow exercises the model lifecycle against a running backend.
// Skipped unless MEDITATE_LIVE_API holds the meditations endpoint URL.
func TestLiveTUIFlow(t *testing.T) {
	endpoint := os.Getenv("MEDITATE_LIVE_API")
	if endpoint == "" {
		t.Skip("MEDITATE_LIVE_API not set")
	}

	loop := playback.NewLoop(playback.SystemClock(), 64)
	player := playback.NewScheduler(loop, playback.NopBackend{}, playback.WithTickInterval(50*time.Millisecond))
	client := api.NewClient(endpoint)

	m := New(client, player, loop)

	// Simulate terminal size
	m, _ = applyUpdate(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	if view == "Initializing..." {
		t.Error("view should render after WindowSizeMsg")
	}

	msg := fetchCmd(context.Background(), client)()
	m, _ = applyUpdate(m, msg)
	if m.errorMessage != "" {
		t.Fatalf("fetch: %s", m.errorMessage)
	}
	fmt.Printf("Loaded %d meditations\n", len(m.meditations))
	if len(m.meditations) == 0 {
		t.Skip("backend has no meditations")
	}

	m, _ = applyUpdate(m, key(KeySpace))
	if !m.playback.Playing {
		t.Fatal("expected playing")
	}

	// Drain callbacks for a second of real time.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for {
		f, err := loop.Next(ctx)
		if err != nil {
			break
		}
		m, _ = applyUpdate(m, PlaybackCallbackMsg{Run: f})
	}
	fmt.Printf("Elapsed %dms, %d triggers\n", m.playback.ElapsedMs, len(m.playback.Triggers))
	if m.playback.ElapsedMs == 0 {
		t.Error("elapsed should advance during playback")
	}

	fmt.Println("=== Playing View ===")
	fmt.Println(m.View())

	m, _ = applyUpdate(m, key(KeyQuit))
	if player.PendingTimers() != 0 {
		t.Errorf("pending timers = %d after quit", player.PendingTimers())
	}
}
