package app

import "github.com/mindfulmakers/ai-meditation/internal/api"

// MeditationsLoadedMsg carries a successful fetch.
type MeditationsLoadedMsg struct {
	Records []api.Record
}

// MeditationsErrorMsg is sent when a fetch fails.
type MeditationsErrorMsg struct {
	Err error
}

// PlaybackCallbackMsg carries a scheduler timer callback drained from the
// playback loop. Update runs it so the scheduler is only touched there.
type PlaybackCallbackMsg struct {
	Run func()
}

// playbackLoopClosedMsg ends the drain loop.
type playbackLoopClosedMsg struct{}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}
