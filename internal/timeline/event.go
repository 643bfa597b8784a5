// Package timeline turns the untyped timeline payload of a meditation record
// into a sorted sequence of playback events.
package timeline

import "fmt"

// Event kinds the player acts on. Any other kind string is carried through
// and only logged when it fires.
const (
	KindWav     = "wav"
	KindEffect  = "effect"
	KindUnknown = "unknown"
)

// Event is a single cue at an offset from the start of playback.
type Event struct {
	AtMs        int64
	Kind        string
	File        string
	HasFile     bool
	EffectID    string
	HasEffectID bool
}

// Playable reports whether firing the event starts an audio resource.
func (e Event) Playable() bool {
	return e.Kind == KindWav && e.HasFile && e.File != ""
}

// Describe returns the trigger log line for the event.
func (e Event) Describe() string {
	switch {
	case e.Kind == KindEffect && e.HasEffectID && e.EffectID != "":
		return fmt.Sprintf("[%dms] effect: %s", e.AtMs, e.EffectID)
	case e.Playable():
		return fmt.Sprintf("[%dms] wav: %s", e.AtMs, e.File)
	default:
		return fmt.Sprintf("[%dms] %s", e.AtMs, e.Kind)
	}
}

// Label is the short target shown next to the event in a listing.
func (e Event) Label() string {
	if e.HasFile {
		return e.File
	}
	if e.HasEffectID {
		return e.EffectID
	}
	return "trigger"
}
