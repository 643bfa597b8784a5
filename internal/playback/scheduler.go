// Package playback schedules timeline events against a clock, drives audio
// resources and publishes elapsed progress for the UI.
//
// A Scheduler is not safe for concurrent use. All calls and all timer
// callbacks must run on one goroutine; use a Loop or ManualClock to get that.
package playback

import (
	"errors"
	"log"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mindfulmakers/ai-meditation/internal/timeline"
)

const (
	// DefaultTickInterval is how often elapsed progress is recomputed.
	DefaultTickInterval = 100 * time.Millisecond
	// DefaultTriggerLimit caps the trigger log.
	DefaultTriggerLimit = 8
)

// ErrNegativeDuration is returned by Play for a negative duration.
var ErrNegativeDuration = errors.New("playback duration must not be negative")

// State is a snapshot of the scheduler for display.
type State struct {
	Playing    bool
	SessionID  string
	ElapsedMs  int64
	DurationMs int64
	Effect     string
	Triggers   []string
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTickInterval sets the progress tick interval.
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithTriggerLimit sets how many trigger descriptions are kept.
func WithTriggerLimit(n int) Option {
	return func(s *Scheduler) {
		s.triggers = NewTriggerLog(n)
	}
}

// Scheduler plays one timeline at a time.
type Scheduler struct {
	clock    Clock
	audio    AudioBackend
	tick     time.Duration
	triggers *TriggerLog

	session    *session
	elapsedMs  int64
	durationMs int64
	effect     string
}

type session struct {
	id         string
	startedAt  time.Time
	durationMs int64

	// events is sorted by offset; cursor is the next one to fire.
	events []timeline.Event
	cursor int

	cue    Timer
	ticker Timer
	audio  []Audio
}

// NewScheduler returns an idle scheduler. A nil audio backend plays nothing.
func NewScheduler(clock Clock, audio AudioBackend, opts ...Option) *Scheduler {
	if audio == nil {
		audio = NopBackend{}
	}
	s := &Scheduler{
		clock:    clock,
		audio:    audio,
		tick:     DefaultTickInterval,
		triggers: NewTriggerLog(DefaultTriggerLimit),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Play starts a new session for events over durationMs and returns its id.
// An active session is stopped first without resetting elapsed time.
func (s *Scheduler) Play(events []timeline.Event, durationMs int64) (string, error) {
	if durationMs < 0 {
		return "", ErrNegativeDuration
	}
	if durationMs > timeline.MaxOffsetMs {
		durationMs = timeline.MaxOffsetMs
	}

	s.Stop(false)

	sess := &session{
		id:         uuid.NewString(),
		startedAt:  s.clock.Now(),
		durationMs: durationMs,
		events:     slices.Clone(events),
	}
	sort.SliceStable(sess.events, func(i, j int) bool {
		return sess.events[i].AtMs < sess.events[j].AtMs
	})
	s.session = sess
	s.elapsedMs = 0
	s.durationMs = durationMs

	if late := countAfter(sess.events, durationMs); late > 0 {
		log.Printf("playback %s: %d events are past the %dms duration and will not fire",
			sess.id, late, durationMs)
	}

	s.armTick(sess)
	s.armCue(sess)

	log.Printf("playback %s: started %d events over %dms", sess.id, len(events), durationMs)
	return sess.id, nil
}

// Stop cancels every pending timer, halts and rewinds every audio resource and
// returns to idle. resetElapsed zeroes the elapsed time.
func (s *Scheduler) Stop(resetElapsed bool) {
	if sess := s.session; sess != nil {
		s.session = nil
		if sess.cue != nil {
			sess.cue.Stop()
			sess.cue = nil
		}
		if sess.ticker != nil {
			sess.ticker.Stop()
			sess.ticker = nil
		}
		for _, a := range sess.audio {
			if err := a.Pause(); err != nil {
				log.Printf("playback %s: pause audio: %v", sess.id, err)
			}
			if err := a.Rewind(); err != nil {
				log.Printf("playback %s: rewind audio: %v", sess.id, err)
			}
		}
		sess.audio = nil
		log.Printf("playback %s: stopped", sess.id)
	}
	s.effect = ""
	if resetElapsed {
		s.elapsedMs = 0
	}
}

// Close tears the scheduler down. Nothing it started outlives the call.
func (s *Scheduler) Close() {
	s.Stop(false)
}

// ClearTriggers empties the trigger log.
func (s *Scheduler) ClearTriggers() {
	s.triggers.Clear()
}

// Playing reports whether a session is active.
func (s *Scheduler) Playing() bool {
	return s.session != nil
}

// State returns a snapshot for display.
func (s *Scheduler) State() State {
	st := State{
		Playing:    s.session != nil,
		ElapsedMs:  s.elapsedMs,
		DurationMs: s.durationMs,
		Effect:     s.effect,
		Triggers:   s.triggers.Entries(),
	}
	if s.session != nil {
		st.SessionID = s.session.id
	}
	return st
}

// PendingTimers counts the armed cue and tick timers.
func (s *Scheduler) PendingTimers() int {
	if s.session == nil {
		return 0
	}
	n := 0
	if s.session.cue != nil {
		n++
	}
	if s.session.ticker != nil {
		n++
	}
	return n
}

// ActiveAudio counts audio resources started by the current session.
func (s *Scheduler) ActiveAudio() int {
	if s.session == nil {
		return 0
	}
	return len(s.session.audio)
}

// armCue arms the one timer that drives events and completion. It waits for
// the next event offset, or the duration once no event is left inside it.
// A callback queued before its timer was stopped is dropped by the session
// check.
func (s *Scheduler) armCue(sess *session) {
	next := sess.durationMs
	if sess.cursor < len(sess.events) && sess.events[sess.cursor].AtMs < next {
		next = sess.events[sess.cursor].AtMs
	}
	delay := time.Duration(next)*time.Millisecond - s.clock.Now().Sub(sess.startedAt)
	sess.cue = s.clock.AfterFunc(max(0, delay), func() {
		if s.session != sess {
			return
		}
		sess.cue = nil
		s.runCue(sess, next)
	})
}

// runCue fires every event due by now in order, then completes the session or
// re-arms the cue. Events at exactly the duration fire before completion.
func (s *Scheduler) runCue(sess *session, atMs int64) {
	due := min(max(atMs, sess.offset(s.clock.Now())), sess.durationMs)
	for sess.cursor < len(sess.events) && sess.events[sess.cursor].AtMs <= due {
		ev := sess.events[sess.cursor]
		sess.cursor++
		s.fire(sess, ev)
	}
	if due >= sess.durationMs {
		s.complete(sess)
		return
	}
	s.armCue(sess)
}

func (s *Scheduler) armTick(sess *session) {
	sess.ticker = s.clock.AfterFunc(s.tick, func() {
		if s.session != sess {
			return
		}
		sess.ticker = nil
		s.elapsedMs = sess.elapsed(s.clock.Now())
		s.armTick(sess)
	})
}

func (s *Scheduler) fire(sess *session, ev timeline.Event) {
	if ev.Playable() {
		a := s.audio.Load(ev.File)
		sess.audio = append(sess.audio, a)
		if err := a.Play(); err != nil {
			log.Printf("playback %s: play %s: %v", sess.id, ev.File, err)
		}
	}
	if ev.Kind == timeline.KindEffect && ev.HasEffectID {
		s.effect = ev.EffectID
	}
	s.triggers.Add(ev.Describe())
}

func (s *Scheduler) complete(sess *session) {
	s.Stop(false)
	s.elapsedMs = sess.durationMs
	log.Printf("playback %s: completed", sess.id)
}

// offset is the time since the session started, in milliseconds.
func (sess *session) offset(now time.Time) int64 {
	return max(0, now.Sub(sess.startedAt).Milliseconds())
}

func (sess *session) elapsed(now time.Time) int64 {
	return min(sess.offset(now), sess.durationMs)
}

func countAfter(events []timeline.Event, durationMs int64) int {
	n := 0
	for _, ev := range events {
		if ev.AtMs > durationMs {
			n++
		}
	}
	return n
}
