package playback

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestManualClockOrdersByDeadlineThenRegistration(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	var order []string

	clock.AfterFunc(20*time.Millisecond, func() { order = append(order, "b") })
	clock.AfterFunc(10*time.Millisecond, func() { order = append(order, "a") })
	clock.AfterFunc(20*time.Millisecond, func() { order = append(order, "c") })
	clock.AfterFunc(30*time.Millisecond, func() { order = append(order, "late") })

	clock.Advance(20 * time.Millisecond)

	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
	if clock.Pending() != 1 {
		t.Errorf("pending = %d, want 1", clock.Pending())
	}
}

func TestManualClockRunsTimersAddedDuringAdvance(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	var fired []time.Duration
	start := clock.Now()

	var rearm func()
	rearm = func() {
		fired = append(fired, clock.Now().Sub(start))
		clock.AfterFunc(100*time.Millisecond, rearm)
	}
	clock.AfterFunc(100*time.Millisecond, rearm)

	clock.Advance(350 * time.Millisecond)

	if len(fired) != 3 {
		t.Fatalf("fired %d times, want 3", len(fired))
	}
	if fired[2] != 300*time.Millisecond {
		t.Errorf("third fire at %v, want 300ms", fired[2])
	}
	if got := clock.Now().Sub(start); got != 350*time.Millisecond {
		t.Errorf("now = %v, want 350ms", got)
	}
}

func TestManualClockStop(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	fired := false
	timer := clock.AfterFunc(time.Millisecond, func() { fired = true })

	if !timer.Stop() {
		t.Error("first Stop should report true")
	}
	if timer.Stop() {
		t.Error("second Stop should report false")
	}
	clock.Advance(time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
}

func TestLoopQueuesCallbacks(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	loop := NewLoop(clock, 4)
	defer loop.Close()

	ran := false
	loop.AfterFunc(10*time.Millisecond, func() { ran = true })
	clock.Advance(10 * time.Millisecond)

	if ran {
		t.Fatal("callback ran before it was drained")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	f, err := loop.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	f()
	if !ran {
		t.Error("drained callback did not run")
	}
}

func TestLoopNextAfterClose(t *testing.T) {
	loop := NewLoop(SystemClock(), 1)
	loop.Close()
	loop.Close()

	if _, err := loop.Next(context.Background()); !errors.Is(err, ErrLoopClosed) {
		t.Errorf("err = %v, want ErrLoopClosed", err)
	}
}

func TestLoopNextHonorsContext(t *testing.T) {
	loop := NewLoop(SystemClock(), 1)
	defer loop.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := loop.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLoopWithSystemClock(t *testing.T) {
	loop := NewLoop(SystemClock(), 1)
	defer loop.Close()

	loop.AfterFunc(5*time.Millisecond, func() {})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := loop.Next(ctx); err != nil {
		t.Fatalf("Next: %v", err)
	}
}
