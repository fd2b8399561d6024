package relay

import (
	"context"
	"testing"
	"time"
)

func TestReaper(t *testing.T) {
	r, clk := newTestRegistry(t, DefaultOptions())
	code := mustCreate(t, r)

	reaper := NewReaper(r, 5*time.Millisecond, nil)
	reaper.Run()
	defer func() { _ = reaper.Shutdown(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	if _, err := r.Lookup(code); err != nil {
		t.Fatalf("reaped within grace: %v", err)
	}
	clk.Advance(31 * time.Second)
	waitGone(t, r, code)
}

func TestReaperShutdown(t *testing.T) {
	r, _ := newTestRegistry(t, DefaultOptions())
	reaper := NewReaper(r, 0, nil)
	if reaper.interval != DefaultReapInterval {
		t.Errorf("expected the default interval, got %v", reaper.interval)
	}
	reaper.Run()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := reaper.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	// twice is fine
	if err := reaper.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
}
