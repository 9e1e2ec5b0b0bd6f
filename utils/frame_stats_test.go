package utils

import (
	"math"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration {
	return c.now
}

func TestFrameStats(t *testing.T) {
	clock := &fakeClock{}
	stats := newFrameStats(time.Second, clock.Now)

	for i := 0; i < 3; i++ {
		clock.now += 250 * time.Millisecond
		if _, _, report := stats.Frame(); report {
			t.Fatalf("frame %d: reported before the interval elapsed", i)
		}
	}

	clock.now += 250 * time.Millisecond
	fps, frameTime, report := stats.Frame()
	if !report {
		t.Fatal("expected a report once the interval elapsed")
	}
	if math.Abs(fps-4) > 1e-9 {
		t.Errorf("expected 4 fps, got %f", fps)
	}
	if frameTime != 250*time.Millisecond {
		t.Errorf("expected 250ms per frame, got %s", frameTime)
	}

	// The next window starts where the last one ended
	clock.now += 500 * time.Millisecond
	if _, _, report := stats.Frame(); report {
		t.Error("a new window should not report immediately")
	}
	clock.now += 1500 * time.Millisecond
	fps, frameTime, report = stats.Frame()
	if !report {
		t.Fatal("expected a report for the second window")
	}
	if math.Abs(fps-1) > 1e-9 || frameTime != time.Second {
		t.Errorf("expected 1 fps at 1s per frame, got %f at %s", fps, frameTime)
	}
}

func TestFrameStatsDisabled(t *testing.T) {
	clock := &fakeClock{}
	stats := newFrameStats(0, clock.Now)

	for i := 0; i < 10; i++ {
		clock.now += time.Hour
		if _, _, report := stats.Frame(); report {
			t.Fatal("a disabled counter should never report")
		}
	}
}
