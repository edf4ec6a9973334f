package websocket

import (
	"context"
	"testing"
	"time"
)

func TestBackoffDelayGrowsAndCaps(t *testing.T) {
	b := Backoff{Min: 100 * time.Millisecond, Max: time.Second, Factor: 2}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{10, time.Second},
		{5000, time.Second},
	}
	for _, tc := range tests {
		if got := b.Delay(tc.attempt); got != tc.want {
			t.Fatalf("Delay(%d) = %v; want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestBackoffMaxBelowMinUsesMin(t *testing.T) {
	b := Backoff{Min: 300 * time.Millisecond, Max: 100 * time.Millisecond, Factor: 2}
	if got := b.Delay(3); got != 300*time.Millisecond {
		t.Fatalf("Delay(3) = %v; want 300ms", got)
	}
}

func TestBackoffJitterBounds(t *testing.T) {
	b := DefaultBackoff()
	for i := 0; i < 100; i++ {
		got := b.Delay(1)
		if got < 200*time.Millisecond || got > 300*time.Millisecond {
			t.Fatalf("jittered wait out of bounds: %v", got)
		}
	}
}

func TestBackoffWaitStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if (Backoff{Min: time.Hour, Max: time.Hour}).Wait(ctx, 1) {
		t.Fatal("Wait returned true after cancel")
	}
	if !(Backoff{Min: time.Millisecond, Max: time.Millisecond}).Wait(context.Background(), 1) {
		t.Fatal("Wait returned false without cancel")
	}
}
