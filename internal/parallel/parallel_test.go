package parallel

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 16}

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestForErr_CoversEveryIndex(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 8}
	seen := make([]int32, 100)

	err := ForErr(len(seen), func(i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, n := range seen {
		if n != 1 {
			t.Errorf("index %d visited %d times", i, n)
		}
	}
}

func TestForErr_LowestIndexWins(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 10}
	errBoom := errors.New("boom")

	err := ForErr(100, func(i int) error {
		if i == 15 || i == 75 {
			return fmt.Errorf("index %d: %w", i, errBoom)
		}
		return nil
	}, cfg)

	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
	if err.Error() != "index 15: boom" {
		t.Errorf("expected the lowest failing index, got %q", err)
	}
}

func TestForErr_SequentialStopsEarly(t *testing.T) {
	var calls int
	err := ForErr(10, func(i int) error {
		calls++
		if i == 2 {
			return errors.New("stop")
		}
		return nil
	}, Config{})

	if err == nil || calls != 3 {
		t.Errorf("expected stop after 3 calls, got %d calls, err=%v", calls, err)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		n    int
		want int
	}{
		{"disabled", Config{Enabled: false, NumWorkers: 8, MinChunkSize: 1}, 100, 1},
		{"below min chunk", Config{Enabled: true, NumWorkers: 8, MinChunkSize: 1000}, 100, 1},
		{"one per worker", Config{Enabled: true, NumWorkers: 4, MinChunkSize: 10}, 100, 4},
		{"min chunk caps spans", Config{Enabled: true, NumWorkers: 16, MinChunkSize: 30}, 100, 4},
		{"empty", Config{Enabled: true, NumWorkers: 4, MinChunkSize: 0}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := tt.cfg.split(tt.n)
			if tt.n == 0 {
				if len(spans) > 1 {
					t.Fatalf("got %d spans for empty loop", len(spans))
				}
				return
			}
			if len(spans) != tt.want {
				t.Fatalf("got %d spans, want %d", len(spans), tt.want)
			}
			if spans[0].lo != 0 || spans[len(spans)-1].hi != tt.n {
				t.Errorf("spans %v do not cover [0, %d)", spans, tt.n)
			}
		})
	}
}
