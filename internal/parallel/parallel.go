// Package parallel splits element loops of vectorized kernels across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how a loop is split.
type Config struct {
	Enabled      bool // run chunks on separate goroutines
	NumWorkers   int  // upper bound on concurrent chunks
	MinChunkSize int  // loops shorter than this, and chunks, never go below it
}

// DefaultConfig uses one worker per CPU and stays sequential on a single core.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1024,
	}
}

// span is a half-open index range [lo, hi).
type span struct{ lo, hi int }

// split divides [0, n) into at most NumWorkers spans of at least
// MinChunkSize indices. It returns a single span when the loop should run
// inline.
func (c Config) split(n int) []span {
	if !c.Enabled || c.NumWorkers <= 1 || n < c.MinChunkSize {
		return []span{{0, n}}
	}
	size := max((n+c.NumWorkers-1)/c.NumWorkers, c.MinChunkSize, 1)
	spans := make([]span, 0, (n+size-1)/size)
	for lo := 0; lo < n; lo += size {
		spans = append(spans, span{lo, min(lo+size, n)})
	}
	return spans
}

// For calls f(i) for every i in [0, n).
func For(n int, f func(i int), cfg Config) {
	_ = ForErr(n, func(i int) error {
		f(i)
		return nil
	}, cfg)
}

// ForErr calls f(i) for every i in [0, n) until f fails. Each span stops at
// its first error and the error of the lowest span is returned, so the
// result does not depend on scheduling.
func ForErr(n int, f func(i int) error, cfg Config) error {
	spans := cfg.split(n)
	run := func(s span) error {
		for i := s.lo; i < s.hi; i++ {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}
	if len(spans) == 1 {
		return run(spans[0])
	}

	errs := make([]error, len(spans))
	var wg sync.WaitGroup
	for k, s := range spans {
		k, s := k, s
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[k] = run(s)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
