// Package stopwatch times CLI pipeline phases and prints them directly,
// a deterministic synchronous replacement for the original's
// coroutine-wrapped async timer (Design Notes §9): the orchestrator is
// single-threaded, so Start/Stop need no concurrency of their own.
package stopwatch

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Stopwatch measures the duration of one labeled phase.
type Stopwatch struct {
	label string
	start time.Time
	out   io.Writer
}

// Start begins timing label, printing nothing until Stop.
func Start(label string) *Stopwatch {
	return &Stopwatch{label: label, start: time.Now(), out: os.Stdout}
}

// Stop records the elapsed duration, prints "<label>: <duration>" to the
// stopwatch's output, and returns the duration.
func (s *Stopwatch) Stop() time.Duration {
	elapsed := time.Since(s.start)
	fmt.Fprintf(s.out, "%s: %s\n", s.label, elapsed)
	return elapsed
}
