package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// Timer measures one operation and logs its duration on Stop.
type Timer struct {
	start time.Time
	name  string
	slow  time.Duration
	log   zerolog.Logger
}

// NewTimer starts a timer. Durations above slow are logged at warn level;
// slow <= 0 disables the warning.
func NewTimer(name string, slow time.Duration, log zerolog.Logger) *Timer {
	return &Timer{start: time.Now(), name: name, slow: slow, log: log}
}

// Stop logs and returns the elapsed time.
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)

	t.log.Debug().
		Str("operation", t.name).
		Dur("duration_ms", duration).
		Msg("Performance measurement")

	if t.slow > 0 && duration > t.slow {
		t.log.Warn().
			Str("operation", t.name).
			Dur("duration", duration).
			Msg("Slow operation detected")
	}
	return duration
}

// Stats aggregates durations of a repeated operation, such as one screening
// pass over many symbols.
type Stats struct {
	OperationName string
	CallCount     int64
	TotalDuration time.Duration
	MinDuration   time.Duration
	MaxDuration   time.Duration
}

// Add records one duration.
func (s *Stats) Add(d time.Duration) {
	if s.CallCount == 0 || d < s.MinDuration {
		s.MinDuration = d
	}
	if d > s.MaxDuration {
		s.MaxDuration = d
	}
	s.CallCount++
	s.TotalDuration += d
}

// Average returns the mean duration, or 0 before the first Add.
func (s *Stats) Average() time.Duration {
	if s.CallCount == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.CallCount)
}

// Log writes a summary line.
func (s *Stats) Log(log zerolog.Logger) {
	if s.CallCount == 0 {
		return
	}
	log.Info().
		Str("operation", s.OperationName).
		Int64("call_count", s.CallCount).
		Dur("total_duration", s.TotalDuration).
		Dur("avg_duration", s.Average()).
		Dur("min_duration", s.MinDuration).
		Dur("max_duration", s.MaxDuration).
		Msg("Performance summary")
}
