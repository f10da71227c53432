package resource

import (
	"math"
	"time"
)

// ActiveSession is a time-bounded crafting or enchanting run. Remaining time
// and percent are derived from the server-reported values on every poll.
type ActiveSession struct {
	ID        string
	StartedAt time.Time
	Elapsed   time.Duration
	Total     time.Duration
	Completed bool
}

// Remaining is the time left, never negative.
func (s ActiveSession) Remaining() time.Duration {
	if s.Completed {
		return 0
	}
	left := s.Total - s.Elapsed
	if left < 0 {
		return 0
	}
	return left
}

// Percent is elapsed over total, clamped to [0, 100].
func (s ActiveSession) Percent() float64 {
	if s.Completed {
		return 100
	}
	if s.Total <= 0 {
		return 0
	}
	p := float64(s.Elapsed) / float64(s.Total) * 100
	return math.Max(0, math.Min(100, p))
}

// SessionFromRecord reads a session out of r using the given field names and
// units. Missing numeric fields count as zero.
func SessionFromRecord(r Record, idField, startField, elapsedField string, elapsedUnit time.Duration, totalField string, totalUnit time.Duration, completedField string) ActiveSession {
	s := ActiveSession{ID: r.ID(idField)}
	if v, ok := r.Number(elapsedField); ok {
		s.Elapsed = time.Duration(v * float64(elapsedUnit))
	}
	if v, ok := r.Number(totalField); ok {
		s.Total = time.Duration(v * float64(totalUnit))
	}
	if completedField != "" {
		if done, ok := r[completedField].(bool); ok {
			s.Completed = done
		}
	}
	if startField != "" {
		if ms, ok := r.Number(startField); ok && ms > 0 {
			s.StartedAt = time.UnixMilli(int64(ms))
		}
	}
	return s
}
