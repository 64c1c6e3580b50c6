package kpi

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"
)

const day = 24 * time.Hour

// window is a half-open time range. A zero end means unbounded.
type window struct {
	start time.Time
	end   time.Time
}

func (w window) contains(t time.Time) bool {
	if t.Before(w.start) {
		return false
	}
	return w.end.IsZero() || t.Before(w.end)
}

// trendWindows returns the current window [now-d, +inf) and the previous
// window [now-2d, now-d).
func trendWindows(now time.Time, days int) (current, previous window) {
	span := time.Duration(days) * day
	current = window{start: now.Add(-span)}
	previous = window{start: now.Add(-2 * span), end: now.Add(-span)}
	return current, previous
}

// monthStart truncates t to midnight on the first day of its month.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// decreaseChange is the percent improvement when lower is better.
func decreaseChange(previous, current float64) float64 {
	return safePercent(previous-current, previous)
}

// increaseChange is the percent growth from previous to current.
func increaseChange(previous, current float64) float64 {
	return safePercent(current-previous, previous)
}

func safePercent(delta, base float64) float64 {
	if base == 0 || !finite(base) || !finite(delta) {
		return 0
	}
	return delta / base * 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// mean averages the finite values, returning 0 when there are none.
func mean(values []float64) float64 {
	m, err := stats.Mean(stats.Float64Data(finiteOnly(values)))
	if err != nil {
		return 0
	}
	return m
}

// sum adds the finite values, returning 0 when there are none.
func sum(values []float64) float64 {
	s, err := stats.Sum(stats.Float64Data(finiteOnly(values)))
	if err != nil {
		return 0
	}
	return s
}

func finiteOnly(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if finite(v) {
			out = append(out, v)
		}
	}
	return out
}
