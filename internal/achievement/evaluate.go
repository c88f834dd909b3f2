package achievement

import (
	"math"
	"time"
)

// historySession is the per-session slice of a user's completed history the
// evaluators consume, in chronological completion order.
type historySession struct {
	ID             string
	StartedAt      *time.Time
	CompletedAt    time.Time
	DistanceKm     *float64
	DurationS      *int64
	ElevationGainM *float64
	LoadWeightKg   float64
	PowerPoints    *float64
	PaceSecPerKm   *float64
}

const defaultConsistencySessions = 10

// evaluate walks the user's history and reports whether the criteria are
// satisfied and by which session. Attribution is always the first
// chronological session at which the criterion became true, so backfill and
// cascade-delete behave correctly regardless of when evaluation runs.
func evaluate(c Criteria, history []historySession) (triggeringID string, ok bool) {
	switch c.Type {
	case "first_ruck":
		if len(history) > 0 {
			return history[0].ID, true
		}
		return "", false

	case "single_session_distance":
		return firstWhere(history, func(h historySession) bool {
			return h.DistanceKm != nil && *h.DistanceKm >= c.Target
		})

	case "session_weight":
		return firstWhere(history, func(h historySession) bool {
			return h.LoadWeightKg >= c.Target
		})

	case "power_points":
		return firstWhere(history, func(h historySession) bool {
			return h.PowerPoints != nil && *h.PowerPoints >= c.Target
		})

	case "elevation_gain":
		return firstWhere(history, func(h historySession) bool {
			return h.ElevationGainM != nil && *h.ElevationGainM >= c.Target
		})

	case "session_duration":
		return firstWhere(history, func(h historySession) bool {
			return h.DurationS != nil && float64(*h.DurationS) >= c.Target
		})

	case "pace_faster_than":
		// Lower pace is faster. An undefined pace never qualifies.
		return firstWhere(history, func(h historySession) bool {
			return h.PaceSecPerKm != nil && *h.PaceSecPerKm > 0 && *h.PaceSecPerKm <= c.Target
		})

	case "pace_slower_than":
		return firstWhere(history, func(h historySession) bool {
			return h.PaceSecPerKm != nil && *h.PaceSecPerKm >= c.Target
		})

	case "cumulative_distance":
		var total float64
		for _, h := range history {
			if h.DistanceKm != nil {
				total += *h.DistanceKm
			}
			if total >= c.Target {
				return h.ID, true
			}
		}
		return "", false

	case "time_of_day":
		return evaluateTimeOfDay(c, history)

	case "windowed_count":
		return evaluateWindowedCount(c, history)

	case "streak_days":
		return evaluateStreakDays(c, history)

	case "pace_consistency":
		return evaluatePaceConsistency(c, history)
	}

	// Unknown kinds never award; a bad catalog row is not a user error.
	return "", false
}

func firstWhere(history []historySession, pred func(historySession) bool) (string, bool) {
	for _, h := range history {
		if pred(h) {
			return h.ID, true
		}
	}
	return "", false
}

// evaluateTimeOfDay counts sessions started before or after a given hour and
// triggers on the session that reaches the target count.
func evaluateTimeOfDay(c Criteria, history []historySession) (string, bool) {
	target := int(c.Target)
	if target < 1 {
		target = 1
	}
	count := 0
	for _, h := range history {
		if h.StartedAt == nil {
			continue
		}
		hour := h.StartedAt.UTC().Hour()
		switch {
		case c.BeforeHour != nil && hour < *c.BeforeHour:
			count++
		case c.AfterHour != nil && hour >= *c.AfterHour:
			count++
		default:
			continue
		}
		if count >= target {
			return h.ID, true
		}
	}
	return "", false
}

// evaluateWindowedCount triggers on the session that completes a rolling
// window of WindowDays days containing the target number of qualifying
// sessions.
func evaluateWindowedCount(c Criteria, history []historySession) (string, bool) {
	target := int(c.Target)
	if target < 1 || c.WindowDays < 1 {
		return "", false
	}
	window := time.Duration(c.WindowDays) * 24 * time.Hour

	var qualifying []historySession
	for _, h := range history {
		if c.MinDistanceKm > 0 && (h.DistanceKm == nil || *h.DistanceKm < c.MinDistanceKm) {
			continue
		}
		if c.MinDurationS > 0 && (h.DurationS == nil || *h.DurationS < c.MinDurationS) {
			continue
		}
		qualifying = append(qualifying, h)
	}

	for i, h := range qualifying {
		windowStart := h.CompletedAt.Add(-window)
		count := 0
		for j := i; j >= 0; j-- {
			if qualifying[j].CompletedAt.Before(windowStart) {
				break
			}
			count++
		}
		if count >= target {
			return h.ID, true
		}
	}
	return "", false
}

// evaluateStreakDays triggers on the session whose calendar day extends a run
// of consecutive active days to the target length.
func evaluateStreakDays(c Criteria, history []historySession) (string, bool) {
	target := int(c.Target)
	if target < 1 {
		return "", false
	}

	runLen := 0
	prevDay := 0
	for _, h := range history {
		day := dayNumber(h.CompletedAt)
		switch {
		case runLen == 0 || day == prevDay+1:
			runLen++
		case day == prevDay:
			// Same day, streak unchanged.
		default:
			runLen = 1
		}
		prevDay = day
		if runLen >= target {
			return h.ID, true
		}
	}
	return "", false
}

func dayNumber(t time.Time) int {
	u := t.UTC()
	return int(time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// evaluatePaceConsistency triggers once the coefficient of variation over the
// user's valid-pace sessions drops to MaxCV, with at least MinSessions paces
// observed.
func evaluatePaceConsistency(c Criteria, history []historySession) (string, bool) {
	min := c.MinSessions
	if min < 1 {
		min = defaultConsistencySessions
	}
	if c.MaxCV <= 0 {
		return "", false
	}

	var paces []float64
	for _, h := range history {
		if h.PaceSecPerKm == nil || *h.PaceSecPerKm <= 0 {
			continue
		}
		paces = append(paces, *h.PaceSecPerKm)
		if len(paces) < min {
			continue
		}
		if cv(paces) <= c.MaxCV {
			return h.ID, true
		}
	}
	return "", false
}

func cv(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return math.Inf(1)
	}
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq/float64(len(values))) / mean
}
