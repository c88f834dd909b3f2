package facts

import (
	"sort"
	"time"
)

// dayNumber collapses a timestamp to its UTC calendar day.
func dayNumber(t time.Time) int {
	u := t.UTC()
	d := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Unix() / 86400)
}

// Streaks computes the current and longest consecutive-day runs from a set of
// activity timestamps, as of today. A pure function of the date set: the
// current streak is the run ending today, or yesterday if today has no
// activity yet. A streak is not broken until a full day passes idle.
func Streaks(dates []time.Time, today time.Time) (current, longest int) {
	if len(dates) == 0 {
		return 0, 0
	}

	seen := map[int]struct{}{}
	for _, d := range dates {
		seen[dayNumber(d)] = struct{}{}
	}
	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Ints(days)

	todayNum := dayNumber(today)
	runLen := 1
	for i := 0; i < len(days); i++ {
		if i > 0 {
			if days[i] == days[i-1]+1 {
				runLen++
			} else {
				runLen = 1
			}
		}
		if runLen > longest {
			longest = runLen
		}
		runEnd := days[i]
		if runEnd == todayNum || runEnd == todayNum-1 {
			current = runLen
		}
	}
	return current, longest
}
