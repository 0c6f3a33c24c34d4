package track

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// NowFunc anchors the "today/yesterday" activeness check; mockable.
var NowFunc = time.Now

// Streaks summarizes a student's engagement from their activity dates.
type Streaks struct {
	Current int `json:"currentStreak"`
	Best    int `json:"bestStreak"`
	Total   int `json:"totalActivities"`
}

// ComputeStreaks derives streaks from calendar-date strings (YYYY-MM-DD, UTC).
// Input may be unsorted and contain duplicates. Total is the raw entry count,
// duplicates included; streaks are computed over the deduplicated dates.
func ComputeStreaks(dates []string) Streaks {
	s := Streaks{Total: len(dates)}

	seen := make(map[string]struct{}, len(dates))
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		t, err := time.ParseInLocation(dateLayout, d, time.UTC)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	if len(days) == 0 {
		return s
	}

	// most recent first
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	// best: longest consecutive-day run, not anchored to today
	run, best := 1, 1
	for i := 1; i < len(days); i++ {
		if isNextDay(days[i], days[i-1]) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	s.Best = best

	// current: active only if the latest date is today or yesterday
	now := NowFunc().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if days[0].Equal(today) || days[0].Equal(today.AddDate(0, 0, -1)) {
		cur := 1
		for i := 1; i < len(days); i++ {
			if !isNextDay(days[i], days[i-1]) {
				break
			}
			cur++
		}
		s.Current = cur
	}
	return s
}

// isNextDay reports whether `next` is exactly one calendar day after `prev`.
// Both are UTC midnights, so whole-day subtraction is exact.
func isNextDay(prev, next time.Time) bool {
	return next.Sub(prev) == 24*time.Hour
}

// DedupDates returns the unique dates in first-seen order.
func DedupDates(dates []string) []string {
	seen := make(map[string]struct{}, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
