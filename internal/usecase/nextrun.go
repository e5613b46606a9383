package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"autoblogger/internal/domain"
)

// NextRun computes the next eligible run strictly after now for the given
// cadence, anchored on the schedule's execution time in the installation
// timezone. It is a pure function: recomputation always derives from "now"
// rather than from the previous anchor, so a late-firing trigger never
// accumulates permanent drift.
func NextRun(now time.Time, freq domain.Frequency, executionTime string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	if freq == domain.FrequencyHourly {
		// Start of the next whole hour.
		return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc).Add(time.Hour)
	}

	hour, minute := parseExecutionTime(executionTime)
	target := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)

	switch freq {
	case domain.FrequencyTwiceDaily:
		// Two anchors per day, twelve hours apart; first anchor tomorrow
		// once both have passed.
		second := target.Add(12 * time.Hour)
		switch {
		case target.After(local):
			return target
		case second.After(local):
			return second
		default:
			return target.AddDate(0, 0, 1)
		}
	case domain.FrequencyWeekly:
		if !target.After(local) {
			target = target.AddDate(0, 0, 7)
		}
		return target
	default:
		// Daily.
		if !target.After(local) {
			target = target.AddDate(0, 0, 1)
		}
		return target
	}
}

// parseExecutionTime reads "HH:MM"; anything malformed falls back to the
// default 09:00 anchor rather than failing a scan.
func parseExecutionTime(value string) (hour, minute int) {
	hour, minute = 9, 0
	h, m, found := strings.Cut(strings.TrimSpace(value), ":")
	if !found {
		return hour, minute
	}
	ph, err1 := strconv.Atoi(h)
	pm, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || ph < 0 || ph > 23 || pm < 0 || pm > 59 {
		return hour, minute
	}
	return ph, pm
}

// formatRun renders an instant for schedule logs.
func formatRun(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%s (%s)", t.Format("2006-01-02 15:04:05"), t.Location())
}
