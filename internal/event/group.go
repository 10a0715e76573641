package event

import (
	"strings"
	"time"
)

// All disables the location or activity filter in GroupByDate.
const All = "all"

// GroupByDate filters events by departure place and activity, then buckets them
// under a human date label. Groups keep the order in which their first event appears.
func GroupByDate(events []Event, location, activity string, now time.Time) []Group {
	location = strings.ToLower(strings.TrimSpace(location))
	groups := []Group{}
	index := map[string]int{}

	for _, e := range events {
		if location != "" && location != All && !strings.Contains(strings.ToLower(e.DeparturePlace), location) {
			continue
		}
		if activity != "" && activity != All && e.ActivityType != activity {
			continue
		}

		label := DateLabel(e.EventDate, now)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group{Date: label})
		}
		groups[i].Events = append(groups[i].Events, e)
	}
	return groups
}

// DateLabel renders "Today, Saturday", "Tomorrow, Sunday" or "Jun 14, Saturday".
func DateLabel(date, now time.Time) string {
	day := civil(date)
	today := civil(now)
	switch {
	case day.Equal(today):
		return "Today, " + day.Weekday().String()
	case day.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow, " + day.Weekday().String()
	default:
		return day.Format("Jan 2, Monday")
	}
}

// civil drops the clock and zone so calendar days compare directly.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
