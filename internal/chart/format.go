package chart

import (
	"fmt"
	"time"
)

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// FormatTimestamp renders epoch milliseconds as "YYYY-MM-DD HH:MM" in loc.
func FormatTimestamp(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(locOrUTC(loc)).Format("2006-01-02 15:04")
}

// FormatShortDate renders epoch milliseconds as "M/D" in loc.
func FormatShortDate(ms int64, loc *time.Location) string {
	d := time.UnixMilli(ms).In(locOrUTC(loc))
	return fmt.Sprintf("%d/%d", int(d.Month()), d.Day())
}

// FormatClock renders epoch milliseconds as "HH:MM" in loc.
func FormatClock(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(locOrUTC(loc)).Format("15:04")
}

func locOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// monthBoundaries returns the first instant of calendar months in
// [tMin, tMax], starting at the first boundary at or after tMin. When more
// than limit boundaries fall in the interval only every step-th month is
// kept, so at most limit are returned. A limit below 1 returns none.
func monthBoundaries(tMin, tMax int64, loc *time.Location, limit int) []time.Time {
	if limit < 1 || tMax < tMin {
		return nil
	}
	loc = locOrUTC(loc)
	start := time.UnixMilli(tMin).In(loc)
	end := time.UnixMilli(tMax).In(loc)
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, loc)
	if cursor.UnixMilli() < tMin {
		cursor = cursor.AddDate(0, 1, 0)
	}

	months := (end.Year()-cursor.Year())*12 + int(end.Month()) - int(cursor.Month()) + 1
	step := 1
	if months > limit {
		step = (months + limit - 1) / limit
	}

	var out []time.Time
	for cursor.UnixMilli() <= tMax && len(out) < limit {
		out = append(out, cursor)
		cursor = time.Date(cursor.Year(), cursor.Month()+time.Month(step), 1, 0, 0, 0, 0, loc)
	}
	return out
}
