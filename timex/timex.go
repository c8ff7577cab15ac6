// SPDX-License-Identifier: MIT

// Package timex provides time helpers: epoch-millisecond conversion, UTC
// offset introspection, DST detection, and time ranges as iterators.
package timex

import (
	"fmt"
	"iter"
	"time"
)

// UTCNow returns the current time in UTC.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// MillisSinceEpoch returns the number of milliseconds between the Unix epoch
// and t.
func MillisSinceEpoch(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts milliseconds since the Unix epoch to a UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// OffsetString returns the current UTC offset of loc formatted as ±hhmm,
// e.g. "+0200" or "-0700".
func OffsetString(loc *time.Location) string {
	_, offset := time.Now().In(loc).Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%02d%02d", sign, offset/3600, (offset%3600)/60)
}

// ZoneSupportsDST reports whether loc observes daylight saving time at all,
// and whether it is currently in effect. Detection compares the zone offset
// in mid-June against mid-December.
func ZoneSupportsDST(loc *time.Location) (supports, currently bool) {
	year := time.Now().Year()
	_, june := time.Date(year, time.June, 15, 12, 0, 0, 0, loc).Zone()
	_, december := time.Date(year, time.December, 15, 12, 0, 0, 0, loc).Zone()

	supports = june != december
	currently = time.Now().In(loc).IsDST()
	return supports, currently
}

// Range yields times from begin (inclusive) to end (exclusive) in increments
// of step, analogous to an integer range. A non-positive step yields
// nothing.
func Range(begin, end time.Time, step time.Duration) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if step <= 0 {
			return
		}
		for t := begin; t.Before(end); t = t.Add(step) {
			if !yield(t) {
				return
			}
		}
	}
}

// Age returns the number of whole years between birth and from, handling
// February 29 birthdays by treating them as February 28 in non-leap years.
func Age(birth, from time.Time) int {
	years := from.Year() - birth.Year()

	anniversary := time.Date(from.Year(), birth.Month(), birth.Day(),
		0, 0, 0, 0, from.Location())
	// Feb 29 normalizes to Mar 1 in non-leap years; pull it back a day.
	if birth.Month() == time.February && birth.Day() == 29 && anniversary.Month() == time.March {
		anniversary = anniversary.AddDate(0, 0, -1)
	}
	if anniversary.After(from) {
		years--
	}
	return years
}
