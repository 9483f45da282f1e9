package domain

import "time"

// DateLayout is the wire format for calendar dates in forms and storage.
const DateLayout = "2006-01-02"

// DateOf returns the calendar date of t (in t's location) as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD; nil renders empty.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Clock supplies the current time. A nil Clock reads the wall clock.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// Today is the calendar date of Now.
func (c Clock) Today() time.Time {
	return DateOf(c.Now())
}
