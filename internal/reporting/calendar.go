package reporting

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	dayLayout     = "2006-01-02"
	monthLayout   = "2006-01"
	displayLayout = "02/01/2006"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05",
	dayLayout,
}

// ParseTimestamp parses a date column from the store. Values carrying a zone
// offset are instants; values without one are wall-clock times in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// Date is a calendar day. The zero value means no day is selected.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDay parses YYYY-MM-DD. An empty string yields the zero Date.
func ParseDay(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("reporting: invalid day %q: %w", s, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether no day is selected.
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Display renders the day the way the console shows dates.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(displayLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// Month is a calendar month. The zero value means no month is selected.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month of t in its own location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses YYYY-MM. An empty string yields the zero Month.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Month{}, nil
	}
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("reporting: invalid month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// IsZero reports whether no month is selected.
func (m Month) IsZero() bool { return m == Month{} }

func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(m.String())
}

// DisplayDate renders a store date as dd/mm/yyyy, or returns it unchanged
// when it cannot be parsed.
func DisplayDate(raw string, loc *time.Location) string {
	t, ok := ParseTimestamp(raw, loc)
	if !ok {
		return raw
	}
	return t.Format(displayLayout)
}
