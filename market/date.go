package market

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 day format used whenever dates are rendered.
const DateFormat = "2006-01-02"

// readDateFormat is more lenient on input and accepts 2024-7-1.
const readDateFormat = "2006-1-2"

// Date is a calendar day: no time of day, no time zone. Every timestamp is
// normalized to a Date before the simulator sees it, so the core never has to
// branch on tz-aware vs naive times.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date. Out-of-range month/day values roll over
// the way time.Date rolls them (month 13 becomes January of the next year).
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// DateOf truncates a timestamp to its calendar day, dropping the zone.
func DateOf(t time.Time) Date { return NewDate(t.Date()) }

// Today returns the current calendar day in UTC.
func Today() Date { return DateOf(time.Now().UTC()) }

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }

func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }
func (d Date) After(x Date) bool  { return d.time().After(x.time()) }
func (d Date) Equal(x Date) bool  { return d == x }
func (d Date) IsZero() bool       { return d == Date{} }

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date { return NewDate(d.y, d.m, d.d+n) }

// AddMonths returns the date n months later, keeping the day of month and
// rolling over when the target month is shorter.
func (d Date) AddMonths(n int) Date { return NewDate(d.y, d.m+time.Month(n), d.d) }

// FirstOfMonth returns the first calendar day of d's month.
func (d Date) FirstOfMonth() Date { return NewDate(d.y, d.m, 1) }

// LastOfMonth returns the last calendar day of d's month.
func (d Date) LastOfMonth() Date { return NewDate(d.y, d.m+1, 0) }

// DaysUntil returns the number of calendar days from d to x, negative when x
// is before d.
func (d Date) DaysUntil(x Date) int { return int(x.time().Sub(d.time()) / (24 * time.Hour)) }

// Time returns the canonical midnight-UTC instant of the day, for storage.
func (d Date) Time() time.Time { return d.time() }

func (d Date) String() string { return d.time().Format(DateFormat) }

// ParseDate parses "2006-01-02"; single-digit month and day are accepted.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(readDateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want %q: %w", s, DateFormat, err)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals in tests and examples.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
)
