package ikal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout              = "20060102"
	dateTimeLayoutUTC       = "20060102T150405Z"
	dateTimeLayoutLocalized = "20060102T150405"
)

// A DateTime is either a floating wall-clock timestamp or a UTC
// timestamp. A floating DateTime may carry a TZID label; the label is
// kept for serialization and is never resolved against a time zone
// database.
type DateTime struct {
	t    time.Time // wall clock, always stored with location UTC
	utc  bool
	tzid string
}

// FloatingTime returns the floating DateTime with the wall clock of t.
// Sub-second precision is dropped.
func FloatingTime(t time.Time) DateTime {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return DateTime{t: time.Date(y, m, d, hh, mm, ss, 0, time.UTC)}
}

// UTCTime returns the UTC DateTime of the instant t.
func UTCTime(t time.Time) DateTime {
	return DateTime{t: t.UTC().Truncate(time.Second), utc: true}
}

// WithTZID returns a floating copy of d labelled with tzid.
func (d DateTime) WithTZID(tzid string) DateTime {
	d.utc = false
	d.tzid = tzid
	return d
}

// IsUTC reports whether d is a UTC timestamp.
func (d DateTime) IsUTC() bool { return d.utc }

// TZID returns the time zone label of d, if any.
func (d DateTime) TZID() string { return d.tzid }

// IsZero reports whether d is the zero DateTime.
func (d DateTime) IsZero() bool { return d.t.IsZero() && !d.utc && d.tzid == "" }

// Time returns the wall clock of d as a time.Time in UTC.
func (d DateTime) Time() time.Time { return d.t }

// Add returns d shifted by dur.
func (d DateTime) Add(dur time.Duration) DateTime {
	d.t = d.t.Add(dur)
	return d
}

// AddDate returns d shifted by the given calendar amounts.
func (d DateTime) AddDate(years, months, days int) DateTime {
	d.t = d.t.AddDate(years, months, days)
	return d
}

// Sub returns the wall clock duration d-u.
func (d DateTime) Sub(u DateTime) time.Duration {
	return d.t.Sub(u.t)
}

// Compare compares wall clocks, returning -1, 0 or +1.
func (d DateTime) Compare(u DateTime) int {
	return d.t.Compare(u.t)
}

// Equal reports whether d and u are the same timestamp with the same
// variant and label.
func (d DateTime) Equal(u DateTime) bool {
	return d.t.Equal(u.t) && d.utc == u.utc && d.tzid == u.tzid
}

func (d DateTime) day() time.Time {
	y, m, dd := d.t.Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

// String formats d as an iCalendar DATE-TIME value.
func (d DateTime) String() string {
	if d.utc {
		return d.t.Format(dateTimeLayoutUTC)
	}
	return d.t.Format(dateTimeLayoutLocalized)
}

func (d DateTime) params() Params {
	if d.tzid == "" {
		return nil
	}
	return Params{"TZID": d.tzid}
}

// ParseDateTime parses an iCalendar DATE-TIME value. A trailing "Z"
// marks a UTC timestamp.
func ParseDateTime(s string) (DateTime, error) {
	utc := strings.HasSuffix(s, "Z")
	t, err := time.Parse(dateTimeLayoutLocalized, strings.TrimSuffix(s, "Z"))
	if err != nil {
		return DateTime{}, fmt.Errorf("invalid date-time: %q", s)
	}
	return DateTime{t: t, utc: utc}, nil
}

// A Date is either a calendar date or a DateTime.
type Date struct {
	dt       DateTime
	dateOnly bool
}

// NewDate returns the calendar date year-month-day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{dt: DateTime{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}, dateOnly: true}
}

// DateOf wraps a DateTime as a Date.
func DateOf(dt DateTime) Date {
	return Date{dt: dt}
}

// IsDateOnly reports whether d carries no time of day.
func (d Date) IsDateOnly() bool { return d.dateOnly }

// DateTime returns d as a timestamp; a calendar date becomes floating
// midnight.
func (d Date) DateTime() DateTime { return d.dt }

// Time returns the wall clock of d as a time.Time in UTC.
func (d Date) Time() time.Time { return d.dt.t }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return !d.dateOnly && d.dt.IsZero() }

// Add returns d shifted by dur. Calendar dates move by whole days.
func (d Date) Add(dur time.Duration) Date {
	d.dt = d.dt.Add(dur)
	if d.dateOnly {
		d.dt.t = d.dt.day()
	}
	return d
}

// AddDate returns d shifted by the given calendar amounts.
func (d Date) AddDate(years, months, days int) Date {
	d.dt = d.dt.AddDate(years, months, days)
	return d
}

// Sub returns the wall clock duration d-u.
func (d Date) Sub(u Date) time.Duration {
	return d.dt.Sub(u.dt)
}

// Compare orders d and u. When either side is a calendar date only the
// calendar dates are compared, otherwise the wall clocks are.
func (d Date) Compare(u Date) int {
	if d.dateOnly || u.dateOnly {
		return d.dt.day().Compare(u.dt.day())
	}
	return d.dt.Compare(u.dt)
}

// Equal reports whether d and u are the same value of the same variant.
func (d Date) Equal(u Date) bool {
	return d.dateOnly == u.dateOnly && d.dt.Equal(u.dt)
}

// SameDay reports whether d and u fall on the same calendar date.
func (d Date) SameDay(u Date) bool {
	return d.dt.day().Equal(u.dt.day())
}

// String formats d as an iCalendar DATE or DATE-TIME value.
func (d Date) String() string {
	if d.dateOnly {
		return d.dt.t.Format(dateLayout)
	}
	return d.dt.String()
}

func (d Date) params() Params {
	if d.dateOnly {
		return Params{"VALUE": "DATE"}
	}
	return d.dt.params()
}

// ParseDate parses an iCalendar DATE or DATE-TIME value, choosing the
// variant from the shape of s.
func ParseDate(s string) (Date, error) {
	if len(s) == len(dateLayout) {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return Date{}, fmt.Errorf("invalid date: %q", s)
		}
		return Date{dt: DateTime{t: t}, dateOnly: true}, nil
	}

	dt, err := ParseDateTime(s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(dt), nil
}

// FormatDuration formats d as an iCalendar DURATION value. Sub-second
// parts are dropped.
func FormatDuration(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteByte('P')

	secs := int64(d / time.Second)
	if secs == 0 {
		b.WriteString("T0S")
		return b.String()
	}

	const day = 24 * 60 * 60
	if secs%(7*day) == 0 {
		fmt.Fprintf(&b, "%dW", secs/(7*day))
		return b.String()
	}

	if days := secs / day; days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	secs %= day
	if secs == 0 {
		return b.String()
	}

	b.WriteByte('T')
	if h := secs / 3600; h > 0 {
		fmt.Fprintf(&b, "%dH", h)
	}
	if m := secs % 3600 / 60; m > 0 {
		fmt.Fprintf(&b, "%dM", m)
	}
	if s := secs % 60; s > 0 {
		fmt.Fprintf(&b, "%dS", s)
	}
	return b.String()
}

// ParseDuration parses an iCalendar DURATION value such as "-P1DT2H" or
// "P3W".
func ParseDuration(s string) (time.Duration, error) {
	rest := s
	neg := false
	switch {
	case strings.HasPrefix(rest, "-"):
		neg = true
		rest = rest[1:]
	case strings.HasPrefix(rest, "+"):
		rest = rest[1:]
	}

	if !strings.HasPrefix(rest, "P") || len(rest) == 1 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}
	rest = rest[1:]

	var (
		d      time.Duration
		inTime bool
		parts  int
	)
	for len(rest) > 0 {
		if rest[0] == 'T' {
			if inTime {
				return 0, fmt.Errorf("invalid duration: %q", s)
			}
			inTime = true
			rest = rest[1:]
			continue
		}

		i := 0
		for i < len(rest) && '0' <= rest[i] && rest[i] <= '9' {
			i++
		}
		if i == 0 || i == len(rest) {
			return 0, fmt.Errorf("invalid duration: %q", s)
		}
		n, err := strconv.ParseInt(rest[:i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %q", s)
		}

		var unit time.Duration
		switch u := rest[i]; {
		case u == 'W' && !inTime:
			unit = 7 * 24 * time.Hour
		case u == 'D' && !inTime:
			unit = 24 * time.Hour
		case u == 'H' && inTime:
			unit = time.Hour
		case u == 'M' && inTime:
			unit = time.Minute
		case u == 'S' && inTime:
			unit = time.Second
		default:
			return 0, fmt.Errorf("invalid duration: %q", s)
		}
		d += time.Duration(n) * unit
		parts++
		rest = rest[i+1:]
	}

	if parts == 0 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}
	if neg {
		d = -d
	}
	return d, nil
}

// A UTCOffset is a fixed offset from UTC in seconds, as used by
// TZOFFSETFROM and TZOFFSETTO.
type UTCOffset int

// String formats o as ±HHMM, or ±HHMMSS when seconds are present.
func (o UTCOffset) String() string {
	sign := '+'
	secs := int(o)
	if secs < 0 {
		sign = '-'
		secs = -secs
	}
	if secs%60 != 0 {
		return fmt.Sprintf("%c%02d%02d%02d", sign, secs/3600, secs%3600/60, secs%60)
	}
	return fmt.Sprintf("%c%02d%02d", sign, secs/3600, secs%3600/60)
}

// ParseUTCOffset parses a ±HHMM[SS] offset.
func ParseUTCOffset(s string) (UTCOffset, error) {
	if (len(s) != 5 && len(s) != 7) || (s[0] != '+' && s[0] != '-') {
		return 0, fmt.Errorf("invalid utc-offset: %q", s)
	}

	var fields [3]int
	for i := 0; 1+2*i < len(s); i++ {
		n, err := strconv.Atoi(s[1+2*i : 3+2*i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid utc-offset: %q", s)
		}
		fields[i] = n
	}
	if fields[1] > 59 || fields[2] > 59 {
		return 0, fmt.Errorf("invalid utc-offset: %q", s)
	}

	secs := fields[0]*3600 + fields[1]*60 + fields[2]
	if s[0] == '-' {
		secs = -secs
	}
	return UTCOffset(secs), nil
}

// A Period is a span of time, either ExplicitPeriod or DurationPeriod.
type Period interface {
	// Begin returns the start of the period.
	Begin() DateTime
	String() string

	period()
}

// An ExplicitPeriod is a period given by its start and end.
type ExplicitPeriod struct {
	Start DateTime
	End   DateTime
}

// A DurationPeriod is a period given by its start and a positive length.
type DurationPeriod struct {
	Start    DateTime
	Duration time.Duration
}

func (p ExplicitPeriod) Begin() DateTime { return p.Start }
func (p DurationPeriod) Begin() DateTime { return p.Start }

func (p ExplicitPeriod) String() string { return p.Start.String() + "/" + p.End.String() }
func (p DurationPeriod) String() string {
	return p.Start.String() + "/" + FormatDuration(p.Duration)
}

func (ExplicitPeriod) period() {}
func (DurationPeriod) period() {}

// ParsePeriod parses a start/end or start/duration period.
func ParsePeriod(s string) (Period, error) {
	start, rest, ok := strings.Cut(s, "/")
	if !ok {
		return nil, fmt.Errorf("invalid period: %q", s)
	}

	from, err := ParseDateTime(start)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(rest, "P") || strings.HasPrefix(rest, "+P") {
		d, err := ParseDuration(rest)
		if err != nil {
			return nil, err
		}
		return DurationPeriod{Start: from, Duration: d}, nil
	}

	to, err := ParseDateTime(rest)
	if err != nil {
		return nil, err
	}
	return ExplicitPeriod{Start: from, End: to}, nil
}
