package ikal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Freq is the unit a recurrence rule steps by.
type Freq int

const (
	Secondly Freq = iota
	Minutely
	Hourly
	Daily
	Weekly
	Monthly
	Yearly
)

var freqNames = map[Freq]string{
	Secondly: "SECONDLY",
	Minutely: "MINUTELY",
	Hourly:   "HOURLY",
	Daily:    "DAILY",
	Weekly:   "WEEKLY",
	Monthly:  "MONTHLY",
	Yearly:   "YEARLY",
}

var freqFromName = map[string]Freq{
	"SECONDLY": Secondly,
	"MINUTELY": Minutely,
	"HOURLY":   Hourly,
	"DAILY":    Daily,
	"WEEKLY":   Weekly,
	"MONTHLY":  Monthly,
	"YEARLY":   Yearly,
}

func (f Freq) valid() bool {
	_, ok := freqNames[f]
	return ok
}

func (f Freq) String() string {
	if name, ok := freqNames[f]; ok {
		return name
	}
	return "Freq(" + strconv.Itoa(int(f)) + ")"
}

var dayNames = map[string]time.Weekday{
	"SU": time.Sunday,
	"MO": time.Monday,
	"TU": time.Tuesday,
	"WE": time.Wednesday,
	"TH": time.Thursday,
	"FR": time.Friday,
	"SA": time.Saturday,
}

var dayAbbrev = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// A WeekdayNum is a BYDAY entry: a weekday with an optional ordinal
// such as the 2 of "2MO" or the -1 of "-1FR". Ord 0 means no ordinal.
type WeekdayNum struct {
	Weekday time.Weekday
	Ord     int
}

func (w WeekdayNum) String() string {
	if w.Ord == 0 {
		return dayAbbrev[w.Weekday]
	}
	return strconv.Itoa(w.Ord) + dayAbbrev[w.Weekday]
}

func parseWeekdayNum(s string) (WeekdayNum, error) {
	if len(s) < 2 {
		return WeekdayNum{}, &DomainError{Kind: "weekday", Value: s}
	}
	day, ok := dayNames[s[len(s)-2:]]
	if !ok {
		return WeekdayNum{}, &DomainError{Kind: "weekday", Value: s}
	}

	w := WeekdayNum{Weekday: day}
	if ord := s[:len(s)-2]; ord != "" {
		n, err := strconv.Atoi(ord)
		if err != nil || n == 0 || n < -53 || n > 53 {
			return WeekdayNum{}, fmt.Errorf("invalid weekday ordinal: %q", s)
		}
		w.Ord = n
	}
	return w, nil
}

// A Recur is a recurrence rule. Until and Count are stored as given;
// nothing prevents both from being set.
type Recur struct {
	Freq       Freq
	Until      mo.Option[Date]
	Count      mo.Option[int]
	Interval   int // 0 when absent, stepping by 1
	BySecond   []int
	ByMinute   []int
	ByHour     []int
	ByDay      []WeekdayNum
	ByMonthDay []int
	ByYearDay  []int
	ByWeekNo   []int
	ByMonth    []int
	BySetPos   []int
	WeekStart  mo.Option[time.Weekday]
}

// NewRecur returns a rule stepping every interval units of freq. An
// interval of 1 or less leaves INTERVAL absent.
func NewRecur(freq Freq, interval int) Recur {
	if interval <= 1 {
		interval = 0
	}
	return Recur{Freq: freq, Interval: interval}
}

// byList describes one BY* part of a rule.
type byList struct {
	name     string
	field    func(*Recur) *[]int
	min, max int
	signed   bool
}

var byLists = []byList{
	{"BYSECOND", func(r *Recur) *[]int { return &r.BySecond }, 0, 60, false},
	{"BYMINUTE", func(r *Recur) *[]int { return &r.ByMinute }, 0, 59, false},
	{"BYHOUR", func(r *Recur) *[]int { return &r.ByHour }, 0, 23, false},
	{"BYMONTHDAY", func(r *Recur) *[]int { return &r.ByMonthDay }, 1, 31, true},
	{"BYYEARDAY", func(r *Recur) *[]int { return &r.ByYearDay }, 1, 366, true},
	{"BYWEEKNO", func(r *Recur) *[]int { return &r.ByWeekNo }, 1, 53, true},
	{"BYMONTH", func(r *Recur) *[]int { return &r.ByMonth }, 1, 12, false},
	{"BYSETPOS", func(r *Recur) *[]int { return &r.BySetPos }, 1, 366, true},
}

func (b byList) parse(val string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(val, ",") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q", b.name, val)
		}
		abs := n
		if b.signed && n < 0 {
			abs = -n
		}
		if abs < b.min || abs > b.max {
			return nil, fmt.Errorf("invalid %s: %q", b.name, val)
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseRecur parses an RRULE value like "FREQ=WEEKLY;BYDAY=MO,WE;INTERVAL=2".
func ParseRecur(rule string) (Recur, error) {
	if rule == "" {
		return Recur{}, fmt.Errorf("empty rule")
	}

	var r Recur
	var hasFreq bool

	parts := strings.Split(rule, ";")
	for _, part := range parts {
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return Recur{}, fmt.Errorf("invalid rule part: %q", part)
		}

		switch key {
		case "FREQ":
			f, ok := freqFromName[val]
			if !ok {
				return Recur{}, &DomainError{Kind: "frequency", Value: val}
			}
			r.Freq = f
			hasFreq = true

		case "UNTIL":
			until, err := ParseDate(val)
			if err != nil {
				return Recur{}, fmt.Errorf("invalid UNTIL: %q", val)
			}
			r.Until = mo.Some(until)

		case "COUNT":
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				return Recur{}, fmt.Errorf("invalid count: %q", val)
			}
			r.Count = mo.Some(n)

		case "INTERVAL":
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return Recur{}, fmt.Errorf("invalid interval: %q", val)
			}
			r.Interval = n

		case "BYDAY":
			for _, d := range strings.Split(val, ",") {
				wd, err := parseWeekdayNum(d)
				if err != nil {
					return Recur{}, err
				}
				r.ByDay = append(r.ByDay, wd)
			}

		case "WKST":
			wd, ok := dayNames[val]
			if !ok {
				return Recur{}, &DomainError{Kind: "weekday", Value: val}
			}
			r.WeekStart = mo.Some(wd)

		default:
			found := false
			for _, b := range byLists {
				if b.name != key {
					continue
				}
				list, err := b.parse(val)
				if err != nil {
					return Recur{}, err
				}
				*b.field(&r) = list
				found = true
				break
			}
			if !found {
				return Recur{}, fmt.Errorf("unsupported rule key: %q", key)
			}
		}
	}

	if !hasFreq {
		return Recur{}, fmt.Errorf("FREQ is required")
	}

	return r, nil
}

// String serializes the rule back to an RRULE value. INTERVAL is written
// whenever it was given, even as 1. Parts are written
// in a fixed order: FREQ, UNTIL, COUNT, INTERVAL, BYSECOND, BYMINUTE,
// BYHOUR, BYDAY, BYMONTHDAY, BYYEARDAY, BYWEEKNO, BYMONTH, BYSETPOS, WKST.
func (r Recur) String() string {
	parts := []string{"FREQ=" + r.Freq.String()}

	if until, ok := r.Until.Get(); ok {
		parts = append(parts, "UNTIL="+until.String())
	}
	if count, ok := r.Count.Get(); ok {
		parts = append(parts, "COUNT="+strconv.Itoa(count))
	}
	if r.Interval > 0 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(r.Interval))
	}

	for _, b := range byLists[:3] {
		parts = appendInts(parts, b.name, *b.field(&r))
	}
	if len(r.ByDay) > 0 {
		days := make([]string, len(r.ByDay))
		for i, d := range r.ByDay {
			days[i] = d.String()
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}
	for _, b := range byLists[3:] {
		parts = appendInts(parts, b.name, *b.field(&r))
	}

	if wkst, ok := r.WeekStart.Get(); ok {
		parts = append(parts, "WKST="+dayAbbrev[wkst])
	}

	return strings.Join(parts, ";")
}

func appendInts(parts []string, name string, list []int) []string {
	if len(list) == 0 {
		return parts
	}
	s := make([]string, len(list))
	for i, n := range list {
		s[i] = strconv.Itoa(n)
	}
	return append(parts, name+"="+strings.Join(s, ","))
}

// step returns base advanced by n intervals of the rule's frequency.
// MONTHLY and YEARLY steps keep the day of month; ok is false when the
// target month has no such day.
func (r Recur) step(base Date, n int) (next Date, ok bool) {
	k := n * r.interval()
	switch r.Freq {
	case Secondly:
		return base.Add(time.Duration(k) * time.Second), true
	case Minutely:
		return base.Add(time.Duration(k) * time.Minute), true
	case Hourly:
		return base.Add(time.Duration(k) * time.Hour), true
	case Daily:
		return base.AddDate(0, 0, k), true
	case Weekly:
		return base.AddDate(0, 0, 7*k), true
	case Monthly:
		next = base.AddDate(0, k, 0)
	case Yearly:
		next = base.AddDate(k, 0, 0)
	default:
		return base, false
	}
	return next, next.Time().Day() == base.Time().Day()
}

func (r Recur) interval() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}
