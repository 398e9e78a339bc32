package ikal

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

var rruleFreqs = map[Freq]rrule.Frequency{
	Secondly: rrule.SECONDLY,
	Minutely: rrule.MINUTELY,
	Hourly:   rrule.HOURLY,
	Daily:    rrule.DAILY,
	Weekly:   rrule.WEEKLY,
	Monthly:  rrule.MONTHLY,
	Yearly:   rrule.YEARLY,
}

var rruleDays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// ROption converts the rule to rrule-go options anchored at dtstart. An
// UNTIL date without a time covers the whole day.
func (r Recur) ROption(dtstart time.Time) (rrule.ROption, error) {
	freq, ok := rruleFreqs[r.Freq]
	if !ok {
		return rrule.ROption{}, &DomainError{Kind: "frequency", Value: r.Freq.String()}
	}

	opt := rrule.ROption{
		Freq:       freq,
		Dtstart:    dtstart,
		Interval:   r.interval(),
		Count:      r.Count.OrEmpty(),
		Bysecond:   r.BySecond,
		Byminute:   r.ByMinute,
		Byhour:     r.ByHour,
		Bymonthday: r.ByMonthDay,
		Byyearday:  r.ByYearDay,
		Byweekno:   r.ByWeekNo,
		Bymonth:    r.ByMonth,
		Bysetpos:   r.BySetPos,
	}

	if until, ok := r.Until.Get(); ok {
		opt.Until = until.Time()
		if until.IsDateOnly() {
			opt.Until = opt.Until.AddDate(0, 0, 1).Add(-time.Second)
		}
	}
	if wkst, ok := r.WeekStart.Get(); ok {
		opt.Wkst = rruleDays[wkst]
	}
	for _, d := range r.ByDay {
		wd := rruleDays[d.Weekday]
		if d.Ord != 0 {
			wd = wd.Nth(d.Ord)
		}
		opt.Byweekday = append(opt.Byweekday, wd)
	}
	return opt, nil
}

// recurrenceDater is implemented by components carrying RDATE lines.
type recurrenceDater interface {
	RecurrenceDates() []RDate
}

// RecurrenceDates returns the RDATE lines of the event.
func (ev Event) RecurrenceDates() []RDate { return ev.RDate }

// RecurrenceDates returns the RDATE lines of the to-do.
func (td Todo) RecurrenceDates() []RDate { return td.RDate }

// RecurrenceDates returns the RDATE lines of the journal entry.
func (j Journal) RecurrenceDates() []RDate { return j.RDate }

// Expand returns the start times of the occurrences of item in
// [from, to), in order. Unlike Recurrence it applies every part of the
// rule together with the RDATE and EXDATE lines. Times are wall clocks
// in UTC, as returned by Date.Time.
func Expand[T Recurrent[T]](item T, from, to time.Time) ([]time.Time, error) {
	start, ok := item.StartAt().Get()
	if !ok {
		return nil, nil
	}
	dtstart := start.Time()

	var set rrule.Set
	if rule, ok := item.Rule().Get(); ok {
		opt, err := rule.ROption(dtstart)
		if err != nil {
			return nil, err
		}
		r, err := rrule.NewRRule(opt)
		if err != nil {
			return nil, fmt.Errorf("ical: invalid RRULE %q: %w", rule, err)
		}
		set.RRule(r)
	} else {
		set.RDate(dtstart)
	}

	if rd, ok := any(item).(recurrenceDater); ok {
		for _, line := range rd.RecurrenceDates() {
			switch l := line.(type) {
			case RDateList:
				for _, d := range l {
					set.RDate(d.Time())
				}
			case RPeriodList:
				for _, p := range l {
					set.RDate(p.Begin().Time())
				}
			}
		}
	}

	hh, mm, ss := dtstart.Clock()
	for _, ex := range item.ExceptionDates() {
		t := ex.Time()
		if ex.IsDateOnly() && !start.IsDateOnly() {
			t = time.Date(t.Year(), t.Month(), t.Day(), hh, mm, ss, 0, time.UTC)
		}
		set.ExDate(t)
	}

	var out []time.Time
	for _, t := range set.Between(from, to, true) {
		if t.Before(to) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}
