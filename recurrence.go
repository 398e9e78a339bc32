package ikal

import (
	"iter"
	"time"

	"github.com/samber/mo"
)

// Recurrent is implemented by components that can repeat. Setters
// return modified copies.
type Recurrent[T any] interface {
	StartAt() mo.Option[Date]
	WithStartAt(Date) T
	EndAt() mo.Option[Date]
	WithEndAt(Date) T
	DueAt() mo.Option[Date]
	WithDueAt(Date) T
	ExceptionDates() []Date
	Rule() mo.Option[Recur]
	WithRule(mo.Option[Recur]) T
}

// A Recurrence is a lazy sequence of the occurrences of a recurring
// item. Only FREQ, INTERVAL, COUNT and UNTIL drive the expansion; the
// BY* parts are ignored (see Expand for full rule semantics). A rule
// with neither COUNT nor UNTIL never ends, so callers must bound it,
// for example with Between.
type Recurrence[T Recurrent[T]] struct {
	base      T
	rule      Recur
	repeating bool
	start     Date
	end, due  mo.Option[Date]
	exdates   []Date

	cur       occurrence
	n         int
	remaining mo.Option[int]
	done      bool
}

// occurrence holds the date fields of the current element.
type occurrence struct {
	start    mo.Option[Date]
	end, due mo.Option[Date]
}

// NewRecurrence returns the occurrences of item, starting with item itself.
func NewRecurrence[T Recurrent[T]](item T) *Recurrence[T] {
	r := &Recurrence[T]{
		base:    item,
		end:     item.EndAt(),
		due:     item.DueAt(),
		exdates: item.ExceptionDates(),
	}
	r.cur = occurrence{start: item.StartAt(), end: r.end, due: r.due}

	start, hasStart := item.StartAt().Get()
	rule, hasRule := item.Rule().Get()
	if hasStart && hasRule {
		r.start = start
		r.rule = rule
		r.repeating = true
		r.remaining = rule.Count
	}
	return r
}

// Next returns the next occurrence. The returned item keeps the rule of
// the base item.
func (r *Recurrence[T]) Next() (T, bool) {
	var zero T
	if r.done {
		return zero, false
	}

	current := r.materialize(r.cur)
	if !r.repeating {
		r.done = true
		return current, true
	}

	if until, ok := r.rule.Until.Get(); ok {
		if start := r.cur.start.MustGet(); start.dt.day().After(until.dt.day()) {
			r.done = true
			return zero, false
		}
	}

	if n, ok := r.remaining.Get(); ok {
		if n == 0 {
			r.done = true
			return zero, false
		}
		r.remaining = mo.Some(n - 1)
	}

	next, ok := r.advance()
	if !ok {
		r.done = true
		return current, true
	}
	r.cur = next
	return current, true
}

// advance computes the element after the current one, skipping days
// the step cannot land on, exception dates and, for calendar dates,
// steps that stay on the current day. It reports false for a frequency
// it cannot step by.
func (r *Recurrence[T]) advance() (occurrence, bool) {
	if !r.rule.Freq.valid() {
		return occurrence{}, false
	}

	prev := r.cur.start.MustGet()
	for {
		r.n++
		next, ok := r.rule.step(r.start, r.n)
		if !ok || r.excluded(next) {
			continue
		}
		if next.IsDateOnly() && next.Compare(prev) <= 0 {
			continue
		}

		delta := next.Sub(r.start)
		o := occurrence{start: mo.Some(next)}
		if end, ok := r.end.Get(); ok {
			o.end = mo.Some(end.Add(delta))
		}
		if due, ok := r.due.Get(); ok {
			o.due = mo.Some(due.Add(delta))
		}
		return o, true
	}
}

func (r *Recurrence[T]) excluded(d Date) bool {
	for _, ex := range r.exdates {
		if d.Compare(ex) == 0 {
			return true
		}
	}
	return false
}

func (r *Recurrence[T]) materialize(o occurrence) T {
	item := r.base
	if start, ok := o.start.Get(); ok {
		item = item.WithStartAt(start)
	}
	if end, ok := o.end.Get(); ok {
		item = item.WithEndAt(end)
	}
	if due, ok := o.due.Get(); ok {
		item = item.WithDueAt(due)
	}
	return item
}

// peek returns the start of the element Next would return.
func (r *Recurrence[T]) peek() (Date, bool) {
	if r.done {
		return Date{}, false
	}
	return r.cur.start.Get()
}

// All returns the remaining occurrences without consuming r.
func (r *Recurrence[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		c := *r
		for {
			item, ok := c.Next()
			if !ok || !yield(item) {
				return
			}
		}
	}
}

// Between returns the remaining occurrences starting in [start, end),
// without consuming r. Items without a start date are never returned.
func (r *Recurrence[T]) Between(start, end Date) []T {
	var out []T
	c := r.After(start)
	for {
		s, ok := c.peek()
		if !ok || s.Compare(end) >= 0 {
			return out
		}
		item, ok := c.Next()
		if !ok {
			return out
		}
		out = append(out, item)
	}
}

// At returns the occurrences starting in the 24 hours from date. For a
// calendar date that is the whole day.
func (r *Recurrence[T]) At(date Date) []T {
	return r.Between(date, date.Add(24*time.Hour))
}

// After returns a copy of r positioned at the first occurrence not
// strictly before date.
func (r *Recurrence[T]) After(date Date) *Recurrence[T] {
	c := *r
	for {
		s, ok := c.peek()
		if !ok {
			c.done = true
			return &c
		}
		if s.Compare(date) >= 0 {
			return &c
		}
		if _, ok := c.Next(); !ok {
			return &c
		}
	}
}

// Recurrences returns the occurrences of the event.
func (ev Event) Recurrences() *Recurrence[Event] { return NewRecurrence(ev) }

// Recurrences returns the occurrences of the to-do.
func (td Todo) Recurrences() *Recurrence[Todo] { return NewRecurrence(td) }

// Recurrences returns the occurrences of the journal entry.
func (j Journal) Recurrences() *Recurrence[Journal] { return NewRecurrence(j) }

func (ev Event) StartAt() mo.Option[Date]             { return ev.DTStart }
func (ev Event) EndAt() mo.Option[Date]               { return ev.DTEnd }
func (ev Event) DueAt() mo.Option[Date]               { return mo.None[Date]() }
func (ev Event) ExceptionDates() []Date               { return ev.ExDate }
func (ev Event) Rule() mo.Option[Recur]               { return ev.RRule }
func (ev Event) WithStartAt(d Date) Event             { ev.DTStart = mo.Some(d); return ev }
func (ev Event) WithEndAt(d Date) Event               { ev.DTEnd = mo.Some(d); return ev }
func (ev Event) WithDueAt(Date) Event                 { return ev }
func (ev Event) WithRule(rule mo.Option[Recur]) Event { ev.RRule = rule; return ev }

func (td Todo) StartAt() mo.Option[Date]            { return td.DTStart }
func (td Todo) EndAt() mo.Option[Date]              { return mo.None[Date]() }
func (td Todo) DueAt() mo.Option[Date]              { return td.Due }
func (td Todo) ExceptionDates() []Date              { return td.ExDate }
func (td Todo) Rule() mo.Option[Recur]              { return td.RRule }
func (td Todo) WithStartAt(d Date) Todo             { td.DTStart = mo.Some(d); return td }
func (td Todo) WithEndAt(Date) Todo                 { return td }
func (td Todo) WithDueAt(d Date) Todo               { td.Due = mo.Some(d); return td }
func (td Todo) WithRule(rule mo.Option[Recur]) Todo { td.RRule = rule; return td }

func (j Journal) StartAt() mo.Option[Date]               { return j.DTStart }
func (j Journal) EndAt() mo.Option[Date]                 { return mo.None[Date]() }
func (j Journal) DueAt() mo.Option[Date]                 { return mo.None[Date]() }
func (j Journal) ExceptionDates() []Date                 { return j.ExDate }
func (j Journal) Rule() mo.Option[Recur]                 { return j.RRule }
func (j Journal) WithStartAt(d Date) Journal             { j.DTStart = mo.Some(d); return j }
func (j Journal) WithEndAt(Date) Journal                 { return j }
func (j Journal) WithDueAt(Date) Journal                 { return j }
func (j Journal) WithRule(rule mo.Option[Recur]) Journal { j.RRule = rule; return j }
