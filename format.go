package ikal

import (
	"bytes"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/mo"
)

// maxLineOctets is the longest physical line Format writes, CRLF excluded.
const maxLineOctets = 75

// An Encoder writes components to an output stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes c and its children. Nothing is written when c holds an
// invalid value.
func (enc *Encoder) Encode(c Component) error {
	if c == nil {
		return errors.New("ical: nil component")
	}

	e := &encoder{}
	c.encode(e)
	if e.err != nil {
		return e.err
	}
	_, err := e.buf.WriteTo(enc.w)
	return err
}

// Format writes the component to the provided io.Writer.
func Format(w io.Writer, c Component) error {
	return NewEncoder(w).Encode(c)
}

// Marshal returns the iCalendar text of c.
func Marshal(c Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := Format(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type encoder struct {
	buf bytes.Buffer
	err error
}

func (e *encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

// line writes one folded content line. Empty values are skipped.
func (e *encoder) line(key string, params Params, value string) {
	if value == "" {
		return
	}
	l := ContentLine{Key: key, Params: params, Value: value}
	e.buf.WriteString(fold(l.String()))
	e.buf.WriteString(crlf)
}

func (e *encoder) begin(name string) {
	e.buf.WriteString(begin + ":" + name + crlf)
}

func (e *encoder) end(name string) {
	e.buf.WriteString(end + ":" + name + crlf)
}

// fold splits a logical line so that no physical line exceeds
// maxLineOctets, continuation space included. UTF-8 sequences are never
// split.
func fold(line string) string {
	if len(line) <= maxLineOctets {
		return line
	}

	var b strings.Builder
	limit := maxLineOctets
	for len(line) > limit {
		i := limit
		for i > 0 && !utf8.RuneStart(line[i]) {
			i--
		}
		b.WriteString(line[:i])
		b.WriteString(crlf + " ")
		line = line[i:]
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	return b.String()
}

func some[V any](o mo.Option[V], key string, put func(string, V)) {
	if v, ok := o.Get(); ok {
		put(key, v)
	}
}

func each[V any](vs []V, key string, put func(string, V)) {
	for _, v := range vs {
		put(key, v)
	}
}

func (e *encoder) text(key string, t Text) {
	e.line(key, t.Params, escapeText(t.Value))
}

func (e *encoder) uri(key string, u URI) {
	e.line(key, u.Params, u.Value)
}

func (e *encoder) textList(key string, list []string) {
	if len(list) == 0 {
		return
	}
	escaped := make([]string, len(list))
	for i, s := range list {
		escaped[i] = escapeText(s)
	}
	e.line(key, nil, strings.Join(escaped, ","))
}

func (e *encoder) dateTime(key string, dt DateTime) {
	if dt.IsZero() {
		return
	}
	e.line(key, dt.params(), dt.String())
}

func (e *encoder) date(key string, d Date) {
	if d.IsZero() {
		return
	}
	e.line(key, d.params(), d.String())
}

// dateList writes one line per run of consecutive dates sharing the
// same parameters.
func (e *encoder) dateList(key string, dates []Date) {
	for len(dates) > 0 {
		params := dates[0].params().String()
		i := 1
		for i < len(dates) && dates[i].params().String() == params {
			i++
		}
		e.rdate(key, RDateList(dates[:i]))
		dates = dates[i:]
	}
}

func (e *encoder) rdate(key string, r RDate) {
	if r == nil {
		return
	}
	e.line(key, r.params(), r.String())
}

func (e *encoder) periods(key string, periods []Period) {
	if len(periods) == 0 {
		return
	}
	e.line(key, nil, RPeriodList(periods).String())
}

func (e *encoder) duration(key string, d time.Duration) {
	e.line(key, nil, FormatDuration(d))
}

func (e *encoder) integer(key string, n int) {
	e.line(key, nil, strconv.Itoa(n))
}

func (e *encoder) offset(key string, o UTCOffset) {
	e.line(key, nil, o.String())
}

func (e *encoder) recur(key string, r Recur) {
	e.line(key, nil, r.String())
}

func (e *encoder) class(key string, c Class) {
	e.line(key, nil, string(c))
}

func (e *encoder) status(key string, s Status) {
	if !s.valid() {
		e.fail(&DomainError{Kind: "status", Value: string(s)})
		return
	}
	e.line(key, nil, string(s))
}

func (e *encoder) transparency(key string, t Transparency) {
	if !t.valid() {
		e.fail(&DomainError{Kind: "transparency", Value: string(t)})
		return
	}
	e.line(key, nil, string(t))
}

func (e *encoder) geo(key string, g Geo) {
	e.line(key, nil, g.String())
}

func (e *encoder) requestStatus(key string, r RequestStatus) {
	e.line(key, nil, r.String())
}

func (e *encoder) trigger(key string, t Trigger) {
	if t == nil {
		return
	}
	e.line(key, t.params(), t.String())
}

// extensions writes the unknown properties, X- names first, each group
// in key order.
func (e *encoder) extensions(x Extensions) {
	for _, m := range []map[string]ContentLine{x.XProps, x.IANAProps} {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			l := m[k]
			e.line(l.Key, l.Params, l.Value)
		}
	}
}

func (c Calendar) encode(e *encoder) {
	e.begin(nameCalendar)
	e.text("PRODID", c.ProdID)
	e.text("VERSION", c.Version)
	some(c.CalScale, "CALSCALE", e.text)
	some(c.Method, "METHOD", e.text)
	e.extensions(c.Extensions)

	for _, tz := range c.Timezones {
		tz.encode(e)
	}
	for _, ev := range c.Events {
		ev.encode(e)
	}
	for _, td := range c.Todos {
		td.encode(e)
	}
	for _, j := range c.Journals {
		j.encode(e)
	}
	for _, fb := range c.FreeBusys {
		fb.encode(e)
	}
	e.end(nameCalendar)
}

func (ev Event) encode(e *encoder) {
	e.begin(nameEvent)
	e.dateTime("DTSTAMP", ev.DTStamp)
	e.text("UID", ev.UID)
	some(ev.DTStart, "DTSTART", e.date)
	some(ev.Class, "CLASS", e.class)
	some(ev.Created, "CREATED", e.dateTime)
	some(ev.Description, "DESCRIPTION", e.text)
	some(ev.Geo, "GEO", e.geo)
	some(ev.LastModified, "LAST-MODIFIED", e.dateTime)
	some(ev.Location, "LOCATION", e.text)
	some(ev.Organizer, "ORGANIZER", e.uri)
	some(ev.Priority, "PRIORITY", e.integer)
	some(ev.Sequence, "SEQUENCE", e.integer)
	some(ev.Status, "STATUS", e.status)
	some(ev.Summary, "SUMMARY", e.text)
	some(ev.Transp, "TRANSP", e.transparency)
	some(ev.URL, "URL", e.uri)
	some(ev.RecurrenceID, "RECURRENCE-ID", e.date)
	some(ev.RRule, "RRULE", e.recur)
	some(ev.DTEnd, "DTEND", e.date)
	some(ev.Duration, "DURATION", e.duration)
	each(ev.Attach, "ATTACH", e.text)
	each(ev.Attendee, "ATTENDEE", e.uri)
	e.textList("CATEGORIES", ev.Categories)
	each(ev.Comment, "COMMENT", e.text)
	each(ev.Contact, "CONTACT", e.text)
	e.dateList("EXDATE", ev.ExDate)
	each(ev.RequestStatus, "REQUEST-STATUS", e.requestStatus)
	each(ev.RelatedTo, "RELATED-TO", e.text)
	e.textList("RESOURCES", ev.Resources)
	each(ev.RDate, "RDATE", e.rdate)
	e.extensions(ev.Extensions)

	for _, a := range ev.Alarms {
		a.encode(e)
	}
	e.end(nameEvent)
}

func (td Todo) encode(e *encoder) {
	e.begin(nameTodo)
	e.dateTime("DTSTAMP", td.DTStamp)
	e.text("UID", td.UID)
	some(td.Class, "CLASS", e.class)
	some(td.Completed, "COMPLETED", e.dateTime)
	some(td.Created, "CREATED", e.dateTime)
	some(td.Description, "DESCRIPTION", e.text)
	some(td.DTStart, "DTSTART", e.date)
	some(td.Geo, "GEO", e.geo)
	some(td.LastModified, "LAST-MODIFIED", e.dateTime)
	some(td.Location, "LOCATION", e.text)
	some(td.Organizer, "ORGANIZER", e.uri)
	some(td.PercentComplete, "PERCENT-COMPLETE", e.integer)
	some(td.Priority, "PRIORITY", e.integer)
	some(td.RecurrenceID, "RECURRENCE-ID", e.date)
	some(td.Sequence, "SEQUENCE", e.integer)
	some(td.Status, "STATUS", e.status)
	some(td.Summary, "SUMMARY", e.text)
	some(td.URL, "URL", e.uri)
	some(td.RRule, "RRULE", e.recur)
	some(td.Due, "DUE", e.date)
	some(td.Duration, "DURATION", e.duration)
	each(td.Attach, "ATTACH", e.text)
	each(td.Attendee, "ATTENDEE", e.uri)
	e.textList("CATEGORIES", td.Categories)
	each(td.Comment, "COMMENT", e.text)
	each(td.Contact, "CONTACT", e.text)
	e.dateList("EXDATE", td.ExDate)
	each(td.RequestStatus, "REQUEST-STATUS", e.requestStatus)
	each(td.RelatedTo, "RELATED-TO", e.text)
	e.textList("RESOURCES", td.Resources)
	each(td.RDate, "RDATE", e.rdate)
	e.extensions(td.Extensions)

	for _, a := range td.Alarms {
		a.encode(e)
	}
	e.end(nameTodo)
}

func (j Journal) encode(e *encoder) {
	e.begin(nameJournal)
	e.dateTime("DTSTAMP", j.DTStamp)
	e.text("UID", j.UID)
	some(j.Class, "CLASS", e.class)
	some(j.Created, "CREATED", e.dateTime)
	some(j.DTStart, "DTSTART", e.date)
	some(j.LastModified, "LAST-MODIFIED", e.dateTime)
	some(j.Organizer, "ORGANIZER", e.uri)
	some(j.RecurrenceID, "RECURRENCE-ID", e.date)
	some(j.Sequence, "SEQUENCE", e.integer)
	some(j.Status, "STATUS", e.status)
	some(j.Summary, "SUMMARY", e.text)
	some(j.URL, "URL", e.uri)
	some(j.RRule, "RRULE", e.recur)
	each(j.Attach, "ATTACH", e.text)
	each(j.Attendee, "ATTENDEE", e.uri)
	e.textList("CATEGORIES", j.Categories)
	each(j.Comment, "COMMENT", e.text)
	each(j.Contact, "CONTACT", e.text)
	each(j.Description, "DESCRIPTION", e.text)
	e.dateList("EXDATE", j.ExDate)
	each(j.RelatedTo, "RELATED-TO", e.text)
	each(j.RDate, "RDATE", e.rdate)
	each(j.RequestStatus, "REQUEST-STATUS", e.requestStatus)
	e.extensions(j.Extensions)
	e.end(nameJournal)
}

func (fb FreeBusy) encode(e *encoder) {
	e.begin(nameFreeBusy)
	e.dateTime("DTSTAMP", fb.DTStamp)
	e.text("UID", fb.UID)
	some(fb.Contact, "CONTACT", e.text)
	some(fb.DTStart, "DTSTART", e.date)
	some(fb.DTEnd, "DTEND", e.date)
	some(fb.Organizer, "ORGANIZER", e.uri)
	some(fb.URL, "URL", e.uri)
	each(fb.Attendee, "ATTENDEE", e.uri)
	each(fb.Comment, "COMMENT", e.text)
	e.periods("FREEBUSY", fb.FreeBusy)
	each(fb.RequestStatus, "REQUEST-STATUS", e.requestStatus)
	e.extensions(fb.Extensions)
	e.end(nameFreeBusy)
}

func (tz Timezone) encode(e *encoder) {
	e.begin(nameTimezone)
	e.text("TZID", tz.TZID)
	some(tz.LastModified, "LAST-MODIFIED", e.dateTime)
	some(tz.TZURL, "TZURL", e.uri)
	e.extensions(tz.Extensions)

	for _, r := range tz.Standard {
		r.encode(e, nameStandard)
	}
	for _, r := range tz.Daylight {
		r.encode(e, nameDaylight)
	}
	e.end(nameTimezone)
}

func (r TimezoneRule) encode(e *encoder, name string) {
	e.begin(name)
	e.dateTime("DTSTART", r.DTStart)
	e.offset("TZOFFSETTO", r.TZOffsetTo)
	e.offset("TZOFFSETFROM", r.TZOffsetFrom)
	some(r.RRule, "RRULE", e.recur)
	each(r.Comment, "COMMENT", e.text)
	each(r.RDate, "RDATE", e.rdate)
	each(r.TZName, "TZNAME", e.text)
	e.extensions(r.Extensions)
	e.end(name)
}

func (a AudioAlarm) encode(e *encoder) {
	e.begin(nameAlarm)
	e.line("ACTION", nil, actionAudio)
	e.trigger("TRIGGER", a.Trigger)
	some(a.Duration, "DURATION", e.duration)
	some(a.Repeat, "REPEAT", e.integer)
	each(a.Attach, "ATTACH", e.text)
	e.extensions(a.Extensions)
	e.end(nameAlarm)
}

func (a DisplayAlarm) encode(e *encoder) {
	e.begin(nameAlarm)
	e.line("ACTION", nil, actionDisplay)
	e.trigger("TRIGGER", a.Trigger)
	e.text("DESCRIPTION", a.Description)
	some(a.Duration, "DURATION", e.duration)
	some(a.Repeat, "REPEAT", e.integer)
	e.extensions(a.Extensions)
	e.end(nameAlarm)
}

func (a EmailAlarm) encode(e *encoder) {
	e.begin(nameAlarm)
	e.line("ACTION", nil, actionEmail)
	e.trigger("TRIGGER", a.Trigger)
	e.text("DESCRIPTION", a.Description)
	e.text("SUMMARY", a.Summary)
	each(a.Attendee, "ATTENDEE", e.uri)
	some(a.Duration, "DURATION", e.duration)
	some(a.Repeat, "REPEAT", e.integer)
	each(a.Attach, "ATTACH", e.text)
	e.extensions(a.Extensions)
	e.end(nameAlarm)
}
