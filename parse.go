package ikal

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/samber/mo"
)

// DecoderConfig configures a Decoder. The zero value is ready to use.
type DecoderConfig struct {
	// Logger receives Debug records for properties kept in Extensions
	// and for skipped components. Nil discards them.
	Logger *slog.Logger
	// StrictComponents rejects nested components that are not valid at
	// their position instead of skipping them.
	StrictComponents bool
}

// A Decoder reads a calendar from an input stream.
type Decoder struct {
	r io.Reader
	d decoder
}

type decoder struct {
	logger *slog.Logger
	strict bool
}

// NewDecoder returns a decoder reading from r. A nil cfg uses the
// defaults.
func NewDecoder(r io.Reader, cfg *DecoderConfig) *Decoder {
	var c DecoderConfig
	if cfg != nil {
		c = *cfg
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Decoder{r: r, d: decoder{logger: c.Logger, strict: c.StrictComponents}}
}

// Decode reads a whole VCALENDAR stream.
func (dec *Decoder) Decode() (Calendar, error) {
	b, err := io.ReadAll(dec.r)
	if err != nil {
		return Calendar{}, err
	}
	return decodeText(string(b), nameCalendar, dec.d.calendar)
}

var defaultDecoder = decoder{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

// Parse transforms the raw iCalendar into a Calendar
// It's up to the caller to close the io.Reader
func Parse(r io.Reader) (Calendar, error) {
	return NewDecoder(r, nil).Decode()
}

// ParseCalendar parses the text of one VCALENDAR component.
func ParseCalendar(text string) (Calendar, error) {
	return decodeText(text, nameCalendar, defaultDecoder.calendar)
}

// ParseEvent parses the text of one VEVENT component.
func ParseEvent(text string) (Event, error) {
	return decodeText(text, nameEvent, defaultDecoder.event)
}

// ParseTodo parses the text of one VTODO component.
func ParseTodo(text string) (Todo, error) {
	return decodeText(text, nameTodo, defaultDecoder.todo)
}

// ParseJournal parses the text of one VJOURNAL component.
func ParseJournal(text string) (Journal, error) {
	return decodeText(text, nameJournal, defaultDecoder.journal)
}

// ParseFreeBusy parses the text of one VFREEBUSY component.
func ParseFreeBusy(text string) (FreeBusy, error) {
	return decodeText(text, nameFreeBusy, defaultDecoder.freeBusy)
}

// ParseAlarm parses the text of one VALARM component.
func ParseAlarm(text string) (Alarm, error) {
	return decodeText(text, nameAlarm, defaultDecoder.alarm)
}

// ParseTimezone parses the text of one VTIMEZONE component.
func ParseTimezone(text string) (Timezone, error) {
	return decodeText(text, nameTimezone, defaultDecoder.timezone)
}

func decodeText[T any](text, name string, build func(*rawComponent) (T, error)) (T, error) {
	var zero T
	raw, err := parseDocument(text)
	if err != nil {
		return zero, err
	}
	if raw.name != name {
		return zero, &GrammarError{Msg: fmt.Sprintf("found BEGIN:%s, expected BEGIN:%s", raw.name, name)}
	}
	return build(raw)
}

// setter stores one content line into a field of T.
type setter[T any] func(c *T, l ContentLine) error

// props is the static property table of one component type.
type props[T any] struct {
	setters   map[string]setter[T]
	required  []string
	exclusive [][2]string
	ext       func(*T) *Extensions
}

// one sets a mandatory scalar. A repeated line overwrites it.
func one[T, V any](conv func(ContentLine) (V, error), field func(*T) *V) setter[T] {
	return func(c *T, l ContentLine) error {
		v, err := conv(l)
		if err != nil {
			return valueErr(l.Key, l.Value, err)
		}
		*field(c) = v
		return nil
	}
}

// opt sets an optional scalar. A repeated line overwrites it.
func opt[T, V any](conv func(ContentLine) (V, error), field func(*T) *mo.Option[V]) setter[T] {
	return func(c *T, l ContentLine) error {
		v, err := conv(l)
		if err != nil {
			return valueErr(l.Key, l.Value, err)
		}
		*field(c) = mo.Some(v)
		return nil
	}
}

// many appends one element per line.
func many[T, V any](conv func(ContentLine) (V, error), field func(*T) *[]V) setter[T] {
	return func(c *T, l ContentLine) error {
		v, err := conv(l)
		if err != nil {
			return valueErr(l.Key, l.Value, err)
		}
		*field(c) = append(*field(c), v)
		return nil
	}
}

// joined appends every comma separated element of each line.
func joined[T, V any](conv func(ContentLine) ([]V, error), field func(*T) *[]V) setter[T] {
	return func(c *T, l ContentLine) error {
		v, err := conv(l)
		if err != nil {
			return valueErr(l.Key, l.Value, err)
		}
		*field(c) = append(*field(c), v...)
		return nil
	}
}

// assemble routes the lines of raw into c and validates the result.
func assemble[T any](d decoder, p *props[T], raw *rawComponent, c *T) error {
	seen := make(map[string]bool, len(raw.lines))
	for _, l := range raw.lines {
		set, ok := p.setters[l.Key]
		if !ok {
			d.logger.Debug("keeping unknown property", "component", raw.name, "property", l.Key)
			p.ext(c).keep(l)
			continue
		}
		if err := set(c, l); err != nil {
			return err
		}
		seen[l.Key] = true
	}

	for _, key := range p.required {
		if !seen[key] {
			return &MissingPropertyError{Component: raw.name, Property: key}
		}
	}
	for _, pair := range p.exclusive {
		if seen[pair[0]] && seen[pair[1]] {
			return valueErr(pair[1], "", fmt.Errorf("either %q or %q may appear, not both", pair[0], pair[1]))
		}
	}
	return nil
}

// skip handles a nested component that is not valid inside parent.
func (d decoder) skip(parent, child *rawComponent) error {
	if d.strict {
		return &GrammarError{Msg: fmt.Sprintf("unexpected BEGIN:%s in %s", child.name, parent.name)}
	}
	d.logger.Debug("skipping component", "component", child.name, "parent", parent.name)
	return nil
}

var calendarProps = &props[Calendar]{
	setters: map[string]setter[Calendar]{
		"PRODID":   one(toText, func(c *Calendar) *Text { return &c.ProdID }),
		"VERSION":  one(toText, func(c *Calendar) *Text { return &c.Version }),
		"CALSCALE": opt(toText, func(c *Calendar) *mo.Option[Text] { return &c.CalScale }),
		"METHOD":   opt(toText, func(c *Calendar) *mo.Option[Text] { return &c.Method }),
	},
	required: []string{"PRODID", "VERSION"},
	ext:      func(c *Calendar) *Extensions { return &c.Extensions },
}

func (d decoder) calendar(raw *rawComponent) (Calendar, error) {
	var c Calendar
	if err := assemble(d, calendarProps, raw, &c); err != nil {
		return Calendar{}, err
	}

	for _, child := range raw.children {
		var err error
		switch child.name {
		case nameTimezone:
			var tz Timezone
			if tz, err = d.timezone(child); err == nil {
				c.Timezones = append(c.Timezones, tz)
			}
		case nameEvent:
			var ev Event
			if ev, err = d.event(child); err == nil {
				c.Events = append(c.Events, ev)
			}
		case nameTodo:
			var td Todo
			if td, err = d.todo(child); err == nil {
				c.Todos = append(c.Todos, td)
			}
		case nameJournal:
			var j Journal
			if j, err = d.journal(child); err == nil {
				c.Journals = append(c.Journals, j)
			}
		case nameFreeBusy:
			var fb FreeBusy
			if fb, err = d.freeBusy(child); err == nil {
				c.FreeBusys = append(c.FreeBusys, fb)
			}
		default:
			err = d.skip(raw, child)
		}
		if err != nil {
			return Calendar{}, err
		}
	}
	return c, nil
}

var eventProps = &props[Event]{
	setters: map[string]setter[Event]{
		"DTSTAMP":        one(toDateTime, func(e *Event) *DateTime { return &e.DTStamp }),
		"UID":            one(toText, func(e *Event) *Text { return &e.UID }),
		"DTSTART":        opt(toDate, func(e *Event) *mo.Option[Date] { return &e.DTStart }),
		"CLASS":          opt(toClass, func(e *Event) *mo.Option[Class] { return &e.Class }),
		"CREATED":        opt(toDateTime, func(e *Event) *mo.Option[DateTime] { return &e.Created }),
		"DESCRIPTION":    opt(toText, func(e *Event) *mo.Option[Text] { return &e.Description }),
		"GEO":            opt(toGeo, func(e *Event) *mo.Option[Geo] { return &e.Geo }),
		"LAST-MODIFIED":  opt(toDateTime, func(e *Event) *mo.Option[DateTime] { return &e.LastModified }),
		"LOCATION":       opt(toText, func(e *Event) *mo.Option[Text] { return &e.Location }),
		"ORGANIZER":      opt(toURI, func(e *Event) *mo.Option[URI] { return &e.Organizer }),
		"PRIORITY":       opt(toPriority, func(e *Event) *mo.Option[int] { return &e.Priority }),
		"SEQUENCE":       opt(toCounter, func(e *Event) *mo.Option[int] { return &e.Sequence }),
		"STATUS":         opt(toStatus, func(e *Event) *mo.Option[Status] { return &e.Status }),
		"SUMMARY":        opt(toText, func(e *Event) *mo.Option[Text] { return &e.Summary }),
		"TRANSP":         opt(toTransparency, func(e *Event) *mo.Option[Transparency] { return &e.Transp }),
		"URL":            opt(toURI, func(e *Event) *mo.Option[URI] { return &e.URL }),
		"RECURRENCE-ID":  opt(toDate, func(e *Event) *mo.Option[Date] { return &e.RecurrenceID }),
		"RRULE":          opt(toRecur, func(e *Event) *mo.Option[Recur] { return &e.RRule }),
		"DTEND":          opt(toDate, func(e *Event) *mo.Option[Date] { return &e.DTEnd }),
		"DURATION":       opt(toDuration, func(e *Event) *mo.Option[time.Duration] { return &e.Duration }),
		"ATTACH":         many(toText, func(e *Event) *[]Text { return &e.Attach }),
		"ATTENDEE":       many(toURI, func(e *Event) *[]URI { return &e.Attendee }),
		"CATEGORIES":     joined(toTextList, func(e *Event) *[]string { return &e.Categories }),
		"COMMENT":        many(toText, func(e *Event) *[]Text { return &e.Comment }),
		"CONTACT":        many(toText, func(e *Event) *[]Text { return &e.Contact }),
		"EXDATE":         joined(toDateList, func(e *Event) *[]Date { return &e.ExDate }),
		"REQUEST-STATUS": many(toRequestStatus, func(e *Event) *[]RequestStatus { return &e.RequestStatus }),
		"RELATED-TO":     many(toText, func(e *Event) *[]Text { return &e.RelatedTo }),
		"RESOURCES":      joined(toTextList, func(e *Event) *[]string { return &e.Resources }),
		"RDATE":          many(toRDate, func(e *Event) *[]RDate { return &e.RDate }),
	},
	required:  []string{"DTSTAMP", "UID"},
	exclusive: [][2]string{{"DTEND", "DURATION"}},
	ext:       func(e *Event) *Extensions { return &e.Extensions },
}

func (d decoder) event(raw *rawComponent) (Event, error) {
	var e Event
	if err := assemble(d, eventProps, raw, &e); err != nil {
		return Event{}, err
	}

	alarms, err := d.alarms(raw)
	if err != nil {
		return Event{}, err
	}
	e.Alarms = alarms
	return e, nil
}

var todoProps = &props[Todo]{
	setters: map[string]setter[Todo]{
		"DTSTAMP":          one(toDateTime, func(t *Todo) *DateTime { return &t.DTStamp }),
		"UID":              one(toText, func(t *Todo) *Text { return &t.UID }),
		"CLASS":            opt(toClass, func(t *Todo) *mo.Option[Class] { return &t.Class }),
		"COMPLETED":        opt(toDateTime, func(t *Todo) *mo.Option[DateTime] { return &t.Completed }),
		"CREATED":          opt(toDateTime, func(t *Todo) *mo.Option[DateTime] { return &t.Created }),
		"DESCRIPTION":      opt(toText, func(t *Todo) *mo.Option[Text] { return &t.Description }),
		"DTSTART":          opt(toDate, func(t *Todo) *mo.Option[Date] { return &t.DTStart }),
		"GEO":              opt(toGeo, func(t *Todo) *mo.Option[Geo] { return &t.Geo }),
		"LAST-MODIFIED":    opt(toDateTime, func(t *Todo) *mo.Option[DateTime] { return &t.LastModified }),
		"LOCATION":         opt(toText, func(t *Todo) *mo.Option[Text] { return &t.Location }),
		"ORGANIZER":        opt(toURI, func(t *Todo) *mo.Option[URI] { return &t.Organizer }),
		"PERCENT-COMPLETE": opt(toPercent, func(t *Todo) *mo.Option[int] { return &t.PercentComplete }),
		"PRIORITY":         opt(toPriority, func(t *Todo) *mo.Option[int] { return &t.Priority }),
		"RECURRENCE-ID":    opt(toDate, func(t *Todo) *mo.Option[Date] { return &t.RecurrenceID }),
		"SEQUENCE":         opt(toCounter, func(t *Todo) *mo.Option[int] { return &t.Sequence }),
		"STATUS":           opt(toStatus, func(t *Todo) *mo.Option[Status] { return &t.Status }),
		"SUMMARY":          opt(toText, func(t *Todo) *mo.Option[Text] { return &t.Summary }),
		"URL":              opt(toURI, func(t *Todo) *mo.Option[URI] { return &t.URL }),
		"RRULE":            opt(toRecur, func(t *Todo) *mo.Option[Recur] { return &t.RRule }),
		"DUE":              opt(toDate, func(t *Todo) *mo.Option[Date] { return &t.Due }),
		"DURATION":         opt(toDuration, func(t *Todo) *mo.Option[time.Duration] { return &t.Duration }),
		"ATTACH":           many(toText, func(t *Todo) *[]Text { return &t.Attach }),
		"ATTENDEE":         many(toURI, func(t *Todo) *[]URI { return &t.Attendee }),
		"CATEGORIES":       joined(toTextList, func(t *Todo) *[]string { return &t.Categories }),
		"COMMENT":          many(toText, func(t *Todo) *[]Text { return &t.Comment }),
		"CONTACT":          many(toText, func(t *Todo) *[]Text { return &t.Contact }),
		"EXDATE":           joined(toDateList, func(t *Todo) *[]Date { return &t.ExDate }),
		"REQUEST-STATUS":   many(toRequestStatus, func(t *Todo) *[]RequestStatus { return &t.RequestStatus }),
		"RELATED-TO":       many(toText, func(t *Todo) *[]Text { return &t.RelatedTo }),
		"RESOURCES":        joined(toTextList, func(t *Todo) *[]string { return &t.Resources }),
		"RDATE":            many(toRDate, func(t *Todo) *[]RDate { return &t.RDate }),
	},
	required:  []string{"DTSTAMP", "UID"},
	exclusive: [][2]string{{"DUE", "DURATION"}},
	ext:       func(t *Todo) *Extensions { return &t.Extensions },
}

func (d decoder) todo(raw *rawComponent) (Todo, error) {
	var t Todo
	if err := assemble(d, todoProps, raw, &t); err != nil {
		return Todo{}, err
	}

	alarms, err := d.alarms(raw)
	if err != nil {
		return Todo{}, err
	}
	t.Alarms = alarms
	return t, nil
}

var journalProps = &props[Journal]{
	setters: map[string]setter[Journal]{
		"DTSTAMP":        one(toDateTime, func(j *Journal) *DateTime { return &j.DTStamp }),
		"UID":            one(toText, func(j *Journal) *Text { return &j.UID }),
		"CLASS":          opt(toClass, func(j *Journal) *mo.Option[Class] { return &j.Class }),
		"CREATED":        opt(toDateTime, func(j *Journal) *mo.Option[DateTime] { return &j.Created }),
		"DTSTART":        opt(toDate, func(j *Journal) *mo.Option[Date] { return &j.DTStart }),
		"LAST-MODIFIED":  opt(toDateTime, func(j *Journal) *mo.Option[DateTime] { return &j.LastModified }),
		"ORGANIZER":      opt(toURI, func(j *Journal) *mo.Option[URI] { return &j.Organizer }),
		"RECURRENCE-ID":  opt(toDate, func(j *Journal) *mo.Option[Date] { return &j.RecurrenceID }),
		"SEQUENCE":       opt(toCounter, func(j *Journal) *mo.Option[int] { return &j.Sequence }),
		"STATUS":         opt(toStatus, func(j *Journal) *mo.Option[Status] { return &j.Status }),
		"SUMMARY":        opt(toText, func(j *Journal) *mo.Option[Text] { return &j.Summary }),
		"URL":            opt(toURI, func(j *Journal) *mo.Option[URI] { return &j.URL }),
		"RRULE":          opt(toRecur, func(j *Journal) *mo.Option[Recur] { return &j.RRule }),
		"ATTACH":         many(toText, func(j *Journal) *[]Text { return &j.Attach }),
		"ATTENDEE":       many(toURI, func(j *Journal) *[]URI { return &j.Attendee }),
		"CATEGORIES":     joined(toTextList, func(j *Journal) *[]string { return &j.Categories }),
		"COMMENT":        many(toText, func(j *Journal) *[]Text { return &j.Comment }),
		"CONTACT":        many(toText, func(j *Journal) *[]Text { return &j.Contact }),
		"DESCRIPTION":    many(toText, func(j *Journal) *[]Text { return &j.Description }),
		"EXDATE":         joined(toDateList, func(j *Journal) *[]Date { return &j.ExDate }),
		"RELATED-TO":     many(toText, func(j *Journal) *[]Text { return &j.RelatedTo }),
		"RDATE":          many(toRDate, func(j *Journal) *[]RDate { return &j.RDate }),
		"REQUEST-STATUS": many(toRequestStatus, func(j *Journal) *[]RequestStatus { return &j.RequestStatus }),
	},
	required: []string{"DTSTAMP", "UID"},
	ext:      func(j *Journal) *Extensions { return &j.Extensions },
}

func (d decoder) journal(raw *rawComponent) (Journal, error) {
	var j Journal
	if err := assemble(d, journalProps, raw, &j); err != nil {
		return Journal{}, err
	}
	for _, child := range raw.children {
		if err := d.skip(raw, child); err != nil {
			return Journal{}, err
		}
	}
	return j, nil
}

var freeBusyProps = &props[FreeBusy]{
	setters: map[string]setter[FreeBusy]{
		"DTSTAMP":        one(toDateTime, func(f *FreeBusy) *DateTime { return &f.DTStamp }),
		"UID":            one(toText, func(f *FreeBusy) *Text { return &f.UID }),
		"CONTACT":        opt(toText, func(f *FreeBusy) *mo.Option[Text] { return &f.Contact }),
		"DTSTART":        opt(toDate, func(f *FreeBusy) *mo.Option[Date] { return &f.DTStart }),
		"DTEND":          opt(toDate, func(f *FreeBusy) *mo.Option[Date] { return &f.DTEnd }),
		"ORGANIZER":      opt(toURI, func(f *FreeBusy) *mo.Option[URI] { return &f.Organizer }),
		"URL":            opt(toURI, func(f *FreeBusy) *mo.Option[URI] { return &f.URL }),
		"ATTENDEE":       many(toURI, func(f *FreeBusy) *[]URI { return &f.Attendee }),
		"COMMENT":        many(toText, func(f *FreeBusy) *[]Text { return &f.Comment }),
		"FREEBUSY":       joined(toPeriodList, func(f *FreeBusy) *[]Period { return &f.FreeBusy }),
		"REQUEST-STATUS": many(toRequestStatus, func(f *FreeBusy) *[]RequestStatus { return &f.RequestStatus }),
	},
	required: []string{"DTSTAMP", "UID"},
	ext:      func(f *FreeBusy) *Extensions { return &f.Extensions },
}

func (d decoder) freeBusy(raw *rawComponent) (FreeBusy, error) {
	var f FreeBusy
	if err := assemble(d, freeBusyProps, raw, &f); err != nil {
		return FreeBusy{}, err
	}
	for _, child := range raw.children {
		if err := d.skip(raw, child); err != nil {
			return FreeBusy{}, err
		}
	}
	return f, nil
}

var timezoneProps = &props[Timezone]{
	setters: map[string]setter[Timezone]{
		"TZID":          one(toText, func(tz *Timezone) *Text { return &tz.TZID }),
		"LAST-MODIFIED": opt(toDateTime, func(tz *Timezone) *mo.Option[DateTime] { return &tz.LastModified }),
		"TZURL":         opt(toURI, func(tz *Timezone) *mo.Option[URI] { return &tz.TZURL }),
	},
	required: []string{"TZID"},
	ext:      func(tz *Timezone) *Extensions { return &tz.Extensions },
}

var timezoneRuleProps = &props[TimezoneRule]{
	setters: map[string]setter[TimezoneRule]{
		"DTSTART":      one(toDateTime, func(r *TimezoneRule) *DateTime { return &r.DTStart }),
		"TZOFFSETTO":   one(toUTCOffset, func(r *TimezoneRule) *UTCOffset { return &r.TZOffsetTo }),
		"TZOFFSETFROM": one(toUTCOffset, func(r *TimezoneRule) *UTCOffset { return &r.TZOffsetFrom }),
		"RRULE":        opt(toRecur, func(r *TimezoneRule) *mo.Option[Recur] { return &r.RRule }),
		"COMMENT":      many(toText, func(r *TimezoneRule) *[]Text { return &r.Comment }),
		"RDATE":        many(toRDate, func(r *TimezoneRule) *[]RDate { return &r.RDate }),
		"TZNAME":       many(toText, func(r *TimezoneRule) *[]Text { return &r.TZName }),
	},
	required: []string{"DTSTART", "TZOFFSETTO", "TZOFFSETFROM"},
	ext:      func(r *TimezoneRule) *Extensions { return &r.Extensions },
}

func (d decoder) timezone(raw *rawComponent) (Timezone, error) {
	var tz Timezone
	if err := assemble(d, timezoneProps, raw, &tz); err != nil {
		return Timezone{}, err
	}

	for _, child := range raw.children {
		switch child.name {
		case nameStandard, nameDaylight:
			var rule TimezoneRule
			if err := assemble(d, timezoneRuleProps, child, &rule); err != nil {
				return Timezone{}, err
			}
			if child.name == nameStandard {
				tz.Standard = append(tz.Standard, rule)
			} else {
				tz.Daylight = append(tz.Daylight, rule)
			}
		default:
			if err := d.skip(raw, child); err != nil {
				return Timezone{}, err
			}
		}
	}
	return tz, nil
}

// alarms assembles the VALARM children of an event or to-do.
func (d decoder) alarms(raw *rawComponent) ([]Alarm, error) {
	var alarms []Alarm
	for _, child := range raw.children {
		if child.name != nameAlarm {
			if err := d.skip(raw, child); err != nil {
				return nil, err
			}
			continue
		}
		a, err := d.alarm(child)
		if err != nil {
			return nil, err
		}
		alarms = append(alarms, a)
	}
	return alarms, nil
}

// action accepts the ACTION line of an alarm whose kind is already known.
func action[T any](c *T, l ContentLine) error { return nil }

var audioAlarmProps = &props[AudioAlarm]{
	setters: map[string]setter[AudioAlarm]{
		"ACTION":   action[AudioAlarm],
		"TRIGGER":  one(toTrigger, func(a *AudioAlarm) *Trigger { return &a.Trigger }),
		"DURATION": opt(toDuration, func(a *AudioAlarm) *mo.Option[time.Duration] { return &a.Duration }),
		"REPEAT":   opt(toCounter, func(a *AudioAlarm) *mo.Option[int] { return &a.Repeat }),
		"ATTACH":   many(toText, func(a *AudioAlarm) *[]Text { return &a.Attach }),
	},
	required: []string{"ACTION", "TRIGGER"},
	ext:      func(a *AudioAlarm) *Extensions { return &a.Extensions },
}

var displayAlarmProps = &props[DisplayAlarm]{
	setters: map[string]setter[DisplayAlarm]{
		"ACTION":      action[DisplayAlarm],
		"TRIGGER":     one(toTrigger, func(a *DisplayAlarm) *Trigger { return &a.Trigger }),
		"DESCRIPTION": one(toText, func(a *DisplayAlarm) *Text { return &a.Description }),
		"DURATION":    opt(toDuration, func(a *DisplayAlarm) *mo.Option[time.Duration] { return &a.Duration }),
		"REPEAT":      opt(toCounter, func(a *DisplayAlarm) *mo.Option[int] { return &a.Repeat }),
	},
	required: []string{"ACTION", "TRIGGER", "DESCRIPTION"},
	ext:      func(a *DisplayAlarm) *Extensions { return &a.Extensions },
}

var emailAlarmProps = &props[EmailAlarm]{
	setters: map[string]setter[EmailAlarm]{
		"ACTION":      action[EmailAlarm],
		"TRIGGER":     one(toTrigger, func(a *EmailAlarm) *Trigger { return &a.Trigger }),
		"DESCRIPTION": one(toText, func(a *EmailAlarm) *Text { return &a.Description }),
		"SUMMARY":     one(toText, func(a *EmailAlarm) *Text { return &a.Summary }),
		"ATTENDEE":    many(toURI, func(a *EmailAlarm) *[]URI { return &a.Attendee }),
		"DURATION":    opt(toDuration, func(a *EmailAlarm) *mo.Option[time.Duration] { return &a.Duration }),
		"REPEAT":      opt(toCounter, func(a *EmailAlarm) *mo.Option[int] { return &a.Repeat }),
		"ATTACH":      many(toText, func(a *EmailAlarm) *[]Text { return &a.Attach }),
	},
	required: []string{"ACTION", "TRIGGER", "DESCRIPTION", "SUMMARY"},
	ext:      func(a *EmailAlarm) *Extensions { return &a.Extensions },
}

// alarm picks the alarm kind from the last ACTION line.
func (d decoder) alarm(raw *rawComponent) (Alarm, error) {
	kind, found := "", false
	for _, l := range raw.lines {
		if l.Key == "ACTION" {
			kind, found = l.Value, true
		}
	}
	if !found {
		return nil, &MissingPropertyError{Component: raw.name, Property: "ACTION"}
	}

	for _, child := range raw.children {
		if err := d.skip(raw, child); err != nil {
			return nil, err
		}
	}

	switch kind {
	case actionAudio:
		return assembleAlarm(d, audioAlarmProps, raw)
	case actionDisplay:
		return assembleAlarm(d, displayAlarmProps, raw)
	case actionEmail:
		return assembleAlarm(d, emailAlarmProps, raw)
	}
	return nil, &DomainError{Kind: "alarm action", Value: kind}
}

func assembleAlarm[A Alarm](d decoder, p *props[A], raw *rawComponent) (Alarm, error) {
	var a A
	if err := assemble(d, p, raw, &a); err != nil {
		return nil, err
	}
	return a, nil
}
