// Package ikal implements an iCalendar parser and formatter.
//
// iCalendar is defined in RFC 5545. Parse reads a VCALENDAR stream into
// typed components, Format writes them back, and Recurrence expands
// recurring events, to-dos and journals into their occurrences.
package ikal

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// ProductID is the PRODID written by NewCalendar.
const ProductID = "-//kaldav//ikal//EN"

// A Component is one of the typed iCalendar components.
type Component interface {
	// Name returns the envelope name, e.g. "VEVENT".
	Name() string

	encode(e *encoder)
}

// Extensions holds the properties a component does not recognize,
// keyed by property name. They are written back verbatim after the
// known properties.
type Extensions struct {
	XProps    map[string]ContentLine // names starting with "X-"
	IANAProps map[string]ContentLine
}

func (x *Extensions) keep(l ContentLine) {
	m := &x.IANAProps
	if isXName(l.Key) {
		m = &x.XProps
	}
	if *m == nil {
		*m = make(map[string]ContentLine)
	}
	(*m)[l.Key] = l
}

func isXName(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "X-")
}

// A Calendar represents the whole iCalendar
type Calendar struct {
	ProdID    Text
	Version   Text
	CalScale  mo.Option[Text]
	Method    mo.Option[Text]
	Timezones []Timezone
	Events    []Event
	Todos     []Todo
	Journals  []Journal
	FreeBusys []FreeBusy
	Extensions
}

// An Event represent a VEVENT component in an iCalendar
type Event struct {
	DTStamp       DateTime
	UID           Text
	DTStart       mo.Option[Date]
	Class         mo.Option[Class]
	Created       mo.Option[DateTime]
	Description   mo.Option[Text]
	Geo           mo.Option[Geo]
	LastModified  mo.Option[DateTime]
	Location      mo.Option[Text]
	Organizer     mo.Option[URI]
	Priority      mo.Option[int]
	Sequence      mo.Option[int]
	Status        mo.Option[Status]
	Summary       mo.Option[Text]
	Transp        mo.Option[Transparency]
	URL           mo.Option[URI]
	RecurrenceID  mo.Option[Date]
	RRule         mo.Option[Recur]
	DTEnd         mo.Option[Date]
	Duration      mo.Option[time.Duration]
	Attach        []Text
	Attendee      []URI
	Categories    []string
	Comment       []Text
	Contact       []Text
	ExDate        []Date
	RequestStatus []RequestStatus
	RelatedTo     []Text
	Resources     []string
	RDate         []RDate
	Alarms        []Alarm
	Extensions
}

// A Todo represent a VTODO component in an iCalendar
type Todo struct {
	DTStamp         DateTime
	UID             Text
	Class           mo.Option[Class]
	Completed       mo.Option[DateTime]
	Created         mo.Option[DateTime]
	Description     mo.Option[Text]
	DTStart         mo.Option[Date]
	Geo             mo.Option[Geo]
	LastModified    mo.Option[DateTime]
	Location        mo.Option[Text]
	Organizer       mo.Option[URI]
	PercentComplete mo.Option[int]
	Priority        mo.Option[int]
	RecurrenceID    mo.Option[Date]
	Sequence        mo.Option[int]
	Status          mo.Option[Status]
	Summary         mo.Option[Text]
	URL             mo.Option[URI]
	RRule           mo.Option[Recur]
	Due             mo.Option[Date]
	Duration        mo.Option[time.Duration]
	Attach          []Text
	Attendee        []URI
	Categories      []string
	Comment         []Text
	Contact         []Text
	ExDate          []Date
	RequestStatus   []RequestStatus
	RelatedTo       []Text
	Resources       []string
	RDate           []RDate
	Alarms          []Alarm
	Extensions
}

// A Journal represent a VJOURNAL component in an iCalendar
type Journal struct {
	DTStamp       DateTime
	UID           Text
	Class         mo.Option[Class]
	Created       mo.Option[DateTime]
	DTStart       mo.Option[Date]
	LastModified  mo.Option[DateTime]
	Organizer     mo.Option[URI]
	RecurrenceID  mo.Option[Date]
	Sequence      mo.Option[int]
	Status        mo.Option[Status]
	Summary       mo.Option[Text]
	URL           mo.Option[URI]
	RRule         mo.Option[Recur]
	Attach        []Text
	Attendee      []URI
	Categories    []string
	Comment       []Text
	Contact       []Text
	Description   []Text
	ExDate        []Date
	RelatedTo     []Text
	RDate         []RDate
	RequestStatus []RequestStatus
	Extensions
}

// A FreeBusy represent a VFREEBUSY component in an iCalendar
type FreeBusy struct {
	DTStamp       DateTime
	UID           Text
	Contact       mo.Option[Text]
	DTStart       mo.Option[Date]
	DTEnd         mo.Option[Date]
	Organizer     mo.Option[URI]
	URL           mo.Option[URI]
	Attendee      []URI
	Comment       []Text
	FreeBusy      []Period
	RequestStatus []RequestStatus
	Extensions
}

// A Timezone represent a VTIMEZONE component. Its rules are stored as
// parsed and are never used to convert times.
type Timezone struct {
	TZID         Text
	LastModified mo.Option[DateTime]
	TZURL        mo.Option[URI]
	Standard     []TimezoneRule
	Daylight     []TimezoneRule
	Extensions
}

// A TimezoneRule is a STANDARD or DAYLIGHT sub-component of a Timezone.
type TimezoneRule struct {
	DTStart      DateTime
	TZOffsetTo   UTCOffset
	TZOffsetFrom UTCOffset
	RRule        mo.Option[Recur]
	Comment      []Text
	RDate        []RDate
	TZName       []Text
	Extensions
}

// An Alarm represent a VALARM component: AudioAlarm, DisplayAlarm or
// EmailAlarm.
type Alarm interface {
	Component

	// Fires returns the alarm's trigger.
	Fires() Trigger

	alarm()
}

// An AudioAlarm plays a sound.
type AudioAlarm struct {
	Trigger  Trigger
	Duration mo.Option[time.Duration]
	Repeat   mo.Option[int]
	Attach   []Text
	Extensions
}

// A DisplayAlarm shows a message.
type DisplayAlarm struct {
	Trigger     Trigger
	Description Text
	Duration    mo.Option[time.Duration]
	Repeat      mo.Option[int]
	Extensions
}

// An EmailAlarm sends an email.
type EmailAlarm struct {
	Trigger     Trigger
	Description Text
	Summary     Text
	Attendee    []URI
	Duration    mo.Option[time.Duration]
	Repeat      mo.Option[int]
	Attach      []Text
	Extensions
}

const (
	actionAudio   = "AUDIO"
	actionDisplay = "DISPLAY"
	actionEmail   = "EMAIL"
)

func (a AudioAlarm) Fires() Trigger   { return a.Trigger }
func (a DisplayAlarm) Fires() Trigger { return a.Trigger }
func (a EmailAlarm) Fires() Trigger   { return a.Trigger }

func (AudioAlarm) alarm()   {}
func (DisplayAlarm) alarm() {}
func (EmailAlarm) alarm()   {}

const (
	nameCalendar = "VCALENDAR"
	nameEvent    = "VEVENT"
	nameTodo     = "VTODO"
	nameJournal  = "VJOURNAL"
	nameFreeBusy = "VFREEBUSY"
	nameAlarm    = "VALARM"
	nameTimezone = "VTIMEZONE"
	nameStandard = "STANDARD"
	nameDaylight = "DAYLIGHT"
)

func (Calendar) Name() string     { return nameCalendar }
func (Event) Name() string        { return nameEvent }
func (Todo) Name() string         { return nameTodo }
func (Journal) Name() string      { return nameJournal }
func (FreeBusy) Name() string     { return nameFreeBusy }
func (Timezone) Name() string     { return nameTimezone }
func (AudioAlarm) Name() string   { return nameAlarm }
func (DisplayAlarm) Name() string { return nameAlarm }
func (EmailAlarm) Name() string   { return nameAlarm }

// NewCalendar creates an empty version 2.0 Calendar
func NewCalendar() Calendar {
	return Calendar{
		ProdID:   NewText(ProductID),
		Version:  NewText("2.0"),
		CalScale: mo.Some(NewText("GREGORIAN")),
	}
}

// stamp returns a fresh UID and the current UTC time.
func stamp() (Text, DateTime) {
	return NewText(uuid.NewString()), UTCTime(time.Now())
}

// NewEvent creates an Event with a random UID and DTSTAMP set to now
func NewEvent() Event {
	uid, now := stamp()
	return Event{UID: uid, DTStamp: now}
}

// NewTodo creates a Todo with a random UID and DTSTAMP set to now
func NewTodo() Todo {
	uid, now := stamp()
	return Todo{UID: uid, DTStamp: now}
}

// NewJournal creates a Journal with a random UID and DTSTAMP set to now
func NewJournal() Journal {
	uid, now := stamp()
	return Journal{UID: uid, DTStamp: now}
}

// NewFreeBusy creates a FreeBusy with a random UID and DTSTAMP set to now
func NewFreeBusy() FreeBusy {
	uid, now := stamp()
	return FreeBusy{UID: uid, DTStamp: now}
}
