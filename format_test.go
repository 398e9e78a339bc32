package ikal

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	event := NewEvent()
	event.UID = NewText("123@example.org")
	event.DTStamp = UTCTime(time.Date(2020, 2, 11, 0, 0, 0, 0, time.UTC))
	event.Summary = mo.Some(NewText("Test event"))
	event.Categories = []string{"MEETING", "WORK, MISC"}
	event.Alarms = []Alarm{DisplayAlarm{
		Trigger:     RelativeTrigger{Offset: -15 * time.Minute},
		Description: NewText("Reminder"),
	}}

	cal := NewCalendar()
	cal.Events = []Event{event}
	cal.ProdID = NewText("-//ABC Corporation//NONSGML My Product//EN")

	want := `BEGIN:VCALENDAR
PRODID:-//ABC Corporation//NONSGML My Product//EN
VERSION:2.0
CALSCALE:GREGORIAN
BEGIN:VEVENT
DTSTAMP:20200211T000000Z
UID:123@example.org
SUMMARY:Test event
CATEGORIES:MEETING,WORK\, MISC
BEGIN:VALARM
ACTION:DISPLAY
TRIGGER:-PT15M
DESCRIPTION:Reminder
END:VALARM
END:VEVENT
END:VCALENDAR
`
	want = strings.Replace(want, "\n", "\r\n", -1)

	var buf bytes.Buffer
	if err := Format(&buf, cal); err != nil {
		t.Fatalf("Format() = %v", err)
	}

	if s := buf.String(); s != want {
		t.Errorf("Format() = \n%v\n but want \n%v", s, want)
	}
}

func TestFormatBastilleDay(t *testing.T) {
	text := readFixture(t, "fixtures/bastille.ics")

	ev, err := ParseEvent(text)
	require.NoError(t, err)

	assert.Equal(t, "19970610T172345Z", ev.DTStamp.String())
	assert.Equal(t, "19970610T172345Z-AF23B2@example.com", ev.UID.Value)
	assert.Equal(t, "19970714T170000Z", ev.DTStart.MustGet().String())
	assert.Equal(t, "Bastille Day Party", ev.Summary.MustGet().Value)
	assert.Empty(t, ev.Attendee)
	assert.Empty(t, ev.Categories)
	assert.Empty(t, ev.ExDate)
	assert.Empty(t, ev.RDate)
	assert.Empty(t, ev.Alarms)
	assert.Empty(t, ev.XProps)

	out, err := Marshal(ev)
	require.NoError(t, err)
	assert.Equal(t, text, string(out))
}

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"short", "SUMMARY:short"},
		{"exact", "DESCRIPTION:" + strings.Repeat("a", maxLineOctets-len("DESCRIPTION:"))},
		{"one over", "DESCRIPTION:" + strings.Repeat("a", maxLineOctets-len("DESCRIPTION:")+1)},
		{"long", "DESCRIPTION:" + strings.Repeat("0123456789", 30)},
		{"multibyte", "SUMMARY:" + strings.Repeat("日本語のテキスト", 12)},
		{"emoji", "SUMMARY:" + strings.Repeat("🎉 party ", 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folded := fold(tt.line)
			for _, physical := range strings.Split(folded, crlf) {
				assert.LessOrEqual(t, len(physical), maxLineOctets)
				assert.True(t, utf8.ValidString(physical), "split inside a UTF-8 sequence: %q", physical)
			}
			assert.Equal(t, tt.line, unfold(folded))
		})
	}
}

func TestFormatFoldsLongLines(t *testing.T) {
	ev := NewEvent()
	ev.Description = mo.Some(NewText(strings.Repeat("Networld+Interop Conference and Exhibit; Atlanta, Georgia\n", 5)))

	out, err := Marshal(ev)
	require.NoError(t, err)

	for _, physical := range strings.Split(string(out), crlf) {
		assert.LessOrEqual(t, len(physical), maxLineOctets)
	}

	back, err := ParseEvent(string(out))
	require.NoError(t, err)
	assert.Equal(t, ev.Description, back.Description)
}

func TestEncodeInvalidValue(t *testing.T) {
	ev := NewEvent()
	ev.Summary = mo.Some(NewText("will not be written"))
	ev.Status = mo.Some(Status("MAYBE"))

	var buf bytes.Buffer
	err := NewEncoder(&buf).Encode(ev)

	var derr *DomainError
	require.True(t, errors.As(err, &derr), "got %v", err)
	assert.Equal(t, "status", derr.Kind)
	assert.Zero(t, buf.Len())

	ev.Status = mo.None[Status]()
	ev.Transp = mo.Some(Transparency("CLOUDY"))
	_, err = Marshal(ev)
	assert.True(t, errors.As(err, &derr))

	assert.Error(t, Format(&buf, nil))
}

func TestFormatParams(t *testing.T) {
	ev := NewEvent()
	ev.UID = NewText("params@example.com")
	ev.DTStamp = UTCTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ev.DTStart = mo.Some(DateOf(FloatingTime(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)).WithTZID("Europe/Paris")))
	ev.DTEnd = mo.Some(NewDate(2024, 1, 3))
	ev.Organizer = mo.Some(URI{Params: Params{"CN": "John Smith"}, Value: "mailto:jsmith@example.com"})
	ev.Attendee = []URI{{Params: Params{"ROLE": "REQ-PARTICIPANT", "DELEGATED-FROM": "mailto:a@example.com"}, Value: "mailto:b@example.com"}}
	ev.Geo = mo.Some(Geo{Lat: 48.8566, Lon: 2.3522})

	want := crlfLines(`BEGIN:VEVENT
DTSTAMP:20240101T000000Z
UID:params@example.com
DTSTART;TZID=Europe/Paris:20240102T090000
GEO:48.8566;2.3522
ORGANIZER;CN=John Smith:mailto:jsmith@example.com
DTEND;VALUE=DATE:20240103
ATTENDEE;DELEGATED-FROM="mailto:a@example.com";ROLE=REQ-PARTICIPANT:mailto:
 b@example.com
END:VEVENT
`)

	out, err := Marshal(ev)
	require.NoError(t, err)
	assert.Equal(t, want, string(out))

	back, err := ParseEvent(string(out))
	require.NoError(t, err)
	assert.Equal(t, ev, back)
}

func TestFormatExceptionDates(t *testing.T) {
	text := crlfLines(`BEGIN:VEVENT
DTSTAMP:20240101T000000Z
UID:exdate@example.com
DTSTART;TZID=Europe/Paris:20240101T090000
RRULE:FREQ=DAILY;COUNT=5
EXDATE;TZID=Europe/Paris:20240102T090000
EXDATE;TZID=America/New_York:20240103T090000,20240104T090000
EXDATE:20240105T080000Z
END:VEVENT
`)

	ev, err := ParseEvent(text)
	require.NoError(t, err)
	require.Len(t, ev.ExDate, 4)

	out, err := Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(out), "\r\nEXDATE;TZID=Europe/Paris:20240102T090000\r\n")
	assert.Contains(t, string(out), "\r\nEXDATE;TZID=America/New_York:20240103T090000,20240104T090000\r\n")
	assert.Contains(t, string(out), "\r\nEXDATE:20240105T080000Z\r\n")

	back, err := ParseEvent(string(out))
	require.NoError(t, err)
	assert.Equal(t, ev.ExDate, back.ExDate)
	assert.Equal(t, "America/New_York", back.ExDate[2].DateTime().TZID())
}
