package ikal

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCalendar(t *testing.T) {
	cal := NewCalendar()
	assert.Equal(t, ProductID, cal.ProdID.Value)
	assert.Equal(t, "2.0", cal.Version.Value)
	assert.Equal(t, "GREGORIAN", cal.CalScale.MustGet().Value)
	assert.Equal(t, "VCALENDAR", cal.Name())
}

func TestNewComponents(t *testing.T) {
	before := time.Now().Add(-time.Second)

	ev, td, j, fb := NewEvent(), NewTodo(), NewJournal(), NewFreeBusy()
	uids := map[string]bool{}
	for _, c := range []struct {
		name  string
		uid   Text
		stamp DateTime
		got   string
	}{
		{"VEVENT", ev.UID, ev.DTStamp, ev.Name()},
		{"VTODO", td.UID, td.DTStamp, td.Name()},
		{"VJOURNAL", j.UID, j.DTStamp, j.Name()},
		{"VFREEBUSY", fb.UID, fb.DTStamp, fb.Name()},
	} {
		assert.Equal(t, c.name, c.got)
		_, err := uuid.Parse(c.uid.Value)
		assert.NoError(t, err, c.name)
		uids[c.uid.Value] = true

		assert.True(t, c.stamp.IsUTC(), c.name)
		assert.False(t, c.stamp.Time().Before(before.UTC().Truncate(time.Second)), c.name)
	}
	assert.Len(t, uids, 4)
}

func TestNewEventRoundTrip(t *testing.T) {
	cal := NewCalendar()
	ev := NewEvent()
	ev.DTStart = mo.Some(NewDate(2024, 12, 24))
	ev.Summary = mo.Some(NewText("Réveillon"))
	ev.Transp = mo.Some(Transparent)
	cal.Events = append(cal.Events, ev)

	td := NewTodo()
	td.Priority = mo.Some(1)
	td.Alarms = []Alarm{AudioAlarm{Trigger: AbsoluteTrigger{Time: UTCTime(time.Date(2024, 12, 23, 8, 0, 0, 0, time.UTC))}}}
	cal.Todos = append(cal.Todos, td)

	out, err := Marshal(cal)
	require.NoError(t, err)

	back, err := ParseCalendar(string(out))
	require.NoError(t, err)
	assert.Equal(t, cal, back)
}

func TestExtensionsKeep(t *testing.T) {
	var x Extensions
	x.keep(ContentLine{Key: "X-ONE", Value: "1"})
	x.keep(ContentLine{Key: "x-lower", Value: "2"})
	x.keep(ContentLine{Key: "X-ONE", Value: "3"})
	x.keep(ContentLine{Key: "XONE", Value: "4"})

	assert.Equal(t, map[string]ContentLine{
		"X-ONE": {Key: "X-ONE", Value: "3"},
	}, x.XProps)
	assert.Equal(t, map[string]ContentLine{
		"x-lower": {Key: "x-lower", Value: "2"},
		"XONE":    {Key: "XONE", Value: "4"},
	}, x.IANAProps)
}
