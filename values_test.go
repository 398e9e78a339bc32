package ikal

import (
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeText(t *testing.T) {
	tests := []struct {
		raw, escaped string
	}{
		{"plain", "plain"},
		{"Atlanta, Georgia", `Atlanta\, Georgia`},
		{"a;b", `a\;b`},
		{"line1\nline2", `line1\nline2`},
		{`C:\dir`, `C:\\dir`},
		{"all: ;,\n\\", `all: \;\,\n\\`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.escaped, escapeText(tt.raw))
		assert.Equal(t, tt.raw, unescapeText(tt.escaped))
	}

	assert.Equal(t, "upper\ncase", unescapeText(`upper\Ncase`))
	assert.Equal(t, `keep\x`, unescapeText(`keep\x`))
	assert.Equal(t, `trailing\`, unescapeText(`trailing\`))
}

func TestSplitEscaped(t *testing.T) {
	assert.Equal(t, []string{"a", `b\,c`, "d"}, splitEscaped(`a,b\,c,d`, ','))
	assert.Equal(t, []string{"2.0", "Success"}, splitEscaped("2.0;Success", ';'))
	assert.Equal(t, []string{""}, splitEscaped("", ','))
}

func TestTextList(t *testing.T) {
	list, err := toTextList(ContentLine{Key: "CATEGORIES", Value: `APPOINTMENT,EDUCATION\, TRAINING`})
	require.NoError(t, err)
	assert.Equal(t, []string{"APPOINTMENT", "EDUCATION, TRAINING"}, list)
}

func TestGeo(t *testing.T) {
	g, err := toGeo(ContentLine{Key: "GEO", Value: "37.386013;-122.082932"})
	require.NoError(t, err)
	assert.Equal(t, Geo{Lat: 37.386013, Lon: -122.082932}, g)
	assert.Equal(t, "37.386013;-122.082932", g.String())

	for _, v := range []string{"37.386013", "north;-122", "37;west"} {
		_, err := toGeo(ContentLine{Key: "GEO", Value: v})
		assert.Error(t, err, v)
	}
}

func TestRequestStatus(t *testing.T) {
	rs, err := toRequestStatus(ContentLine{Key: "REQUEST-STATUS", Value: `3.1;Invalid property value;DTSTART:96-Apr-01`})
	require.NoError(t, err)
	assert.Equal(t, RequestStatus{
		Code:        "3.1",
		Description: "Invalid property value",
		ExtData:     mo.Some("DTSTART:96-Apr-01"),
	}, rs)
	assert.Equal(t, `3.1;Invalid property value;DTSTART:96-Apr-01`, rs.String())

	rs, err = toRequestStatus(ContentLine{Key: "REQUEST-STATUS", Value: `2.0;Success\, really`})
	require.NoError(t, err)
	assert.Equal(t, "Success, really", rs.Description)
	assert.True(t, rs.ExtData.IsAbsent())

	for _, v := range []string{"2.0", "ok;Success", "1;2;3;4"} {
		_, err := toRequestStatus(ContentLine{Key: "REQUEST-STATUS", Value: v})
		assert.Error(t, err, v)
	}
}

func TestTrigger(t *testing.T) {
	tests := []struct {
		line ContentLine
		want Trigger
	}{
		{
			ContentLine{Key: "TRIGGER", Value: "-PT15M"},
			RelativeTrigger{Offset: -15 * time.Minute},
		},
		{
			ContentLine{Key: "TRIGGER", Params: Params{"RELATED": "END"}, Value: "PT5M"},
			RelativeTrigger{Offset: 5 * time.Minute, FromEnd: true},
		},
		{
			ContentLine{Key: "TRIGGER", Params: Params{"VALUE": "DATE-TIME"}, Value: "19980101T050000Z"},
			AbsoluteTrigger{Time: UTCTime(time.Date(1998, 1, 1, 5, 0, 0, 0, time.UTC))},
		},
	}

	for _, tt := range tests {
		got, err := toTrigger(tt.line)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.line.Value, got.String())
		assert.Equal(t, tt.line.Params, got.params())
	}

	_, err := toTrigger(ContentLine{Key: "TRIGGER", Value: "soon"})
	assert.Error(t, err)
}

func TestRDate(t *testing.T) {
	r, err := toRDate(ContentLine{Key: "RDATE", Params: Params{"VALUE": "DATE"}, Value: "19970101,19970120"})
	require.NoError(t, err)
	dates, ok := r.(RDateList)
	require.True(t, ok)
	assert.Len(t, dates, 2)
	assert.True(t, dates[1].IsDateOnly())
	assert.Equal(t, Params{"VALUE": "DATE"}, r.params())

	r, err = toRDate(ContentLine{Key: "RDATE", Params: Params{"VALUE": "PERIOD"}, Value: "19960403T020000Z/19960403T040000Z,19960404T010000Z/PT3H"})
	require.NoError(t, err)
	periods, ok := r.(RPeriodList)
	require.True(t, ok)
	require.Len(t, periods, 2)
	assert.IsType(t, DurationPeriod{}, periods[1])
	assert.Equal(t, "19960403T020000Z/19960403T040000Z,19960404T010000Z/PT3H", r.String())

	r, err = toRDate(ContentLine{Key: "RDATE", Params: Params{"TZID": "America/New_York"}, Value: "19970714T083000"})
	require.NoError(t, err)
	assert.Equal(t, Params{"TZID": "America/New_York"}, r.params())
}

func TestEnumerations(t *testing.T) {
	s, err := toStatus(ContentLine{Key: "STATUS", Value: "CONFIRMED"})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	_, err = toStatus(ContentLine{Key: "STATUS", Value: "MAYBE"})
	var derr *DomainError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "MAYBE", derr.Value)

	_, err = toTransparency(ContentLine{Key: "TRANSP", Value: "CLOUDY"})
	assert.True(t, errors.As(err, &derr))

	c, err := toClass(ContentLine{Key: "CLASS", Value: "X-SECRET"})
	require.NoError(t, err)
	assert.Equal(t, Class("X-SECRET"), c)
}

func TestIntegerRanges(t *testing.T) {
	tests := []struct {
		conv  func(ContentLine) (int, error)
		value string
		ok    bool
	}{
		{toPriority, "0", true},
		{toPriority, "9", true},
		{toPriority, "10", false},
		{toPriority, "-1", false},
		{toPercent, "100", true},
		{toPercent, "101", false},
		{toCounter, "0", true},
		{toCounter, "-1", false},
		{toCounter, "one", false},
	}

	for _, tt := range tests {
		_, err := tt.conv(ContentLine{Value: tt.value})
		assert.Equal(t, tt.ok, err == nil, tt.value)
	}
}
