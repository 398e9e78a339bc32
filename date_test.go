package ikal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in       string
		dateOnly bool
		utc      bool
		want     time.Time
	}{
		{"19980119", true, false, time.Date(1998, 1, 19, 0, 0, 0, 0, time.UTC)},
		{"19980119T020000", false, false, time.Date(1998, 1, 19, 2, 0, 0, 0, time.UTC)},
		{"19980119T070000Z", false, true, time.Date(1998, 1, 19, 7, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.dateOnly, d.IsDateOnly())
			assert.Equal(t, tt.utc, d.DateTime().IsUTC())
			assert.Equal(t, tt.want, d.Time())
			assert.Equal(t, tt.in, d.String())
		})
	}
}

func TestParseDateErrors(t *testing.T) {
	for _, in := range []string{"", "1998011", "19981319", "19980119T25", "19980119T020000ZZ", "1998-01-19"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestDateParams(t *testing.T) {
	assert.Equal(t, Params{"VALUE": "DATE"}, NewDate(2024, 1, 1).params())
	assert.Nil(t, DateOf(UTCTime(time.Now())).params())

	dt := FloatingTime(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)).WithTZID("Europe/Paris")
	assert.Equal(t, Params{"TZID": "Europe/Paris"}, DateOf(dt).params())
	assert.Equal(t, "20240101T090000", dt.String())
}

func TestDateTimeConstructors(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("no time zone database")
	}
	instant := time.Date(2024, 7, 14, 17, 0, 0, 500, paris)

	floating := FloatingTime(instant)
	assert.False(t, floating.IsUTC())
	assert.Equal(t, "20240714T170000", floating.String())

	utc := UTCTime(instant)
	assert.True(t, utc.IsUTC())
	assert.Equal(t, "20240714T150000Z", utc.String())
}

func TestDateCompare(t *testing.T) {
	day := NewDate(2024, 1, 1)
	morning := DateOf(FloatingTime(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
	evening := DateOf(UTCTime(time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)))
	next := NewDate(2024, 1, 2)

	assert.Equal(t, 0, day.Compare(morning))
	assert.Equal(t, 0, evening.Compare(day))
	assert.Equal(t, -1, morning.Compare(evening))
	assert.Equal(t, 1, next.Compare(evening))
	assert.True(t, morning.SameDay(evening))
	assert.False(t, day.Equal(morning))
}

func TestDateAdd(t *testing.T) {
	d := NewDate(2024, 1, 31)
	assert.Equal(t, "20240201", d.Add(25*time.Hour).String())
	assert.Equal(t, "20240302", d.AddDate(0, 1, 0).String())

	dt := DateOf(UTCTime(time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "20240201T010000Z", dt.Add(2*time.Hour).String())
	assert.Equal(t, 2*time.Hour, dt.Add(2*time.Hour).Sub(dt))
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in     string
		want   time.Duration
		format string
	}{
		{"P15DT5H0M20S", 15*24*time.Hour + 5*time.Hour + 20*time.Second, "P15DT5H20S"},
		{"PT0S", 0, "PT0S"},
		{"-PT15M", -15 * time.Minute, "-PT15M"},
		{"P2W", 14 * 24 * time.Hour, "P2W"},
		{"+P1D", 24 * time.Hour, "P1D"},
		{"PT25H", 25 * time.Hour, "P1DT1H"},
		{"P1DT30M", 24*time.Hour + 30*time.Minute, "P1DT30M"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
			assert.Equal(t, tt.format, FormatDuration(d))

			back, err := ParseDuration(FormatDuration(d))
			require.NoError(t, err)
			assert.Equal(t, d, back)
		})
	}
}

func TestDurationErrors(t *testing.T) {
	for _, in := range []string{"", "P", "PT", "1D", "P1H", "PT1D", "PTX", "P1", "P1DTT1H", "--P1D"} {
		_, err := ParseDuration(in)
		assert.Error(t, err, in)
	}
}

func TestUTCOffset(t *testing.T) {
	tests := []struct {
		in   string
		want UTCOffset
	}{
		{"+0100", 3600},
		{"-0500", -18000},
		{"+0000", 0},
		{"+013045", 5445},
	}

	for _, tt := range tests {
		o, err := ParseUTCOffset(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, o)
		assert.Equal(t, tt.in, o.String())
	}

	for _, in := range []string{"0100", "+01", "+0160", "+01000", "+ab00"} {
		_, err := ParseUTCOffset(in)
		assert.Error(t, err, in)
	}
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("19970101T180000Z/19970102T070000Z")
	require.NoError(t, err)
	explicit, ok := p.(ExplicitPeriod)
	require.True(t, ok)
	assert.Equal(t, time.Date(1997, 1, 2, 7, 0, 0, 0, time.UTC), explicit.End.Time())
	assert.Equal(t, "19970101T180000Z/19970102T070000Z", p.String())

	p, err = ParsePeriod("19970101T180000Z/PT5H30M")
	require.NoError(t, err)
	dp, ok := p.(DurationPeriod)
	require.True(t, ok)
	assert.Equal(t, 5*time.Hour+30*time.Minute, dp.Duration)
	assert.Equal(t, time.Date(1997, 1, 1, 18, 0, 0, 0, time.UTC), p.Begin().Time())
	assert.Equal(t, "19970101T180000Z/PT5H30M", p.String())

	for _, in := range []string{"19970101T180000Z", "19970101T180000Z/", "x/PT1H", "19970101T180000Z/P"} {
		_, err := ParsePeriod(in)
		assert.Error(t, err, in)
	}
}
