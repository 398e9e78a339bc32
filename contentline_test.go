package ikal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentLines(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []ContentLine
	}{
		{
			name: "empty",
			body: "",
			want: nil,
		},
		{
			name: "plain",
			body: "SUMMARY:Bastille Day Party\r\nDTSTART:19970714T170000Z\r\n",
			want: []ContentLine{
				{Key: "SUMMARY", Value: "Bastille Day Party"},
				{Key: "DTSTART", Value: "19970714T170000Z"},
			},
		},
		{
			name: "params",
			body: "DTSTART;TZID=America/New_York:19980119T020000\r\n",
			want: []ContentLine{
				{Key: "DTSTART", Params: Params{"TZID": "America/New_York"}, Value: "19980119T020000"},
			},
		},
		{
			name: "quoted param",
			body: "ATTENDEE;DELEGATED-FROM=\"mailto:jsmith@example.com\";CN=Jane:mailto:jdoe@example.com",
			want: []ContentLine{
				{
					Key:    "ATTENDEE",
					Params: Params{"DELEGATED-FROM": "mailto:jsmith@example.com", "CN": "Jane"},
					Value:  "mailto:jdoe@example.com",
				},
			},
		},
		{
			name: "multi-valued param",
			body: "ATTENDEE;MEMBER=\"mailto:a@example.com\",\"mailto:b@example.com\":mailto:c@example.com\r\n",
			want: []ContentLine{
				{
					Key:    "ATTENDEE",
					Params: Params{"MEMBER": "mailto:a@example.com,mailto:b@example.com"},
					Value:  "mailto:c@example.com",
				},
			},
		},
		{
			name: "folded",
			body: "DESCRIPTION:This is a lo\r\n ng description\r\n",
			want: []ContentLine{
				{Key: "DESCRIPTION", Value: "This is a long description"},
			},
		},
		{
			name: "colon in value",
			body: "URL:http://example.com/pub/calendars/jsmith/mytime.ics\r\n",
			want: []ContentLine{
				{Key: "URL", Value: "http://example.com/pub/calendars/jsmith/mytime.ics"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := ParseContentLines(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lines)
		})
	}
}

func TestParseContentLinesErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		remainder string
	}{
		{"missing colon", "SUMMARY Party\r\n", " Party\r\n"},
		{"unterminated quote", "SUMMARY;X=\"abc:Party\r\n", "\"abc:Party\r\n"},
		{"nested component", "SUMMARY:a\r\nBEGIN:VALARM\r\n", "VALARM\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseContentLines(tt.body)
			var gerr *GrammarError
			require.True(t, errors.As(err, &gerr), "got %v", err)
			assert.Equal(t, tt.remainder, gerr.Remainder)
		})
	}
}

func TestContentLineString(t *testing.T) {
	l := ContentLine{
		Key:    "ATTENDEE",
		Params: Params{"ROLE": "CHAIR", "DELEGATED-TO": "mailto:a@example.com", "CN": "John Smith"},
		Value:  "mailto:jsmith@example.com",
	}
	want := `ATTENDEE;CN=John Smith;DELEGATED-TO="mailto:a@example.com";ROLE=CHAIR:mailto:jsmith@example.com`
	assert.Equal(t, want, l.String())

	lines, err := ParseContentLines(l.String() + crlf)
	require.NoError(t, err)
	assert.Equal(t, []ContentLine{l}, lines)
}

func TestParseDocument(t *testing.T) {
	raw, err := parseDocument(readFixture(t, "fixtures/with-alarm.ics"))
	require.NoError(t, err)

	assert.Equal(t, "VCALENDAR", raw.name)
	require.Len(t, raw.children, 2)
	assert.Equal(t, "VTIMEZONE", raw.children[0].name)
	assert.Len(t, raw.children[0].children, 2)

	ev := raw.children[1]
	assert.Equal(t, "VEVENT", ev.name)
	assert.Len(t, ev.children, 2)
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no begin", "SUMMARY:x\r\n"},
		{"missing end", "BEGIN:VEVENT\r\nUID:1\r\n"},
		{"mismatched end", "BEGIN:VEVENT\r\nUID:1\r\nEND:VTODO\r\n"},
		{"trailing data", "BEGIN:VEVENT\r\nEND:VEVENT\r\nBEGIN:VEVENT\r\nEND:VEVENT\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDocument(tt.text)
			var gerr *GrammarError
			assert.True(t, errors.As(err, &gerr), "got %v", err)
		})
	}
}
