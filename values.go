package ikal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
)

// Text is a free-text property value with its parameters, such as
// LANGUAGE or ALTREP. Value holds the unescaped text.
type Text struct {
	Params Params
	Value  string
}

// NewText returns a Text without parameters.
func NewText(s string) Text { return Text{Value: s} }

func (t Text) String() string { return t.Value }

// URI is a URI or CAL-ADDRESS property value with its parameters, such
// as CN or ROLE. The value is not validated.
type URI struct {
	Params Params
	Value  string
}

// NewURI returns a URI without parameters.
func NewURI(s string) URI { return URI{Value: s} }

func (u URI) String() string { return u.Value }

// Class is the access classification of a component. Values outside
// the three standard ones are kept verbatim.
type Class string

const (
	ClassPublic       Class = "PUBLIC"
	ClassPrivate      Class = "PRIVATE"
	ClassConfidential Class = "CONFIDENTIAL"
)

// Status is the overall status of a component.
type Status string

const (
	StatusTentative   Status = "TENTATIVE"
	StatusConfirmed   Status = "CONFIRMED"
	StatusCancelled   Status = "CANCELLED"
	StatusNeedsAction Status = "NEEDS-ACTION"
	StatusCompleted   Status = "COMPLETED"
	StatusInProcess   Status = "IN-PROCESS"
	StatusDraft       Status = "DRAFT"
	StatusFinal       Status = "FINAL"
)

func (s Status) valid() bool {
	switch s {
	case StatusTentative, StatusConfirmed, StatusCancelled, StatusNeedsAction,
		StatusCompleted, StatusInProcess, StatusDraft, StatusFinal:
		return true
	}
	return false
}

// Transparency tells whether an event consumes time on a calendar.
type Transparency string

const (
	Opaque      Transparency = "OPAQUE"
	Transparent Transparency = "TRANSPARENT"
)

func (t Transparency) valid() bool {
	return t == Opaque || t == Transparent
}

// Geo is a global position.
type Geo struct {
	Lat float64
	Lon float64
}

func (g Geo) String() string {
	return strconv.FormatFloat(g.Lat, 'f', -1, 64) + ";" + strconv.FormatFloat(g.Lon, 'f', -1, 64)
}

// RequestStatus is a REQUEST-STATUS value: a dotted status code, a
// description and optional extra data.
type RequestStatus struct {
	Code        string
	Description string
	ExtData     mo.Option[string]
}

func (r RequestStatus) String() string {
	s := r.Code + ";" + escapeText(r.Description)
	if ext, ok := r.ExtData.Get(); ok {
		s += ";" + escapeText(ext)
	}
	return s
}

// A Trigger tells when an alarm fires, either RelativeTrigger or
// AbsoluteTrigger.
type Trigger interface {
	String() string
	params() Params

	trigger()
}

// A RelativeTrigger fires at an offset from the start of the owning
// component, or from its end when FromEnd is set.
type RelativeTrigger struct {
	Offset  time.Duration
	FromEnd bool
}

// An AbsoluteTrigger fires at a fixed UTC time.
type AbsoluteTrigger struct {
	Time DateTime
}

func (t RelativeTrigger) String() string { return FormatDuration(t.Offset) }
func (t AbsoluteTrigger) String() string { return t.Time.String() }

func (t RelativeTrigger) params() Params {
	if t.FromEnd {
		return Params{"RELATED": "END"}
	}
	return nil
}

func (t AbsoluteTrigger) params() Params {
	return Params{"VALUE": "DATE-TIME"}
}

func (RelativeTrigger) trigger() {}
func (AbsoluteTrigger) trigger() {}

// An RDate is one RDATE line, either RDateList or RPeriodList.
type RDate interface {
	String() string
	params() Params

	rdate()
}

// RDateList is an RDATE line of dates or date-times.
type RDateList []Date

// RPeriodList is an RDATE line of periods, marked VALUE=PERIOD.
type RPeriodList []Period

func (l RDateList) String() string {
	s := make([]string, len(l))
	for i, d := range l {
		s[i] = d.String()
	}
	return strings.Join(s, ",")
}

func (l RPeriodList) String() string {
	s := make([]string, len(l))
	for i, p := range l {
		s[i] = p.String()
	}
	return strings.Join(s, ",")
}

func (l RDateList) params() Params {
	if len(l) == 0 {
		return nil
	}
	return l[0].params()
}

func (l RPeriodList) params() Params {
	return Params{"VALUE": "PERIOD"}
}

func (RDateList) rdate()   {}
func (RPeriodList) rdate() {}

var textEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

// escapeText escapes the characters reserved in TEXT values.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// unescapeText reverses escapeText. Unknown escapes are kept as is.
func unescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		case '\\', ';', ',':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// splitEscaped splits s on every sep not preceded by a backslash
// escape. The parts are left escaped.
func splitEscaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// Value converters. Each one turns a content line into a typed value;
// the caller wraps failures in a ValueError.

func toText(l ContentLine) (Text, error) {
	return Text{Params: l.Params, Value: unescapeText(l.Value)}, nil
}

func toURI(l ContentLine) (URI, error) {
	return URI{Params: l.Params, Value: l.Value}, nil
}

func toTextList(l ContentLine) ([]string, error) {
	parts := splitEscaped(l.Value, ',')
	for i, p := range parts {
		parts[i] = unescapeText(p)
	}
	return parts, nil
}

func toDateTime(l ContentLine) (DateTime, error) {
	dt, err := ParseDateTime(l.Value)
	if err != nil {
		return DateTime{}, err
	}
	if tzid := l.Params["TZID"]; tzid != "" && !dt.utc {
		dt = dt.WithTZID(tzid)
	}
	return dt, nil
}

func toDate(l ContentLine) (Date, error) {
	return parseDateParams(l.Value, l.Params)
}

func toDateList(l ContentLine) ([]Date, error) {
	var dates []Date
	for _, s := range strings.Split(l.Value, ",") {
		d, err := parseDateParams(s, l.Params)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func parseDateParams(s string, params Params) (Date, error) {
	d, err := ParseDate(s)
	if err != nil {
		return Date{}, err
	}
	if tzid := params["TZID"]; tzid != "" && !d.dateOnly && !d.dt.utc {
		d.dt = d.dt.WithTZID(tzid)
	}
	return d, nil
}

func toPeriodList(l ContentLine) ([]Period, error) {
	var periods []Period
	for _, s := range strings.Split(l.Value, ",") {
		p, err := ParsePeriod(s)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, nil
}

func toRDate(l ContentLine) (RDate, error) {
	if l.Params["VALUE"] == "PERIOD" {
		periods, err := toPeriodList(l)
		if err != nil {
			return nil, err
		}
		return RPeriodList(periods), nil
	}

	dates, err := toDateList(l)
	if err != nil {
		return nil, err
	}
	return RDateList(dates), nil
}

func toDuration(l ContentLine) (time.Duration, error) {
	return ParseDuration(l.Value)
}

func toUTCOffset(l ContentLine) (UTCOffset, error) {
	return ParseUTCOffset(l.Value)
}

func toRecur(l ContentLine) (Recur, error) {
	return ParseRecur(l.Value)
}

func toClass(l ContentLine) (Class, error) {
	return Class(l.Value), nil
}

func toStatus(l ContentLine) (Status, error) {
	s := Status(l.Value)
	if !s.valid() {
		return "", &DomainError{Kind: "status", Value: l.Value}
	}
	return s, nil
}

func toTransparency(l ContentLine) (Transparency, error) {
	t := Transparency(l.Value)
	if !t.valid() {
		return "", &DomainError{Kind: "transparency", Value: l.Value}
	}
	return t, nil
}

func toGeo(l ContentLine) (Geo, error) {
	lat, lon, ok := strings.Cut(l.Value, ";")
	if !ok {
		return Geo{}, errors.New("expected latitude;longitude")
	}

	var g Geo
	var err error
	if g.Lat, err = strconv.ParseFloat(lat, 64); err != nil {
		return Geo{}, err
	}
	if g.Lon, err = strconv.ParseFloat(lon, 64); err != nil {
		return Geo{}, err
	}
	return g, nil
}

func toRequestStatus(l ContentLine) (RequestStatus, error) {
	parts := splitEscaped(l.Value, ';')
	if len(parts) < 2 || len(parts) > 3 {
		return RequestStatus{}, errors.New("expected code;description[;data]")
	}
	if _, err := strconv.ParseFloat(parts[0], 64); err != nil {
		return RequestStatus{}, fmt.Errorf("invalid status code: %q", parts[0])
	}

	rs := RequestStatus{Code: parts[0], Description: unescapeText(parts[1])}
	if len(parts) == 3 {
		rs.ExtData = mo.Some(unescapeText(parts[2]))
	}
	return rs, nil
}

func toTrigger(l ContentLine) (Trigger, error) {
	if l.Params["VALUE"] == "DATE-TIME" || !strings.Contains(l.Value, "P") {
		dt, err := ParseDateTime(l.Value)
		if err != nil {
			return nil, err
		}
		return AbsoluteTrigger{Time: dt}, nil
	}

	d, err := ParseDuration(l.Value)
	if err != nil {
		return nil, err
	}
	return RelativeTrigger{Offset: d, FromEnd: l.Params["RELATED"] == "END"}, nil
}

// toInt returns a converter accepting integers in [lo, hi].
func toInt(lo, hi int) func(ContentLine) (int, error) {
	return func(l ContentLine) (int, error) {
		n, err := strconv.Atoi(l.Value)
		if err != nil {
			return 0, err
		}
		if n < lo || n > hi {
			return 0, fmt.Errorf("out of range [%d, %d]", lo, hi)
		}
		return n, nil
	}
}

var (
	toPriority = toInt(0, 9)
	toPercent  = toInt(0, 100)
	toCounter  = toInt(0, 1<<31-1)
)
