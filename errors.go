package ikal

import "fmt"

// A GrammarError reports a malformed content line. Remainder holds the
// unconsumed input at the point the lexer gave up.
type GrammarError struct {
	Msg       string
	Remainder string
}

func (e *GrammarError) Error() string {
	if e.Remainder == "" {
		return "ical: " + e.Msg
	}
	return fmt.Sprintf("ical: %s near %.20q", e.Msg, e.Remainder)
}

// A ValueError reports a well-formed content line whose value could not
// be converted to its typed form.
type ValueError struct {
	Property string
	Value    string
	Err      error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("ical: invalid %s value %q: %v", e.Property, e.Value, e.Err)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// A MissingPropertyError reports a component without one of its
// mandatory properties.
type MissingPropertyError struct {
	Component string
	Property  string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("ical: missing required property %q in %s", e.Property, e.Component)
}

// A DomainError reports an enumerated value outside its closed set.
type DomainError struct {
	Kind  string
	Value string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("ical: unknown %s %q", e.Kind, e.Value)
}

func valueErr(prop, value string, err error) error {
	return &ValueError{Property: prop, Value: value, Err: err}
}
