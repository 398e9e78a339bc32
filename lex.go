package ikal

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// item represents a token or text string returned from the scanner.
type item struct {
	typ itemType // The type of this item.
	pos int      // The starting position, in bytes, of this item in the input string.
	val string   // The value of this item.
}

func (i item) String() string {
	switch {
	case i.typ == itemEOF:
		return "EOF"
	case i.typ == itemError:
		return i.val
	case i.typ == itemLineEnd:
		return "CRLF"
	case i.typ > itemKeyword:
		return fmt.Sprintf("<%s>", i.val)
	case len(i.val) > 10:
		return fmt.Sprintf("%.10q...", i.val)
	}
	return fmt.Sprintf("%q", i.val)
}

// itemType identifies the type of lex items.
type itemType int

const (
	// Special tokens
	itemError itemType = iota
	itemEOF
	itemLineEnd

	// Literals
	itemName
	itemParamName
	itemParamValue
	itemValue

	// Misc
	itemColon     // :
	itemSemiColon // ;
	itemEqual     // =
	itemComma     // ,

	// Keyword
	itemKeyword // delimit the keyword list

	// Delimit, val holds the component name
	itemBegin
	itemEnd
)

const eof = -1

// stateFn represents the state of the scanner as a function that returns the next state.
type stateFn func(*lexer) stateFn

// lexer holds the state of the scanner.
type lexer struct {
	input string  // the string being scanned
	state stateFn // the next lexing function to enter
	start int     // start position of this item
	pos   int     // current position in the input
	width int     // width of last rune read from input
	items []item  // scanned items not yet handed to the parser
}

// lex creates a new scanner for the input string. The input must
// already be unfolded.
func lex(input string) *lexer {
	return &lexer{
		input: input,
		state: lexName,
	}
}

// emit queues an item for the client.
func (l *lexer) emit(t itemType) {
	l.items = append(l.items, item{t, l.start, l.input[l.start:l.pos]})
	l.start = l.pos
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.start = l.pos
}

// next returns the next rune in the input.
func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += l.width
	return r
}

// peek returns but does not consume the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// backup steps back one rune. Can only be called once per call of next.
func (l *lexer) backup() {
	l.pos -= l.width
}

// errorf queues an error token and terminates the scan by passing
// back a nil pointer that will be the next state.
func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.items = append(l.items, item{itemError, l.start, fmt.Sprintf(format, args...)})
	return nil
}

// nextItem returns the next item from the input, running the state
// machine until one is available.
func (l *lexer) nextItem() item {
	for len(l.items) == 0 {
		if l.state == nil {
			return item{itemEOF, l.pos, ""}
		}
		l.state = l.state(l)
	}
	it := l.items[0]
	l.items = l.items[1:]
	return it
}

// State functions

const (
	crlf  = "\r\n"
	begin = "BEGIN"
	end   = "END"
)

var unfolder = strings.NewReplacer(crlf+" ", "", crlf+"\t", "")

// unfold joins continuation lines: a CRLF immediately followed by one
// space or tab is removed along with that whitespace character.
func unfold(text string) string {
	return unfolder.Replace(text)
}

func lexContentLine(l *lexer) stateFn {
	switch r := l.next(); {
	case r == ';':
		l.emit(itemSemiColon)
		return lexParamName
	case r == ':':
		l.emit(itemColon)
		return lexValue
	case r == ',':
		l.emit(itemComma)
		return lexParamValue
	case r == eof:
		return l.errorf("missing \":\" separator")
	default:
		l.backup()
		return l.errorf("missing \":\" separator, got %#U", r)
	}
}

// lexNewLine scans CRLF
func lexNewLine(l *lexer) stateFn {
	if l.peek() == eof {
		l.emit(itemEOF)
		return nil
	}

	if !strings.HasPrefix(l.input[l.pos:], crlf) {
		return l.errorf("unable to find end of line \"CRLF\"")
	}

	l.pos += len(crlf)
	l.emit(itemLineEnd)

	if l.peek() == eof {
		l.emit(itemEOF)
		return nil
	}

	return lexName
}

// lexName scans the name in the content line
//
// name       = iana-token / x-name
// iana-token = 1*(ALPHA / DIGIT / "-") ; iCalendar identifier registered with IANA
// x-name     = "X-" [vendorid "-"] 1*(ALPHA / DIGIT / "-") ; Reserved for experimental use.
// vendorid   = 3*(ALPHA / DIGIT) ; Vendor identification
func lexName(l *lexer) stateFn {
	if l.peek() == eof {
		l.emit(itemEOF)
		return nil
	}

	for isName(l.next()) {
		// absorb
	}
	l.backup()

	if l.pos == l.start {
		return l.errorf("expected a property name")
	}

	name := l.input[l.start:l.pos]
	if (name == begin || name == end) && l.peek() == ':' {
		return lexDelimiter
	}

	l.emit(itemName)
	return lexContentLine
}

// lexDelimiter scans the component name of a BEGIN or END line
func lexDelimiter(l *lexer) stateFn {
	typ := itemBegin
	if l.input[l.start:l.pos] == end {
		typ = itemEnd
	}
	l.next() // ':'
	l.ignore()

	for isName(l.next()) {
		// absorb
	}
	l.backup()

	if l.pos == l.start {
		return l.errorf("missing component name")
	}
	l.emit(typ)
	return lexNewLine
}

// lexParamName scans the param-name in the content line
//
// param-name = iana-token / x-name
func lexParamName(l *lexer) stateFn {
	for isName(l.next()) {
		// absorb
	}
	l.backup()

	if l.pos == l.start {
		return l.errorf("expected a param-name")
	}
	l.emit(itemParamName)

	r := l.next()

	if r == '=' {
		l.emit(itemEqual)
		return lexParamValue
	}
	l.backup()
	return l.errorf("missing \"=\" sign after param name, got %#U", r)
}

// lexParamValue scans the param-value in the content line
//
// param-value   = paramtext / quoted-string
// paramtext     = *SAFE-CHAR
// quoted-string = DQUOTE *QSAFE-CHAR DQUOTE
// QSAFE-CHAR    = WSP / %x21 / %x23-7E / NON-US-ASCII ; Any character except CONTROL and DQUOTE
// SAFE-CHAR     = WSP / %x21 / %x23-2B / %x2D-39 / %x3C-7E / NON-US-ASCII ; Any character except CONTROL, DQUOTE, ";", ":", ","
func lexParamValue(l *lexer) stateFn {
	if l.peek() == '"' {
		quote := l.start
		l.next()
		l.ignore()

		i := strings.IndexByte(l.input[l.pos:], '"')
		if i < 0 {
			l.start = quote
			return l.errorf("unterminated quoted param value")
		}
		l.pos += i
		l.emit(itemParamValue)

		l.next()
		l.ignore()
		return lexContentLine
	}

	for isSafeChar(l.next()) {
		// absorb
	}
	l.backup()
	l.emit(itemParamValue)

	return lexContentLine
}

// lexValue scans the value in the content line, up to the line ending
//
// value      = *VALUE-CHAR
// VALUE-CHAR = WSP / %x21-7E / NON-US-ASCII ; Any textual character
func lexValue(l *lexer) stateFn {
	if i := strings.IndexAny(l.input[l.pos:], "\r\n"); i >= 0 {
		l.pos += i
	} else {
		l.pos = len(l.input)
	}
	l.emit(itemValue)

	return lexNewLine
}

// rune helpers

func isName(r rune) bool {
	return ('A' <= r && r <= 'Z') || ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') || r == '-' || r == '/'
}

func isSafeChar(r rune) bool {
	return r != eof && !isControl(r) && r != '"' && r != ';' && r != ':' && r != ','
}

func isControl(r rune) bool {
	return (r < 0x20 && r != '\t') || r == 0x7f
}
