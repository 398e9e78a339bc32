package ikal

import (
	"fmt"
	"sort"
	"strings"
)

// Params holds the parameters of a content line. Rendering always walks
// the keys in sorted order.
type Params map[string]string

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the parameters as NAME=VALUE pairs joined by ";".
func (p Params) String() string {
	var b strings.Builder
	for i, k := range p.Keys() {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(quoteParam(p[k]))
	}
	return b.String()
}

func quoteParam(v string) string {
	if strings.ContainsAny(v, ";:,") {
		return `"` + v + `"`
	}
	return v
}

// A ContentLine is one logical KEY;PARAMS:VALUE line, after unfolding.
type ContentLine struct {
	Key    string
	Params Params
	Value  string
}

// String renders the line without folding or the trailing CRLF.
func (l ContentLine) String() string {
	var b strings.Builder
	b.WriteString(l.Key)
	if len(l.Params) > 0 {
		b.WriteByte(';')
		b.WriteString(l.Params.String())
	}
	b.WriteByte(':')
	b.WriteString(l.Value)
	return b.String()
}

// ParseContentLines tokenizes the body of a single component, the text
// between a BEGIN line and its matching END line. Nested BEGIN/END lines
// are rejected.
func ParseContentLines(body string) ([]ContentLine, error) {
	p := newParser(unfold(body))
	var lines []ContentLine

	for {
		it := p.next()
		switch it.typ {
		case itemEOF:
			return lines, nil
		case itemName:
			line, err := p.contentLine(it)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		case itemBegin, itemEnd:
			return nil, p.errorAt(it, "unexpected component delimiter")
		default:
			return nil, p.errorAt(it, fmt.Sprintf("found %s, expected a \"name\" token", it))
		}
	}
}

// rawComponent is a BEGIN/END envelope before typed assembly.
type rawComponent struct {
	name     string
	lines    []ContentLine
	children []*rawComponent
}

type parser struct {
	input     string
	lex       *lexer
	token     [2]item
	peekCount int
}

func newParser(input string) *parser {
	return &parser{input: input, lex: lex(input)}
}

// next returns the next token.
func (p *parser) next() item {
	if p.peekCount > 0 {
		p.peekCount--
	} else {
		p.token[0] = p.lex.nextItem()
	}
	return p.token[p.peekCount]
}

// peek returns but does not consume the next token.
func (p *parser) peek() item {
	if p.peekCount > 0 {
		return p.token[p.peekCount-1]
	}
	p.peekCount = 1
	p.token[0] = p.lex.nextItem()
	return p.token[0]
}

// errorAt builds a GrammarError carrying the input remaining at it.
func (p *parser) errorAt(it item, msg string) error {
	if it.typ == itemError {
		msg = it.val
	}
	rest := ""
	if it.pos < len(p.input) {
		rest = p.input[it.pos:]
	}
	return &GrammarError{Msg: msg, Remainder: rest}
}

// parseDocument parses exactly one top level component.
func parseDocument(text string) (*rawComponent, error) {
	p := newParser(unfold(strings.TrimSpace(text)))

	it := p.next()
	if it.typ != itemBegin {
		return nil, p.errorAt(it, fmt.Sprintf("found %s, expected BEGIN", it))
	}
	c, err := p.component(it)
	if err != nil {
		return nil, err
	}
	if it := p.next(); it.typ != itemEOF {
		return nil, p.errorAt(it, fmt.Sprintf("found %s after END:%s", it, c.name))
	}
	return c, nil
}

// component scans the body of a component whose BEGIN token was just read.
func (p *parser) component(delim item) (*rawComponent, error) {
	if err := p.lineEnd(); err != nil {
		return nil, err
	}

	c := &rawComponent{name: delim.val}
	for {
		it := p.next()
		switch it.typ {
		case itemName:
			line, err := p.contentLine(it)
			if err != nil {
				return nil, err
			}
			c.lines = append(c.lines, line)
		case itemBegin:
			child, err := p.component(it)
			if err != nil {
				return nil, err
			}
			c.children = append(c.children, child)
		case itemEnd:
			if it.val != c.name {
				return nil, p.errorAt(it, fmt.Sprintf("found END:%s, expected END:%s", it.val, c.name))
			}
			return c, p.lineEnd()
		case itemEOF:
			return nil, p.errorAt(it, fmt.Sprintf("missing END:%s", c.name))
		default:
			return nil, p.errorAt(it, fmt.Sprintf("found %s, expected a \"name\" token", it))
		}
	}
}

// lineEnd consumes a CRLF, or accepts the end of input.
func (p *parser) lineEnd() error {
	it := p.next()
	switch it.typ {
	case itemLineEnd:
		return nil
	case itemEOF:
		p.peekCount++
		return nil
	}
	return p.errorAt(it, fmt.Sprintf("found %s, expected CRLF", it))
}

// contentLine parses a content-line whose name token was just read.
func (p *parser) contentLine(name item) (ContentLine, error) {
	line := ContentLine{Key: name.val}

	for {
		it := p.next()
		switch it.typ {
		case itemSemiColon:
			if err := p.param(&line); err != nil {
				return line, err
			}
		case itemColon:
			value := p.next()
			if value.typ != itemValue {
				return line, p.errorAt(value, fmt.Sprintf("found %s, expected a value", value))
			}
			line.Value = value.val
			return line, p.lineEnd()
		default:
			return line, p.errorAt(it, fmt.Sprintf("found %s, expected \":\"", it))
		}
	}
}

// param parses one NAME=VALUE[,VALUE...] parameter.
func (p *parser) param(line *ContentLine) error {
	name := p.next()
	if name.typ != itemParamName {
		return p.errorAt(name, fmt.Sprintf("found %s, expected a param-name", name))
	}
	if it := p.next(); it.typ != itemEqual {
		return p.errorAt(it, fmt.Sprintf("found %s, expected =", it))
	}

	value := p.next()
	if value.typ != itemParamValue {
		return p.errorAt(value, fmt.Sprintf("found %s, expected a param-value", value))
	}
	values := []string{value.val}

	for p.peek().typ == itemComma {
		p.next()
		value := p.next()
		if value.typ != itemParamValue {
			return p.errorAt(value, fmt.Sprintf("found %s, expected a param-value", value))
		}
		values = append(values, value.val)
	}

	if line.Params == nil {
		line.Params = make(Params)
	}
	line.Params[name.val] = strings.Join(values, ",")
	return nil
}
