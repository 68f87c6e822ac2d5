package config

import (
	"strings"
	"unicode"
)

// Options is a parsed CUPS option string. Keys are case-sensitive.
type Options map[string]string

// Get returns the value for name and whether it was present
func (o Options) Get(name string) (string, bool) {
	v, ok := o[name]
	return v, ok
}

// ParseOptions splits a CUPS option string into name/value pairs.
//
// Tokens are separated by whitespace and take the form name=value. Values may
// be wrapped in single or double quotes, which are removed, and a backslash
// escapes the next character. A {...} collection value is kept verbatim,
// braces and inner quotes included. A bare name is stored as "true" and a bare
// noname as name="false". Later occurrences override earlier ones.
func ParseOptions(s string) Options {
	opts := Options{}
	p := &optionScanner{s: s}

	for {
		p.skipSpace()
		if p.done() {
			return opts
		}

		name := p.scanName()
		if name == "" {
			// stray '=' or similar; drop the token
			p.skipToken()
			continue
		}

		if p.done() || p.peek() != '=' {
			if strings.HasPrefix(name, "no") && len(name) > 2 {
				opts[name[2:]] = "false"
			} else {
				opts[name] = "true"
			}
			continue
		}

		p.pos++ // '='
		opts[name] = p.scanValue()
	}
}

type optionScanner struct {
	s   string
	pos int
}

func (p *optionScanner) done() bool { return p.pos >= len(p.s) }
func (p *optionScanner) peek() byte { return p.s[p.pos] }

func (p *optionScanner) skipSpace() {
	for !p.done() && isSpace(p.peek()) {
		p.pos++
	}
}

func (p *optionScanner) skipToken() {
	for !p.done() && !isSpace(p.peek()) {
		p.pos++
	}
}

func (p *optionScanner) scanName() string {
	start := p.pos
	for !p.done() && !isSpace(p.peek()) && p.peek() != '=' {
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *optionScanner) scanValue() string {
	var b strings.Builder
	depth := 0
	var quote byte

	for !p.done() {
		c := p.peek()
		switch {
		case c == '\\' && p.pos+1 < len(p.s):
			p.pos++
			b.WriteByte(p.peek())
		case quote != 0:
			if c == quote {
				quote = 0
				if depth > 0 {
					b.WriteByte(c)
				}
			} else {
				b.WriteByte(c)
			}
		case c == '\'' || c == '"':
			quote = c
			if depth > 0 {
				b.WriteByte(c)
			}
		case c == '{':
			b.WriteByte(c)
			depth++
		case c == '}' && depth > 0:
			b.WriteByte(c)
			depth--
		case depth == 0 && isSpace(c):
			return b.String()
		default:
			b.WriteByte(c)
		}
		p.pos++
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c < 0x80 && unicode.IsSpace(rune(c))
}
