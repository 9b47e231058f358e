package sqf

import (
	"strconv"
	"strings"
)

// Decode parses text into a Value. Empty input, trailing garbage and any
// token outside the grammar yield a *DecodeError.
func Decode(text string) (Value, error) {
	p := &parser{src: text}
	p.skipSpace()
	if p.eof() {
		return nil, p.fail("empty input")
	}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.fail("unexpected trailing data")
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) fail(msg string) error {
	return &DecodeError{Offset: p.pos, Msg: msg}
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) value() (Value, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.fail("unexpected end of input")
	}
	switch c := p.src[p.pos]; {
	case c == '[':
		return p.array()
	case c == '"':
		return p.str()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return p.word()
	}
}

func (p *parser) array() (Value, error) {
	p.pos++ // [
	out := Array{}
	p.skipSpace()
	if !p.eof() && p.src[p.pos] == ']' {
		p.pos++
		return out, nil
	}
	for {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		if p.eof() {
			return nil, p.fail("unterminated array")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return out, nil
		default:
			return nil, p.fail("expected ',' or ']'")
		}
	}
}

// str reads a double-quoted string where "" stands for a literal quote.
func (p *parser) str() (Value, error) {
	start := p.pos
	p.pos++
	var b strings.Builder
	for !p.eof() {
		c := p.src[p.pos]
		if c == '"' {
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '"' {
				b.WriteByte('"')
				p.pos += 2
				continue
			}
			p.pos++
			return b.String(), nil
		}
		b.WriteByte(c)
		p.pos++
	}
	p.pos = start
	return nil, p.fail("unterminated string")
}

func (p *parser) number() (Value, error) {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		break
	}
	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		p.pos = start
		return nil, p.fail("invalid number")
	}
	return f, nil
}

func (p *parser) word() (Value, error) {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			p.pos++
			continue
		}
		break
	}
	switch strings.ToLower(p.src[start:p.pos]) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "any", "nil":
		return nil, nil
	}
	p.pos = start
	return nil, p.fail("unexpected token")
}
