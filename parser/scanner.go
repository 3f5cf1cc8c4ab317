package parser

import (
	"bytes"
	"strconv"
)

type tokenType int

const (
	tokDictOpen  tokenType = iota // <<
	tokDictClose                  // >>
	tokArrayOpen                  // [
	tokArrayClose                 // ]
	tokName
	tokString
	tokInt
	tokReal
	tokBool
	tokNull
	tokRef
	tokKeyword // obj, endobj, stream, trailer, xref, startxref, ...
)

type token struct {
	typ tokenType
	pos int64

	bytes []byte // tokName, tokString, tokKeyword
	hex   bool
	i     int64
	f     float64
	num   int // tokRef
	gen   int
}

// scanner tokenizes the whole input buffer. Stream payloads are not
// tokenized; the parser slices them out using the Length entry.
type scanner struct {
	data []byte
	pos  int64
}

func isWhitespace(c byte) bool {
	return c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return isWhitespace(c)
}

func (s *scanner) eof() bool { return s.pos >= int64(len(s.data)) }

func (s *scanner) byteAt(off int64) byte {
	if off < 0 || off >= int64(len(s.data)) {
		return 0
	}
	return s.data[off]
}

func (s *scanner) skipSpace() {
	for !s.eof() {
		c := s.data[s.pos]
		if isWhitespace(c) {
			s.pos++
			continue
		}
		if c == '%' {
			for !s.eof() && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
			continue
		}
		return
	}
}

func (s *scanner) next() (token, error) {
	s.skipSpace()
	if s.eof() {
		return token{}, corrupt(s.pos, "unexpected end of input")
	}
	start := s.pos
	c := s.data[s.pos]
	switch c {
	case '<':
		if s.byteAt(s.pos+1) == '<' {
			s.pos += 2
			return token{typ: tokDictOpen, pos: start}, nil
		}
		return s.scanHexString()
	case '>':
		if s.byteAt(s.pos+1) == '>' {
			s.pos += 2
			return token{typ: tokDictClose, pos: start}, nil
		}
		return token{}, corrupt(start, "stray '>'")
	case '[':
		s.pos++
		return token{typ: tokArrayOpen, pos: start}, nil
	case ']':
		s.pos++
		return token{typ: tokArrayClose, pos: start}, nil
	case '(':
		return s.scanLiteralString()
	case '/':
		return s.scanName()
	}
	if c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
		return s.scanNumberOrRef()
	}
	if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		return s.scanKeyword()
	}
	return token{}, corrupt(start, "unexpected byte 0x%02x", c)
}

func (s *scanner) scanName() (token, error) {
	start := s.pos
	s.pos++
	var out bytes.Buffer
	for !s.eof() {
		c := s.data[s.pos]
		if isDelimiter(c) {
			break
		}
		if c == '#' && s.pos+2 < int64(len(s.data)) {
			out.WriteByte(fromHex(s.data[s.pos+1])<<4 | fromHex(s.data[s.pos+2]))
			s.pos += 3
			continue
		}
		out.WriteByte(c)
		s.pos++
	}
	return token{typ: tokName, pos: start, bytes: out.Bytes()}, nil
}

func fromHex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	}
	return 0
}

func (s *scanner) scanLiteralString() (token, error) {
	start := s.pos
	s.pos++
	var buf bytes.Buffer
	depth := 1
	for {
		if s.eof() {
			return token{}, corrupt(start, "unterminated string")
		}
		c := s.data[s.pos]
		switch c {
		case '\\':
			s.pos++
			if s.eof() {
				return token{}, corrupt(start, "unterminated string")
			}
			esc := s.data[s.pos]
			switch {
			case esc == '\r':
				s.pos++
				if !s.eof() && s.data[s.pos] == '\n' {
					s.pos++
				}
			case esc == '\n':
				s.pos++
			case esc >= '0' && esc <= '7':
				val := int(esc - '0')
				s.pos++
				for k := 0; k < 2 && !s.eof(); k++ {
					d := s.data[s.pos]
					if d < '0' || d > '7' {
						break
					}
					val = val<<3 + int(d-'0')
					s.pos++
				}
				buf.WriteByte(byte(val))
			default:
				buf.WriteByte(translateEscape(esc))
				s.pos++
			}
		case '(':
			depth++
			buf.WriteByte(c)
			s.pos++
		case ')':
			depth--
			s.pos++
			if depth == 0 {
				return token{typ: tokString, pos: start, bytes: buf.Bytes()}, nil
			}
			buf.WriteByte(c)
		default:
			buf.WriteByte(c)
			s.pos++
		}
	}
}

func translateEscape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	}
	return c
}

func (s *scanner) scanHexString() (token, error) {
	start := s.pos
	s.pos++
	var nibbles []byte
	for {
		if s.eof() {
			return token{}, corrupt(start, "unterminated hex string")
		}
		c := s.data[s.pos]
		if c == '>' {
			s.pos++
			break
		}
		if !isWhitespace(c) {
			nibbles = append(nibbles, c)
		}
		s.pos++
	}
	if len(nibbles)%2 == 1 {
		nibbles = append(nibbles, '0')
	}
	out := make([]byte, 0, len(nibbles)/2)
	for i := 0; i < len(nibbles); i += 2 {
		out = append(out, fromHex(nibbles[i])<<4|fromHex(nibbles[i+1]))
	}
	return token{typ: tokString, pos: start, bytes: out, hex: true}, nil
}

func (s *scanner) scanKeyword() (token, error) {
	start := s.pos
	for !s.eof() && !isDelimiter(s.data[s.pos]) {
		s.pos++
	}
	kw := s.data[start:s.pos]
	switch string(kw) {
	case "true":
		return token{typ: tokBool, pos: start, i: 1}, nil
	case "false":
		return token{typ: tokBool, pos: start}, nil
	case "null":
		return token{typ: tokNull, pos: start}, nil
	}
	return token{typ: tokKeyword, pos: start, bytes: kw}, nil
}

// scanNumberOrRef looks ahead for the "num gen R" form and falls back
// to a plain number, restoring the position of the second number.
func (s *scanner) scanNumberOrRef() (token, error) {
	start := s.pos
	first := s.scanNumber()
	if first == "" {
		return token{}, corrupt(start, "malformed number")
	}

	save := s.pos
	s.skipSpace()
	secondStart := s.pos
	second := s.scanNumber()
	if second != "" {
		s.skipSpace()
		if !s.eof() && s.data[s.pos] == 'R' &&
			(s.pos+1 >= int64(len(s.data)) || isDelimiter(s.data[s.pos+1])) {
			s.pos++
			num, _ := strconv.Atoi(first)
			gen, _ := strconv.Atoi(second)
			return token{typ: tokRef, pos: start, num: num, gen: gen}, nil
		}
		s.pos = secondStart
	} else {
		s.pos = save
	}

	if i, err := strconv.ParseInt(first, 10, 64); err == nil {
		return token{typ: tokInt, pos: start, i: i}, nil
	}
	f, err := strconv.ParseFloat(first, 64)
	if err != nil {
		return token{}, corrupt(start, "malformed number %q", first)
	}
	return token{typ: tokReal, pos: start, f: f}, nil
}

func (s *scanner) scanNumber() string {
	start := s.pos
	digits := false
	for !s.eof() {
		c := s.data[s.pos]
		if c == '+' || c == '-' || c == '.' {
			s.pos++
			continue
		}
		if c >= '0' && c <= '9' {
			digits = true
			s.pos++
			continue
		}
		break
	}
	if !digits {
		s.pos = start
		return ""
	}
	return string(s.data[start:s.pos])
}
