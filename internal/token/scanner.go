package token

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/mcncl/jsoncompat/internal/errors"
	"github.com/mcncl/jsoncompat/internal/models"
	"github.com/shopspring/decimal"
)

// CommentHandling selects what the Scanner does with /* */ and // comments.
type CommentHandling uint8

const (
	// CommentsDisallow treats a comment as a syntax error.
	CommentsDisallow CommentHandling = iota
	// CommentsSkip drops comments silently.
	CommentsSkip
	// CommentsAllow reports comments as Comment tokens.
	CommentsAllow
)

// SyntaxError records where and why the input stopped being valid JSON.
type SyntaxError struct {
	Offset int
	Msg    string
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

type expectation uint8

const (
	expectValue expectation = iota
	expectName
	expectColon
	expectComma
	expectEnd
)

// Scanner is a Reader over an in-memory JSON document.
type Scanner struct {
	data []byte
	pos  int

	start int
	kind  Kind
	text  string
	err   error

	comments       CommentHandling
	trailingCommas bool

	stack      []byte
	expect     expectation
	first      bool // container was just opened
	afterComma bool
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithComments sets the comment handling mode. The default is
// CommentsDisallow.
func WithComments(h CommentHandling) ScannerOption {
	return func(s *Scanner) { s.comments = h }
}

// WithTrailingCommas allows a comma before a closing bracket or brace.
func WithTrailingCommas(allow bool) ScannerOption {
	return func(s *Scanner) { s.trailingCommas = allow }
}

// NewScanner returns a Scanner positioned before the first token of data.
// A leading UTF-8 byte order mark is skipped.
func NewScanner(data []byte, opts ...ScannerOption) *Scanner {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	s := &Scanner{data: data}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadScanner reads r to the end and returns a Scanner over its content.
func ReadScanner(r io.Reader, opts ...ScannerOption) (*Scanner, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewScanner(data, opts...), nil
}

func (s *Scanner) Kind() Kind   { return s.kind }
func (s *Scanner) Err() error   { return s.err }
func (s *Scanner) Pos() int     { return s.start }
func (s *Scanner) Text() string { return s.text }

// Next implements Reader.
func (s *Scanner) Next() bool {
	if s.err != nil {
		return false
	}
	for {
		s.skipWhitespace()
		s.start = s.pos
		if s.pos >= len(s.data) {
			return s.atEOF()
		}
		c := s.data[s.pos]

		if c == '/' {
			if !s.scanComment() {
				return false
			}
			if s.comments == CommentsAllow {
				s.kind = Comment
				return true
			}
			continue
		}

		switch s.expect {
		case expectEnd:
			return s.fail(errors.ErrMultipleJSON, "unexpected data after the root value")
		case expectColon:
			if c != ':' {
				return s.fail(errors.ErrInvalidJSON, fmt.Sprintf("expecting ':' after property name, found %q", c))
			}
			s.pos++
			s.expect = expectValue
			continue
		case expectComma:
			switch c {
			case ',':
				s.pos++
				s.afterComma = true
				if s.top() == '{' {
					s.expect = expectName
				} else {
					s.expect = expectValue
				}
				continue
			case ']', '}':
				return s.close(c)
			default:
				return s.fail(errors.ErrInvalidJSON, fmt.Sprintf("expecting ',' or end of container, found %q", c))
			}
		case expectName:
			switch c {
			case '"':
				if !s.scanString() {
					return false
				}
				s.kind = PropertyName
				s.expect = expectColon
				s.first, s.afterComma = false, false
				return true
			case '}':
				if s.first || (s.afterComma && s.trailingCommas) {
					return s.close(c)
				}
			}
			return s.fail(errors.ErrInvalidJSON, fmt.Sprintf("expecting property name, found %q", c))
		default:
			return s.scanValue(c)
		}
	}
}

func (s *Scanner) atEOF() bool {
	s.kind = None
	s.text = ""
	if s.expect == expectEnd || (len(s.stack) == 0 && s.expect == expectValue) {
		return false
	}
	return s.fail(errors.ErrUnexpectedEnd, "unexpected end of JSON input")
}

func (s *Scanner) scanValue(c byte) bool {
	switch {
	case c == '{':
		s.pos++
		s.open(c)
		s.kind = BeginObject
		s.expect = expectName
		return true
	case c == '[':
		s.pos++
		s.open(c)
		s.kind = BeginArray
		s.expect = expectValue
		return true
	case c == ']':
		if s.top() == '[' && (s.first || (s.afterComma && s.trailingCommas)) {
			return s.close(c)
		}
		return s.fail(errors.ErrInvalidJSON, "expecting value, found ']'")
	case c == '"':
		if !s.scanString() {
			return false
		}
		s.kind = String
	case c == 't':
		if !s.scanLiteral("true") {
			return false
		}
		s.kind = True
	case c == 'f':
		if !s.scanLiteral("false") {
			return false
		}
		s.kind = False
	case c == 'n':
		if !s.scanLiteral("null") {
			return false
		}
		s.kind = Null
	case c == '-' || (c >= '0' && c <= '9'):
		if !s.scanNumber() {
			return false
		}
		s.kind = Number
	default:
		return s.fail(errors.ErrInvalidJSON, fmt.Sprintf("expecting value, found %q", c))
	}
	s.valueDone()
	return true
}

func (s *Scanner) open(c byte) {
	s.stack = append(s.stack, c)
	s.first = true
	s.afterComma = false
	s.text = ""
}

func (s *Scanner) close(c byte) bool {
	want := byte('[')
	s.kind = EndArray
	if c == '}' {
		want = '{'
		s.kind = EndObject
	}
	if s.top() != want {
		return s.fail(errors.ErrInvalidJSON, fmt.Sprintf("unexpected %q", c))
	}
	s.pos++
	s.stack = s.stack[:len(s.stack)-1]
	s.text = ""
	s.valueDone()
	return true
}

func (s *Scanner) valueDone() {
	s.first, s.afterComma = false, false
	if len(s.stack) == 0 {
		s.expect = expectEnd
	} else {
		s.expect = expectComma
	}
}

func (s *Scanner) top() byte {
	if len(s.stack) == 0 {
		return 0
	}
	return s.stack[len(s.stack)-1]
}

func (s *Scanner) fail(sentinel error, msg string) bool {
	s.kind = None
	s.err = &SyntaxError{Offset: s.pos, Msg: msg, Err: sentinel}
	return false
}

func (s *Scanner) skipWhitespace() {
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *Scanner) scanComment() bool {
	if s.comments == CommentsDisallow {
		return s.fail(errors.ErrInvalidJSON, "comments are not allowed")
	}
	if s.pos+1 >= len(s.data) {
		return s.fail(errors.ErrInvalidJSON, "invalid comment")
	}
	switch s.data[s.pos+1] {
	case '/':
		body := s.pos + 2
		end := bytes.IndexByte(s.data[body:], '\n')
		if end < 0 {
			s.pos = len(s.data)
			s.text = string(s.data[body:])
		} else {
			s.pos = body + end + 1
			s.text = string(bytes.TrimSuffix(s.data[body:body+end], []byte{'\r'}))
		}
		return true
	case '*':
		body := s.pos + 2
		end := bytes.Index(s.data[body:], []byte("*/"))
		if end < 0 {
			s.pos = len(s.data)
			return s.fail(errors.ErrUnexpectedEnd, "unterminated comment")
		}
		s.text = string(s.data[body : body+end])
		s.pos = body + end + 2
		return true
	default:
		return s.fail(errors.ErrInvalidJSON, "invalid comment")
	}
}

func (s *Scanner) scanLiteral(lit string) bool {
	if !bytes.HasPrefix(s.data[s.pos:], []byte(lit)) {
		if len(s.data)-s.pos < len(lit) && bytes.HasPrefix([]byte(lit), s.data[s.pos:]) {
			return s.fail(errors.ErrUnexpectedEnd, "unexpected end of JSON input")
		}
		return s.fail(errors.ErrInvalidJSON, "expecting "+lit)
	}
	s.pos += len(lit)
	s.text = lit
	return s.delimited()
}

// delimited checks that a literal or number is followed by a byte that may
// legally end it.
func (s *Scanner) delimited() bool {
	if s.pos >= len(s.data) {
		return true
	}
	switch s.data[s.pos] {
	case ' ', '\t', '\n', '\r', ',', ']', '}', '/':
		return true
	}
	return s.fail(errors.ErrInvalidJSON, fmt.Sprintf("invalid character %q after value", s.data[s.pos]))
}

func (s *Scanner) scanNumber() bool {
	start := s.pos
	i := s.pos
	if s.data[i] == '-' {
		i++
	}
	digits := func() int {
		n := 0
		for i < len(s.data) && s.data[i] >= '0' && s.data[i] <= '9' {
			i++
			n++
		}
		return n
	}

	if i < len(s.data) && s.data[i] == '0' {
		i++
	} else if digits() == 0 {
		s.pos = i
		return s.fail(errors.ErrInvalidJSON, "invalid number")
	}
	if i < len(s.data) && s.data[i] == '.' {
		i++
		if digits() == 0 {
			s.pos = i
			return s.fail(errors.ErrInvalidJSON, "invalid number: expecting digit after '.'")
		}
	}
	if i < len(s.data) && (s.data[i] == 'e' || s.data[i] == 'E') {
		i++
		if i < len(s.data) && (s.data[i] == '+' || s.data[i] == '-') {
			i++
		}
		if digits() == 0 {
			s.pos = i
			return s.fail(errors.ErrInvalidJSON, "invalid number: expecting exponent digits")
		}
	}

	s.pos = i
	s.text = string(s.data[start:i])
	return s.delimited()
}

func (s *Scanner) scanString() bool {
	i := s.pos + 1
	// Fast path: no escapes.
	for i < len(s.data) {
		c := s.data[i]
		if c == '"' {
			raw := s.data[s.pos+1 : i]
			if !utf8.Valid(raw) {
				return s.fail(errors.ErrInvalidJSON, "invalid UTF-8 in string")
			}
			s.text = string(raw)
			s.pos = i + 1
			return true
		}
		if c == '\\' {
			break
		}
		if c < 0x20 {
			s.pos = i
			return s.fail(errors.ErrInvalidJSON, "invalid control character in string")
		}
		i++
	}
	if i >= len(s.data) {
		s.pos = i
		return s.fail(errors.ErrUnexpectedEnd, "unterminated string")
	}

	buf := make([]byte, 0, i-s.pos+16)
	buf = append(buf, s.data[s.pos+1:i]...)
	for i < len(s.data) {
		c := s.data[i]
		switch {
		case c == '"':
			if !utf8.Valid(buf) {
				return s.fail(errors.ErrInvalidJSON, "invalid UTF-8 in string")
			}
			s.text = string(buf)
			s.pos = i + 1
			return true
		case c == '\\':
			if i+1 >= len(s.data) {
				s.pos = i
				return s.fail(errors.ErrUnexpectedEnd, "unterminated string")
			}
			switch e := s.data[i+1]; e {
			case '"', '\\', '/':
				buf = append(buf, e)
				i += 2
			case 'b':
				buf = append(buf, '\b')
				i += 2
			case 'f':
				buf = append(buf, '\f')
				i += 2
			case 'n':
				buf = append(buf, '\n')
				i += 2
			case 'r':
				buf = append(buf, '\r')
				i += 2
			case 't':
				buf = append(buf, '\t')
				i += 2
			case 'u':
				r, n, ok := s.unicodeEscape(i)
				if !ok {
					s.pos = i
					return s.fail(errors.ErrInvalidJSON, "invalid unicode escape")
				}
				buf = utf8.AppendRune(buf, r)
				i += n
			default:
				s.pos = i
				return s.fail(errors.ErrInvalidJSON, fmt.Sprintf("invalid escape '\\%c'", e))
			}
		case c < 0x20:
			s.pos = i
			return s.fail(errors.ErrInvalidJSON, "invalid control character in string")
		default:
			buf = append(buf, c)
			i++
		}
	}
	s.pos = i
	return s.fail(errors.ErrUnexpectedEnd, "unterminated string")
}

// unicodeEscape decodes \uXXXX at i, joining a following low surrogate
// escape when present. Unpaired surrogates decode to U+FFFD.
func (s *Scanner) unicodeEscape(i int) (rune, int, bool) {
	r, ok := s.hex4(i + 2)
	if !ok {
		return 0, 0, false
	}
	if !utf16.IsSurrogate(r) {
		return r, 6, true
	}
	if i+12 <= len(s.data) && s.data[i+6] == '\\' && s.data[i+7] == 'u' {
		if r2, ok := s.hex4(i + 8); ok {
			if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
				return dec, 12, true
			}
		}
	}
	return utf8.RuneError, 6, true
}

func (s *Scanner) hex4(i int) (rune, bool) {
	if i+4 > len(s.data) {
		return 0, false
	}
	n, err := strconv.ParseUint(string(s.data[i:i+4]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(n), true
}

// Int64 implements Reader.
func (s *Scanner) Int64() (int64, bool) {
	if s.kind != Number {
		return 0, false
	}
	n, err := strconv.ParseInt(s.text, 10, 64)
	return n, err == nil
}

// Uint64 implements Reader.
func (s *Scanner) Uint64() (uint64, bool) {
	if s.kind != Number {
		return 0, false
	}
	n, err := strconv.ParseUint(s.text, 10, 64)
	return n, err == nil
}

// Decimal implements Reader.
func (s *Scanner) Decimal() (decimal.Decimal, error) {
	if s.kind != Number {
		return decimal.Decimal{}, fmt.Errorf("%s token is not a number: %w", s.kind, errors.ErrUnexpectedToken)
	}
	d, err := decimal.NewFromString(s.text)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%q: %w", s.text, errors.ErrUnrepresentable)
	}
	return d, nil
}

// Float64 implements Reader. Literals beyond the float64 range fail rather
// than becoming infinities.
func (s *Scanner) Float64() (float64, error) {
	if s.kind != Number {
		return 0, fmt.Errorf("%s token is not a number: %w", s.kind, errors.ErrUnexpectedToken)
	}
	f, err := strconv.ParseFloat(s.text, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s.text, errors.ErrUnrepresentable)
	}
	return f, nil
}

// DateTime implements Reader.
func (s *Scanner) DateTime() (time.Time, models.TimeKind, bool) {
	if s.kind != String {
		return time.Time{}, models.Unspecified, false
	}
	return ParseDateTime(s.text)
}

// DateTimeOffset implements Reader.
func (s *Scanner) DateTimeOffset() (time.Time, bool) {
	if s.kind != String {
		return time.Time{}, false
	}
	return ParseDateTimeOffset(s.text)
}
