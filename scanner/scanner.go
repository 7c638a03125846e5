// Package scanner implements the lexical layer of the engine: a
// character-by-character tokenizer over JSON text. It supports in-memory and
// incremental sources behind the same grammar so whole-document parsing and
// streaming share identical token semantics.
package scanner

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// TokenType identifies the lexical class of a Token
type TokenType int

const (
	TokenObjectOpen TokenType = iota // {
	TokenObjectClose                 // }
	TokenArrayOpen                   // [
	TokenArrayClose                  // ]
	TokenColon                       // :
	TokenComma                       // ,
	TokenString                      // "..." with escapes decoded
	TokenNumber                      // raw literal kept in Text
	TokenBool                        // true / false
	TokenNull                        // null
	TokenEOF                         // end of input
)

// String returns the string representation of the TokenType
func (t TokenType) String() string {
	switch t {
	case TokenObjectOpen:
		return "'{'"
	case TokenObjectClose:
		return "'}'"
	case TokenArrayOpen:
		return "'['"
	case TokenArrayClose:
		return "']'"
	case TokenColon:
		return "':'"
	case TokenComma:
		return "','"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenBool:
		return "bool"
	case TokenNull:
		return "null"
	case TokenEOF:
		return "end of input"
	default:
		return "unknown"
	}
}

// Token is one lexical unit. Offset and End are byte positions in the input;
// Text holds the decoded content for strings and the raw literal for numbers.
type Token struct {
	Type   TokenType
	Offset int
	End    int
	Text   string
	Bool   bool
}

// LexError reports a lexical fault at a byte offset
type LexError struct {
	Offset int
	Reason string
}

// Error implements the error interface
func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s", e.Offset, e.Reason)
}

// Scanner produces a lazy token sequence from a Source. It has no side
// effects beyond consuming the source.
type Scanner struct {
	src    Source
	peeked *Token
}

// New creates a Scanner over the given source
func New(src Source) *Scanner {
	return &Scanner{src: src}
}

// NewFromString creates a Scanner over an in-memory document
func NewFromString(data string) *Scanner {
	return New(NewStringSource(data))
}

// Offset returns the current byte position in the input
func (s *Scanner) Offset() int {
	if s.peeked != nil {
		return s.peeked.Offset
	}
	return s.src.Offset()
}

// Peek returns the next token without consuming it
func (s *Scanner) Peek() (Token, error) {
	if s.peeked == nil {
		tok, err := s.scan()
		if err != nil {
			return tok, err
		}
		s.peeked = &tok
	}
	return *s.peeked, nil
}

// Next consumes and returns the next token. At end of input it returns a
// TokenEOF token, not an error; errors are reserved for lexical faults and
// source read failures.
func (s *Scanner) Next() (Token, error) {
	if s.peeked != nil {
		tok := *s.peeked
		s.peeked = nil
		return tok, nil
	}
	return s.scan()
}

func (s *Scanner) scan() (Token, error) {
	if err := s.skipWhitespace(); err != nil {
		return Token{}, err
	}
	start := s.src.Offset()
	c, err := s.src.Peek()
	if err == io.EOF {
		return Token{Type: TokenEOF, Offset: start, End: start}, nil
	}
	if err != nil {
		return Token{}, err
	}

	switch {
	case c == '{':
		return s.single(TokenObjectOpen)
	case c == '}':
		return s.single(TokenObjectClose)
	case c == '[':
		return s.single(TokenArrayOpen)
	case c == ']':
		return s.single(TokenArrayClose)
	case c == ':':
		return s.single(TokenColon)
	case c == ',':
		return s.single(TokenComma)
	case c == '"':
		return s.scanString()
	case c == '-' || (c >= '0' && c <= '9'):
		return s.scanNumber()
	case c == 't':
		return s.scanLiteral("true", Token{Type: TokenBool, Bool: true})
	case c == 'f':
		return s.scanLiteral("false", Token{Type: TokenBool, Bool: false})
	case c == 'n':
		return s.scanLiteral("null", Token{Type: TokenNull})
	default:
		return Token{}, &LexError{Offset: start, Reason: fmt.Sprintf("unexpected character %q", c)}
	}
}

func (s *Scanner) skipWhitespace() error {
	for {
		c, err := s.src.Peek()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return nil
		}
		if _, err := s.src.Next(); err != nil {
			return err
		}
	}
}

func (s *Scanner) single(t TokenType) (Token, error) {
	start := s.src.Offset()
	c, err := s.src.Next()
	if err != nil {
		return Token{}, err
	}
	return Token{Type: t, Offset: start, End: start + 1, Text: string(c)}, nil
}

// scanString consumes a double-quoted string literal, decoding standard
// escapes. An unterminated string or unrecognized escape is a LexError, never
// a silent truncation.
func (s *Scanner) scanString() (Token, error) {
	start := s.src.Offset()
	if _, err := s.src.Next(); err != nil { // opening quote
		return Token{}, err
	}
	var sb strings.Builder
	for {
		c, err := s.src.Next()
		if err == io.EOF {
			return Token{}, &LexError{Offset: start, Reason: "unterminated string literal"}
		}
		if err != nil {
			return Token{}, err
		}
		switch {
		case c == '"':
			return Token{Type: TokenString, Offset: start, End: s.src.Offset(), Text: sb.String()}, nil
		case c == '\\':
			if err := s.scanEscape(&sb); err != nil {
				return Token{}, err
			}
		case c < 0x20:
			return Token{}, &LexError{Offset: s.src.Offset() - 1, Reason: fmt.Sprintf("raw control character 0x%02x in string literal", c)}
		default:
			sb.WriteByte(c)
		}
	}
}

func (s *Scanner) scanEscape(sb *strings.Builder) error {
	pos := s.src.Offset() - 1
	c, err := s.src.Next()
	if err == io.EOF {
		return &LexError{Offset: pos, Reason: "unterminated escape sequence"}
	}
	if err != nil {
		return err
	}
	switch c {
	case '"', '\\', '/':
		sb.WriteByte(c)
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'u':
		r, err := s.scanHexRune(pos)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			// A high surrogate must be followed by \uXXXX with the low half
			if next, err := s.src.Peek(); err == nil && next == '\\' {
				if _, err := s.src.Next(); err != nil {
					return err
				}
				c2, err := s.src.Next()
				if err != nil || c2 != 'u' {
					return &LexError{Offset: pos, Reason: "invalid surrogate pair escape"}
				}
				r2, err := s.scanHexRune(pos)
				if err != nil {
					return err
				}
				r = utf16.DecodeRune(r, r2)
			} else {
				r = utf8.RuneError
			}
		}
		sb.WriteRune(r)
	default:
		return &LexError{Offset: pos, Reason: fmt.Sprintf("unrecognized escape sequence \\%c", c)}
	}
	return nil
}

func (s *Scanner) scanHexRune(escStart int) (rune, error) {
	var r rune
	for i := 0; i < 4; i++ {
		c, err := s.src.Next()
		if err != nil {
			return 0, &LexError{Offset: escStart, Reason: "truncated \\u escape"}
		}
		var d rune
		switch {
		case c >= '0' && c <= '9':
			d = rune(c - '0')
		case c >= 'a' && c <= 'f':
			d = rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = rune(c-'A') + 10
		default:
			return 0, &LexError{Offset: escStart, Reason: fmt.Sprintf("invalid hex digit %q in \\u escape", c)}
		}
		r = r<<4 | d
	}
	return r, nil
}

// scanNumber consumes a number literal, validating the JSON number grammar.
// The raw text is preserved so the parser can keep the integer/float
// distinction and the renderer can round-trip the literal.
func (s *Scanner) scanNumber() (Token, error) {
	start := s.src.Offset()
	var sb strings.Builder

	consume := func() error {
		c, err := s.src.Next()
		if err != nil {
			return err
		}
		sb.WriteByte(c)
		return nil
	}
	digits := func() (int, error) {
		n := 0
		for {
			c, err := s.src.Peek()
			if err == io.EOF || err == nil && (c < '0' || c > '9') {
				return n, nil
			}
			if err != nil {
				return n, err
			}
			if err := consume(); err != nil {
				return n, err
			}
			n++
		}
	}

	if c, _ := s.src.Peek(); c == '-' {
		if err := consume(); err != nil {
			return Token{}, err
		}
	}
	c, err := s.src.Peek()
	if err != nil {
		return Token{}, &LexError{Offset: start, Reason: "truncated number literal"}
	}
	if c == '0' {
		if err := consume(); err != nil {
			return Token{}, err
		}
		// A leading zero may not be followed by further digits
		if next, err := s.src.Peek(); err == nil && next >= '0' && next <= '9' {
			return Token{}, &LexError{Offset: start, Reason: "leading zero in number literal"}
		}
	} else if c >= '1' && c <= '9' {
		if _, err := digits(); err != nil {
			return Token{}, err
		}
	} else {
		return Token{}, &LexError{Offset: start, Reason: fmt.Sprintf("invalid number start %q", c)}
	}

	if c, err := s.src.Peek(); err == nil && c == '.' {
		if err := consume(); err != nil {
			return Token{}, err
		}
		if n, err := digits(); err != nil || n == 0 {
			return Token{}, &LexError{Offset: start, Reason: "missing digits after decimal point"}
		}
	}
	if c, err := s.src.Peek(); err == nil && (c == 'e' || c == 'E') {
		if err := consume(); err != nil {
			return Token{}, err
		}
		if c, err := s.src.Peek(); err == nil && (c == '+' || c == '-') {
			if err := consume(); err != nil {
				return Token{}, err
			}
		}
		if n, err := digits(); err != nil || n == 0 {
			return Token{}, &LexError{Offset: start, Reason: "missing digits in exponent"}
		}
	}

	return Token{Type: TokenNumber, Offset: start, End: s.src.Offset(), Text: sb.String()}, nil
}

func (s *Scanner) scanLiteral(want string, tok Token) (Token, error) {
	start := s.src.Offset()
	for i := 0; i < len(want); i++ {
		c, err := s.src.Next()
		if err != nil || c != want[i] {
			return Token{}, &LexError{Offset: start, Reason: fmt.Sprintf("invalid literal, expected %q", want)}
		}
	}
	tok.Offset = start
	tok.End = s.src.Offset()
	tok.Text = want
	return tok, nil
}
