package scanner

import (
	"bufio"
	"io"
)

// Source yields input characters one at a time with single-byte lookahead.
// Both sources implement the same contract so the strict parser and the
// streaming adapter share one token grammar.
type Source interface {
	// Next consumes and returns the next byte, or io.EOF at end of input
	Next() (byte, error)
	// Peek returns the next byte without consuming it, or io.EOF at end of input
	Peek() (byte, error)
	// Offset returns the number of bytes consumed so far
	Offset() int
}

// stringSource reads from an in-memory document
type stringSource struct {
	data string
	pos  int
}

// NewStringSource wraps an in-memory document as a Source
func NewStringSource(data string) Source {
	return &stringSource{data: data}
}

func (s *stringSource) Next() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

func (s *stringSource) Peek() (byte, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}
	return s.data[s.pos], nil
}

func (s *stringSource) Offset() int {
	return s.pos
}

// readerSource pulls characters incrementally from a bounded buffer, for
// documents too large to hold in memory.
type readerSource struct {
	r   *bufio.Reader
	pos int
}

// NewReaderSource wraps an io.Reader as an incremental Source.
// 64KB initial buffer handles large string literals without reallocation.
func NewReaderSource(r io.Reader) Source {
	return &readerSource{r: bufio.NewReaderSize(r, 64*1024)}
}

func (s *readerSource) Next() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, err
	}
	s.pos++
	return b, nil
}

func (s *readerSource) Peek() (byte, error) {
	buf, err := s.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (s *readerSource) Offset() int {
	return s.pos
}
