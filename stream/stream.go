// Package stream implements the streaming adapter: incremental tokenization
// over the scanner's grammar yielding top-level array elements or object
// entries one at a time, so memory stays bounded by the largest single
// element instead of the whole document.
//
// Streaming never invokes the repair pipeline; a malformed streamed document
// surfaces an Error at the offending byte offset and halts iteration.
package stream

import (
	"fmt"
	"io"

	"jsonlens/detector"
	"jsonlens/parser"
	"jsonlens/scanner"
	"jsonlens/types"
)

// Error reports an I/O failure or lexical/grammar fault mid-stream with the
// byte offset it occurred at.
type Error struct {
	Offset int
	Err    error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("stream error at byte %d: %v", e.Offset, e.Err)
}

// Unwrap returns the underlying fault
func (e *Error) Unwrap() error {
	return e.Err
}

// Element is one streamed unit: a top-level array element or object entry,
// already converted to a JsonValue and classified.
type Element struct {
	Index  int
	Key    string // set for top-level object entries
	Value  types.Value
	Format types.ConversationFormat
}

// Handler consumes streamed elements. Returning an error halts the stream
// and is propagated to the Process caller.
type Handler func(Element) error

// Summary describes a completed (or halted) stream
type Summary struct {
	Format   types.ConversationFormat `json:"format"`
	Elements int                      `json:"elements"`
	Mixed    bool                     `json:"mixed"`
	Bytes    int                      `json:"bytes"`
}

// Process incrementally tokenizes r, invoking handler for each completed
// top-level element. The document format is assumed from the first element
// and re-validated lazily: an element violating the assumed format's
// required keys degrades the remaining stream to Generic handling and marks
// the summary mixed, rather than raising a hard error.
func Process(r io.Reader, handler Handler) (*Summary, error) {
	sc := scanner.New(scanner.NewReaderSource(r))
	p := parser.New(sc)
	summary := &Summary{Format: types.FormatGeneric}

	finish := func(err error) (*Summary, error) {
		summary.Bytes = sc.Offset()
		return summary, err
	}

	first, err := sc.Peek()
	if err != nil {
		return finish(wrap(sc, err))
	}

	switch first.Type {
	case scanner.TokenArrayOpen:
		if err := processArray(sc, p, handler, summary); err != nil {
			return finish(err)
		}
	case scanner.TokenObjectOpen:
		if err := processObject(sc, p, handler, summary); err != nil {
			return finish(err)
		}
	case scanner.TokenEOF:
		return finish(&Error{Offset: first.Offset, Err: fmt.Errorf("empty input")})
	default:
		// Scalar root: one Generic element
		v, err := p.ParseValue()
		if err != nil {
			return finish(wrap(sc, err))
		}
		if err := expectEOF(sc); err != nil {
			return finish(err)
		}
		summary.Elements = 1
		if err := handler(Element{Index: 0, Value: v, Format: types.FormatGeneric}); err != nil {
			return finish(err)
		}
	}
	return finish(nil)
}

func processArray(sc *scanner.Scanner, p *parser.Parser, handler Handler, summary *Summary) error {
	if _, err := sc.Next(); err != nil { // '['
		return wrapTok(err)
	}

	tok, err := sc.Peek()
	if err != nil {
		return wrapTok(err)
	}
	if tok.Type == scanner.TokenArrayClose {
		_, _ = sc.Next()
		return expectEOF(sc)
	}

	index := 0
	degraded := false
	for {
		v, err := p.ParseValue()
		if err != nil {
			return wrapTok(err)
		}

		elementFormat := summary.Format
		if index == 0 {
			// Format is inferred from the first element, assuming homogeneity
			summary.Format = detector.DetectElement(v)
			elementFormat = summary.Format
		} else if !degraded && !detector.MatchesFormat(v, summary.Format) {
			summary.Mixed = true
			degraded = true
		}
		if degraded {
			elementFormat = types.FormatGeneric
		}

		if err := handler(Element{Index: index, Value: v, Format: elementFormat}); err != nil {
			return err
		}
		summary.Elements++
		index++

		sep, err := sc.Next()
		if err != nil {
			return wrapTok(err)
		}
		switch sep.Type {
		case scanner.TokenArrayClose:
			return expectEOF(sc)
		case scanner.TokenComma:
			// next iteration parses the following element
		default:
			return &Error{Offset: sep.Offset, Err: fmt.Errorf("expected ',' or ']' after array element, got %s", sep.Type)}
		}
	}
}

func processObject(sc *scanner.Scanner, p *parser.Parser, handler Handler, summary *Summary) error {
	if _, err := sc.Next(); err != nil { // '{'
		return wrapTok(err)
	}

	tok, err := sc.Next()
	if err != nil {
		return wrapTok(err)
	}
	if tok.Type == scanner.TokenObjectClose {
		return expectEOF(sc)
	}

	index := 0
	for {
		if tok.Type != scanner.TokenString {
			return &Error{Offset: tok.Offset, Err: fmt.Errorf("expected object key string, got %s", tok.Type)}
		}
		key := tok.Text

		colon, err := sc.Next()
		if err != nil {
			return wrapTok(err)
		}
		if colon.Type != scanner.TokenColon {
			return &Error{Offset: colon.Offset, Err: fmt.Errorf("expected ':' after object key, got %s", colon.Type)}
		}

		v, err := p.ParseValue()
		if err != nil {
			return wrapTok(err)
		}

		// A chat_history entry of turn objects marks the wrapper shape
		elementFormat := types.FormatGeneric
		if key == "chat_history" {
			if arr, ok := v.(types.Array); ok && len(arr) > 0 {
				allTurns := true
				for _, el := range arr {
					if !detector.IsTurnElement(el) {
						allTurns = false
						break
					}
				}
				if allTurns {
					elementFormat = types.FormatChatHistoryWrapper
					summary.Format = types.FormatChatHistoryWrapper
				}
			}
		}

		if err := handler(Element{Index: index, Key: key, Value: v, Format: elementFormat}); err != nil {
			return err
		}
		summary.Elements++
		index++

		sep, err := sc.Next()
		if err != nil {
			return wrapTok(err)
		}
		switch sep.Type {
		case scanner.TokenObjectClose:
			return expectEOF(sc)
		case scanner.TokenComma:
			tok, err = sc.Next()
			if err != nil {
				return wrapTok(err)
			}
		default:
			return &Error{Offset: sep.Offset, Err: fmt.Errorf("expected ',' or '}' after object entry, got %s", sep.Type)}
		}
	}
}

func expectEOF(sc *scanner.Scanner) error {
	tok, err := sc.Next()
	if err != nil {
		return wrapTok(err)
	}
	if tok.Type != scanner.TokenEOF {
		return &Error{Offset: tok.Offset, Err: fmt.Errorf("unexpected trailing %s after document", tok.Type)}
	}
	return nil
}

// wrapTok converts scanner/parser faults into stream Errors, reusing the
// positional context they already carry.
func wrapTok(err error) error {
	switch e := err.(type) {
	case *Error:
		return e
	case *scanner.LexError:
		return &Error{Offset: e.Offset, Err: e}
	case *parser.ParseError:
		return &Error{Offset: e.Offset, Err: e}
	default:
		return &Error{Offset: -1, Err: err}
	}
}

func wrap(sc *scanner.Scanner, err error) error {
	if serr := wrapTok(err); serr != nil {
		if e, ok := serr.(*Error); ok && e.Offset < 0 && sc != nil {
			e.Offset = sc.Offset()
		}
		return serr
	}
	return nil
}
