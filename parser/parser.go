// Package parser implements the strict structural parser: a recursive
// descent over the scanner's token stream producing a JsonValue tree with
// insertion-ordered objects. It is shared by the whole-document path and the
// streaming adapter, which drives it one element at a time.
package parser

import (
	"fmt"

	"jsonlens/scanner"
	"jsonlens/types"
)

// ParseError reports a grammar violation with the offending token's position
// and a description of what was expected there.
type ParseError struct {
	Offset   int
	Expected string
	Got      string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: expected %s, got %s", e.Offset, e.Expected, e.Got)
}

// Parser consumes tokens from a Scanner. A Parser is single-use and not safe
// for concurrent use; each document gets its own.
type Parser struct {
	sc *scanner.Scanner
}

// New creates a Parser over the given scanner
func New(sc *scanner.Scanner) *Parser {
	return &Parser{sc: sc}
}

// ParseString strictly parses an in-memory document, requiring exactly one
// top-level value followed by end of input.
func ParseString(text string) (types.Value, error) {
	return New(scanner.NewFromString(text)).ParseDocument()
}

// ParseDocument parses one value and verifies nothing but whitespace follows
func (p *Parser) ParseDocument() (types.Value, error) {
	v, err := p.ParseValue()
	if err != nil {
		return nil, err
	}
	tok, err := p.sc.Next()
	if err != nil {
		return nil, err
	}
	if tok.Type != scanner.TokenEOF {
		return nil, &ParseError{Offset: tok.Offset, Expected: "end of input", Got: describe(tok)}
	}
	return v, nil
}

// ParseValue parses a single value starting at the current token. Exported
// so the streaming adapter can pull one element at a time.
func (p *Parser) ParseValue() (types.Value, error) {
	tok, err := p.sc.Next()
	if err != nil {
		return nil, err
	}
	return p.parseFrom(tok)
}

func (p *Parser) parseFrom(tok scanner.Token) (types.Value, error) {
	switch tok.Type {
	case scanner.TokenObjectOpen:
		return p.parseObject(tok)
	case scanner.TokenArrayOpen:
		return p.parseArray(tok)
	case scanner.TokenString:
		return types.String(tok.Text), nil
	case scanner.TokenNumber:
		n, err := types.NumberFromLiteral(tok.Text)
		if err != nil {
			return nil, &ParseError{Offset: tok.Offset, Expected: "number literal", Got: fmt.Sprintf("%q", tok.Text)}
		}
		return n, nil
	case scanner.TokenBool:
		return types.Bool(tok.Bool), nil
	case scanner.TokenNull:
		return types.Null{}, nil
	case scanner.TokenEOF:
		return nil, &ParseError{Offset: tok.Offset, Expected: "a value", Got: "end of input"}
	default:
		return nil, &ParseError{Offset: tok.Offset, Expected: "a value", Got: describe(tok)}
	}
}

// parseObject parses the members after an already-consumed '{'. Duplicate
// keys are a ParseError so the repair pipeline's duplicate-key heuristic has
// a strict failure to trigger on.
func (p *Parser) parseObject(open scanner.Token) (types.Value, error) {
	obj := types.NewObject()

	tok, err := p.sc.Next()
	if err != nil {
		return nil, err
	}
	if tok.Type == scanner.TokenObjectClose {
		return obj, nil
	}
	for {
		if tok.Type != scanner.TokenString {
			return nil, &ParseError{Offset: tok.Offset, Expected: "object key string", Got: describe(tok)}
		}
		key := tok.Text
		if obj.Has(key) {
			return nil, &ParseError{Offset: tok.Offset, Expected: "unique object key", Got: fmt.Sprintf("duplicate key %q", key)}
		}

		colon, err := p.sc.Next()
		if err != nil {
			return nil, err
		}
		if colon.Type != scanner.TokenColon {
			return nil, &ParseError{Offset: colon.Offset, Expected: "':' after object key", Got: describe(colon)}
		}

		v, err := p.ParseValue()
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)

		sep, err := p.sc.Next()
		if err != nil {
			return nil, err
		}
		switch sep.Type {
		case scanner.TokenObjectClose:
			return obj, nil
		case scanner.TokenComma:
			tok, err = p.sc.Next()
			if err != nil {
				return nil, err
			}
		default:
			return nil, &ParseError{Offset: sep.Offset, Expected: "',' or '}' after object member", Got: describe(sep)}
		}
	}
}

// parseArray parses the elements after an already-consumed '['
func (p *Parser) parseArray(open scanner.Token) (types.Value, error) {
	arr := types.Array{}

	tok, err := p.sc.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Type == scanner.TokenArrayClose {
		_, _ = p.sc.Next()
		return arr, nil
	}
	for {
		v, err := p.ParseValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)

		sep, err := p.sc.Next()
		if err != nil {
			return nil, err
		}
		switch sep.Type {
		case scanner.TokenArrayClose:
			return arr, nil
		case scanner.TokenComma:
			// next loop iteration parses the following element
		default:
			return nil, &ParseError{Offset: sep.Offset, Expected: "',' or ']' after array element", Got: describe(sep)}
		}
	}
}

func describe(tok scanner.Token) string {
	switch tok.Type {
	case scanner.TokenString:
		return fmt.Sprintf("string %q", tok.Text)
	case scanner.TokenNumber:
		return fmt.Sprintf("number %s", tok.Text)
	case scanner.TokenEOF:
		return "end of input"
	default:
		return tok.Type.String()
	}
}
