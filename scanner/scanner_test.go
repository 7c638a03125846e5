package scanner

import (
	"strings"
	"testing"
)

func collectTokens(t *testing.T, input string) []Token {
	t.Helper()
	sc := NewFromString(input)
	var toks []Token
	for {
		tok, err := sc.Next()
		if err != nil {
			t.Fatalf("unexpected error scanning %q: %v", input, err)
		}
		if tok.Type == TokenEOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestScanTokenSequence(t *testing.T) {
	toks := collectTokens(t, `{"a": [1, true, null, "x"]}`)

	want := []TokenType{
		TokenObjectOpen, TokenString, TokenColon, TokenArrayOpen,
		TokenNumber, TokenComma, TokenBool, TokenComma, TokenNull,
		TokenComma, TokenString, TokenArrayClose, TokenObjectClose,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, tok := range toks {
		if tok.Type != want[i] {
			t.Errorf("token %d: got %s, want %s", i, tok.Type, want[i])
		}
	}
}

func TestScanStringEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple escapes", `"a\nb\tc"`, "a\nb\tc"},
		{"quote and backslash", `"say \"hi\" \\ done"`, `say "hi" \ done`},
		{"solidus", `"a\/b"`, "a/b"},
		{"unicode escape", `"\u0041\u00e9"`, "Aé"},
		{"surrogate pair", `"\ud83d\ude00"`, "😀"},
		{"backspace and formfeed", `"\b\f"`, "\b\f"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := collectTokens(t, tt.input)
			if len(toks) != 1 || toks[0].Type != TokenString {
				t.Fatalf("expected single string token, got %v", toks)
			}
			if toks[0].Text != tt.want {
				t.Errorf("got %q, want %q", toks[0].Text, tt.want)
			}
		})
	}
}

func TestScanNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"-12", "-12"},
		{"3.25", "3.25"},
		{"1e10", "1e10"},
		{"-2.5E-3", "-2.5E-3"},
	}
	for _, tt := range tests {
		toks := collectTokens(t, tt.input)
		if len(toks) != 1 || toks[0].Type != TokenNumber {
			t.Fatalf("%q: expected single number token, got %v", tt.input, toks)
		}
		if toks[0].Text != tt.want {
			t.Errorf("%q: got raw %q, want %q", tt.input, toks[0].Text, tt.want)
		}
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `"abc`},
		{"unknown escape", `"a\qb"`},
		{"truncated unicode escape", `"\u12"`},
		{"raw control character", "\"a\nb\""},
		{"leading zero", `01`},
		{"missing fraction digits", `1.`},
		{"missing exponent digits", `1e`},
		{"stray character", `@`},
		{"bad literal", `tru`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := NewFromString(tt.input)
			for {
				tok, err := sc.Next()
				if err != nil {
					lexErr, ok := err.(*LexError)
					if !ok {
						t.Fatalf("expected *LexError, got %T: %v", err, err)
					}
					if lexErr.Offset < 0 {
						t.Errorf("lex error missing offset: %v", lexErr)
					}
					return
				}
				if tok.Type == TokenEOF {
					t.Fatalf("input %q scanned without error", tt.input)
				}
			}
		})
	}
}

func TestTokenOffsets(t *testing.T) {
	toks := collectTokens(t, ` { "ab" : 12 }`)
	// offsets: '{'=1, "ab"=3..7, ':'=8, 12=10..12, '}'=13
	wantOffsets := []int{1, 3, 8, 10, 13}
	for i, tok := range toks {
		if tok.Offset != wantOffsets[i] {
			t.Errorf("token %d (%s): offset %d, want %d", i, tok.Type, tok.Offset, wantOffsets[i])
		}
	}
	if toks[1].End != 7 {
		t.Errorf("string token end %d, want 7", toks[1].End)
	}
}

func TestReaderSourceMatchesStringSource(t *testing.T) {
	input := `{"role": "user", "content": "hello\nworld", "n": [1, 2, 3]}`
	fromString := collectTokens(t, input)

	sc := New(NewReaderSource(strings.NewReader(input)))
	var fromReader []Token
	for {
		tok, err := sc.Next()
		if err != nil {
			t.Fatalf("reader source error: %v", err)
		}
		if tok.Type == TokenEOF {
			break
		}
		fromReader = append(fromReader, tok)
	}

	if len(fromString) != len(fromReader) {
		t.Fatalf("token count mismatch: %d vs %d", len(fromString), len(fromReader))
	}
	for i := range fromString {
		if fromString[i] != fromReader[i] {
			t.Errorf("token %d differs: %+v vs %+v", i, fromString[i], fromReader[i])
		}
	}
}
