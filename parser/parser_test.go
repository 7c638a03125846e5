package parser

import (
	"strings"
	"testing"

	"jsonlens/types"
)

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, v types.Value)
	}{
		{"null", `null`, func(t *testing.T, v types.Value) {
			if v.Kind() != types.KindNull {
				t.Errorf("kind %s, want null", v.Kind())
			}
		}},
		{"true", `true`, func(t *testing.T, v types.Value) {
			if b, ok := v.(types.Bool); !ok || !bool(b) {
				t.Errorf("got %v, want true", v)
			}
		}},
		{"string", `"hi"`, func(t *testing.T, v types.Value) {
			if s, ok := v.(types.String); !ok || s != "hi" {
				t.Errorf("got %v, want \"hi\"", v)
			}
		}},
		{"integer", `42`, func(t *testing.T, v types.Value) {
			n, ok := v.(types.Number)
			if !ok || !n.IsInt || n.Int != 42 {
				t.Errorf("got %+v, want integer 42", v)
			}
		}},
		{"float", `1.5`, func(t *testing.T, v types.Value) {
			n, ok := v.(types.Number)
			if !ok || n.IsInt || n.Float != 1.5 {
				t.Errorf("got %+v, want float 1.5", v)
			}
		}},
		{"large integer falls back to float", `92233720368547758080`, func(t *testing.T, v types.Value) {
			n, ok := v.(types.Number)
			if !ok || n.IsInt {
				t.Errorf("got %+v, want float fallback", v)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseString(tt.input)
			if err != nil {
				t.Fatalf("ParseString(%q): %v", tt.input, err)
			}
			tt.check(t, v)
		})
	}
}

func TestParseObjectPreservesKeyOrder(t *testing.T) {
	v, err := ParseString(`{"z": 1, "a": 2, "m": 3}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := v.(*types.Object)
	if !ok {
		t.Fatalf("expected object, got %T", v)
	}
	want := []string{"z", "a", "m"}
	got := obj.Keys()
	if len(got) != len(want) {
		t.Fatalf("got %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseNested(t *testing.T) {
	v, err := ParseString(`{"a": [1, {"b": null}, "x"], "c": {}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := v.(*types.Object)
	av, _ := obj.Get("a")
	arr, ok := av.(types.Array)
	if !ok || len(arr) != 3 {
		t.Fatalf("expected 3-element array under a, got %v", av)
	}
	inner, ok := arr[1].(*types.Object)
	if !ok {
		t.Fatalf("expected object at a[1], got %T", arr[1])
	}
	if bv, _ := inner.Get("b"); bv.Kind() != types.KindNull {
		t.Errorf("a[1].b: got %v, want null", bv)
	}
	cv, _ := obj.Get("c")
	if co, ok := cv.(*types.Object); !ok || co.Len() != 0 {
		t.Errorf("c: got %v, want empty object", cv)
	}
}

func TestParseRejectsDuplicateKeys(t *testing.T) {
	_, err := ParseString(`{"a": 1, "a": 2}`)
	if err == nil {
		t.Fatal("expected duplicate key error")
	}
	parseErr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if !strings.Contains(parseErr.Got, `duplicate key "a"`) {
		t.Errorf("unexpected error detail: %v", parseErr)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantExpected string
	}{
		{"missing colon", `{"a" 1}`, "':' after object key"},
		{"missing comma in object", `{"a": 1 "b": 2}`, "',' or '}' after object member"},
		{"missing comma in array", `[1 2]`, "',' or ']' after array element"},
		{"bare key", `{a: 1}`, "object key string"},
		{"trailing comma", `{"a": 1,}`, "object key string"},
		{"empty input", ``, "a value"},
		{"truncated object", `{"a":`, "a value"},
		{"trailing garbage", `{} {}`, "end of input"},
		{"two top-level values", `1 2`, "end of input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			if err == nil {
				t.Fatalf("ParseString(%q) succeeded, want error", tt.input)
			}
			parseErr, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
			if parseErr.Expected != tt.wantExpected {
				t.Errorf("expected field: got %q, want %q", parseErr.Expected, tt.wantExpected)
			}
		})
	}
}

func TestParseErrorCarriesOffset(t *testing.T) {
	_, err := ParseString(`{"a": 1, "b" 2}`)
	parseErr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	// offset of the number 2, where the colon was expected
	if parseErr.Offset != 13 {
		t.Errorf("offset %d, want 13", parseErr.Offset)
	}
}

func TestParseLexFaultsPassThrough(t *testing.T) {
	inputs := []string{`"unterminated`, `{invalid}`, `[01]`, "\"a\tb\""}
	for _, input := range inputs {
		if _, err := ParseString(input); err == nil {
			t.Errorf("ParseString(%q) succeeded, want error", input)
		}
	}
}

func TestParseDeterministic(t *testing.T) {
	input := `{"role": "user", "content": "hi", "meta": {"n": [1, 2.5, true]}}`
	first, err := ParseString(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ParseString(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !types.Equal(first, second) {
		t.Error("repeated parses of identical input differ")
	}
}
