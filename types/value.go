// Package types defines the value model shared by the scanner, parser,
// detector, streaming adapter and renderer: a JSON sum type with
// insertion-ordered objects, plus the conversation-level types layered on
// top of it.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the concrete JSON type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the closed sum type for parsed JSON data. Every tree is owned by
// the parse that produced it; values are never shared across documents.
type Value interface {
	Kind() Kind
}

// Null represents the JSON null literal
type Null struct{}

// Bool represents a JSON boolean
type Bool bool

// String represents a JSON string (already unescaped)
type String string

// Kind implements Value
func (Null) Kind() Kind { return KindNull }

// Kind implements Value
func (Bool) Kind() Kind { return KindBool }

// Kind implements Value
func (String) Kind() Kind { return KindString }

// Number represents a JSON number, preserving the integer vs floating-point
// distinction implied by the source text and the raw literal for lossless
// re-rendering.
type Number struct {
	Raw   string
	IsInt bool
	Int   int64
	Float float64
}

// Kind implements Value
func (Number) Kind() Kind { return KindNumber }

// NumberFromLiteral converts a raw JSON number literal into a Number. A
// literal without '.', 'e' or 'E' that fits an int64 stays integral;
// everything else falls back to float64.
func NumberFromLiteral(raw string) (Number, error) {
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Number{Raw: raw, IsInt: true, Int: i, Float: float64(i)}, nil
		}
		// Integer literal too large for int64, keep it as a float
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Number{}, fmt.Errorf("invalid number literal %q: %w", raw, err)
	}
	return Number{Raw: raw, Float: f}, nil
}

// IntNumber builds an integral Number
func IntNumber(i int64) Number {
	return Number{Raw: strconv.FormatInt(i, 10), IsInt: true, Int: i, Float: float64(i)}
}

// Array represents a JSON array
type Array []Value

// Kind implements Value
func (Array) Kind() Kind { return KindArray }

// Object represents a JSON object with insertion order preserved, so that
// round-tripped output matches the source visually and key-order-sensitive
// detection stays deterministic.
type Object struct {
	keys   []string
	values map[string]Value
}

// Kind implements Value
func (*Object) Kind() Kind { return KindObject }

// NewObject creates an empty ordered object
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set stores a key/value pair. A new key is appended at the end of the key
// order; setting an existing key overwrites its value in place.
func (o *Object) Set(key string, v Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value stored under key
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Keys returns the keys in insertion order. The returned slice is shared;
// callers must not modify it.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of entries
func (o *Object) Len() int {
	return len(o.keys)
}

// StringValue returns the string stored under key, or false when the key is
// absent or holds a non-string value.
func (o *Object) StringValue(key string) (string, bool) {
	v, ok := o.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(String)
	return string(s), ok
}

// Equal reports deep semantic equality between two values. Object comparison
// includes key order; numbers compare by numeric value within their
// integer/float class.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case String:
		return av == b.(String)
	case Number:
		bv := b.(Number)
		if av.IsInt != bv.IsInt {
			return false
		}
		if av.IsInt {
			return av.Int == bv.Int
		}
		return av.Float == bv.Float
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		if av.Len() != bv.Len() {
			return false
		}
		for i, k := range av.keys {
			if bv.keys[i] != k {
				return false
			}
			if !Equal(av.values[k], bv.values[k]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
