package types

import (
	"fmt"
	"strings"
)

// RenderKind selects the output view produced by the renderer
type RenderKind int

const (
	RenderPlain RenderKind = iota
	RenderPretty
	RenderColor
)

// String returns the string representation of the RenderKind
func (k RenderKind) String() string {
	switch k {
	case RenderPlain:
		return "plain"
	case RenderPretty:
		return "pretty"
	case RenderColor:
		return "color"
	default:
		return "plain"
	}
}

// ParseRenderKind converts a string to RenderKind with fallback to plain
func ParseRenderKind(s string) RenderKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pretty":
		return RenderPretty
	case "color", "colorized":
		return RenderColor
	default:
		return RenderPlain
	}
}

// RenderOptions is the pure input controlling a render call
type RenderOptions struct {
	Kind          RenderKind `json:"kind"`
	Indent        int        `json:"indent"`
	SearchTerm    string     `json:"search_term,omitempty"`
	CaseSensitive bool       `json:"case_sensitive,omitempty"`
}

// DefaultRenderOptions returns the options used when a caller passes none
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{Kind: RenderPretty, Indent: 2}
}

// Fingerprint returns a stable textual form of the options, used as part of
// cache keys. Search settings are included because they change nothing in the
// rendered text but callers may cache per-search views later.
func (o RenderOptions) Fingerprint() string {
	return fmt.Sprintf("kind=%s;indent=%d;term=%s;cs=%t", o.Kind, o.Indent, o.SearchTerm, o.CaseSensitive)
}
