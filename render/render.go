// Package render converts classified, parsed structures into their output
// views: plain text, indented pretty text, or a colorized display form.
// Rendering is independent of how the value was obtained (strict parse,
// repaired parse, or streamed) and never mutates the value tree.
package render

import (
	"fmt"
	"strings"

	"jsonlens/detector"
	"jsonlens/types"
)

// ANSI escape codes for the colorized view
const (
	colorReset  = "\x1b[0m"
	colorKey    = "\x1b[36m" // cyan
	colorString = "\x1b[32m" // green
	colorNumber = "\x1b[33m" // yellow
	colorBool   = "\x1b[35m" // magenta
	colorRole   = "\x1b[1;34m" // bold blue
)

// Render produces the requested view of a classified document. Conversation
// formats are walked turn by turn in source order; Generic documents are
// pretty-printed (or compacted, for the plain kind) preserving key order.
func Render(v types.Value, format types.ConversationFormat, opts types.RenderOptions) string {
	if opts.Indent <= 0 {
		opts.Indent = 2
	}
	if format.IsConversation() {
		return renderConversation(detector.ExtractTurns(v, format), opts)
	}
	var sb strings.Builder
	writeValue(&sb, v, opts, 0)
	return sb.String()
}

// RenderTurn renders a single turn, used by the streaming path so streamed
// conversations produce the same text as in-memory ones.
func RenderTurn(turn types.Turn, opts types.RenderOptions) string {
	var sb strings.Builder
	writeTurn(&sb, turn, opts)
	return sb.String()
}

func renderConversation(turns []types.Turn, opts types.RenderOptions) string {
	var sb strings.Builder
	for i, turn := range turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeTurn(&sb, turn, opts)
	}
	return sb.String()
}

func writeTurn(sb *strings.Builder, turn types.Turn, opts types.RenderOptions) {
	content := turn.Content
	switch opts.Kind {
	case types.RenderPlain:
		fmt.Fprintf(sb, "%s: %s\n", turn.Role, content)
	case types.RenderPretty:
		content = FormatInlineMarkup(content, opts.Indent)
		fmt.Fprintf(sb, "### %s\n\n%s\n", turn.Role, content)
	case types.RenderColor:
		content = FormatInlineMarkup(content, opts.Indent)
		fmt.Fprintf(sb, "%s%s%s: %s\n", colorRole, turn.Role, colorReset, content)
	}
}

// writeValue pretty-prints a generic value tree. The plain kind emits
// compact single-line JSON so that re-parsing the output round-trips to a
// deep-equal value; pretty and color indent by opts.Indent per level and
// reformat inline tag-like substrings in string values for display.
func writeValue(sb *strings.Builder, v types.Value, opts types.RenderOptions, depth int) {
	compact := opts.Kind == types.RenderPlain
	color := opts.Kind == types.RenderColor

	switch val := v.(type) {
	case types.Null:
		colored(sb, "null", colorBool, color)
	case types.Bool:
		colored(sb, fmt.Sprintf("%t", bool(val)), colorBool, color)
	case types.Number:
		colored(sb, val.Raw, colorNumber, color)
	case types.String:
		text := string(val)
		if !compact {
			text = FormatInlineMarkup(text, opts.Indent)
		}
		colored(sb, quoteString(text), colorString, color)
	case types.Array:
		if len(val) == 0 {
			sb.WriteString("[]")
			return
		}
		sb.WriteByte('[')
		for i, el := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			if !compact {
				sb.WriteByte('\n')
				indent(sb, opts.Indent, depth+1)
			}
			writeValue(sb, el, opts, depth+1)
		}
		if !compact {
			sb.WriteByte('\n')
			indent(sb, opts.Indent, depth)
		}
		sb.WriteByte(']')
	case *types.Object:
		if val.Len() == 0 {
			sb.WriteString("{}")
			return
		}
		sb.WriteByte('{')
		for i, key := range val.Keys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			if !compact {
				sb.WriteByte('\n')
				indent(sb, opts.Indent, depth+1)
			}
			colored(sb, quoteString(key), colorKey, color)
			sb.WriteByte(':')
			if !compact {
				sb.WriteByte(' ')
			}
			member, _ := val.Get(key)
			writeValue(sb, member, opts, depth+1)
		}
		if !compact {
			sb.WriteByte('\n')
			indent(sb, opts.Indent, depth)
		}
		sb.WriteByte('}')
	}
}

func colored(sb *strings.Builder, text, code string, enabled bool) {
	if enabled {
		sb.WriteString(code)
		sb.WriteString(text)
		sb.WriteString(colorReset)
		return
	}
	sb.WriteString(text)
}

func indent(sb *strings.Builder, width, depth int) {
	for i := 0; i < width*depth; i++ {
		sb.WriteByte(' ')
	}
}

// quoteString escapes a string for JSON output. Unicode stays raw; only the
// characters JSON requires escaping for are escaped.
func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if c < 0x20 {
				fmt.Fprintf(&sb, `\u%04x`, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
