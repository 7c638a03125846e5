package render

import (
	"regexp"
	"strings"
)

// openTagRe matches an inline XML-looking open tag. Go's regexp has no
// backreferences, so the matching close tag is located by search.
var openTagRe = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9_.:-]*)>`)

// FormatInlineMarkup reformats inline `<tag>...</tag>` substrings with
// normalized indentation for the tag body. This is a display transform only:
// it operates on the already-unescaped string content and never alters the
// underlying value tree. Text without tag pairs is returned unchanged.
func FormatInlineMarkup(s string, width int) string {
	if width <= 0 {
		width = 2
	}
	var sb strings.Builder
	rest := s
	changed := false
	for {
		loc := openTagRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		tag := rest[loc[2]:loc[3]]
		closeTag := "</" + tag + ">"
		closeStart := strings.Index(rest[loc[1]:], closeTag)
		if closeStart < 0 {
			// Unpaired open tag, emit it verbatim and keep scanning
			sb.WriteString(rest[:loc[1]])
			rest = rest[loc[1]:]
			continue
		}
		body := rest[loc[1] : loc[1]+closeStart]
		sb.WriteString(rest[:loc[0]])
		sb.WriteString(formatTag(tag, body, width))
		rest = rest[loc[1]+closeStart+len(closeTag):]
		changed = true
	}
	if !changed {
		return s
	}
	sb.WriteString(rest)
	return sb.String()
}

// formatTag renders one tag with its body lines trimmed, nested tags
// reformatted recursively, and every resulting line indented by width spaces.
func formatTag(tag, body string, width int) string {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	inner := FormatInlineMarkup(strings.Join(lines, "\n"), width)

	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(tag)
	sb.WriteByte('>')
	sb.WriteByte('\n')
	pad := strings.Repeat(" ", width)
	for _, line := range strings.Split(inner, "\n") {
		if line != "" {
			sb.WriteString(pad)
			sb.WriteString(line)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteByte('>')
	return sb.String()
}
