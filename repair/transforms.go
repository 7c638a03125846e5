package repair

import (
	"fmt"
	"sort"
	"strings"

	"jsonlens/scanner"
)

// The transforms below are pure text-to-text heuristics. Each walks the
// document quote-aware so that already-valid string contents are never
// touched; whether a fix is acceptable overall is decided by the pipeline's
// end-to-end strict re-parse, not locally.

// skipString returns the index just past the closing quote of the
// double-quoted string starting at s[i], or len(s) when unterminated.
func skipString(s string, i int) int {
	i++ // opening quote
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
			continue
		case '"':
			return i + 1
		}
		i++
	}
	return len(s)
}

// completeStructures appends the closers required to balance unterminated
// strings, objects and arrays at end of input. Mismatched closers are left
// alone for the strict parse to reject.
func completeStructures(s string) (string, []Operation) {
	var stack []byte
	inStr, esc := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			if esc {
				esc = false
				continue
			}
			switch c {
			case '\\':
				esc = true
			case '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var suffix []byte
	if inStr {
		suffix = append(suffix, '"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		suffix = append(suffix, stack[i])
	}
	if len(suffix) == 0 {
		return s, nil
	}
	op := Operation{
		Kind:   OpStructureCompletion,
		Start:  len(s),
		End:    len(s) + len(suffix),
		Detail: fmt.Sprintf("appended %q", string(suffix)),
	}
	return s + string(suffix), []Operation{op}
}

// removeTrailingCommas drops a comma that directly precedes '}' or ']'
// (whitespace in between allowed), outside string literals.
func removeTrailingCommas(s string) (string, []Operation) {
	var out strings.Builder
	var ops []Operation
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '"' {
			j := skipString(s, i)
			out.WriteString(s[i:j])
			i = j
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				ops = append(ops, Operation{
					Kind:   OpTrailingCommaRemoval,
					Start:  i,
					End:    i + 1,
					Detail: fmt.Sprintf("removed trailing comma before %q", s[j]),
				})
				i++ // skip the comma, keep the whitespace
				continue
			}
		}
		out.WriteByte(c)
		i++
	}
	if len(ops) == 0 {
		return s, nil
	}
	return out.String(), ops
}

// quoteBareKeys wraps unquoted object keys in double quotes. Key position is
// tracked with a container stack so identifiers in value position (true,
// null, or garbage the parser should reject) are left alone.
func quoteBareKeys(s string) (string, []Operation) {
	var out strings.Builder
	var ops []Operation
	var stack []byte // 'o' for object, 'a' for array
	expectKey := false
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '"' {
			j := skipString(s, i)
			out.WriteString(s[i:j])
			i = j
			expectKey = false
			continue
		}
		switch {
		case c == '{':
			stack = append(stack, 'o')
			expectKey = true
			out.WriteByte(c)
			i++
		case c == '[':
			stack = append(stack, 'a')
			expectKey = false
			out.WriteByte(c)
			i++
		case c == '}' || c == ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			expectKey = false
			out.WriteByte(c)
			i++
		case c == ',':
			expectKey = len(stack) > 0 && stack[len(stack)-1] == 'o'
			out.WriteByte(c)
			i++
		case c == ':':
			expectKey = false
			out.WriteByte(c)
			i++
		case expectKey && isIdentStart(c):
			start := i
			j := i
			for j < len(s) && isIdentChar(s[j]) {
				j++
			}
			ident := s[start:j]
			k := j
			for k < len(s) && isSpace(s[k]) {
				k++
			}
			if k < len(s) && s[k] == ':' {
				out.WriteByte('"')
				out.WriteString(ident)
				out.WriteByte('"')
				ops = append(ops, Operation{
					Kind:   OpKeyQuoting,
					Start:  start,
					End:    j,
					Detail: fmt.Sprintf("quoted bare key %q", ident),
				})
			} else {
				out.WriteString(ident)
			}
			expectKey = false
			i = j
		default:
			out.WriteByte(c)
			i++
		}
	}
	if len(ops) == 0 {
		return s, nil
	}
	return out.String(), ops
}

// normalizeQuotes converts single-quoted strings to double-quoted ones,
// but only outside already-double-quoted spans. Inner double quotes get
// escaped and escaped single quotes are unescaped.
func normalizeQuotes(s string) (string, []Operation) {
	var out strings.Builder
	var ops []Operation
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '"' {
			j := skipString(s, i)
			out.WriteString(s[i:j])
			i = j
			continue
		}
		if c == '\'' {
			start := i
			var body strings.Builder
			j := i + 1
			terminated := false
			for j < len(s) {
				switch s[j] {
				case '\\':
					if j+1 < len(s) {
						if s[j+1] == '\'' {
							body.WriteByte('\'')
						} else {
							body.WriteByte('\\')
							body.WriteByte(s[j+1])
						}
						j += 2
						continue
					}
					body.WriteByte('\\')
					j++
				case '\'':
					terminated = true
					j++
				case '"':
					body.WriteString(`\"`)
					j++
				default:
					body.WriteByte(s[j])
					j++
				}
				if terminated {
					break
				}
			}
			if !terminated {
				// Unterminated single quote, leave the tail untouched
				out.WriteString(s[start:])
				i = len(s)
				continue
			}
			out.WriteByte('"')
			out.WriteString(body.String())
			out.WriteByte('"')
			ops = append(ops, Operation{
				Kind:   OpQuoteNormalization,
				Start:  start,
				End:    j,
				Detail: "converted single-quoted string to double quotes",
			})
			i = j
			continue
		}
		out.WriteByte(c)
		i++
	}
	if len(ops) == 0 {
		return s, nil
	}
	return out.String(), ops
}

// escapeControlChars replaces raw control characters inside double-quoted
// string literals with their escape sequences.
func escapeControlChars(s string) (string, []Operation) {
	var out strings.Builder
	var ops []Operation
	i := 0
	for i < len(s) {
		c := s[i]
		if c != '"' {
			out.WriteByte(c)
			i++
			continue
		}
		end := skipString(s, i)
		lit := s[i:end]
		fixed, count := escapeControlsInLiteral(lit)
		out.WriteString(fixed)
		if count > 0 {
			ops = append(ops, Operation{
				Kind:   OpControlCharEscape,
				Start:  i,
				End:    end,
				Detail: fmt.Sprintf("escaped %d control character(s) in string literal", count),
			})
		}
		i = end
	}
	if len(ops) == 0 {
		return s, nil
	}
	return out.String(), ops
}

func escapeControlsInLiteral(lit string) (string, int) {
	var out strings.Builder
	count := 0
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		if c == '\\' && i+1 < len(lit) {
			out.WriteByte(c)
			out.WriteByte(lit[i+1])
			i++
			continue
		}
		if c < 0x20 {
			count++
			switch c {
			case '\n':
				out.WriteString(`\n`)
			case '\r':
				out.WriteString(`\r`)
			case '\t':
				out.WriteString(`\t`)
			case '\b':
				out.WriteString(`\b`)
			case '\f':
				out.WriteString(`\f`)
			default:
				out.WriteString(fmt.Sprintf(`\u%04x`, c))
			}
			continue
		}
		out.WriteByte(c)
	}
	return out.String(), count
}

type removal struct {
	start, end int
	detail     string
}

// removeDuplicateKeys naively resolves duplicate object keys by removing all
// but the last occurrence of each key, at every nesting level. It operates
// on the real token stream so spans are exact; text that does not lex is
// returned unchanged.
func removeDuplicateKeys(s string) (string, []Operation) {
	toks, ok := lexAll(s)
	if !ok || len(toks) == 0 {
		return s, nil
	}
	var removals []removal
	i := 0
	if !dedupeValue(toks, &i, &removals) || len(removals) == 0 {
		return s, nil
	}

	sort.Slice(removals, func(a, b int) bool { return removals[a].start < removals[b].start })
	var out strings.Builder
	var ops []Operation
	pos := 0
	for _, rm := range removals {
		if rm.start < pos {
			continue // overlapping with an already-removed span
		}
		out.WriteString(s[pos:rm.start])
		ops = append(ops, Operation{
			Kind:   OpDuplicateKeyRemoval,
			Start:  rm.start,
			End:    rm.end,
			Detail: rm.detail,
		})
		pos = rm.end
	}
	out.WriteString(s[pos:])
	return out.String(), ops
}

func lexAll(s string) ([]scanner.Token, bool) {
	sc := scanner.NewFromString(s)
	var toks []scanner.Token
	for {
		t, err := sc.Next()
		if err != nil {
			return nil, false
		}
		if t.Type == scanner.TokenEOF {
			return toks, true
		}
		toks = append(toks, t)
	}
}

// dedupeValue advances *i past the value starting at toks[*i], recording
// byte spans of earlier duplicate members. Returns false when the token
// stream does not form a recognizable value.
func dedupeValue(toks []scanner.Token, i *int, removals *[]removal) bool {
	if *i >= len(toks) {
		return false
	}
	switch toks[*i].Type {
	case scanner.TokenObjectOpen:
		return dedupeObject(toks, i, removals)
	case scanner.TokenArrayOpen:
		*i++
		for *i < len(toks) && toks[*i].Type != scanner.TokenArrayClose {
			if toks[*i].Type == scanner.TokenComma {
				*i++
				continue
			}
			if !dedupeValue(toks, i, removals) {
				return false
			}
		}
		if *i >= len(toks) {
			return false
		}
		*i++ // ']'
		return true
	case scanner.TokenString, scanner.TokenNumber, scanner.TokenBool, scanner.TokenNull:
		*i++
		return true
	default:
		return false
	}
}

func dedupeObject(toks []scanner.Token, i *int, removals *[]removal) bool {
	type member struct {
		key      string
		keyIdx   int
		valueEnd int
	}
	*i++ // '{'
	var members []member
	for {
		if *i >= len(toks) {
			return false
		}
		if toks[*i].Type == scanner.TokenObjectClose {
			*i++
			break
		}
		if toks[*i].Type == scanner.TokenComma {
			*i++
			continue
		}
		if toks[*i].Type != scanner.TokenString {
			return false
		}
		keyIdx := *i
		key := toks[*i].Text
		*i++
		if *i >= len(toks) || toks[*i].Type != scanner.TokenColon {
			return false
		}
		*i++
		if !dedupeValue(toks, i, removals) {
			return false
		}
		members = append(members, member{key: key, keyIdx: keyIdx, valueEnd: *i - 1})
	}

	lastIdx := make(map[string]int)
	for idx, m := range members {
		lastIdx[m.key] = idx
	}
	for idx, m := range members {
		if lastIdx[m.key] == idx {
			continue
		}
		start := toks[m.keyIdx].Offset
		end := toks[m.valueEnd].End
		// Take an adjoining comma along with the member
		if m.keyIdx > 0 && toks[m.keyIdx-1].Type == scanner.TokenComma {
			start = toks[m.keyIdx-1].Offset
		} else if m.valueEnd+1 < len(toks) && toks[m.valueEnd+1].Type == scanner.TokenComma {
			end = toks[m.valueEnd+1].End
		}
		*removals = append(*removals, removal{
			start:  start,
			end:    end,
			detail: fmt.Sprintf("removed earlier duplicate of key %q", m.key),
		})
	}
	return true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c == '-' || (c >= '0' && c <= '9')
}
