package render

import (
	"fmt"
	"strings"

	"jsonlens/detector"
	"jsonlens/types"
)

// Match locates one search hit. Conversation formats report the turn index
// (and its role for context); Generic documents report the JSON path of the
// matching leaf.
type Match struct {
	Index int    `json:"index"`
	Path  string `json:"path,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Search returns the ordered list of turn indices (conversation formats) or
// path locations (Generic) whose rendered text contains term. Search never
// mutates the rendered output and an empty term matches nothing.
func Search(v types.Value, format types.ConversationFormat, term string, caseSensitive bool) []Match {
	if term == "" {
		return nil
	}
	contains := func(s string) bool {
		if caseSensitive {
			return strings.Contains(s, term)
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(term))
	}

	if format.IsConversation() {
		var matches []Match
		for _, turn := range detector.ExtractTurns(v, format) {
			if contains(turn.Role) || contains(turn.Content) {
				matches = append(matches, Match{Index: turn.Ordinal, Role: turn.Role})
			}
		}
		return matches
	}

	var matches []Match
	searchValue(v, "$", contains, &matches)
	for i := range matches {
		matches[i].Index = i
	}
	return matches
}

// searchValue walks the tree depth-first in document order, matching the
// rendered text of leaf values.
func searchValue(v types.Value, path string, contains func(string) bool, matches *[]Match) {
	switch val := v.(type) {
	case types.String:
		if contains(string(val)) {
			*matches = append(*matches, Match{Path: path})
		}
	case types.Number:
		if contains(val.Raw) {
			*matches = append(*matches, Match{Path: path})
		}
	case types.Bool:
		if contains(fmt.Sprintf("%t", bool(val))) {
			*matches = append(*matches, Match{Path: path})
		}
	case types.Null:
		if contains("null") {
			*matches = append(*matches, Match{Path: path})
		}
	case types.Array:
		for i, el := range val {
			searchValue(el, fmt.Sprintf("%s[%d]", path, i), contains, matches)
		}
	case *types.Object:
		for _, key := range val.Keys() {
			member, _ := val.Get(key)
			searchValue(member, path+"."+key, contains, matches)
		}
	}
}
