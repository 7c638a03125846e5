// Package detector classifies parsed documents into the known conversation
// envelope shapes. Classification is deterministic: rules run in a fixed
// order and the first match wins, since the shapes can overlap.
package detector

import (
	"jsonlens/types"
)

// Detect classifies a parsed value. Decision order:
//  1. ChatHistoryWrapper: object with a "chat_history" key holding a
//     non-empty array of role/content objects
//  2. MessageV2: non-empty array where every element carries
//     version == "message_v2" plus "source" and "body" keys
//  3. Standard: non-empty array where every element carries "role" and
//     "content" string keys
//  4. Generic: everything else
//
// Arrays must be homogeneous in the required keys: a single nonconforming
// element demotes the whole document to Generic, which avoids false-positive
// conversation rendering on arbitrary JSON that shares a key name.
func Detect(v types.Value) types.ConversationFormat {
	if obj, ok := v.(*types.Object); ok {
		if history, ok := obj.Get("chat_history"); ok {
			if arr, ok := history.(types.Array); ok && isTurnArray(arr) {
				return types.FormatChatHistoryWrapper
			}
		}
		return types.FormatGeneric
	}

	arr, ok := v.(types.Array)
	if !ok || len(arr) == 0 {
		return types.FormatGeneric
	}
	if allElements(arr, IsMessageV2Element) {
		return types.FormatMessageV2
	}
	if allElements(arr, IsTurnElement) {
		return types.FormatStandard
	}
	return types.FormatGeneric
}

// DetectElement classifies a single streamed element, used by the streaming
// adapter to assume a format from the first element of a document.
func DetectElement(v types.Value) types.ConversationFormat {
	if IsMessageV2Element(v) {
		return types.FormatMessageV2
	}
	if IsTurnElement(v) {
		return types.FormatStandard
	}
	return types.FormatGeneric
}

// MatchesFormat reports whether a streamed element conforms to the format
// assumed from the document's first element.
func MatchesFormat(v types.Value, format types.ConversationFormat) bool {
	switch format {
	case types.FormatStandard:
		return IsTurnElement(v)
	case types.FormatMessageV2:
		return IsMessageV2Element(v)
	default:
		return true
	}
}

// IsTurnElement reports whether v is an object with "role" and "content"
// string values.
func IsTurnElement(v types.Value) bool {
	obj, ok := v.(*types.Object)
	if !ok {
		return false
	}
	if _, ok := obj.StringValue("role"); !ok {
		return false
	}
	_, ok = obj.StringValue("content")
	return ok
}

// IsMessageV2Element reports whether v is an object carrying the message_v2
// envelope: version == "message_v2" plus "source" and "body" keys.
func IsMessageV2Element(v types.Value) bool {
	obj, ok := v.(*types.Object)
	if !ok {
		return false
	}
	version, ok := obj.StringValue("version")
	if !ok || version != "message_v2" {
		return false
	}
	return obj.Has("source") && obj.Has("body")
}

func isTurnArray(arr types.Array) bool {
	return len(arr) > 0 && allElements(arr, IsTurnElement)
}

func allElements(arr types.Array, pred func(types.Value) bool) bool {
	for _, el := range arr {
		if !pred(el) {
			return false
		}
	}
	return true
}

// ExtractTurns normalizes a classified document into its ordered Turns.
// Generic documents yield no turns.
func ExtractTurns(v types.Value, format types.ConversationFormat) []types.Turn {
	var arr types.Array
	switch format {
	case types.FormatStandard, types.FormatMessageV2:
		a, ok := v.(types.Array)
		if !ok {
			return nil
		}
		arr = a
	case types.FormatChatHistoryWrapper:
		obj, ok := v.(*types.Object)
		if !ok {
			return nil
		}
		history, ok := obj.Get("chat_history")
		if !ok {
			return nil
		}
		a, ok := history.(types.Array)
		if !ok {
			return nil
		}
		arr = a
	default:
		return nil
	}

	turns := make([]types.Turn, 0, len(arr))
	for i, el := range arr {
		turn, ok := TurnFromElement(el, format, i)
		if !ok {
			continue
		}
		turns = append(turns, turn)
	}
	return turns
}

// TurnFromElement converts one conversation element into a Turn
func TurnFromElement(v types.Value, format types.ConversationFormat, ordinal int) (types.Turn, bool) {
	obj, ok := v.(*types.Object)
	if !ok {
		return types.Turn{}, false
	}
	roleKey, contentKey := "role", "content"
	if format == types.FormatMessageV2 {
		roleKey, contentKey = "source", "body"
	}
	role, ok := obj.StringValue(roleKey)
	if !ok {
		return types.Turn{}, false
	}
	content, ok := obj.StringValue(contentKey)
	if !ok {
		return types.Turn{}, false
	}
	return types.Turn{Role: role, Content: content, Ordinal: ordinal}, true
}
