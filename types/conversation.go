package types

import "strings"

// ConversationFormat classifies the envelope shape of a parsed document.
// It is assigned once per document (or per streamed element) and never
// changed afterward.
type ConversationFormat int

const (
	FormatGeneric ConversationFormat = iota
	FormatStandard
	FormatChatHistoryWrapper
	FormatMessageV2
)

// String returns the string representation of the ConversationFormat
func (f ConversationFormat) String() string {
	switch f {
	case FormatStandard:
		return "standard"
	case FormatChatHistoryWrapper:
		return "chat_history_wrapper"
	case FormatMessageV2:
		return "message_v2"
	case FormatGeneric:
		return "generic"
	default:
		return "generic"
	}
}

// ParseConversationFormat converts a string to ConversationFormat with fallback to generic
func ParseConversationFormat(s string) ConversationFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard":
		return FormatStandard
	case "chat_history_wrapper":
		return FormatChatHistoryWrapper
	case "message_v2":
		return FormatMessageV2
	default:
		return FormatGeneric
	}
}

// IsConversation reports whether the format carries role/content turns
func (f ConversationFormat) IsConversation() bool {
	return f == FormatStandard || f == FormatChatHistoryWrapper || f == FormatMessageV2
}

// Turn is one normalized role/content unit of a conversation. Turns keep
// their source order; Ordinal is the zero-based position in that order.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Ordinal int    `json:"ordinal"`
}
