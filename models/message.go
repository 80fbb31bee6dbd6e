package models

import (
	"strings"
	"time"
)

// Message represents a message inside a chat.
//
// From is empty for channel posts and for service messages without a sender.
// Chat is always present on real API payloads, yet kept as a pointer so that
// partially filled messages can be represented.
type Message struct {
	MessageID      int64                 `json:"message_id"`                 // Unique identifier inside the chat.
	From           *User                 `json:"from,omitempty"`             // Sender of the message, empty for channel posts.
	Chat           *Chat                 `json:"chat,omitempty"`             // Chat the message belongs to.
	Date           int64                 `json:"date"`                       // Unix time the message was sent.
	Text           string                `json:"text,omitempty"`             // Text of the message, up to 4096 characters.
	Caption        string                `json:"caption,omitempty"`          // Caption for media messages.
	Entities       []MessageEntity       `json:"entities,omitempty"`         // Special entities appearing in the text.
	ReplyToMessage *Message              `json:"reply_to_message,omitempty"` // The message this one replies to.
	ReplyMarkup    *InlineKeyboardMarkup `json:"reply_markup,omitempty"`     // Inline keyboard attached to the message.
}

// MessageEntity represents one special entity in a text message,
// such as a bot command, mention or URL.
type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// Time returns the message date as a [time.Time].
func (m *Message) Time() time.Time {
	return time.Unix(m.Date, 0)
}

// IsCommand reports whether the message text starts with a bot command.
func (m *Message) IsCommand() bool {
	return len(m.Text) > 1 && strings.HasPrefix(m.Text, "/")
}
