package models

// Chat types as reported by the Bot API.
const (
	CHAT_PRIVATE    = "private"
	CHAT_GROUP      = "group"
	CHAT_SUPERGROUP = "supergroup"
	CHAT_CHANNEL    = "channel"
)

// Chat represents a Telegram chat of any kind.
type Chat struct {
	ID        int64  `json:"id"`                   // Unique identifier of the chat.
	Type      string `json:"type"`                 // One of "private", "group", "supergroup" or "channel".
	Title     string `json:"title,omitempty"`      // Title for groups, supergroups and channels.
	Username  string `json:"username,omitempty"`   // Username for private chats, supergroups and channels.
	FirstName string `json:"first_name,omitempty"` // First name of the other party in a private chat.
	LastName  string `json:"last_name,omitempty"`  // Last name of the other party in a private chat.
}

// IsPrivate reports whether the chat is a one-on-one conversation.
func (c *Chat) IsPrivate() bool {
	return c.Type == CHAT_PRIVATE
}

// Name returns the title for group-like chats or the first name for private ones.
func (c *Chat) Name() string {
	if c.Title != "" {
		return c.Title
	}

	return c.FirstName
}
