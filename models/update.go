package models

// UpdateType represents the kind of payload an update carries.
type UpdateType int64

// Update types.
const (
	// Update carrying a new incoming message.
	OnMessage UpdateType = 1 << iota
	// Update carrying an edit of a known message.
	OnEditedMessage
	// Update carrying a new channel post.
	OnChannelPost
	// Update carrying an edit of a known channel post.
	OnEditedChannelPost
	// Update carrying a callback query from an inline keyboard button.
	OnCallbackQuery
	// Update carrying a payload this library does not model.
	OnUnknown
)

// OnAnyMessage matches every update kind that carries a message payload.
const OnAnyMessage = OnMessage | OnEditedMessage | OnChannelPost | OnEditedChannelPost

// String returns a string of said UpdateType.
func (t UpdateType) String() string {
	switch t {
	case OnMessage:
		return "OnMessage"
	case OnEditedMessage:
		return "OnEditedMessage"
	case OnChannelPost:
		return "OnChannelPost"
	case OnEditedChannelPost:
		return "OnEditedChannelPost"
	case OnCallbackQuery:
		return "OnCallbackQuery"
	default:
		return "OnUnknown"
	}
}

// Update represents an incoming update from the Bot API.
// At most one of the payload fields is present in any given update.
type Update struct {
	UpdateID          int64          `json:"update_id"`                     // Monotonically increasing update identifier.
	Message           *Message       `json:"message,omitempty"`             // New incoming message.
	EditedMessage     *Message       `json:"edited_message,omitempty"`      // New version of an edited message.
	ChannelPost       *Message       `json:"channel_post,omitempty"`        // New incoming channel post.
	EditedChannelPost *Message       `json:"edited_channel_post,omitempty"` // New version of an edited channel post.
	CallbackQuery     *CallbackQuery `json:"callback_query,omitempty"`      // New incoming callback query.
}

// Type returns the classification flag of the update.
func (u *Update) Type() UpdateType {
	switch {
	case u.Message != nil:
		return OnMessage
	case u.EditedMessage != nil:
		return OnEditedMessage
	case u.ChannelPost != nil:
		return OnChannelPost
	case u.EditedChannelPost != nil:
		return OnEditedChannelPost
	case u.CallbackQuery != nil:
		return OnCallbackQuery
	}

	return OnUnknown
}

// EffectiveMessage returns the message carried by the update regardless of its kind.
// For callback queries this is the message the pressed button belongs to.
//
// Returns:
//   - *Message: The carried message, or nil when the update has none.
func (u *Update) EffectiveMessage() *Message {
	switch {
	case u.Message != nil:
		return u.Message
	case u.EditedMessage != nil:
		return u.EditedMessage
	case u.ChannelPost != nil:
		return u.ChannelPost
	case u.EditedChannelPost != nil:
		return u.EditedChannelPost
	case u.CallbackQuery != nil:
		return u.CallbackQuery.Message
	}

	return nil
}

// EffectiveChat returns the chat the update originates from.
//
// Returns:
//   - *Chat: The originating chat, or nil when the update carries none,
//     such as a callback query whose message is no longer available.
func (u *Update) EffectiveChat() *Chat {
	if msg := u.EffectiveMessage(); msg != nil {
		return msg.Chat
	}

	return nil
}

// EffectiveUser returns the user that triggered the update.
//
// Returns:
//   - *User: The triggering user, or nil for anonymous payloads such as channel posts.
func (u *Update) EffectiveUser() *User {
	if u.CallbackQuery != nil {
		return u.CallbackQuery.From
	}
	if msg := u.EffectiveMessage(); msg != nil {
		return msg.From
	}

	return nil
}
