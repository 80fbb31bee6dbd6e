package models

// CallbackQuery represents an incoming query from a pressed inline keyboard button.
//
// Data carries the raw button payload as sent by the API. When the bot keeps
// arbitrary callback data, the framework resolves the raw token and places the
// original object into Payload before the query is dispatched.
type CallbackQuery struct {
	ID           string   `json:"id"`                      // Unique identifier of the query.
	From         *User    `json:"from"`                    // User that pressed the button.
	Message      *Message `json:"message,omitempty"`       // Message the button belongs to, empty if too old.
	ChatInstance string   `json:"chat_instance,omitempty"` // Identifier of the chat the button was sent to.
	Data         string   `json:"data,omitempty"`          // Raw payload of the pressed button.
	Payload      any      `json:"-"`                       // Cached object restored from the callback data cache.
}
