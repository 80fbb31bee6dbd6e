package models

// InlineKeyboardMarkup represents an inline keyboard attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton represents one button of an inline keyboard.
// Exactly one of URL or CallbackData should be set.
type InlineKeyboardButton struct {
	Text         string `json:"text"`                    // Label shown on the button.
	URL          string `json:"url,omitempty"`           // HTTP or tg:// URL opened when the button is pressed.
	CallbackData string `json:"callback_data,omitempty"` // Payload sent back in a callback query, 1-64 bytes.
}

// Copy returns a deep copy of the markup.
// The framework swaps button payloads for cache tokens on outgoing keyboards,
// so the caller's markup must stay untouched.
func (m *InlineKeyboardMarkup) Copy() *InlineKeyboardMarkup {
	rows := make([][]InlineKeyboardButton, len(m.InlineKeyboard))
	for i, row := range m.InlineKeyboard {
		rows[i] = make([]InlineKeyboardButton, len(row))
		copy(rows[i], row)
	}

	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}
