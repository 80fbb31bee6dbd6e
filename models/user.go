package models

// User represents a Telegram user or bot account.
type User struct {
	ID           int64  `json:"id"`                      // Unique identifier of the user or bot.
	IsBot        bool   `json:"is_bot"`                  // Indicates whether the account is a bot.
	FirstName    string `json:"first_name"`              // First name of the user or bot.
	LastName     string `json:"last_name,omitempty"`     // Last name, may be empty.
	Username     string `json:"username,omitempty"`      // Username without the "@" prefix, may be empty.
	LanguageCode string `json:"language_code,omitempty"` // IETF language tag of the user's client, may be empty.
}

// FullName returns the first name joined with the last name when one is set.
//
// Returns:
//   - string: The displayable full name of the user.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}

	return u.FirstName + " " + u.LastName
}
