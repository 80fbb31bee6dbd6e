package telango

import (
	"regexp"

	"github.com/n0h4rt/telango/models"
	"github.com/n0h4rt/telango/utils"
)

// This approach aims to simplify the syntax of combining filters.
// For example:
//   filter := Filter.And(Filter.And(Filter)).Or(Filter.Not())
// Instead of:
//   filter := Or(And(Filter, And(Filter, Filter)), Not(Filter)) (excluding the package name)
//
// Since Go does not support type inheritance nor method declaration with multiple receivers,
// everything needs to be explicitly declared.

// Filter is an interface that defines the methods for filtering updates.
type Filter interface {
	Check(*models.Update) bool // Check evaluates if the given update passes the filter conditions.
	And(Filter) Filter         // And returns a new filter that combines the current filter with another using logical AND.
	Or(Filter) Filter          // Or returns a new filter that combines the current filter with another using logical OR.
	Xor(Filter) Filter         // Xor returns a new filter that combines the current filter with another using logical XOR.
	Not() Filter               // Not returns a new filter that negates the current filter using logical NOT.
}

const (
	// CombineFilterAnd combines filters using logical AND.
	CombineFilterAnd int = iota
	// CombineFilterOr combines filters using logical OR.
	CombineFilterOr
	// CombineFilterXor combines filters using logical XOR.
	CombineFilterXor
)

// CombineFilter is a struct that represents the logical combination of two filters.
type CombineFilter struct {
	Left  Filter // Left represents the first filter of the combination.
	Right Filter // Right represents the second filter of the combination.
	Mode  int    // Mode specifies the combination mode: 0 for AND, 1 for OR, and 2 for XOR.
}

// Check returns the combined result of the left and right filters.
func (f *CombineFilter) Check(update *models.Update) bool {
	switch f.Mode {
	case CombineFilterAnd:
		return f.Left.Check(update) && f.Right.Check(update)
	case CombineFilterOr:
		return f.Left.Check(update) || f.Right.Check(update)
	case CombineFilterXor:
		return f.Left.Check(update) != f.Right.Check(update)
	default:
		return false
	}
}

// And returns a new CombineFilter that combines the current filter with the provided filter using logical AND.
func (f *CombineFilter) And(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterAnd}
}

// Or returns a new CombineFilter that combines the current filter with the provided filter using logical OR.
func (f *CombineFilter) Or(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterOr}
}

// Xor returns a new CombineFilter that combines the current filter with the provided filter using logical XOR.
func (f *CombineFilter) Xor(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterXor}
}

// Not returns a new NotFilter negating the current filter.
func (f *CombineFilter) Not() Filter {
	return &NotFilter{f}
}

// NotFilter is a struct that represents the logical NOT of a filter.
type NotFilter struct {
	Base Filter // Base represents the filter to be negated using logical NOT.
}

// Check returns the logical negation of the filter's result.
func (f *NotFilter) Check(update *models.Update) bool {
	return !f.Base.Check(update)
}

// And returns a new CombineFilter that combines the current filter with the provided filter using logical AND.
func (f *NotFilter) And(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterAnd}
}

// Or returns a new CombineFilter that combines the current filter with the provided filter using logical OR.
func (f *NotFilter) Or(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterOr}
}

// Xor returns a new CombineFilter that combines the current filter with the provided filter using logical XOR.
func (f *NotFilter) Xor(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterXor}
}

// Not returns a new NotFilter negating the current filter.
func (f *NotFilter) Not() Filter {
	return &NotFilter{f}
}

// UserFilter passes updates triggered by the listed users.
type UserFilter struct {
	Users []int64 // Users is a list of user identifiers to accept.
}

// Check checks if the update's effective user is in the filter's list of users.
func (f *UserFilter) Check(update *models.Update) bool {
	user := update.EffectiveUser()
	if user == nil {
		return false
	}

	return utils.Contains(f.Users, user.ID)
}

// And returns a new CombineFilter that combines the current filter with the provided filter using logical AND.
func (f *UserFilter) And(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterAnd}
}

// Or returns a new CombineFilter that combines the current filter with the provided filter using logical OR.
func (f *UserFilter) Or(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterOr}
}

// Xor returns a new CombineFilter that combines the current filter with the provided filter using logical XOR.
func (f *UserFilter) Xor(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterXor}
}

// Not returns a new NotFilter negating the current filter.
func (f *UserFilter) Not() Filter {
	return &NotFilter{f}
}

// Add adds a user to the filter's list of users.
func (f *UserFilter) Add(userID int64) {
	if !utils.Contains(f.Users, userID) {
		f.Users = append(f.Users, userID)
	}
}

// Remove removes a user from the filter's list of users.
func (f *UserFilter) Remove(userID int64) {
	f.Users = utils.Remove(f.Users, userID)
}

// NewUserFilter returns a new `UserFilter`.
func NewUserFilter(userIDs ...int64) Filter {
	return &UserFilter{Users: userIDs}
}

// ChatFilter passes updates originating from the listed chats.
type ChatFilter struct {
	Chats []int64 // Chats is a list of chat identifiers to accept.
}

// Check checks if the update's effective chat is in the filter's list of chats.
func (f *ChatFilter) Check(update *models.Update) bool {
	chat := update.EffectiveChat()
	if chat == nil {
		return false
	}

	return utils.Contains(f.Chats, chat.ID)
}

// And returns a new CombineFilter that combines the current filter with the provided filter using logical AND.
func (f *ChatFilter) And(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterAnd}
}

// Or returns a new CombineFilter that combines the current filter with the provided filter using logical OR.
func (f *ChatFilter) Or(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterOr}
}

// Xor returns a new CombineFilter that combines the current filter with the provided filter using logical XOR.
func (f *ChatFilter) Xor(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterXor}
}

// Not returns a new NotFilter negating the current filter.
func (f *ChatFilter) Not() Filter {
	return &NotFilter{f}
}

// Add adds a chat to the filter's list of chats.
func (f *ChatFilter) Add(chatID int64) {
	if !utils.Contains(f.Chats, chatID) {
		f.Chats = append(f.Chats, chatID)
	}
}

// Remove removes a chat from the filter's list of chats.
func (f *ChatFilter) Remove(chatID int64) {
	f.Chats = utils.Remove(f.Chats, chatID)
}

// NewChatFilter returns a new `ChatFilter`.
func NewChatFilter(chatIDs ...int64) Filter {
	return &ChatFilter{Chats: chatIDs}
}

// RegexFilter passes message updates whose text or caption matches a regular expression pattern.
type RegexFilter struct {
	Pattern *regexp.Regexp // Pattern represents the regular expression pattern used for filtering messages.
}

// Check checks if the update's message matches the regular expression pattern.
func (f *RegexFilter) Check(update *models.Update) bool {
	if f.Pattern == nil {
		return false
	}

	msg := update.EffectiveMessage()
	if msg == nil {
		return false
	}
	if msg.Text != "" {
		return f.Pattern.MatchString(msg.Text)
	}

	return msg.Caption != "" && f.Pattern.MatchString(msg.Caption)
}

// And returns a new CombineFilter that combines the current filter with the provided filter using logical AND.
func (f *RegexFilter) And(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterAnd}
}

// Or returns a new CombineFilter that combines the current filter with the provided filter using logical OR.
func (f *RegexFilter) Or(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterOr}
}

// Xor returns a new CombineFilter that combines the current filter with the provided filter using logical XOR.
func (f *RegexFilter) Xor(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterXor}
}

// Not returns a new NotFilter negating the current filter.
func (f *RegexFilter) Not() Filter {
	return &NotFilter{f}
}

// NewRegexFilter returns a new `RegexFilter`.
func NewRegexFilter(pattern string) Filter {
	return &RegexFilter{Pattern: regexp.MustCompile(pattern)}
}

// TextFilter passes updates carrying a message with a non-empty text.
type TextFilter struct{}

// Check checks if the update carries a message with text.
func (f *TextFilter) Check(update *models.Update) bool {
	msg := update.EffectiveMessage()

	return msg != nil && msg.Text != ""
}

// And returns a new CombineFilter that combines the current filter with the provided filter using logical AND.
func (f *TextFilter) And(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterAnd}
}

// Or returns a new CombineFilter that combines the current filter with the provided filter using logical OR.
func (f *TextFilter) Or(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterOr}
}

// Xor returns a new CombineFilter that combines the current filter with the provided filter using logical XOR.
func (f *TextFilter) Xor(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterXor}
}

// Not returns a new NotFilter negating the current filter.
func (f *TextFilter) Not() Filter {
	return &NotFilter{f}
}

// NewTextFilter returns a new `TextFilter`.
func NewTextFilter() Filter {
	return &TextFilter{}
}

// PrivateFilter passes updates originating from one-on-one chats.
type PrivateFilter struct{}

// Check checks if the update's effective chat is a private chat.
func (f *PrivateFilter) Check(update *models.Update) bool {
	chat := update.EffectiveChat()

	return chat != nil && chat.IsPrivate()
}

// And returns a new CombineFilter that combines the current filter with the provided filter using logical AND.
func (f *PrivateFilter) And(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterAnd}
}

// Or returns a new CombineFilter that combines the current filter with the provided filter using logical OR.
func (f *PrivateFilter) Or(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterOr}
}

// Xor returns a new CombineFilter that combines the current filter with the provided filter using logical XOR.
func (f *PrivateFilter) Xor(filter Filter) Filter {
	return &CombineFilter{f, filter, CombineFilterXor}
}

// Not returns a new NotFilter negating the current filter.
func (f *PrivateFilter) Not() Filter {
	return &NotFilter{f}
}

// NewPrivateFilter returns a new `PrivateFilter`.
func NewPrivateFilter() Filter {
	return &PrivateFilter{}
}
