package telango

import (
	"regexp"
	"strings"

	"github.com/n0h4rt/telango/models"
	"github.com/n0h4rt/telango/utils"
)

// Handler is an interface that defines the methods for handling updates.
//
// Check reports whether the handler wants the update and must not modify it;
// the same update is offered to every handler group in turn.
// Invoke runs the handler on an update that passed Check.
type Handler interface {
	Check(*models.Update) bool
	Invoke(*models.Update, *Context) error
}

// Callback is a function type that represents a callback function for handling updates.
//
// A returned error is forwarded to the error handlers,
// except for [ErrHandlerStop] which silently ends the dispatch of the current update.
type Callback func(*models.Update, *Context) error

// CommandHandler is a struct that implements the Handler interface for handling commands in message updates.
//
// A command is a message starting with a slash, such as "/start" or
// "/help@somebot". Commands suffixed with a bot username are only accepted
// when the username belongs to this bot.
type CommandHandler struct {
	Callback Callback
	Filter   Filter
	Commands []string
	app      *Application
}

// parseCommand extracts the command name and its arguments from the update.
// It leaves the update untouched, the parsed values travel via the context.
func (ch *CommandHandler) parseCommand(update *models.Update) (command string, args []string, ok bool) {
	if update.Type() != models.OnMessage {
		return
	}
	if !update.Message.IsCommand() {
		return
	}

	fields := strings.Fields(update.Message.Text)
	command = strings.ToLower(fields[0][1:])
	if at := strings.IndexByte(command, '@'); at >= 0 {
		mention := command[at+1:]
		command = command[:at]
		if ch.app != nil && ch.app.bot != nil {
			if username := ch.app.bot.Username(); username != "" && !strings.EqualFold(mention, username) {
				return "", nil, false
			}
		}
	}
	if !utils.Contains(ch.Commands, command) {
		return "", nil, false
	}

	args = fields[1:]
	ok = true

	return
}

// Check checks if the update is a message carrying one of the handler's commands.
func (ch *CommandHandler) Check(update *models.Update) bool {
	if _, _, ok := ch.parseCommand(update); !ok {
		return false
	}
	ok := true
	if ch.Filter != nil {
		ok = ch.Filter.Check(update)
	}

	return ok
}

// Invoke projects the command arguments onto the context and executes the callback function.
func (ch *CommandHandler) Invoke(update *models.Update, context *Context) error {
	_, args, _ := ch.parseCommand(update)
	context.Set("args", args)

	return ch.Callback(update, context)
}

// NewCommandHandler returns a new `CommandHandler`.
//
// Command names are matched without the leading slash and case insensitively.
func NewCommandHandler(callback Callback, filter Filter, commands ...string) Handler {
	for i, command := range commands {
		commands[i] = strings.ToLower(strings.TrimPrefix(command, "/"))
	}

	return &CommandHandler{
		Callback: callback,
		Filter:   filter,
		Commands: commands,
	}
}

// MessageHandler is a struct that implements the Handler interface for handling message updates.
type MessageHandler struct {
	Callback Callback
	Filter   Filter
	Types    models.UpdateType
}

// Check checks if the update carries a message of one of the accepted kinds.
func (mh *MessageHandler) Check(update *models.Update) bool {
	if mh.Types&update.Type() == 0 {
		return false
	}
	ok := true
	if mh.Filter != nil {
		ok = mh.Filter.Check(update)
	}

	return ok
}

// Invoke executes the callback function for the message update.
func (mh *MessageHandler) Invoke(update *models.Update, context *Context) error {
	return mh.Callback(update, context)
}

// NewMessageHandler returns a new `MessageHandler` accepting new incoming messages.
// Assign [MessageHandler.Types] to widen it to edits and channel posts.
func NewMessageHandler(callback Callback, filter Filter) Handler {
	return &MessageHandler{
		Callback: callback,
		Filter:   filter,
		Types:    models.OnMessage,
	}
}

// CallbackQueryHandler is a struct that implements the Handler interface for handling callback query updates.
//
// When a pattern is set, only queries whose data matches the pattern are
// accepted, and the match is projected onto the context. Queries resolved
// into arbitrary payloads carry no matchable string and are skipped by
// patterned handlers.
type CallbackQueryHandler struct {
	Callback Callback
	Filter   Filter
	Pattern  *regexp.Regexp
}

// Check checks if the update is a callback query matching the handler's pattern.
func (ch *CallbackQueryHandler) Check(update *models.Update) bool {
	if update.Type() != models.OnCallbackQuery {
		return false
	}
	if ch.Pattern != nil {
		if update.CallbackQuery.Payload != nil {
			return false
		}
		if !ch.Pattern.MatchString(update.CallbackQuery.Data) {
			return false
		}
	}
	ok := true
	if ch.Filter != nil {
		ok = ch.Filter.Check(update)
	}

	return ok
}

// Invoke projects the pattern match onto the context and executes the callback function.
func (ch *CallbackQueryHandler) Invoke(update *models.Update, context *Context) error {
	if ch.Pattern != nil {
		if match := NewMatch(ch.Pattern, update.CallbackQuery.Data); match != nil {
			context.Set("matches", []*Match{match})
		}
	}

	return ch.Callback(update, context)
}

// NewCallbackQueryHandler returns a new `CallbackQueryHandler`.
// An empty pattern accepts every callback query.
func NewCallbackQueryHandler(callback Callback, filter Filter, pattern string) Handler {
	handler := &CallbackQueryHandler{
		Callback: callback,
		Filter:   filter,
	}
	if pattern != "" {
		handler.Pattern = regexp.MustCompile(pattern)
	}

	return handler
}

// RegexHandler is a struct that implements the Handler interface for handling message updates matching a pattern.
type RegexHandler struct {
	Callback Callback
	Filter   Filter
	Pattern  *regexp.Regexp
	Types    models.UpdateType
}

// matchable returns the text the pattern runs against, preferring the
// message text over the caption.
func (rh *RegexHandler) matchable(update *models.Update) string {
	if rh.Types&update.Type() == 0 {
		return ""
	}
	msg := update.EffectiveMessage()
	if msg == nil {
		return ""
	}
	if msg.Text != "" {
		return msg.Text
	}

	return msg.Caption
}

// Check checks if the update carries a message matching the pattern.
func (rh *RegexHandler) Check(update *models.Update) bool {
	text := rh.matchable(update)
	if text == "" || !rh.Pattern.MatchString(text) {
		return false
	}
	ok := true
	if rh.Filter != nil {
		ok = rh.Filter.Check(update)
	}

	return ok
}

// Invoke projects the pattern matches onto the context and executes the callback function.
func (rh *RegexHandler) Invoke(update *models.Update, context *Context) error {
	context.Set("matches", FindMatches(rh.Pattern, rh.matchable(update)))

	return rh.Callback(update, context)
}

// NewRegexHandler returns a new `RegexHandler` accepting new incoming messages.
// Assign [RegexHandler.Types] to widen it to edits and channel posts.
func NewRegexHandler(callback Callback, filter Filter, pattern string) Handler {
	return &RegexHandler{
		Callback: callback,
		Filter:   filter,
		Pattern:  regexp.MustCompile(pattern),
		Types:    models.OnMessage,
	}
}

// TypeHandler is a struct that implements the Handler interface for handling updates of a specific type.
type TypeHandler struct {
	Callback Callback
	Filter   Filter
	Type     models.UpdateType
}

// Check checks if the update is of the specified type.
func (th *TypeHandler) Check(update *models.Update) bool {
	if th.Type&update.Type() == 0 {
		return false
	}
	ok := true
	if th.Filter != nil {
		ok = th.Filter.Check(update)
	}

	return ok
}

// Invoke executes the callback function for the update of the specified type.
func (th *TypeHandler) Invoke(update *models.Update, context *Context) error {
	return th.Callback(update, context)
}

// NewTypeHandler returns a new `TypeHandler`.
func NewTypeHandler(callback Callback, filter Filter, updateType models.UpdateType) Handler {
	return &TypeHandler{
		Callback: callback,
		Filter:   filter,
		Type:     updateType,
	}
}
