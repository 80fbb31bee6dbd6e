package telango

import (
	"context"
	"errors"
	"fmt"

	"github.com/n0h4rt/telango/models"
)

// Context carries the state of one dispatched update, job run or error
// through every callback that handles it.
//
// A single Context is shared sequentially by all handler groups processing
// the same update, in ascending group order, so values attached by an
// earlier group are visible to later ones. Running callbacks concurrently
// voids that ordering guarantee.
//
// The bot, chat and user data maps are owned by the application. A Context
// captures the chat and user handles once, at construction, from whatever
// the update or job resolves to; the maps themselves are shared, only their
// contents may be mutated.
type Context struct {
	app *Application

	chatID   int64
	chatData *SyncMap[string, any]
	userID   int64
	userData *SyncMap[string, any]

	attrs OrderedSyncMap[string, any]

	Args     []string // Args holds the words following a command, filled by CommandHandler.
	Matches  []*Match // Matches holds regex captures, filled by pattern handlers.
	Error    error    // Error is the failure being handled, set on error contexts only.
	Job      *Job     // Job is the job owning this context, set for job runs and job errors.
	Callback any      // Callback is the handler or job callback that raised Error, when known.
}

// NewContext creates a bare context bound to the application.
// Framework code and tests use it as the base of the richer constructors.
func NewContext(app *Application) *Context {
	return &Context{
		app:   app,
		attrs: NewOrderedSyncMap[string, any](),
	}
}

// NewContextFromUpdate creates the context for one incoming update.
//
// The effective chat and user of the update decide which data handles are
// captured: an update without an effective chat yields a context without
// chat data, and likewise for the user. Absent handles stay absent for the
// lifetime of the context even if the maps come into existence later.
//
// Args:
//   - update: The update being dispatched, may be nil.
//   - app: The application owning the data stores.
//
// Returns:
//   - *Context: The context to pass through the handler chain.
func NewContextFromUpdate(update *models.Update, app *Application) *Context {
	ctx := NewContext(app)
	if update == nil {
		return ctx
	}

	if chat := update.EffectiveChat(); chat != nil {
		ctx.chatID = chat.ID
		ctx.chatData = app.GetChatData(chat.ID)
	}
	if user := update.EffectiveUser(); user != nil {
		ctx.userID = user.ID
		ctx.userData = app.GetUserData(user.ID)
	}

	return ctx
}

// NewContextFromJob creates the context for one job run.
//
// The job's ChatID and UserID decide which data handles are captured;
// zero means not associated.
//
// Args:
//   - job: The job about to run, may be nil.
//   - app: The application owning the data stores.
//
// Returns:
//   - *Context: The context passed to the job callback.
func NewContextFromJob(job *Job, app *Application) *Context {
	ctx := NewContext(app)
	if job == nil {
		return ctx
	}

	if job.ChatID != 0 {
		ctx.chatID = job.ChatID
		ctx.chatData = app.GetChatData(job.ChatID)
	}
	if job.UserID != 0 {
		ctx.userID = job.UserID
		ctx.userData = app.GetUserData(job.UserID)
	}
	ctx.Job = job

	return ctx
}

// NewContextFromError creates the context passed to error handlers.
//
// It resolves the update like [NewContextFromUpdate], then attaches the
// failure and its origin.
//
// Args:
//   - update: The update being processed when the failure happened, may be nil.
//   - err: The failure.
//   - app: The application owning the data stores.
//   - job: The job that failed, nil for update failures.
//   - callback: The callback that raised the failure, when known.
//
// Returns:
//   - *Context: The context passed to the error handlers.
func NewContextFromError(update *models.Update, err error, app *Application, job *Job, callback any) *Context {
	ctx := NewContextFromUpdate(update, app)
	ctx.Error = err
	ctx.Job = job
	ctx.Callback = callback

	return ctx
}

// App returns the application this context belongs to.
func (c *Context) App() *Application {
	return c.app
}

// Bot returns the bot client of the application.
func (c *Context) Bot() Bot {
	return c.app.bot
}

// JobQueue returns the job queue of the application.
func (c *Context) JobQueue() *JobQueue {
	return c.app.jobQueue
}

// UpdateQueue returns the queue incoming updates are dispatched from.
// Callbacks may push synthetic updates into it.
func (c *Context) UpdateQueue() chan<- *models.Update {
	return c.app.updateQueue
}

// BotData returns the application-wide shared data map.
// Every context of the application resolves to the same map.
func (c *Context) BotData() *SyncMap[string, any] {
	return c.app.botData
}

// ChatData returns the data map of the chat this context was constructed
// for, or nil when no chat was resolved. Mutate the map contents to store
// values; the handle itself cannot be replaced.
func (c *Context) ChatData() *SyncMap[string, any] {
	return c.chatData
}

// ChatID returns the identifier of the resolved chat.
//
// Returns:
//   - int64: The chat identifier.
//   - bool: False when the context carries no chat.
func (c *Context) ChatID() (int64, bool) {
	return c.chatID, c.chatData != nil
}

// UserData returns the data map of the user this context was constructed
// for, or nil when no user was resolved.
func (c *Context) UserData() *SyncMap[string, any] {
	return c.userData
}

// UserID returns the identifier of the resolved user.
//
// Returns:
//   - int64: The user identifier.
//   - bool: False when the context carries no user.
func (c *Context) UserID() (int64, bool) {
	return c.userID, c.userData != nil
}

// SetBotData always fails with ErrDataAssignment.
// The bot data map is owned by the application; mutate its contents instead.
func (c *Context) SetBotData(*SyncMap[string, any]) error {
	return fmt.Errorf("%w: bot data", ErrDataAssignment)
}

// SetChatData always fails with ErrDataAssignment.
// The chat data map is owned by the application; mutate its contents instead.
func (c *Context) SetChatData(*SyncMap[string, any]) error {
	return fmt.Errorf("%w: chat data", ErrDataAssignment)
}

// SetUserData always fails with ErrDataAssignment.
// The user data map is owned by the application; mutate its contents instead.
func (c *Context) SetUserData(*SyncMap[string, any]) error {
	return fmt.Errorf("%w: user data", ErrDataAssignment)
}

// Match returns the first regex match attached to the context.
//
// Returns:
//   - *Match: The first match, or nil when the context carries none.
func (c *Context) Match() *Match {
	if len(c.Matches) == 0 {
		return nil
	}

	return c.Matches[0]
}

// RefreshData pushes the data maps this context resolves to into the
// persistence backend, so an external store observes the mutations made by
// the callbacks.
//
// Each enabled category is pushed independently: bot data always, chat and
// user data only when the context captured a handle. Disabled categories
// and absent handles are skipped without error. The dispatcher calls this
// after the callback chain of an update completes and after each job run.
//
// Args:
//   - ctx: The context bounding the backend calls.
//
// Returns:
//   - error: The joined failures of the individual hooks, nil when all succeeded.
func (c *Context) RefreshData(ctx context.Context) error {
	persistence := c.app.persistence
	if persistence == nil {
		return nil
	}

	store := persistence.StoreData()
	var errs []error

	if store.BotData {
		if err := persistence.RefreshBotData(ctx, c.app.botData); err != nil {
			errs = append(errs, fmt.Errorf("refreshing bot data: %w", err))
		}
	}
	if store.ChatData && c.chatData != nil {
		if err := persistence.RefreshChatData(ctx, c.chatID, c.chatData); err != nil {
			errs = append(errs, fmt.Errorf("refreshing chat data: %w", err))
		}
	}
	if store.UserData && c.userData != nil {
		if err := persistence.RefreshUserData(ctx, c.userID, c.userData); err != nil {
			errs = append(errs, fmt.Errorf("refreshing user data: %w", err))
		}
	}

	return errors.Join(errs...)
}

// DropCallbackData deletes the cached callback data of the keyboard the
// given query belongs to. Call it once the conversation a keyboard drives
// is finished, so the cache does not hold its payloads until eviction.
//
// Args:
//   - query: The callback query whose keyboard should be forgotten.
//
// Returns:
//   - error: ErrNoArbitraryCallbackData when the bot keeps no callback data,
//     ErrQueryNotFound when the query is unknown to the cache, nil on success.
func (c *Context) DropCallbackData(query *models.CallbackQuery) error {
	bot, ok := c.app.bot.(*ExtBot)
	if !ok || !bot.ArbitraryCallbackData() {
		return ErrNoArbitraryCallbackData
	}

	return bot.CallbackDataCache().DropQuery(query)
}

// Set attaches a single named value to the context.
//
// The well-known names "args", "matches", "error" and "job" address the
// typed fields when the value has the matching type; every other name,
// and a mistyped value for a known name, lands in the ad-hoc attribute
// table. Handlers use this to project parsing results onto the context;
// callbacks may use it to pass values to later handler groups.
func (c *Context) Set(name string, value any) {
	switch name {
	case "args":
		if v, ok := value.([]string); ok {
			c.Args = v
			return
		}
	case "matches":
		if v, ok := value.([]*Match); ok {
			c.Matches = v
			return
		}
	case "error":
		if v, ok := value.(error); ok {
			c.Error = v
			return
		}
	case "job":
		if v, ok := value.(*Job); ok {
			c.Job = v
			return
		}
	}

	c.attrs.Set(name, value)
}

// Merge applies a name-to-value mapping onto the context, entry by entry,
// with the same routing as [Context.Set].
func (c *Context) Merge(data map[string]any) {
	for name, value := range data {
		c.Set(name, value)
	}
}

// Get reads a named value from the context. The well-known names resolve
// to the typed fields first; everything else is looked up in the ad-hoc
// attribute table.
//
// Returns:
//   - any: The value.
//   - bool: False when the name is set nowhere on the context.
func (c *Context) Get(name string) (any, bool) {
	switch name {
	case "args":
		if c.Args != nil {
			return c.Args, true
		}
	case "matches":
		if c.Matches != nil {
			return c.Matches, true
		}
	case "error":
		if c.Error != nil {
			return c.Error, true
		}
	case "job":
		if c.Job != nil {
			return c.Job, true
		}
	}

	return c.attrs.Get(name)
}
