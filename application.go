package telango

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/n0h4rt/telango/models"
	"github.com/n0h4rt/telango/utils"
)

// Application represents the main application.
//
// It provides methods for managing the application's lifecycle, including initialization,
// starting, stopping, fetching updates and handling them along with any errors.
// The application also owns the shared data stores, manages their persistence and
// schedules jobs through the job queue.
//
// Handlers are registered in numbered groups. Every update is offered to the
// groups in ascending order and within each group the first matching handler
// runs. A later group sees the values earlier groups attached to the context.
type Application struct {
	Config *Config // Config holds the configuration for the application.

	bot         Bot         // bot talks to the Bot API.
	persistence Persistence // persistence manages data persistence for the application.
	updater     *Updater    // updater feeds the update queue.
	jobQueue    *JobQueue   // jobQueue schedules timed callbacks.

	botData  *SyncMap[string, any]                  // botData is shared across every chat and user.
	chatData *SyncMap[int64, *SyncMap[string, any]] // chatData holds one store per chat.
	userData *SyncMap[int64, *SyncMap[string, any]] // userData holds one store per user.

	updateQueue   chan *models.Update // updateQueue buffers updates between the updater and the dispatch.
	handlers      map[int][]Handler   // handlers contains the registered handlers per group.
	groups        []int               // groups keeps the group numbers in ascending order.
	errorHandlers []Callback          // errorHandlers contains the registered error handlers.
	knownCommands []string            // knownCommands collects the commands of the registered handlers.

	context     context.Context    // Context for running the application.
	cancelCtx   context.CancelFunc // Function for stopping the application.
	wg          sync.WaitGroup     // wg tracks the dispatch goroutine.
	initialized bool               // initialized indicates whether the application has been initialized.
}

// New creates a new instance of the [Application] with the provided configuration.
//
// Args:
//   - config: The configuration for the application.
//   - opts: Optional parameters for the application.
//
// Returns:
//   - *Application: A new instance of the [Application].
func New(config *Config, opts ...Option) *Application {
	if config == nil {
		config = &Config{}
	}

	app := &Application{
		Config:   config,
		handlers: map[int][]Handler{},
	}
	for _, opt := range opts {
		opt(app)
	}

	return app
}

// AddHandler adds a new handler to the application.
//
// Args:
//   - handler: The handler to add to the application.
//   - group: The group to add the handler to, defaults to group 0.
//
// Returns:
//   - *Application: The application instance for method chaining.
func (app *Application) AddHandler(handler Handler, group ...int) *Application {
	grp := 0
	if len(group) > 0 {
		grp = group[0]
	}

	if ch, ok := handler.(*CommandHandler); ok {
		ch.app = app
		app.knownCommands = append(app.knownCommands, ch.Commands...)
	}

	if _, ok := app.handlers[grp]; !ok {
		app.groups = append(app.groups, grp)
		sort.Ints(app.groups)
	}
	app.handlers[grp] = append(app.handlers[grp], handler)

	return app
}

// RemoveHandler removes a handler from the application.
//
// Args:
//   - handler: The handler to remove from the application.
//   - group: The group to remove the handler from, defaults to group 0.
//
// Returns:
//   - *Application: The application instance for method chaining.
func (app *Application) RemoveHandler(handler Handler, group ...int) *Application {
	grp := 0
	if len(group) > 0 {
		grp = group[0]
	}

	if ch, ok := handler.(*CommandHandler); ok {
		for _, command := range ch.Commands {
			app.knownCommands = utils.Remove(app.knownCommands, command)
		}
	}

	app.handlers[grp] = utils.Remove(app.handlers[grp], handler)
	if len(app.handlers[grp]) == 0 {
		delete(app.handlers, grp)
		app.groups = utils.Remove(app.groups, grp)
	}

	return app
}

// AddErrorHandler adds a new error handler to the application.
//
// Error handlers run whenever a handler or a job returns an error or
// panics. They receive a context carrying the error and its origin.
//
// Args:
//   - callback: The error handler to add to the application.
//
// Returns:
//   - *Application: The application instance for method chaining.
func (app *Application) AddErrorHandler(callback Callback) *Application {
	app.errorHandlers = append(app.errorHandlers, callback)

	return app
}

// RemoveErrorHandler removes an error handler from the application.
//
// Args:
//   - callback: The error handler to remove from the application.
//
// Returns:
//   - *Application: The application instance for method chaining.
func (app *Application) RemoveErrorHandler(callback Callback) *Application {
	// Func values are not comparable, their code pointers are.
	ptr := reflect.ValueOf(callback).Pointer()
	for i, registered := range app.errorHandlers {
		if reflect.ValueOf(registered).Pointer() == ptr {
			app.errorHandlers = append(app.errorHandlers[:i], app.errorHandlers[i+1:]...)
			break
		}
	}

	return app
}

// UsePersistence enables the persistence layer for the application.
//
// Args:
//   - persistence: The persistence layer to use for the application.
//
// Returns:
//   - *Application: The application instance for method chaining.
func (app *Application) UsePersistence(persistence Persistence) *Application {
	app.persistence = persistence

	return app
}

// Bot returns the Bot API client used by the application.
func (app *Application) Bot() Bot {
	return app.bot
}

// JobQueue returns the job queue of the application.
func (app *Application) JobQueue() *JobQueue {
	return app.jobQueue
}

// GetBotData returns the shared bot data store.
func (app *Application) GetBotData() *SyncMap[string, any] {
	return app.botData
}

// GetChatData returns the data store of the given chat, creating it on first use.
//
// Args:
//   - chatID: The chat identifier.
//
// Returns:
//   - *SyncMap[string, any]: The data store of the chat.
func (app *Application) GetChatData(chatID int64) *SyncMap[string, any] {
	data, _ := app.chatData.GetOrSet(chatID, NewDataMap())

	return data
}

// GetUserData returns the data store of the given user, creating it on first use.
//
// Args:
//   - userID: The user identifier.
//
// Returns:
//   - *SyncMap[string, any]: The data store of the user.
func (app *Application) GetUserData(userID int64) *SyncMap[string, any] {
	data, _ := app.userData.GetOrSet(userID, NewDataMap())

	return data
}

// DropChatData deletes the data store of the given chat, both the live one
// and the persisted copy.
//
// Args:
//   - chatID: The chat identifier.
//
// Returns:
//   - error: An error if the persistence fails to drop its copy.
func (app *Application) DropChatData(chatID int64) error {
	app.chatData.Del(chatID)
	if app.persistence.StoreData().ChatData {
		return app.persistence.DropChatData(chatID)
	}

	return nil
}

// DropUserData deletes the data store of the given user, both the live one
// and the persisted copy.
//
// Args:
//   - userID: The user identifier.
//
// Returns:
//   - error: An error if the persistence fails to drop its copy.
func (app *Application) DropUserData(userID int64) error {
	app.userData.Del(userID)
	if app.persistence.StoreData().UserData {
		return app.persistence.DropUserData(userID)
	}

	return nil
}

// Initialize initializes the application.
//
// It fills in the configuration defaults, builds the bot when none was
// injected, prepares the data stores and loads the persisted data.
//
// Returns:
//   - error: An error if the bot or the persistence cannot be set up.
func (app *Application) Initialize() (err error) {
	if app.initialized {
		return
	}

	app.checkConfig()

	if app.bot == nil {
		if app.bot, err = NewExtBot(app.Config); err != nil {
			return
		}
	}
	if app.persistence == nil {
		// A GobPersistence without Filename keeps everything in memory.
		app.persistence = &GobPersistence{}
	}
	if err = app.persistence.Initialize(); err != nil {
		return
	}

	app.botData = NewDataMap()
	app.chatData = &SyncMap[int64, *SyncMap[string, any]]{M: map[int64]*SyncMap[string, any]{}}
	app.userData = &SyncMap[int64, *SyncMap[string, any]]{M: map[int64]*SyncMap[string, any]{}}
	app.updateQueue = make(chan *models.Update, app.Config.UpdateQueueSize)
	if app.jobQueue == nil {
		app.jobQueue = NewJobQueue(app)
	}

	if err = app.loadPersistedData(); err != nil {
		return
	}

	app.initialized = true

	return
}

// checkConfig checks certain configurations and assigns default values if they are left unset.
func (app *Application) checkConfig() {
	if app.Config.APIURL == "" {
		app.Config.APIURL = API_URL
	}
	if app.Config.PollTimeout == 0 {
		app.Config.PollTimeout = int(POLL_TIMEOUT / time.Second)
	}
	// The Bot API caps the long-poll window at 50 seconds.
	app.Config.PollTimeout = utils.Clamp(app.Config.PollTimeout, 0, 50)
	if app.Config.UpdateQueueSize <= 0 {
		app.Config.UpdateQueueSize = UPDATE_QUEUE_SIZE
	}
	if app.Config.CallbackCacheSize <= 0 {
		app.Config.CallbackCacheSize = CALLBACK_CACHE_SIZE
	}
	if app.Config.WebhookURL != "" && app.Config.WebhookListen == "" {
		app.Config.WebhookListen = ":8443"
	}
	if app.Config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// loadPersistedData seeds the live data stores from the persistence backend.
func (app *Application) loadPersistedData() error {
	store := app.persistence.StoreData()

	if store.BotData {
		data, err := app.persistence.GetBotData()
		if err != nil {
			return err
		}
		for key, value := range data {
			app.botData.Set(key, value)
		}
	}

	if store.ChatData {
		data, err := app.persistence.GetChatData()
		if err != nil {
			return err
		}
		for chatID, values := range data {
			handle := app.GetChatData(chatID)
			for key, value := range values {
				handle.Set(key, value)
			}
		}
	}

	if store.UserData {
		data, err := app.persistence.GetUserData()
		if err != nil {
			return err
		}
		for userID, values := range data {
			handle := app.GetUserData(userID)
			for key, value := range values {
				handle.Set(key, value)
			}
		}
	}

	if store.CallbackData {
		if ext, ok := app.bot.(*ExtBot); ok && ext.ArbitraryCallbackData() {
			data, err := app.persistence.GetCallbackData()
			if err != nil {
				return err
			}
			if data != nil {
				ext.CallbackDataCache().Restore(data)
			}
		}
	}

	return nil
}

// Start starts the application.
//
// It launches the persistence runner, the updater in the mode the
// configuration selects and the job queue, then begins consuming updates.
//
// Args:
//   - ctx: The context for running the application, nil means [context.Background].
//
// Returns:
//   - error: An error if a component fails to start.
func (app *Application) Start(ctx context.Context) (err error) {
	if !app.initialized {
		panic("the application is not initialized")
	}
	if app.context != nil {
		return ErrAlreadyRunning
	}

	if ctx == nil {
		ctx = context.Background()
	}
	app.context, app.cancelCtx = context.WithCancel(ctx)

	app.persistence.Runner(app.context)

	app.updater = NewUpdater(app.bot, app.updateQueue)
	if app.Config.WebhookURL != "" {
		err = app.updater.StartWebhook(app.context, app.Config)
	} else {
		err = app.updater.StartPolling(app.context, time.Duration(app.Config.PollTimeout)*time.Second)
	}
	if err != nil {
		return
	}

	if err = app.jobQueue.Start(app.context); err != nil {
		return
	}

	app.wg.Add(1)
	go app.consumeUpdates()

	return
}

// consumeUpdates feeds the queued updates into the dispatch until the
// application stops.
func (app *Application) consumeUpdates() {
	defer app.wg.Done()

	for {
		select {
		case <-app.context.Done():
			return
		case update := <-app.updateQueue:
			app.ProcessUpdate(update)
		}
	}
}

// ProcessUpdate dispatches a single update to the registered handlers.
//
// The groups run in ascending order and within each group the first handler
// whose Check passes is invoked. All of them share one context, so earlier
// groups can leave values for later ones. A handler returning
// [ErrHandlerStop] ends the dispatch silently, any other error goes to the
// error handlers and ends the dispatch too. Afterwards the touched data
// stores are pushed into the persistence backend.
//
// Args:
//   - update: The update to dispatch.
func (app *Application) ProcessUpdate(update *models.Update) {
	var context *Context

	for _, group := range app.groups {
		for _, handler := range app.handlers[group] {
			if !handler.Check(update) {
				continue
			}
			if context == nil {
				context = NewContextFromUpdate(update, app)
			}

			if err := app.invokeHandler(handler, update, context); err != nil {
				if !errors.Is(err, ErrHandlerStop) {
					app.DispatchError(update, err, nil, handler)
				}
				app.refreshContext(context, update)

				return
			}

			// One handler per group, continue with the next group.
			break
		}
	}

	if context == nil {
		app.logUnknownCommand(update)

		return
	}

	app.refreshContext(context, update)
}

// invokeHandler runs a single handler and converts its panics into errors.
func (app *Application) invokeHandler(handler Handler, update *models.Update, context *Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			var ok bool
			if err, ok = rec.(error); !ok {
				err = fmt.Errorf("handler panicked: %v", rec)
			}
		}
	}()

	return handler.Invoke(update, context)
}

// refreshContext pushes the data stores the context exposes into the
// persistence backend, and the callback data cache along with them when the
// update carries a callback query.
func (app *Application) refreshContext(c *Context, update *models.Update) {
	ctx := app.context
	if ctx == nil || ctx.Err() != nil {
		ctx = context.Background()
	}

	if err := c.RefreshData(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to refresh the persisted data.")
	}
	if update != nil && update.CallbackQuery != nil {
		app.updateCallbackPersistence()
	}
}

// updateCallbackPersistence pushes the callback data cache into the
// persistence backend.
func (app *Application) updateCallbackPersistence() {
	if !app.persistence.StoreData().CallbackData {
		return
	}
	ext, ok := app.bot.(*ExtBot)
	if !ok || !ext.ArbitraryCallbackData() {
		return
	}

	if err := app.persistence.UpdateCallbackData(ext.CallbackDataCache().Dump()); err != nil {
		log.Error().Err(err).Msg("Failed to persist the callback data cache.")
	}
}

// SuggestCommand returns the known command closest to the given one.
//
// Args:
//   - command: The command to compare, without the leading slash.
//
// Returns:
//   - string: The closest known command.
//   - bool: False when no known command resembles the given one.
func (app *Application) SuggestCommand(command string) (string, bool) {
	closest, ratio := utils.Closest(strings.ToLower(command), app.knownCommands)
	if ratio < SUGGESTION_RATIO {
		return "", false
	}

	return closest, true
}

// logUnknownCommand records a near miss when a command update matched no handler.
func (app *Application) logUnknownCommand(update *models.Update) {
	if update.Type() != models.OnMessage || !update.Message.IsCommand() {
		return
	}

	fields := strings.Fields(update.Message.Text)
	command := strings.ToLower(fields[0][1:])
	if at := strings.IndexByte(command, '@'); at >= 0 {
		command = command[:at]
	}
	if utils.Contains(app.knownCommands, command) {
		return
	}

	if closest, ok := app.SuggestCommand(command); ok {
		log.Debug().Str("Command", command).Str("Closest", closest).Msg("Received an unknown command.")
	}
}

// DispatchError dispatches an error to the error handlers.
//
// The error handlers receive a context exposing the error, the update or
// job it came from and the origin callback. An error handler returning
// [ErrHandlerStop] skips the remaining ones.
//
// Args:
//   - update: The update being handled when the error occurred, may be nil.
//   - err: The error to dispatch.
//   - job: The job being run when the error occurred, may be nil.
//   - origin: The handler or callback the error came from, may be nil.
func (app *Application) DispatchError(update *models.Update, err error, job *Job, origin any) {
	if len(app.errorHandlers) == 0 {
		log.Error().Err(err).Msg("An error occurred but no error handlers are registered.")

		return
	}

	context := NewContextFromError(update, err, app, job, origin)

	for _, callback := range app.errorHandlers {
		stop := func() (stop bool) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						AnErr("Origin", err).
						Interface("Recovered", rec).
						Msg("Another error occurred during handling an error.")
				}
			}()

			cbErr := callback(update, context)
			if cbErr == nil {
				return false
			}
			if errors.Is(cbErr, ErrHandlerStop) {
				return true
			}

			log.Error().
				AnErr("Origin", err).
				AnErr("Current", cbErr).
				Msg("Another error occurred during handling an error.")

			return false
		}()
		if stop {
			break
		}
	}
}

// Park waits for the application to stop or receive an interrupt signal.
func (app *Application) Park() {
	intCh := make(chan os.Signal, 1)
	signal.Notify(intCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-app.context.Done():
	case <-intCh:
		app.Stop()
	}
}

// Stop stops the application.
//
// The producers stop first, then the updates still queued are handled and
// every data store is pushed into the persistence backend before it closes.
func (app *Application) Stop() {
	if app.context == nil || app.context.Err() != nil {
		return
	}

	app.updater.Stop()
	_ = app.jobQueue.Stop()

	app.cancelCtx()
	app.wg.Wait()

	for len(app.updateQueue) > 0 {
		app.ProcessUpdate(<-app.updateQueue)
	}

	app.flushData()
	if err := app.persistence.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close the persistence.")
	}
}

// flushData pushes every live data store into the persistence backend.
func (app *Application) flushData() {
	store := app.persistence.StoreData()
	ctx := context.Background()

	if store.BotData {
		if err := app.persistence.RefreshBotData(ctx, app.botData); err != nil {
			log.Error().Err(err).Msg("Failed to flush the bot data.")
		}
	}
	if store.ChatData {
		app.chatData.Range(func(chatID int64, data *SyncMap[string, any]) bool {
			if err := app.persistence.RefreshChatData(ctx, chatID, data); err != nil {
				log.Error().Int64("ChatID", chatID).Err(err).Msg("Failed to flush the chat data.")
			}

			return true
		})
	}
	if store.UserData {
		app.userData.Range(func(userID int64, data *SyncMap[string, any]) bool {
			if err := app.persistence.RefreshUserData(ctx, userID, data); err != nil {
				log.Error().Int64("UserID", userID).Err(err).Msg("Failed to flush the user data.")
			}

			return true
		})
	}

	app.updateCallbackPersistence()

	if err := app.persistence.Flush(); err != nil {
		log.Error().Err(err).Msg("Failed to flush the persistence.")
	}
}

// GetContext returns the [context.Context] of the application.
//
// Returns:
//   - context.Context: The context of the application.
func (app *Application) GetContext() context.Context {
	return app.context
}
