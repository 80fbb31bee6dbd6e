package telango

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/n0h4rt/telango/models"
)

// newTestApp builds an initialized application that never touches the network.
func newTestApp(t *testing.T, opts ...Option) *Application {
	t.Helper()

	opts = append([]Option{WithBot(&fakeBot{username: "testbot"})}, opts...)
	app := New(&Config{Token: "42:TEST"}, opts...)
	if err := app.Initialize(); err != nil {
		t.Fatalf("failed to initialize the application: %v", err)
	}

	return app
}

// messageUpdate builds a plain group message update.
func messageUpdate(chatID, userID int64, text string) *models.Update {
	return &models.Update{
		UpdateID: 1,
		Message: &models.Message{
			MessageID: 1,
			From:      &models.User{ID: userID, FirstName: "Tester"},
			Chat:      &models.Chat{ID: chatID, Type: models.CHAT_GROUP, Title: "Test Group"},
			Date:      time.Now().Unix(),
			Text:      text,
		},
	}
}

func TestNew_NilConfig(t *testing.T) {
	app := New(nil)

	assert.NotNil(t, app.Config, "a nil configuration should be replaced by an empty one")
}

func TestApplication_InitializeDefaults(t *testing.T) {
	app := newTestApp(t)

	// Assert that the unset fields received their defaults
	assert.Equal(t, API_URL, app.Config.APIURL)
	assert.Equal(t, 30, app.Config.PollTimeout)
	assert.Equal(t, UPDATE_QUEUE_SIZE, app.Config.UpdateQueueSize)
	assert.Equal(t, CALLBACK_CACHE_SIZE, app.Config.CallbackCacheSize)

	// Assert that an oversized poll window is clamped to the API limit
	app = New(&Config{Token: "42:TEST", PollTimeout: 100}, WithBot(&fakeBot{}))
	assert.NoError(t, app.Initialize())
	assert.Equal(t, 50, app.Config.PollTimeout)

	// Assert that a webhook URL implies a listen address
	app = New(&Config{Token: "42:TEST", WebhookURL: "https://example.org/hook"}, WithBot(&fakeBot{}))
	assert.NoError(t, app.Initialize())
	assert.Equal(t, ":8443", app.Config.WebhookListen)

	// Assert that the queue capacity option wins over the default
	app = New(&Config{Token: "42:TEST"}, WithBot(&fakeBot{}), WithUpdateQueueSize(5))
	assert.NoError(t, app.Initialize())
	assert.Equal(t, 5, cap(app.updateQueue), "the update queue should use the configured capacity")
}

func TestApplication_StartRequiresInitialize(t *testing.T) {
	app := New(&Config{Token: "42:TEST"}, WithBot(&fakeBot{}))

	// Assert that starting an uninitialized application panics
	assert.Panics(t, func() { _ = app.Start(context.Background()) })
}

func TestApplication_HandlerGroups(t *testing.T) {
	app := newTestApp(t)

	var order []string
	record := func(name string) Callback {
		return func(update *models.Update, context *Context) error {
			order = append(order, name)
			return nil
		}
	}

	// Register handlers in three groups, out of order
	app.AddHandler(NewMessageHandler(record("late"), nil), 10).
		AddHandler(NewMessageHandler(record("early"), nil), -3).
		AddHandler(NewMessageHandler(record("first"), nil)).
		AddHandler(NewMessageHandler(record("second"), nil))

	app.ProcessUpdate(messageUpdate(10, 20, "hello"))

	// Assert that the groups ran in ascending order and only the first
	// matching handler of group 0 ran
	assert.Equal(t, []string{"early", "first", "late"}, order)
}

func TestApplication_SharedContextAcrossGroups(t *testing.T) {
	app := newTestApp(t)

	// The first group leaves a value on the context
	app.AddHandler(NewMessageHandler(func(update *models.Update, context *Context) error {
		context.Set("greeting", "hello from group zero")
		return nil
	}, nil), 0)

	// The second group picks it up
	var got any
	app.AddHandler(NewMessageHandler(func(update *models.Update, context *Context) error {
		got, _ = context.Get("greeting")
		return nil
	}, nil), 1)

	app.ProcessUpdate(messageUpdate(10, 20, "hello"))

	assert.Equal(t, "hello from group zero", got, "later groups should see values attached by earlier ones")
}

func TestApplication_HandlerStop(t *testing.T) {
	app := newTestApp(t)

	var errorHandled, laterGroupRan bool
	app.AddHandler(NewMessageHandler(func(update *models.Update, context *Context) error {
		return ErrHandlerStop
	}, nil), 0)
	app.AddHandler(NewMessageHandler(func(update *models.Update, context *Context) error {
		laterGroupRan = true
		return nil
	}, nil), 1)
	app.AddErrorHandler(func(update *models.Update, context *Context) error {
		errorHandled = true
		return nil
	})

	app.ProcessUpdate(messageUpdate(10, 20, "hello"))

	// Assert that the stop was silent and final
	assert.False(t, errorHandled, "a handler stop should not reach the error handlers")
	assert.False(t, laterGroupRan, "a handler stop should end the dispatch")
}

func TestApplication_ErrorDispatch(t *testing.T) {
	app := newTestApp(t)

	cause := errors.New("handler failed")
	failing := NewMessageHandler(func(update *models.Update, context *Context) error {
		return cause
	}, nil)
	app.AddHandler(failing, 0)

	var laterGroupRan bool
	app.AddHandler(NewMessageHandler(func(update *models.Update, context *Context) error {
		laterGroupRan = true
		return nil
	}, nil), 1)

	var handledErr error
	var origin any
	app.AddErrorHandler(func(update *models.Update, context *Context) error {
		handledErr = context.Error
		origin = context.Callback
		return nil
	})

	update := messageUpdate(10, 20, "hello")
	app.ProcessUpdate(update)

	// Assert that the error handler saw the failure and its origin
	assert.Equal(t, cause, handledErr)
	assert.Same(t, failing, origin)
	assert.False(t, laterGroupRan, "an error should end the dispatch")
}

func TestApplication_HandlerPanic(t *testing.T) {
	app := newTestApp(t)

	app.AddHandler(NewMessageHandler(func(update *models.Update, context *Context) error {
		panic("boom")
	}, nil))

	var handledErr error
	app.AddErrorHandler(func(update *models.Update, context *Context) error {
		handledErr = context.Error
		return nil
	})

	// Assert that the dispatch survives the panic
	assert.NotPanics(t, func() { app.ProcessUpdate(messageUpdate(10, 20, "hello")) })
	assert.ErrorContains(t, handledErr, "handler panicked")
}

func TestApplication_ErrorHandlerStop(t *testing.T) {
	app := newTestApp(t)

	app.AddHandler(NewMessageHandler(func(update *models.Update, context *Context) error {
		return errors.New("handler failed")
	}, nil))

	var secondRan bool
	app.AddErrorHandler(func(update *models.Update, context *Context) error {
		return ErrHandlerStop
	})
	app.AddErrorHandler(func(update *models.Update, context *Context) error {
		secondRan = true
		return nil
	})

	app.ProcessUpdate(messageUpdate(10, 20, "hello"))

	assert.False(t, secondRan, "a stopping error handler should skip the remaining ones")
}

func TestApplication_PanickingErrorHandler(t *testing.T) {
	app := newTestApp(t)

	app.AddHandler(NewMessageHandler(func(update *models.Update, context *Context) error {
		return errors.New("handler failed")
	}, nil))

	var secondRan bool
	app.AddErrorHandler(func(update *models.Update, context *Context) error {
		panic("error handler boom")
	})
	app.AddErrorHandler(func(update *models.Update, context *Context) error {
		secondRan = true
		return nil
	})

	// Assert that a panicking error handler does not take down the dispatch
	assert.NotPanics(t, func() { app.ProcessUpdate(messageUpdate(10, 20, "hello")) })
	assert.True(t, secondRan, "the remaining error handlers should still run")
}

func TestApplication_AddRemoveHandler(t *testing.T) {
	app := newTestApp(t)

	var invoked bool
	handler := NewMessageHandler(func(update *models.Update, context *Context) error {
		invoked = true
		return nil
	}, nil)

	// Register and remove the handler again
	app.AddHandler(handler, 3).RemoveHandler(handler, 3)

	app.ProcessUpdate(messageUpdate(10, 20, "hello"))

	assert.False(t, invoked, "a removed handler should not run")
	assert.Empty(t, app.groups, "removing the last handler of a group should remove the group")
}

func TestApplication_RemoveErrorHandler(t *testing.T) {
	app := newTestApp(t)

	app.AddHandler(NewMessageHandler(func(update *models.Update, context *Context) error {
		return errors.New("handler failed")
	}, nil))

	var removedRan, keptRan bool
	removed := func(update *models.Update, context *Context) error {
		removedRan = true
		return nil
	}
	kept := func(update *models.Update, context *Context) error {
		keptRan = true
		return nil
	}

	app.AddErrorHandler(removed).AddErrorHandler(kept).RemoveErrorHandler(removed)

	app.ProcessUpdate(messageUpdate(10, 20, "hello"))

	assert.False(t, removedRan, "a removed error handler should not run")
	assert.True(t, keptRan)
}

func TestApplication_DataStores(t *testing.T) {
	persistence := &GobPersistence{}
	app := newTestApp(t, WithPersistence(persistence))

	// Assert that the same chat resolves to the same store
	first := app.GetChatData(10)
	first.Set("topic", "weather")
	assert.Same(t, first, app.GetChatData(10))

	// Fill the persisted mirror
	assert.NoError(t, persistence.RefreshChatData(context.Background(), 10, first))
	_, ok := persistence.ChatData.Get(10)
	assert.True(t, ok)

	// Drop the chat
	assert.NoError(t, app.DropChatData(10))

	// Assert that both the live store and the mirror are gone
	_, ok = app.GetChatData(10).Get("topic")
	assert.False(t, ok, "dropping a chat should empty its live store")
	_, ok = persistence.ChatData.Get(10)
	assert.False(t, ok, "dropping a chat should remove its persisted mirror")

	// The user side behaves the same
	app.GetUserData(20).Set("visits", 1)
	assert.NoError(t, app.DropUserData(20))
	_, ok = app.GetUserData(20).Get("visits")
	assert.False(t, ok)
}

func TestApplication_ProcessUpdateRefreshesData(t *testing.T) {
	persistence := &GobPersistence{}
	app := newTestApp(t, WithPersistence(persistence))

	app.AddHandler(NewMessageHandler(func(update *models.Update, context *Context) error {
		context.ChatData().Set("topic", "weather")
		return nil
	}, nil))

	app.ProcessUpdate(messageUpdate(10, 20, "hello"))

	// Assert that the mutation reached the backend after the dispatch
	mirror, ok := persistence.ChatData.Get(10)
	assert.True(t, ok, "the dispatch should push the touched stores into the backend")
	topic, _ := mirror.Get("topic")
	assert.Equal(t, "weather", topic)
}

func TestApplication_ProcessUpdateWithoutMatch(t *testing.T) {
	recorder := newRecordingPersistence(AllStoreData())
	app := newTestApp(t, WithPersistence(recorder))

	// Dispatch an update no handler wants
	assert.NotPanics(t, func() { app.ProcessUpdate(messageUpdate(10, 20, "/unknown")) })

	// Assert that nothing was pushed into the backend
	assert.Equal(t, 0, recorder.counts("bot"), "an unhandled update should not refresh the backend")
}

func TestApplication_SuggestCommand(t *testing.T) {
	app := newTestApp(t)

	noop := func(update *models.Update, context *Context) error { return nil }
	app.AddHandler(NewCommandHandler(noop, nil, "start", "help"))

	// Assert that a close miss resolves to the known command
	suggestion, ok := app.SuggestCommand("strat")
	assert.True(t, ok)
	assert.Equal(t, "start", suggestion)

	// Assert that an unrelated word resolves to nothing
	_, ok = app.SuggestCommand("zzzz")
	assert.False(t, ok)
}

func TestApplication_Lifecycle(t *testing.T) {
	bot := &fakeBot{
		username: "testbot",
		batches: [][]*models.Update{
			{messageUpdate(10, 20, "/start")},
		},
	}
	persistence := &GobPersistence{}
	app := newTestApp(t, WithBot(bot), WithPersistence(persistence))

	var handled atomic.Int32
	app.AddHandler(NewCommandHandler(func(update *models.Update, context *Context) error {
		context.ChatData().Set("started", true)
		handled.Add(1)
		return nil
	}, nil, "start"))

	// Start the application and wait for the queued update to be handled
	assert.NoError(t, app.Start(context.Background()))
	assert.Eventually(t, func() bool { return handled.Load() == 1 }, time.Second, 5*time.Millisecond,
		"the polled update should reach the handler")

	// Assert that starting twice is refused
	assert.ErrorIs(t, app.Start(context.Background()), ErrAlreadyRunning)

	app.Stop()

	// Assert that the shutdown flushed the stores into the backend
	mirror, ok := persistence.ChatData.Get(10)
	assert.True(t, ok)
	started, _ := mirror.Get("started")
	assert.Equal(t, true, started)

	// Assert that stopping twice is harmless
	assert.NotPanics(t, app.Stop)
}
