package telango

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/n0h4rt/telango/models"
)

// fakeBot is an offline Bot implementation recording what the framework asks of it.
// GetUpdates serves the queued batches one per call and long-polls afterwards.
type fakeBot struct {
	sync.Mutex
	username string
	batches  [][]*models.Update
	offsets  []int64
	sent     []fakeSentMessage
	fail     error
}

type fakeSentMessage struct {
	ChatID int64
	Text   string
	Opts   *SendOptions
}

func (f *fakeBot) Username() string {
	return f.username
}

func (f *fakeBot) GetMe(_ context.Context) (*models.User, error) {
	if f.fail != nil {
		return nil, f.fail
	}

	return &models.User{ID: 99, IsBot: true, FirstName: "Test", Username: f.username}, nil
}

func (f *fakeBot) GetUpdates(ctx context.Context, offset int64, _ time.Duration) ([]*models.Update, error) {
	f.Lock()
	f.offsets = append(f.offsets, offset)
	if f.fail != nil {
		f.Unlock()
		return nil, f.fail
	}
	if len(f.batches) > 0 {
		batch := f.batches[0]
		f.batches = f.batches[1:]
		f.Unlock()
		return batch, nil
	}
	f.Unlock()

	if ctx == nil {
		return nil, nil
	}
	<-ctx.Done()

	return nil, ctx.Err()
}

// polledOffsets returns a copy of the offsets GetUpdates was called with.
func (f *fakeBot) polledOffsets() []int64 {
	f.Lock()
	defer f.Unlock()

	return append([]int64(nil), f.offsets...)
}

func (f *fakeBot) SendMessage(_ context.Context, chatID int64, text string, opts *SendOptions) (*models.Message, error) {
	if f.fail != nil {
		return nil, f.fail
	}

	f.Lock()
	f.sent = append(f.sent, fakeSentMessage{ChatID: chatID, Text: text, Opts: opts})
	messageID := int64(len(f.sent))
	f.Unlock()

	return &models.Message{
		MessageID: messageID,
		Chat:      &models.Chat{ID: chatID, Type: models.CHAT_PRIVATE},
		Text:      text,
	}, nil
}

func (f *fakeBot) AnswerCallbackQuery(_ context.Context, _, _ string) error {
	return f.fail
}

func (f *fakeBot) SetWebhook(_ context.Context, _ string) error {
	return f.fail
}

func (f *fakeBot) DeleteWebhook(_ context.Context, _ bool) error {
	return f.fail
}

// sentMessages returns a copy of the recorded SendMessage calls.
func (f *fakeBot) sentMessages() []fakeSentMessage {
	f.Lock()
	defer f.Unlock()

	return append([]fakeSentMessage(nil), f.sent...)
}

func TestExtBot_SendMessageSwapsKeyboard(t *testing.T) {
	api := newFakeAPI(t)
	api.results["sendMessage"] = `{"message_id":7,"date":1,"chat":{"id":10,"type":"private"}}`

	config := api.config()
	config.ArbitraryCallbackData = true
	bot, err := NewExtBot(config)
	assert.NoError(t, err)

	opts := &SendOptions{
		ReplyMarkup: &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{{
				{Text: "Go", CallbackData: "a payload well beyond the callback_data size limit of the Bot API"},
			}},
		},
	}

	// Send a message carrying a keyboard
	_, err = bot.SendMessage(context.Background(), 10, "choose", opts)
	assert.NoError(t, err)

	// Assert that the wire carried an opaque token instead of the payload
	calls := api.callsTo("sendMessage")
	assert.Len(t, calls, 1)
	var sent models.InlineKeyboardMarkup
	err = json.Unmarshal([]byte(calls[0].Form.Get("reply_markup")), &sent)
	assert.NoError(t, err)
	token := sent.InlineKeyboard[0][0].CallbackData
	assert.Len(t, token, MAX_CALLBACK_DATA_LEN, "the token should fill the callback_data limit")
	assert.NotContains(t, token, "payload")

	// Assert that the caller's options were not touched
	assert.Equal(t, "a payload well beyond the callback_data size limit of the Bot API", opts.ReplyMarkup.InlineKeyboard[0][0].CallbackData)

	// Assert that the payload is now cached
	assert.Equal(t, 1, bot.CallbackDataCache().Size())
}

func TestExtBot_SendMessagePassthrough(t *testing.T) {
	api := newFakeAPI(t)
	api.results["sendMessage"] = `{"message_id":7,"date":1,"chat":{"id":10,"type":"private"}}`

	// Arbitrary callback data is off by default
	bot, err := NewExtBot(api.config())
	assert.NoError(t, err)

	opts := &SendOptions{
		ReplyMarkup: &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{{
				{Text: "Go", CallbackData: "go"},
			}},
		},
	}

	_, err = bot.SendMessage(context.Background(), 10, "choose", opts)
	assert.NoError(t, err)

	// Assert that the payload went out verbatim
	calls := api.callsTo("sendMessage")
	assert.Len(t, calls, 1)
	assert.Contains(t, calls[0].Form.Get("reply_markup"), `"callback_data":"go"`)
	assert.Equal(t, 0, bot.CallbackDataCache().Size())
}

func TestExtBot_ProcessUpdate(t *testing.T) {
	bot, err := NewExtBot(&Config{Token: "42:TEST", ArbitraryCallbackData: true})
	assert.NoError(t, err)

	// Cache a keyboard and press its button
	markup := bot.CallbackDataCache().ProcessKeyboard(&models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			{Text: "Go", CallbackData: "payload"},
		}},
	})
	update := &models.Update{
		UpdateID: 1,
		CallbackQuery: &models.CallbackQuery{
			ID:   "q1",
			From: &models.User{ID: 20},
			Data: markup.InlineKeyboard[0][0].CallbackData,
		},
	}

	bot.ProcessUpdate(update)

	// Assert that the original payload was restored
	assert.Equal(t, "payload", update.CallbackQuery.Payload)
}

func TestExtBot_ProcessUpdateLeavesForeignData(t *testing.T) {
	bot, err := NewExtBot(&Config{Token: "42:TEST", ArbitraryCallbackData: true})
	assert.NoError(t, err)

	// A query carrying plain callback data from another bot instance
	update := &models.Update{
		UpdateID: 1,
		CallbackQuery: &models.CallbackQuery{
			ID:   "q1",
			From: &models.User{ID: 20},
			Data: "plain",
		},
	}

	bot.ProcessUpdate(update)

	// Assert that nothing was attached
	assert.Nil(t, update.CallbackQuery.Payload)
	assert.Equal(t, "plain", update.CallbackQuery.Data)

	// Updates without a callback query pass through as well
	bot.ProcessUpdate(&models.Update{UpdateID: 2})
	bot.ProcessUpdate(nil)
}
