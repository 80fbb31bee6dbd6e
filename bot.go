package telango

import (
	"context"
	"time"

	"github.com/n0h4rt/telango/models"
)

// Bot is the client surface the framework dispatches through.
// [BaseBot] implements it for the plain Bot API; [ExtBot] adds
// arbitrary callback data on top. Tests substitute their own fakes.
type Bot interface {
	Username() string
	GetMe(ctx context.Context) (*models.User, error)
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]*models.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, queryID, text string) error
	SetWebhook(ctx context.Context, webhookURL string) error
	DeleteWebhook(ctx context.Context, dropPending bool) error
}

// ExtBot is a [BaseBot] that can attach data of any length and type to
// inline keyboard buttons.
//
// Outgoing keyboards get their button payloads swapped for opaque cache
// tokens that fit the callback_data limit; incoming callback queries get
// the original payload restored onto [models.CallbackQuery.Payload].
// The feature is off unless the configuration enables it.
type ExtBot struct {
	*BaseBot
	arbitraryCallbackData bool
	callbackDataCache     *CallbackDataCache
}

// NewExtBot creates an [ExtBot] from the provided configuration.
//
// Args:
//   - config: The configuration carrying the token, proxy and callback data settings.
//
// Returns:
//   - *ExtBot: The client.
//   - error: An error if the underlying [BaseBot] cannot be built.
func NewExtBot(config *Config) (*ExtBot, error) {
	base, err := NewBaseBot(config)
	if err != nil {
		return nil, err
	}

	return &ExtBot{
		BaseBot:               base,
		arbitraryCallbackData: config.ArbitraryCallbackData,
		callbackDataCache:     NewCallbackDataCache(config.CallbackCacheSize),
	}, nil
}

// ArbitraryCallbackData reports whether the bot keeps arbitrary callback data.
func (b *ExtBot) ArbitraryCallbackData() bool {
	return b.arbitraryCallbackData
}

// CallbackDataCache returns the cache backing the arbitrary callback data support.
func (b *ExtBot) CallbackDataCache() *CallbackDataCache {
	return b.callbackDataCache
}

// SendMessage sends a text message like [BaseBot.SendMessage], additionally
// routing an attached inline keyboard through the callback data cache when
// arbitrary callback data is enabled.
func (b *ExtBot) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (*models.Message, error) {
	if b.arbitraryCallbackData && opts != nil && opts.ReplyMarkup != nil {
		processed := *opts
		processed.ReplyMarkup = b.callbackDataCache.ProcessKeyboard(opts.ReplyMarkup)
		opts = &processed
	}

	return b.BaseBot.SendMessage(ctx, chatID, text, opts)
}

// ProcessUpdate resolves the cache token of an incoming callback query back
// to the original button payload. Updates without a callback query and
// queries carrying foreign payloads pass through untouched.
//
// The updater calls this for every received update before dispatch.
func (b *ExtBot) ProcessUpdate(update *models.Update) {
	if !b.arbitraryCallbackData || update == nil || update.CallbackQuery == nil {
		return
	}

	b.callbackDataCache.ResolveQuery(update.CallbackQuery)
}
