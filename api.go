package telango

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"golang.org/x/net/proxy"

	"github.com/n0h4rt/telango/models"
	"github.com/n0h4rt/telango/utils"
)

// Transport is a custom RoundTripper implementation.
type Transport struct {
	Transport http.RoundTripper // Transport is the underlying RoundTripper.
	Headers   map[string]string // Headers contains custom headers to be added to the requests.
}

// RoundTrip executes a single HTTP request and returns its response.
// It adds custom headers to the request before performing the request using the underlying Transport.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	for key, value := range t.Headers {
		req.Header.Set(key, value)
	}

	return t.Transport.RoundTrip(req)
}

// SendOptions carries the optional parameters of SendMessage.
type SendOptions struct {
	ParseMode           string                       // ParseMode selects "MarkdownV2", "HTML" or plain text when empty.
	DisableNotification bool                         // DisableNotification sends the message silently.
	ReplyToMessageID    int64                        // ReplyToMessageID makes the message a reply.
	ReplyMarkup         *models.InlineKeyboardMarkup // ReplyMarkup attaches an inline keyboard.
}

// BaseBot is a plain Bot API client.
//
// It speaks the HTTP surface of the Bot API: form-encoded requests in,
// JSON envelopes out. Texts longer than the message length limit are
// split into several messages. For a client that additionally keeps
// arbitrary callback data, see [ExtBot].
type BaseBot struct {
	token  string
	apiURL string
	client *http.Client
	self   *models.User
}

// NewBaseBot creates a Bot API client from the provided configuration.
//
// Args:
//   - config: The configuration carrying the token and the optional proxy.
//
// Returns:
//   - *BaseBot: The client.
//   - error: An error if the token is missing or the proxy address is invalid.
func NewBaseBot(config *Config) (*BaseBot, error) {
	if config.Token == "" {
		return nil, ErrNoToken
	}

	apiURL := config.APIURL
	if apiURL == "" {
		apiURL = API_URL
	}

	base := http.DefaultTransport
	if config.Proxy != "" {
		dialer, err := proxy.SOCKS5("tcp", config.Proxy, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to set up the proxy: %v", err)
		}
		transport := &http.Transport{}
		if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = contextDialer.DialContext
		} else {
			transport.Dial = dialer.Dial
		}
		base = transport
	}

	client := &http.Client{
		Transport: &Transport{
			Transport: base,
			Headers: map[string]string{
				"User-Agent": USER_AGENT,
			},
		},
	}

	return &BaseBot{
		token:  config.Token,
		apiURL: apiURL,
		client: client,
	}, nil
}

// Username returns the username of the bot, empty until [BaseBot.GetMe] succeeds.
func (b *BaseBot) Username() string {
	if b.self == nil {
		return ""
	}

	return b.self.Username
}

// callMethod posts a form-encoded request to the named Bot API method.
//
// Transport failures are retried with an exponential backoff up to
// MAX_RETRIES attempts, errors reported by the API itself are not.
func (b *BaseBot) callMethod(ctx context.Context, method string, form url.Values, timeout time.Duration) (result gjson.Result, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	backoff := NewBackoff(BASE_BACKOFF_DUR, MAX_BACKOFF_DUR)
	for retries := 0; retries < MAX_RETRIES; retries++ {
		if retries > 0 {
			log.Warn().Err(err).Str("method", method).Msg("Retrying the request.")
			if backoff.Sleep(ctx) {
				return result, ctx.Err()
			}
		}

		var retry bool
		if result, retry, err = b.postMethod(ctx, method, form, timeout); !retry {
			return
		}
	}

	// Reached the maximum retries.
	return result, fmt.Errorf("%w: %s: %v", ErrRetryEnds, method, err)
}

// postMethod performs one HTTP exchange against the named method.
//
// The per-call deadline guards the HTTP client instead of a global client
// timeout, because getUpdates long-polls need a wider window than plain calls.
// A true retry return marks a transport failure worth another attempt.
func (b *BaseBot) postMethod(ctx context.Context, method string, form url.Values, timeout time.Duration) (result gjson.Result, retry bool, err error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/bot%s/%s", b.apiURL, b.token, method)
	var req *http.Request
	if req, err = http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, strings.NewReader(form.Encode())); err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var res *http.Response
	if res, err = b.client.Do(req); err != nil {
		retry = ctx.Err() == nil
		return
	}
	defer res.Body.Close()

	var body []byte
	if body, err = io.ReadAll(res.Body); err != nil {
		retry = ctx.Err() == nil
		return
	}

	envelope := gjson.ParseBytes(body)
	if !envelope.Get("ok").Bool() {
		description := envelope.Get("description").String()
		if description == "" {
			description = res.Status
		}
		err = fmt.Errorf("%w: %s: %s", ErrRequestFailed, method, description)
		return
	}

	result = envelope.Get("result")

	return
}

// GetMe fetches the account the token belongs to and caches it,
// making [BaseBot.Username] available.
func (b *BaseBot) GetMe(ctx context.Context) (user *models.User, err error) {
	var result gjson.Result
	if result, err = b.callMethod(ctx, "getMe", url.Values{}, API_TIMEOUT); err != nil {
		return
	}

	user = &models.User{}
	if err = json.Unmarshal([]byte(result.Raw), user); err != nil {
		return nil, err
	}
	b.self = user

	return
}

// GetUpdates long-polls the Bot API for updates starting at the given offset.
//
// Args:
//   - ctx: The context bounding the call.
//   - offset: The identifier of the first update to fetch.
//   - timeout: The long-poll window, zero for a non-blocking fetch.
//
// Returns:
//   - []*models.Update: The fetched updates, oldest first.
//   - error: An error if the call fails.
func (b *BaseBot) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) (updates []*models.Update, err error) {
	form := url.Values{
		"offset":  {strconv.FormatInt(offset, 10)},
		"timeout": {strconv.Itoa(int(timeout / time.Second))},
	}

	var result gjson.Result
	if result, err = b.callMethod(ctx, "getUpdates", form, timeout+API_TIMEOUT); err != nil {
		return
	}

	err = json.Unmarshal([]byte(result.Raw), &updates)

	return
}

// SendMessage sends a text message to the given chat.
//
// A text longer than the message length limit is split into several
// messages; the reply markup rides on the last one.
//
// Args:
//   - ctx: The context bounding the call.
//   - chatID: The target chat.
//   - text: The text to send.
//   - opts: Optional parameters, may be nil.
//
// Returns:
//   - *models.Message: The last sent message.
//   - error: An error if any part of the text fails to send.
func (b *BaseBot) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) (msg *models.Message, err error) {
	chunks := utils.SplitTextIntoChunks(text, MAX_MESSAGE_LENGTH)

	for i, chunk := range chunks {
		form := url.Values{
			"chat_id": {strconv.FormatInt(chatID, 10)},
			"text":    {chunk},
		}
		if opts != nil {
			if opts.ParseMode != "" {
				form.Set("parse_mode", opts.ParseMode)
			}
			if opts.DisableNotification {
				form.Set("disable_notification", "true")
			}
			if opts.ReplyToMessageID != 0 && i == 0 {
				form.Set("reply_to_message_id", strconv.FormatInt(opts.ReplyToMessageID, 10))
			}
			if opts.ReplyMarkup != nil && i == len(chunks)-1 {
				var markup []byte
				if markup, err = json.Marshal(opts.ReplyMarkup); err != nil {
					return
				}
				form.Set("reply_markup", string(markup))
			}
		}

		var result gjson.Result
		if result, err = b.callMethod(ctx, "sendMessage", form, API_TIMEOUT); err != nil {
			return
		}

		msg = &models.Message{}
		if err = json.Unmarshal([]byte(result.Raw), msg); err != nil {
			return nil, err
		}
	}

	return
}

// AnswerCallbackQuery acknowledges a callback query, optionally flashing
// a notification text to the user.
//
// Args:
//   - ctx: The context bounding the call.
//   - queryID: The identifier of the query to answer.
//   - text: The notification text, empty for a silent acknowledgement.
//
// Returns:
//   - error: An error if the call fails.
func (b *BaseBot) AnswerCallbackQuery(ctx context.Context, queryID, text string) (err error) {
	form := url.Values{
		"callback_query_id": {queryID},
	}
	if text != "" {
		form.Set("text", text)
	}

	_, err = b.callMethod(ctx, "answerCallbackQuery", form, API_TIMEOUT)

	return
}

// SetWebhook registers the given URL to receive updates.
func (b *BaseBot) SetWebhook(ctx context.Context, webhookURL string) (err error) {
	form := url.Values{
		"url": {webhookURL},
	}

	_, err = b.callMethod(ctx, "setWebhook", form, API_TIMEOUT)

	return
}

// DeleteWebhook removes a previously registered webhook.
//
// Args:
//   - ctx: The context bounding the call.
//   - dropPending: Whether to discard updates queued on the API server.
//
// Returns:
//   - error: An error if the call fails.
func (b *BaseBot) DeleteWebhook(ctx context.Context, dropPending bool) (err error) {
	form := url.Values{
		"drop_pending_updates": {strconv.FormatBool(dropPending)},
	}

	_, err = b.callMethod(ctx, "deleteWebhook", form, API_TIMEOUT)

	return
}

// GetWebhookInfo fetches the current webhook registration.
func (b *BaseBot) GetWebhookInfo(ctx context.Context) (info *models.WebhookInfo, err error) {
	var result gjson.Result
	if result, err = b.callMethod(ctx, "getWebhookInfo", url.Values{}, API_TIMEOUT); err != nil {
		return
	}

	info = &models.WebhookInfo{}
	if err = json.Unmarshal([]byte(result.Raw), info); err != nil {
		return nil, err
	}

	return
}
