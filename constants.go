package telango

import (
	"errors"
	"time"
)

const (
	API_URL    = "https://api.telegram.org"
	USER_AGENT = "telango/0.1 (+https://github.com/n0h4rt/telango)"

	API_TIMEOUT      = 10 * time.Second
	POLL_TIMEOUT     = 30 * time.Second
	BASE_BACKOFF_DUR = 1 * time.Second
	MAX_BACKOFF_DUR  = 30 * time.Second
	MAX_RETRIES      = 10

	MAX_MESSAGE_LENGTH    = 4096 // Longest text the API accepts in a single message.
	MAX_CALLBACK_DATA_LEN = 64   // Longest callback_data payload a button may carry.

	UPDATE_QUEUE_SIZE   = 128
	CALLBACK_CACHE_SIZE = 1024
	JOBQUEUE_TICK       = 100 * time.Millisecond
	SAVE_INTERVAL       = 30 * time.Minute

	SUGGESTION_RATIO = 0.7 // Smallest similarity for a command suggestion.
)

var (
	// ErrDataAssignment rejects replacing a shared data map with another one.
	// The maps are owned by the application; mutate their contents instead.
	ErrDataAssignment = errors.New("shared data cannot be replaced, mutate the map contents instead")
	// ErrNoArbitraryCallbackData reports that the bot does not keep arbitrary
	// callback data, either because it is a plain bot or the feature is disabled.
	ErrNoArbitraryCallbackData = errors.New("the bot does not keep arbitrary callback data")
	// ErrQueryNotFound reports a callback query unknown to the callback data cache.
	ErrQueryNotFound = errors.New("callback query not found in the cache")
	// ErrHandlerStop is returned by a callback to stop further handler groups
	// from seeing the current update. It is not treated as a failure.
	ErrHandlerStop = errors.New("handler group dispatch stopped")

	ErrNoToken        = errors.New("bot token is empty")
	ErrRequestFailed  = errors.New("request failed")
	ErrRetryEnds      = errors.New("retry ends")
	ErrAlreadyRunning = errors.New("already running")
	ErrNotRunning     = errors.New("not running")
)
