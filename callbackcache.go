package telango

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/n0h4rt/telango/models"
)

// uuidHexLen is the length of one cache token half, a UUID without hyphens.
// Two halves concatenated fill the callback_data limit exactly.
const uuidHexLen = MAX_CALLBACK_DATA_LEN / 2

// newCacheToken returns a fresh 32-character hexadecimal token half.
func newCacheToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// KeyboardData stores the original button payloads of one sent inline keyboard.
type KeyboardData struct {
	KeyboardID string         // KeyboardID is the token half shared by every button of the keyboard.
	AccessTime time.Time      // AccessTime is the last time a button of this keyboard was pressed.
	ButtonData map[string]any // ButtonData maps a button token half to its original payload.
}

// CallbackData is a serializable snapshot of the callback data cache,
// used by persistence backends.
type CallbackData struct {
	Keyboards []*KeyboardData   // Keyboards holds the keyboard payloads, oldest first.
	Queries   map[string]string // Queries maps a callback query ID to its keyboard token.
}

// CallbackDataCache keeps the payloads of sent inline keyboards so that
// buttons can carry data of any length and type.
//
// Outgoing keyboards get their callback data swapped for an opaque token of
// exactly 64 characters. When the pressed button comes back as a callback
// query, the token is resolved to the original payload. The cache is bounded:
// once maxSize keyboards are stored, the least recently used one is dropped.
type CallbackDataCache struct {
	maxSize   int
	keyboards OrderedSyncMap[string, *KeyboardData] // Keyboard token -> payloads, oldest in front.
	queries   SyncMap[string, string]               // Callback query ID -> keyboard token.
}

// NewCallbackDataCache creates a cache bounded to maxSize keyboards.
//
// Args:
//   - maxSize: The number of keyboards to keep, CALLBACK_CACHE_SIZE when not positive.
//
// Returns:
//   - *CallbackDataCache: A new empty cache.
func NewCallbackDataCache(maxSize int) *CallbackDataCache {
	if maxSize <= 0 {
		maxSize = CALLBACK_CACHE_SIZE
	}

	return &CallbackDataCache{
		maxSize:   maxSize,
		keyboards: NewOrderedSyncMap[string, *KeyboardData](),
		queries:   NewSyncMap[string, string](),
	}
}

// ProcessKeyboard stores the button payloads of the markup and returns a copy
// with each callback_data replaced by a cache token.
//
// Buttons carrying neither a payload nor callback data are left untouched.
// The caller's markup is never modified.
//
// Args:
//   - markup: The keyboard about to be sent.
//
// Returns:
//   - *models.InlineKeyboardMarkup: A copy of the markup with tokens in place of payloads.
func (c *CallbackDataCache) ProcessKeyboard(markup *models.InlineKeyboardMarkup) *models.InlineKeyboardMarkup {
	if markup == nil {
		return nil
	}

	out := markup.Copy()
	kb := &KeyboardData{
		KeyboardID: newCacheToken(),
		AccessTime: time.Now(),
		ButtonData: map[string]any{},
	}

	for i, row := range out.InlineKeyboard {
		for j, btn := range row {
			if btn.CallbackData == "" {
				continue
			}
			buttonID := newCacheToken()
			kb.ButtonData[buttonID] = btn.CallbackData
			out.InlineKeyboard[i][j].CallbackData = kb.KeyboardID + buttonID
		}
	}

	if len(kb.ButtonData) == 0 {
		return out
	}

	c.keyboards.Set(kb.KeyboardID, kb)
	c.keyboards.TrimFront(c.maxSize)

	return out
}

// ResolveQuery restores the original button payload onto query.Payload and
// records which keyboard the query belongs to, so the payload can be dropped
// later through the query.
//
// Unknown or foreign tokens leave the query untouched.
//
// Args:
//   - query: The incoming callback query to resolve.
//
// Returns:
//   - bool: True when the payload was found and attached.
func (c *CallbackDataCache) ResolveQuery(query *models.CallbackQuery) bool {
	if query == nil || len(query.Data) != 2*uuidHexLen {
		return false
	}

	keyboardID := query.Data[:uuidHexLen]
	buttonID := query.Data[uuidHexLen:]

	kb, ok := c.keyboards.Get(keyboardID)
	if !ok {
		return false
	}
	payload, ok := kb.ButtonData[buttonID]
	if !ok {
		return false
	}

	// Touch the keyboard so heavily used ones survive the size bound.
	kb.AccessTime = time.Now()
	c.keyboards.Set(keyboardID, kb)

	query.Payload = payload
	c.queries.Set(query.ID, keyboardID)

	return true
}

// DropQuery removes the payloads of the keyboard the query belongs to.
//
// The query index entry is removed along with the keyboard data. A keyboard
// already evicted by the size bound is not an error; only a query that was
// never resolved reports ErrQueryNotFound.
//
// Args:
//   - query: The callback query whose keyboard should be forgotten.
//
// Returns:
//   - error: ErrQueryNotFound when the query is not in the cache, nil otherwise.
func (c *CallbackDataCache) DropQuery(query *models.CallbackQuery) error {
	keyboardID, ok := c.queries.Get(query.ID)
	if !ok {
		return ErrQueryNotFound
	}

	c.queries.Del(query.ID)
	c.keyboards.Del(keyboardID)

	return nil
}

// Clear removes every stored keyboard and query.
func (c *CallbackDataCache) Clear() {
	c.keyboards.Clear()
	c.queries.Clear()
}

// Size returns the number of stored keyboards.
func (c *CallbackDataCache) Size() int {
	return c.keyboards.Len()
}

// Dump returns a snapshot of the cache suitable for persistence.
//
// Returns:
//   - *CallbackData: The stored keyboards in eviction order plus the query index.
func (c *CallbackDataCache) Dump() *CallbackData {
	data := &CallbackData{Queries: c.queries.Snapshot()}

	c.keyboards.Range(func(_ string, kb *KeyboardData) bool {
		data.Keyboards = append(data.Keyboards, kb)
		return true
	})

	return data
}

// Restore reloads a snapshot produced by Dump, replacing the current content.
//
// Args:
//   - data: The snapshot to load, nil clears the cache.
func (c *CallbackDataCache) Restore(data *CallbackData) {
	c.Clear()
	if data == nil {
		return
	}

	for _, kb := range data.Keyboards {
		c.keyboards.Set(kb.KeyboardID, kb)
	}
	c.keyboards.TrimFront(c.maxSize)

	for queryID, keyboardID := range data.Queries {
		c.queries.Set(queryID, keyboardID)
	}
}
