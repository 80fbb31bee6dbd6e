package telango

import (
	"context"
	"encoding/gob"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mohae/deepcopy"
	"github.com/rs/zerolog/log"

	"github.com/n0h4rt/telango/utils"
)

// StoreData selects which data categories a persistence backend keeps.
// Disabled categories are skipped by every load, refresh and drop operation.
type StoreData struct {
	BotData      bool // BotData enables persisting the bot-wide map.
	ChatData     bool // ChatData enables persisting the per-chat maps.
	UserData     bool // UserData enables persisting the per-user maps.
	CallbackData bool // CallbackData enables persisting the callback data cache.
}

// AllStoreData returns a StoreData with every category enabled.
func AllStoreData() StoreData {
	return StoreData{BotData: true, ChatData: true, UserData: true, CallbackData: true}
}

// Persistence loads shared data at startup and observes its mutations afterwards.
//
// The Refresh hooks receive live data handles after an update or job finished
// mutating them; backends snapshot what they need. The Get methods run once
// during application initialization. Runner starts the backend's own
// background work, if any, and Close flushes and stops it.
type Persistence interface {
	Initialize() error
	Runner(context.Context)
	Close() error

	StoreData() StoreData

	GetBotData() (map[string]any, error)
	GetChatData() (map[int64]map[string]any, error)
	GetUserData() (map[int64]map[string]any, error)
	GetCallbackData() (*CallbackData, error)

	RefreshBotData(ctx context.Context, data *SyncMap[string, any]) error
	RefreshChatData(ctx context.Context, chatID int64, data *SyncMap[string, any]) error
	RefreshUserData(ctx context.Context, userID int64, data *SyncMap[string, any]) error
	UpdateCallbackData(data *CallbackData) error

	DropChatData(chatID int64) error
	DropUserData(userID int64) error

	Flush() error
}

// GobPersistence is responsible for loading and saving data to a gob file periodically.
// If the filename is set to an empty string, it will disable auto-saving.
// If the interval is not positive, it will be adjusted to the default save interval.
//
// Data values of types beyond the gob builtins must be registered with
// [gob.Register] before the first save.
type GobPersistence struct {
	Filename string        // File name for the data.
	Interval time.Duration // Interval for auto-saving.
	Store    StoreData     // Categories this backend keeps; zero value keeps everything.

	BotData  SyncMap[string, any]                  // Mirror of the bot-wide data.
	ChatData SyncMap[int64, *SyncMap[string, any]] // Mirrors of the per-chat data.
	UserData SyncMap[int64, *SyncMap[string, any]] // Mirrors of the per-user data.

	callbackMx   sync.Mutex
	callbackData *CallbackData

	dirty     atomic.Bool
	context   context.Context
	cancelCtx context.CancelFunc
}

// Initialize prepares the mirrors and loads a previously saved file when one exists.
func (p *GobPersistence) Initialize() error {
	p.BotData = NewSyncMap[string, any]()
	p.ChatData = NewSyncMap[int64, *SyncMap[string, any]]()
	p.UserData = NewSyncMap[int64, *SyncMap[string, any]]()

	if (p.Store == StoreData{}) {
		p.Store = AllStoreData()
	}

	return p.Load()
}

// StoreData returns the categories this backend keeps.
func (p *GobPersistence) StoreData() StoreData {
	return p.Store
}

// Load loads the data from the file into the GobPersistence struct.
func (p *GobPersistence) Load() error {
	if p.Filename == "" || !utils.FileExists(p.Filename) {
		return nil
	}

	file, err := os.Open(p.Filename)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)

	if err = decoder.Decode(&p.BotData); err != nil {
		log.Error().Str("Name", p.Filename).Err(err).Msg("GobPersistence decode BotData error.")
	}
	if err = decoder.Decode(&p.ChatData); err != nil {
		log.Error().Str("Name", p.Filename).Err(err).Msg("GobPersistence decode ChatData error.")
	}
	if err = decoder.Decode(&p.UserData); err != nil {
		log.Error().Str("Name", p.Filename).Err(err).Msg("GobPersistence decode UserData error.")
	}

	var callbackData CallbackData
	if err = decoder.Decode(&callbackData); err != nil {
		log.Error().Str("Name", p.Filename).Err(err).Msg("GobPersistence decode CallbackData error.")
	} else {
		p.callbackData = &callbackData
	}

	return nil
}

// Save saves the data from the GobPersistence struct to the file.
func (p *GobPersistence) Save() error {
	if p.Filename == "" {
		return nil
	}

	file, err := os.Create(p.Filename)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)

	if err = encoder.Encode(&p.BotData); err != nil {
		log.Error().Str("Name", p.Filename).Err(err).Msg("GobPersistence encode BotData error.")
	}
	if err = encoder.Encode(&p.ChatData); err != nil {
		log.Error().Str("Name", p.Filename).Err(err).Msg("GobPersistence encode ChatData error.")
	}
	if err = encoder.Encode(&p.UserData); err != nil {
		log.Error().Str("Name", p.Filename).Err(err).Msg("GobPersistence encode UserData error.")
	}

	p.callbackMx.Lock()
	callbackData := p.callbackData
	if callbackData == nil {
		callbackData = &CallbackData{}
	}
	err = encoder.Encode(callbackData)
	p.callbackMx.Unlock()
	if err != nil {
		log.Error().Str("Name", p.Filename).Err(err).Msg("GobPersistence encode CallbackData error.")
	}

	p.dirty.Store(false)

	return nil
}

// Runner starts the auto save routine.
func (p *GobPersistence) Runner(ctx context.Context) {
	if p.Filename == "" {
		return
	}

	p.context, p.cancelCtx = context.WithCancel(ctx)

	if p.Interval <= 0 {
		p.Interval = SAVE_INTERVAL
	}

	go p.autoSave()
}

// Close stops the auto save routine and saves the data to the file.
func (p *GobPersistence) Close() error {
	if p.cancelCtx != nil {
		p.cancelCtx()
	}

	return p.Save()
}

// Flush writes the current mirrors to the file regardless of the dirty state.
func (p *GobPersistence) Flush() error {
	return p.Save()
}

// autoSave is a goroutine that periodically saves the data to the file.
// Ticks without observed mutations are skipped.
func (p *GobPersistence) autoSave() {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !p.dirty.Load() {
				continue
			}
			log.Debug().Str("Name", p.Filename).Msg("GobPersistence auto save.")
			p.Save()
		case <-p.context.Done():
			return
		}
	}
}

// GetBotData returns a copy of the persisted bot-wide data.
func (p *GobPersistence) GetBotData() (map[string]any, error) {
	return deepcopy.Copy(p.BotData.Snapshot()).(map[string]any), nil
}

// GetChatData returns a copy of the persisted per-chat data.
func (p *GobPersistence) GetChatData() (map[int64]map[string]any, error) {
	return p.snapshotKeyed(&p.ChatData), nil
}

// GetUserData returns a copy of the persisted per-user data.
func (p *GobPersistence) GetUserData() (map[int64]map[string]any, error) {
	return p.snapshotKeyed(&p.UserData), nil
}

// snapshotKeyed deep-copies a keyed mirror into plain maps.
func (p *GobPersistence) snapshotKeyed(mirror *SyncMap[int64, *SyncMap[string, any]]) map[int64]map[string]any {
	out := make(map[int64]map[string]any, mirror.Len())
	mirror.Range(func(id int64, data *SyncMap[string, any]) bool {
		out[id] = deepcopy.Copy(data.Snapshot()).(map[string]any)
		return true
	})

	return out
}

// GetCallbackData returns the persisted callback data snapshot, nil when none was saved.
func (p *GobPersistence) GetCallbackData() (*CallbackData, error) {
	p.callbackMx.Lock()
	defer p.callbackMx.Unlock()

	return p.callbackData, nil
}

// RefreshBotData mirrors the live bot-wide data.
//
// The handle contents are deep-copied so a later encode never races the
// running application.
func (p *GobPersistence) RefreshBotData(_ context.Context, data *SyncMap[string, any]) error {
	if !p.Store.BotData || data == nil {
		return nil
	}

	snapshot := deepcopy.Copy(data.Snapshot()).(map[string]any)
	p.BotData.Lock()
	p.BotData.M = snapshot
	p.BotData.Unlock()
	p.dirty.Store(true)

	return nil
}

// RefreshChatData mirrors the live data of one chat.
func (p *GobPersistence) RefreshChatData(_ context.Context, chatID int64, data *SyncMap[string, any]) error {
	if !p.Store.ChatData || data == nil {
		return nil
	}

	snapshot := deepcopy.Copy(data.Snapshot()).(map[string]any)
	p.ChatData.Set(chatID, &SyncMap[string, any]{M: snapshot})
	p.dirty.Store(true)

	return nil
}

// RefreshUserData mirrors the live data of one user.
func (p *GobPersistence) RefreshUserData(_ context.Context, userID int64, data *SyncMap[string, any]) error {
	if !p.Store.UserData || data == nil {
		return nil
	}

	snapshot := deepcopy.Copy(data.Snapshot()).(map[string]any)
	p.UserData.Set(userID, &SyncMap[string, any]{M: snapshot})
	p.dirty.Store(true)

	return nil
}

// UpdateCallbackData mirrors a snapshot of the callback data cache.
func (p *GobPersistence) UpdateCallbackData(data *CallbackData) error {
	if !p.Store.CallbackData {
		return nil
	}

	p.callbackMx.Lock()
	p.callbackData = data
	p.callbackMx.Unlock()
	p.dirty.Store(true)

	return nil
}

// DropChatData forgets the persisted data of one chat.
func (p *GobPersistence) DropChatData(chatID int64) error {
	p.ChatData.Del(chatID)
	p.dirty.Store(true)

	return nil
}

// DropUserData forgets the persisted data of one user.
func (p *GobPersistence) DropUserData(userID int64) error {
	p.UserData.Del(userID)
	p.dirty.Store(true)

	return nil
}
