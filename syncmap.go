package telango

import (
	"bytes"
	"encoding/gob"
	"sync"
)

// SyncMap is a synchronized map that can be accessed concurrently.
//
// It provides thread-safe methods for setting, getting, deleting, and iterating over key-value pairs.
// The map also supports Gob encoding and decoding for persistence.
type SyncMap[K comparable, V any] struct {
	sync.RWMutex
	M map[K]V
}

// Set adds or updates a key-value pair in the SyncMap.
//
// Args:
//   - key: The key to add or update.
//   - val: The value to associate with the key.
func (sm *SyncMap[K, V]) Set(key K, val V) {
	sm.Lock()
	defer sm.Unlock()

	sm.M[key] = val
}

// Get retrieves the value associated with the specified key from the SyncMap.
//
// Args:
//   - key: The key to retrieve the value for.
//
// Returns:
//   - V: The value associated with the key.
//   - bool: True if the key exists in the map, false otherwise.
func (sm *SyncMap[K, V]) Get(key K) (val V, ok bool) {
	sm.RLock()
	defer sm.RUnlock()

	val, ok = sm.M[key]

	return
}

// GetOrSet retrieves the value associated with the specified key,
// storing and returning the provided value when the key is absent.
// The lookup and the store happen under one lock, so concurrent callers
// agree on a single stored value.
//
// Args:
//   - key: The key to retrieve the value for.
//   - val: The value to store when the key is absent.
//
// Returns:
//   - V: The stored value.
//   - bool: True if the key already existed, false if val was stored.
func (sm *SyncMap[K, V]) GetOrSet(key K, val V) (V, bool) {
	sm.Lock()
	defer sm.Unlock()

	if existing, ok := sm.M[key]; ok {
		return existing, true
	}
	sm.M[key] = val

	return val, false
}

// Del removes the key-value pair with the specified key from the SyncMap.
//
// Args:
//   - key: The key to remove.
func (sm *SyncMap[K, V]) Del(key K) {
	sm.Lock()
	defer sm.Unlock()

	delete(sm.M, key)
}

// Len returns the number of key-value pairs in the SyncMap.
//
// Returns:
//   - int: The number of key-value pairs in the map.
func (sm *SyncMap[K, V]) Len() int {
	sm.RLock()
	defer sm.RUnlock()

	return len(sm.M)
}

// Range iterates over each key-value pair in the SyncMap and calls the specified function.
//
// Args:
//   - fun: The function to call for each key-value pair.
//
// If the function returns false, the iteration stops.
func (sm *SyncMap[K, V]) Range(fun func(K, V) bool) {
	sm.RLock()
	defer sm.RUnlock()

	for k, v := range sm.M {
		if !fun(k, v) {
			return
		}
	}
}

// Clear removes all key-value pairs from the SyncMap.
func (sm *SyncMap[K, V]) Clear() {
	sm.Lock()
	defer sm.Unlock()

	sm.M = make(map[K]V)
}

// Keys returns a slice of keys in the SyncMap.
//
// Returns:
//   - []K: A slice containing all the keys in the map.
func (sm *SyncMap[K, V]) Keys() (keys []K) {
	sm.RLock()
	defer sm.RUnlock()

	for k := range sm.M {
		keys = append(keys, k)
	}

	return
}

// Snapshot returns a shallow copy of the underlying map.
//
// Returns:
//   - map[K]V: A new map holding the current key-value pairs.
func (sm *SyncMap[K, V]) Snapshot() map[K]V {
	sm.RLock()
	defer sm.RUnlock()

	snapshot := make(map[K]V, len(sm.M))
	for k, v := range sm.M {
		snapshot[k] = v
	}

	return snapshot
}

// GobEncode encodes the SyncMap using Gob encoding.
//
// Returns:
//   - []byte: The encoded byte slice.
//   - error: An error if encoding fails.
func (sm *SyncMap[K, V]) GobEncode() ([]byte, error) {
	sm.RLock()
	defer sm.RUnlock()

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	err := enc.Encode(sm.M)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode decodes the SyncMap using Gob decoding.
//
// Args:
//   - data: The encoded byte slice to decode.
//
// Returns:
//   - error: An error if decoding fails.
func (sm *SyncMap[K, V]) GobDecode(data []byte) error {
	sm.Lock()
	defer sm.Unlock()

	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)

	return dec.Decode(&sm.M)
}

// NewSyncMap creates a new instance of SyncMap.
//
// Returns:
//   - SyncMap[K, V]: A new instance of SyncMap.
func NewSyncMap[K comparable, V any]() SyncMap[K, V] {
	return SyncMap[K, V]{M: map[K]V{}}
}

// NewDataMap creates a new heap-allocated data map,
// the value type used by the bot, chat and user data stores.
//
// Returns:
//   - *SyncMap[string, any]: A new empty data map.
func NewDataMap() *SyncMap[string, any] {
	return &SyncMap[string, any]{M: map[string]any{}}
}

// OrderedSyncMap is a synchronized map that maintains the order of keys.
//
// It provides thread-safe methods for setting, getting, deleting, and iterating over key-value pairs in the order they were added.
// The map also supports Gob encoding and decoding for persistence.
type OrderedSyncMap[K comparable, V any] struct {
	sync.RWMutex
	K []K
	M map[K]V
}

// Set adds or updates a key-value pair in the OrderedSyncMap.
// An existing key is moved to the back of the order.
//
// Args:
//   - key: The key to add or update.
//   - val: The value to associate with the key.
func (sm *OrderedSyncMap[K, V]) Set(key K, val V) {
	sm.Lock()
	defer sm.Unlock()

	sm.del(key)
	sm.K = append(sm.K, key)
	sm.M[key] = val
}

// Get retrieves the value associated with the specified key from the OrderedSyncMap.
//
// Args:
//   - key: The key to retrieve the value for.
//
// Returns:
//   - V: The value associated with the key.
//   - bool: True if the key exists in the map, false otherwise.
func (sm *OrderedSyncMap[K, V]) Get(key K) (val V, ok bool) {
	sm.RLock()
	defer sm.RUnlock()

	val, ok = sm.M[key]

	return
}

// Del removes the key-value pair with the specified key from the OrderedSyncMap.
//
// Args:
//   - key: The key to remove.
func (sm *OrderedSyncMap[K, V]) Del(key K) {
	sm.Lock()
	defer sm.Unlock()

	sm.del(key)
}

// del removes the key from the OrderedSyncMap's key slice and deletes the corresponding value.
// This is not protected by Mutex, so keep it for internal use.
func (sm *OrderedSyncMap[K, V]) del(key K) {
	index := -1
	for i, k := range sm.K {
		if k == key {
			index = i
			break
		}
	}

	if index < 0 {
		return
	}

	sm.K = append(sm.K[:index], sm.K[index+1:]...)
	delete(sm.M, key)
}

// Len returns the number of key-value pairs in the OrderedSyncMap.
//
// Returns:
//   - int: The number of key-value pairs in the map.
func (sm *OrderedSyncMap[K, V]) Len() int {
	sm.RLock()
	defer sm.RUnlock()

	return len(sm.M)
}

// Range iterates over each key-value pair in the OrderedSyncMap and calls the specified function.
//
// Args:
//   - fun: The function to call for each key-value pair.
//
// If the function returns false, the iteration stops.
func (sm *OrderedSyncMap[K, V]) Range(fun func(K, V) bool) {
	sm.RLock()
	defer sm.RUnlock()

	for _, k := range sm.K {
		if !fun(k, sm.M[k]) {
			return
		}
	}
}

// Clear removes all key-value pairs from the OrderedSyncMap.
func (sm *OrderedSyncMap[K, V]) Clear() {
	sm.Lock()
	defer sm.Unlock()

	sm.K = make([]K, 0)
	sm.M = make(map[K]V)
}

// Keys returns a slice of keys in the OrderedSyncMap.
//
// Returns:
//   - []K: A slice containing all the keys in insertion order.
func (sm *OrderedSyncMap[K, V]) Keys() []K {
	sm.RLock()
	defer sm.RUnlock()

	keys := make([]K, len(sm.K))
	copy(keys, sm.K)

	return keys
}

// TrimFront trims the front part of the OrderedSyncMap to the specified length.
//
// Args:
//   - length: The desired length of the map after trimming.
//
// It modifies the OrderedSyncMap in place, removing the oldest entries
// until the desired length is reached.
func (sm *OrderedSyncMap[K, V]) TrimFront(length int) {
	sm.Lock()
	defer sm.Unlock()

	if len(sm.K) <= length {
		return
	}

	trim := make([]K, len(sm.K)-length)
	copy(trim, sm.K)
	for _, k := range trim {
		sm.del(k)
	}
}

// GobEncode encodes the OrderedSyncMap using Gob.
//
// Returns:
//   - []byte: The encoded byte slice.
//   - error: An error if encoding fails.
func (sm *OrderedSyncMap[K, V]) GobEncode() ([]byte, error) {
	sm.RLock()
	defer sm.RUnlock()

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	err := enc.Encode(sm.K)
	if err != nil {
		return nil, err
	}

	err = enc.Encode(sm.M)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode decodes the OrderedSyncMap using Gob.
//
// Args:
//   - data: The encoded byte slice to decode.
//
// Returns:
//   - error: An error if decoding fails.
func (sm *OrderedSyncMap[K, V]) GobDecode(data []byte) error {
	sm.Lock()
	defer sm.Unlock()

	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)
	err := dec.Decode(&sm.K)
	if err != nil {
		return err
	}

	return dec.Decode(&sm.M)
}

// NewOrderedSyncMap creates a new instance of OrderedSyncMap.
//
// Returns:
//   - OrderedSyncMap[K, V]: A new instance of OrderedSyncMap.
func NewOrderedSyncMap[K comparable, V any]() OrderedSyncMap[K, V] {
	return OrderedSyncMap[K, V]{K: []K{}, M: map[K]V{}}
}
