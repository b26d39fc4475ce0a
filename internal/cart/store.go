package cart

import (
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StorageKey is the key the cart list is persisted under in its scope.
const StorageKey = "cart"

// KV is the persistence boundary: a scoped string key-value store. The
// production adapter is the browser-cookie session (see SessionKV); tests
// use MemoryKV. Implementations never report errors, a failed read behaves
// like an absent key.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

// Store persists the ordered cart line list. Every Set is immediately
// durable, last writer wins; Get never fails and returns an empty list
// when nothing is persisted or the underlying storage is unavailable.
type Store interface {
	Get() []LineItem
	Set(items []LineItem)
	Clear()
}

type kvStore struct {
	kv KV
}

// NewStore builds a Store over a scoped KV.
func NewStore(kv KV) Store {
	return &kvStore{kv: kv}
}

func (s *kvStore) Get() []LineItem {
	raw, ok := s.kv.Get(StorageKey)
	if !ok || raw == "" {
		return []LineItem{}
	}
	var items []LineItem
	if err := json.UnmarshalFromString(raw, &items); err != nil {
		zap.L().Warn("discarding undecodable cart payload", zap.Error(err))
		return []LineItem{}
	}
	if items == nil {
		items = []LineItem{}
	}
	return items
}

func (s *kvStore) Set(items []LineItem) {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.MarshalToString(items)
	if err != nil {
		zap.L().Error("marshal cart failed", zap.Error(err))
		return
	}
	s.kv.Set(StorageKey, raw)
}

func (s *kvStore) Clear() {
	s.Set([]LineItem{})
}

// MemoryKV is an in-process KV used by tests and by contexts with no
// session scope available.
type MemoryKV struct {
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: map[string]string{}}
}

func (m *MemoryKV) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryKV) Set(key, value string) {
	m.values[key] = value
}

func (m *MemoryKV) Remove(key string) {
	delete(m.values, key)
}
