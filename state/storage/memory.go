package storage

import (
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// NewMemoryStorage creates a storage that lives as long as the process
func NewMemoryStorage(logger hclog.Logger) (*Storage, error) {
	return NewKeyValueStorage(logger, &memoryKV{entries: map[string][]byte{}}), nil
}

// memoryKV keeps the entries in a map keyed by the raw key bytes
type memoryKV struct {
	lock    sync.RWMutex
	entries map[string][]byte
}

func (m *memoryKV) Set(k []byte, v []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.entries[string(k)] = append([]byte(nil), v...)

	return nil
}

func (m *memoryKV) Get(k []byte) ([]byte, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	v, ok := m.entries[string(k)]

	return v, ok, nil
}

// Iterate visits the keys with the given prefix in byte order
func (m *memoryKV) Iterate(prefix []byte, fn func(k, v []byte) bool) error {
	m.lock.RLock()
	defer m.lock.RUnlock()

	keys := make([]string, 0, len(m.entries))

	for k := range m.entries {
		if strings.HasPrefix(k, string(prefix)) {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)

	for _, k := range keys {
		if fn([]byte(k), m.entries[k]) {
			break
		}
	}

	return nil
}

func (m *memoryKV) Close() error {
	return nil
}
