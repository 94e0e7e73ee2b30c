package state

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

var ErrBlobTooLarge = errors.New("state: blob exceeds channel limit")

// DefaultMaxBlobBytes bounds a single blob in the restoration channel.
const DefaultMaxBlobBytes = 64 << 10

// Fixed keys written by the sender and read by the receiving controller.
const (
	KeyCurrentIndex    = "handoff_photo_current_index"
	KeyDeliveryToken   = "handoff_photo_transition_delivery"
	KeyCount           = "handoff_photo_count"
	MetaKeyPrefix      = "handoff_photo_meta_"
	RecoverIDKeyPrefix = "handoff_photo_provider_recover_id_"
)

func MetaKey(i int) string {
	return MetaKeyPrefix + strconv.Itoa(i)
}

func RecoverKey(i int) string {
	return RecoverIDKeyPrefix + strconv.Itoa(i)
}

// Bundle is the host's restoration key/value channel. Typed getters report
// false when the key is missing or holds another kind.
type Bundle interface {
	Int(key string) (int, bool)
	SetInt(key string, v int)
	Int64(key string) (int64, bool)
	SetInt64(key string, v int64)
	String(key string) (string, bool)
	SetString(key, v string)
	Blob(key string) ([]byte, bool)
	SetBlob(key string, v []byte) error
	Delete(key string)
	Keys() []string
}

// Memory is a mutex-guarded Bundle.
type Memory struct {
	mu           sync.RWMutex
	values       map[string]any
	maxBlobBytes int
}

var _ Bundle = (*Memory)(nil)

// NewMemory creates an empty bundle. maxBlobBytes <= 0 selects DefaultMaxBlobBytes.
func NewMemory(maxBlobBytes int) *Memory {
	if maxBlobBytes <= 0 {
		maxBlobBytes = DefaultMaxBlobBytes
	}
	return &Memory{values: make(map[string]any), maxBlobBytes: maxBlobBytes}
}

func (m *Memory) get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) set(key string, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = v
}

func (m *Memory) Int(key string) (int, bool) {
	v, ok := m.get(key)
	if !ok {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

func (m *Memory) SetInt(key string, v int) { m.set(key, v) }

func (m *Memory) Int64(key string) (int64, bool) {
	v, ok := m.get(key)
	if !ok {
		return 0, false
	}
	i, ok := v.(int64)
	return i, ok
}

func (m *Memory) SetInt64(key string, v int64) { m.set(key, v) }

func (m *Memory) String(key string) (string, bool) {
	v, ok := m.get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (m *Memory) SetString(key, v string) { m.set(key, v) }

func (m *Memory) Blob(key string) ([]byte, bool) {
	v, ok := m.get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}

func (m *Memory) SetBlob(key string, v []byte) error {
	if len(v) > m.maxBlobBytes {
		return fmt.Errorf("%w: key=%s size=%d limit=%d", ErrBlobTooLarge, key, len(v), m.maxBlobBytes)
	}
	m.set(key, append([]byte(nil), v...))
	return nil
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

func (m *Memory) Keys() []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.values))
	for k := range m.values {
		out = append(out, k)
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (m *Memory) MaxBlobBytes() int {
	return m.maxBlobBytes
}

// Clone copies every value into a new bundle with the same blob limit.
func (m *Memory) Clone() *Memory {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := NewMemory(m.maxBlobBytes)
	for k, v := range m.values {
		if b, ok := v.([]byte); ok {
			v = append([]byte(nil), b...)
		}
		out.values[k] = v
	}
	return out
}
