package photo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/danmuck/photohandoff/internal/codec/tlv"
)

var ErrInvalidMeta = errors.New("photo: invalid meta")

// Meta is the compact, typed key/value hint a provider leaves behind for recovery.
// Values are int64, bool, string or []byte.
type Meta struct {
	values map[string]any
}

func NewMeta() Meta {
	return Meta{values: make(map[string]any)}
}

func (m *Meta) set(key string, v any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	m.values[key] = v
}

func (m *Meta) SetString(key, v string) { m.set(key, v) }
func (m *Meta) SetInt(key string, v int64) { m.set(key, v) }
func (m *Meta) SetBool(key string, v bool) { m.set(key, v) }

func (m *Meta) SetBytes(key string, v []byte) {
	m.set(key, append([]byte(nil), v...))
}

func (m Meta) String(key string) (string, bool) {
	v, ok := m.values[key].(string)
	return v, ok
}

func (m Meta) Int(key string) (int64, bool) {
	v, ok := m.values[key].(int64)
	return v, ok
}

func (m Meta) Bool(key string) (bool, bool) {
	v, ok := m.values[key].(bool)
	return v, ok
}

func (m Meta) Bytes(key string) ([]byte, bool) {
	v, ok := m.values[key].([]byte)
	return v, ok
}

func (m Meta) Len() int {
	return len(m.values)
}

// Keys returns keys in deterministic order.
func (m Meta) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalBinary encodes m as sorted TLV fields so equal metas produce equal blobs.
func (m Meta) MarshalBinary() ([]byte, error) {
	fields := make([]tlv.Field, 0, len(m.values))
	for _, k := range m.Keys() {
		switch v := m.values[k].(type) {
		case string:
			fields = append(fields, tlv.Field{Key: k, Type: tlv.TypeString, Value: []byte(v)})
		case int64:
			fields = append(fields, tlv.Field{Key: k, Type: tlv.TypeI64, Value: tlv.I64Bytes(v)})
		case bool:
			b := byte(0)
			if v {
				b = 1
			}
			fields = append(fields, tlv.Field{Key: k, Type: tlv.TypeBool, Value: []byte{b}})
		case []byte:
			fields = append(fields, tlv.Field{Key: k, Type: tlv.TypeBytes, Value: v})
		default:
			return nil, fmt.Errorf("%w: key %q has unsupported type %T", ErrInvalidMeta, k, v)
		}
	}
	return tlv.EncodeFields(fields)
}

func UnmarshalMeta(blob []byte) (Meta, error) {
	fields, err := tlv.DecodeFields(blob)
	if err != nil {
		return Meta{}, fmt.Errorf("%w: %v", ErrInvalidMeta, err)
	}
	m := NewMeta()
	for _, f := range fields {
		switch f.Type {
		case tlv.TypeString:
			m.SetString(f.Key, string(f.Value))
		case tlv.TypeI64:
			v, err := tlv.I64FromBytes(f.Value)
			if err != nil {
				return Meta{}, fmt.Errorf("%w: %v", ErrInvalidMeta, err)
			}
			m.SetInt(f.Key, v)
		case tlv.TypeBool:
			if len(f.Value) != 1 {
				return Meta{}, fmt.Errorf("%w: bool %q has length %d", ErrInvalidMeta, f.Key, len(f.Value))
			}
			m.SetBool(f.Key, f.Value[0] != 0)
		case tlv.TypeBytes:
			m.SetBytes(f.Key, f.Value)
		default:
			return Meta{}, fmt.Errorf("%w: key %q has unknown type %d", ErrInvalidMeta, f.Key, f.Type)
		}
	}
	return m, nil
}
