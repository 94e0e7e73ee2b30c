package state

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

var ErrUnknownKind = errors.New("state: unknown value kind")

const fileVersion = 1

const (
	kindInt    = "int"
	kindInt64  = "int64"
	kindString = "string"
	kindBlob   = "blob"
)

type fileEntry struct {
	Key    string `toml:"key"`
	Kind   string `toml:"kind"`
	Int    int64  `toml:"int,omitempty"`
	String string `toml:"string,omitempty"`
	Blob   string `toml:"blob,omitempty"`
}

type fileDoc struct {
	Version      int         `toml:"version"`
	MaxBlobBytes int         `toml:"max_blob_bytes"`
	Entries      []fileEntry `toml:"entry"`
}

// Save writes the bundle to path so it survives process death. The file is
// replaced atomically.
func (m *Memory) Save(path string) error {
	doc := fileDoc{Version: fileVersion, MaxBlobBytes: m.maxBlobBytes}
	for _, k := range m.Keys() {
		v, ok := m.get(k)
		if !ok {
			continue
		}
		entry := fileEntry{Key: k}
		switch x := v.(type) {
		case int:
			entry.Kind, entry.Int = kindInt, int64(x)
		case int64:
			entry.Kind, entry.Int = kindInt64, x
		case string:
			entry.Kind, entry.String = kindString, x
		case []byte:
			entry.Kind, entry.Blob = kindBlob, base64.StdEncoding.EncodeToString(x)
		default:
			return fmt.Errorf("%w: key=%s type=%T", ErrUnknownKind, k, v)
		}
		doc.Entries = append(doc.Entries, entry)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("state save failed (%s): %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".state-*.toml")
	if err != nil {
		return fmt.Errorf("state save failed (%s): %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if err := toml.NewEncoder(tmp).Encode(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("state encode failed (%s): %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("state save failed (%s): %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("state save failed (%s): %w", path, err)
	}
	return nil
}

// Load reads a bundle written by Save. maxBlobBytes <= 0 keeps the limit
// recorded in the file.
func Load(path string, maxBlobBytes int) (*Memory, error) {
	var doc fileDoc
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("state load failed (%s): %w", path, err)
	}
	if maxBlobBytes <= 0 {
		maxBlobBytes = doc.MaxBlobBytes
	}
	out := NewMemory(maxBlobBytes)
	for _, e := range doc.Entries {
		switch e.Kind {
		case kindInt:
			out.values[e.Key] = int(e.Int)
		case kindInt64:
			out.values[e.Key] = e.Int
		case kindString:
			out.values[e.Key] = e.String
		case kindBlob:
			b, err := base64.StdEncoding.DecodeString(e.Blob)
			if err != nil {
				return nil, fmt.Errorf("state load failed (%s): blob %s: %w", path, e.Key, err)
			}
			out.values[e.Key] = b
		default:
			return nil, fmt.Errorf("%w: key=%s kind=%q", ErrUnknownKind, e.Key, e.Kind)
		}
	}
	return out, nil
}
