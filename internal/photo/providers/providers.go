package providers

import (
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/danmuck/photohandoff/internal/photo"
	"github.com/danmuck/photohandoff/internal/recovery"
)

const (
	FileID   = "photo.file"
	RemoteID = "photo.remote"

	keyPath      = "path"
	keyURL       = "url"
	keyThumbnail = "thumbnail_url"
	keyWidth     = "width"
	keyHeight    = "height"
)

var ErrInvalidMeta = errors.New("providers: invalid meta")

// File is a photo backed by a local path.
type File struct {
	Path   string
	Width  int64
	Height int64
}

func (f File) Meta() (photo.Meta, bool) {
	if strings.TrimSpace(f.Path) == "" {
		return photo.Meta{}, false
	}
	m := photo.NewMeta()
	m.SetString(keyPath, f.Path)
	setSize(&m, f.Width, f.Height)
	return m, true
}

func (f File) RecoverID() (string, bool) { return FileID, true }

// Remote is a photo described by a fetchable URL.
type Remote struct {
	URL          string
	ThumbnailURL string
	Width        int64
	Height       int64
}

func (r Remote) Meta() (photo.Meta, bool) {
	if strings.TrimSpace(r.URL) == "" {
		return photo.Meta{}, false
	}
	m := photo.NewMeta()
	m.SetString(keyURL, r.URL)
	if r.ThumbnailURL != "" {
		m.SetString(keyThumbnail, r.ThumbnailURL)
	}
	setSize(&m, r.Width, r.Height)
	return m, true
}

func (r Remote) RecoverID() (string, bool) { return RemoteID, true }

// Memory holds a decoded image only; it cannot survive a process restart.
type Memory struct {
	Image image.Image
}

func (Memory) Meta() (photo.Meta, bool)   { return photo.Meta{}, false }
func (Memory) RecoverID() (string, bool) { return "", false }

// Register installs the reconstructors for File and Remote.
func Register(reg *recovery.Registry) error {
	if err := reg.Register(FileID, recoverFile); err != nil {
		return err
	}
	return reg.Register(RemoteID, recoverRemote)
}

func recoverFile(m photo.Meta) (photo.Provider, error) {
	path, ok := m.String(keyPath)
	if !ok || strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidMeta, keyPath)
	}
	w, h := size(m)
	return File{Path: path, Width: w, Height: h}, nil
}

func recoverRemote(m photo.Meta) (photo.Provider, error) {
	raw, ok := m.String(keyURL)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidMeta, keyURL)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: bad %s %q", ErrInvalidMeta, keyURL, raw)
	}
	thumb, _ := m.String(keyThumbnail)
	w, h := size(m)
	return Remote{URL: raw, ThumbnailURL: thumb, Width: w, Height: h}, nil
}

func setSize(m *photo.Meta, w, h int64) {
	if w > 0 && h > 0 {
		m.SetInt(keyWidth, w)
		m.SetInt(keyHeight, h)
	}
}

func size(m photo.Meta) (int64, int64) {
	w, _ := m.Int(keyWidth)
	h, _ := m.Int(keyHeight)
	return w, h
}
