package main

import (
	"fmt"
	"image"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/photohandoff/internal/photo"
	"github.com/danmuck/photohandoff/internal/photo/providers"
)

type filePhoto struct {
	Kind         string `toml:"kind"`
	Path         string `toml:"path"`
	URL          string `toml:"url"`
	ThumbnailURL string `toml:"thumbnail_url"`
	Width        int64  `toml:"width"`
	Height       int64  `toml:"height"`
}

type fileManifest struct {
	Index            int         `toml:"index"`
	BackgroundWidth  int         `toml:"background_width"`
	BackgroundHeight int         `toml:"background_height"`
	Photos           []filePhoto `toml:"photo"`
}

// manifest is the sender side of one handoff.
type manifest struct {
	Items      []photo.Provider
	Index      int
	Background image.Image
}

func loadManifest(path string) (manifest, error) {
	var raw fileManifest
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return manifest{}, fmt.Errorf("load manifest: %w", err)
	}

	var out manifest
	if meta.IsDefined("index") {
		out.Index = raw.Index
	}

	if meta.IsDefined("background_width") || meta.IsDefined("background_height") {
		if raw.BackgroundWidth <= 0 || raw.BackgroundHeight <= 0 {
			return manifest{}, fmt.Errorf(
				"invalid background size %dx%d",
				raw.BackgroundWidth,
				raw.BackgroundHeight,
			)
		}
		out.Background = image.NewRGBA(image.Rect(0, 0, raw.BackgroundWidth, raw.BackgroundHeight))
	}

	out.Items = make([]photo.Provider, 0, len(raw.Photos))
	for i, p := range raw.Photos {
		item, err := parsePhoto(p)
		if err != nil {
			return manifest{}, fmt.Errorf("photo[%d]: %w", i, err)
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func parsePhoto(p filePhoto) (photo.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(p.Kind)) {
	case "file", "":
		path := strings.TrimSpace(p.Path)
		if path == "" {
			return nil, fmt.Errorf("file photo missing path")
		}
		return providers.File{Path: path, Width: p.Width, Height: p.Height}, nil
	case "remote":
		url := strings.TrimSpace(p.URL)
		if url == "" {
			return nil, fmt.Errorf("remote photo missing url")
		}
		return providers.Remote{
			URL:          url,
			ThumbnailURL: strings.TrimSpace(p.ThumbnailURL),
			Width:        p.Width,
			Height:       p.Height,
		}, nil
	case "memory":
		w, h := int(p.Width), int(p.Height)
		if w <= 0 || h <= 0 {
			w, h = 1, 1
		}
		return providers.Memory{Image: image.NewRGBA(image.Rect(0, 0, w, h))}, nil
	default:
		return nil, fmt.Errorf("unknown photo kind %q", p.Kind)
	}
}
