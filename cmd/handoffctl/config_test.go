package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/danmuck/photohandoff/internal/photo/providers"
	"github.com/danmuck/photohandoff/internal/testutil/testlog"
	"github.com/spf13/cobra"
)

func TestLoadManifest(t *testing.T) {
	testlog.Start(t)
	m, err := loadManifest(filepath.Join("testdata", "photos.toml"))
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if m.Index != 1 {
		t.Fatalf("unexpected index: %d", m.Index)
	}
	if m.Background == nil || m.Background.Bounds().Dx() != 108 {
		t.Fatalf("expected 108px background, got %v", m.Background)
	}
	if len(m.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(m.Items))
	}
	want := providers.File{Path: "/sdcard/DCIM/IMG_0001.jpg", Width: 4032, Height: 3024}
	if !reflect.DeepEqual(m.Items[0], want) {
		t.Fatalf("unexpected first item: %+v", m.Items[0])
	}
	if _, ok := m.Items[1].(providers.Memory); !ok {
		t.Fatalf("expected memory item, got %T", m.Items[1])
	}
	if r, ok := m.Items[2].(providers.Remote); !ok || r.ThumbnailURL != "https://img.example.com/p/3_t.webp" {
		t.Fatalf("unexpected remote item: %+v", m.Items[2])
	}
}

func TestLoadManifestRejectsBadInput(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"unknown kind":   "[[photo]]\nkind = \"scan\"\n",
		"missing path":   "[[photo]]\nkind = \"file\"\n",
		"missing url":    "[[photo]]\nkind = \"remote\"\n",
		"bad background": "background_width = 10\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "m.toml")
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := loadManifest(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func testCommand(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetOut(out)
	return cmd
}

func TestLaunchThenRestore(t *testing.T) {
	testlog.Start(t)
	stateFile = filepath.Join(t.TempDir(), "viewer.toml")
	launchSelect = 2
	t.Cleanup(func() {
		stateFile = ""
		launchSelect = -1
	})

	var out bytes.Buffer
	if err := runLaunch(testCommand(&out), filepath.Join("testdata", "photos.toml")); err != nil {
		t.Fatalf("launch: %v", err)
	}
	var launched screenReport
	if err := json.Unmarshal(out.Bytes(), &launched); err != nil {
		t.Fatalf("decode launch report: %v", err)
	}
	if launched.Source != "delivered" || launched.Index != 2 || len(launched.Items) != 3 {
		t.Fatalf("unexpected launch report: %+v", launched)
	}

	out.Reset()
	if err := runRestore(testCommand(&out), ""); err != nil {
		t.Fatalf("restore: %v", err)
	}
	var restored screenReport
	if err := json.Unmarshal(out.Bytes(), &restored); err != nil {
		t.Fatalf("decode restore report: %v", err)
	}
	if restored.Source != "recovered" || restored.Index != 2 {
		t.Fatalf("unexpected restore report: %+v", restored)
	}
	kinds := []string{restored.Items[0].Kind, restored.Items[1].Kind, restored.Items[2].Kind}
	if !reflect.DeepEqual(kinds, []string{"file", "loss", "remote"}) {
		t.Fatalf("unexpected restored kinds: %v", kinds)
	}
	if restored.Items[1].Reason != "missing_record" {
		t.Fatalf("expected missing_record for memory item, got %+v", restored.Items[1])
	}
}

func TestRestoreWithoutStateFile(t *testing.T) {
	testlog.Start(t)
	var out bytes.Buffer
	if err := runRestore(testCommand(&out), ""); err == nil {
		t.Fatalf("expected restore without state file to fail")
	}
}
