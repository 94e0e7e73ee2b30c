package photo

import (
	"errors"
	"image"
	"reflect"
	"testing"

	"github.com/danmuck/photohandoff/internal/testutil/testlog"
)

type stubProvider struct {
	meta  Meta
	has   bool
	id    string
	hasID bool
}

func (s stubProvider) Meta() (Meta, bool)        { return s.meta, s.has }
func (s stubProvider) RecoverID() (string, bool) { return s.id, s.hasID }

func TestMetaBinaryRoundTrip(t *testing.T) {
	testlog.Start(t)
	m := NewMeta()
	m.SetString("path", "/sdcard/DCIM/a.jpg")
	m.SetInt("width", 4032)
	m.SetBool("gif", false)
	m.SetBytes("hash", []byte{0xde, 0xad})

	blob, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	again, err := m.MarshalBinary()
	if err != nil || !reflect.DeepEqual(blob, again) {
		t.Fatalf("expected deterministic blob, err=%v", err)
	}

	got, err := UnmarshalMeta(blob)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Fatalf("meta mismatch: got=%+v want=%+v", got, m)
	}
	if v, ok := got.Int("width"); !ok || v != 4032 {
		t.Fatalf("expected width=4032, got %d ok=%v", v, ok)
	}
	if _, ok := got.Int("path"); ok {
		t.Fatalf("expected typed lookup to reject string value")
	}
	if !reflect.DeepEqual(got.Keys(), []string{"gif", "hash", "path", "width"}) {
		t.Fatalf("unexpected keys: %v", got.Keys())
	}
}

func TestUnmarshalMetaRejectsCorruptBlob(t *testing.T) {
	testlog.Start(t)
	if _, err := UnmarshalMeta([]byte{0, 9, 3}); !errors.Is(err, ErrInvalidMeta) {
		t.Fatalf("expected ErrInvalidMeta, got %v", err)
	}
	bad := []byte{0, 1, 99, 0, 0, 0, 0, 'k'}
	if _, err := UnmarshalMeta(bad); !errors.Is(err, ErrInvalidMeta) {
		t.Fatalf("expected ErrInvalidMeta for unknown type, got %v", err)
	}
}

func TestLossAndRecoverable(t *testing.T) {
	testlog.Start(t)
	if !IsLoss(Loss) {
		t.Fatalf("expected Loss to report IsLoss")
	}
	if Recoverable(Loss) || Recoverable(nil) {
		t.Fatalf("expected Loss and nil to be unrecoverable")
	}
	if _, ok := Loss.Meta(); ok {
		t.Fatalf("expected Loss to carry no meta")
	}

	cases := []struct {
		p    stubProvider
		want bool
	}{
		{stubProvider{meta: NewMeta(), has: true, id: "photo.file", hasID: true}, true},
		{stubProvider{has: false, id: "photo.file", hasID: true}, false},
		{stubProvider{meta: NewMeta(), has: true, hasID: false}, false},
		{stubProvider{meta: NewMeta(), has: true, id: "", hasID: true}, false},
	}
	for i, tc := range cases {
		if got := Recoverable(tc.p); got != tc.want {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, got)
		}
	}
}

func TestEnvelopeIndexClampAndRelease(t *testing.T) {
	testlog.Start(t)
	items := []Provider{Loss, Loss, Loss}
	env := NewEnvelope(items, 7, image.NewRGBA(image.Rect(0, 0, 10, 20)))
	items[0] = nil
	if env.Items[0] == nil {
		t.Fatalf("expected envelope to own a copy of items")
	}
	if env.SelectedIndex() != 2 {
		t.Fatalf("expected clamp to last index, got %d", env.SelectedIndex())
	}
	env.Index = -4
	if env.SelectedIndex() != 0 {
		t.Fatalf("expected negative index clamp to 0, got %d", env.SelectedIndex())
	}
	if env.BackgroundBytes() != 800 {
		t.Fatalf("expected 800 bytes, got %d", env.BackgroundBytes())
	}
	env.Release()
	if env.Background != nil || env.BackgroundBytes() != 0 {
		t.Fatalf("expected background released")
	}
	if _, ok := env.Item(3); ok {
		t.Fatalf("expected out of range item lookup to fail")
	}

	empty := NewEnvelope(nil, 3, nil)
	if !empty.Empty() || empty.SelectedIndex() != 0 {
		t.Fatalf("expected empty envelope with index 0, got len=%d idx=%d", empty.Len(), empty.SelectedIndex())
	}
}
