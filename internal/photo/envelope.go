package photo

import "image"

// Envelope is the full in-memory handoff payload.
type Envelope struct {
	Items      []Provider
	Index      int
	Background image.Image
}

// NewEnvelope copies items so later edits by the sender do not leak into the handoff.
func NewEnvelope(items []Provider, index int, background image.Image) Envelope {
	return Envelope{
		Items:      append([]Provider(nil), items...),
		Index:      index,
		Background: background,
	}
}

func (e Envelope) Len() int {
	return len(e.Items)
}

func (e Envelope) Empty() bool {
	return len(e.Items) == 0
}

func (e Envelope) Item(i int) (Provider, bool) {
	if i < 0 || i >= len(e.Items) {
		return nil, false
	}
	return e.Items[i], true
}

// SelectedIndex is Index clamped into [0, Len()).
func (e Envelope) SelectedIndex() int {
	return ClampIndex(e.Index, len(e.Items))
}

// Release drops the background snapshot reference.
func (e *Envelope) Release() {
	e.Background = nil
}

// BackgroundBytes estimates the memory held by the snapshot at 4 bytes per pixel.
func (e Envelope) BackgroundBytes() uint64 {
	if e.Background == nil {
		return 0
	}
	b := e.Background.Bounds()
	if b.Empty() {
		return 0
	}
	return uint64(b.Dx()) * uint64(b.Dy()) * 4
}

func ClampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
