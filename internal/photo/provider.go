package photo

// Provider is one handoff item. An item without metadata or without a recover
// identifier cannot be rebuilt and degrades to Loss on recovery.
type Provider interface {
	Meta() (Meta, bool)
	RecoverID() (string, bool)
}

type lossProvider struct{}

func (lossProvider) Meta() (Meta, bool)        { return Meta{}, false }
func (lossProvider) RecoverID() (string, bool) { return "", false }
func (lossProvider) String() string            { return "photo.loss" }

// Loss stands in for every item that could not be reconstructed.
var Loss Provider = lossProvider{}

func IsLoss(p Provider) bool {
	_, ok := p.(lossProvider)
	return ok
}

// Recoverable reports whether p carries both halves of a recovery record.
func Recoverable(p Provider) bool {
	if p == nil || IsLoss(p) {
		return false
	}
	_, hasMeta := p.Meta()
	id, hasID := p.RecoverID()
	return hasMeta && hasID && id != ""
}
