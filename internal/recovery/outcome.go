package recovery

import "github.com/danmuck/photohandoff/internal/photo"

type Status string

const (
	StatusRecovered Status = "recovered"
	StatusDegraded  Status = "degraded"
)

// Reason classifies why an item degraded. Empty for recovered items.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonMissingRecord     Reason = "missing_record"
	ReasonUnknownIdentifier Reason = "unknown_identifier"
	ReasonReconstructFailed Reason = "reconstruct_failed"
	ReasonEmptyResult       Reason = "empty_result"
	ReasonPanic             Reason = "panic"
	ReasonCanceled          Reason = "canceled"
)

// Outcome is the result of reconstructing one item.
type Outcome struct {
	Provider photo.Provider
	Status   Status
	Reason   Reason
	Err      error
}

func recovered(p photo.Provider) Outcome {
	return Outcome{Provider: p, Status: StatusRecovered}
}

func degraded(reason Reason, err error) Outcome {
	return Outcome{Provider: photo.Loss, Status: StatusDegraded, Reason: reason, Err: err}
}

func (o Outcome) Recovered() bool {
	return o.Status == StatusRecovered
}

// Record is one persisted per-item recovery hint.
type Record struct {
	Meta    photo.Meta
	HasMeta bool
	ID      string
}

// Providers flattens outcomes into the item list, keeping positions.
func Providers(outcomes []Outcome) []photo.Provider {
	out := make([]photo.Provider, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Provider
	}
	return out
}
