package recovery

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/danmuck/photohandoff/internal/observability"
	"github.com/danmuck/photohandoff/internal/photo"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrReconstructorExists = errors.New("recovery: reconstructor already exists")
	ErrReconstructorNil    = errors.New("recovery: reconstructor is nil")
	ErrInvalidIdentifier   = errors.New("recovery: invalid identifier")
	ErrUnknownIdentifier   = errors.New("recovery: unknown identifier")
	ErrNilProvider         = errors.New("recovery: reconstructor returned nil provider")
)

// Reconstructor rebuilds a provider from its persisted meta.
type Reconstructor func(meta photo.Meta) (photo.Provider, error)

// Registry maps recover identifiers to reconstructors.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Reconstructor
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Reconstructor)}
}

// ValidateIdentifier checks identifier format: letters, digits and single
// '.', '-', '_', '/' separators, no leading or trailing separator.
func ValidateIdentifier(id string) error {
	if !isValidID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return nil
}

func (r *Registry) Register(id string, fn Reconstructor) error {
	if fn == nil {
		return ErrReconstructorNil
	}
	if err := ValidateIdentifier(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; ok {
		return fmt.Errorf("%w: %q", ErrReconstructorExists, id)
	}
	r.items[id] = fn
	return nil
}

func (r *Registry) Resolve(id string) (Reconstructor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.items[strings.TrimSpace(id)]
	return fn, ok
}

// Identifiers returns registered identifiers in sorted order.
func (r *Registry) Identifiers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.items))
	for id := range r.items {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Recover rebuilds one provider. It never fails: every fault maps to a
// Degraded outcome carrying photo.Loss.
func (r *Registry) Recover(id string, meta photo.Meta) Outcome {
	out := r.reconstruct(id, meta)
	observability.RecordRecovery(string(out.Status), string(out.Reason))
	return out
}

func (r *Registry) reconstruct(id string, meta photo.Meta) (out Outcome) {
	fn, ok := r.Resolve(id)
	if !ok {
		return degraded(ReasonUnknownIdentifier, fmt.Errorf("%w: %q", ErrUnknownIdentifier, id))
	}
	defer func() {
		if v := recover(); v != nil {
			out = degraded(ReasonPanic, fmt.Errorf("recovery: reconstructor %q panicked: %v", id, v))
		}
	}()
	p, err := fn(meta)
	if err != nil {
		return degraded(ReasonReconstructFailed, err)
	}
	if isNilProvider(p) {
		return degraded(ReasonEmptyResult, ErrNilProvider)
	}
	return recovered(p)
}

// isNilProvider also catches a nil pointer wrapped in a non-nil interface.
func isNilProvider(p photo.Provider) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func (r *Registry) recoverRecord(rec Record) Outcome {
	if !rec.HasMeta || strings.TrimSpace(rec.ID) == "" {
		observability.RecordRecovery(string(StatusDegraded), string(ReasonMissingRecord))
		return degraded(ReasonMissingRecord, nil)
	}
	return r.Recover(rec.ID, rec.Meta)
}

// RecoverAll reconstructs records independently and keeps their positions.
// workers <= 1 runs sequentially. Records not started before ctx is done
// degrade with ReasonCanceled. All workers have returned when RecoverAll does.
func (r *Registry) RecoverAll(ctx context.Context, records []Record, workers int) []Outcome {
	out := make([]Outcome, len(records))
	if workers <= 1 {
		for i, rec := range records {
			if ctx.Err() != nil {
				out[i] = degraded(ReasonCanceled, ctx.Err())
				continue
			}
			out[i] = r.recoverRecord(rec)
		}
		r.logOutcomes(out)
		return out
	}

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, rec := range records {
		g.Go(func() error {
			if ctx.Err() != nil {
				out[i] = degraded(ReasonCanceled, ctx.Err())
				return nil
			}
			out[i] = r.recoverRecord(rec)
			return nil
		})
	}
	_ = g.Wait()
	r.logOutcomes(out)
	return out
}

func (r *Registry) logOutcomes(out []Outcome) {
	lost := 0
	for i, o := range out {
		if o.Recovered() {
			continue
		}
		lost++
		log.Debug().
			Int("index", i).
			Str("reason", string(o.Reason)).
			AnErr("err", o.Err).
			Msg("recovery.Registry.RecoverAll degraded")
	}
	log.Debug().Int("items", len(out)).Int("lost", lost).Msg("recovery.Registry.RecoverAll done")
}

func isValidID(id string) bool {
	if id == "" || strings.TrimSpace(id) != id {
		return false
	}
	lastSep := false
	for i := 0; i < len(id); i++ {
		c := id[i]
		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		isSep := c == '.' || c == '-' || c == '_' || c == '/'
		if !(isAlpha || isDigit || isSep) {
			return false
		}
		if (i == 0 || i == len(id)-1) && isSep {
			return false
		}
		if isSep && lastSep {
			return false
		}
		lastSep = isSep
	}
	return true
}
