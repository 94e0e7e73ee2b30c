package viewer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/danmuck/photohandoff/internal/delivery"
	"github.com/danmuck/photohandoff/internal/observability"
	"github.com/danmuck/photohandoff/internal/photo"
	"github.com/danmuck/photohandoff/internal/recovery"
	"github.com/danmuck/photohandoff/internal/state"
	"github.com/rs/zerolog/log"
)

type State int

const (
	StateUninitialized State = iota
	StateResolved
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateResolved:
		return "resolved"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Source records which path produced the resolved envelope.
type Source string

const (
	SourceNone      Source = ""
	SourceDelivered Source = "delivered"
	SourceRecovered Source = "recovered"
	SourceEmpty     Source = "empty"
)

// MismatchPolicy decides between a delivered envelope and the persisted
// records when their item counts disagree.
type MismatchPolicy string

const (
	PreferDelivered MismatchPolicy = "prefer_delivered"
	PreferRecovered MismatchPolicy = "prefer_recovered"
)

func ParseMismatchPolicy(raw string) (MismatchPolicy, error) {
	switch MismatchPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PreferDelivered:
		return PreferDelivered, nil
	case PreferRecovered:
		return PreferRecovered, nil
	default:
		return "", fmt.Errorf("viewer: invalid mismatch policy %q", raw)
	}
}

// DefaultMaxItems bounds the item count read back from a saved bundle.
const DefaultMaxItems = 1 << 14

type Option func(*Controller)

// WithWorkers sets reconstruction parallelism. n <= 1 recovers sequentially.
func WithWorkers(n int) Option {
	return func(c *Controller) { c.workers = n }
}

func WithMismatchPolicy(p MismatchPolicy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithMaxItems caps how many records recovery reads. n < 1 keeps DefaultMaxItems.
func WithMaxItems(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxItems = n
		}
	}
}

// Controller resolves the handoff for one receiving screen and releases it on
// Close. Construction moves it to StateResolved; Close to StateDisposed.
type Controller struct {
	mu         sync.Mutex
	phase      State
	saved      state.Bundle
	deliveries *delivery.Registry
	token      delivery.Token
	env        photo.Envelope
	source     Source
	outcomes   []recovery.Outcome
	current    int

	workers  int
	policy   MismatchPolicy
	maxItems int
}

// New resolves the envelope for a screen from its saved bundle: the delivery
// registry first, then per-item recovery, then an empty result.
func New(
	ctx context.Context,
	saved state.Bundle,
	deliveries *delivery.Registry,
	recoverer *recovery.Registry,
	opts ...Option,
) *Controller {
	if ctx == nil {
		ctx = context.Background()
	}
	if saved == nil {
		saved = state.NewMemory(0)
	}
	if deliveries == nil {
		deliveries = delivery.New()
	}
	if recoverer == nil {
		recoverer = recovery.NewRegistry()
	}
	c := &Controller{
		phase:      StateUninitialized,
		saved:      saved,
		deliveries: deliveries,
		token:      delivery.NoToken,
		workers:    1,
		policy:     PreferDelivered,
		maxItems:   DefaultMaxItems,
	}
	for _, opt := range opts {
		opt(c)
	}
	if v, ok := saved.Int64(state.KeyDeliveryToken); ok {
		c.token = delivery.Token(v)
	}

	c.resolve(ctx, recoverer)
	observability.RecordResolution(string(c.source))
	log.Debug().
		Stringer("token", c.token).
		Str("source", string(c.source)).
		Int("items", c.env.Len()).
		Int("index", c.current).
		Msg("viewer.Controller.New resolved")
	return c
}

func (c *Controller) resolve(ctx context.Context, recoverer *recovery.Registry) {
	count, _ := c.saved.Int(state.KeyCount)
	if count < 0 {
		count = 0
	}
	if count > c.maxItems {
		log.Warn().
			Int("recorded", count).
			Int("max", c.maxItems).
			Msg("viewer.Controller item count clamped")
		count = c.maxItems
	}
	index, hasIndex := c.saved.Int(state.KeyCurrentIndex)

	if ctx.Err() != nil {
		// Screen already gone: leave the entry for Close to purge.
		log.Debug().Stringer("token", c.token).Err(ctx.Err()).Msg("viewer.Controller canceled before resolve")
		c.settle(photo.Envelope{}, SourceEmpty, nil, 0)
		return
	}

	if env, ok := c.deliveries.GetAndRemove(c.token); ok {
		mismatch := count > 0 && env.Len() != count
		if mismatch {
			log.Warn().
				Stringer("token", c.token).
				Int("delivered", env.Len()).
				Int("recorded", count).
				Str("policy", string(c.policy)).
				Msg("viewer.Controller item count mismatch")
		}
		if !mismatch || c.policy != PreferRecovered {
			if !hasIndex {
				index = env.Index
			}
			c.settle(env, SourceDelivered, nil, index)
			return
		}
	}

	if count > 0 {
		outcomes := recoverer.RecoverAll(ctx, readRecords(c.saved, count), c.workers)
		env := photo.NewEnvelope(recovery.Providers(outcomes), index, nil)
		c.settle(env, SourceRecovered, outcomes, index)
		return
	}

	c.settle(photo.Envelope{}, SourceEmpty, nil, 0)
}

func (c *Controller) settle(env photo.Envelope, source Source, outcomes []recovery.Outcome, index int) {
	c.env = env
	c.source = source
	c.outcomes = outcomes
	c.current = photo.ClampIndex(index, env.Len())
	c.phase = StateResolved
}

func readRecords(saved state.Bundle, count int) []recovery.Record {
	records := make([]recovery.Record, count)
	for i := range records {
		id, _ := saved.String(state.RecoverKey(i))
		blob, ok := saved.Blob(state.MetaKey(i))
		if !ok {
			records[i] = recovery.Record{ID: id}
			continue
		}
		meta, err := photo.UnmarshalMeta(blob)
		if err != nil {
			log.Debug().Int("index", i).Err(err).Msg("viewer.readRecords corrupt meta")
			records[i] = recovery.Record{ID: id}
			continue
		}
		records[i] = recovery.Record{Meta: meta, HasMeta: true, ID: id}
	}
	return records
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) Source() Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

func (c *Controller) Token() delivery.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Envelope returns the resolved envelope. An empty envelope means "no data".
func (c *Controller) Envelope() photo.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.env
}

// Outcomes returns per-item recovery outcomes; nil unless Source is SourceRecovered.
func (c *Controller) Outcomes() []recovery.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]recovery.Outcome(nil), c.outcomes...)
}

func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Select moves the current page, clamped to the envelope, and records it in
// the saved bundle so a later restore lands on the same page.
func (c *Controller) Select(i int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != StateResolved {
		return c.current
	}
	c.current = photo.ClampIndex(i, c.env.Len())
	c.saved.SetInt(state.KeyCurrentIndex, c.current)
	return c.current
}

// Close purges any unconsumed registry entry for the held token and drops
// the background snapshot. Safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == StateDisposed {
		return
	}
	c.deliveries.Remove(c.token)
	c.env.Release()
	c.phase = StateDisposed
	log.Debug().Stringer("token", c.token).Msg("viewer.Controller.Close")
}

// Run scopes a controller to fn: Close runs on every return path, panics included.
func Run(
	ctx context.Context,
	saved state.Bundle,
	deliveries *delivery.Registry,
	recoverer *recovery.Registry,
	fn func(*Controller) error,
	opts ...Option,
) error {
	c := New(ctx, saved, deliveries, recoverer, opts...)
	defer c.Close()
	return fn(c)
}
