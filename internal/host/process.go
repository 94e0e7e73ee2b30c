package host

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"
	"time"

	"github.com/danmuck/photohandoff/internal/config"
	"github.com/danmuck/photohandoff/internal/delivery"
	"github.com/danmuck/photohandoff/internal/photo"
	"github.com/danmuck/photohandoff/internal/photo/providers"
	"github.com/danmuck/photohandoff/internal/recovery"
	"github.com/danmuck/photohandoff/internal/state"
	"github.com/danmuck/photohandoff/internal/viewer"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrProcessStopped = errors.New("host: process stopped")
	ErrScreenNotFound = errors.New("host: screen not found")
)

// Process plays the screen-lifecycle host for one process lifetime. It owns
// the delivery and recovery registries; Shutdown is their teardown hook.
type Process struct {
	cfg        config.HostConfig
	policy     viewer.MismatchPolicy
	deliveries *delivery.Registry
	recoverer  *recovery.Registry
	started    time.Time

	mu      sync.Mutex
	screens map[string]*Screen
	stopped bool
}

func NewProcess(cfg config.HostConfig) (*Process, error) {
	cfg = cfg.WithDefaults()
	if err := config.ValidateHostConfig(cfg); err != nil {
		return nil, err
	}
	policy, err := viewer.ParseMismatchPolicy(cfg.MismatchPolicy)
	if err != nil {
		return nil, err
	}
	recoverer := recovery.NewRegistry()
	if err := providers.Register(recoverer); err != nil {
		return nil, fmt.Errorf("host: register providers: %w", err)
	}
	p := &Process{
		cfg:        cfg,
		policy:     policy,
		deliveries: delivery.New(delivery.WithName(cfg.Name)),
		recoverer:  recoverer,
		started:    time.Now(),
		screens:    make(map[string]*Screen),
	}
	log.Info().
		Str("name", cfg.Name).
		Strs("recoverers", recoverer.Identifiers()).
		Msg("host.Process start")
	return p, nil
}

func (p *Process) Config() config.HostConfig      { return p.cfg }
func (p *Process) Deliveries() *delivery.Registry { return p.deliveries }
func (p *Process) Recoverer() *recovery.Registry  { return p.recoverer }
func (p *Process) Uptime() time.Duration          { return time.Since(p.started) }
func (p *Process) NewBundle() *state.Memory       { return state.NewMemory(p.cfg.MaxBlobBytes) }

func (p *Process) options() []viewer.Option {
	return []viewer.Option{
		viewer.WithWorkers(p.cfg.RecoveryWorkers),
		viewer.WithMismatchPolicy(p.policy),
		viewer.WithMaxItems(p.cfg.MaxItems),
	}
}

// Prepare runs the sender half of a handoff and returns the launch extras
// without starting the receiving screen.
func (p *Process) Prepare(items []photo.Provider, index int, background image.Image) (*state.Memory, error) {
	if p.isStopped() {
		return nil, ErrProcessStopped
	}
	extras := p.NewBundle()
	token, err := viewer.Launch(p.deliveries, items, index, background, extras)
	if err != nil {
		return nil, err
	}
	log.Info().
		Stringer("token", token).
		Int("items", len(items)).
		Bool("background", background != nil).
		Msg("host.Process.Prepare")
	return extras, nil
}

// Discard abandons prepared extras whose screen was never started.
func (p *Process) Discard(extras state.Bundle) {
	if extras == nil {
		return
	}
	if v, ok := extras.Int64(state.KeyDeliveryToken); ok {
		p.deliveries.Remove(delivery.Token(v))
	}
}

// Launch hands items to a newly created viewer screen.
func (p *Process) Launch(ctx context.Context, items []photo.Provider, index int, background image.Image) (*Screen, error) {
	extras, err := p.Prepare(items, index, background)
	if err != nil {
		return nil, err
	}
	return p.start(ctx, extras.Clone())
}

// Restore recreates a viewer screen from a saved bundle, e.g. after process death.
func (p *Process) Restore(ctx context.Context, saved *state.Memory) (*Screen, error) {
	if saved == nil {
		saved = p.NewBundle()
	}
	return p.start(ctx, saved)
}

func (p *Process) start(ctx context.Context, saved *state.Memory) (*Screen, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		p.Discard(saved)
		return nil, ErrProcessStopped
	}
	s := &Screen{
		id:      uuid.NewString(),
		process: p,
		saved:   saved,
	}
	s.controller = viewer.New(ctx, saved, p.deliveries, p.recoverer, p.options()...)
	p.screens[s.id] = s
	log.Info().
		Str("screen", s.id).
		Str("source", string(s.controller.Source())).
		Int("items", s.controller.Envelope().Len()).
		Msg("host.Process screen created")
	return s, nil
}

func (p *Process) Screen(id string) (*Screen, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.screens[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScreenNotFound, id)
	}
	return s, nil
}

// Screens returns live screen ids in sorted order.
func (p *Process) Screens() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.screens))
	for id := range p.screens {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (p *Process) forget(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.screens, id)
}

func (p *Process) isStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// Shutdown destroys every live screen and purges the delivery registry.
func (p *Process) Shutdown() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	live := make([]*Screen, 0, len(p.screens))
	for _, s := range p.screens {
		live = append(live, s)
	}
	p.mu.Unlock()

	for _, s := range live {
		s.Destroy()
	}
	p.deliveries.Close()
	log.Info().Int("screens", len(live)).Dur("uptime", p.Uptime()).Msg("host.Process shutdown")
}
