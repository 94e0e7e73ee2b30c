package delivery

import (
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/danmuck/photohandoff/internal/observability"
	"github.com/danmuck/photohandoff/internal/photo"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

// Token identifies one handoff transaction.
type Token int64

// NoToken marks "no delivery".
const NoToken Token = -1

func (t Token) Valid() bool {
	return t > 0
}

func (t Token) String() string {
	return strconv.FormatInt(int64(t), 10)
}

// Registry is the process-owned token -> envelope map. The registry owns a
// stored envelope until the first GetAndRemove or Remove for its token.
type Registry struct {
	mu    sync.Mutex
	name  string
	items map[Token]photo.Envelope
	epoch int64
	seq   int64
}

// DefaultName labels metrics of registries created without WithName.
const DefaultName = "default"

type Option func(*Registry)

// WithName sets the label the registry's pending gauge is published under.
func WithName(name string) Option {
	return func(r *Registry) {
		if name = strings.TrimSpace(name); name != "" {
			r.name = name
		}
	}
}

// New creates a registry with a random token epoch so tokens persisted by an
// earlier process rarely alias tokens issued here.
func New(opts ...Option) *Registry {
	return NewWithEpoch(rand.Int64N(1<<31-1)+1, opts...)
}

// NewWithEpoch creates a registry with a fixed epoch in [1, 2^31).
func NewWithEpoch(epoch int64, opts ...Option) *Registry {
	if epoch <= 0 || epoch >= 1<<31 {
		epoch = 1
	}
	r := &Registry{
		name:  DefaultName,
		items: make(map[Token]photo.Envelope),
		epoch: epoch,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Name() string {
	return r.name
}

// Put stores env under a fresh token.
func (r *Registry) Put(env photo.Envelope) Token {
	r.mu.Lock()
	r.seq++
	token := Token(r.epoch<<32 | (r.seq & 0xffffffff))
	r.items[token] = env
	pending := len(r.items)
	r.mu.Unlock()

	observability.RecordDelivery(r.name, "put", "ok", pending)
	log.Debug().
		Stringer("token", token).
		Int("items", env.Len()).
		Str("background", humanize.Bytes(env.BackgroundBytes())).
		Int("pending", pending).
		Msg("delivery.Registry.Put")
	return token
}

// GetAndRemove consumes the envelope for token. At most one caller observes
// it; unknown, sentinel and consumed tokens report false.
func (r *Registry) GetAndRemove(token Token) (photo.Envelope, bool) {
	if !token.Valid() {
		return photo.Envelope{}, false
	}
	r.mu.Lock()
	env, ok := r.items[token]
	if ok {
		delete(r.items, token)
	}
	pending := len(r.items)
	r.mu.Unlock()

	result := "miss"
	if ok {
		result = "hit"
	}
	observability.RecordDelivery(r.name, "get", result, pending)
	log.Debug().Stringer("token", token).Str("result", result).Msg("delivery.Registry.GetAndRemove")
	return env, ok
}

// Remove drops token if still pending. Idempotent.
func (r *Registry) Remove(token Token) {
	if !token.Valid() {
		return
	}
	r.mu.Lock()
	env, ok := r.items[token]
	if ok {
		delete(r.items, token)
	}
	pending := len(r.items)
	r.mu.Unlock()

	if !ok {
		return
	}
	freed := env.BackgroundBytes()
	observability.RecordDelivery(r.name, "remove", "purged", pending)
	log.Debug().
		Stringer("token", token).
		Str("freed", humanize.Bytes(freed)).
		Msg("delivery.Registry.Remove")
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Tokens returns pending tokens in ascending order.
func (r *Registry) Tokens() []Token {
	r.mu.Lock()
	out := make([]Token, 0, len(r.items))
	for t := range r.items {
		out = append(out, t)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Close purges every pending envelope. It is the process-shutdown hook.
func (r *Registry) Close() {
	r.mu.Lock()
	purged := r.items
	r.items = make(map[Token]photo.Envelope)
	r.mu.Unlock()

	var freed uint64
	for _, env := range purged {
		freed += env.BackgroundBytes()
	}
	observability.RecordDelivery(r.name, "close", "purged", 0)
	log.Info().
		Int("purged", len(purged)).
		Str("freed", humanize.Bytes(freed)).
		Msg("delivery.Registry.Close")
}
