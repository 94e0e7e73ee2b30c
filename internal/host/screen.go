package host

import (
	"sync"

	"github.com/danmuck/photohandoff/internal/state"
	"github.com/danmuck/photohandoff/internal/viewer"
	"github.com/rs/zerolog/log"
)

// Screen is one receiving viewer instance.
type Screen struct {
	id         string
	process    *Process
	saved      *state.Memory
	controller *viewer.Controller

	destroyOnce sync.Once
}

func (s *Screen) ID() string                     { return s.id }
func (s *Screen) Controller() *viewer.Controller { return s.controller }

// State is the screen's restoration bundle as the host would persist it.
func (s *Screen) State() *state.Memory { return s.saved }

// Persist writes the screen's restoration bundle to path.
func (s *Screen) Persist(path string) error {
	return s.saved.Save(path)
}

// Destroy disposes the controller and detaches the screen from its process.
func (s *Screen) Destroy() {
	s.destroyOnce.Do(func() {
		s.controller.Close()
		s.process.forget(s.id)
		log.Info().Str("screen", s.id).Msg("host.Screen destroyed")
	})
}
