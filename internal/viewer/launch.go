package viewer

import (
	"errors"
	"fmt"
	"image"

	"github.com/danmuck/photohandoff/internal/delivery"
	"github.com/danmuck/photohandoff/internal/photo"
	"github.com/danmuck/photohandoff/internal/state"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

var (
	ErrNilBundle   = errors.New("viewer: nil state bundle")
	ErrNilRegistry = errors.New("viewer: nil delivery registry")
)

// Launch is the sender half of a handoff. It stores the envelope under a fresh
// token and writes the launch extras the receiving screen starts from: index,
// token, count and, for each recoverable item, its meta blob and recover id.
// An item whose record does not fit the channel is left out and will degrade
// to Loss if the receiver has to recover.
func Launch(
	deliveries *delivery.Registry,
	items []photo.Provider,
	index int,
	background image.Image,
	extras state.Bundle,
) (delivery.Token, error) {
	if deliveries == nil {
		return delivery.NoToken, ErrNilRegistry
	}
	if extras == nil {
		return delivery.NoToken, ErrNilBundle
	}

	env := photo.NewEnvelope(items, index, background)
	token := deliveries.Put(env)
	extras.SetInt64(state.KeyDeliveryToken, int64(token))
	extras.SetInt(state.KeyCurrentIndex, index)
	extras.SetInt(state.KeyCount, len(items))

	written := 0
	for i, item := range items {
		if err := writeRecord(extras, i, item); err != nil {
			log.Warn().Int("index", i).Err(err).Msg("viewer.Launch record skipped")
			continue
		}
		if photo.Recoverable(item) {
			written++
		}
	}
	log.Debug().
		Stringer("token", token).
		Int("items", len(items)).
		Int("records", written).
		Str("background", humanize.Bytes(env.BackgroundBytes())).
		Msg("viewer.Launch")
	return token, nil
}

func writeRecord(extras state.Bundle, i int, item photo.Provider) error {
	if !photo.Recoverable(item) {
		return nil
	}
	meta, _ := item.Meta()
	id, _ := item.RecoverID()
	blob, err := meta.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	if err := extras.SetBlob(state.MetaKey(i), blob); err != nil {
		return err
	}
	extras.SetString(state.RecoverKey(i), id)
	return nil
}
