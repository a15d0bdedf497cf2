// Package redisbus relays event bus envelopes between processes over Redis
// pub/sub so every session of the same user converges.
package redisbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/CrestNiraj12/fedtimeline/eventbus"
)

// wireEnvelope is the JSON form of an envelope on the channel.
type wireEnvelope struct {
	ID      string          `json:"id"`
	Origin  string          `json:"origin"`
	At      time.Time       `json:"at"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type decodeFunc func(json.RawMessage) (eventbus.Event, error)

func decoderFor[T eventbus.Event]() decodeFunc {
	return func(raw json.RawMessage) (eventbus.Event, error) {
		var ev T
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	}
}

var decoders = map[string]decodeFunc{
	eventbus.FavouriteEvent{}.Name():          decoderFor[eventbus.FavouriteEvent](),
	eventbus.ReblogEvent{}.Name():             decoderFor[eventbus.ReblogEvent](),
	eventbus.BookmarkEvent{}.Name():           decoderFor[eventbus.BookmarkEvent](),
	eventbus.PinEvent{}.Name():                decoderFor[eventbus.PinEvent](),
	eventbus.PollVoteEvent{}.Name():           decoderFor[eventbus.PollVoteEvent](),
	eventbus.StatusDeletedEvent{}.Name():      decoderFor[eventbus.StatusDeletedEvent](),
	eventbus.StatusEditedEvent{}.Name():       decoderFor[eventbus.StatusEditedEvent](),
	eventbus.BlockEvent{}.Name():              decoderFor[eventbus.BlockEvent](),
	eventbus.MuteEvent{}.Name():               decoderFor[eventbus.MuteEvent](),
	eventbus.DomainMuteEvent{}.Name():         decoderFor[eventbus.DomainMuteEvent](),
	eventbus.UnfollowEvent{}.Name():           decoderFor[eventbus.UnfollowEvent](),
	eventbus.PreferencesChangedEvent{}.Name(): decoderFor[eventbus.PreferencesChangedEvent](),
	eventbus.FiltersChangedEvent{}.Name():     decoderFor[eventbus.FiltersChangedEvent](),
}

// Encode serializes an envelope with a type discriminator.
func Encode(env eventbus.Envelope) ([]byte, error) {
	if env.Event == nil {
		return nil, fmt.Errorf("encoding envelope %s: no event", env.ID)
	}
	payload, err := json.Marshal(env.Event)
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", env.Event.Name(), err)
	}
	return json.Marshal(wireEnvelope{
		ID:      env.ID,
		Origin:  env.Origin,
		At:      env.At,
		Type:    env.Event.Name(),
		Payload: payload,
	})
}

// Decode parses an envelope produced by Encode.
func Decode(data []byte) (eventbus.Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(data, &w); err != nil {
		return eventbus.Envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	dec, ok := decoders[w.Type]
	if !ok {
		return eventbus.Envelope{}, fmt.Errorf("decoding envelope %s: unknown event type %q", w.ID, w.Type)
	}
	ev, err := dec(w.Payload)
	if err != nil {
		return eventbus.Envelope{}, fmt.Errorf("decoding %s event: %w", w.Type, err)
	}
	return eventbus.Envelope{ID: w.ID, Origin: w.Origin, At: w.At, Event: ev}, nil
}
