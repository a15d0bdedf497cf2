package redisbus

import (
	"context"
	"errors"

	"github.com/CrestNiraj12/fedtimeline/eventbus"
	"github.com/CrestNiraj12/fedtimeline/infra/logger"
)

// Transport is the pub/sub surface the relay needs.
type Transport interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe returns a channel of raw messages that is closed when the
	// subscription ends, and a function that ends it.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func() error, error)
}

// Recorder counts relayed events. direction is "out" or "in".
type Recorder interface {
	EventRelayed(event, direction string)
}

type nopRecorder struct{}

func (nopRecorder) EventRelayed(string, string) {}

// ErrSubscriptionClosed is returned by Run when the transport ends the
// subscription on its own.
var ErrSubscriptionClosed = errors.New("redisbus: subscription closed")

// Relay forwards envelopes published on the local bus to a channel and
// delivers envelopes from other processes to the local bus. Envelopes are
// only forwarded by the process that originated them, so nothing loops.
type Relay struct {
	bus       *eventbus.Bus
	transport Transport
	channel   string
	log       logger.Logger
	metrics   Recorder
}

// Option configures a Relay.
type Option func(*Relay)

func WithLogger(l logger.Logger) Option { return func(r *Relay) { r.log = l } }

func WithRecorder(rec Recorder) Option { return func(r *Relay) { r.metrics = rec } }

func NewRelay(bus *eventbus.Bus, t Transport, channel string, opts ...Option) *Relay {
	r := &Relay{
		bus:       bus,
		transport: t,
		channel:   channel,
		log:       logger.NewNop(),
		metrics:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays in both directions until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.bus.Subscribe(func(env eventbus.Envelope) { r.forward(ctx, env) })
	defer sub.Unsubscribe()

	msgs, unsubscribe, err := r.transport.Subscribe(ctx, r.channel)
	if err != nil {
		return err
	}
	defer func() {
		if err := unsubscribe(); err != nil {
			r.log.Warn("closing relay subscription", logger.Error(err))
		}
	}()

	r.log.Info("event relay started", logger.String("channel", r.channel), logger.String("origin", r.bus.Origin()))
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return ErrSubscriptionClosed
			}
			r.receive(msg)
		}
	}
}

func (r *Relay) forward(ctx context.Context, env eventbus.Envelope) {
	if env.Origin != r.bus.Origin() {
		return
	}
	payload, err := Encode(env)
	if err != nil {
		r.log.Warn("encoding event for relay", logger.String("id", env.ID), logger.Error(err))
		return
	}
	if err := r.transport.Publish(ctx, r.channel, payload); err != nil {
		r.log.Warn("relaying event", logger.String("event", env.Event.Name()), logger.Error(err))
		return
	}
	r.metrics.EventRelayed(env.Event.Name(), "out")
}

func (r *Relay) receive(msg []byte) {
	env, err := Decode(msg)
	if err != nil {
		r.log.Warn("dropping relayed message", logger.Error(err))
		return
	}
	if env.Origin == r.bus.Origin() {
		return
	}
	r.metrics.EventRelayed(env.Event.Name(), "in")
	r.bus.Deliver(env)
}
