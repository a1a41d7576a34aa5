// Package natsbridge exposes rooms on a NATS bus. Commands arrive as
// request/reply on <prefix>.cmd; room events are published on
// <prefix>.room.<code>.events, and private ones on
// <prefix>.room.<code>.player.<id>.
package natsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/room"
)

const (
	queueGroup     = "wordroom"
	commandTimeout = 10 * time.Second
)

// Publisher is the part of *nats.Conn the event side needs.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// Bridge is a room.EventSink that also serves commands.
type Bridge struct {
	nc     *nats.Conn
	pub    Publisher
	hub    *room.Hub
	base   game.Settings
	prefix string
	sub    *nats.Subscription
}

// New creates a bridge over an open connection.
func New(nc *nats.Conn, hub *room.Hub, base game.Settings, prefix string) *Bridge {
	b := newBridge(nc, hub, base, prefix)
	b.nc = nc
	return b
}

func newBridge(pub Publisher, hub *room.Hub, base game.Settings, prefix string) *Bridge {
	return &Bridge{pub: pub, hub: hub, base: base, prefix: prefix}
}

// SetHub attaches the hub commands are routed to. The hub holds the
// bridge as a sink, so one of the two is wired after construction.
func (b *Bridge) SetHub(hub *room.Hub) {
	b.hub = hub
}

func (b *Bridge) CommandSubject() string {
	return b.prefix + ".cmd"
}

func (b *Bridge) EventSubject(code string) string {
	return fmt.Sprintf("%s.room.%s.events", b.prefix, code)
}

func (b *Bridge) PlayerSubject(code, playerID string) string {
	return fmt.Sprintf("%s.room.%s.player.%s", b.prefix, code, playerID)
}

// Start subscribes to the command subject.
func (b *Bridge) Start(ctx context.Context) error {
	sub, err := b.nc.QueueSubscribe(b.CommandSubject(), queueGroup, func(m *nats.Msg) {
		log.Debug().Int("bytes", len(m.Data)).Str("subject", m.Subject).Msg("nats-command")
		if err := m.Respond(b.Reply(ctx, m.Data)); err != nil {
			log.Warn().Err(err).Msg("nats-respond-failed")
		}
	})
	if err != nil {
		return err
	}
	b.sub = sub
	if err := b.nc.Flush(); err != nil {
		return err
	}
	log.Info().Str("subject", b.CommandSubject()).Msg("nats-listening")
	return b.nc.LastError()
}

// Stop drains the command subscription.
func (b *Bridge) Stop() error {
	if b.sub == nil {
		return nil
	}
	return b.sub.Drain()
}

// Reply runs one encoded room.Request and encodes the response.
func (b *Bridge) Reply(ctx context.Context, data []byte) []byte {
	var req room.Request
	var resp room.Response
	if err := json.Unmarshal(data, &req); err != nil {
		resp = room.Response{
			Reason: game.ReasonInvalidCommand,
			Error:  fmt.Errorf("%w: %w", game.ErrInvalidCommand, err).Error(),
		}
	} else {
		ctx, cancel := context.WithTimeout(ctx, commandTimeout)
		resp = b.hub.Handle(ctx, b.base, req)
		cancel()
	}
	out, err := json.Marshal(resp)
	if err != nil {
		// Should never happen; the result types all marshal.
		return []byte(err.Error())
	}
	return out
}

func (b *Bridge) Publish(e room.Event) {
	subject := b.EventSubject(e.Room)
	if e.To != "" {
		subject = b.PlayerSubject(e.Room, e.To)
	}
	data, err := json.Marshal(e)
	if err != nil {
		log.Error().Err(err).Str("event", e.Type).Msg("nats-marshal-failed")
		return
	}
	if err := b.pub.Publish(subject, data); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("nats-publish-failed")
	}
}
