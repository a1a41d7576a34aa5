package room

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const defaultSubscriberBuffer = 32

// A Subscription receives a room's events for one player. Events addressed
// to other players are filtered out. A subscription with no player sees
// everything, private events included.
type Subscription struct {
	Events <-chan Event

	room   string
	player string
	ch     chan Event
	b      *Broadcaster
	once   sync.Once
}

// Close stops delivery and closes Events.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.b.mu.Lock()
		defer s.b.mu.Unlock()
		subs := s.b.subs[s.room]
		delete(subs, s)
		if len(subs) == 0 {
			delete(s.b.subs, s.room)
		}
		close(s.ch)
	})
}

func (s *Subscription) wants(e Event) bool {
	return s.player == "" || e.To == "" || e.To == s.player
}

// Broadcaster is an EventSink that fans events out to subscribers. A slow
// subscriber loses events rather than stalling the room.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Broadcaster{subs: map[string]map[*Subscription]struct{}{}, buffer: buffer}
}

// Subscribe registers interest in a room's events.
func (b *Broadcaster) Subscribe(room, playerID string) *Subscription {
	ch := make(chan Event, b.buffer)
	s := &Subscription{Events: ch, room: room, player: playerID, ch: ch, b: b}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[room] == nil {
		b.subs[room] = map[*Subscription]struct{}{}
	}
	b.subs[room][s] = struct{}{}
	return s
}

func (b *Broadcaster) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs[e.Room] {
		if !s.wants(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			log.Warn().Str("room", e.Room).Str("player", s.player).Str("event", e.Type).
				Msg("subscriber-too-slow")
		}
	}
}

// Subscribers counts the subscriptions for a room.
func (b *Broadcaster) Subscribers(room string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[room])
}
