package room

import (
	"testing"

	"github.com/matryer/is"
)

func TestBroadcasterFiltersPrivateEvents(t *testing.T) {
	is := is.New(t)
	b := NewBroadcaster(4)
	alice := b.Subscribe("ROOM01", "alice")
	bob := b.Subscribe("ROOM01", "bob")
	all := b.Subscribe("ROOM01", "")
	other := b.Subscribe("ROOM02", "carol")
	defer other.Close()

	b.Publish(Event{Type: EventRoomState, Room: "ROOM01"})
	b.Publish(Event{Type: EventRackUpdated, Room: "ROOM01", To: "alice"})

	is.Equal((<-alice.Events).Type, EventRoomState)
	is.Equal((<-alice.Events).Type, EventRackUpdated)
	is.Equal((<-bob.Events).Type, EventRoomState)
	is.Equal(len(bob.Events), 0)
	is.Equal(len(all.Events), 2)
	is.Equal(len(other.Events), 0)

	alice.Close()
	bob.Close()
	all.Close()
	is.Equal(b.Subscribers("ROOM01"), 0)
	_, open := <-alice.Events
	is.True(!open)
}

func TestBroadcasterDropsForSlowSubscriber(t *testing.T) {
	is := is.New(t)
	b := NewBroadcaster(1)
	s := b.Subscribe("ROOM01", "alice")
	defer s.Close()

	b.Publish(Event{Type: EventRoomState, Room: "ROOM01"})
	// The buffer is full; this one is dropped instead of blocking.
	b.Publish(Event{Type: EventTurnChanged, Room: "ROOM01"})
	is.Equal(len(s.Events), 1)
	is.Equal((<-s.Events).Type, EventRoomState)
}

func TestMultiSink(t *testing.T) {
	is := is.New(t)
	var n int
	count := SinkFunc(func(Event) { n++ })
	MultiSink{count, count, discardSink{}}.Publish(Event{Type: EventRoomState})
	is.Equal(n, 2)
}
