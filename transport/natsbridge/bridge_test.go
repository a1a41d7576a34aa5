package natsbridge

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/lexicon"
	"github.com/domino14/wordroom/room"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (f *fakePublisher) Publish(subj string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{subj, data})
	return nil
}

func (f *fakePublisher) subjects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.msgs))
	for i, m := range f.msgs {
		out[i] = m.subject
	}
	return out
}

func TestPublishRoutesPrivateEvents(t *testing.T) {
	is := is.New(t)
	pub := &fakePublisher{}
	b := newBridge(pub, nil, game.DefaultSettings(), "wordroom")

	b.Publish(room.Event{Type: room.EventRoomState, Room: "ROOM01"})
	b.Publish(room.Event{Type: room.EventRackUpdated, Room: "ROOM01", To: "p1"})
	is.Equal(pub.subjects(), []string{"wordroom.room.ROOM01.events", "wordroom.room.ROOM01.player.p1"})

	var e room.Event
	is.NoErr(json.Unmarshal(pub.msgs[1].data, &e))
	is.Equal(e.Type, room.EventRackUpdated)
	is.Equal(e.To, "p1")
	is.Equal(b.CommandSubject(), "wordroom.cmd")
}

func TestReplyRunsCommands(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := &fakePublisher{}
	b := newBridge(pub, nil, game.DefaultSettings(), "wordroom")
	hub := room.NewHub(ctx, lexicon.NewGate(), b)
	b.SetHub(hub)

	out := b.Reply(ctx, []byte(`{"verb":"room.create","payload":{"name":"JD"}}`))
	var resp struct {
		OK     bool            `json:"ok"`
		Result room.JoinResult `json:"result"`
	}
	is.NoErr(json.Unmarshal(out, &resp))
	is.True(resp.OK)
	code := resp.Result.State.Code
	is.Equal(hub.Len(), 1)
	is.Equal(pub.subjects(), []string{b.EventSubject(code)})

	out = b.Reply(ctx, []byte(`not json`))
	var bad room.Response
	is.NoErr(json.Unmarshal(out, &bad))
	is.True(!bad.OK)
	is.Equal(bad.Reason, game.ReasonInvalidCommand)
}
