package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matryer/is"

	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/lexicon"
	"github.com/domino14/wordroom/room"
)

// frame is anything the server sends: a Response or an Event.
type frame struct {
	Verb    string          `json:"verb"`
	OK      bool            `json:"ok"`
	Reason  string          `json:"reason"`
	Result  json.RawMessage `json:"result"`
	Type    string          `json:"type"`
	To      string          `json:"to"`
	Payload json.RawMessage `json:"payload"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	events := room.NewBroadcaster(64)
	gate := lexicon.NewGate(lexicon.WithLexicon(lexicon.VariantTWL, lexicon.AcceptAll{}))
	hub := room.NewHub(ctx, gate, events)
	srv := httptest.NewServer(NewHandler(hub, events, game.DefaultSettings(), nil))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	is.New(t).NoErr(err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, verb, code string, payload any) {
	t.Helper()
	sendAs(t, conn, verb, code, "", payload)
}

func sendAs(t *testing.T, conn *websocket.Conn, verb, code, player string, payload any) {
	t.Helper()
	req := room.Request{Verb: verb, Room: code, Player: player}
	if payload != nil {
		bts, err := json.Marshal(payload)
		is.New(t).NoErr(err)
		req.Payload = bts
	}
	is.New(t).NoErr(conn.WriteJSON(req))
}

// next reads frames until one matches.
func next(t *testing.T, conn *websocket.Conn, match func(frame) bool) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("reading frame: %v", err)
		}
		if match(f) {
			return f
		}
	}
}

func reply(verb string) func(frame) bool {
	return func(f frame) bool { return f.Verb == verb && f.Type == "" }
}

func event(typ string) func(frame) bool {
	return func(f frame) bool { return f.Type == typ }
}

func TestWebsocketGameFlow(t *testing.T) {
	is := is.New(t)
	srv := newServer(t)
	host := dial(t, srv)
	guest := dial(t, srv)

	send(t, host, room.VerbCreate, "", room.CreatePayload{Name: "JD", MaxPlayers: 2})
	f := next(t, host, reply(room.VerbCreate))
	is.True(f.OK)
	var created room.JoinResult
	is.NoErr(json.Unmarshal(f.Result, &created))
	code := created.State.Code
	is.Equal(len(code), 6)

	// Codes are case-insensitive; the session still hears the room.
	send(t, guest, room.VerbJoin, strings.ToLower(code), map[string]string{"name": "cesar"})
	f = next(t, guest, reply(room.VerbJoin))
	is.True(f.OK)
	var joined room.JoinResult
	is.NoErr(json.Unmarshal(f.Result, &joined))
	is.Equal(joined.State.Code, code)

	// The host sees the guest arrive.
	f = next(t, host, event(room.EventRoomState))
	var st game.State
	is.NoErr(json.Unmarshal(f.Payload, &st))
	is.Equal(len(st.Players), 2)

	send(t, guest, room.VerbReady, "", nil)
	is.True(next(t, guest, reply(room.VerbReady)).OK)
	send(t, host, room.VerbStart, "", nil)
	is.True(next(t, host, reply(room.VerbStart)).OK)

	next(t, guest, event(room.EventGameStarted))
	rack := next(t, guest, event(room.EventRackUpdated))
	is.Equal(rack.To, joined.PlayerID)

	// The session supplies room and player, so the guest cannot play
	// for the host.
	send(t, guest, room.VerbPass, "", nil)
	f = next(t, guest, reply(room.VerbPass))
	is.True(!f.OK)
	is.Equal(f.Reason, game.ReasonOutOfTurn)

	send(t, host, room.VerbPass, "", nil)
	is.True(next(t, host, reply(room.VerbPass)).OK)
	f = next(t, guest, event(room.EventTurnChanged))
	var tc room.TurnChanged
	is.NoErr(json.Unmarshal(f.Payload, &tc))
	is.Equal(tc.PlayerID, joined.PlayerID)

	// Dropping the connection leaves the room.
	guest.Close()
	f = next(t, host, event(room.EventPlayerLeft))
	var left room.PlayerLeft
	is.NoErr(json.Unmarshal(f.Payload, &left))
	is.Equal(left.PlayerID, joined.PlayerID)
	next(t, host, event(room.EventGameFinished))
}

func TestWebsocketErrors(t *testing.T) {
	is := is.New(t)
	srv := newServer(t)
	conn := dial(t, srv)

	send(t, conn, room.VerbJoin, "NOPE00", map[string]string{"name": "JD"})
	f := next(t, conn, reply(room.VerbJoin))
	is.True(!f.OK)
	is.Equal(f.Reason, game.ReasonRoomNotFound)

	send(t, conn, room.VerbAttach, "NOPE00", nil)
	f = next(t, conn, reply(room.VerbAttach))
	is.Equal(f.Reason, game.ReasonRoomNotFound)

	send(t, conn, "bogus", "NOPE00", nil)
	f = next(t, conn, reply("bogus"))
	is.Equal(f.Reason, game.ReasonInvalidCommand)
}

func TestUnboundSessionCannotActForPlayers(t *testing.T) {
	is := is.New(t)
	srv := newServer(t)
	host := dial(t, srv)
	guest := dial(t, srv)
	intruder := dial(t, srv)

	send(t, host, room.VerbCreate, "", room.CreatePayload{Name: "JD", MaxPlayers: 2})
	var created room.JoinResult
	is.NoErr(json.Unmarshal(next(t, host, reply(room.VerbCreate)).Result, &created))
	code := created.State.Code

	send(t, guest, room.VerbJoin, code, map[string]string{"name": "cesar"})
	is.True(next(t, guest, reply(room.VerbJoin)).OK)
	send(t, guest, room.VerbReady, "", nil)
	is.True(next(t, guest, reply(room.VerbReady)).OK)
	send(t, host, room.VerbStart, "", nil)
	is.True(next(t, host, reply(room.VerbStart)).OK)

	for _, verb := range []string{room.VerbPass, room.VerbFinish, room.VerbState} {
		sendAs(t, intruder, verb, code, created.PlayerID, nil)
		f := next(t, intruder, reply(verb))
		is.True(!f.OK)
		is.Equal(f.Reason, game.ReasonInvalidCommand)
	}

	// The host still holds the turn.
	send(t, host, room.VerbState, "", nil)
	var st game.State
	is.NoErr(json.Unmarshal(next(t, host, reply(room.VerbState)).Result, &st))
	is.Equal(st.Turn.PlayerID, created.PlayerID)
	is.Equal(st.Status, game.StatusInProgress)
}

func TestAttachWithLowercaseCode(t *testing.T) {
	is := is.New(t)
	srv := newServer(t)
	host := dial(t, srv)
	guest := dial(t, srv)

	send(t, host, room.VerbCreate, "", room.CreatePayload{Name: "JD", MaxPlayers: 2})
	var created room.JoinResult
	is.NoErr(json.Unmarshal(next(t, host, reply(room.VerbCreate)).Result, &created))
	code := created.State.Code

	send(t, guest, room.VerbJoin, code, map[string]string{"name": "cesar"})
	var joined room.JoinResult
	is.NoErr(json.Unmarshal(next(t, guest, reply(room.VerbJoin)).Result, &joined))
	send(t, guest, room.VerbReady, "", nil)
	is.True(next(t, guest, reply(room.VerbReady)).OK)

	// A second socket for the guest binds with a lowercase code.
	second := dial(t, srv)
	sendAs(t, second, room.VerbAttach, strings.ToLower(code), joined.PlayerID, nil)
	is.True(next(t, second, reply(room.VerbAttach)).OK)

	send(t, host, room.VerbStart, "", nil)
	is.True(next(t, host, reply(room.VerbStart)).OK)
	next(t, second, event(room.EventGameStarted))
	rack := next(t, second, event(room.EventRackUpdated))
	is.Equal(rack.To, joined.PlayerID)
}
