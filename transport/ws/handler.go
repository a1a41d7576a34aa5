// Package ws serves rooms over websockets. Each connection sends
// room.Request frames and receives room.Response replies interleaved with
// room.Event frames for the room it has joined.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/room"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	sendBuffer     = 256
	commandTimeout = 10 * time.Second
)

// Handler upgrades requests to websockets and runs one session per
// connection.
type Handler struct {
	hub      *room.Hub
	events   *room.Broadcaster
	base     game.Settings
	upgrader websocket.Upgrader
}

// NewHandler creates a handler. An empty origins list accepts any origin.
func NewHandler(hub *room.Hub, events *room.Broadcaster, base game.Settings, origins []string) *Handler {
	return &Handler{
		hub:    hub,
		events: events,
		base:   base,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return len(origins) == 0 || slices.Contains(origins, r.Header.Get("Origin"))
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket-upgrade-failed")
		return
	}
	s := &session{
		h:    h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		log:  log.With().Str("remote", r.RemoteAddr).Logger(),
	}
	s.log.Debug().Msg("websocket-connected")
	go s.writePump()
	s.readPump(r.Context())
}

// session is one websocket connection, bound to at most one player.
type session struct {
	h    *Handler
	conn *websocket.Conn
	send chan []byte
	log  zerolog.Logger

	mu     sync.Mutex
	room   string
	player string
	sub    *room.Subscription
	fwd    sync.WaitGroup
}

func (s *session) readPump(ctx context.Context) {
	defer s.disconnect()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var req room.Request
		if err := s.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn().Err(err).Msg("websocket-read-error")
			}
			return
		}
		s.enqueue(s.handle(ctx, req))
	}
}

func (s *session) handle(ctx context.Context, req room.Request) room.Response {
	s.mu.Lock()
	bound, code, player := s.sub != nil, s.room, s.player
	s.mu.Unlock()

	switch req.Verb {
	case room.VerbCreate, room.VerbJoin:
	case room.VerbAttach:
		// Subscribe first so the private state that attach sends lands
		// here. Events are published under the room's own code.
		if c, err := s.h.hub.Get(req.Room); err == nil {
			s.bind(c.Code(), req.Player)
		}
	default:
		if !bound {
			err := fmt.Errorf("%w: join or attach before %s", game.ErrInvalidCommand, req.Verb)
			return room.Response{ID: req.ID, Verb: req.Verb, Reason: game.ReasonCode(err), Error: err.Error()}
		}
		req.Room, req.Player = code, player
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	resp := s.h.hub.Handle(ctx, s.h.base, req)

	switch {
	case !resp.OK && req.Verb == room.VerbAttach:
		s.unbind()
	case resp.OK && (req.Verb == room.VerbCreate || req.Verb == room.VerbJoin):
		res := resp.Result.(room.JoinResult)
		s.bind(res.State.Code, res.PlayerID)
	case resp.OK && req.Verb == room.VerbLeave:
		s.unbind()
	}
	return resp
}

// bind points the session at a player, replacing any earlier binding.
func (s *session) bind(code, player string) {
	s.unbind()
	sub := s.h.events.Subscribe(code, player)
	s.mu.Lock()
	s.room, s.player, s.sub = code, player, sub
	s.mu.Unlock()

	s.fwd.Add(1)
	go func() {
		defer s.fwd.Done()
		for e := range sub.Events {
			s.enqueue(e)
		}
	}()
	s.log.Debug().Str("room", code).Str("player", player).Msg("session-bound")
}

func (s *session) unbind() {
	s.mu.Lock()
	sub := s.sub
	s.room, s.player, s.sub = "", "", nil
	s.mu.Unlock()
	if sub != nil {
		sub.Close()
		s.fwd.Wait()
	}
}

// disconnect treats a dropped connection as leaving the room.
func (s *session) disconnect() {
	s.mu.Lock()
	code, player, bound := s.room, s.player, s.sub != nil
	s.mu.Unlock()
	if bound {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		if _, err := s.h.hub.Dispatch(ctx, code, room.Leave{PlayerID: player}); err != nil {
			s.log.Debug().Err(err).Str("room", code).Msg("leave-on-disconnect-failed")
		}
		cancel()
	}
	s.unbind()
	close(s.send)
	s.log.Debug().Msg("websocket-disconnected")
}

func (s *session) enqueue(v any) {
	bts, err := json.Marshal(v)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket-marshal-failed")
		return
	}
	select {
	case s.send <- bts:
	default:
		s.log.Warn().Msg("websocket-send-buffer-full")
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
