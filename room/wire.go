package room

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/lexicon"
	"github.com/domino14/wordroom/move"
)

// Inbound verbs.
const (
	VerbCreate    = "room.create"
	VerbState     = "room.state"
	VerbJoin      = "player.join"
	VerbAttach    = "player.attach"
	VerbLeave     = "player.leave"
	VerbReady     = "player.ready"
	VerbStart     = "game.start"
	VerbFinish    = "game.finish"
	VerbSubmit    = "move.submit"
	VerbPreview   = "move.preview"
	VerbPass      = "turn.pass"
	VerbSwap      = "turn.swap"
	VerbChallenge = "challenge.issue"
	VerbRespond   = "challenge.respond"
)

// Request is a command as it arrives over a transport.
type Request struct {
	ID      string          `json:"id,omitempty"`
	Verb    string          `json:"verb"`
	Room    string          `json:"room,omitempty"`
	Player  string          `json:"player,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the direct reply to a Request. Reason is one of the
// game.Reason constants when OK is false.
type Response struct {
	ID     string `json:"id,omitempty"`
	Verb   string `json:"verb"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`
	Result any    `json:"result,omitempty"`
}

// CreatePayload is the body of room.create.
type CreatePayload struct {
	Name        string `json:"name"`
	Mode        string `json:"mode"`
	MaxPlayers  int    `json:"maxPlayers"`
	Variant     string `json:"variant"`
	TurnSeconds int    `json:"turnSeconds"`
}

type namePayload struct {
	Name string `json:"name"`
}

type readyPayload struct {
	Ready bool `json:"ready"`
}

// tilesPayload accepts either explicit tiles or board coordinates plus
// a word, as in "8H" and "GOAT".
type tilesPayload struct {
	Tiles  []move.TileRequest `json:"tiles"`
	Coords string             `json:"coords"`
	Word   string             `json:"word"`
}

type swapPayload struct {
	Letters string `json:"letters"`
}

type challengePayload struct {
	Target string `json:"target"`
	Word   string `json:"word"`
}

type respondPayload struct {
	Valid bool `json:"valid"`
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", game.ErrInvalidCommand, err)
	}
	return nil
}

func (p tilesPayload) requests() ([]move.TileRequest, error) {
	if len(p.Tiles) > 0 || p.Coords == "" {
		return p.Tiles, nil
	}
	reqs, err := move.RequestsFromCoords(p.Coords, p.Word)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", game.ErrInvalidCommand, err)
	}
	return reqs, nil
}

// Command decodes a room-level request into a Command. room.create is
// not a room command and is handled by Hub.Handle.
func (r Request) Command() (Command, error) {
	switch r.Verb {
	case VerbState:
		return GetState{}, nil
	case VerbJoin:
		var p namePayload
		if err := decode(r.Payload, &p); err != nil {
			return nil, err
		}
		return Join{Name: p.Name}, nil
	case VerbAttach:
		return Attach{PlayerID: r.Player}, nil
	case VerbLeave:
		return Leave{PlayerID: r.Player}, nil
	case VerbReady:
		p := readyPayload{Ready: true}
		if err := decode(r.Payload, &p); err != nil {
			return nil, err
		}
		return SetReady{PlayerID: r.Player, Ready: p.Ready}, nil
	case VerbStart:
		return Start{PlayerID: r.Player}, nil
	case VerbFinish:
		return Finish{PlayerID: r.Player}, nil
	case VerbSubmit, VerbPreview:
		var p tilesPayload
		if err := decode(r.Payload, &p); err != nil {
			return nil, err
		}
		reqs, err := p.requests()
		if err != nil {
			return nil, err
		}
		if r.Verb == VerbPreview {
			return Preview{PlayerID: r.Player, Tiles: reqs}, nil
		}
		return SubmitMove{PlayerID: r.Player, Tiles: reqs}, nil
	case VerbPass:
		return Pass{PlayerID: r.Player}, nil
	case VerbSwap:
		var p swapPayload
		if err := decode(r.Payload, &p); err != nil {
			return nil, err
		}
		return Swap{PlayerID: r.Player, Letters: p.Letters}, nil
	case VerbChallenge:
		var p challengePayload
		if err := decode(r.Payload, &p); err != nil {
			return nil, err
		}
		return IssueChallenge{PlayerID: r.Player, TargetID: p.Target, Word: p.Word}, nil
	case VerbRespond:
		var p respondPayload
		if err := decode(r.Payload, &p); err != nil {
			return nil, err
		}
		return RespondChallenge{PlayerID: r.Player, Valid: p.Valid}, nil
	}
	return nil, fmt.Errorf("%w: unknown verb %q", game.ErrInvalidCommand, r.Verb)
}

// Settings turns a room.create body into game settings, starting from
// base for anything left out.
func (p CreatePayload) Settings(base game.Settings) (game.Settings, error) {
	s := base
	if p.Mode != "" {
		m, err := game.ParseMode(p.Mode)
		if err != nil {
			return s, err
		}
		s.Mode = m
	}
	if s.Mode == game.ModePractice {
		s.MaxPlayers = game.MinPlayers
	}
	if p.MaxPlayers != 0 {
		s.MaxPlayers = p.MaxPlayers
	}
	if p.Variant != "" {
		v, err := lexicon.ParseVariant(p.Variant)
		if err != nil {
			return s, fmt.Errorf("%w: %w", game.ErrInvalidCommand, err)
		}
		s.Variant = v
	}
	if p.TurnSeconds > 0 {
		s.TurnDuration = time.Duration(p.TurnSeconds) * time.Second
	}
	return s, s.Validate()
}

// Handle runs one transport request against the hub and builds the reply.
// base seeds the settings of rooms created through it.
func (h *Hub) Handle(ctx context.Context, base game.Settings, req Request) Response {
	resp := Response{ID: req.ID, Verb: req.Verb}
	val, err := h.handle(ctx, base, req)
	if err != nil {
		resp.Reason = game.ReasonCode(err)
		resp.Error = err.Error()
		// A rejected play still reports its provisional score.
		if mr, ok := val.(*game.MoveResult); ok && mr != nil {
			resp.Result = mr
		}
		return resp
	}
	resp.OK = true
	resp.Result = val
	return resp
}

func (h *Hub) handle(ctx context.Context, base game.Settings, req Request) (any, error) {
	if req.Verb == VerbCreate {
		var p CreatePayload
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		settings, err := p.Settings(base)
		if err != nil {
			return nil, err
		}
		_, res, err := h.Create(ctx, settings, p.Name)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	if req.Room == "" {
		return nil, fmt.Errorf("%w: no room given", game.ErrRoomNotFound)
	}
	cmd, err := req.Command()
	if err != nil {
		return nil, err
	}
	return h.Dispatch(ctx, req.Room, cmd)
}
