package room

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/wordroom/game"
)

const maxCodeAttempts = 32

// Hub is the directory of live rooms. Rooms remove themselves when their
// last human member leaves.
type Hub struct {
	ctx  context.Context
	dict game.WordChecker
	sink EventSink
	opts []Option

	mu      sync.RWMutex
	rooms   map[string]*Coordinator
	newCode func() string
}

// NewHub creates a hub whose rooms run until ctx is cancelled.
func NewHub(ctx context.Context, dict game.WordChecker, sink EventSink, opts ...Option) *Hub {
	return &Hub{
		ctx:     ctx,
		dict:    dict,
		sink:    sink,
		opts:    opts,
		rooms:   map[string]*Coordinator{},
		newCode: game.NewRoomCode,
	}
}

// Create opens a room and seats hostName as its host.
func (h *Hub) Create(ctx context.Context, settings game.Settings, hostName string) (*Coordinator, JoinResult, error) {
	if strings.TrimSpace(hostName) == "" {
		return nil, JoinResult{}, game.ErrEmptyName
	}
	if err := settings.Validate(); err != nil {
		return nil, JoinResult{}, err
	}

	h.mu.Lock()
	code, err := h.unusedCode()
	if err != nil {
		h.mu.Unlock()
		return nil, JoinResult{}, err
	}
	c, err := NewCoordinator(code, settings, h.dict, h.sink, h.opts...)
	if err != nil {
		h.mu.Unlock()
		return nil, JoinResult{}, err
	}
	c.onClose = h.remove
	h.rooms[code] = c
	h.mu.Unlock()

	go c.Run(h.ctx)
	log.Info().Str("room", code).Str("mode", string(settings.Mode)).Msg("room-created")

	val, err := c.Do(ctx, Join{Name: hostName})
	if err != nil {
		if cerr := c.Close(context.Background()); cerr != nil {
			log.Warn().Err(cerr).Str("room", code).Msg("room-close-failed")
		}
		return nil, JoinResult{}, err
	}
	return c, val.(JoinResult), nil
}

// unusedCode must be called with the lock held.
func (h *Hub) unusedCode() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := h.newCode()
		if _, taken := h.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate a room code", game.ErrInvalidState)
}

// Get looks up a live room.
func (h *Hub) Get(code string) (*Coordinator, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.rooms[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", game.ErrRoomNotFound, code)
	}
	return c, nil
}

// Dispatch routes cmd to the room with the given code.
func (h *Hub) Dispatch(ctx context.Context, code string, cmd Command) (any, error) {
	c, err := h.Get(code)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, cmd)
}

// Codes lists live room codes in order.
func (h *Hub) Codes() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	codes := make([]string, 0, len(h.rooms))
	for code := range h.rooms {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) remove(code string) {
	h.mu.Lock()
	delete(h.rooms, code)
	h.mu.Unlock()
	log.Info().Str("room", code).Msg("room-removed")
}
