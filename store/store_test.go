package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/wordroom/game"
	"github.com/domino14/wordroom/room"
	"github.com/domino14/wordroom/scoring"
)

func TestStoreRecordsMovesAndGames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	s, err := Open(path, 8)
	require.NoError(t, err)

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Publish(room.Event{Type: room.EventMoveAccepted, Room: "ROOM01", At: at, Payload: room.MoveAccepted{
		PlayerID: "p1",
		Words:    []scoring.WordScore{{Word: "GO", Score: 6}},
		Score:    6,
	}})
	s.Publish(room.Event{Type: room.EventRoomState, Room: "ROOM01", At: at})
	s.Publish(room.Event{Type: room.EventGameFinished, Room: "ROOM01", At: at.Add(time.Minute), Payload: room.GameFinished{
		Reason:  game.FinishByHost,
		Results: []game.PlayerResult{{PlayerInfo: game.PlayerInfo{ID: "p1", Score: 6}, Rank: 1}},
	}})
	require.NoError(t, s.Close())
	// Publishing after close is a no-op.
	s.Publish(room.Event{Type: room.EventMoveAccepted, Room: "ROOM01"})

	s, err = Open(path, 8)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	moves, err := s.Moves(ctx, "ROOM01")
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, "p1", moves[0].PlayerID)
	assert.Equal(t, []string{"GO"}, moves[0].Words)
	assert.Equal(t, 6, moves[0].Score)
	assert.False(t, moves[0].Bingo)
	assert.True(t, moves[0].PlayedAt.Equal(at))

	games, err := s.Games(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, game.FinishByHost, games[0].Reason)
	var results []game.PlayerResult
	require.NoError(t, json.Unmarshal(games[0].Results, &results))
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 6, results[0].Score)
}

func TestStoreIgnoresOtherRooms(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "results.db"), 0)
	require.NoError(t, err)
	defer s.Close()
	moves, err := s.Moves(context.Background(), "NOPE00")
	require.NoError(t, err)
	assert.Empty(t, moves)
}
