// Package store keeps a log of accepted moves and finished games in a
// SQLite file. It is an event sink: rooms never wait for it, and if it
// falls behind events are dropped.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	_ "modernc.org/sqlite"

	"github.com/domino14/wordroom/room"
	"github.com/domino14/wordroom/scoring"
)

const schema = `
CREATE TABLE IF NOT EXISTS moves (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	room       TEXT NOT NULL,
	player_id  TEXT NOT NULL,
	words      TEXT NOT NULL,
	score      INTEGER NOT NULL,
	bingo      INTEGER NOT NULL DEFAULT 0,
	played_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room        TEXT NOT NULL,
	reason      TEXT NOT NULL,
	results     TEXT NOT NULL,
	finished_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_moves_room ON moves(room);
`

const defaultQueueSize = 256

// MoveRecord is one accepted move.
type MoveRecord struct {
	Room     string
	PlayerID string
	Words    []string
	Score    int
	Bingo    bool
	PlayedAt time.Time
}

// GameRecord is one finished game.
type GameRecord struct {
	Room       string
	Reason     string
	Results    json.RawMessage
	FinishedAt time.Time
}

// Store is a room.EventSink backed by SQLite.
type Store struct {
	db     *sql.DB
	events chan room.Event
	quit   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// Open creates or opens the database at path and starts the writer.
func Open(path string, queueSize int) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=5000;"} {
		if _, err := db.Exec(pragma); err != nil {
			log.Warn().Err(err).Str("pragma", pragma).Msg("store-pragma-failed")
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	s := &Store{
		db:     db,
		events: make(chan room.Event, queueSize),
		quit:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	log.Info().Str("path", path).Msg("store-opened")
	return s, nil
}

// Publish queues an event for writing. It never blocks.
func (s *Store) Publish(e room.Event) {
	if e.Type != room.EventMoveAccepted && e.Type != room.EventGameFinished {
		return
	}
	select {
	case <-s.quit:
		return
	default:
	}
	select {
	case s.events <- e:
	default:
		log.Warn().Str("room", e.Room).Str("event", e.Type).Msg("store-queue-full")
	}
}

// Close writes whatever is queued and closes the database.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		close(s.quit)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *Store) run() {
	defer s.wg.Done()
	ctx := context.Background()
	for {
		select {
		case e := <-s.events:
			s.write(ctx, e)
		case <-s.quit:
			for {
				select {
				case e := <-s.events:
					s.write(ctx, e)
				default:
					return
				}
			}
		}
	}
}

func (s *Store) write(ctx context.Context, e room.Event) {
	var err error
	switch p := e.Payload.(type) {
	case room.MoveAccepted:
		err = s.insertMove(ctx, e, p)
	case room.GameFinished:
		err = s.insertGame(ctx, e, p)
	}
	if err != nil {
		log.Error().Err(err).Str("room", e.Room).Str("event", e.Type).Msg("store-write-failed")
	}
}

func (s *Store) insertMove(ctx context.Context, e room.Event, p room.MoveAccepted) error {
	words, err := json.Marshal(lo.Map(p.Words, func(w scoring.WordScore, _ int) string { return w.Word }))
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO moves (room, player_id, words, score, bingo, played_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Room, p.PlayerID, string(words), p.Score, p.Bingo, e.At.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Store) insertGame(ctx context.Context, e room.Event, p room.GameFinished) error {
	results, err := json.Marshal(p.Results)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (room, reason, results, finished_at) VALUES (?, ?, ?, ?)`,
		e.Room, p.Reason, string(results), e.At.UTC().Format(time.RFC3339Nano))
	return err
}

// Moves returns the recorded moves of a room in the order played.
func (s *Store) Moves(ctx context.Context, roomCode string) ([]MoveRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT room, player_id, words, score, bingo, played_at FROM moves WHERE room = ? ORDER BY id`,
		roomCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MoveRecord
	for rows.Next() {
		var (
			m      MoveRecord
			words  string
			played string
		)
		if err := rows.Scan(&m.Room, &m.PlayerID, &words, &m.Score, &m.Bingo, &played); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(words), &m.Words); err != nil {
			return nil, err
		}
		if m.PlayedAt, err = time.Parse(time.RFC3339Nano, played); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Games returns every finished game, oldest first.
func (s *Store) Games(ctx context.Context) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT room, reason, results, finished_at FROM games ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameRecord
	for rows.Next() {
		var (
			g        GameRecord
			results  string
			finished string
		)
		if err := rows.Scan(&g.Room, &g.Reason, &results, &finished); err != nil {
			return nil, err
		}
		g.Results = json.RawMessage(results)
		if g.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
