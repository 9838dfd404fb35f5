package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Nityasav/wyldstoneja/pkg/game"
)

// Store persists the high score and finished games in SQLite
type Store struct {
	db *sql.DB
}

// Open creates the database file and its parent directory if needed
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; sessions share the handle
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS game_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT,
			character TEXT,
			mode TEXT,
			score INTEGER,
			length INTEGER,
			won INTEGER,
			start_time DATETIME,
			end_time DATETIME
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// Get returns the value stored under key and whether it exists
func (s *Store) Get(key string) (int, bool, error) {
	var v int
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key, replacing any previous value
func (s *Store) Set(key string, value int) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// SetIfHigher stores value under key unless the stored value is already
// at least as high. The comparison runs inside the upsert.
func (s *Store) SetIfHigher(key string, value int) (bool, error) {
	res, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
		WHERE excluded.value > kv.value`,
		key, value,
	)
	if err != nil {
		return false, fmt.Errorf("raise %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("raise %q: %w", key, err)
	}
	return n > 0, nil
}

// RecordGame appends a finished game to the history
func (s *Store) RecordGame(res game.GameResult) error {
	_, err := s.db.Exec(
		`INSERT INTO game_sessions (session_id, character, mode, score, length, won, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.SessionID, string(res.Character), string(res.Mode), res.Score, res.Length, res.Won,
		res.StartedAt.UTC(), res.EndedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record game: %w", err)
	}
	return nil
}

// RecentGames returns up to limit games, newest first
func (s *Store) RecentGames(limit int) ([]game.GameResult, error) {
	rows, err := s.db.Query(
		`SELECT session_id, character, mode, score, length, won, start_time, end_time
		FROM game_sessions ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	games := []game.GameResult{}
	for rows.Next() {
		var (
			res        game.GameResult
			character  string
			mode       string
			start, end time.Time
		)
		if err := rows.Scan(&res.SessionID, &character, &mode, &res.Score, &res.Length, &res.Won, &start, &end); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		res.Character = game.Character(character)
		res.Mode = game.ModeID(mode)
		res.StartedAt = start
		res.EndedAt = end
		games = append(games, res)
	}
	return games, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
