package metrics

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Channel identifies the entry point an answer was requested through.
type Channel string

const (
	ChannelWebhook  Channel = "webhook"
	ChannelAPI      Channel = "api"
	ChannelSlack    Channel = "slack"
	ChannelMCP      Channel = "mcp"
	ChannelCLI      Channel = "cli"
	ChannelTelegram Channel = "telegram"
)

// Channels lists every known channel in display order.
var Channels = []Channel{ChannelWebhook, ChannelAPI, ChannelSlack, ChannelMCP, ChannelCLI, ChannelTelegram}

const dateLayout = "2006-01-02"

// Store keeps daily invocation counts per channel in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultPath returns ~/.cyberrag/stats.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".cyberrag", "stats.db"), nil
}

// OpenStore opens (and creates if needed) the database at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer keeps SQLite from returning SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	const schema = `
		CREATE TABLE IF NOT EXISTS invocations (
			channel TEXT NOT NULL,
			day     TEXT NOT NULL,
			count   INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (channel, day)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Increment adds one to today's count for channel.
func (s *Store) Increment(channel Channel) error {
	_, err := s.db.Exec(`
		INSERT INTO invocations (channel, day, count) VALUES (?, ?, 1)
		ON CONFLICT(channel, day) DO UPDATE SET count = count + 1;
	`, string(channel), s.now().Format(dateLayout))
	if err != nil {
		return fmt.Errorf("failed to increment count: %w", err)
	}
	return nil
}

// Totals returns cumulative counts for every channel, zero-filled.
func (s *Store) Totals() (map[Channel]int64, error) {
	totals := make(map[Channel]int64, len(Channels))
	for _, c := range Channels {
		totals[c] = 0
	}

	rows, err := s.db.Query(`SELECT channel, COALESCE(SUM(count), 0) FROM invocations GROUP BY channel`)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var channel string
		var total int64
		if err := rows.Scan(&channel, &total); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		totals[Channel(channel)] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return totals, nil
}

// CountOn returns the count for channel on day (YYYY-MM-DD).
func (s *Store) CountOn(channel Channel, day string) (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT count FROM invocations WHERE channel = ? AND day = ?`, string(channel), day).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get count: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
