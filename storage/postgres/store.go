// Package postgres persists event buckets in a single key-to-jsonb
// table. Every bucket write is one UPSERT, so readers never observe a
// partially replaced bucket.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"weekcal/event"
	"weekcal/storage"
)

// Config carries the connection parameters.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string // "disable" for local, "require"/etc for prod
}

// Store implements storage.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

// Open connects, configures the pool, and fails fast when the database
// is unreachable.
func Open(cfg Config) (*Store, error) {
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, &storage.Error{Type: storage.ErrUnavailable, Message: "open postgres", Err: err}
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &storage.Error{Type: storage.ErrUnavailable, Message: "ping postgres", Err: err}
	}

	return &Store{db: db}, nil
}

// Migrate creates the bucket table when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS event_buckets (
	bucket     text PRIMARY KEY,
	payload    jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return &storage.Error{Type: storage.ErrUnavailable, Message: "create event_buckets", Err: err}
	}
	return nil
}

func (s *Store) GetEvents(ctx context.Context, bucket storage.Bucket) ([]event.Event, error) {
	if !bucket.Known() {
		return nil, &storage.Error{Type: storage.ErrInvalidInput, Message: "unknown bucket " + string(bucket)}
	}

	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM event_buckets WHERE bucket = $1`, string(bucket),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []event.Event{}, nil
	}
	if err != nil {
		return nil, &storage.Error{Type: storage.ErrUnavailable, Message: "read bucket " + string(bucket), Err: err}
	}

	var events []event.Event
	if err := json.Unmarshal(payload, &events); err != nil {
		return nil, &storage.Error{Type: storage.ErrInvalidInput, Message: "decode bucket " + string(bucket), Err: err}
	}
	return events, nil
}

func (s *Store) SetEvents(ctx context.Context, bucket storage.Bucket, events []event.Event) error {
	if !bucket.Known() {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "unknown bucket " + string(bucket)}
	}
	if events == nil {
		events = []event.Event{}
	}

	payload, err := json.Marshal(events)
	if err != nil {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "encode bucket " + string(bucket), Err: err}
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO event_buckets (bucket, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (bucket) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		string(bucket), payload)
	if err != nil {
		return &storage.Error{Type: storage.ErrUnavailable, Message: "write bucket " + string(bucket), Err: err}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
