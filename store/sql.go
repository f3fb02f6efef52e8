package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// SQLStore keeps the namespace in a single kv table. It backs both the
// SQLite and the Postgres variants; only the placeholder syntax differs.
type SQLStore struct {
	db        *sql.DB
	namespace string
	getQuery  string
	setQuery  string
	delQuery  string
}

// NewSQLiteStore opens (creating if needed) a SQLite database at path.
func NewSQLiteStore(path, namespace string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer at a time; SQLite serialises anyway.
	db.SetMaxOpenConns(1)
	return newSQLStore(db, namespace, "?", "?", "?")
}

// NewPostgresStore connects to the Postgres database at dsn.
func NewPostgresStore(dsn, namespace string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return newSQLStore(db, namespace, "$1", "$2", "$3")
}

func newSQLStore(db *sql.DB, namespace string, p1, p2, p3 string) (*SQLStore, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLStore{
		db:        db,
		namespace: namespace,
		getQuery:  fmt.Sprintf("SELECT value FROM kv WHERE namespace = %s AND key = %s", p1, p2),
		setQuery: fmt.Sprintf(`INSERT INTO kv (namespace, key, value, updated_at)
			VALUES (%s, %s, %s, CURRENT_TIMESTAMP)
			ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			p1, p2, p3),
		delQuery: fmt.Sprintf("DELETE FROM kv WHERE namespace = %s AND key = %s", p1, p2),
	}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.getQuery, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if value == nil {
		if _, err := s.db.ExecContext(ctx, s.delQuery, s.namespace, key); err != nil {
			return fmt.Errorf("clear %q: %w", key, err)
		}
		return nil
	}
	if _, err := s.db.ExecContext(ctx, s.setQuery, s.namespace, key, string(value)); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
