package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLKV keeps documents in a two-column table. PostgreSQL and SQLite share the
// same statements; both accept ON CONFLICT upserts and $n placeholders.
type SQLKV struct {
	DB *sql.DB
}

const (
	createKVTable = `CREATE TABLE IF NOT EXISTS kv_store (
		kv_key TEXT PRIMARY KEY,
		kv_value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	selectKV = `SELECT kv_value FROM kv_store WHERE kv_key = $1`
	upsertKV = `INSERT INTO kv_store (kv_key, kv_value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (kv_key) DO UPDATE SET kv_value = excluded.kv_value, updated_at = excluded.updated_at`
)

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(ctx context.Context, postgresURI string) (*SQLKV, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	kv, err := NewSQLKV(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Println("✅ Connected to PostgreSQL")
	return kv, nil
}

// ConnectSQLite opens (or creates) an SQLite file. ":memory:" is accepted.
func ConnectSQLite(ctx context.Context, path string) (*SQLKV, error) {
	if path == "" {
		path = filepath.Join("data", "messenger.db")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		path += "?_pragma=journal_mode(wal)"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serialises writers
	db.SetMaxOpenConns(1)

	kv, err := NewSQLKV(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Println("✅ Opened SQLite store")
	return kv, nil
}

// NewSQLKV pings db and creates the kv_store table if needed.
func NewSQLKV(ctx context.Context, db *sql.DB) (*SQLKV, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, createKVTable); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLKV{DB: db}, nil
}

func (s *SQLKV) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	var value string
	err := s.DB.QueryRowContext(ctx, selectKV, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (s *SQLKV) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := s.DB.ExecContext(ctx, upsertKV, key, string(value), time.Now().UTC())
	return err
}

func (s *SQLKV) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}
