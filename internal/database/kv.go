package database

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by KV.Get when the key has never been written.
var ErrNotFound = errors.New("database: key not found")

// KV is the durable key-value store behind the application state. Values are
// opaque JSON documents; there are no transactions and the last writer wins.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options carries connection settings for every driver; each driver reads only its own fields.
type Options struct {
	Driver      string
	FilePath    string
	RedisURI    string
	RedisPrefix string
	MongoURI    string
	PostgresURI string
	SQLitePath  string
}

// Open connects the configured backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryKV(), nil
	case DriverFile:
		return NewFileKV(opts.FilePath)
	case DriverRedis:
		return ConnectRedis(ctx, opts.RedisURI, opts.RedisPrefix)
	case DriverMongo:
		return ConnectMongo(ctx, opts.MongoURI)
	case DriverPostgres:
		return ConnectPostgres(ctx, opts.PostgresURI)
	case DriverSQLite:
		return ConnectSQLite(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("database: unknown storage driver %q", opts.Driver)
	}
}

// opTimeout bounds a single backend round trip when the caller's context has no deadline.
const opTimeout = 5 * time.Second

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, opTimeout)
}
