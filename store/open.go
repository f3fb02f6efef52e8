package store

import (
	"context"
	"fmt"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string // file, sqlite, postgres, redis
	Path      string // file and sqlite
	DSN       string // postgres
	RedisAddr string
	Namespace string
}

// Open returns the backend named by opts.Backend. An empty backend means
// "file".
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.Path)
	case "sqlite":
		return NewSQLiteStore(opts.Path, opts.Namespace)
	case "postgres":
		return NewPostgresStore(opts.DSN, opts.Namespace)
	case "redis":
		return DialRedis(ctx, opts.RedisAddr, opts.Namespace)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
