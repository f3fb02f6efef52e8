// Package store is the persistent key/value namespace that survives process
// restarts. Values are opaque JSON documents; callers own their encoding.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the persistent namespace.
const (
	KeyConfig    = "config"
	KeyHistory   = "history"
	KeyPresets   = "presets"
	KeyPosition  = "position"
	KeyCollapsed = "collapsed"
)

// DefaultNamespace is used when no namespace is configured.
const DefaultNamespace = "emotion-panel"

var ErrUnknownBackend = errors.New("unknown store backend")

// Store reads and writes whole values by key. There are no transactions
// across keys. Setting a nil value clears the key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// GetJSON decodes the value stored under key into dst. It reports false
// when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key. A nil v clears the key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	if v == nil {
		return s.Set(ctx, key, nil)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
