// Package docstore persists named JSON documents. Session and analytics state
// are stored as whole documents and rewritten on every mutation.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotExist is returned by Load when no document has the given name.
var ErrNotExist = errors.New("document does not exist")

// Store is a backend holding named documents.
//
// Names are slash-separated ("session_data/<id>", "analytics/usage_stats").
// Backends never interpret the document body.
type Store interface {
	// Load returns the document body, or ErrNotExist.
	Load(ctx context.Context, name string) ([]byte, error)

	// Save replaces the document body.
	Save(ctx context.Context, name string, body []byte) error

	// List returns the names of all documents under prefix, unordered.
	List(ctx context.Context, prefix string) ([]string, error)

	// Name returns the backend name ("file", "sqlite", "redis")
	Name() string

	Close() error
}

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Options configures Open.
type Options struct {
	Dir           string // file driver root
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open creates a Store for driver.
func Open(driver string, opts Options) (Store, error) {
	switch driver {
	case "", DriverFile:
		return NewFileStore(opts.Dir)
	case DriverSQLite:
		return NewSQLiteStore(opts.SQLitePath)
	case DriverRedis:
		return NewRedisStore(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// ValidName reports whether name is usable as a document name on every
// backend.
func ValidName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, "\\\x00") {
			return false
		}
	}
	return true
}
