package storage

import (
	"fmt"
	"regexp"
	"strings"
)

// Package storage persists serialized analysis responses by key.

// Store is a flat key/value store for cached responses.
type Store interface {
	Close() error
	// Get returns the stored bytes and whether the key was present.
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	// Clear removes every entry and reports how many were removed.
	Clear() (int, error)
}

// Options carries backend-specific locations.
type Options struct {
	Dir      string
	BoltPath string
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// NewStore creates the configured storage backend.
func NewStore(typ string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "file":
		if strings.TrimSpace(opts.Dir) == "" {
			return nil, fmt.Errorf("file storage requires a directory")
		}
		return newFileStore(opts.Dir), nil
	case "bbolt":
		if strings.TrimSpace(opts.BoltPath) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(opts.BoltPath)
	case "none", "disabled":
		return noopStore{}, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

type noopStore struct{}

func (noopStore) Close() error                     { return nil }
func (noopStore) Get(string) ([]byte, bool, error) { return nil, false, nil }
func (noopStore) Put(string, []byte) error         { return nil }
func (noopStore) Clear() (int, error)              { return 0, nil }
