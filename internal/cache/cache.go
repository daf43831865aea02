// Package cache stores generated PDFs in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces cache keys.
const DefaultPrefix = "tmpl2pdf:pdf:"

// Store is a Redis-backed PDF cache. Safe for concurrent use.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	owned  bool
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration of cached documents. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to the Redis server at addr.
func New(addr string, opts ...Option) *Store {
	s := NewFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
	s.owned = true
	return s
}

// NewFromClient wraps an existing client. Close leaves it open.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Get returns the cached document for key. A miss is (nil, false, nil).
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set stores pdf under key.
func (s *Store) Set(ctx context.Context, key string, pdf []byte) error {
	if err := s.client.Set(ctx, s.key(key), pdf, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close releases the connection pool when the Store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
