// Package redis provides run persistence and the run lock on Redis,
// for deployments where several flipper replicas share one history.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/flipper/pkg/domain"
)

// Store implements ports.RunStore using Redis.
//
// Each run is a JSON value under its own key, and a ZSET indexes run
// IDs by start time so listing is a single reverse range. Retention is
// measured from the run's start time.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithRetention expires run records after the given duration.
// Zero keeps them forever.
func WithRetention(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for run records.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "flipper:run:",
		ttl:    0,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the run record.
func (s *Store) Save(ctx context.Context, run *domain.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	pipe := s.client.Pipeline()

	// A status update re-saves the same run; the index score stays at
	// the start time, so the run keeps its place in the history.
	pipe.Set(ctx, s.key(run.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  startScore(run.StartedAt),
		Member: run.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run to redis: %w", err)
	}
	return nil
}

// Load retrieves a run by ID.
func (s *Store) Load(ctx context.Context, id string) (*domain.Run, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run from redis: %w", err)
	}

	var run domain.Run
	if err := json.Unmarshal([]byte(val), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

// List returns runs most recently started first.
func (s *Store) List(ctx context.Context, limit int) ([]*domain.Run, error) {
	// Lazy cleanup: once retention is on, index entries older than the
	// window point at keys Redis has already expired.
	if s.ttl > 0 {
		horizon := float64(time.Now().Add(-s.ttl).Unix())
		err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", horizon)).Err()
		if err != nil {
			return nil, fmt.Errorf("failed to prune expired runs: %w", err)
		}
	}

	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	runs := make([]*domain.Run, 0, len(vals))
	for i, val := range vals {
		raw, ok := val.(string)
		if !ok {
			// Expired between index read and fetch. Drop the dangling
			// index entry so the next listing is clean.
			s.client.ZRem(ctx, s.indexKey(), ids[i])
			continue
		}
		var run domain.Run
		if err := json.Unmarshal([]byte(raw), &run); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run %s: %w", ids[i], err)
		}
		runs = append(runs, &run)
	}
	return runs, nil
}

// Delete removes a run record.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// startScore orders the history index. Seconds with a fractional part
// keep runs started within the same second in order.
func startScore(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
