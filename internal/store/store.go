// Package store persists the last rendered observation so a restarted
// process can tell whether the panel already shows the current data. E-Paper
// refreshes are slow and flashy; skipping redundant ones matters.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// State is the subset of an observation that decides whether the panel
// needs a refresh.
type State struct {
	Temperature    int       `json:"temperature"`
	TemperatureMax int       `json:"temperatureMax"`
	Summary        string    `json:"summary"`
	RenderedAt     time.Time `json:"renderedAt"`
}

// Equal ignores RenderedAt; only content changes warrant a refresh.
func (s State) Equal(other State) bool {
	return s.Temperature == other.Temperature &&
		s.TemperatureMax == other.TemperatureMax &&
		s.Summary == other.Summary
}

// Store is the last-rendered-state contract.
type Store interface {
	// Last returns the most recent state and whether one exists.
	Last(ctx context.Context) (State, bool, error)
	// Save records the state just pushed to the panel.
	Save(ctx context.Context, s State) error
	Close() error
}

// MemoryStore keeps the state in process memory. This is the default; the
// first cycle after a restart then always refreshes.
type MemoryStore struct {
	mu    sync.RWMutex
	state State
	set   bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Last(ctx context.Context) (State, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state, m.set, nil
}

func (m *MemoryStore) Save(ctx context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.set = true
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// stateKey is the single Redis key the station owns.
const stateKey = "weatherstation:last_rendered"

// stateTTL bounds how long a persisted state is trusted; beyond it the
// content is stale enough that a refresh is wanted anyway.
const stateTTL = 24 * time.Hour

// RedisConfig holds the connection settings for the Redis-backed store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore persists the state across process restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to Redis at %s: %w", cfg.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Last(ctx context.Context) (State, bool, error) {
	raw, err := r.client.Get(ctx, stateKey).Result()
	if err != nil {
		if err == redis.Nil {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("get %s: %w", stateKey, err)
	}

	var s State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return State{}, false, fmt.Errorf("decode %s: %w", stateKey, err)
	}
	return s, true, nil
}

func (r *RedisStore) Save(ctx context.Context, s State) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := r.client.Set(ctx, stateKey, body, stateTTL).Err(); err != nil {
		return fmt.Errorf("set %s: %w", stateKey, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
