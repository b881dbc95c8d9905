// Package bank persists named snapshots of the performance state.
package bank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/capogreco/string.assembly.fm-sub005/internal/state"
)

var ErrNotFound = errors.New("bank not found")

// Store keeps bank snapshots in Redis. With a nil client it falls back to
// an in-process map, which is what tests and redis-less deployments use.
type Store struct {
	redis *redis.Client

	mu  sync.Mutex
	mem map[int][]byte
}

func NewStore(client *redis.Client) *Store {
	s := &Store{redis: client}
	if client == nil {
		s.mem = make(map[int][]byte)
	}
	return s
}

func (s *Store) Save(ctx context.Context, id int, snap state.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal bank %d: %w", id, err)
	}

	if s.redis == nil {
		s.mu.Lock()
		s.mem[id] = data
		s.mu.Unlock()
		return nil
	}
	return s.redis.Set(ctx, bankKey(id), data, 0).Err()
}

func (s *Store) Load(ctx context.Context, id int) (state.Snapshot, error) {
	var snap state.Snapshot

	var data []byte
	if s.redis == nil {
		s.mu.Lock()
		stored, ok := s.mem[id]
		s.mu.Unlock()
		if !ok {
			return snap, ErrNotFound
		}
		data = stored
	} else {
		stored, err := s.redis.Get(ctx, bankKey(id)).Bytes()
		if err != nil {
			if err == redis.Nil {
				return snap, ErrNotFound
			}
			return snap, err
		}
		data = stored
	}

	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to unmarshal bank %d: %w", id, err)
	}
	return snap, nil
}

func bankKey(id int) string {
	return fmt.Sprintf("bank:%d", id)
}
