package ask

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/lectern/lectern/internal/config"
	"github.com/lectern/lectern/internal/domain"
)

const (
	snapshotLifetime  = 7 * 24 * time.Hour
	snapshotKeyPrefix = "lectern:history:"
)

// Store mirrors per-subject history snapshots so a fresh session can
// show the list before the server responds.
type Store interface {
	Save(ctx context.Context, subjectID string, entries []domain.AskEntry) error
	Load(ctx context.Context, subjectID string) ([]domain.AskEntry, error)
	Clear(ctx context.Context, subjectID string) error
}

type RedisStore struct {
	client *redis.Client
}

type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]domain.AskEntry
}

// NewStore picks Redis when configured and reachable, otherwise falls
// back to in-memory storage.
func NewStore() Store {
	url := config.GetRedisURL()
	if url == "" {
		return newMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     url,
		Password: config.GetRedisPassword(),
		DB:       0,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Str("addr", url).Msg("Redis unreachable - falling back to in-memory history mirror")
		return newMemoryStore()
	}

	log.Info().Msg("Using Redis for history mirror storage")
	return &RedisStore{client: client}
}

func newMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]domain.AskEntry)}
}

// Redis store implementation

func (rs *RedisStore) Save(ctx context.Context, subjectID string, entries []domain.AskEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return rs.client.Set(ctx, snapshotKeyPrefix+subjectID, string(data), snapshotLifetime).Err()
}

func (rs *RedisStore) Load(ctx context.Context, subjectID string) ([]domain.AskEntry, error) {
	data, err := rs.client.Get(ctx, snapshotKeyPrefix+subjectID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []domain.AskEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (rs *RedisStore) Clear(ctx context.Context, subjectID string) error {
	return rs.client.Del(ctx, snapshotKeyPrefix+subjectID).Err()
}

// Memory store implementation

func (ms *MemoryStore) Save(ctx context.Context, subjectID string, entries []domain.AskEntry) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	snapshot := make([]domain.AskEntry, len(entries))
	copy(snapshot, entries)
	ms.snapshots[subjectID] = snapshot
	return nil
}

func (ms *MemoryStore) Load(ctx context.Context, subjectID string) ([]domain.AskEntry, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	snapshot, ok := ms.snapshots[subjectID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.AskEntry, len(snapshot))
	copy(out, snapshot)
	return out, nil
}

func (ms *MemoryStore) Clear(ctx context.Context, subjectID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.snapshots, subjectID)
	return nil
}
