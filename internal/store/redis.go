package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix     = "swiftpay:collection:"
	redisUpdateRetries = 5
)

// ErrConflict is returned when an optimistic Update keeps losing to
// concurrent writers.
var ErrConflict = errors.New("store: concurrent update conflict")

// RedisStore keeps each collection under one string key. Update uses
// WATCH/MULTI so writers from other processes are detected and retried.
type RedisStore struct {
	client *redis.Client
	mu     sync.Mutex
}

// NewRedis builds a Redis-backed store over an existing client.
func NewRedis(client *redis.Client) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &RedisStore{client: client}, nil
}

func redisKey(c Collection) string {
	return redisKeyPrefix + string(c)
}

func (s *RedisStore) List(ctx context.Context, c Collection) ([]byte, error) {
	if err := validCollection(c); err != nil {
		return nil, err
	}
	return redisGet(ctx, s.client, c)
}

func (s *RedisStore) Put(ctx context.Context, c Collection, payload []byte) error {
	if err := validCollection(c); err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(c), payload, 0).Err()
}

func (s *RedisStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(All))
	for _, c := range All {
		keys = append(keys, redisKey(c))
	}

	for attempt := 0; attempt < redisUpdateRetries; attempt++ {
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			tx := &redisTx{rtx: rtx, staged: make(map[Collection][]byte)}
			if err := fn(tx); err != nil {
				return err
			}
			if len(tx.staged) == 0 {
				return nil
			}
			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for c, payload := range tx.staged {
					pipe.Set(ctx, redisKey(c), payload, 0)
				}
				return nil
			})
			return err
		}, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

// Close is a no-op; the client is owned by the caller.
func (s *RedisStore) Close() error { return nil }

type redisTx struct {
	rtx    *redis.Tx
	staged map[Collection][]byte
}

func (t *redisTx) List(ctx context.Context, c Collection) ([]byte, error) {
	if err := validCollection(c); err != nil {
		return nil, err
	}
	if payload, ok := t.staged[c]; ok {
		return cloneBytes(payload), nil
	}
	return redisGet(ctx, t.rtx, c)
}

func (t *redisTx) Put(_ context.Context, c Collection, payload []byte) error {
	if err := validCollection(c); err != nil {
		return err
	}
	t.staged[c] = cloneBytes(payload)
	return nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func redisGet(ctx context.Context, cmd stringGetter, c Collection) ([]byte, error) {
	payload, err := cmd.Get(ctx, redisKey(c)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}
