package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "resume-builder:session:"
	redisMaxAttempts = 5
)

// RedisStore keeps sessions as JSON values with a sliding TTL. Updates run
// in a WATCH transaction and retry when another writer wins.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return redisKeyPrefix + id
}

// Create stores a new session.
func (r *RedisStore) Create(ctx context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionKey(s.ID), data, r.ttl).Err()
}

// Get returns the session.
func (r *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	return r.read(ctx, r.rdb, sessionKey(id))
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStore) read(ctx context.Context, g getter, key string) (Session, error) {
	raw, err := g.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	s.Document = s.Document.WithDefaults()
	return s, nil
}

// Update applies fn inside an optimistic transaction.
func (r *RedisStore) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	return r.transact(ctx, id, func(s *Session) (bool, error) {
		if err := fn(s); err != nil {
			return false, err
		}
		touch(s)
		return true, nil
	})
}

// RecordSave stores result on the session if it is still at result.Revision.
func (r *RedisStore) RecordSave(ctx context.Context, id string, result SaveResult) error {
	_, err := r.transact(ctx, id, func(s *Session) (bool, error) {
		return recordSave(s, result), nil
	})
	return err
}

// transact reads the session under WATCH and writes it back when fn
// reports a change, keeping the remaining TTL fresh.
func (r *RedisStore) transact(ctx context.Context, id string, fn func(*Session) (bool, error)) (Session, error) {
	key := sessionKey(id)
	var result Session
	txf := func(tx *redis.Tx) error {
		s, err := r.read(ctx, tx, key)
		if err != nil {
			return err
		}
		changed, err := fn(&s)
		if err != nil {
			return err
		}
		if !changed {
			result = s
			return nil
		}
		data, err := json.Marshal(s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err == nil {
			result = s
		}
		return err
	}

	for attempt := 0; attempt < redisMaxAttempts; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return Session{}, err
		}
		return result, nil
	}
	return Session{}, ErrConflict
}

// Delete discards the session.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
