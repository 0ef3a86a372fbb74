package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cnmaturity/internal/model"
	"cnmaturity/internal/session"
)

var ErrSessionExists = errors.New("session already exists")

// SessionStore keeps assessment session records in Redis as JSON.
// Every write refreshes the TTL, so idle sessions expire.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore creates a Redis-backed session store
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		ttl:    ttl,
	}
}

func (c *SessionStore) key(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (c *SessionStore) Create(ctx context.Context, rec *model.SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ok, err := c.client.SetNX(ctx, c.key(rec.ID), data, c.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionExists, rec.ID)
	}
	return nil
}

func (c *SessionStore) Get(ctx context.Context, id string) (*model.SessionRecord, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec model.SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if rec.Answers == nil {
		rec.Answers = make(map[string]model.Answer)
	}
	return &rec, nil
}

// Save writes rec only if the stored copy is still at rec.Version-1.
// The key is WATCHed, so a write from another replica between the read and
// the SET aborts the transaction and surfaces as session.ErrVersionConflict.
func (c *SessionStore) Save(ctx context.Context, rec *model.SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := c.key(rec.ID)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return fmt.Errorf("%w: %s", session.ErrSessionNotFound, rec.ID)
		}
		if err != nil {
			return err
		}
		var cur struct {
			Version int64 `json:"version"`
		}
		if err := json.Unmarshal(raw, &cur); err != nil {
			return fmt.Errorf("decode session %s: %w", rec.ID, err)
		}
		if cur.Version != rec.Version-1 {
			return fmt.Errorf("%w: %s stored at version %d, saving %d", session.ErrVersionConflict, rec.ID, cur.Version, rec.Version)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %s", session.ErrVersionConflict, rec.ID)
	}
	return err
}

func (c *SessionStore) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
