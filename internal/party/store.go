package party

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "party:"

	// Parties silently expire after an hour of inactivity; every write
	// refreshes the clock.
	partyTTL = time.Hour

	// Watch retries before giving up on a contended update.
	maxUpdateRetries = 5
)

// Store persists one JSON blob per party code in redis. Mutations run
// inside WATCH/MULTI transactions so two near-simultaneous writers
// (e.g. two players answering the same track) cannot clobber each
// other; the loser simply re-applies its mutation on the fresh record.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Codes are case-insensitive; the canonical form is uppercase.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func partyKey(code string) string {
	return keyPrefix + NormalizeCode(code)
}

// Create writes the record unconditionally; overwriting an existing
// code is allowed, matching the original create semantics.
func (s *Store) Create(ctx context.Context, p *Party) error {
	p.Version = 1
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, partyKey(p.Code), data, partyTTL).Err()
}

func (s *Store) Get(ctx context.Context, code string) (*Party, error) {
	raw, err := s.rdb.Get(ctx, partyKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, errNotFound("party not found")
	}
	if err != nil {
		return nil, err
	}
	var p Party
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update loads the record, applies mutate, and writes it back under an
// optimistic transaction. mutate may run more than once if the record
// changed underneath us, so it must be side-effect free beyond the
// record itself.
func (s *Store) Update(ctx context.Context, code string, mutate func(*Party) error) (*Party, error) {
	key := partyKey(code)
	var updated *Party

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return errNotFound("party not found")
		}
		if err != nil {
			return err
		}
		var p Party
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return err
		}
		if err := mutate(&p); err != nil {
			return err
		}
		p.Version++
		data, err := json.Marshal(&p)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, partyTTL)
			return nil
		})
		if err == nil {
			updated = &p
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.rdb.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, errUpstream("party update conflicted too many times")
}

func (s *Store) Delete(ctx context.Context, code string) error {
	n, err := s.rdb.Del(ctx, partyKey(code)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound("party not found")
	}
	return nil
}
