package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"goodfoods/internal/availability"
	"goodfoods/internal/shared/constants"
)

const (
	bucketKeyPrefix      = constants.KEY_LEDGER_BUCKET
	reservationKeyPrefix = constants.KEY_LEDGER_RESERVATION
	reservationIndexKey  = constants.KEY_LEDGER_INDEX
)

// Lua script for atomic check-and-reserve on a bucket counter. The count
// comparison and the increment run as one Redis command, so concurrent
// creates for the last unit of capacity get exactly one winner.
const luaReserveBucket = `
-- KEYS[1] = bucket counter key
-- ARGV[1] = capacity
local confirmed = tonumber(redis.call("GET", KEYS[1]) or "0")
local capacity = tonumber(ARGV[1])

if confirmed >= capacity then
    return 0
end

redis.call("INCR", KEYS[1])
return 1
`

// Lua script for releasing one unit, floored at zero.
const luaReleaseBucket = `
-- KEYS[1] = bucket counter key
local confirmed = tonumber(redis.call("GET", KEYS[1]) or "0")
if confirmed <= 0 then
    return 0
end

redis.call("DECR", KEYS[1])
return 1
`

// Lua script moving one unit between buckets: reserve the target, then
// release the source. If the target is full nothing changes, so a failed
// modify leaves the original hold intact.
const luaMoveBucket = `
-- KEYS[1] = source bucket counter key
-- KEYS[2] = target bucket counter key
-- ARGV[1] = target capacity
local confirmed = tonumber(redis.call("GET", KEYS[2]) or "0")
local capacity = tonumber(ARGV[1])

if confirmed >= capacity then
    return 0
end

redis.call("INCR", KEYS[2])

local source = tonumber(redis.call("GET", KEYS[1]) or "0")
if source > 0 then
    redis.call("DECR", KEYS[1])
end

return 1
`

// RedisStore keeps bucket counters and reservation records in Redis, with
// Lua scripts guaranteeing per-key atomicity across processes.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed ledger store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// PreloadScripts loads the Lua scripts into Redis so later calls hit the
// script cache. Callers may skip this; eval falls back transparently.
func (s *RedisStore) PreloadScripts(ctx context.Context) error {
	for _, script := range []string{luaReserveBucket, luaReleaseBucket, luaMoveBucket} {
		if _, err := s.client.ScriptLoad(ctx, script).Result(); err != nil {
			return fmt.Errorf("failed to load ledger script: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) eval(ctx context.Context, script string, keys []string, args ...interface{}) (int64, error) {
	result, err := s.client.EvalSha(ctx, script, keys, args...).Result()
	if err != nil {
		// Script not cached yet; load-and-run in one step.
		result, err = s.client.Eval(ctx, script, keys, args...).Result()
		if err != nil {
			return 0, err
		}
	}
	n, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected result type %T from ledger script", result)
	}
	return n, nil
}

func bucketRedisKey(key BucketKey) string {
	return bucketKeyPrefix + key.String()
}

func (s *RedisStore) Reserve(ctx context.Context, key BucketKey, capacity int) (bool, error) {
	n, err := s.eval(ctx, luaReserveBucket, []string{bucketRedisKey(key)}, capacity)
	if err != nil {
		return false, fmt.Errorf("failed to reserve bucket %s: %w", key, err)
	}
	return n == 1, nil
}

func (s *RedisStore) Release(ctx context.Context, key BucketKey) error {
	if _, err := s.eval(ctx, luaReleaseBucket, []string{bucketRedisKey(key)}); err != nil {
		return fmt.Errorf("failed to release bucket %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Move(ctx context.Context, from, to BucketKey, toCapacity int) (bool, error) {
	if from == to {
		return true, nil
	}
	n, err := s.eval(ctx, luaMoveBucket, []string{bucketRedisKey(from), bucketRedisKey(to)}, toCapacity)
	if err != nil {
		return false, fmt.Errorf("failed to move hold %s -> %s: %w", from, to, err)
	}
	return n == 1, nil
}

func (s *RedisStore) ConfirmedCount(ctx context.Context, venueID string, slot time.Time, bucket int) (int, error) {
	key := BucketKey{VenueID: venueID, Slot: availability.NormalizeSlot(slot), Bucket: bucket}
	val, err := s.client.Get(ctx, bucketRedisKey(key)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read bucket %s: %w", key, err)
	}
	return val, nil
}

func (s *RedisStore) Insert(ctx context.Context, r *Reservation) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reservation: %w", err)
	}

	ok, err := s.client.SetNX(ctx, reservationKeyPrefix+r.ConfirmationCode, data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to store reservation: %w", err)
	}
	if !ok {
		return ErrCodeTaken
	}

	if err := s.client.SAdd(ctx, reservationIndexKey, r.ConfirmationCode).Err(); err != nil {
		return fmt.Errorf("failed to index reservation: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, code string) (*Reservation, error) {
	data, err := s.client.Get(ctx, reservationKeyPrefix+code).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reservation %s: %w", code, err)
	}

	var r Reservation
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode reservation %s: %w", code, err)
	}
	return &r, nil
}

func (s *RedisStore) Update(ctx context.Context, r *Reservation) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reservation: %w", err)
	}

	ok, err := s.client.SetXX(ctx, reservationKeyPrefix+r.ConfirmationCode, data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update reservation %s: %w", r.ConfirmationCode, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, filter ListFilter) ([]Reservation, error) {
	codes, err := s.client.SMembers(ctx, reservationIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	var out []Reservation
	for _, code := range codes {
		r, err := s.Get(ctx, code)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		if matchesFilter(r, filter) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ConfirmationCode < out[j].ConfirmationCode
	})
	return out, nil
}
