package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"offerbridge/internal/offer"
)

const defaultRedisPrefix = "offerbridge:"

// RedisStore keeps the offer index in Redis. Each entry is a JSON string
// under index:<project>:<unit>; a set per project and a set per phone hash
// back List and FindByPhoneHash.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore connects to redisURL and checks it is reachable.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: defaultRedisPrefix, now: time.Now}
}

func (s *RedisStore) entryKey(key offer.Key) string {
	return s.prefix + "index:" + key.ProjectID + ":" + key.ContractUnitNumber
}

func (s *RedisStore) projectKey(projectID string) string {
	return s.prefix + "project:" + projectID
}

func (s *RedisStore) phoneKey(hash string) string {
	return s.prefix + "phone:" + hash
}

func (s *RedisStore) Get(ctx context.Context, key offer.Key) (IndexEntry, error) {
	return s.get(ctx, s.client, key)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) get(ctx context.Context, c getter, key offer.Key) (IndexEntry, error) {
	raw, err := c.Get(ctx, s.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return IndexEntry{}, ErrNotFound
	}
	if err != nil {
		return IndexEntry{}, fmt.Errorf("get offer index %s: %w", key, err)
	}
	return decodeEntry(raw)
}

// Put writes the entry and its set memberships in one MULTI. The entry key
// is watched so a concurrent writer cannot slip between the immutability
// check and the write.
func (s *RedisStore) Put(ctx context.Context, e IndexEntry) error {
	e.UpdatedAt = s.now().UTC()
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal offer index %s: %w", e.Key, err)
	}
	entryKey := s.entryKey(e.Key)
	member := e.Key.ProjectID + ":" + e.Key.ContractUnitNumber

	txf := func(tx *redis.Tx) error {
		existing, err := s.get(ctx, tx, e.Key)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return err
		default:
			if err := checkImmutable(existing, e); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, entryKey, raw, 0)
			pipe.SAdd(ctx, s.projectKey(e.Key.ProjectID), e.Key.ContractUnitNumber)
			for _, h := range PhoneHashes(existing.Payload) {
				pipe.SRem(ctx, s.phoneKey(h), member)
			}
			for _, h := range PhoneHashes(e.Payload) {
				pipe.SAdd(ctx, s.phoneKey(h), member)
			}
			return nil
		})
		return err
	}

	if err := s.client.Watch(ctx, txf, entryKey); err != nil {
		if errors.Is(err, ErrImmutable) {
			return err
		}
		return fmt.Errorf("put offer index %s: %w", e.Key, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, projectID string) ([]IndexEntry, error) {
	units, err := s.client.SMembers(ctx, s.projectKey(projectID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list offer index: %w", err)
	}
	keys := make([]string, len(units))
	for i, u := range units {
		keys[i] = s.entryKey(offer.Key{ProjectID: projectID, ContractUnitNumber: u})
	}
	return s.mget(ctx, keys)
}

func (s *RedisStore) FindByPhoneHash(ctx context.Context, hash string) ([]IndexEntry, error) {
	members, err := s.client.SMembers(ctx, s.phoneKey(hash)).Result()
	if err != nil {
		return nil, fmt.Errorf("find offers by phone hash: %w", err)
	}
	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = s.prefix + "index:" + m
	}
	return s.mget(ctx, keys)
}

func (s *RedisStore) mget(ctx context.Context, keys []string) ([]IndexEntry, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load offer index: %w", err)
	}
	entries := make([]IndexEntry, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		e, err := decodeEntry([]byte(str))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func decodeEntry(raw []byte) (IndexEntry, error) {
	var e IndexEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return IndexEntry{}, fmt.Errorf("decode offer index entry: %w", err)
	}
	e.Payload = offer.Normalize(e.Payload)
	return e, nil
}
