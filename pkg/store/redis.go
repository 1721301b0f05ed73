package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	siteerrors "github.com/matzehuels/siteview/pkg/errors"
)

// DefaultRedisPrefix namespaces every key written by RedisStore.
const DefaultRedisPrefix = "siteview:"

// RedisStore keeps each set as a JSON string under <prefix>set:<id> and
// indexes IDs in the sorted set <prefix>sets, scored by arrival time.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. An empty prefix uses DefaultRedisPrefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedis connects to addr/db and verifies the connection.
func OpenRedis(ctx context.Context, addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, storeErr(err, "connect redis %s", addr)
	}
	return NewRedisStore(client, ""), nil
}

func (s *RedisStore) setKey(id string) string { return s.prefix + "set:" + id }
func (s *RedisStore) indexKey() string        { return s.prefix + "sets" }

func (s *RedisStore) Save(ctx context.Context, set *CandidateSet) error {
	if err := validateSet(set); err != nil {
		return err
	}
	data, err := json.Marshal(set)
	if err != nil {
		return storeErr(err, "marshal candidate set")
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.setKey(set.ID), data, 0)
	pipe.ZAdd(ctx, s.indexKey(), redis.Z{
		Score:  float64(set.CreatedAt.UnixMilli()),
		Member: set.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr(err, "save candidate set")
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*CandidateSet, error) {
	if err := siteerrors.ValidateSetID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.setKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, storeErr(err, "get candidate set")
	}
	var set CandidateSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, storeErr(err, "parse candidate set %s", id)
	}
	return &set, nil
}

func (s *RedisStore) List(ctx context.Context, limit int) ([]Summary, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, int64(listLimit(limit)-1)).Result()
	if err != nil {
		return nil, storeErr(err, "read index")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.setKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storeErr(err, "load candidate sets")
	}

	out := make([]Summary, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue // evicted or deleted behind the index
		}
		var set CandidateSet
		if err := json.Unmarshal([]byte(str), &set); err != nil {
			continue
		}
		out = append(out, set.Summary())
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
