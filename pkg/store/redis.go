package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// DefaultRedisPrefix namespaces every key the Redis store writes.
const DefaultRedisPrefix = "stackcanvas"

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr" json:"addr"`
	Password string `toml:"password" json:"-"`
	DB       int    `toml:"db" json:"db" validate:"gte=0"`
	Prefix   string `toml:"prefix" json:"prefix,omitempty"`
}

// RedisStore keeps documents as JSON strings under <prefix>:doc:<id> and
// tracks ids in the set <prefix>:docs.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore connects to Redis and verifies the connection with PING,
// retrying a few times while the server comes up.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	err := retry(ctx, DefaultConnectAttempts, DefaultConnectDelay, func() error {
		return transient(client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "connect to redis at %s", cfg.Addr)
	}
	return newRedisStore(client, cfg.Prefix), nil
}

func newRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) docKey(id string) string { return s.prefix + ":doc:" + id }
func (s *RedisStore) setKey() string          { return s.prefix + ":docs" }

func (s *RedisStore) Get(ctx context.Context, id string) (doc stack.Document, err error) {
	defer func(start time.Time) { observe(ctx, "redis", "get", start, err) }(time.Now())

	data, err := s.client.Get(ctx, s.docKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return stack.Document{}, notFound(id)
	}
	if err != nil {
		return stack.Document{}, errs.Wrap(errs.ErrCodeStorage, err, "redis get %q", id)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return stack.Document{}, errs.Wrap(errs.ErrCodeStorage, err, "parse document %q", id)
	}
	return doc, nil
}

func (s *RedisStore) Put(ctx context.Context, doc stack.Document) (err error) {
	defer func(start time.Time) { observe(ctx, "redis", "put", start, err) }(time.Now())

	doc, err = stamp(doc, s.now())
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "marshal document %q", doc.ID)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(doc.ID), data, 0)
		pipe.SAdd(ctx, s.setKey(), doc.ID)
		return nil
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "redis put %q", doc.ID)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe(ctx, "redis", "delete", start, err) }(time.Now())

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.docKey(id))
		pipe.SRem(ctx, s.setKey(), id)
		return nil
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "redis delete %q", id)
	}
	return nil
}

// List fetches every tracked document with one MGET. Ids whose value has
// disappeared are dropped from the set.
func (s *RedisStore) List(ctx context.Context) (out []Summary, err error) {
	defer func(start time.Time) { observe(ctx, "redis", "list", start, err) }(time.Now())

	ids, err := s.client.SMembers(ctx, s.setKey()).Result()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "redis list")
	}
	out = []Summary{}
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "redis list")
	}

	var stale []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var doc stack.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			continue
		}
		out = append(out, Summarize(doc))
	}
	if len(stale) > 0 {
		s.client.SRem(ctx, s.setKey(), stale...)
	}
	sortSummaries(out)
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
