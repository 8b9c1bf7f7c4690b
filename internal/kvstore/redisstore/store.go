// Package redisstore implements kvstore.Client on redis. Each (table,
// partition) pair is one hash whose fields are sort keys and whose values are
// the JSON item bodies.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mrlokans/linebook/internal/kvstore"
)

const maxIncrementAttempts = 5

// Options configures the redis connection.
type Options struct {
	Addr   string
	Prefix string // namespace for every hash key, e.g. "linebook"
}

// Store is a kvstore.Client backed by redis hashes.
type Store struct {
	rdb    *goredis.Client
	prefix string
}

var _ kvstore.Client = (*Store)(nil)

// New connects to redis and verifies the connection with a ping.
func New(opts Options) (*Store, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewWithClient(rdb, opts.Prefix), nil
}

// NewWithClient wraps an existing redis client.
func NewWithClient(rdb *goredis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "linebook"
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) hashKey(table, partition string) string {
	return s.prefix + ":" + table + ":" + partition
}

func (s *Store) Get(ctx context.Context, table string, key kvstore.Key) (kvstore.Item, error) {
	raw, err := s.rdb.HGet(ctx, s.hashKey(table, key.Partition), key.Sort).Bytes()
	if errors.Is(err, goredis.Nil) {
		return kvstore.Item{}, kvstore.ErrNotFound
	}
	if err != nil {
		return kvstore.Item{}, fmt.Errorf("get %s item: %w", table, err)
	}
	return kvstore.Item{Key: key, Attributes: json.RawMessage(raw)}, nil
}

func (s *Store) Put(ctx context.Context, table string, item kvstore.Item) error {
	if err := s.rdb.HSet(ctx, s.hashKey(table, item.Key.Partition), item.Key.Sort, []byte(item.Attributes)).Err(); err != nil {
		return fmt.Errorf("put %s item: %w", table, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, table string, key kvstore.Key) error {
	if err := s.rdb.HDel(ctx, s.hashKey(table, key.Partition), key.Sort).Err(); err != nil {
		return fmt.Errorf("delete %s item: %w", table, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, table, partition string, opts kvstore.QueryOptions) ([]kvstore.Item, error) {
	fields, err := s.rdb.HGetAll(ctx, s.hashKey(table, partition)).Result()
	if err != nil {
		return nil, fmt.Errorf("query %s partition %q: %w", table, partition, err)
	}

	sortKeys := make([]string, 0, len(fields))
	for k := range fields {
		sortKeys = append(sortKeys, k)
	}
	if opts.Descending {
		sort.Sort(sort.Reverse(sort.StringSlice(sortKeys)))
	} else {
		sort.Strings(sortKeys)
	}
	if opts.Limit > 0 && len(sortKeys) > opts.Limit {
		sortKeys = sortKeys[:opts.Limit]
	}

	items := make([]kvstore.Item, 0, len(sortKeys))
	for _, k := range sortKeys {
		attrs, err := kvstore.Project(json.RawMessage(fields[k]), opts.Projection)
		if err != nil {
			return nil, err
		}
		items = append(items, kvstore.Item{
			Key:        kvstore.Key{Partition: partition, Sort: k},
			Attributes: attrs,
		})
	}
	return items, nil
}

func (s *Store) BatchWrite(ctx context.Context, table string, reqs []kvstore.WriteRequest) error {
	if err := kvstore.Validate(reqs); err != nil {
		return err
	}
	if len(reqs) == 0 {
		return nil
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, r := range reqs {
			if r.Put != nil {
				pipe.HSet(ctx, s.hashKey(table, r.Put.Key.Partition), r.Put.Key.Sort, []byte(r.Put.Attributes))
				continue
			}
			pipe.HDel(ctx, s.hashKey(table, r.Delete.Partition), r.Delete.Sort)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("batch write %s: %w", table, err)
	}
	return nil
}

// Increment uses WATCH/MULTI so concurrent writers to the same hash retry
// instead of losing an update.
func (s *Store) Increment(ctx context.Context, table string, key kvstore.Key, field string, delta int) error {
	hash := s.hashKey(table, key.Partition)

	txf := func(tx *goredis.Tx) error {
		raw, err := tx.HGet(ctx, hash, key.Sort).Bytes()
		if errors.Is(err, goredis.Nil) {
			return kvstore.ErrNotFound
		}
		if err != nil {
			return err
		}
		updated, err := kvstore.AddToField(json.RawMessage(raw), field, delta)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, hash, key.Sort, []byte(updated))
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxIncrementAttempts; attempt++ {
		err := s.rdb.Watch(ctx, txf, hash)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
			return fmt.Errorf("increment %s item: %w", table, err)
		}
		return err
	}
	return fmt.Errorf("increment %s item: too much contention", table)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
