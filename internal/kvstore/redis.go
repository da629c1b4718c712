package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisBatch = 512

// Redis is storage.Store kept in Redis. Keys are members of a sorted set
// with zero scores so lexicographical range queries return them in byte
// order; values are fields of a hash.
//
// Redis instances must be constructed using NewRedis.
type Redis struct {
	ctx    context.Context
	client *redis.Client
	log    *zap.Logger

	keys   string
	values string
}

// NewRedis binds storage to the client. Namespace defaults to "soulbound".
// The storage owns the client and closes it on Close.
func NewRedis(ctx context.Context, client *redis.Client, namespace string, log *zap.Logger) *Redis {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Redis{
		ctx:    ctx,
		client: client,
		log:    log,
		keys:   namespace + ":keys",
		values: namespace + ":values",
	}
}

// Get implements storage.Store.
func (s *Redis) Get(key []byte) ([]byte, error) {
	v, err := s.client.HGet(s.ctx, s.values, string(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	return v, nil
}

// PutChangeSet implements storage.Store. Nil values delete keys. All
// changes are applied in a single MULTI/EXEC transaction.
func (s *Redis) PutChangeSet(puts map[string][]byte, stor map[string][]byte) error {
	if len(puts)+len(stor) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(s.ctx, func(p redis.Pipeliner) error {
		for _, m := range []map[string][]byte{puts, stor} {
			for k, v := range m {
				if v == nil {
					p.ZRem(s.ctx, s.keys, k)
					p.HDel(s.ctx, s.values, k)
					continue
				}

				p.ZAdd(s.ctx, s.keys, redis.Z{Member: k})
				p.HSet(s.ctx, s.values, k, v)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis commit: %w", err)
	}

	return nil
}

// Seek implements storage.Store. Storage errors stop iteration and are
// logged.
func (s *Redis) Seek(rng storage.SeekRange, f func(k, v []byte) bool) {
	err := s.seek(rng, f)
	if err != nil {
		s.log.Error("redis seek failed", zap.Binary("prefix", rng.Prefix), zap.Error(err))
	}
}

// SeekErr is like Seek but returns backend failure instead of logging it.
func (s *Redis) SeekErr(rng storage.SeekRange, f func(k, v []byte) bool) error {
	return s.seek(rng, f)
}

// SeekGC implements storage.Store.
func (s *Redis) SeekGC(rng storage.SeekRange, keep func(k, v []byte) bool) error {
	var drop []string

	err := s.seek(rng, func(k, v []byte) bool {
		if !keep(k, v) {
			drop = append(drop, string(k))
		}
		return true
	})
	if err != nil {
		return err
	}

	if len(drop) == 0 {
		return nil
	}

	dels := make(map[string][]byte, len(drop))
	for i := range drop {
		dels[drop[i]] = nil
	}

	return s.PutChangeSet(dels, nil)
}

// Close implements storage.Store.
func (s *Redis) Close() error {
	return s.client.Close()
}

func (s *Redis) seek(rng storage.SeekRange, f func(k, v []byte) bool) error {
	keys, err := s.rangeKeys(rng)
	if err != nil {
		return err
	}

	for len(keys) > 0 {
		n := min(len(keys), redisBatch)
		batch := keys[:n]
		keys = keys[n:]

		vals, err := s.client.HMGet(s.ctx, s.values, batch...).Result()
		if err != nil {
			return fmt.Errorf("redis values: %w", err)
		}

		for i := range batch {
			v, ok := vals[i].(string)
			if !ok {
				// removed concurrently
				continue
			}

			if !f([]byte(batch[i]), []byte(v)) {
				return nil
			}
		}
	}

	return nil
}

func (s *Redis) rangeKeys(rng storage.SeekRange) ([]string, error) {
	var (
		lo    = "-"
		hi    = "+"
		start = seekStart(rng)
	)

	if len(rng.Prefix) > 0 {
		lo = "[" + string(rng.Prefix)
		if end := prefixEnd(rng.Prefix); end != nil {
			hi = "(" + string(end)
		}
	}

	var (
		res []string
		err error
	)

	if rng.Backwards {
		if start != nil {
			hi = "[" + string(start)
		}
		res, err = s.client.ZRevRangeByLex(s.ctx, s.keys, &redis.ZRangeBy{Min: lo, Max: hi}).Result()
	} else {
		if start != nil {
			lo = "[" + string(start)
		}
		res, err = s.client.ZRangeByLex(s.ctx, s.keys, &redis.ZRangeBy{Min: lo, Max: hi}).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("redis keys: %w", err)
	}

	return res, nil
}
