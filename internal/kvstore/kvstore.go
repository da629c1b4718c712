// Package kvstore opens host storages the Soulbound contract can be bound to.
package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Storage types supported in addition to the ones of dbconfig.
const (
	RedisDB    = "redis"
	PostgresDB = "postgres"
)

const (
	defaultNamespace = "soulbound"
	defaultTable     = "soulbound_storage"

	pingTimeout = 2 * time.Second
)

// Config describes host storage. Type selects the backend: dbconfig.InMemoryDB,
// dbconfig.BoltDB and dbconfig.LevelDB are served by neo-go, RedisDB and
// PostgresDB by this package.
type Config struct {
	dbconfig.DBConfiguration `yaml:",inline"`

	RedisOptions    RedisOptions    `yaml:"RedisOptions"`
	PostgresOptions PostgresOptions `yaml:"PostgresOptions"`
}

// RedisOptions configures RedisDB storage.
type RedisOptions struct {
	Addr     string `yaml:"Addr"`
	Password string `yaml:"Password"`
	DB       int    `yaml:"DB"`
	// Namespace prefixes Redis keys used by the storage.
	Namespace string `yaml:"Namespace"`
}

// PostgresOptions configures PostgresDB storage.
type PostgresOptions struct {
	DSN   string `yaml:"DSN"`
	Table string `yaml:"Table"`
}

// Open opens storage described by cfg. Network backends are checked to be
// reachable before return.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (storage.Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch cfg.Type {
	case RedisDB:
		return openRedis(ctx, cfg.RedisOptions, log)
	case PostgresDB:
		return openPostgres(ctx, cfg.PostgresOptions, log)
	case "":
		return storage.NewMemoryStore(), nil
	default:
		st, err := storage.NewStore(cfg.DBConfiguration)
		if err != nil {
			return nil, fmt.Errorf("open %s storage: %w", cfg.Type, err)
		}
		return st, nil
	}
}

func openRedis(ctx context.Context, opts RedisOptions, log *zap.Logger) (*Redis, error) {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctxPing, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctxPing).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	log.Info("redis storage opened", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))

	return NewRedis(ctx, client, opts.Namespace, log), nil
}

func openPostgres(ctx context.Context, opts PostgresOptions, log *zap.Logger) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres DSN: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, pingTimeout)
	err = pool.Ping(ctxPing)
	cancel()
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	st, err := NewPostgres(ctx, pool, opts.Table, log)
	if err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("postgres storage opened", zap.String("table", st.table))

	return st, nil
}

// prefixEnd returns the smallest key greater than every key with the given
// prefix or nil if there is no such key.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)

	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}

	return nil
}

// seekStart returns the first key of the range in its seek direction or nil
// when the range is unbounded on that side.
func seekStart(rng storage.SeekRange) []byte {
	if len(rng.Start) == 0 {
		return nil
	}

	res := make([]byte, 0, len(rng.Prefix)+len(rng.Start))
	res = append(res, rng.Prefix...)

	return append(res, rng.Start...)
}
