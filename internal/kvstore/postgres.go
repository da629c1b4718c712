package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"go.uber.org/zap"
)

// Postgres is storage.Store kept in a PostgreSQL table of (key, value) BYTEA
// pairs. BYTEA ordering is bytewise so range scans follow key order.
//
// Postgres instances must be constructed using NewPostgres.
type Postgres struct {
	ctx  context.Context
	pool *pgxpool.Pool
	log  *zap.Logger

	table string
	ident string
}

// NewPostgres binds storage to the pool and creates the table if missing.
// Table defaults to "soulbound_storage". The storage owns the pool and
// closes it on Close.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool, table string, log *zap.Logger) (*Postgres, error) {
	if table == "" {
		table = defaultTable
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Postgres{
		ctx:   ctx,
		pool:  pool,
		log:   log,
		table: table,
		ident: pgx.Identifier{table}.Sanitize(),
	}

	_, err := pool.Exec(ctx, "CREATE TABLE IF NOT EXISTS "+s.ident+" (key BYTEA PRIMARY KEY, value BYTEA NOT NULL)")
	if err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}

	return s, nil
}

// Get implements storage.Store.
func (s *Postgres) Get(key []byte) ([]byte, error) {
	var v []byte

	err := s.pool.QueryRow(s.ctx, "SELECT value FROM "+s.ident+" WHERE key = $1", key).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, fmt.Errorf("postgres get: %w", err)
	}

	return v, nil
}

// PutChangeSet implements storage.Store. Nil values delete keys. All
// changes are applied in a single transaction.
func (s *Postgres) PutChangeSet(puts map[string][]byte, stor map[string][]byte) error {
	if len(puts)+len(stor) == 0 {
		return nil
	}

	var (
		b      pgx.Batch
		upsert = "INSERT INTO " + s.ident + " (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value"
		del    = "DELETE FROM " + s.ident + " WHERE key = $1"
	)

	for _, m := range []map[string][]byte{puts, stor} {
		for k, v := range m {
			if v == nil {
				b.Queue(del, []byte(k))
			} else {
				b.Queue(upsert, []byte(k), v)
			}
		}
	}

	err := pgx.BeginFunc(s.ctx, s.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(s.ctx, &b).Close()
	})
	if err != nil {
		return fmt.Errorf("postgres commit: %w", err)
	}

	return nil
}

// Seek implements storage.Store. Storage errors stop iteration and are
// logged.
func (s *Postgres) Seek(rng storage.SeekRange, f func(k, v []byte) bool) {
	err := s.seek(rng, f)
	if err != nil {
		s.log.Error("postgres seek failed", zap.Binary("prefix", rng.Prefix), zap.Error(err))
	}
}

// SeekErr is like Seek but returns backend failure instead of logging it.
func (s *Postgres) SeekErr(rng storage.SeekRange, f func(k, v []byte) bool) error {
	return s.seek(rng, f)
}

// SeekGC implements storage.Store.
func (s *Postgres) SeekGC(rng storage.SeekRange, keep func(k, v []byte) bool) error {
	dels := make(map[string][]byte)

	err := s.seek(rng, func(k, v []byte) bool {
		if !keep(k, v) {
			dels[string(k)] = nil
		}
		return true
	})
	if err != nil {
		return err
	}

	return s.PutChangeSet(dels, nil)
}

// Close implements storage.Store.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

func (s *Postgres) seek(rng storage.SeekRange, f func(k, v []byte) bool) error {
	var (
		conds []string
		args  []any
		order = "ASC"
		start = seekStart(rng)
	)

	cond := func(op string, arg []byte) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf("key %s $%d", op, len(args)))
	}

	if len(rng.Prefix) > 0 {
		cond(">=", rng.Prefix)
		if end := prefixEnd(rng.Prefix); end != nil {
			cond("<", end)
		}
	}

	if start != nil {
		if rng.Backwards {
			cond("<=", start)
		} else {
			cond(">=", start)
		}
	}

	if rng.Backwards {
		order = "DESC"
	}

	q := "SELECT key, value FROM " + s.ident
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY key " + order

	rows, err := s.pool.Query(s.ctx, q, args...)
	if err != nil {
		return fmt.Errorf("postgres seek: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v []byte

		if err = rows.Scan(&k, &v); err != nil {
			return fmt.Errorf("postgres scan: %w", err)
		}

		if !f(k, v) {
			return nil
		}
	}

	return rows.Err()
}
