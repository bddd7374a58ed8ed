package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
)

// Querier operaciones comunes a *pgxpool.Pool y pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ kv.Store = (*KVStore)(nil)

// KVStore implementa kv.Store sobre la tabla kv_store (key TEXT, value JSONB).
type KVStore struct {
	pool *pgxpool.Pool
	kvQuerier
}

// NewKVStore crea el store sobre un pool ya conectado. Close cierra el pool.
func NewKVStore(pool *pgxpool.Pool) *KVStore {
	return &KVStore{pool: pool, kvQuerier: kvQuerier{q: pool}}
}

// RunTx abre una transacción, toma advisory locks por clave (ordenados, para evitar
// deadlocks entre transacciones) y bloquea con FOR UPDATE las filas existentes.
// Las claves que aún no existen quedan cubiertas por el advisory lock.
//
// Solo lockKeys quedan aisladas. Otras claves que fn lea o escriba (índices como
// sale-op:<n> o user-email:<email>) no se bloquean: dos transacciones pueden verlas
// ausentes a la vez. El llamador que necesite unicidad sobre un índice debe incluirlo
// en lockKeys.
func (s *KVStore) RunTx(ctx context.Context, lockKeys []string, fn func(tx kv.Querier) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	keys := sortedUnique(lockKeys)
	for _, k := range keys {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, k); err != nil {
			return fmt.Errorf("lock %s: %w", k, err)
		}
	}
	if len(keys) > 0 {
		if _, err := tx.Exec(ctx, `SELECT key FROM kv_store WHERE key = ANY($1) ORDER BY key FOR UPDATE`, keys); err != nil {
			return fmt.Errorf("lock filas: %w", err)
		}
	}

	if err := fn(kvQuerier{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close cierra el pool.
func (s *KVStore) Close() error {
	s.pool.Close()
	return nil
}

// Truncate borra todo el contenido. Solo para tests de integración.
func (s *KVStore) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE kv_store`)
	return err
}

// kvQuerier implementa kv.Querier sobre el pool o una transacción.
type kvQuerier struct {
	q Querier
}

func (k kvQuerier) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var v string
	err := k.q.QueryRow(ctx, `SELECT value::text FROM kv_store WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return json.RawMessage(v), nil
}

func (k kvQuerier) MGet(ctx context.Context, keys []string) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	rows, err := k.q.Query(ctx, `SELECT key, value::text FROM kv_store WHERE key = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("mget: %w", err)
	}
	defer rows.Close()

	found := make(map[string]json.RawMessage, len(keys))
	for rows.Next() {
		var key, val string
		if err := rows.Scan(&key, &val); err != nil {
			return nil, err
		}
		found[key] = json.RawMessage(val)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, key := range keys {
		out[i] = found[key]
	}
	return out, nil
}

func (k kvQuerier) GetByPrefix(ctx context.Context, prefix string) ([]kv.Entry, error) {
	rows, err := k.q.Query(ctx,
		`SELECT key, value::text FROM kv_store WHERE key LIKE $1 ESCAPE '\' ORDER BY key COLLATE "C"`,
		escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	out := make([]kv.Entry, 0)
	for rows.Next() {
		var key, val string
		if err := rows.Scan(&key, &val); err != nil {
			return nil, err
		}
		out = append(out, kv.Entry{Key: key, Value: json.RawMessage(val)})
	}
	return out, rows.Err()
}

func (k kvQuerier) Set(ctx context.Context, key string, value json.RawMessage) error {
	return k.MSet(ctx, []kv.Entry{{Key: key, Value: value}})
}

// MSet hace upsert en una sola sentencia. Claves repetidas: gana la última.
func (k kvQuerier) MSet(ctx context.Context, entries []kv.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := kv.CheckJSON(entries); err != nil {
		return err
	}
	last := make(map[string]int, len(entries))
	for i, e := range entries {
		last[e.Key] = i
	}
	keys := make([]string, 0, len(last))
	values := make([]string, 0, len(last))
	for i, e := range entries {
		if last[e.Key] != i {
			continue
		}
		keys = append(keys, e.Key)
		values = append(values, string(e.Value))
	}
	_, err := k.q.Exec(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		SELECT k, v::jsonb, now() FROM unnest($1::text[], $2::text[]) AS t(k, v)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		keys, values)
	if err != nil {
		return fmt.Errorf("mset: %w", err)
	}
	return nil
}

func (k kvQuerier) Del(ctx context.Context, key string) error {
	return k.MDel(ctx, []string{key})
}

func (k kvQuerier) MDel(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := k.q.Exec(ctx, `DELETE FROM kv_store WHERE key = ANY($1)`, keys); err != nil {
		return fmt.Errorf("mdel: %w", err)
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func sortedUnique(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	out := append([]string(nil), keys...)
	sort.Strings(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}
