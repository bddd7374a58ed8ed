package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
)

const (
	scanCount     = 200
	maxTxRetries  = 100
	retryBackoff  = 2 * time.Millisecond
	maxRetryDelay = 50 * time.Millisecond
)

var _ kv.Store = (*KVStore)(nil)

// KVStore implementa kv.Store: un string JSON por clave.
// RunTx usa WATCH sobre lockKeys y confirma con MULTI/EXEC; si otra escritura toca
// una clave vigilada, la transacción se repite desde cero.
type KVStore struct {
	rdb *redis.Client
	kvQuerier
}

// NewKVStore envuelve un cliente ya conectado. Close cierra el cliente.
func NewKVStore(rdb *redis.Client) *KVStore {
	return &KVStore{rdb: rdb, kvQuerier: kvQuerier{c: rdb}}
}

func (s *KVStore) RunTx(ctx context.Context, lockKeys []string, fn func(tx kv.Querier) error) error {
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.rdb.Watch(ctx, func(rtx *redis.Tx) error {
			view := newTxView(rtx)
			if err := fn(view); err != nil {
				return err
			}
			_, err := rtx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				view.flush(ctx, p)
				return nil
			})
			return err
		}, lockKeys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		delay := time.Duration(attempt+1) * retryBackoff
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return kv.ErrTxConflict
}

func (s *KVStore) Close() error {
	return s.rdb.Close()
}

// FlushDB vacía la base seleccionada. Solo para tests de integración.
func (s *KVStore) FlushDB(ctx context.Context) error {
	return s.rdb.FlushDB(ctx).Err()
}

// kvQuerier lecturas y escrituras directas sobre un cliente o un *redis.Tx.
type kvQuerier struct {
	c redis.Cmdable
}

func (k kvQuerier) Get(ctx context.Context, key string) (json.RawMessage, error) {
	v, err := k.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
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
	vals, err := k.c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget: %w", err)
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[i] = json.RawMessage(s)
		}
	}
	return out, nil
}

func (k kvQuerier) GetByPrefix(ctx context.Context, prefix string) ([]kv.Entry, error) {
	keys, err := scanKeys(ctx, k.c, prefix)
	if err != nil {
		return nil, err
	}
	vals, err := k.MGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make([]kv.Entry, 0, len(keys))
	for i, key := range keys {
		if vals[i] == nil {
			continue // borrada entre SCAN y MGET
		}
		out = append(out, kv.Entry{Key: key, Value: vals[i]})
	}
	return out, nil
}

func (k kvQuerier) Set(ctx context.Context, key string, value json.RawMessage) error {
	return k.MSet(ctx, []kv.Entry{{Key: key, Value: value}})
}

func (k kvQuerier) MSet(ctx context.Context, entries []kv.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := kv.CheckJSON(entries); err != nil {
		return err
	}
	pairs := make([]any, 0, 2*len(entries))
	for _, e := range entries {
		pairs = append(pairs, e.Key, []byte(e.Value))
	}
	if err := k.c.MSet(ctx, pairs...).Err(); err != nil {
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
	if err := k.c.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("del: %w", err)
	}
	return nil
}

// scanKeys recorre el keyspace con SCAN MATCH y devuelve las claves ordenadas.
func scanKeys(ctx context.Context, c redis.Cmdable, prefix string) ([]string, error) {
	seen := make(map[string]struct{})
	iter := c.Scan(ctx, 0, escapeGlob(prefix)+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		seen[iter.Val()] = struct{}{}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", prefix, err)
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}
