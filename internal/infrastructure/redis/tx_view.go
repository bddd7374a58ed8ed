package redis

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
)

// txView lee a través de la conexión vigilada y acumula las escrituras hasta EXEC.
type txView struct {
	base    kvQuerier
	writes  map[string]json.RawMessage
	deletes map[string]bool
}

func newTxView(rtx *redis.Tx) *txView {
	return &txView{
		base:    kvQuerier{c: rtx},
		writes:  make(map[string]json.RawMessage),
		deletes: make(map[string]bool),
	}
}

func (t *txView) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if t.deletes[key] {
		return nil, kv.ErrNotFound
	}
	if v, ok := t.writes[key]; ok {
		return copyRaw(v), nil
	}
	return t.base.Get(ctx, key)
}

func (t *txView) MGet(ctx context.Context, keys []string) ([]json.RawMessage, error) {
	out, err := t.base.MGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		switch {
		case t.deletes[k]:
			out[i] = nil
		case t.writes[k] != nil:
			out[i] = copyRaw(t.writes[k])
		}
	}
	return out, nil
}

func (t *txView) GetByPrefix(ctx context.Context, prefix string) ([]kv.Entry, error) {
	stored, err := t.base.GetByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]json.RawMessage, len(stored))
	for _, e := range stored {
		if !t.deletes[e.Key] {
			merged[e.Key] = e.Value
		}
	}
	for k, v := range t.writes {
		if strings.HasPrefix(k, prefix) {
			merged[k] = copyRaw(v)
		}
	}
	out := make([]kv.Entry, 0, len(merged))
	for k, v := range merged {
		out = append(out, kv.Entry{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (t *txView) Set(ctx context.Context, key string, value json.RawMessage) error {
	return t.MSet(ctx, []kv.Entry{{Key: key, Value: value}})
}

func (t *txView) MSet(_ context.Context, entries []kv.Entry) error {
	if err := kv.CheckJSON(entries); err != nil {
		return err
	}
	for _, e := range entries {
		delete(t.deletes, e.Key)
		t.writes[e.Key] = copyRaw(e.Value)
	}
	return nil
}

func (t *txView) Del(ctx context.Context, key string) error {
	return t.MDel(ctx, []string{key})
}

func (t *txView) MDel(_ context.Context, keys []string) error {
	for _, k := range keys {
		delete(t.writes, k)
		t.deletes[k] = true
	}
	return nil
}

// flush encola en el pipeline MULTI/EXEC los borrados y luego las escrituras.
func (t *txView) flush(ctx context.Context, p redis.Pipeliner) {
	if len(t.deletes) > 0 {
		keys := make([]string, 0, len(t.deletes))
		for k := range t.deletes {
			keys = append(keys, k)
		}
		p.Del(ctx, keys...)
	}
	for k, v := range t.writes {
		p.Set(ctx, k, []byte(v), 0)
	}
}

func copyRaw(v json.RawMessage) json.RawMessage {
	if v == nil {
		return nil
	}
	return append(json.RawMessage(nil), v...)
}
