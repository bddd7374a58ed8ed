package kv

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrClosed el store ya fue cerrado.
var ErrClosed = errors.New("kv: store cerrado")

var _ Store = (*MemoryStore)(nil)

// MemoryStore implementación en memoria del Store (desarrollo y tests).
// Los valores se copian al leer y al escribir; RunTx serializa todas las transacciones.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryStore construye un store vacío.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (s *MemoryStore) MGet(ctx context.Context, keys []string) ([]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, len(keys))
	for i, k := range keys {
		if v, ok := s.data[k]; ok {
			out[i] = clone(v)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	return prefixScan(s.data, prefix), nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	return s.MSet(ctx, []Entry{{Key: key, Value: value}})
}

func (s *MemoryStore) MSet(ctx context.Context, entries []Entry) error {
	if err := CheckJSON(entries); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	for _, e := range entries {
		s.data[e.Key] = clone(e.Value)
	}
	return nil
}

func (s *MemoryStore) Del(ctx context.Context, key string) error {
	return s.MDel(ctx, []string{key})
}

func (s *MemoryStore) MDel(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// RunTx toma el lock exclusivo del store durante toda la transacción; lockKeys se ignora.
func (s *MemoryStore) RunTx(ctx context.Context, _ []string, fn func(tx Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	tx := &memoryTx{base: s.data, writes: make(map[string][]byte), deletes: make(map[string]bool)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for k := range tx.deletes {
		delete(s.data, k)
	}
	for k, v := range tx.writes {
		s.data[k] = v
	}
	return nil
}

// Close libera el contenido; operaciones posteriores devuelven ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.data = nil
	return nil
}

// Len número de claves almacenadas.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) check(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	return ctx.Err()
}

// memoryTx vista transaccional: las escrituras quedan en buffer hasta el commit.
type memoryTx struct {
	base    map[string][]byte
	writes  map[string][]byte
	deletes map[string]bool
}

func (t *memoryTx) lookup(key string) ([]byte, bool) {
	if t.deletes[key] {
		return nil, false
	}
	if v, ok := t.writes[key]; ok {
		return v, true
	}
	v, ok := t.base[key]
	return v, ok
}

func (t *memoryTx) Get(_ context.Context, key string) (json.RawMessage, error) {
	v, ok := t.lookup(key)
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (t *memoryTx) MGet(_ context.Context, keys []string) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(keys))
	for i, k := range keys {
		if v, ok := t.lookup(k); ok {
			out[i] = clone(v)
		}
	}
	return out, nil
}

func (t *memoryTx) GetByPrefix(_ context.Context, prefix string) ([]Entry, error) {
	merged := make(map[string][]byte)
	for k, v := range t.base {
		if strings.HasPrefix(k, prefix) && !t.deletes[k] {
			merged[k] = v
		}
	}
	for k, v := range t.writes {
		if strings.HasPrefix(k, prefix) {
			merged[k] = v
		}
	}
	return prefixScan(merged, prefix), nil
}

func (t *memoryTx) Set(ctx context.Context, key string, value json.RawMessage) error {
	return t.MSet(ctx, []Entry{{Key: key, Value: value}})
}

func (t *memoryTx) MSet(_ context.Context, entries []Entry) error {
	if err := CheckJSON(entries); err != nil {
		return err
	}
	for _, e := range entries {
		delete(t.deletes, e.Key)
		t.writes[e.Key] = clone(e.Value)
	}
	return nil
}

func (t *memoryTx) Del(ctx context.Context, key string) error {
	return t.MDel(ctx, []string{key})
}

func (t *memoryTx) MDel(_ context.Context, keys []string) error {
	for _, k := range keys {
		delete(t.writes, k)
		t.deletes[k] = true
	}
	return nil
}

func prefixScan(data map[string][]byte, prefix string) []Entry {
	out := make([]Entry, 0)
	for k, v := range data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, Entry{Key: k, Value: clone(v)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func clone(v []byte) json.RawMessage {
	if v == nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}
