// Package kvtest contiene la batería de contrato que todo adaptador de kv.Store debe pasar.
package kvtest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
)

// Factory devuelve un store vacío para cada subtest. Los backends compartidos
// (Postgres, Redis) deben limpiar su contenido antes de devolverlo.
type Factory func(t *testing.T) kv.Store

// Run ejecuta el contrato completo contra el adaptador.
func Run(t *testing.T, newStore Factory) {
	t.Run("GetSetDel", func(t *testing.T) { testGetSetDel(t, newStore(t)) })
	t.Run("MultiOps", func(t *testing.T) { testMultiOps(t, newStore(t)) })
	t.Run("GetByPrefix", func(t *testing.T) { testGetByPrefix(t, newStore(t)) })
	t.Run("RejectsInvalidJSON", func(t *testing.T) { testInvalidJSON(t, newStore(t)) })
	t.Run("TxCommit", func(t *testing.T) { testTxCommit(t, newStore(t)) })
	t.Run("TxRollback", func(t *testing.T) { testTxRollback(t, newStore(t)) })
	t.Run("TxReadYourWrites", func(t *testing.T) { testTxReadYourWrites(t, newStore(t)) })
	t.Run("TxConcurrentCounter", func(t *testing.T) { testTxConcurrentCounter(t, newStore(t)) })
}

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func testGetSetDel(t *testing.T, s kv.Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, "product:1")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, s.Set(ctx, "product:1", raw(`{"name":"Martillo"}`)))
	v, err := s.Get(ctx, "product:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Martillo"}`, string(v))

	require.NoError(t, s.Set(ctx, "product:1", raw(`{"name":"Martillo v2"}`)))
	v, err = s.Get(ctx, "product:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Martillo v2"}`, string(v))

	require.NoError(t, s.Del(ctx, "product:1"))
	_, err = s.Get(ctx, "product:1")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	assert.NoError(t, s.Del(ctx, "product:1"), "Del es idempotente")
}

func testMultiOps(t *testing.T, s kv.Store) {
	ctx := context.Background()
	require.NoError(t, s.MSet(ctx, []kv.Entry{
		{Key: "sale:a", Value: raw(`{"n":1}`)},
		{Key: "sale:b", Value: raw(`{"n":2}`)},
	}))

	vals, err := s.MGet(ctx, []string{"sale:b", "sale:missing", "sale:a"})
	require.NoError(t, err)
	require.Len(t, vals, 3)
	assert.JSONEq(t, `{"n":2}`, string(vals[0]))
	assert.Nil(t, vals[1])
	assert.JSONEq(t, `{"n":1}`, string(vals[2]))

	require.NoError(t, s.MDel(ctx, []string{"sale:a", "sale:b", "sale:missing"}))
	vals, err = s.MGet(ctx, []string{"sale:a", "sale:b"})
	require.NoError(t, err)
	assert.Nil(t, vals[0])
	assert.Nil(t, vals[1])

	vals, err = s.MGet(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, vals)
}

func testGetByPrefix(t *testing.T, s kv.Store) {
	ctx := context.Background()
	require.NoError(t, s.MSet(ctx, []kv.Entry{
		{Key: "product:b", Value: raw(`{"id":"b"}`)},
		{Key: "product:a", Value: raw(`{"id":"a"}`)},
		{Key: "productx:z", Value: raw(`{"id":"z"}`)},
		{Key: "sale:1", Value: raw(`{"id":"1"}`)},
	}))

	entries, err := s.GetByPrefix(ctx, "product:")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "product:a", entries[0].Key)
	assert.Equal(t, "product:b", entries[1].Key)
	assert.JSONEq(t, `{"id":"a"}`, string(entries[0].Value))

	empty, err := s.GetByPrefix(ctx, "user:")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testInvalidJSON(t *testing.T, s kv.Store) {
	ctx := context.Background()
	err := s.Set(ctx, "product:bad", raw(`{no json`))
	assert.ErrorIs(t, err, kv.ErrInvalidValue)
	_, err = s.Get(ctx, "product:bad")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func testTxCommit(t *testing.T, s kv.Store) {
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "product:1", raw(`{"stock":5}`)))

	err := s.RunTx(ctx, []string{"product:1"}, func(tx kv.Querier) error {
		v, err := tx.Get(ctx, "product:1")
		if err != nil {
			return err
		}
		assert.JSONEq(t, `{"stock":5}`, string(v))
		if err := tx.Set(ctx, "product:1", raw(`{"stock":2}`)); err != nil {
			return err
		}
		return tx.Set(ctx, "sale:1", raw(`{"total":3}`))
	})
	require.NoError(t, err)

	v, err := s.Get(ctx, "product:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"stock":2}`, string(v))
	v, err = s.Get(ctx, "sale:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":3}`, string(v))
}

func testTxRollback(t *testing.T, s kv.Store) {
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "product:1", raw(`{"stock":5}`)))
	boom := errors.New("boom")

	err := s.RunTx(ctx, []string{"product:1"}, func(tx kv.Querier) error {
		if err := tx.Set(ctx, "product:1", raw(`{"stock":0}`)); err != nil {
			return err
		}
		if err := tx.Del(ctx, "product:1"); err != nil {
			return err
		}
		if err := tx.Set(ctx, "sale:1", raw(`{}`)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := s.Get(ctx, "product:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"stock":5}`, string(v), "nada se escribe si fn falla")
	_, err = s.Get(ctx, "sale:1")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func testTxReadYourWrites(t *testing.T, s kv.Store) {
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "user:1", raw(`{"v":1}`)))

	err := s.RunTx(ctx, []string{"user:1"}, func(tx kv.Querier) error {
		if err := tx.Set(ctx, "user:1", raw(`{"v":2}`)); err != nil {
			return err
		}
		v, err := tx.Get(ctx, "user:1")
		if err != nil {
			return err
		}
		assert.JSONEq(t, `{"v":2}`, string(v))

		if err := tx.Del(ctx, "user:1"); err != nil {
			return err
		}
		_, err = tx.Get(ctx, "user:1")
		assert.ErrorIs(t, err, kv.ErrNotFound)
		return nil
	})
	require.NoError(t, err)

	_, err = s.Get(ctx, "user:1")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

// testTxConcurrentCounter: N goroutines incrementan la misma clave dentro de RunTx;
// ninguna actualización se pierde.
func testTxConcurrentCounter(t *testing.T, s kv.Store) {
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "counter:1", raw(`{"n":0}`)))

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.RunTx(ctx, []string{"counter:1"}, func(tx kv.Querier) error {
				v, err := tx.Get(ctx, "counter:1")
				if err != nil {
					return err
				}
				var c struct{ N int }
				if err := json.Unmarshal(v, &c); err != nil {
					return err
				}
				c.N++
				b, _ := json.Marshal(map[string]int{"n": c.N})
				return tx.Set(ctx, "counter:1", b)
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	v, err := s.Get(ctx, "counter:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":20}`, string(v))
}
