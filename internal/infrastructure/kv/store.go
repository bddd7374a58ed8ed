// Package kv define el puerto del almacén clave-valor de la tienda: blobs JSON
// indexados por clave string, con listado por prefijo, operaciones múltiples y
// transacciones sobre un conjunto de claves.
//
// Esquema de claves usado por los repositorios:
//
//	product:<id>            producto
//	sale:<id>               venta (inmutable)
//	sale-op:<operación>     índice número de operación -> id de venta
//	user:<id>               usuario
//	user-email:<email>      índice email -> id de usuario
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound la clave no existe.
var ErrNotFound = errors.New("kv: clave no encontrada")

// ErrTxConflict la transacción no pudo confirmarse por escrituras concurrentes
// tras agotar los reintentos.
var ErrTxConflict = errors.New("kv: conflicto de transacción")

// ErrInvalidValue el valor a escribir no es JSON válido.
var ErrInvalidValue = errors.New("kv: el valor no es JSON válido")

// CheckJSON verifica que todos los valores sean JSON válido antes de escribir.
func CheckJSON(entries []Entry) error {
	for _, e := range entries {
		if !json.Valid(e.Value) {
			return fmt.Errorf("%w: %s", ErrInvalidValue, e.Key)
		}
	}
	return nil
}

// Entry par clave/valor.
type Entry struct {
	Key   string
	Value json.RawMessage
}

// Querier operaciones de lectura y escritura. Lo implementan Store y la vista
// transaccional que recibe la función de RunTx.
type Querier interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	// MGet devuelve un valor por clave en el mismo orden; nil si la clave no existe.
	MGet(ctx context.Context, keys []string) ([]json.RawMessage, error)
	// GetByPrefix devuelve las entradas cuyo key empieza con prefix, ordenadas por key.
	GetByPrefix(ctx context.Context, prefix string) ([]Entry, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	MSet(ctx context.Context, entries []Entry) error
	// Del es idempotente: borrar una clave inexistente no es error.
	Del(ctx context.Context, key string) error
	MDel(ctx context.Context, keys []string) error
}

// Store almacén clave-valor con ciclo de vida explícito.
type Store interface {
	Querier
	// RunTx ejecuta fn con aislamiento sobre lockKeys: ninguna otra escritura a esas
	// claves se intercala entre las lecturas de fn y su confirmación. Todas las
	// escrituras hechas vía tx se confirman juntas o ninguna. Si fn devuelve error
	// no se escribe nada. fn no debe usar el Store directamente, solo tx.
	// Las claves fuera de lockKeys no tienen esa garantía en todos los adaptadores.
	RunTx(ctx context.Context, lockKeys []string, fn func(tx Querier) error) error
	Close() error
}
