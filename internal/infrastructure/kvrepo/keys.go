// Package kvrepo implementa los repositorios de dominio sobre kv.Store.
// Cada repositorio es dueño de su prefijo de claves (ver paquete kv).
package kvrepo

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	productPrefix   = "product:"
	salePrefix      = "sale:"
	saleOpPrefix    = "sale-op:"
	userPrefix      = "user:"
	userEmailPrefix = "user-email:"
)

func ProductKey(id string) string { return productPrefix + id }
func SaleKey(id string) string    { return salePrefix + id }
func SaleOpKey(op string) string  { return saleOpPrefix + op }
func UserKey(id string) string    { return userPrefix + id }

// UserEmailKey el email se normaliza a minúsculas: la unicidad no distingue mayúsculas.
func UserEmailKey(email string) string {
	return userEmailPrefix + strings.ToLower(strings.TrimSpace(email))
}

// ProductKeys claves product:<id> para un conjunto de ids.
func ProductKeys(ids []string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ProductKey(id)
	}
	return keys
}

func decode[T any](key string, raw json.RawMessage) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decodificar %s: %w", key, err)
	}
	return &v, nil
}

func encode(key string, v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codificar %s: %w", key, err)
	}
	return b, nil
}
