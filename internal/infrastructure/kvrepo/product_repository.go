package kvrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implementación de repository.ProductRepository (claves product:<id>).
type ProductRepository struct {
	q kv.Querier
}

// NewProductRepository q puede ser el Store o la vista de una transacción.
func NewProductRepository(q kv.Querier) *ProductRepository {
	return &ProductRepository{q: q}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.put(ctx, p)
}

func (r *ProductRepository) CreateMany(ctx context.Context, products []*entity.Product) error {
	entries := make([]kv.Entry, 0, len(products))
	for _, p := range products {
		key := ProductKey(p.ID)
		raw, err := encode(key, p)
		if err != nil {
			return err
		}
		entries = append(entries, kv.Entry{Key: key, Value: raw})
	}
	if err := r.q.MSet(ctx, entries); err != nil {
		return fmt.Errorf("guardar productos: %w", err)
	}
	return nil
}

// GetByID devuelve (nil, nil) si el producto no existe.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	key := ProductKey(id)
	raw, err := r.q.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer producto: %w", err)
	}
	return decode[entity.Product](key, raw)
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	return r.put(ctx, p)
}

// List todos los productos, más recientes primero (createdAt desc, luego id).
func (r *ProductRepository) List(ctx context.Context) ([]*entity.Product, error) {
	entries, err := r.q.GetByPrefix(ctx, productPrefix)
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	out := make([]*entity.Product, 0, len(entries))
	for _, e := range entries {
		p, err := decode[entity.Product](e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.q.Del(ctx, ProductKey(id)); err != nil {
		return fmt.Errorf("borrar producto: %w", err)
	}
	return nil
}

// DeleteAll borra todas las claves product:* y devuelve cuántas había.
func (r *ProductRepository) DeleteAll(ctx context.Context) (int, error) {
	entries, err := r.q.GetByPrefix(ctx, productPrefix)
	if err != nil {
		return 0, fmt.Errorf("listar productos: %w", err)
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	if err := r.q.MDel(ctx, keys); err != nil {
		return 0, fmt.Errorf("borrar productos: %w", err)
	}
	return len(keys), nil
}

func (r *ProductRepository) put(ctx context.Context, p *entity.Product) error {
	key := ProductKey(p.ID)
	raw, err := encode(key, p)
	if err != nil {
		return err
	}
	if err := r.q.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("guardar producto: %w", err)
	}
	return nil
}
