package kvrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
)

var _ repository.SaleRepository = (*SaleRepository)(nil)

// SaleRepository ledger de ventas: sale:<id> más el índice sale-op:<operación>.
type SaleRepository struct {
	q kv.Querier
}

func NewSaleRepository(q kv.Querier) *SaleRepository {
	return &SaleRepository{q: q}
}

type saleOpIndex struct {
	SaleID string `json:"saleId"`
}

// Append escribe la venta y su índice de número de operación. Rechaza con
// domain.ErrDuplicate si el id o el número de operación ya existen; las ventas
// escritas nunca se sobrescriben.
func (r *SaleRepository) Append(ctx context.Context, s *entity.Sale) error {
	saleKey, opKey := SaleKey(s.ID), SaleOpKey(s.OperationNumber)
	existing, err := r.q.MGet(ctx, []string{saleKey, opKey})
	if err != nil {
		return fmt.Errorf("verificar venta: %w", err)
	}
	if existing[0] != nil {
		return fmt.Errorf("%w: venta %s", domain.ErrDuplicate, s.ID)
	}
	if existing[1] != nil {
		return fmt.Errorf("%w: número de operación %s", domain.ErrDuplicate, s.OperationNumber)
	}

	saleRaw, err := encode(saleKey, s)
	if err != nil {
		return err
	}
	opRaw, err := encode(opKey, saleOpIndex{SaleID: s.ID})
	if err != nil {
		return err
	}
	if err := r.q.MSet(ctx, []kv.Entry{{Key: saleKey, Value: saleRaw}, {Key: opKey, Value: opRaw}}); err != nil {
		return fmt.Errorf("guardar venta: %w", err)
	}
	return nil
}

// GetByID devuelve (nil, nil) si la venta no existe.
func (r *SaleRepository) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	key := SaleKey(id)
	raw, err := r.q.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leer venta: %w", err)
	}
	return decode[entity.Sale](key, raw)
}

// List todas las ventas por fecha descendente (empate: id descendente).
func (r *SaleRepository) List(ctx context.Context) ([]*entity.Sale, error) {
	entries, err := r.q.GetByPrefix(ctx, salePrefix)
	if err != nil {
		return nil, fmt.Errorf("listar ventas: %w", err)
	}
	out := make([]*entity.Sale, 0, len(entries))
	for _, e := range entries {
		s, err := decode[entity.Sale](e.Key, e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
