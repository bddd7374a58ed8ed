package repository

import (
	"context"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

// SaleRepository ledger append-only de ventas. No expone Update ni Delete.
type SaleRepository interface {
	// Append persiste una venta nueva. Devuelve domain.ErrDuplicate si el ID o el
	// número de operación ya existen.
	Append(ctx context.Context, sale *entity.Sale) error
	// GetByID devuelve (nil, nil) cuando la venta no existe.
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// List devuelve todas las ventas, más recientes primero.
	List(ctx context.Context) ([]*entity.Sale, error)
}
