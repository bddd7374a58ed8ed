// Package sales lectura del ledger de ventas: historial, detalle, resumen y comprobante.
package sales

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

// ReceiptRenderer genera el comprobante PDF de una venta.
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, sale *entity.Sale) ([]byte, error)
}

// UseCase consultas sobre ventas registradas. No existe update ni delete.
type UseCase struct {
	repo     repository.SaleRepository
	receipts ReceiptRenderer
}

func NewUseCase(repo repository.SaleRepository, receipts ReceiptRenderer) *UseCase {
	return &UseCase{repo: repo, receipts: receipts}
}

// List todas las ventas, más recientes primero.
func (uc *UseCase) List(ctx context.Context) ([]dto.SaleResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *dto.FromSale(s))
	}
	return out, nil
}

// GetByID devuelve domain.ErrNotFound si la venta no existe.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromSale(sale), nil
}

// Summary ingresos totales, cantidad de ventas y unidades vendidas.
func (uc *UseCase) Summary(ctx context.Context) (*dto.SalesSummary, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sum := &dto.SalesSummary{TotalRevenue: decimal.Zero, TotalSales: len(list)}
	for _, s := range list {
		sum.TotalRevenue = sum.TotalRevenue.Add(s.Total)
		sum.TotalItems += s.ItemCount()
	}
	return sum, nil
}

// Receipt devuelve el PDF y el número de operación (para el nombre del archivo).
func (uc *UseCase) Receipt(ctx context.Context, id string) ([]byte, string, error) {
	sale, err := uc.find(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc, err := uc.receipts.RenderReceipt(ctx, sale)
	if err != nil {
		return nil, "", err
	}
	return doc, sale.OperationNumber, nil
}

func (uc *UseCase) find(ctx context.Context, id string) (*entity.Sale, error) {
	sale, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	return sale, nil
}
