package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

// TxRunner ejecuta fn con repositorios atados a una transacción que aísla los
// productos indicados. Si fn devuelve error no se persiste nada.
type TxRunner interface {
	Run(ctx context.Context, productIDs []string, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// OperationNumbers genera números de operación OP-<fecha>-<sufijo>.
type OperationNumbers interface {
	Next(now time.Time) (string, error)
}

// Recorder métricas del checkout. Outcome: completed, invalid, not_found, insufficient_stock, error.
type Recorder interface {
	CheckoutFinished(outcome string, total decimal.Decimal, items int)
}

type nopRecorder struct{}

func (nopRecorder) CheckoutFinished(string, decimal.Decimal, int) {}
