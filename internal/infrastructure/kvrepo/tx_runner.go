package kvrepo

import (
	"context"

	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
)

// TxRunner ejecuta callbacks con repositorios atados a una transacción del store.
type TxRunner struct {
	store kv.Store
}

func NewTxRunner(store kv.Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run bloquea las claves product:<id> de productIDs, ejecuta fn con repos de
// productos y ventas atados a la tx y confirma todo junto. Si fn falla no se escribe nada.
func (r *TxRunner) Run(ctx context.Context, productIDs []string, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.store.RunTx(ctx, ProductKeys(productIDs), func(tx kv.Querier) error {
		return fn(NewProductRepository(tx), NewSaleRepository(tx))
	})
}
