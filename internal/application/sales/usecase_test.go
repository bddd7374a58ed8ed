package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kv"
	"github.com/jhoicas/ferreteria-api/internal/infrastructure/kvrepo"
)

type stubRenderer struct{ got *entity.Sale }

func (s *stubRenderer) RenderReceipt(_ context.Context, sale *entity.Sale) ([]byte, error) {
	s.got = sale
	return []byte("%PDF-fake"), nil
}

func seed(t *testing.T, repo *kvrepo.SaleRepository) {
	t.Helper()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mk := func(id, op string, at time.Time, qty int, price string) *entity.Sale {
		items := []entity.SaleItem{{ProductID: "p1", ProductName: "Martillo", Quantity: qty, Price: decimal.RequireFromString(price), Unit: "unidad"}}
		return &entity.Sale{ID: id, OperationNumber: op, Date: at, CustomerName: "Ana", Items: items, Total: entity.SumItems(items), PaymentMethod: entity.PaymentCash}
	}
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, mk("s1", "OP-1", base, 2, "25.99")))
	require.NoError(t, repo.Append(ctx, mk("s2", "OP-2", base.Add(time.Hour), 1, "8.99")))
	require.NoError(t, repo.Append(ctx, mk("s3", "OP-3", base.Add(-time.Hour), 3, "15.50")))
}

func TestSales_ListPorFechaDesc(t *testing.T) {
	repo := kvrepo.NewSaleRepository(kv.NewMemoryStore())
	seed(t, repo)
	uc := sales.NewUseCase(repo, &stubRenderer{})

	list, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"s2", "s1", "s3"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestSales_Summary(t *testing.T) {
	repo := kvrepo.NewSaleRepository(kv.NewMemoryStore())
	seed(t, repo)
	uc := sales.NewUseCase(repo, &stubRenderer{})

	sum, err := uc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalSales)
	assert.Equal(t, 6, sum.TotalItems)
	assert.True(t, sum.TotalRevenue.Equal(decimal.RequireFromString("107.47")), sum.TotalRevenue.String())
}

func TestSales_SummaryVacio(t *testing.T) {
	uc := sales.NewUseCase(kvrepo.NewSaleRepository(kv.NewMemoryStore()), &stubRenderer{})
	sum, err := uc.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.TotalSales)
	assert.True(t, sum.TotalRevenue.IsZero())
}

func TestSales_GetYReceipt(t *testing.T) {
	repo := kvrepo.NewSaleRepository(kv.NewMemoryStore())
	seed(t, repo)
	r := &stubRenderer{}
	uc := sales.NewUseCase(repo, r)
	ctx := context.Background()

	got, err := uc.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "OP-1", got.OperationNumber)

	doc, op, err := uc.Receipt(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, "OP-2", op)
	assert.Equal(t, []byte("%PDF-fake"), doc)
	assert.Equal(t, "s2", r.got.ID)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = uc.Receipt(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
