// Package checkout implementa el flujo de venta: valida el carrito contra el
// stock vigente, descuenta stock y registra la venta inmutable.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

// Reintentos ante colisión del número de operación.
const maxOperationAttempts = 3

// MaxQuantity tope de unidades por producto en un pedido, sumando todas sus líneas.
const MaxQuantity = 1_000_000

// Resultados reportados al Recorder.
const (
	OutcomeCompleted         = "completed"
	OutcomeInvalid           = "invalid"
	OutcomeNotFound          = "not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeError             = "error"
)

var lastFourRe = regexp.MustCompile(`^[0-9]{4}$`)

// UseCase flujo de checkout.
type UseCase struct {
	tx      TxRunner
	ops     OperationNumbers
	metrics Recorder
	now     func() time.Time
	newID   func() string
}

// NewUseCase construye el caso de uso.
func NewUseCase(tx TxRunner, ops OperationNumbers) *UseCase {
	return &UseCase{
		tx:      tx,
		ops:     ops,
		metrics: nopRecorder{},
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// WithMetrics registra el resultado de cada checkout.
func (uc *UseCase) WithMetrics(r Recorder) *UseCase {
	if r != nil {
		uc.metrics = r
	}
	return uc
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// line cantidad total pedida de un producto (suma de todas sus líneas).
type line struct {
	productID string
	name      string // nombre enviado en la primera línea del producto
	quantity  int
}

// Checkout valida y registra una venta. Errores posibles, el primero que ocurra:
// *domain.ValidationError, *domain.ProductNotFoundError, *domain.InsufficientStockError
// o un error de almacenamiento envuelto.
//
// La verificación de existencia y stock, el descuento y el alta de la venta ocurren
// en una sola transacción sobre los productos involucrados: dos checkouts
// concurrentes no pueden sobrevender.
func (uc *UseCase) Checkout(ctx context.Context, in dto.CheckoutRequest) (*dto.SaleResponse, error) {
	sale, err := uc.checkout(ctx, in)
	if err != nil {
		uc.metrics.CheckoutFinished(outcomeOf(err), decimal.Zero, 0)
		return nil, err
	}
	uc.metrics.CheckoutFinished(OutcomeCompleted, sale.Total, sale.ItemCount())
	return dto.FromSale(sale), nil
}

func (uc *UseCase) checkout(ctx context.Context, in dto.CheckoutRequest) (*entity.Sale, error) {
	customer, lastFour, err := validate(in)
	if err != nil {
		return nil, err
	}
	lines, err := groupLines(in.Items)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.productID
	}

	for attempt := 1; ; attempt++ {
		now := uc.now()
		op, err := uc.ops.Next(now)
		if err != nil {
			return nil, err
		}
		sale := &entity.Sale{
			ID:              uc.newID(),
			OperationNumber: op,
			Date:            now,
			CustomerName:    customer,
			PaymentMethod:   in.PaymentMethod,
			LastFourDigits:  lastFour,
		}

		err = uc.tx.Run(ctx, ids, func(products repository.ProductRepository, sales repository.SaleRepository) error {
			return apply(ctx, products, sales, lines, in.Items, sale, now)
		})
		if err == nil {
			return sale, nil
		}
		if errors.Is(err, domain.ErrDuplicate) && attempt < maxOperationAttempts {
			continue
		}
		return nil, err
	}
}

// apply corre dentro de la transacción: existencia, stock, descuento y alta de la venta.
func apply(ctx context.Context, products repository.ProductRepository, sales repository.SaleRepository,
	lines []line, items []dto.CheckoutItem, sale *entity.Sale, now time.Time) error {

	current := make(map[string]*entity.Product, len(lines))
	for _, l := range lines {
		p, err := products.GetByID(ctx, l.productID)
		if err != nil {
			return err
		}
		if p == nil {
			return &domain.ProductNotFoundError{ProductID: l.productID, Name: l.name}
		}
		current[l.productID] = p
	}
	for _, l := range lines {
		p := current[l.productID]
		if !p.HasStock(l.quantity) {
			return &domain.InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Available: p.Stock,
				Requested: l.quantity,
			}
		}
	}

	for _, l := range lines {
		p := current[l.productID]
		p.Stock -= l.quantity
		p.UpdatedAt = now
		if err := products.Update(ctx, p); err != nil {
			return err
		}
	}

	sale.Items = freezeItems(items, current)
	sale.Total = entity.SumItems(sale.Items)
	return sales.Append(ctx, sale)
}

// validate aplica las reglas previas a tocar el store. Devuelve el nombre de
// cliente normalizado y los últimos cuatro dígitos (vacío si el pago no es con tarjeta).
func validate(in dto.CheckoutRequest) (customer, lastFour string, err error) {
	if len(in.Items) == 0 {
		return "", "", domain.NewValidationError("items", "el carrito está vacío")
	}
	customer = strings.TrimSpace(in.CustomerName)
	if customer == "" {
		return "", "", domain.NewValidationError("customerName", "el nombre del cliente es requerido")
	}
	switch in.PaymentMethod {
	case entity.PaymentCash:
	case entity.PaymentCard:
		lastFour = strings.TrimSpace(in.LastFourDigits)
		if !lastFourRe.MatchString(lastFour) {
			return "", "", domain.NewValidationError("lastFourDigits", "debe tener exactamente 4 dígitos")
		}
	default:
		return "", "", domain.NewValidationError("paymentMethod", "debe ser cash o card")
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.ID) == "" {
			return "", "", domain.NewValidationError("items.id", "cada línea debe referenciar un producto")
		}
		if it.Quantity <= 0 {
			return "", "", domain.NewValidationError("items.quantity", "la cantidad debe ser mayor a 0")
		}
		if it.Quantity > MaxQuantity {
			return "", "", domain.NewValidationError("items.quantity", fmt.Sprintf("la cantidad no puede superar %d", MaxQuantity))
		}
		if it.Price.IsNegative() {
			return "", "", domain.NewValidationError("items.price", "el precio no puede ser negativo")
		}
	}
	return customer, lastFour, nil
}

// groupLines suma cantidades por producto respetando el orden de primera aparición.
// Cada línea ya viene acotada por MaxQuantity, así que la suma no desborda antes del chequeo.
func groupLines(items []dto.CheckoutItem) ([]line, error) {
	idx := make(map[string]int, len(items))
	out := make([]line, 0, len(items))
	for _, it := range items {
		id := strings.TrimSpace(it.ID)
		if i, ok := idx[id]; ok {
			if out[i].quantity > MaxQuantity-it.Quantity {
				return nil, domain.NewValidationError("items.quantity",
					fmt.Sprintf("la cantidad total de %s no puede superar %d", id, MaxQuantity))
			}
			out[i].quantity += it.Quantity
			continue
		}
		idx[id] = len(out)
		out = append(out, line{productID: id, name: it.Name, quantity: it.Quantity})
	}
	return out, nil
}

// freezeItems copia las líneas enviadas: precio cotizado al cliente, nombre y
// unidad enviados (o los del producto si vinieron vacíos).
func freezeItems(items []dto.CheckoutItem, products map[string]*entity.Product) []entity.SaleItem {
	out := make([]entity.SaleItem, 0, len(items))
	for _, it := range items {
		p := products[strings.TrimSpace(it.ID)]
		name, unit := it.Name, it.Unit
		if name == "" {
			name = p.Name
		}
		if unit == "" {
			unit = p.Unit
		}
		out = append(out, entity.SaleItem{
			ProductID:   p.ID,
			ProductName: name,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Unit:        unit,
		})
	}
	return out
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return OutcomeInsufficientStock
	default:
		return OutcomeError
	}
}
