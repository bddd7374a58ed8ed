package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago (el cobro es simulado).
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// SaleItem copia congelada de los datos del producto al momento de la venta.
// No es una referencia viva: editar o borrar el producto no la altera.
type SaleItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
}

// Subtotal precio × cantidad de la línea.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale registro inmutable de una venta (clave sale:<id>). No existe operación de update ni delete.
type Sale struct {
	ID              string          `json:"id"`
	OperationNumber string          `json:"operationNumber"`
	Date            time.Time       `json:"date"`
	CustomerName    string          `json:"customerName"`
	Items           []SaleItem      `json:"items"`
	Total           decimal.Decimal `json:"total"` // se calcula una vez al crear
	PaymentMethod   string          `json:"paymentMethod"`
	LastFourDigits  string          `json:"lastFourDigits,omitempty"` // solo si PaymentMethod == card
}

// ItemCount suma de unidades vendidas.
func (s *Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

// SumItems total de la venta a partir de sus líneas.
func SumItems(items []SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
