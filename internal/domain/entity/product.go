package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categoría por defecto cuando el producto se crea sin una.
const DefaultCategory = "General"

// Product representa un artículo del catálogo de la ferretería.
// Se persiste como JSON bajo la clave product:<id>; los tags json son el formato almacenado.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"` // soles
	Unit        string          `json:"unit"`  // unidad, set, galón, caja (100 unidades)...
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// HasStock indica si hay al menos qty unidades disponibles.
func (p *Product) HasStock(qty int) bool {
	return p.Stock >= qty
}
