// Package catalog contiene el catálogo semilla de la ferretería.
package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
)

type sample struct {
	name, description, price, unit, category string
	stock                                    int
	imageURL                                 string
}

var samples = []sample{
	{"Martillo de Acero", "Martillo profesional con mango de fibra de vidrio", "25.99", "unidad", "Herramientas", 50,
		"https://images.unsplash.com/photo-1504148455328-c376907d081c?w=400"},
	{"Destornillador Set", "Juego de 6 destornilladores de precision", "15.50", "set", "Herramientas", 30,
		"https://images.unsplash.com/photo-1530124566582-a618bc2615dc?w=400"},
	{"Tornillos Galvanizados", "Tornillos galvanizados 3/4 pulgada", "8.99", "caja (100 unidades)", "Fijaciones", 100,
		"https://images.unsplash.com/photo-1565193566173-7a0ee3dbe261?w=400"},
	{"Taladro Eléctrico", "Taladro eléctrico 750W con velocidad variable", "89.99", "unidad", "Herramientas Eléctricas", 15,
		"https://images.unsplash.com/photo-1572981779307-38b8cabb2407?w=400"},
	{"Pintura Interior Blanca", "Pintura latex lavable para interiores", "45.00", "galón", "Pinturas", 25,
		"https://images.unsplash.com/photo-1589939705384-5185137a7f0f?w=400"},
	{"Cinta Métrica 5m", "Cinta métrica profesional con freno automático", "12.50", "unidad", "Medición", 40,
		"https://images.unsplash.com/photo-1625225233840-695456021cde?w=400"},
}

// SampleProducts construye el set fijo de productos de ejemplo con IDs nuevos.
func SampleProducts(now time.Time) []*entity.Product {
	out := make([]*entity.Product, 0, len(samples))
	for _, s := range samples {
		out = append(out, &entity.Product{
			ID:          uuid.New().String(),
			Name:        s.name,
			Description: s.description,
			Price:       decimal.RequireFromString(s.price),
			Unit:        s.unit,
			Category:    s.category,
			Stock:       s.stock,
			ImageURL:    s.imageURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return out
}
