package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. price acepta número o string numérico.
type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,min=0"`
	Unit        string           `json:"unit" validate:"required,max=50"`
	Category    string           `json:"category" validate:"max=100"`
	Stock       FlexInt          `json:"stock" validate:"min=0"`
	ImageURL    string           `json:"imageUrl"`
}

// UpdateProductRequest actualización parcial: solo se aplican los campos presentes.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,min=0"`
	Unit        *string          `json:"unit" validate:"omitempty,min=1,max=50"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Stock       *FlexInt         `json:"stock" validate:"omitempty,min=0"`
	ImageURL    *string          `json:"imageUrl"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductEnvelope {success, product}.
type ProductEnvelope struct {
	Success bool             `json:"success"`
	Product *ProductResponse `json:"product"`
}

// ProductListEnvelope {success, products}.
type ProductListEnvelope struct {
	Success  bool              `json:"success"`
	Products []ProductResponse `json:"products"`
}
