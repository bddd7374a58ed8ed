package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutItem línea del carrito tal como la envía el cliente.
type CheckoutItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Unit     string          `json:"unit"`
	Quantity int             `json:"quantity"`
}

// CheckoutRequest cuerpo de POST /sales.
type CheckoutRequest struct {
	Items          []CheckoutItem `json:"items"`
	PaymentMethod  string         `json:"paymentMethod"`
	CustomerName   string         `json:"customerName"`
	LastFourDigits string         `json:"lastFourDigits,omitempty"`
}

// SaleItemResponse copia congelada de la línea vendida.
type SaleItemResponse struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID              string             `json:"id"`
	OperationNumber string             `json:"operationNumber"`
	Date            time.Time          `json:"date"`
	CustomerName    string             `json:"customerName"`
	Items           []SaleItemResponse `json:"items"`
	Total           decimal.Decimal    `json:"total"`
	PaymentMethod   string             `json:"paymentMethod"`
	LastFourDigits  string             `json:"lastFourDigits,omitempty"`
}

// SaleEnvelope {success, sale}.
type SaleEnvelope struct {
	Success bool          `json:"success"`
	Sale    *SaleResponse `json:"sale"`
}

// SaleListEnvelope {success, sales}.
type SaleListEnvelope struct {
	Success bool           `json:"success"`
	Sales   []SaleResponse `json:"sales"`
}

// SalesSummary agregados del historial de ventas.
type SalesSummary struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalSales   int             `json:"totalSales"`
	TotalItems   int             `json:"totalItems"`
}

// SalesSummaryEnvelope {success, summary}.
type SalesSummaryEnvelope struct {
	Success bool         `json:"success"`
	Summary SalesSummary `json:"summary"`
}
