// Package dto define los cuerpos de entrada y salida de la API.
package dto

import "github.com/shopspring/decimal"

func init() {
	// Los montos viajan como números JSON (25.99), no como strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrorResponse cuerpo de error HTTP: {success:false, error, code}.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// MessageResponse respuesta exitosa sin datos.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CountResponse respuesta de operaciones masivas (reset e init del catálogo).
type CountResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count"`
}
