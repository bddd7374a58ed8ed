package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ferreteria-api/internal/application/checkout"
	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
)

// SaleHandler checkout y consulta de ventas.
type SaleHandler struct {
	checkout *checkout.UseCase
	sales    *sales.UseCase
	log      *logger.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(co *checkout.UseCase, su *sales.UseCase, log *logger.Logger) *SaleHandler {
	return &SaleHandler{checkout: co, sales: su, log: log}
}

// Create godoc
// @Summary      Registrar venta (checkout)
// @Description  Valida el carrito, descuenta stock y registra la venta en una sola transacción.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutRequest  true  "Carrito y datos de pago"
// @Success      201   {object}  dto.SaleEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CheckoutRequest
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, h.log, fmt.Errorf("%w: %v", errInvalidBody, err))
	}
	out, err := h.checkout.Checkout(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Info().
		Str("sale_id", out.ID).
		Str("operation", out.OperationNumber).
		Str("total", out.Total.StringFixed(2)).
		Msg("venta registrada")
	return c.Status(fiber.StatusCreated).JSON(dto.SaleEnvelope{Success: true, Sale: out})
}

// List godoc
// @Summary      Historial de ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SaleListEnvelope
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	out, err := h.sales.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SaleListEnvelope{Success: true, Sales: out})
}

// Summary godoc
// @Summary      Resumen de ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SalesSummaryEnvelope
// @Router       /sales/summary [get]
func (h *SaleHandler) Summary(c *fiber.Ctx) error {
	out, err := h.sales.Summary(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SalesSummaryEnvelope{Success: true, Summary: *out})
}

// GetByID godoc
// @Summary      Obtener venta por ID
// @Tags         sales
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleEnvelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.sales.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SaleEnvelope{Success: true, Sale: out})
}

// Receipt godoc
// @Summary      Comprobante PDF
// @Tags         sales
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /sales/{id}/receipt [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	pdf, op, err := h.sales.Receipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s.pdf"`, op))
	return c.Send(pdf)
}
