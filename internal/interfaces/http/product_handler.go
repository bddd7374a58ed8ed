package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/application/usecase"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
)

// ProductHandler maneja el catálogo: lectura pública, escritura solo admin.
type ProductHandler struct {
	uc  *usecase.ProductUseCase
	log *logger.Logger
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, log *logger.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar productos
// @Description  Catálogo completo ordenado por fecha de creación descendente.
// @Tags         products
// @Produce      json
// @Success      200  {object}  dto.ProductListEnvelope
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ProductListEnvelope{Success: true, Products: out})
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductEnvelope
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ProductEnvelope{Success: true, Product: out})
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ProductEnvelope{Success: true, Product: out})
}

// Update godoc
// @Summary      Actualizar producto
// @Description  Actualización parcial: solo cambian los campos enviados.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.ProductEnvelope
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := bindAndValidate(c, &in); err != nil {
		return respondError(c, h.log, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ProductEnvelope{Success: true, Product: out})
}

// Delete godoc
// @Summary      Eliminar producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Product deleted successfully"})
}

// Reset godoc
// @Summary      Reiniciar catálogo
// @Description  Borra todos los productos y carga el catálogo de ejemplo. No es atómico.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CountResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /reset-products [post]
func (h *ProductHandler) Reset(c *fiber.Ctx) error {
	n, err := h.uc.ResetCatalog(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.log.Warn().Int("count", n).Str("user_id", GetUserID(c)).Msg("catálogo reiniciado")
	return c.JSON(dto.CountResponse{Success: true, Count: n})
}

// InitSampleData godoc
// @Summary      Cargar datos de ejemplo
// @Description  Carga el catálogo de ejemplo solo si no hay productos.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CountResponse
// @Router       /init-sample-data [post]
func (h *ProductHandler) InitSampleData(c *fiber.Ctx) error {
	n, created, err := h.uc.InitSampleData(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	msg := "Data already exists"
	if created {
		msg = "Sample data initialized"
	}
	return c.JSON(dto.CountResponse{Success: true, Message: msg, Count: n})
}
