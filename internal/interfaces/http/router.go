package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ferreteria-api/internal/application/auth"
	"github.com/jhoicas/ferreteria-api/internal/application/checkout"
	"github.com/jhoicas/ferreteria-api/internal/application/sales"
	"github.com/jhoicas/ferreteria-api/internal/application/usecase"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Prefix     string
	ProductUC  *usecase.ProductUseCase
	CheckoutUC *checkout.UseCase
	SalesUC    *sales.UseCase
	AuthUC     *auth.AuthUseCase
	Logger     *logger.Logger
}

// Router registra las rutas de la tienda bajo deps.Prefix.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group(deps.Prefix)

	requireAuth := AuthMiddleware(deps.AuthUC)
	adminOnly := []fiber.Handler{requireAuth, RequireRole(entity.RoleAdmin)}

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, log)
	api.Post("/signup", OptionalAuth(deps.AuthUC), authHandler.Signup)
	api.Post("/login", authHandler.Login)
	api.Get("/me", requireAuth, authHandler.Me)

	// Catálogo: lectura pública, escritura admin
	productHandler := NewProductHandler(deps.ProductUC, log)
	api.Get("/products", productHandler.List)
	api.Get("/products/:id", productHandler.GetByID)
	api.Post("/products", append(adminOnly, productHandler.Create)...)
	api.Put("/products/:id", append(adminOnly, productHandler.Update)...)
	api.Delete("/products/:id", append(adminOnly, productHandler.Delete)...)
	api.Post("/reset-products", append(adminOnly, productHandler.Reset)...)
	api.Post("/init-sample-data", append(adminOnly, productHandler.InitSampleData)...)

	// Ventas. /sales/summary antes de /sales/:id
	saleHandler := NewSaleHandler(deps.CheckoutUC, deps.SalesUC, log)
	api.Post("/sales", saleHandler.Create)
	api.Get("/sales", append(adminOnly, saleHandler.List)...)
	api.Get("/sales/summary", append(adminOnly, saleHandler.Summary)...)
	api.Get("/sales/:id", saleHandler.GetByID)
	api.Get("/sales/:id/receipt", saleHandler.Receipt)
}
