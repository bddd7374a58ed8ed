package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ferreteria-api/internal/application/dto"
	"github.com/jhoicas/ferreteria-api/internal/domain"
	"github.com/jhoicas/ferreteria-api/internal/domain/catalog"
	"github.com/jhoicas/ferreteria-api/internal/domain/entity"
	"github.com/jhoicas/ferreteria-api/internal/domain/repository"
)

// ProductTxRunner ejecuta fn con repositorios atados a una transacción que aísla
// los productos indicados. Lo implementa *kvrepo.TxRunner.
type ProductTxRunner interface {
	Run(ctx context.Context, productIDs []string, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// ProductUseCase casos de uso del catálogo: CRUD, reinicio y carga inicial.
type ProductUseCase struct {
	repo repository.ProductRepository
	tx   ProductTxRunner
	now  func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, now: time.Now}
}

// WithTxRunner hace que Update lea y escriba el producto dentro de una transacción,
// serializado con el checkout: un descuento de stock confirmado entre la lectura y
// la escritura no se pisa. Sin runner, Update lee y escribe directo sobre repo.
func (uc *ProductUseCase) WithTxRunner(tx ProductTxRunner) *ProductUseCase {
	uc.tx = tx
	return uc
}

// WithClock reemplaza el reloj (tests).
func (uc *ProductUseCase) WithClock(now func() time.Time) *ProductUseCase {
	uc.now = now
	return uc
}

// Create crea un producto. Valores por defecto: stock 0, categoría "General".
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name, unit := strings.TrimSpace(in.Name), strings.TrimSpace(in.Unit)
	if name == "" {
		return nil, domain.NewValidationError("name", "es requerido")
	}
	if unit == "" {
		return nil, domain.NewValidationError("unit", "es requerido")
	}
	if in.Price == nil {
		return nil, domain.NewValidationError("price", "es requerido")
	}
	if err := checkPrice(*in.Price); err != nil {
		return nil, err
	}
	if err := checkStock(int(in.Stock)); err != nil {
		return nil, err
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = entity.DefaultCategory
	}
	now := uc.now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		Price:       *in.Price,
		Unit:        unit,
		Category:    category,
		Stock:       int(in.Stock),
		ImageURL:    in.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return dto.FromProduct(product), nil
}

// GetByID devuelve domain.ErrNotFound si el producto no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.FromProduct(product), nil
}

// Update aplica solo los campos presentes; id y createdAt no cambian.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var product *entity.Product
	apply := func(repo repository.ProductRepository) error {
		p, err := find(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := uc.merge(p, in); err != nil {
			return err
		}
		if err := repo.Update(ctx, p); err != nil {
			return err
		}
		product = p
		return nil
	}

	var err error
	if uc.tx != nil {
		err = uc.tx.Run(ctx, []string{id}, func(products repository.ProductRepository, _ repository.SaleRepository) error {
			return apply(products)
		})
	} else {
		err = apply(uc.repo)
	}
	if err != nil {
		return nil, err
	}
	return dto.FromProduct(product), nil
}

func (uc *ProductUseCase) merge(product *entity.Product, in dto.UpdateProductRequest) error {
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return domain.NewValidationError("name", "no puede estar vacío")
		}
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if err := checkPrice(*in.Price); err != nil {
			return err
		}
		product.Price = *in.Price
	}
	if in.Unit != nil {
		if strings.TrimSpace(*in.Unit) == "" {
			return domain.NewValidationError("unit", "no puede estar vacío")
		}
		product.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Stock != nil {
		if err := checkStock(int(*in.Stock)); err != nil {
			return err
		}
		product.Stock = int(*in.Stock)
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
	}
	product.UpdatedAt = uc.now()
	return nil
}

// List devuelve el catálogo completo, más recientes primero.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *dto.FromProduct(p))
	}
	return items, nil
}

// Delete borra definitivamente el producto. Las ventas ya registradas no cambian.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.find(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// ResetCatalog borra todos los productos y carga el catálogo de ejemplo.
// Las dos fases no son atómicas: si la segunda falla el catálogo queda vacío.
func (uc *ProductUseCase) ResetCatalog(ctx context.Context) (int, error) {
	if _, err := uc.repo.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("reset catálogo (borrado): %w", err)
	}
	seed := catalog.SampleProducts(uc.now())
	if err := uc.repo.CreateMany(ctx, seed); err != nil {
		return 0, fmt.Errorf("reset catálogo (carga): %w", err)
	}
	return len(seed), nil
}

// InitSampleData carga el catálogo de ejemplo solo si no hay productos.
// Devuelve la cantidad cargada o la existente, y si hubo carga.
func (uc *ProductUseCase) InitSampleData(ctx context.Context) (count int, created bool, err error) {
	existing, err := uc.repo.List(ctx)
	if err != nil {
		return 0, false, err
	}
	if len(existing) > 0 {
		return len(existing), false, nil
	}
	seed := catalog.SampleProducts(uc.now())
	if err := uc.repo.CreateMany(ctx, seed); err != nil {
		return 0, false, err
	}
	return len(seed), true, nil
}

func (uc *ProductUseCase) find(ctx context.Context, id string) (*entity.Product, error) {
	return find(ctx, uc.repo, id)
}

func find(ctx context.Context, repo repository.ProductRepository, id string) (*entity.Product, error) {
	product, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return product, nil
}

func checkPrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return domain.NewValidationError("price", "no puede ser negativo")
	}
	return nil
}

func checkStock(s int) error {
	if s < 0 {
		return domain.NewValidationError("stock", "no puede ser negativo")
	}
	return nil
}
