package dto

import "github.com/jhoicas/ferreteria-api/internal/domain/entity"

// FromProduct convierte la entidad a su representación de salida.
func FromProduct(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Unit:        p.Unit,
		Category:    p.Category,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromSale(s *entity.Sale) *SaleResponse {
	if s == nil {
		return nil
	}
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, SaleItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Unit:        it.Unit,
		})
	}
	return &SaleResponse{
		ID:              s.ID,
		OperationNumber: s.OperationNumber,
		Date:            s.Date,
		CustomerName:    s.CustomerName,
		Items:           items,
		Total:           s.Total,
		PaymentMethod:   s.PaymentMethod,
		LastFourDigits:  s.LastFourDigits,
	}
}

// FromUser nunca incluye el hash de la contraseña.
func FromUser(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
