package product

import (
	"context"

	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/product/dto"
)

type Repository interface {
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	// FindByID returns nil when no product exists.
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error)
}
