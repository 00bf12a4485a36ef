package product

import (
	"context"

	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/product/dto"
)

type UseCase interface {
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error)
	// DeactivateProduct soft-deactivates; products are never hard-deleted
	// outside a bulk data clear.
	DeactivateProduct(ctx context.Context, id string) error
}
