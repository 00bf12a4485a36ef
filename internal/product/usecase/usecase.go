package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rfandrade/creditledger/internal/inventory"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/product"
	"github.com/rfandrade/creditledger/internal/product/dto"
	"github.com/rfandrade/creditledger/pkg/apperr"
	"github.com/rfandrade/creditledger/pkg/logger"
	"go.uber.org/zap"
)

type productUseCase struct {
	repo    product.Repository
	invRepo inventory.Repository
	logger  logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, invRepo inventory.Repository, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:    repo,
		invRepo: invRepo,
		logger:  log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if input.Name == "" {
		return nil, apperr.Validation("product name is required")
	}
	if err := validatePricing(input.SellMode, input.PricePerGramCents, input.PricePerUnitCents); err != nil {
		return nil, err
	}

	now := time.Now()
	p := &model.Product{
		BaseModel:         model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:              input.Name,
		Quality:           input.Quality,
		SellMode:          input.SellMode,
		PricePerGramCents: input.PricePerGramCents,
		PricePerUnitCents: input.PricePerUnitCents,
		IsActive:          true,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	// every product carries an inventory row from day one
	if err := uc.invRepo.Upsert(ctx, &model.Inventory{ProductID: p.ID, UpdatedAt: now}); err != nil {
		return nil, err
	}

	uc.logger.Info("product created", zap.String("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("product", input.ID)
	}

	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Quality != nil {
		p.Quality = *input.Quality
	}
	if input.SellMode != nil {
		p.SellMode = *input.SellMode
	}
	if input.PricePerGramCents != nil {
		p.PricePerGramCents = input.PricePerGramCents
	}
	if input.PricePerUnitCents != nil {
		p.PricePerUnitCents = input.PricePerUnitCents
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	if err := validatePricing(p.SellMode, p.PricePerGramCents, p.PricePerUnitCents); err != nil {
		return nil, err
	}

	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("product", id)
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	return uc.repo.FindAll(ctx, f)
}

func (uc *productUseCase) DeactivateProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("product", id)
	}
	p.IsActive = false
	p.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, p)
}

func validatePricing(mode model.SellMode, perGram, perUnit *int64) error {
	switch mode {
	case model.SellByWeight:
		if perGram == nil || *perGram <= 0 {
			return apperr.Validation("weight-sold products need a positive price per gram")
		}
	case model.SellByUnit:
		if perUnit == nil || *perUnit <= 0 {
			return apperr.Validation("unit-sold products need a positive price per unit")
		}
	case model.SellBoth:
		if perGram == nil || *perGram <= 0 || perUnit == nil || *perUnit <= 0 {
			return apperr.Validation("dual-mode products need positive prices per gram and per unit")
		}
	default:
		return apperr.Validation("unknown sell mode %q", mode)
	}
	return nil
}
