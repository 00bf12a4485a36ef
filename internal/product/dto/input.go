package dto

import "github.com/rfandrade/creditledger/internal/model"

type CreateProductInput struct {
	Name              string
	Quality           model.QualityTier
	SellMode          model.SellMode
	PricePerGramCents *int64
	PricePerUnitCents *int64
}

type UpdateProductInput struct {
	ID                string
	Name              *string
	Quality           *model.QualityTier
	SellMode          *model.SellMode
	PricePerGramCents *int64
	PricePerUnitCents *int64
	IsActive          *bool
}

type ProductFilters struct {
	Quality    string
	ActiveOnly bool
	Page       int
	PageSize   int
}
