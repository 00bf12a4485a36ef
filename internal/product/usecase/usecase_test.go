package usecase

import (
	"context"
	"testing"

	invdto "github.com/rfandrade/creditledger/internal/inventory/dto"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/product/dto"
	"github.com/rfandrade/creditledger/pkg/apperr"
	"github.com/rfandrade/creditledger/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	rows map[string]*model.Product
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[string]*model.Product{}}
}

func (f *fakeRepo) Create(_ context.Context, p *model.Product) error {
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeRepo) Update(_ context.Context, p *model.Product) error {
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*model.Product, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) FindAll(_ context.Context, _ *dto.ProductFilters) ([]model.Product, int, error) {
	var out []model.Product
	for _, p := range f.rows {
		out = append(out, *p)
	}
	return out, len(out), nil
}

type fakeInvRepo struct {
	rows map[string]*model.Inventory
}

func newFakeInvRepo() *fakeInvRepo {
	return &fakeInvRepo{rows: map[string]*model.Inventory{}}
}

func (f *fakeInvRepo) GetByProduct(_ context.Context, productID string) (*model.Inventory, error) {
	inv, ok := f.rows[productID]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvRepo) FindAll(_ context.Context, _ *invdto.InventoryFilters) ([]model.Inventory, int, error) {
	return nil, 0, nil
}

func (f *fakeInvRepo) Upsert(_ context.Context, inv *model.Inventory) error {
	cp := *inv
	f.rows[inv.ProductID] = &cp
	return nil
}

func (f *fakeInvRepo) ApplyWithAdjustment(_ context.Context, inv *model.Inventory, _ *model.InventoryAdjustment) error {
	cp := *inv
	f.rows[inv.ProductID] = &cp
	return nil
}

func (f *fakeInvRepo) ListAdjustments(_ context.Context, _ *invdto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error) {
	return nil, 0, nil
}

func ptrInt64(v int64) *int64 { return &v }

func TestCreateProductSeedsInventoryRow(t *testing.T) {
	repo := newFakeRepo()
	invRepo := newFakeInvRepo()
	uc := NewProductUseCase(repo, invRepo, logger.NewNop())

	p, err := uc.CreateProduct(context.Background(), &dto.CreateProductInput{
		Name:              "house blend",
		Quality:           model.QualityRegular,
		SellMode:          model.SellByWeight,
		PricePerGramCents: ptrInt64(900),
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	assert.True(t, p.IsActive)

	inv, err := invRepo.GetByProduct(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Zero(t, inv.OnHandGrams)
	assert.Zero(t, inv.OnHandUnits)
}

func TestCreateProductPricingValidation(t *testing.T) {
	uc := NewProductUseCase(newFakeRepo(), newFakeInvRepo(), logger.NewNop())

	cases := []struct {
		name  string
		input dto.CreateProductInput
	}{
		{"weight without gram price", dto.CreateProductInput{
			Name: "x", Quality: model.QualityRegular, SellMode: model.SellByWeight,
		}},
		{"unit without unit price", dto.CreateProductInput{
			Name: "x", Quality: model.QualityRegular, SellMode: model.SellByUnit,
		}},
		{"both with only gram price", dto.CreateProductInput{
			Name: "x", Quality: model.QualityRegular, SellMode: model.SellBoth,
			PricePerGramCents: ptrInt64(900),
		}},
		{"zero price", dto.CreateProductInput{
			Name: "x", Quality: model.QualityRegular, SellMode: model.SellByWeight,
			PricePerGramCents: ptrInt64(0),
		}},
		{"unknown sell mode", dto.CreateProductInput{
			Name: "x", Quality: model.QualityRegular, SellMode: "BULK",
		}},
		{"missing name", dto.CreateProductInput{
			Quality: model.QualityRegular, SellMode: model.SellByWeight,
			PricePerGramCents: ptrInt64(900),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.CreateProduct(context.Background(), &tc.input)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestUpdateProductRevalidatesPricing(t *testing.T) {
	repo := newFakeRepo()
	uc := NewProductUseCase(repo, newFakeInvRepo(), logger.NewNop())

	p, err := uc.CreateProduct(context.Background(), &dto.CreateProductInput{
		Name:              "preroll",
		Quality:           model.QualityRegular,
		SellMode:          model.SellByUnit,
		PricePerUnitCents: ptrInt64(500),
	})
	require.NoError(t, err)

	// switching to weight without a gram price must fail
	mode := model.SellByWeight
	_, err = uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{ID: p.ID, SellMode: &mode})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUpdateProductNotFound(t *testing.T) {
	uc := NewProductUseCase(newFakeRepo(), newFakeInvRepo(), logger.NewNop())

	name := "renamed"
	_, err := uc.UpdateProduct(context.Background(), &dto.UpdateProductInput{ID: "missing", Name: &name})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeactivateProductIsSoft(t *testing.T) {
	repo := newFakeRepo()
	uc := NewProductUseCase(repo, newFakeInvRepo(), logger.NewNop())

	p, err := uc.CreateProduct(context.Background(), &dto.CreateProductInput{
		Name:              "house blend",
		Quality:           model.QualityRegular,
		SellMode:          model.SellByWeight,
		PricePerGramCents: ptrInt64(900),
	})
	require.NoError(t, err)

	require.NoError(t, uc.DeactivateProduct(context.Background(), p.ID))

	kept, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.False(t, kept.IsActive)
}
