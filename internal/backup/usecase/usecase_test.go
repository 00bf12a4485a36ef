package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rfandrade/creditledger/internal/backup/dto"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/pkg/apperr"
	"github.com/rfandrade/creditledger/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo keeps the dataset as a payload, which makes replace/merge
// semantics easy to express.
type fakeRepo struct {
	data dto.File
}

func (f *fakeRepo) Snapshot(_ context.Context) (*dto.File, error) {
	cp := f.data
	return &cp, nil
}

func (f *fakeRepo) Replace(_ context.Context, in *dto.File) error {
	f.data = *in
	f.data.SchemaVersion = 0
	f.data.ExportedAt = 0
	return nil
}

func (f *fakeRepo) Merge(_ context.Context, in *dto.File) error {
	byID := map[string]int{}
	for i, c := range f.data.Customers {
		byID[c.ID] = i
	}
	for _, c := range in.Customers {
		if i, ok := byID[c.ID]; ok {
			f.data.Customers[i] = c
		} else {
			f.data.Customers = append(f.data.Customers, c)
		}
	}
	return nil
}

func sampleData() dto.File {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ppg := int64(900)
	return dto.File{
		Customers: []model.Customer{{
			BaseModel: model.BaseModel{ID: "c1", CreatedAt: now, UpdatedAt: now},
			Name:      "Dana",
			IsActive:  true,
		}},
		Products: []model.Product{{
			BaseModel:         model.BaseModel{ID: "p1", CreatedAt: now, UpdatedAt: now},
			Name:              "house blend",
			Quality:           model.QualityRegular,
			SellMode:          model.SellByWeight,
			PricePerGramCents: &ppg,
			IsActive:          true,
		}},
		Inventory: []model.Inventory{{ProductID: "p1", OnHandGrams: 250, UpdatedAt: now}},
		Orders: []model.Order{{
			BaseModel:     model.BaseModel{ID: "o1", CreatedAt: now, UpdatedAt: now},
			CustomerID:    "c1",
			Status:        model.StatusClosed,
			Method:        model.MethodPickup,
			SubtotalCents: 9000,
			TotalCents:    9000,
		}},
		Settings: model.DefaultSettings(),
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	repo := &fakeRepo{data: sampleData()}
	uc := NewBackupUseCase(repo, logger.NewNop())

	exported, err := uc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, exported.SchemaVersion)
	assert.NotZero(t, exported.ExportedAt)

	// serialize through the wire format like a real file would
	raw, err := json.Marshal(exported)
	require.NoError(t, err)
	var parsed dto.File
	require.NoError(t, json.Unmarshal(raw, &parsed))

	fresh := &fakeRepo{}
	uc2 := NewBackupUseCase(fresh, logger.NewNop())
	require.NoError(t, uc2.Import(context.Background(), &parsed, dto.ModeReplace))

	reExported, err := uc2.Export(context.Background())
	require.NoError(t, err)

	// field-for-field identical in every table
	assert.Equal(t, exported.Customers, reExported.Customers)
	assert.Equal(t, exported.Products, reExported.Products)
	assert.Equal(t, exported.Inventory, reExported.Inventory)
	assert.Equal(t, exported.Orders, reExported.Orders)
	assert.Equal(t, exported.Settings, reExported.Settings)
}

func TestWireFormatKeys(t *testing.T) {
	repo := &fakeRepo{data: sampleData()}
	uc := NewBackupUseCase(repo, logger.NewNop())

	exported, err := uc.Export(context.Background())
	require.NoError(t, err)
	raw, err := json.Marshal(exported)
	require.NoError(t, err)

	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &keys))
	for _, want := range []string{
		"schemaVersion", "exportedAt", "customers", "customerTags",
		"products", "inventory", "inventoryAdjustments", "orders",
		"orderItems", "payments", "fulfillments", "orderPolicies", "settings",
	} {
		assert.Contains(t, keys, want)
	}
}

func TestImportRejectsNewerSchema(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewBackupUseCase(repo, logger.NewNop())

	err := uc.Import(context.Background(), &dto.File{SchemaVersion: SchemaVersion + 1}, dto.ModeReplace)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestImportRejectsUnknownMode(t *testing.T) {
	repo := &fakeRepo{}
	uc := NewBackupUseCase(repo, logger.NewNop())

	err := uc.Import(context.Background(), &dto.File{SchemaVersion: 1}, "append")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestMergeUpsertsWithoutDeleting(t *testing.T) {
	repo := &fakeRepo{data: sampleData()}
	uc := NewBackupUseCase(repo, logger.NewNop())

	incoming := &dto.File{
		SchemaVersion: 1,
		Customers: []model.Customer{
			{BaseModel: model.BaseModel{ID: "c1"}, Name: "Dana R.", IsActive: true},
			{BaseModel: model.BaseModel{ID: "c2"}, Name: "Lee", IsActive: true},
		},
	}
	require.NoError(t, uc.Import(context.Background(), incoming, dto.ModeMerge))

	assert.Len(t, repo.data.Customers, 2)
	assert.Equal(t, "Dana R.", repo.data.Customers[0].Name)
	// merge never deletes: the product table is untouched
	assert.Len(t, repo.data.Products, 1)
}
