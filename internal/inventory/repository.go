package inventory

import (
	"context"

	"github.com/rfandrade/creditledger/internal/inventory/dto"
	"github.com/rfandrade/creditledger/internal/model"
)

type Repository interface {
	// GetByProduct returns nil when the product has no inventory row yet.
	GetByProduct(ctx context.Context, productID string) (*model.Inventory, error)
	FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.Inventory, int, error)

	Upsert(ctx context.Context, inv *model.Inventory) error

	// ApplyWithAdjustment writes the audit row and the new counters in one
	// transaction, adjustment insert first.
	ApplyWithAdjustment(ctx context.Context, inv *model.Inventory, adj *model.InventoryAdjustment) error

	ListAdjustments(ctx context.Context, f *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error)
}
