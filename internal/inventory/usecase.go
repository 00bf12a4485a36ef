package inventory

import (
	"context"

	"github.com/rfandrade/creditledger/internal/inventory/dto"
	"github.com/rfandrade/creditledger/internal/model"
)

type UseCase interface {
	GetProductInventory(ctx context.Context, productID string) (*model.Inventory, error)
	List(ctx context.Context, f *dto.InventoryFilters) ([]model.Inventory, int, error)

	// Reserve promises stock to an order. Reserving past on-hand is an
	// invariant violation unless the input allows backorder.
	Reserve(ctx context.Context, input *dto.MovementInput) (*model.Inventory, error)
	// Release returns promised stock, clamped at zero so a double release
	// is harmless.
	Release(ctx context.Context, input *dto.MovementInput) (*model.Inventory, error)
	// Fulfill moves goods out of the building: decrements on-hand and the
	// reservation together, each clamped at zero.
	Fulfill(ctx context.Context, input *dto.MovementInput) (*model.Inventory, error)

	Adjust(ctx context.Context, input *dto.AdjustInput) (*model.Inventory, error)
	ListAdjustments(ctx context.Context, f *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error)
}
