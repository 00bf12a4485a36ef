package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rfandrade/creditledger/internal/inventory"
	"github.com/rfandrade/creditledger/internal/inventory/dto"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/pkg/apperr"
	"github.com/rfandrade/creditledger/pkg/cache"
	"github.com/rfandrade/creditledger/pkg/logger"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	locker cache.Locker
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, locker cache.Locker, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		locker: locker,
		logger: log,
	}
}

func (uc *inventoryUseCase) GetProductInventory(ctx context.Context, productID string) (*model.Inventory, error) {
	inv, err := uc.repo.GetByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperr.NotFound("inventory for product", productID)
	}
	return inv, nil
}

func (uc *inventoryUseCase) List(ctx context.Context, f *dto.InventoryFilters) ([]model.Inventory, int, error) {
	return uc.repo.FindAll(ctx, f)
}

// withProductLock serializes every read-modify-write on one product's
// counters so interleaved mutations can't lose an update.
func (uc *inventoryUseCase) withProductLock(ctx context.Context, productID string, fn func() error) error {
	lockKey := fmt.Sprintf("lock:inventory:%s", productID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire inventory lock", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return apperr.Conflict("inventory busy for product %s, try again", productID)
	}
	defer uc.locker.ReleaseLock(ctx, lockKey, lockValue)

	return fn()
}

func (uc *inventoryUseCase) Reserve(ctx context.Context, input *dto.MovementInput) (*model.Inventory, error) {
	if input.Grams < 0 || input.Units < 0 {
		return nil, apperr.Validation("reserve quantities must not be negative")
	}

	var out *model.Inventory
	err := uc.withProductLock(ctx, input.ProductID, func() error {
		inv, err := uc.repo.GetByProduct(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if inv == nil {
			return apperr.NotFound("inventory for product", input.ProductID)
		}

		newReservedGrams := inv.ReservedGrams + input.Grams
		newReservedUnits := inv.ReservedUnits + input.Units
		if !input.AllowBackorder &&
			(newReservedGrams > inv.OnHandGrams || newReservedUnits > inv.OnHandUnits) {
			return apperr.Invariant(
				"reserving %.1fg/%du on product %s would exceed on-hand (%.1fg/%du on hand, %.1fg/%du already reserved)",
				input.Grams, input.Units, input.ProductID,
				inv.OnHandGrams, inv.OnHandUnits, inv.ReservedGrams, inv.ReservedUnits,
			)
		}

		inv.ReservedGrams = newReservedGrams
		inv.ReservedUnits = newReservedUnits
		inv.UpdatedAt = time.Now()
		if err := uc.repo.Upsert(ctx, inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	return out, err
}

func (uc *inventoryUseCase) Release(ctx context.Context, input *dto.MovementInput) (*model.Inventory, error) {
	if input.Grams < 0 || input.Units < 0 {
		return nil, apperr.Validation("release quantities must not be negative")
	}

	var out *model.Inventory
	err := uc.withProductLock(ctx, input.ProductID, func() error {
		inv, err := uc.repo.GetByProduct(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if inv == nil {
			return apperr.NotFound("inventory for product", input.ProductID)
		}

		// clamp at zero: a double release must not drive reserved negative
		inv.ReservedGrams = clampGrams(inv.ReservedGrams - input.Grams)
		inv.ReservedUnits = clampUnits(inv.ReservedUnits - input.Units)
		inv.UpdatedAt = time.Now()
		if err := uc.repo.Upsert(ctx, inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	return out, err
}

func (uc *inventoryUseCase) Fulfill(ctx context.Context, input *dto.MovementInput) (*model.Inventory, error) {
	if input.Grams < 0 || input.Units < 0 {
		return nil, apperr.Validation("fulfill quantities must not be negative")
	}

	var out *model.Inventory
	err := uc.withProductLock(ctx, input.ProductID, func() error {
		inv, err := uc.repo.GetByProduct(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if inv == nil {
			return apperr.NotFound("inventory for product", input.ProductID)
		}

		// goods leave the building and the reservation is consumed in the
		// same movement
		inv.OnHandGrams = clampGrams(inv.OnHandGrams - input.Grams)
		inv.OnHandUnits = clampUnits(inv.OnHandUnits - input.Units)
		inv.ReservedGrams = clampGrams(inv.ReservedGrams - input.Grams)
		inv.ReservedUnits = clampUnits(inv.ReservedUnits - input.Units)
		inv.UpdatedAt = time.Now()
		if err := uc.repo.Upsert(ctx, inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	return out, err
}

func (uc *inventoryUseCase) Adjust(ctx context.Context, input *dto.AdjustInput) (*model.Inventory, error) {
	if err := validateAdjust(input); err != nil {
		return nil, err
	}

	var out *model.Inventory
	err := uc.withProductLock(ctx, input.ProductID, func() error {
		inv, err := uc.repo.GetByProduct(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if inv == nil {
			return apperr.NotFound("inventory for product", input.ProductID)
		}

		newGrams := inv.OnHandGrams + input.GramsDelta
		newUnits := inv.OnHandUnits + input.UnitsDelta
		if newGrams < 0 || newUnits < 0 {
			return apperr.Invariant(
				"adjustment would leave product %s with negative on-hand stock",
				input.ProductID,
			)
		}

		now := time.Now()
		inv.OnHandGrams = newGrams
		inv.OnHandUnits = newUnits
		inv.UpdatedAt = now

		adj := &model.InventoryAdjustment{
			ID:         uuid.New().String(),
			ProductID:  input.ProductID,
			Type:       input.Type,
			GramsDelta: input.GramsDelta,
			UnitsDelta: input.UnitsDelta,
			Note:       input.Note,
			CreatedAt:  now,
		}

		if err := uc.repo.ApplyWithAdjustment(ctx, inv, adj); err != nil {
			return err
		}
		out = inv
		return nil
	})
	return out, err
}

func (uc *inventoryUseCase) ListAdjustments(ctx context.Context, f *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error) {
	return uc.repo.ListAdjustments(ctx, f)
}

func validateAdjust(input *dto.AdjustInput) error {
	if input.GramsDelta == 0 && input.UnitsDelta == 0 {
		return apperr.Validation("adjustment must change grams or units")
	}
	switch input.Type {
	case model.AdjustRestock:
		if input.GramsDelta < 0 || input.UnitsDelta < 0 {
			return apperr.Validation("RESTOCK cannot remove stock")
		}
	case model.AdjustWaste:
		if input.GramsDelta > 0 || input.UnitsDelta > 0 {
			return apperr.Validation("WASTE cannot add stock")
		}
	case model.AdjustCorrection:
		// either direction
	default:
		return apperr.Validation("unknown adjustment type %q", input.Type)
	}
	return nil
}

func clampGrams(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampUnits(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
