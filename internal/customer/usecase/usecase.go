package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rfandrade/creditledger/internal/customer"
	"github.com/rfandrade/creditledger/internal/customer/dto"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/pkg/apperr"
	"github.com/rfandrade/creditledger/pkg/logger"
	"go.uber.org/zap"
)

type customerUseCase struct {
	repo   customer.Repository
	orders customer.OrderLedger
	logger logger.ZapLogger
}

func NewCustomerUseCase(repo customer.Repository, orders customer.OrderLedger, log logger.ZapLogger) customer.UseCase {
	return &customerUseCase{
		repo:   repo,
		orders: orders,
		logger: log,
	}
}

func (uc *customerUseCase) CreateCustomer(ctx context.Context, input *dto.CreateCustomerInput) (*model.Customer, error) {
	if input.Name == "" {
		return nil, apperr.Validation("customer name is required")
	}

	now := time.Now()
	c := &model.Customer{
		BaseModel:         model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:              input.Name,
		Phone:             input.Phone,
		DefaultAddress:    input.DefaultAddress,
		DefaultFulfillway: input.DefaultFulfillway,
		Notes:             input.Notes,
		IsActive:          true,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *customerUseCase) UpdateCustomer(ctx context.Context, input *dto.UpdateCustomerInput) (*model.Customer, error) {
	c, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("customer", input.ID)
	}

	if input.Name != nil {
		c.Name = *input.Name
	}
	if input.Phone != nil {
		c.Phone = input.Phone
	}
	if input.DefaultAddress != nil {
		c.DefaultAddress = input.DefaultAddress
	}
	if input.DefaultFulfillway != nil {
		c.DefaultFulfillway = input.DefaultFulfillway
	}
	if input.Notes != nil {
		c.Notes = *input.Notes
	}
	if input.IsActive != nil {
		c.IsActive = *input.IsActive
	}

	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *customerUseCase) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("customer", id)
	}
	return c, nil
}

func (uc *customerUseCase) ListCustomers(ctx context.Context, f *dto.CustomerFilters) ([]model.Customer, int, error) {
	// the sweep rides on list reads; a failure degrades freshness, not the read
	if err := uc.SweepLate(ctx); err != nil {
		uc.logger.Error("late sweep failed during customer list", zap.Error(err))
	}
	return uc.repo.FindAll(ctx, f)
}

func (uc *customerUseCase) DeactivateCustomer(ctx context.Context, id string) error {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.NotFound("customer", id)
	}
	c.IsActive = false
	c.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, c)
}

func (uc *customerUseCase) BalanceDue(ctx context.Context, customerID string) (int64, error) {
	c, err := uc.repo.FindByID(ctx, customerID)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, apperr.NotFound("customer", customerID)
	}
	return uc.orders.OutstandingByCustomer(ctx, customerID)
}

func (uc *customerUseCase) AssignTag(ctx context.Context, input *dto.AssignTagInput) (*model.CustomerTag, error) {
	if input.Tag == "" {
		return nil, apperr.Validation("tag is required")
	}
	c, err := uc.repo.FindByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("customer", input.CustomerID)
	}

	tag := &model.CustomerTag{
		ID:         uuid.New().String(),
		CustomerID: input.CustomerID,
		Tag:        input.Tag,
		Reason:     input.Reason,
		CreatedAt:  time.Now(),
		ExpiresAt:  input.ExpiresAt,
	}
	if err := uc.repo.UpsertTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (uc *customerUseCase) RemoveTag(ctx context.Context, customerID, tag string) error {
	return uc.repo.DeleteTag(ctx, customerID, tag)
}

func (uc *customerUseCase) ListTags(ctx context.Context, customerID string) ([]model.CustomerTag, error) {
	return uc.repo.ListTags(ctx, customerID)
}

func (uc *customerUseCase) SweepLate(ctx context.Context) error {
	now := time.Now()
	overdue, err := uc.orders.FindOverdue(ctx, now)
	if err != nil {
		return err
	}

	lateCustomers := map[string]bool{}
	for _, o := range overdue {
		if o.LateSince == nil {
			if err := uc.orders.MarkLateSince(ctx, o.ID, now); err != nil {
				return err
			}
		}
		lateCustomers[o.CustomerID] = true
	}

	reason := "overdue balance"
	for customerID := range lateCustomers {
		tag := &model.CustomerTag{
			ID:         uuid.New().String(),
			CustomerID: customerID,
			Tag:        model.TagLate,
			Reason:     &reason,
			CreatedAt:  now,
		}
		if err := uc.repo.UpsertTag(ctx, tag); err != nil {
			return err
		}
	}

	// customers with no overdue order anymore shed the tag
	tagged, err := uc.repo.CustomersTagged(ctx, model.TagLate)
	if err != nil {
		return err
	}
	for _, customerID := range tagged {
		if !lateCustomers[customerID] {
			if err := uc.repo.DeleteTag(ctx, customerID, model.TagLate); err != nil {
				return err
			}
		}
	}

	if len(overdue) > 0 {
		uc.logger.Info("late sweep tagged customers",
			zap.Int("overdue_orders", len(overdue)),
			zap.Int("late_customers", len(lateCustomers)),
		)
	}
	return nil
}
