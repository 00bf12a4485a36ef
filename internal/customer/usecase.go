package customer

import (
	"context"

	"github.com/rfandrade/creditledger/internal/customer/dto"
	"github.com/rfandrade/creditledger/internal/model"
)

type UseCase interface {
	CreateCustomer(ctx context.Context, input *dto.CreateCustomerInput) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, input *dto.UpdateCustomerInput) (*model.Customer, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	// ListCustomers runs the late sweep before reading, so the list always
	// reflects current LATE tagging.
	ListCustomers(ctx context.Context, f *dto.CustomerFilters) ([]model.Customer, int, error)
	DeactivateCustomer(ctx context.Context, id string) error

	// BalanceDue sums max(0, total - paid) over the customer's OPEN and
	// PARTIAL orders.
	BalanceDue(ctx context.Context, customerID string) (int64, error)

	AssignTag(ctx context.Context, input *dto.AssignTagInput) (*model.CustomerTag, error)
	RemoveTag(ctx context.Context, customerID, tag string) error
	ListTags(ctx context.Context, customerID string) ([]model.CustomerTag, error)

	// SweepLate marks overdue orders late-since once and reconciles LATE
	// tags across all customers. Idempotent; safe to re-run concurrently.
	SweepLate(ctx context.Context) error
}
