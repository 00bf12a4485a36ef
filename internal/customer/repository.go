package customer

import (
	"context"
	"time"

	"github.com/rfandrade/creditledger/internal/customer/dto"
	"github.com/rfandrade/creditledger/internal/model"
)

type Repository interface {
	Create(ctx context.Context, c *model.Customer) error
	Update(ctx context.Context, c *model.Customer) error
	// FindByID returns nil when no customer exists.
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	FindAll(ctx context.Context, f *dto.CustomerFilters) ([]model.Customer, int, error)

	// UpsertTag keys on (customer_id, tag), so at most one row per pair can
	// ever exist; re-tagging refreshes reason and expiry in place.
	UpsertTag(ctx context.Context, tag *model.CustomerTag) error
	DeleteTag(ctx context.Context, customerID, tag string) error
	ListTags(ctx context.Context, customerID string) ([]model.CustomerTag, error)
	// CustomersTagged returns the IDs of customers currently carrying the tag.
	CustomersTagged(ctx context.Context, tag string) ([]string, error)
}

// OrderLedger is the slice of order state the aggregator reads: outstanding
// balances and overdue orders. Implemented by the order repository.
type OrderLedger interface {
	OutstandingByCustomer(ctx context.Context, customerID string) (int64, error)
	// FindOverdue returns OPEN/PARTIAL orders past their due date that still
	// carry a balance.
	FindOverdue(ctx context.Context, asOf time.Time) ([]model.Order, error)
	MarkLateSince(ctx context.Context, orderID string, at time.Time) error
}
