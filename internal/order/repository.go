package order

import (
	"context"
	"time"

	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/order/dto"
)

type Repository interface {
	// Create writes the order, its items, its policy snapshot, and the
	// optional initial payment in one transaction.
	Create(ctx context.Context, o *model.Order, items []model.OrderItem, pol *model.OrderPolicy, initialPayment *model.Payment) error

	// FindByID returns nil when no order exists.
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error)

	ListItems(ctx context.Context, orderID string) ([]model.OrderItem, error)
	ListPayments(ctx context.Context, orderID string) ([]model.Payment, error)
	ListFulfillments(ctx context.Context, orderID string) ([]model.Fulfillment, error)
	GetPolicy(ctx context.Context, orderID string) (*model.OrderPolicy, error)

	AddPayment(ctx context.Context, p *model.Payment) error
	AddFulfillment(ctx context.Context, f *model.Fulfillment) error

	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, at time.Time) error

	// Aggregator queries (customer balance and the late sweep).
	OutstandingByCustomer(ctx context.Context, customerID string) (int64, error)
	FindOverdue(ctx context.Context, asOf time.Time) ([]model.Order, error)
	MarkLateSince(ctx context.Context, orderID string, at time.Time) error
}
