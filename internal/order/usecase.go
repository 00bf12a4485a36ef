package order

import (
	"context"

	invdto "github.com/rfandrade/creditledger/internal/inventory/dto"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/order/dto"
	"github.com/rfandrade/creditledger/internal/stats"
)

type UseCase interface {
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*dto.OrderDetail, error)
	GetOrder(ctx context.Context, id string) (*dto.OrderDetail, error)
	ListOrders(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error)

	AddPayment(ctx context.Context, input *dto.AddPaymentInput) (*dto.OrderDetail, error)
	AddFulfillment(ctx context.Context, input *dto.AddFulfillmentInput) (*dto.OrderDetail, error)

	// CancelOrder releases everything the order had reserved and parks it in
	// the terminal CANCELLED state.
	CancelOrder(ctx context.Context, id string) (*dto.OrderDetail, error)
	// CloseOrder force-terminates, forgiving any outstanding balance and
	// releasing still-reserved goods.
	CloseOrder(ctx context.Context, id string) (*dto.OrderDetail, error)

	// Quote is the dry-run used to preview policy before placing an order.
	Quote(ctx context.Context, input *dto.QuoteInput) (*dto.Quote, error)
}

// Stock is the slice of the inventory ledger the lifecycle manager drives.
type Stock interface {
	Reserve(ctx context.Context, input *invdto.MovementInput) (*model.Inventory, error)
	Release(ctx context.Context, input *invdto.MovementInput) (*model.Inventory, error)
	Fulfill(ctx context.Context, input *invdto.MovementInput) (*model.Inventory, error)
}

type ProductSource interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
}

type TagSource interface {
	ListTags(ctx context.Context, customerID string) ([]model.CustomerTag, error)
}

type TypicalSource interface {
	TypicalOrder(ctx context.Context, customerID string, quality *model.QualityTier) (*stats.Result, error)
}

type SettingsSource interface {
	Get(ctx context.Context) (*model.Settings, error)
}
