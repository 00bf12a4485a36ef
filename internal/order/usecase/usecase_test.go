package usecase

import (
	"context"
	"testing"
	"time"

	invdto "github.com/rfandrade/creditledger/internal/inventory/dto"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/order/dto"
	"github.com/rfandrade/creditledger/internal/stats"
	"github.com/rfandrade/creditledger/pkg/apperr"
	"github.com/rfandrade/creditledger/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	orders       map[string]*model.Order
	items        map[string][]model.OrderItem
	payments     map[string][]model.Payment
	fulfillments map[string][]model.Fulfillment
	policies     map[string]*model.OrderPolicy
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:       map[string]*model.Order{},
		items:        map[string][]model.OrderItem{},
		payments:     map[string][]model.Payment{},
		fulfillments: map[string][]model.Fulfillment{},
		policies:     map[string]*model.OrderPolicy{},
	}
}

func (f *fakeOrderRepo) Create(_ context.Context, o *model.Order, items []model.OrderItem, pol *model.OrderPolicy, initial *model.Payment) error {
	cp := *o
	f.orders[o.ID] = &cp
	f.items[o.ID] = items
	if pol != nil {
		pc := *pol
		f.policies[o.ID] = &pc
	}
	if initial != nil {
		f.payments[o.ID] = append(f.payments[o.ID], *initial)
	}
	return nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id string) (*model.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) FindAll(_ context.Context, _ *dto.OrderFilters) ([]model.Order, int, error) {
	var out []model.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (f *fakeOrderRepo) ListItems(_ context.Context, orderID string) ([]model.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderRepo) ListPayments(_ context.Context, orderID string) ([]model.Payment, error) {
	return f.payments[orderID], nil
}

func (f *fakeOrderRepo) ListFulfillments(_ context.Context, orderID string) ([]model.Fulfillment, error) {
	return f.fulfillments[orderID], nil
}

func (f *fakeOrderRepo) GetPolicy(_ context.Context, orderID string) (*model.OrderPolicy, error) {
	return f.policies[orderID], nil
}

func (f *fakeOrderRepo) AddPayment(_ context.Context, p *model.Payment) error {
	f.payments[p.OrderID] = append(f.payments[p.OrderID], *p)
	return nil
}

func (f *fakeOrderRepo) AddFulfillment(_ context.Context, fl *model.Fulfillment) error {
	f.fulfillments[fl.OrderID] = append(f.fulfillments[fl.OrderID], *fl)
	return nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, orderID string, status model.OrderStatus, at time.Time) error {
	f.orders[orderID].Status = status
	f.orders[orderID].UpdatedAt = at
	return nil
}

func (f *fakeOrderRepo) OutstandingByCustomer(_ context.Context, customerID string) (int64, error) {
	var total int64
	for id, o := range f.orders {
		if o.CustomerID != customerID || (o.Status != model.StatusOpen && o.Status != model.StatusPartial) {
			continue
		}
		var paid int64
		for _, p := range f.payments[id] {
			paid += p.AmountCents
		}
		if bal := o.TotalCents - paid; bal > 0 {
			total += bal
		}
	}
	return total, nil
}

func (f *fakeOrderRepo) FindOverdue(_ context.Context, asOf time.Time) ([]model.Order, error) {
	var out []model.Order
	for id, o := range f.orders {
		if o.Status != model.StatusOpen && o.Status != model.StatusPartial {
			continue
		}
		if o.DueDate == nil || !o.DueDate.Before(asOf) {
			continue
		}
		var paid int64
		for _, p := range f.payments[id] {
			paid += p.AmountCents
		}
		if o.TotalCents-paid > 0 {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) MarkLateSince(_ context.Context, orderID string, at time.Time) error {
	if f.orders[orderID].LateSince == nil {
		f.orders[orderID].LateSince = &at
	}
	return nil
}

// fakeStock records ledger movements and tracks reserved quantity per product.
type fakeStock struct {
	reserved  map[string]float64
	fulfilled map[string]float64
	released  map[string]float64
	failNext  error
}

func newFakeStock() *fakeStock {
	return &fakeStock{
		reserved:  map[string]float64{},
		fulfilled: map[string]float64{},
		released:  map[string]float64{},
	}
}

func (f *fakeStock) Reserve(_ context.Context, in *invdto.MovementInput) (*model.Inventory, error) {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}
	f.reserved[in.ProductID] += in.Grams
	return &model.Inventory{ProductID: in.ProductID}, nil
}

func (f *fakeStock) Release(_ context.Context, in *invdto.MovementInput) (*model.Inventory, error) {
	f.released[in.ProductID] += in.Grams
	f.reserved[in.ProductID] -= in.Grams
	if f.reserved[in.ProductID] < 0 {
		f.reserved[in.ProductID] = 0
	}
	return &model.Inventory{ProductID: in.ProductID}, nil
}

func (f *fakeStock) Fulfill(_ context.Context, in *invdto.MovementInput) (*model.Inventory, error) {
	f.fulfilled[in.ProductID] += in.Grams
	f.reserved[in.ProductID] -= in.Grams
	if f.reserved[in.ProductID] < 0 {
		f.reserved[in.ProductID] = 0
	}
	return &model.Inventory{ProductID: in.ProductID}, nil
}

type fakeProducts map[string]*model.Product

func (f fakeProducts) FindByID(_ context.Context, id string) (*model.Product, error) {
	return f[id], nil
}

type fakeTags struct{ tags []model.CustomerTag }

func (f *fakeTags) ListTags(_ context.Context, _ string) ([]model.CustomerTag, error) {
	return f.tags, nil
}

type fakeTypical struct{ res *stats.Result }

func (f *fakeTypical) TypicalOrder(_ context.Context, _ string, _ *model.QualityTier) (*stats.Result, error) {
	return f.res, nil
}

type fakeSettings struct{ s *model.Settings }

func (f *fakeSettings) Get(_ context.Context) (*model.Settings, error) {
	cp := *f.s
	return &cp, nil
}

type noopLocker struct{}

func (noopLocker) AcquireLock(context.Context, string, string, time.Duration) (bool, error) {
	return true, nil
}
func (noopLocker) ReleaseLock(context.Context, string, string) (bool, error) { return true, nil }

type fixture struct {
	repo     *fakeOrderRepo
	stock    *fakeStock
	tags     *fakeTags
	typical  *fakeTypical
	settings *fakeSettings
	uc       *orderUseCase
}

func newFixture() *fixture {
	ppg := int64(1000) // $10.00 per gram
	ppu := int64(500)
	products := fakeProducts{
		"flower": &model.Product{
			BaseModel:         model.BaseModel{ID: "flower"},
			Name:              "flower",
			Quality:           model.QualityRegular,
			SellMode:          model.SellByWeight,
			PricePerGramCents: &ppg,
			IsActive:          true,
		},
		"preroll": &model.Product{
			BaseModel:         model.BaseModel{ID: "preroll"},
			Name:              "preroll",
			Quality:           model.QualityRegular,
			SellMode:          model.SellByUnit,
			PricePerUnitCents: &ppu,
			IsActive:          true,
		},
	}

	fx := &fixture{
		repo:     newFakeOrderRepo(),
		stock:    newFakeStock(),
		tags:     &fakeTags{},
		typical:  &fakeTypical{},
		settings: &fakeSettings{s: model.DefaultSettings()},
	}
	fx.uc = NewOrderUseCase(
		fx.repo, fx.stock, products, fx.tags, fx.typical, fx.settings,
		noopLocker{}, logger.NewNop(),
	).(*orderUseCase)
	return fx
}

func gramOrder(grams float64, initialPayment int64) *dto.CreateOrderInput {
	return &dto.CreateOrderInput{
		CustomerID:           "cust1",
		Method:               model.MethodPickup,
		Items:                []dto.OrderItemInput{{ProductID: "flower", Grams: grams}},
		InitialPaymentCents:  initialPayment,
		InitialPaymentMethod: "CASH",
	}
}

func TestCreateOrderComputesTotalsAndReserves(t *testing.T) {
	fx := newFixture()

	detail, err := fx.uc.CreateOrder(context.Background(), gramOrder(10, 0))
	require.NoError(t, err)

	assert.Equal(t, int64(10000), detail.Order.SubtotalCents)
	assert.Equal(t, int64(10000), detail.Order.TotalCents)
	assert.Equal(t, model.StatusOpen, detail.Order.Status)
	assert.Equal(t, 10.0, fx.stock.reserved["flower"])
	require.NotNil(t, detail.Policy)
	assert.Equal(t, model.TierNormal, detail.Policy.Tier)
}

func TestCreateFullyPaidOrderStartsClosed(t *testing.T) {
	fx := newFixture()

	detail, err := fx.uc.CreateOrder(context.Background(), gramOrder(1, 1000))
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, detail.Order.Status)
	assert.Equal(t, int64(0), detail.BalanceDueCents)
}

func TestCreateOrderReservationFailureUnwinds(t *testing.T) {
	fx := newFixture()
	fx.stock.failNext = apperr.Invariant("not enough stock")

	_, err := fx.uc.CreateOrder(context.Background(), gramOrder(10, 0))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvariant))
	assert.Empty(t, fx.repo.orders)
	assert.Equal(t, 0.0, fx.stock.reserved["flower"])
}

func TestPartialPaymentMovesOpenToPartial(t *testing.T) {
	fx := newFixture()
	detail, err := fx.uc.CreateOrder(context.Background(), gramOrder(10, 0))
	require.NoError(t, err)

	detail, err = fx.uc.AddPayment(context.Background(), &dto.AddPaymentInput{
		OrderID:     detail.Order.ID,
		AmountCents: 4000,
		Method:      "CASH",
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartial, detail.Order.Status)
	assert.Equal(t, int64(6000), detail.BalanceDueCents)
}

func TestFullPaymentAndDeliveryCloseInOneStep(t *testing.T) {
	fx := newFixture()
	detail, err := fx.uc.CreateOrder(context.Background(), &dto.CreateOrderInput{
		CustomerID: "cust1",
		Method:     model.MethodPickup,
		Items:      []dto.OrderItemInput{{ProductID: "flower", Grams: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, detail.Order.Status)

	_, err = fx.uc.AddPayment(context.Background(), &dto.AddPaymentInput{
		OrderID:     detail.Order.ID,
		AmountCents: 1000,
		Method:      "CASH",
	})
	require.NoError(t, err)

	detail, err = fx.uc.AddFulfillment(context.Background(), &dto.AddFulfillmentInput{
		OrderID: detail.Order.ID,
		Event:   model.EventPickedUp,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, detail.Order.Status)
	assert.Equal(t, 1.0, fx.stock.fulfilled["flower"])
}

func TestReadyEventDoesNotTouchInventory(t *testing.T) {
	fx := newFixture()
	detail, err := fx.uc.CreateOrder(context.Background(), gramOrder(10, 0))
	require.NoError(t, err)

	detail, err = fx.uc.AddFulfillment(context.Background(), &dto.AddFulfillmentInput{
		OrderID: detail.Order.ID,
		Event:   model.EventReady,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, fx.stock.fulfilled["flower"])
	assert.Equal(t, 10.0, fx.stock.reserved["flower"])
	// a ledger event occurred, so the order is no longer untouched
	assert.Equal(t, model.StatusPartial, detail.Order.Status)
}

func TestCompletingEventFulfillsFullRequestedQuantity(t *testing.T) {
	fx := newFixture()
	detail, err := fx.uc.CreateOrder(context.Background(), gramOrder(10, 0))
	require.NoError(t, err)

	detail, err = fx.uc.AddFulfillment(context.Background(), &dto.AddFulfillmentInput{
		OrderID: detail.Order.ID,
		Event:   model.EventDelivered,
	})
	require.NoError(t, err)

	// one qualifying event hands over everything requested
	assert.Equal(t, 10.0, fx.stock.fulfilled["flower"])
	require.Len(t, detail.Fulfillments, 1)
	assert.Equal(t, 10.0, detail.Fulfillments[0].Grams)
	// delivered but unpaid: PARTIAL, not CLOSED
	assert.Equal(t, model.StatusPartial, detail.Order.Status)
}

func TestCancelReleasesReservedInventory(t *testing.T) {
	fx := newFixture()
	detail, err := fx.uc.CreateOrder(context.Background(), gramOrder(10, 0))
	require.NoError(t, err)
	require.Equal(t, 10.0, fx.stock.reserved["flower"])

	detail, err = fx.uc.CancelOrder(context.Background(), detail.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, detail.Order.Status)
	assert.Equal(t, 0.0, fx.stock.reserved["flower"])
	assert.Equal(t, 10.0, fx.stock.released["flower"])
}

func TestTerminalOrdersRejectMutation(t *testing.T) {
	fx := newFixture()
	detail, err := fx.uc.CreateOrder(context.Background(), gramOrder(10, 0))
	require.NoError(t, err)
	_, err = fx.uc.CancelOrder(context.Background(), detail.Order.ID)
	require.NoError(t, err)

	_, err = fx.uc.AddPayment(context.Background(), &dto.AddPaymentInput{
		OrderID: detail.Order.ID, AmountCents: 100, Method: "CASH",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = fx.uc.CancelOrder(context.Background(), detail.Order.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestManualCloseForgivesBalanceAndReleases(t *testing.T) {
	fx := newFixture()
	detail, err := fx.uc.CreateOrder(context.Background(), gramOrder(10, 2000))
	require.NoError(t, err)
	require.Equal(t, model.StatusOpen, detail.Order.Status)

	detail, err = fx.uc.CloseOrder(context.Background(), detail.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, detail.Order.Status)
	assert.Equal(t, 0.0, fx.stock.reserved["flower"])
	// the balance stays on the books as written off, not collectable
	assert.Equal(t, int64(8000), detail.BalanceDueCents)
}

func TestPolicySnapshotUsesHistoryAndTags(t *testing.T) {
	fx := newFixture()
	fx.typical.res = stats.Compute([]float64{7, 14, 10.5}, 1.0) // upper normal 17.5
	fx.tags.tags = []model.CustomerTag{{Tag: model.TagLate, CreatedAt: time.Now()}}

	detail, err := fx.uc.CreateOrder(context.Background(), gramOrder(20, 10000))
	require.NoError(t, err)

	pol := detail.Policy
	require.NotNil(t, pol)
	assert.True(t, pol.OverTypical)
	// LATE outranks OVER_TYPICAL
	assert.Equal(t, model.TierLate, pol.Tier)
	assert.Equal(t, 0.50, pol.HoldbackPct)
	require.NotNil(t, pol.TypicalGrams)
	assert.Equal(t, 10.5, *pol.TypicalGrams)
	// 20g at 1000c/g = 20000c subtotal; paid 10000c, 50% holdback leaves
	// 5000c of funds: 5g now, 5 paid-for grams withheld
	assert.InDelta(t, 5.0, pol.DeliverNowGrams, 1e-9)
	assert.InDelta(t, 5.0, pol.WithheldGrams, 1e-9)
}

func TestPolicySnapshotFrozenAfterCreation(t *testing.T) {
	fx := newFixture()
	detail, err := fx.uc.CreateOrder(context.Background(), gramOrder(10, 5000))
	require.NoError(t, err)
	original := *detail.Policy

	// the world changes after the order is placed
	fx.settings.s.LateHoldbackPct = 0.99
	fx.settings.s.OverTypicalDepositMinPct = 0.99
	fx.tags.tags = []model.CustomerTag{{Tag: model.TagDoNotAdvance, CreatedAt: time.Now()}}
	fx.typical.res = stats.Compute([]float64{1, 1, 1}, 1.0)

	_, err = fx.uc.AddPayment(context.Background(), &dto.AddPaymentInput{
		OrderID: detail.Order.ID, AmountCents: 1000, Method: "CASH",
	})
	require.NoError(t, err)

	after, err := fx.uc.GetOrder(context.Background(), detail.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, original, *after.Policy)
}

func TestDoNotAdvanceWithholdsEverything(t *testing.T) {
	fx := newFixture()
	fx.tags.tags = []model.CustomerTag{{Tag: model.TagDoNotAdvance, CreatedAt: time.Now()}}

	detail, err := fx.uc.CreateOrder(context.Background(), gramOrder(10, 5000))
	require.NoError(t, err)

	pol := detail.Policy
	assert.Equal(t, model.TierDoNotAdvance, pol.Tier)
	assert.False(t, pol.CanAdvance)
	assert.Equal(t, 0.0, pol.DeliverNowGrams)
	assert.Equal(t, 10.0, pol.WithheldGrams)
	assert.False(t, pol.MeetsDepositMin) // needs 100% up front
}

func TestUnitPricedOrder(t *testing.T) {
	fx := newFixture()
	detail, err := fx.uc.CreateOrder(context.Background(), &dto.CreateOrderInput{
		CustomerID: "cust1",
		Method:     model.MethodDelivery,
		Items:      []dto.OrderItemInput{{ProductID: "preroll", Units: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), detail.Order.SubtotalCents)

	detail, err = fx.uc.AddFulfillment(context.Background(), &dto.AddFulfillmentInput{
		OrderID: detail.Order.ID,
		Event:   model.EventDelivered,
	})
	require.NoError(t, err)
	require.Len(t, detail.Fulfillments, 1)
	assert.Equal(t, int64(4), detail.Fulfillments[0].Units)
}

func TestDeliveryFeeCountsTowardTotalNotDeposit(t *testing.T) {
	fx := newFixture()
	detail, err := fx.uc.CreateOrder(context.Background(), &dto.CreateOrderInput{
		CustomerID:       "cust1",
		Method:           model.MethodDelivery,
		DeliveryFeeCents: 500,
		Items:            []dto.OrderItemInput{{ProductID: "flower", Grams: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), detail.Order.SubtotalCents)
	assert.Equal(t, int64(10500), detail.Order.TotalCents)
}

func TestSellModeValidation(t *testing.T) {
	fx := newFixture()
	_, err := fx.uc.CreateOrder(context.Background(), &dto.CreateOrderInput{
		CustomerID: "cust1",
		Items:      []dto.OrderItemInput{{ProductID: "preroll", Grams: 5}},
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
