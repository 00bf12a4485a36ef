package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	invdto "github.com/rfandrade/creditledger/internal/inventory/dto"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/order"
	"github.com/rfandrade/creditledger/internal/order/dto"
	"github.com/rfandrade/creditledger/internal/policy"
	"github.com/rfandrade/creditledger/pkg/apperr"
	"github.com/rfandrade/creditledger/pkg/cache"
	"github.com/rfandrade/creditledger/pkg/logger"
	"go.uber.org/zap"
)

type orderUseCase struct {
	repo     order.Repository
	stock    order.Stock
	products order.ProductSource
	tags     order.TagSource
	typical  order.TypicalSource
	settings order.SettingsSource
	locker   cache.Locker
	logger   logger.ZapLogger
}

func NewOrderUseCase(
	repo order.Repository,
	stock order.Stock,
	products order.ProductSource,
	tags order.TagSource,
	typical order.TypicalSource,
	settings order.SettingsSource,
	locker cache.Locker,
	log logger.ZapLogger,
) order.UseCase {
	return &orderUseCase{
		repo:     repo,
		stock:    stock,
		products: products,
		tags:     tags,
		typical:  typical,
		settings: settings,
		locker:   locker,
		logger:   log,
	}
}

// pricedItems is the result of snapshotting products into order lines.
type pricedItems struct {
	items               []model.OrderItem
	subtotalCents       int64
	totalGrams          float64
	totalUnits          int64
	weightSubtotalCents int64
	unitSubtotalCents   int64
}

func (uc *orderUseCase) priceItems(ctx context.Context, inputs []dto.OrderItemInput) (*pricedItems, error) {
	if len(inputs) == 0 {
		return nil, apperr.Validation("order needs at least one item")
	}

	out := &pricedItems{}
	for _, in := range inputs {
		if in.Grams < 0 || in.Units < 0 {
			return nil, apperr.Validation("item quantities must not be negative")
		}
		if in.Grams == 0 && in.Units == 0 {
			return nil, apperr.Validation("item must request grams or units")
		}

		p, err := uc.products.FindByID(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, apperr.NotFound("product", in.ProductID)
		}
		if in.Grams > 0 && !p.SellsWeight() {
			return nil, apperr.Validation("product %s is not sold by weight", p.Name)
		}
		if in.Units > 0 && !p.SellsUnits() {
			return nil, apperr.Validation("product %s is not sold by unit", p.Name)
		}

		item := model.OrderItem{
			ID:        uuid.New().String(),
			ProductID: in.ProductID,
			Grams:     in.Grams,
			Units:     in.Units,
		}
		// prices are frozen on the line so later price edits never rewrite
		// this order
		var weightCents, unitCents int64
		if in.Grams > 0 {
			item.PricePerGramCents = p.PricePerGramCents
			weightCents = roundCents(in.Grams * float64(*p.PricePerGramCents))
		}
		if in.Units > 0 {
			item.PricePerUnitCents = p.PricePerUnitCents
			unitCents = in.Units * *p.PricePerUnitCents
		}
		item.LineTotalCents = weightCents + unitCents

		out.items = append(out.items, item)
		out.subtotalCents += item.LineTotalCents
		out.totalGrams += in.Grams
		out.totalUnits += in.Units
		out.weightSubtotalCents += weightCents
		out.unitSubtotalCents += unitCents
	}
	return out, nil
}

// snapshotPolicy runs the statistics engine and the resolver and freezes the
// result. Called exactly once per order, at creation.
func (uc *orderUseCase) snapshotPolicy(ctx context.Context, customerID string, priced *pricedItems, paidNowCents int64, now time.Time) (*model.OrderPolicy, error) {
	cfg, err := uc.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	res, err := uc.typical.TypicalOrder(ctx, customerID, nil)
	if err != nil {
		return nil, err
	}
	overTypical := res.OverTypical(priced.totalGrams)

	tags, err := uc.tags.ListTags(ctx, customerID)
	if err != nil {
		return nil, err
	}
	tier := policy.Resolve(tags, overTypical, now, cfg)

	dn := policy.ComputeDeliverNow(policy.QuoteInput{
		PaidNowCents:        paidNowCents,
		SubtotalCents:       priced.subtotalCents,
		RequestedGrams:      priced.totalGrams,
		WeightSubtotalCents: priced.weightSubtotalCents,
		RequestedUnits:      priced.totalUnits,
		UnitSubtotalCents:   priced.unitSubtotalCents,
	}, tier)

	pol := &model.OrderPolicy{
		Tier:            tier.Tier,
		HoldbackPct:     tier.HoldbackPct,
		DepositMinPct:   tier.DepositMinPct,
		CanAdvance:      tier.CanAdvance,
		OverTypical:     overTypical,
		DepositMinCents: dn.DepositMinCents,
		MeetsDepositMin: dn.MeetsDepositMin,
		DeliverNowGrams: dn.DeliverNowGrams,
		WithheldGrams:   dn.WithheldGrams,
		DeliverNowUnits: dn.DeliverNowUnits,
		WithheldUnits:   dn.WithheldUnits,
		CreatedAt:       now,
	}
	if res != nil {
		pol.TypicalGrams = &res.MedianGrams
		pol.UpperNormalGrams = &res.UpperNormalGrams
		pol.SampleCount = res.SampleCount
		pol.LowConfidence = res.LowConfidence
	} else {
		pol.LowConfidence = true
	}
	return pol, nil
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*dto.OrderDetail, error) {
	if input.InitialPaymentCents < 0 {
		return nil, apperr.Validation("initial payment must not be negative")
	}

	priced, err := uc.priceItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	orderID := uuid.New().String()
	totalCents := priced.subtotalCents + input.DeliveryFeeCents

	pol, err := uc.snapshotPolicy(ctx, input.CustomerID, priced, input.InitialPaymentCents, now)
	if err != nil {
		return nil, err
	}
	pol.OrderID = orderID

	status := model.StatusOpen
	if totalCents <= input.InitialPaymentCents {
		status = model.StatusClosed
	}

	o := &model.Order{
		BaseModel:        model.BaseModel{ID: orderID, CreatedAt: now, UpdatedAt: now},
		CustomerID:       input.CustomerID,
		Status:           status,
		Method:           input.Method,
		SubtotalCents:    priced.subtotalCents,
		DeliveryFeeCents: input.DeliveryFeeCents,
		TotalCents:       totalCents,
		DueDate:          input.DueDate,
	}

	for i := range priced.items {
		priced.items[i].OrderID = orderID
	}

	var initialPayment *model.Payment
	if input.InitialPaymentCents > 0 {
		method := input.InitialPaymentMethod
		if method == "" {
			method = "CASH"
		}
		initialPayment = &model.Payment{
			ID:          uuid.New().String(),
			OrderID:     orderID,
			AmountCents: input.InitialPaymentCents,
			Method:      method,
			CreatedAt:   now,
		}
	}

	// Reserve before committing the ledger; unwind on any failure so a
	// half-created order never pins stock.
	reserved := make([]model.OrderItem, 0, len(priced.items))
	for _, item := range priced.items {
		_, err := uc.stock.Reserve(ctx, &invdto.MovementInput{
			ProductID:      item.ProductID,
			Grams:          item.Grams,
			Units:          item.Units,
			AllowBackorder: input.AllowBackorder,
			ReferenceID:    orderID,
		})
		if err != nil {
			uc.unwindReservations(ctx, orderID, reserved)
			return nil, err
		}
		reserved = append(reserved, item)
	}

	if err := uc.repo.Create(ctx, o, priced.items, pol, initialPayment); err != nil {
		uc.unwindReservations(ctx, orderID, reserved)
		return nil, err
	}

	uc.logger.Info("order created",
		zap.String("order_id", orderID),
		zap.String("customer_id", input.CustomerID),
		zap.Int64("total_cents", totalCents),
		zap.String("tier", string(pol.Tier)),
	)
	return uc.detail(ctx, o)
}

func (uc *orderUseCase) unwindReservations(ctx context.Context, orderID string, items []model.OrderItem) {
	for _, item := range items {
		_, err := uc.stock.Release(ctx, &invdto.MovementInput{
			ProductID:   item.ProductID,
			Grams:       item.Grams,
			Units:       item.Units,
			ReferenceID: orderID,
		})
		if err != nil {
			uc.logger.Error("failed to unwind reservation",
				zap.String("order_id", orderID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
		}
	}
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id string) (*dto.OrderDetail, error) {
	o, err := uc.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.detail(ctx, o)
}

func (uc *orderUseCase) ListOrders(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	return uc.repo.FindAll(ctx, f)
}

func (uc *orderUseCase) AddPayment(ctx context.Context, input *dto.AddPaymentInput) (*dto.OrderDetail, error) {
	if input.AmountCents <= 0 {
		return nil, apperr.Validation("payment amount must be positive")
	}

	var out *dto.OrderDetail
	err := uc.withOrderLock(ctx, input.OrderID, func() error {
		o, err := uc.mustFindMutable(ctx, input.OrderID)
		if err != nil {
			return err
		}

		p := &model.Payment{
			ID:          uuid.New().String(),
			OrderID:     o.ID,
			AmountCents: input.AmountCents,
			Method:      input.Method,
			Note:        input.Note,
			CreatedAt:   time.Now(),
		}
		if err := uc.repo.AddPayment(ctx, p); err != nil {
			return err
		}

		if err := uc.recomputeStatus(ctx, o); err != nil {
			return err
		}
		out, err = uc.detail(ctx, o)
		return err
	})
	return out, err
}

func (uc *orderUseCase) AddFulfillment(ctx context.Context, input *dto.AddFulfillmentInput) (*dto.OrderDetail, error) {
	switch input.Event {
	case model.EventReady, model.EventOutForDelivery, model.EventPickedUp, model.EventDelivered:
	default:
		return nil, apperr.Validation("unknown fulfillment event %q", input.Event)
	}

	var out *dto.OrderDetail
	err := uc.withOrderLock(ctx, input.OrderID, func() error {
		o, err := uc.mustFindMutable(ctx, input.OrderID)
		if err != nil {
			return err
		}

		items, err := uc.repo.ListItems(ctx, o.ID)
		if err != nil {
			return err
		}

		grams, units := input.Grams, input.Units
		if input.Event.Completing() {
			// A completing event hands over every item's full requested
			// quantity; per-item partial delivery is not modeled.
			if grams == 0 && units == 0 {
				for _, item := range items {
					grams += item.Grams
					units += item.Units
				}
			}
			for _, item := range items {
				_, err := uc.stock.Fulfill(ctx, &invdto.MovementInput{
					ProductID:   item.ProductID,
					Grams:       item.Grams,
					Units:       item.Units,
					ReferenceID: o.ID,
				})
				if err != nil {
					return err
				}
			}
		}

		f := &model.Fulfillment{
			ID:        uuid.New().String(),
			OrderID:   o.ID,
			Grams:     grams,
			Units:     units,
			Event:     input.Event,
			Note:      input.Note,
			CreatedAt: time.Now(),
		}
		if err := uc.repo.AddFulfillment(ctx, f); err != nil {
			return err
		}

		if err := uc.recomputeStatus(ctx, o); err != nil {
			return err
		}
		out, err = uc.detail(ctx, o)
		return err
	})
	return out, err
}

func (uc *orderUseCase) CancelOrder(ctx context.Context, id string) (*dto.OrderDetail, error) {
	var out *dto.OrderDetail
	err := uc.withOrderLock(ctx, id, func() error {
		o, err := uc.mustFindMutable(ctx, id)
		if err != nil {
			return err
		}

		items, err := uc.repo.ListItems(ctx, o.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			_, err := uc.stock.Release(ctx, &invdto.MovementInput{
				ProductID:   item.ProductID,
				Grams:       item.Grams,
				Units:       item.Units,
				ReferenceID: o.ID,
			})
			if err != nil {
				return err
			}
		}

		now := time.Now()
		if err := uc.repo.UpdateStatus(ctx, o.ID, model.StatusCancelled, now); err != nil {
			return err
		}
		o.Status = model.StatusCancelled
		o.UpdatedAt = now

		uc.logger.Info("order cancelled", zap.String("order_id", o.ID))
		out, err = uc.detail(ctx, o)
		return err
	})
	return out, err
}

func (uc *orderUseCase) CloseOrder(ctx context.Context, id string) (*dto.OrderDetail, error) {
	var out *dto.OrderDetail
	err := uc.withOrderLock(ctx, id, func() error {
		o, err := uc.mustFindMutable(ctx, id)
		if err != nil {
			return err
		}

		items, err := uc.repo.ListItems(ctx, o.ID)
		if err != nil {
			return err
		}
		fulfillments, err := uc.repo.ListFulfillments(ctx, o.ID)
		if err != nil {
			return err
		}

		// whatever was never handed over is still reserved; give it back
		// (the remaining balance is written off, not collected)
		if !fullyDelivered(items, fulfillments) {
			for _, item := range items {
				_, err := uc.stock.Release(ctx, &invdto.MovementInput{
					ProductID:   item.ProductID,
					Grams:       item.Grams,
					Units:       item.Units,
					ReferenceID: o.ID,
				})
				if err != nil {
					return err
				}
			}
		}

		now := time.Now()
		if err := uc.repo.UpdateStatus(ctx, o.ID, model.StatusClosed, now); err != nil {
			return err
		}
		o.Status = model.StatusClosed
		o.UpdatedAt = now

		uc.logger.Info("order closed manually", zap.String("order_id", o.ID))
		out, err = uc.detail(ctx, o)
		return err
	})
	return out, err
}

func (uc *orderUseCase) Quote(ctx context.Context, input *dto.QuoteInput) (*dto.Quote, error) {
	priced, err := uc.priceItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	cfg, err := uc.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	res, err := uc.typical.TypicalOrder(ctx, input.CustomerID, nil)
	if err != nil {
		return nil, err
	}
	overTypical := res.OverTypical(priced.totalGrams)

	tags, err := uc.tags.ListTags(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	tier := policy.Resolve(tags, overTypical, time.Now(), cfg)

	dn := policy.ComputeDeliverNow(policy.QuoteInput{
		PaidNowCents:        input.PaidNowCents,
		SubtotalCents:       priced.subtotalCents,
		RequestedGrams:      priced.totalGrams,
		WeightSubtotalCents: priced.weightSubtotalCents,
		RequestedUnits:      priced.totalUnits,
		UnitSubtotalCents:   priced.unitSubtotalCents,
	}, tier)

	return &dto.Quote{Stats: res, OverTypical: overTypical, Tier: tier, DeliverNow: dn}, nil
}

// recomputeStatus re-derives the order status from its ledgers. Terminal
// states never change here.
func (uc *orderUseCase) recomputeStatus(ctx context.Context, o *model.Order) error {
	if o.Status.Terminal() {
		return nil
	}

	items, err := uc.repo.ListItems(ctx, o.ID)
	if err != nil {
		return err
	}
	payments, err := uc.repo.ListPayments(ctx, o.ID)
	if err != nil {
		return err
	}
	fulfillments, err := uc.repo.ListFulfillments(ctx, o.ID)
	if err != nil {
		return err
	}

	var paid int64
	for _, p := range payments {
		paid += p.AmountCents
	}
	fullyPaid := o.TotalCents-paid <= 0

	newStatus := model.StatusOpen
	switch {
	case fullyPaid && fullyDelivered(items, fulfillments):
		newStatus = model.StatusClosed
	case len(payments) > 0 || len(fulfillments) > 0:
		newStatus = model.StatusPartial
	}

	if newStatus != o.Status {
		now := time.Now()
		if err := uc.repo.UpdateStatus(ctx, o.ID, newStatus, now); err != nil {
			return err
		}
		uc.logger.Debug("order status changed",
			zap.String("order_id", o.ID),
			zap.String("from", string(o.Status)),
			zap.String("to", string(newStatus)),
		)
		o.Status = newStatus
		o.UpdatedAt = now
	}
	return nil
}

func fullyDelivered(items []model.OrderItem, fulfillments []model.Fulfillment) bool {
	var reqGrams, delGrams float64
	var reqUnits, delUnits int64
	for _, item := range items {
		reqGrams += item.Grams
		reqUnits += item.Units
	}
	for _, f := range fulfillments {
		delGrams += f.Grams
		delUnits += f.Units
	}
	return delGrams >= reqGrams && delUnits >= reqUnits
}

func (uc *orderUseCase) mustFind(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFound("order", id)
	}
	return o, nil
}

func (uc *orderUseCase) mustFindMutable(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, apperr.Validation("order %s is %s and cannot change", id, o.Status)
	}
	return o, nil
}

func (uc *orderUseCase) detail(ctx context.Context, o *model.Order) (*dto.OrderDetail, error) {
	items, err := uc.repo.ListItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	payments, err := uc.repo.ListPayments(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	fulfillments, err := uc.repo.ListFulfillments(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	pol, err := uc.repo.GetPolicy(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	var paid int64
	for _, p := range payments {
		paid += p.AmountCents
	}
	balance := o.TotalCents - paid
	if balance < 0 {
		balance = 0
	}

	return &dto.OrderDetail{
		Order:           *o,
		Items:           items,
		Payments:        payments,
		Fulfillments:    fulfillments,
		Policy:          pol,
		PaidCents:       paid,
		BalanceDueCents: balance,
	}, nil
}

// withOrderLock serializes mutations of one order's full ledger.
func (uc *orderUseCase) withOrderLock(ctx context.Context, orderID string, fn func() error) error {
	lockKey := fmt.Sprintf("lock:order:%s", orderID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.locker.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire order lock", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return apperr.Conflict("order %s busy, try again", orderID)
	}
	defer uc.locker.ReleaseLock(ctx, lockKey, lockValue)

	return fn()
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
