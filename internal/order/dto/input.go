package dto

import (
	"time"

	"github.com/rfandrade/creditledger/internal/model"
)

type OrderItemInput struct {
	ProductID string
	Grams     float64
	Units     int64
}

type CreateOrderInput struct {
	CustomerID       string
	Method           model.FulfillmentMethod
	DeliveryFeeCents int64
	DueDate          *time.Time
	Items            []OrderItemInput
	// Optional payment recorded at creation; feeds the policy snapshot's
	// deliver-now computation.
	InitialPaymentCents  int64
	InitialPaymentMethod string
	AllowBackorder       bool
}

type AddPaymentInput struct {
	OrderID     string
	AmountCents int64
	Method      string
	Note        *string
}

type AddFulfillmentInput struct {
	OrderID string
	Event   model.FulfillmentEvent
	// Delivered quantities for the ledger row. Zero on a completing event
	// means "everything requested".
	Grams float64
	Units int64
	Note  *string
}

type QuoteInput struct {
	CustomerID   string
	Items        []OrderItemInput
	PaidNowCents int64
}

type OrderFilters struct {
	CustomerID string
	Status     string
	Page       int
	PageSize   int
}
