package model

import "time"

type OrderStatus string

const (
	StatusOpen      OrderStatus = "OPEN"
	StatusPartial   OrderStatus = "PARTIAL"
	StatusClosed    OrderStatus = "CLOSED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transition.
func (s OrderStatus) Terminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

type FulfillmentMethod string

const (
	MethodPickup   FulfillmentMethod = "PICKUP"
	MethodDelivery FulfillmentMethod = "DELIVERY"
)

type FulfillmentEvent string

const (
	EventReady          FulfillmentEvent = "READY"
	EventOutForDelivery FulfillmentEvent = "OUT_FOR_DELIVERY"
	EventPickedUp       FulfillmentEvent = "PICKED_UP"
	EventDelivered      FulfillmentEvent = "DELIVERED"
)

// Completing reports whether the event represents goods changing hands,
// which consumes the order's reservations.
func (e FulfillmentEvent) Completing() bool {
	return e == EventPickedUp || e == EventDelivered
}

// Order status is derived from the payment and fulfillment ledgers after
// every appended event; it is only set directly by explicit cancel/close.
type Order struct {
	BaseModel
	CustomerID       string            `db:"customer_id" json:"customer_id"`
	Status           OrderStatus       `db:"status" json:"status"`
	Method           FulfillmentMethod `db:"method" json:"method"`
	SubtotalCents    int64             `db:"subtotal_cents" json:"subtotal_cents"`
	DeliveryFeeCents int64             `db:"delivery_fee_cents" json:"delivery_fee_cents"`
	TotalCents       int64             `db:"total_cents" json:"total_cents"`
	DueDate          *time.Time        `db:"due_date" json:"due_date"`
	LateSince        *time.Time        `db:"late_since" json:"late_since"`
}

// OrderItem is immutable once created. Prices are snapshotted at order time
// so later price changes never rewrite history.
type OrderItem struct {
	ID                string  `db:"id" json:"id"`
	OrderID           string  `db:"order_id" json:"order_id"`
	ProductID         string  `db:"product_id" json:"product_id"`
	Grams             float64 `db:"grams" json:"grams"`
	Units             int64   `db:"units" json:"units"`
	PricePerGramCents *int64  `db:"price_per_gram_cents" json:"price_per_gram_cents"`
	PricePerUnitCents *int64  `db:"price_per_unit_cents" json:"price_per_unit_cents"`
	LineTotalCents    int64   `db:"line_total_cents" json:"line_total_cents"`
}

// Payment is an append-only ledger row. All payments are manually recorded
// facts; there is no processor integration.
type Payment struct {
	ID          string    `db:"id" json:"id"`
	OrderID     string    `db:"order_id" json:"order_id"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	Method      string    `db:"method" json:"method"`
	Note        *string   `db:"note" json:"note"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Fulfillment is an append-only ledger row recording delivered quantity and
// the lifecycle event that produced it.
type Fulfillment struct {
	ID        string           `db:"id" json:"id"`
	OrderID   string           `db:"order_id" json:"order_id"`
	Grams     float64          `db:"grams" json:"grams"`
	Units     int64            `db:"units" json:"units"`
	Event     FulfillmentEvent `db:"event" json:"event"`
	Note      *string          `db:"note" json:"note"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
