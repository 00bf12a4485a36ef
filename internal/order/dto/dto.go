package dto

import (
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/policy"
	"github.com/rfandrade/creditledger/internal/stats"
)

type OrderDetail struct {
	Order           model.Order         `json:"order"`
	Items           []model.OrderItem   `json:"items"`
	Payments        []model.Payment     `json:"payments"`
	Fulfillments    []model.Fulfillment `json:"fulfillments"`
	Policy          *model.OrderPolicy  `json:"policy"`
	PaidCents       int64               `json:"paid_cents"`
	BalanceDueCents int64               `json:"balance_due_cents"`
}

// Quote is a dry-run of the policy snapshot a new order would freeze.
type Quote struct {
	Stats      *stats.Result      `json:"stats"`
	OverTypical bool              `json:"over_typical"`
	Tier       policy.Resolved    `json:"tier"`
	DeliverNow policy.DeliverNow  `json:"deliver_now"`
}
