package dto

import "github.com/rfandrade/creditledger/internal/model"

// MovementInput covers reserve/release/fulfill: a quantity applied to one
// product's counters.
type MovementInput struct {
	ProductID string
	Grams     float64
	Units     int64
	// AllowBackorder lets a reserve push reserved past on-hand. Off by
	// default; the caller opts in explicitly.
	AllowBackorder bool
	ReferenceID    string // usually the order id
}

type AdjustInput struct {
	ProductID  string
	Type       model.AdjustmentType
	GramsDelta float64
	UnitsDelta int64
	Note       string
}
