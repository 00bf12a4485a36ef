package model

import "time"

type PolicyTier string

const (
	TierNormal       PolicyTier = "NORMAL"
	TierOverTypical  PolicyTier = "OVER_TYPICAL"
	TierLate         PolicyTier = "LATE"
	TierDoNotAdvance PolicyTier = "DO_NOT_ADVANCE"
)

// OrderPolicy is a point-in-time snapshot written exactly once at order
// creation. It records what policy applied when the order was placed and is
// never recomputed, even if the customer's history or tags change later.
type OrderPolicy struct {
	OrderID          string     `db:"order_id" json:"order_id"`
	TypicalGrams     *float64   `db:"typical_grams" json:"typical_grams"`
	UpperNormalGrams *float64   `db:"upper_normal_grams" json:"upper_normal_grams"`
	SampleCount      int        `db:"sample_count" json:"sample_count"`
	LowConfidence    bool       `db:"low_confidence" json:"low_confidence"`
	OverTypical      bool       `db:"over_typical" json:"over_typical"`
	Tier             PolicyTier `db:"tier" json:"tier"`
	HoldbackPct      float64    `db:"holdback_pct" json:"holdback_pct"`
	DepositMinPct    float64    `db:"deposit_min_pct" json:"deposit_min_pct"`
	CanAdvance       bool       `db:"can_advance" json:"can_advance"`
	DepositMinCents  int64      `db:"deposit_min_cents" json:"deposit_min_cents"`
	MeetsDepositMin  bool       `db:"meets_deposit_min" json:"meets_deposit_min"`
	DeliverNowGrams  float64    `db:"deliver_now_grams" json:"deliver_now_grams"`
	WithheldGrams    float64    `db:"withheld_grams" json:"withheld_grams"`
	DeliverNowUnits  int64      `db:"deliver_now_units" json:"deliver_now_units"`
	WithheldUnits    int64      `db:"withheld_units" json:"withheld_units"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}
