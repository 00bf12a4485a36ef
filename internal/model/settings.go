package model

import "time"

// Settings is the singleton policy configuration row. Pure data; the
// resolver and statistics engine read it, nothing here has behavior.
type Settings struct {
	ID                       int       `db:"id" json:"id"` // always 1
	NormalHoldbackPct        float64   `db:"normal_holdback_pct" json:"normal_holdback_pct"`
	NormalDepositMinPct      float64   `db:"normal_deposit_min_pct" json:"normal_deposit_min_pct"`
	OverTypicalHoldbackPct   float64   `db:"over_typical_holdback_pct" json:"over_typical_holdback_pct"`
	OverTypicalDepositMinPct float64   `db:"over_typical_deposit_min_pct" json:"over_typical_deposit_min_pct"`
	LateHoldbackPct          float64   `db:"late_holdback_pct" json:"late_holdback_pct"`
	LateDepositMinPct        float64   `db:"late_deposit_min_pct" json:"late_deposit_min_pct"`
	HistoryWindow            int       `db:"history_window" json:"history_window"`
	IncludePartialHistory    bool      `db:"include_partial_history" json:"include_partial_history"`
	MinSpreadGrams           float64   `db:"min_spread_grams" json:"min_spread_grams"`
	DisplayWeightUnit        string    `db:"display_weight_unit" json:"display_weight_unit"`
	UpdatedAt                time.Time `db:"updated_at" json:"updated_at"`
}

func DefaultSettings() *Settings {
	return &Settings{
		ID:                       1,
		NormalHoldbackPct:        0,
		NormalDepositMinPct:      0,
		OverTypicalHoldbackPct:   0.25,
		OverTypicalDepositMinPct: 0.40,
		LateHoldbackPct:          0.50,
		LateDepositMinPct:        0.50,
		HistoryWindow:            10,
		IncludePartialHistory:    false,
		MinSpreadGrams:           1.0,
		DisplayWeightUnit:        "g",
	}
}
