package model

import "time"

// Inventory is the per-product counter pair. Available stock is always
// derived on read, never stored.
type Inventory struct {
	ProductID     string    `db:"product_id" json:"product_id"`
	OnHandGrams   float64   `db:"on_hand_grams" json:"on_hand_grams"`
	OnHandUnits   int64     `db:"on_hand_units" json:"on_hand_units"`
	ReservedGrams float64   `db:"reserved_grams" json:"reserved_grams"`
	ReservedUnits int64     `db:"reserved_units" json:"reserved_units"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func (i *Inventory) AvailableGrams() float64 { return i.OnHandGrams - i.ReservedGrams }
func (i *Inventory) AvailableUnits() int64   { return i.OnHandUnits - i.ReservedUnits }

type AdjustmentType string

const (
	AdjustRestock    AdjustmentType = "RESTOCK"
	AdjustWaste      AdjustmentType = "WASTE"
	AdjustCorrection AdjustmentType = "CORRECTION"
)

// InventoryAdjustment is an append-only audit row. It is written in the same
// transaction as the counter change, insert first, and never mutated.
type InventoryAdjustment struct {
	ID         string         `db:"id" json:"id"`
	ProductID  string         `db:"product_id" json:"product_id"`
	Type       AdjustmentType `db:"type" json:"type"`
	GramsDelta float64        `db:"grams_delta" json:"grams_delta"`
	UnitsDelta int64          `db:"units_delta" json:"units_delta"`
	Note       string         `db:"note" json:"note"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}
