package model

type QualityTier string

const (
	QualityRegular QualityTier = "REGULAR"
	QualityPremium QualityTier = "PREMIUM"
)

type SellMode string

const (
	SellByWeight SellMode = "WEIGHT"
	SellByUnit   SellMode = "UNIT"
	SellBoth     SellMode = "BOTH"
)

type Product struct {
	BaseModel
	Name              string      `db:"name" json:"name"`
	Quality           QualityTier `db:"quality" json:"quality"`
	SellMode          SellMode    `db:"sell_mode" json:"sell_mode"`
	PricePerGramCents *int64      `db:"price_per_gram_cents" json:"price_per_gram_cents"` // nil unless sold by weight
	PricePerUnitCents *int64      `db:"price_per_unit_cents" json:"price_per_unit_cents"` // nil unless sold by unit
	IsActive          bool        `db:"is_active" json:"is_active"`
}

func (p *Product) SellsWeight() bool {
	return p.SellMode == SellByWeight || p.SellMode == SellBoth
}

func (p *Product) SellsUnits() bool {
	return p.SellMode == SellByUnit || p.SellMode == SellBoth
}
