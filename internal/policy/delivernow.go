package policy

import "math"

// QuoteInput carries the order-level quantities and price snapshots the
// deliver-now computation works from. Subtotals are item lines only, the
// delivery fee never counts toward the deposit.
type QuoteInput struct {
	PaidNowCents        int64
	SubtotalCents       int64
	RequestedGrams      float64
	WeightSubtotalCents int64
	RequestedUnits      int64
	UnitSubtotalCents   int64
}

type DeliverNow struct {
	DepositMinCents int64   `json:"deposit_min_cents"`
	MeetsDepositMin bool    `json:"meets_deposit_min"`
	DeliverNowGrams float64 `json:"deliver_now_grams"`
	WithheldGrams   float64 `json:"withheld_grams"`
	DeliverNowUnits int64   `json:"deliver_now_units"`
	WithheldUnits   int64   `json:"withheld_units"`
}

// ComputeDeliverNow converts a payment into releasable quantity under the
// resolved tier. The holdback is subtracted from the customer's own payment
// before it is converted to goods; the gap between what the raw payment
// would cover and what is released is withheld as collateral. Money rounds
// to the cent, quantities are not rounded.
func ComputeDeliverNow(in QuoteInput, tier Resolved) DeliverNow {
	out := DeliverNow{
		DepositMinCents: int64(math.Ceil(float64(in.SubtotalCents) * tier.DepositMinPct)),
	}
	out.MeetsDepositMin = in.PaidNowCents >= out.DepositMinCents

	if !tier.CanAdvance {
		// nothing leaves the building until paid in full
		out.WithheldGrams = in.RequestedGrams
		out.WithheldUnits = in.RequestedUnits
		return out
	}

	effectiveFunds := math.Floor(float64(in.PaidNowCents) * (1 - tier.HoldbackPct))
	paidFunds := float64(in.PaidNowCents)

	itemSubtotal := in.WeightSubtotalCents + in.UnitSubtotalCents
	if itemSubtotal <= 0 {
		return out
	}

	// Mixed-mode orders split the funds proportionally to each mode's share
	// of the item subtotal.
	weightShare := float64(in.WeightSubtotalCents) / float64(itemSubtotal)
	unitShare := float64(in.UnitSubtotalCents) / float64(itemSubtotal)

	if in.RequestedGrams > 0 && in.WeightSubtotalCents > 0 {
		pricePerGram := float64(in.WeightSubtotalCents) / in.RequestedGrams
		deliver := math.Min(effectiveFunds*weightShare/pricePerGram, in.RequestedGrams)
		out.DeliverNowGrams = deliver
		out.WithheldGrams = math.Max(0, paidFunds*weightShare/pricePerGram-deliver)
	}

	if in.RequestedUnits > 0 && in.UnitSubtotalCents > 0 {
		pricePerUnit := float64(in.UnitSubtotalCents) / float64(in.RequestedUnits)
		deliver := math.Min(math.Floor(effectiveFunds*unitShare/pricePerUnit), float64(in.RequestedUnits))
		raw := math.Floor(paidFunds * unitShare / pricePerUnit)
		out.DeliverNowUnits = int64(deliver)
		if raw > deliver {
			out.WithheldUnits = int64(raw - deliver)
		}
	}

	return out
}
