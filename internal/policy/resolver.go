// Package policy resolves the risk tier applied to a new order and turns a
// payment into deliverable quantity under that tier. Everything here is a
// pure function of its inputs; persistence of the resulting snapshot belongs
// to the order lifecycle.
package policy

import (
	"time"

	"github.com/rfandrade/creditledger/internal/model"
)

type Resolved struct {
	Tier          model.PolicyTier `json:"tier"`
	HoldbackPct   float64          `json:"holdback_pct"`
	DepositMinPct float64          `json:"deposit_min_pct"`
	CanAdvance    bool             `json:"can_advance"`
}

// Resolve maps active risk tags and the over-typical flag to a tier, first
// match wins. Tag expiry is judged against now, so a tag can go stale
// between two resolutions.
func Resolve(tags []model.CustomerTag, overTypical bool, now time.Time, s *model.Settings) Resolved {
	if hasLiveTag(tags, model.TagDoNotAdvance, now) {
		return Resolved{
			Tier:          model.TierDoNotAdvance,
			HoldbackPct:   1.0,
			DepositMinPct: 1.0,
			CanAdvance:    false,
		}
	}
	if hasLiveTag(tags, model.TagLate, now) {
		return Resolved{
			Tier:          model.TierLate,
			HoldbackPct:   s.LateHoldbackPct,
			DepositMinPct: s.LateDepositMinPct,
			CanAdvance:    true,
		}
	}
	if overTypical {
		return Resolved{
			Tier:          model.TierOverTypical,
			HoldbackPct:   s.OverTypicalHoldbackPct,
			DepositMinPct: s.OverTypicalDepositMinPct,
			CanAdvance:    true,
		}
	}
	return Resolved{
		Tier:          model.TierNormal,
		HoldbackPct:   s.NormalHoldbackPct,
		DepositMinPct: s.NormalDepositMinPct,
		CanAdvance:    true,
	}
}

func hasLiveTag(tags []model.CustomerTag, tag string, now time.Time) bool {
	for _, t := range tags {
		if t.Tag == tag && !t.Expired(now) {
			return true
		}
	}
	return false
}
