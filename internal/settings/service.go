package settings

import (
	"context"
	"time"

	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/pkg/apperr"
)

// Service fronts the singleton configuration row. Reads fall back to
// defaults when nothing has been saved yet, so callers never see nil.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (*model.Settings, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return model.DefaultSettings(), nil
	}
	return current, nil
}

func (s *Service) Update(ctx context.Context, next *model.Settings) (*model.Settings, error) {
	if err := validate(next); err != nil {
		return nil, err
	}
	next.ID = 1
	next.UpdatedAt = time.Now()
	if err := s.repo.Upsert(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func validate(s *model.Settings) error {
	pcts := map[string]float64{
		"normal_holdback_pct":          s.NormalHoldbackPct,
		"normal_deposit_min_pct":       s.NormalDepositMinPct,
		"over_typical_holdback_pct":    s.OverTypicalHoldbackPct,
		"over_typical_deposit_min_pct": s.OverTypicalDepositMinPct,
		"late_holdback_pct":            s.LateHoldbackPct,
		"late_deposit_min_pct":         s.LateDepositMinPct,
	}
	for name, v := range pcts {
		if v < 0 || v > 1 {
			return apperr.Validation("%s must be between 0 and 1, got %v", name, v)
		}
	}
	if s.HistoryWindow < 1 {
		return apperr.Validation("history_window must be at least 1")
	}
	if s.MinSpreadGrams < 0 {
		return apperr.Validation("min_spread_grams must not be negative")
	}
	return nil
}
