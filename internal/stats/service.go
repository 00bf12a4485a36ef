package stats

import (
	"context"

	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/pkg/logger"
	"go.uber.org/zap"
)

type SettingsSource interface {
	Get(ctx context.Context) (*model.Settings, error)
}

// Service wires the pure engine to order history and the configured window.
type Service struct {
	repo     Repository
	settings SettingsSource
	logger   logger.ZapLogger
}

func NewService(repo Repository, settings SettingsSource, log logger.ZapLogger) *Service {
	return &Service{repo: repo, settings: settings, logger: log}
}

// TypicalOrder computes the customer's typical-order band, optionally
// restricted to one quality tier. Returns nil when the customer has no
// qualifying history.
func (s *Service) TypicalOrder(ctx context.Context, customerID string, quality *model.QualityTier) (*Result, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	samples, err := s.repo.RecentOrderGrams(ctx, customerID, SampleFilter{
		Window:         cfg.HistoryWindow,
		IncludePartial: cfg.IncludePartialHistory,
		Quality:        quality,
	})
	if err != nil {
		return nil, err
	}

	res := Compute(samples, cfg.MinSpreadGrams)
	if res != nil {
		s.logger.Debug("computed typical order",
			zap.String("customer_id", customerID),
			zap.Float64("median_grams", res.MedianGrams),
			zap.Int("samples", res.SampleCount),
		)
	}
	return res, nil
}
