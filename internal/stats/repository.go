package stats

import (
	"context"

	"github.com/rfandrade/creditledger/internal/model"
)

type SampleFilter struct {
	Window         int  // most recent N qualifying orders
	IncludePartial bool // widen CLOSED to CLOSED+PARTIAL
	Quality        *model.QualityTier
}

type Repository interface {
	// RecentOrderGrams returns one sample per qualifying order: the sum of
	// requested grams across its items (optionally filtered by quality),
	// most recent first. Orders contributing zero grams are excluded.
	RecentOrderGrams(ctx context.Context, customerID string, f SampleFilter) ([]float64, error)
}
