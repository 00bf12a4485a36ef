package settings

import (
	"context"

	"github.com/rfandrade/creditledger/internal/model"
)

type Repository interface {
	// Get returns nil when the singleton row has not been written yet.
	Get(ctx context.Context) (*model.Settings, error)
	Upsert(ctx context.Context, s *model.Settings) error
}
