package backup

import (
	"context"

	"github.com/rfandrade/creditledger/internal/backup/dto"
)

type Repository interface {
	// Snapshot reads every table into a payload (schemaVersion and
	// exportedAt left to the caller).
	Snapshot(ctx context.Context) (*dto.File, error)
	// Replace clears all tables and bulk-inserts the payload, all in one
	// transaction.
	Replace(ctx context.Context, f *dto.File) error
	// Merge upserts the payload by primary key in one transaction; nothing
	// is deleted.
	Merge(ctx context.Context, f *dto.File) error
}
