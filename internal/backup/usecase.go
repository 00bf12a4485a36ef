package backup

import (
	"context"

	"github.com/rfandrade/creditledger/internal/backup/dto"
)

type UseCase interface {
	Export(ctx context.Context) (*dto.File, error)
	Import(ctx context.Context, f *dto.File, mode dto.ImportMode) error
}
