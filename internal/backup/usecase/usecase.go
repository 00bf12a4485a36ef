package usecase

import (
	"context"
	"time"

	"github.com/rfandrade/creditledger/internal/backup"
	"github.com/rfandrade/creditledger/internal/backup/dto"
	"github.com/rfandrade/creditledger/pkg/apperr"
	"github.com/rfandrade/creditledger/pkg/logger"
	"go.uber.org/zap"
)

// SchemaVersion is the highest backup format this build can read.
const SchemaVersion = 1

type backupUseCase struct {
	repo   backup.Repository
	logger logger.ZapLogger
}

func NewBackupUseCase(repo backup.Repository, log logger.ZapLogger) backup.UseCase {
	return &backupUseCase{repo: repo, logger: log}
}

func (uc *backupUseCase) Export(ctx context.Context) (*dto.File, error) {
	f, err := uc.repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	f.SchemaVersion = SchemaVersion
	f.ExportedAt = time.Now().UnixMilli()

	uc.logger.Info("backup exported",
		zap.Int("customers", len(f.Customers)),
		zap.Int("orders", len(f.Orders)),
	)
	return f, nil
}

func (uc *backupUseCase) Import(ctx context.Context, f *dto.File, mode dto.ImportMode) error {
	if f.SchemaVersion > SchemaVersion {
		return apperr.Validation(
			"backup schema version %d is newer than supported version %d",
			f.SchemaVersion, SchemaVersion,
		)
	}

	var err error
	switch mode {
	case dto.ModeReplace:
		err = uc.repo.Replace(ctx, f)
	case dto.ModeMerge:
		err = uc.repo.Merge(ctx, f)
	default:
		return apperr.Validation("unknown import mode %q", mode)
	}
	if err != nil {
		return err
	}

	uc.logger.Info("backup imported",
		zap.String("mode", string(mode)),
		zap.Int("customers", len(f.Customers)),
		zap.Int("orders", len(f.Orders)),
	)
	return nil
}
