package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rfandrade/creditledger/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Get(ctx context.Context) (*model.Settings, error) {
	var s model.Settings
	err := r.DB.GetContext(ctx, &s, `SELECT * FROM settings WHERE id = 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) Upsert(ctx context.Context, s *model.Settings) error {
	query := `
        INSERT INTO settings (
            id, normal_holdback_pct, normal_deposit_min_pct,
            over_typical_holdback_pct, over_typical_deposit_min_pct,
            late_holdback_pct, late_deposit_min_pct,
            history_window, include_partial_history, min_spread_grams,
            display_weight_unit, updated_at
        )
        VALUES (
            1, :normal_holdback_pct, :normal_deposit_min_pct,
            :over_typical_holdback_pct, :over_typical_deposit_min_pct,
            :late_holdback_pct, :late_deposit_min_pct,
            :history_window, :include_partial_history, :min_spread_grams,
            :display_weight_unit, :updated_at
        )
        ON CONFLICT (id)
        DO UPDATE SET
            normal_holdback_pct = EXCLUDED.normal_holdback_pct,
            normal_deposit_min_pct = EXCLUDED.normal_deposit_min_pct,
            over_typical_holdback_pct = EXCLUDED.over_typical_holdback_pct,
            over_typical_deposit_min_pct = EXCLUDED.over_typical_deposit_min_pct,
            late_holdback_pct = EXCLUDED.late_holdback_pct,
            late_deposit_min_pct = EXCLUDED.late_deposit_min_pct,
            history_window = EXCLUDED.history_window,
            include_partial_history = EXCLUDED.include_partial_history,
            min_spread_grams = EXCLUDED.min_spread_grams,
            display_weight_unit = EXCLUDED.display_weight_unit,
            updated_at = EXCLUDED.updated_at
    `
	_, err := r.DB.NamedExecContext(ctx, query, s)
	return err
}
