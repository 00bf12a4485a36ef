package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rfandrade/creditledger/internal/inventory/dto"
	"github.com/rfandrade/creditledger/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByProduct(ctx context.Context, productID string) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.DB.GetContext(ctx, &inv, `SELECT * FROM inventory WHERE product_id = $1`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.Inventory, int, error) {
	var items []model.Inventory
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM inventory" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM inventory" + whereClause + " ORDER BY updated_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

const upsertInventoryQuery = `
        INSERT INTO inventory (
            product_id, on_hand_grams, on_hand_units,
            reserved_grams, reserved_units, updated_at
        )
        VALUES (
            :product_id, :on_hand_grams, :on_hand_units,
            :reserved_grams, :reserved_units, :updated_at
        )
        ON CONFLICT (product_id)
        DO UPDATE SET
            on_hand_grams = EXCLUDED.on_hand_grams,
            on_hand_units = EXCLUDED.on_hand_units,
            reserved_grams = EXCLUDED.reserved_grams,
            reserved_units = EXCLUDED.reserved_units,
            updated_at = EXCLUDED.updated_at
    `

func (r *PGRepository) Upsert(ctx context.Context, inv *model.Inventory) error {
	_, err := r.DB.NamedExecContext(ctx, upsertInventoryQuery, inv)
	return err
}

func (r *PGRepository) ApplyWithAdjustment(ctx context.Context, inv *model.Inventory, adj *model.InventoryAdjustment) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Audit trail is write-before-effect: the adjustment row lands before
	// the counters move.
	insertAdjQuery := `
        INSERT INTO inventory_adjustments (
            id, product_id, type, grams_delta, units_delta, note, created_at
        )
        VALUES (
            :id, :product_id, :type, :grams_delta, :units_delta, :note, :created_at
        )
    `
	if _, err = tx.NamedExecContext(ctx, insertAdjQuery, adj); err != nil {
		return fmt.Errorf("failed to log adjustment: %w", err)
	}

	if _, err = tx.NamedExecContext(ctx, upsertInventoryQuery, inv); err != nil {
		return fmt.Errorf("failed to update inventory: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) ListAdjustments(ctx context.Context, f *dto.AdjustmentFilters) ([]model.InventoryAdjustment, int, error) {
	var items []model.InventoryAdjustment
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.Type != "" {
		conditions = append(conditions, "type = :type")
		args["type"] = f.Type
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM inventory_adjustments" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM inventory_adjustments" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}
