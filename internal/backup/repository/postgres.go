package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rfandrade/creditledger/internal/backup/dto"
	"github.com/rfandrade/creditledger/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Snapshot(ctx context.Context) (*dto.File, error) {
	f := &dto.File{}

	if err := r.DB.SelectContext(ctx, &f.Customers, `SELECT * FROM customers ORDER BY id`); err != nil {
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &f.CustomerTags, `SELECT * FROM customer_tags ORDER BY id`); err != nil {
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &f.Products, `SELECT * FROM products ORDER BY id`); err != nil {
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &f.Inventory, `SELECT * FROM inventory ORDER BY product_id`); err != nil {
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &f.InventoryAdjustments, `SELECT * FROM inventory_adjustments ORDER BY id`); err != nil {
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &f.Orders, `SELECT * FROM orders ORDER BY id`); err != nil {
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &f.OrderItems, `SELECT * FROM order_items ORDER BY id`); err != nil {
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &f.Payments, `SELECT * FROM payments ORDER BY id`); err != nil {
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &f.Fulfillments, `SELECT * FROM fulfillments ORDER BY id`); err != nil {
		return nil, err
	}
	if err := r.DB.SelectContext(ctx, &f.OrderPolicies, `SELECT * FROM order_policies ORDER BY order_id`); err != nil {
		return nil, err
	}

	var settings []model.Settings
	if err := r.DB.SelectContext(ctx, &settings, `SELECT * FROM settings WHERE id = 1`); err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		f.Settings = &settings[0]
	}

	return f, nil
}

// deletion order respects foreign keys: children first
var clearOrder = []string{
	"order_policies",
	"fulfillments",
	"payments",
	"order_items",
	"orders",
	"inventory_adjustments",
	"inventory",
	"products",
	"customer_tags",
	"customers",
	"settings",
}

func (r *PGRepository) Replace(ctx context.Context, f *dto.File) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range clearOrder {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := insertAll(ctx, tx, f); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepository) Merge(ctx context.Context, f *dto.File) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertAll(ctx, tx, f); err != nil {
		return err
	}
	return tx.Commit()
}

// insertAll upserts every record by primary key. Under replace the tables
// are already empty, so the same statements serve both modes.
func insertAll(ctx context.Context, tx *sqlx.Tx, f *dto.File) error {
	for i := range f.Customers {
		if err := upsert(ctx, tx, `
            INSERT INTO customers (id, name, phone, default_address, default_fulfillway, notes, is_active, created_at, updated_at)
            VALUES (:id, :name, :phone, :default_address, :default_fulfillway, :notes, :is_active, :created_at, :updated_at)
            ON CONFLICT (id) DO UPDATE SET
                name = EXCLUDED.name, phone = EXCLUDED.phone,
                default_address = EXCLUDED.default_address,
                default_fulfillway = EXCLUDED.default_fulfillway,
                notes = EXCLUDED.notes, is_active = EXCLUDED.is_active,
                created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at
        `, &f.Customers[i], "customers"); err != nil {
			return err
		}
	}
	for i := range f.CustomerTags {
		if err := upsert(ctx, tx, `
            INSERT INTO customer_tags (id, customer_id, tag, reason, created_at, expires_at)
            VALUES (:id, :customer_id, :tag, :reason, :created_at, :expires_at)
            ON CONFLICT (customer_id, tag) DO UPDATE SET
                reason = EXCLUDED.reason, created_at = EXCLUDED.created_at,
                expires_at = EXCLUDED.expires_at
        `, &f.CustomerTags[i], "customer_tags"); err != nil {
			return err
		}
	}
	for i := range f.Products {
		if err := upsert(ctx, tx, `
            INSERT INTO products (id, name, quality, sell_mode, price_per_gram_cents, price_per_unit_cents, is_active, created_at, updated_at)
            VALUES (:id, :name, :quality, :sell_mode, :price_per_gram_cents, :price_per_unit_cents, :is_active, :created_at, :updated_at)
            ON CONFLICT (id) DO UPDATE SET
                name = EXCLUDED.name, quality = EXCLUDED.quality,
                sell_mode = EXCLUDED.sell_mode,
                price_per_gram_cents = EXCLUDED.price_per_gram_cents,
                price_per_unit_cents = EXCLUDED.price_per_unit_cents,
                is_active = EXCLUDED.is_active,
                created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at
        `, &f.Products[i], "products"); err != nil {
			return err
		}
	}
	for i := range f.Inventory {
		if err := upsert(ctx, tx, `
            INSERT INTO inventory (product_id, on_hand_grams, on_hand_units, reserved_grams, reserved_units, updated_at)
            VALUES (:product_id, :on_hand_grams, :on_hand_units, :reserved_grams, :reserved_units, :updated_at)
            ON CONFLICT (product_id) DO UPDATE SET
                on_hand_grams = EXCLUDED.on_hand_grams,
                on_hand_units = EXCLUDED.on_hand_units,
                reserved_grams = EXCLUDED.reserved_grams,
                reserved_units = EXCLUDED.reserved_units,
                updated_at = EXCLUDED.updated_at
        `, &f.Inventory[i], "inventory"); err != nil {
			return err
		}
	}
	for i := range f.InventoryAdjustments {
		if err := upsert(ctx, tx, `
            INSERT INTO inventory_adjustments (id, product_id, type, grams_delta, units_delta, note, created_at)
            VALUES (:id, :product_id, :type, :grams_delta, :units_delta, :note, :created_at)
            ON CONFLICT (id) DO NOTHING
        `, &f.InventoryAdjustments[i], "inventory_adjustments"); err != nil {
			return err
		}
	}
	for i := range f.Orders {
		if err := upsert(ctx, tx, `
            INSERT INTO orders (id, customer_id, status, method, subtotal_cents, delivery_fee_cents, total_cents, due_date, late_since, created_at, updated_at)
            VALUES (:id, :customer_id, :status, :method, :subtotal_cents, :delivery_fee_cents, :total_cents, :due_date, :late_since, :created_at, :updated_at)
            ON CONFLICT (id) DO UPDATE SET
                customer_id = EXCLUDED.customer_id, status = EXCLUDED.status,
                method = EXCLUDED.method, subtotal_cents = EXCLUDED.subtotal_cents,
                delivery_fee_cents = EXCLUDED.delivery_fee_cents,
                total_cents = EXCLUDED.total_cents, due_date = EXCLUDED.due_date,
                late_since = EXCLUDED.late_since,
                created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at
        `, &f.Orders[i], "orders"); err != nil {
			return err
		}
	}
	for i := range f.OrderItems {
		if err := upsert(ctx, tx, `
            INSERT INTO order_items (id, order_id, product_id, grams, units, price_per_gram_cents, price_per_unit_cents, line_total_cents)
            VALUES (:id, :order_id, :product_id, :grams, :units, :price_per_gram_cents, :price_per_unit_cents, :line_total_cents)
            ON CONFLICT (id) DO NOTHING
        `, &f.OrderItems[i], "order_items"); err != nil {
			return err
		}
	}
	for i := range f.Payments {
		if err := upsert(ctx, tx, `
            INSERT INTO payments (id, order_id, amount_cents, method, note, created_at)
            VALUES (:id, :order_id, :amount_cents, :method, :note, :created_at)
            ON CONFLICT (id) DO NOTHING
        `, &f.Payments[i], "payments"); err != nil {
			return err
		}
	}
	for i := range f.Fulfillments {
		if err := upsert(ctx, tx, `
            INSERT INTO fulfillments (id, order_id, grams, units, event, note, created_at)
            VALUES (:id, :order_id, :grams, :units, :event, :note, :created_at)
            ON CONFLICT (id) DO NOTHING
        `, &f.Fulfillments[i], "fulfillments"); err != nil {
			return err
		}
	}
	for i := range f.OrderPolicies {
		if err := upsert(ctx, tx, `
            INSERT INTO order_policies (order_id, typical_grams, upper_normal_grams, sample_count, low_confidence, over_typical, tier, holdback_pct, deposit_min_pct, can_advance, deposit_min_cents, meets_deposit_min, deliver_now_grams, withheld_grams, deliver_now_units, withheld_units, created_at)
            VALUES (:order_id, :typical_grams, :upper_normal_grams, :sample_count, :low_confidence, :over_typical, :tier, :holdback_pct, :deposit_min_pct, :can_advance, :deposit_min_cents, :meets_deposit_min, :deliver_now_grams, :withheld_grams, :deliver_now_units, :withheld_units, :created_at)
            ON CONFLICT (order_id) DO NOTHING
        `, &f.OrderPolicies[i], "order_policies"); err != nil {
			return err
		}
	}
	if f.Settings != nil {
		if err := upsert(ctx, tx, `
            INSERT INTO settings (id, normal_holdback_pct, normal_deposit_min_pct, over_typical_holdback_pct, over_typical_deposit_min_pct, late_holdback_pct, late_deposit_min_pct, history_window, include_partial_history, min_spread_grams, display_weight_unit, updated_at)
            VALUES (1, :normal_holdback_pct, :normal_deposit_min_pct, :over_typical_holdback_pct, :over_typical_deposit_min_pct, :late_holdback_pct, :late_deposit_min_pct, :history_window, :include_partial_history, :min_spread_grams, :display_weight_unit, :updated_at)
            ON CONFLICT (id) DO UPDATE SET
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
        `, f.Settings, "settings"); err != nil {
			return err
		}
	}
	return nil
}

func upsert(ctx context.Context, tx *sqlx.Tx, query string, arg interface{}, table string) error {
	if _, err := tx.NamedExecContext(ctx, query, arg); err != nil {
		return fmt.Errorf("failed to import into %s: %w", table, err)
	}
	return nil
}
