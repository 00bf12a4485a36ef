package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/order/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertOrderQuery = `
        INSERT INTO orders (
            id, customer_id, status, method, subtotal_cents,
            delivery_fee_cents, total_cents, due_date, late_since,
            created_at, updated_at
        )
        VALUES (
            :id, :customer_id, :status, :method, :subtotal_cents,
            :delivery_fee_cents, :total_cents, :due_date, :late_since,
            :created_at, :updated_at
        )
    `

const insertItemQuery = `
        INSERT INTO order_items (
            id, order_id, product_id, grams, units,
            price_per_gram_cents, price_per_unit_cents, line_total_cents
        )
        VALUES (
            :id, :order_id, :product_id, :grams, :units,
            :price_per_gram_cents, :price_per_unit_cents, :line_total_cents
        )
    `

const insertPaymentQuery = `
        INSERT INTO payments (
            id, order_id, amount_cents, method, note, created_at
        )
        VALUES (
            :id, :order_id, :amount_cents, :method, :note, :created_at
        )
    `

const insertPolicyQuery = `
        INSERT INTO order_policies (
            order_id, typical_grams, upper_normal_grams, sample_count,
            low_confidence, over_typical, tier, holdback_pct, deposit_min_pct,
            can_advance, deposit_min_cents, meets_deposit_min,
            deliver_now_grams, withheld_grams, deliver_now_units,
            withheld_units, created_at
        )
        VALUES (
            :order_id, :typical_grams, :upper_normal_grams, :sample_count,
            :low_confidence, :over_typical, :tier, :holdback_pct, :deposit_min_pct,
            :can_advance, :deposit_min_cents, :meets_deposit_min,
            :deliver_now_grams, :withheld_grams, :deliver_now_units,
            :withheld_units, :created_at
        )
    `

func (r *PGRepository) Create(ctx context.Context, o *model.Order, items []model.OrderItem, pol *model.OrderPolicy, initialPayment *model.Payment) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.NamedExecContext(ctx, insertOrderQuery, o); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range items {
		if _, err = tx.NamedExecContext(ctx, insertItemQuery, &items[i]); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if pol != nil {
		if _, err = tx.NamedExecContext(ctx, insertPolicyQuery, pol); err != nil {
			return fmt.Errorf("failed to insert policy snapshot: %w", err)
		}
	}

	if initialPayment != nil {
		if _, err = tx.NamedExecContext(ctx, insertPaymentQuery, initialPayment); err != nil {
			return fmt.Errorf("failed to insert initial payment: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	var items []model.Order
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.CustomerID != "" {
		conditions = append(conditions, "customer_id = :customer_id")
		args["customer_id"] = f.CustomerID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM orders" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM orders" + whereClause + " ORDER BY created_at DESC"
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

func (r *PGRepository) ListItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := r.DB.SelectContext(ctx, &items,
		`SELECT * FROM order_items WHERE order_id = $1`, orderID)
	return items, err
}

func (r *PGRepository) ListPayments(ctx context.Context, orderID string) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.DB.SelectContext(ctx, &payments,
		`SELECT * FROM payments WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	return payments, err
}

func (r *PGRepository) ListFulfillments(ctx context.Context, orderID string) ([]model.Fulfillment, error) {
	var events []model.Fulfillment
	err := r.DB.SelectContext(ctx, &events,
		`SELECT * FROM fulfillments WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	return events, err
}

func (r *PGRepository) GetPolicy(ctx context.Context, orderID string) (*model.OrderPolicy, error) {
	var pol model.OrderPolicy
	err := r.DB.GetContext(ctx, &pol,
		`SELECT * FROM order_policies WHERE order_id = $1`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &pol, nil
}

func (r *PGRepository) AddPayment(ctx context.Context, p *model.Payment) error {
	_, err := r.DB.NamedExecContext(ctx, insertPaymentQuery, p)
	return err
}

func (r *PGRepository) AddFulfillment(ctx context.Context, f *model.Fulfillment) error {
	query := `
        INSERT INTO fulfillments (
            id, order_id, grams, units, event, note, created_at
        )
        VALUES (
            :id, :order_id, :grams, :units, :event, :note, :created_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, f)
	return err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		status, at, orderID)
	return err
}

func (r *PGRepository) OutstandingByCustomer(ctx context.Context, customerID string) (int64, error) {
	var balance int64
	err := r.DB.GetContext(ctx, &balance, `
        SELECT COALESCE(SUM(GREATEST(0, o.total_cents - COALESCE(p.paid, 0))), 0)
        FROM orders o
        LEFT JOIN (
            SELECT order_id, SUM(amount_cents) AS paid
            FROM payments GROUP BY order_id
        ) p ON p.order_id = o.id
        WHERE o.customer_id = $1 AND o.status IN ('OPEN', 'PARTIAL')
    `, customerID)
	return balance, err
}

func (r *PGRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.DB.SelectContext(ctx, &orders, `
        SELECT o.*
        FROM orders o
        LEFT JOIN (
            SELECT order_id, SUM(amount_cents) AS paid
            FROM payments GROUP BY order_id
        ) p ON p.order_id = o.id
        WHERE o.status IN ('OPEN', 'PARTIAL')
          AND o.due_date IS NOT NULL
          AND o.due_date < $1
          AND o.total_cents - COALESCE(p.paid, 0) > 0
    `, asOf)
	return orders, err
}

func (r *PGRepository) MarkLateSince(ctx context.Context, orderID string, at time.Time) error {
	// only the first sweep sets the timestamp
	_, err := r.DB.ExecContext(ctx,
		`UPDATE orders SET late_since = $1 WHERE id = $2 AND late_since IS NULL`,
		at, orderID)
	return err
}
