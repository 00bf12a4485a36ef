package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rfandrade/creditledger/internal/customer/dto"
	"github.com/rfandrade/creditledger/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, c *model.Customer) error {
	query := `
        INSERT INTO customers (
            id, name, phone, default_address, default_fulfillway,
            notes, is_active, created_at, updated_at
        )
        VALUES (
            :id, :name, :phone, :default_address, :default_fulfillway,
            :notes, :is_active, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) Update(ctx context.Context, c *model.Customer) error {
	query := `
        UPDATE customers SET
            name = :name,
            phone = :phone,
            default_address = :default_address,
            default_fulfillway = :default_fulfillway,
            notes = :notes,
            is_active = :is_active,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	err := r.DB.GetContext(ctx, &c, `SELECT * FROM customers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CustomerFilters) ([]model.Customer, int, error) {
	var items []model.Customer
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM customers" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM customers" + whereClause + " ORDER BY name ASC"
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

func (r *PGRepository) UpsertTag(ctx context.Context, tag *model.CustomerTag) error {
	query := `
        INSERT INTO customer_tags (
            id, customer_id, tag, reason, created_at, expires_at
        )
        VALUES (
            :id, :customer_id, :tag, :reason, :created_at, :expires_at
        )
        ON CONFLICT (customer_id, tag)
        DO UPDATE SET
            reason = EXCLUDED.reason,
            created_at = EXCLUDED.created_at,
            expires_at = EXCLUDED.expires_at
    `
	_, err := r.DB.NamedExecContext(ctx, query, tag)
	return err
}

func (r *PGRepository) DeleteTag(ctx context.Context, customerID, tag string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM customer_tags WHERE customer_id = $1 AND tag = $2`, customerID, tag)
	return err
}

func (r *PGRepository) ListTags(ctx context.Context, customerID string) ([]model.CustomerTag, error) {
	var tags []model.CustomerTag
	err := r.DB.SelectContext(ctx, &tags,
		`SELECT * FROM customer_tags WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
	return tags, err
}

func (r *PGRepository) CustomersTagged(ctx context.Context, tag string) ([]string, error) {
	var ids []string
	err := r.DB.SelectContext(ctx, &ids,
		`SELECT customer_id FROM customer_tags WHERE tag = $1`, tag)
	return ids, err
}
