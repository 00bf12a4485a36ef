package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rfandrade/creditledger/internal/model"
	"github.com/rfandrade/creditledger/internal/stats"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) RecentOrderGrams(ctx context.Context, customerID string, f stats.SampleFilter) ([]float64, error) {
	statuses := []model.OrderStatus{model.StatusClosed}
	if f.IncludePartial {
		statuses = append(statuses, model.StatusPartial)
	}

	query := `
        SELECT SUM(oi.grams) AS grams
        FROM orders o
        JOIN order_items oi ON oi.order_id = o.id
        JOIN products p ON p.id = oi.product_id
        WHERE o.customer_id = ? AND o.status IN (?)
    `
	args := []interface{}{customerID, statuses}
	if f.Quality != nil {
		query += ` AND p.quality = ?`
		args = append(args, *f.Quality)
	}
	query += `
        GROUP BY o.id, o.created_at
        HAVING SUM(oi.grams) > 0
        ORDER BY o.created_at DESC
        LIMIT ?
    `
	args = append(args, f.Window)

	query, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	rows, err := r.DB.QueryxContext(ctx, query, inArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []float64
	for rows.Next() {
		var grams float64
		if err := rows.Scan(&grams); err != nil {
			return nil, err
		}
		samples = append(samples, grams)
	}
	return samples, rows.Err()
}
