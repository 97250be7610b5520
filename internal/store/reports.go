package store

import (
	"context"
	"fmt"
	"time"

	"eatery/internal/model"
)

// Aggregate queries behind the report engine. Windows are half-open:
// [start, end).

func (p *Postgres) SumTurnover(ctx context.Context, start, end time.Time, status model.OrderStatus) (float64, error) {
	var turnover float64
	err := p.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM orders
		WHERE order_time >= $1 AND order_time < $2 AND status = $3
	`, start, end, status).Scan(&turnover)
	if err != nil {
		return 0, fmt.Errorf("sum turnover: %w", err)
	}
	return turnover, nil
}

// CountOrders counts orders in the window, optionally restricted to one
// status.
func (p *Postgres) CountOrders(ctx context.Context, start, end time.Time, status *model.OrderStatus) (int64, error) {
	var count int64
	var err error
	if status != nil {
		err = p.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM orders WHERE order_time >= $1 AND order_time < $2 AND status = $3
		`, start, end, *status).Scan(&count)
	} else {
		err = p.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM orders WHERE order_time >= $1 AND order_time < $2
		`, start, end).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

// CountTotalUsers counts users registered before the window's end.
func (p *Postgres) CountTotalUsers(ctx context.Context, end time.Time) (int64, error) {
	var count int64
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE created_at < $1
	`, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count total users: %w", err)
	}
	return count, nil
}

func (p *Postgres) CountNewUsers(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE created_at >= $1 AND created_at < $2
	`, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count new users: %w", err)
	}
	return count, nil
}

// TopProductsByQuantity ranks products of orders in the given status by
// total quantity sold within the window.
func (p *Postgres) TopProductsByQuantity(ctx context.Context, start, end time.Time, status model.OrderStatus, limit int) ([]model.GoodsSale, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT od.name, SUM(od.number) AS total
		FROM order_detail od
		JOIN orders o ON o.id = od.order_id
		WHERE o.order_time >= $1 AND o.order_time < $2 AND o.status = $3
		GROUP BY od.name
		ORDER BY total DESC
		LIMIT $4
	`, start, end, status, limit)
	if err != nil {
		return nil, fmt.Errorf("query top products: %w", err)
	}
	defer rows.Close()

	var sales []model.GoodsSale
	for rows.Next() {
		var s model.GoodsSale
		if err := rows.Scan(&s.Name, &s.Number); err != nil {
			return nil, fmt.Errorf("scan product sales: %w", err)
		}
		sales = append(sales, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return sales, nil
}
