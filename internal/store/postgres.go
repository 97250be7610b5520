package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eatery/internal/model"
)

// ErrNotFound is returned when a lookup matches no row. Callers map it to
// their own business errors.
var ErrNotFound = errors.New("not found")

// Postgres is the single store of record. It owns all SQL; services talk to
// it through narrow per-consumer interfaces.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// SubmitOrder applies the whole submission as one transaction: one order
// row, one detail row per cart line, and the user's cart emptied. A failure
// anywhere leaves none of the three effects visible.
func (p *Postgres) SubmitOrder(ctx context.Context, order *model.Order, details []model.OrderDetail) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (number, user_id, address_book_id, status, pay_status, amount, remark,
			consignee, phone, address, user_name, order_time,
			created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`, order.Number, order.UserID, order.AddressBookID, order.Status, order.PayStatus,
		order.Amount, order.Remark, order.Consignee, order.Phone, order.Address,
		order.UserName, order.OrderTime,
		order.CreatedAt, order.UpdatedAt, order.CreatedBy, order.UpdatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for _, d := range details {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_detail (order_id, dish_id, setmeal_id, name, image, flavor, amount, number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, d.DishID, d.SetmealID, d.Name, d.Image, d.Flavor, d.Amount, d.Number)
		if err != nil {
			return 0, fmt.Errorf("insert order detail: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM shopping_cart WHERE user_id = $1`, order.UserID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return id, nil
}

func (p *Postgres) GetOrderByNumber(ctx context.Context, number string) (*model.Order, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, number, user_id, address_book_id, status, pay_status, amount, remark,
			consignee, phone, address, user_name, cancel_reason,
			order_time, checkout_time, delivery_time, cancel_time
		FROM orders
		WHERE number = $1
	`, number)

	var o model.Order
	err := row.Scan(&o.ID, &o.Number, &o.UserID, &o.AddressBookID, &o.Status, &o.PayStatus,
		&o.Amount, &o.Remark, &o.Consignee, &o.Phone, &o.Address, &o.UserName,
		&o.CancelReason, &o.OrderTime, &o.CheckoutTime, &o.DeliveryTime, &o.CancelTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order by number: %w", err)
	}

	return &o, nil
}

// MarkPaid is the single atomic settlement update.
func (p *Postgres) MarkPaid(ctx context.Context, id int64, at time.Time, actor int64) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, pay_status = $2, checkout_time = $3, updated_at = $3, updated_by = $4
		WHERE id = $5
	`, model.StatusToBeConfirmed, model.PayStatusPaid, at, actor, id)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	return nil
}

func (p *Postgres) SelectByStatusOlderThan(ctx context.Context, status model.OrderStatus, deadline time.Time) ([]model.Order, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, number, user_id, status, pay_status, amount, order_time
		FROM orders
		WHERE status = $1 AND order_time < $2
		ORDER BY order_time ASC
	`, status, deadline)
	if err != nil {
		return nil, fmt.Errorf("query orders by status and deadline: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.Number, &o.UserID, &o.Status, &o.PayStatus, &o.Amount, &o.OrderTime); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}

// CancelExpired repeats the PENDING_PAYMENT predicate so an order the user
// paid between select and update is skipped, never downgraded.
func (p *Postgres) CancelExpired(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, cancel_reason = $2, cancel_time = $3, updated_at = $3, updated_by = 0
		WHERE id = $4 AND status = $5
	`, model.StatusCancelled, reason, at, id, model.StatusPendingPayment)
	if err != nil {
		return fmt.Errorf("cancel expired order: %w", err)
	}
	return nil
}

// CompleteDelivered carries the same status guard as CancelExpired.
func (p *Postgres) CompleteDelivered(ctx context.Context, id int64, at time.Time) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, delivery_time = $2, updated_at = $2, updated_by = 0
		WHERE id = $3 AND status = $4
	`, model.StatusCompleted, at, id, model.StatusDeliveryInProgress)
	if err != nil {
		return fmt.Errorf("complete delivered order: %w", err)
	}
	return nil
}

func (p *Postgres) ListOrderDetails(ctx context.Context, orderID int64) ([]model.OrderDetail, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, order_id, dish_id, setmeal_id, name, image, flavor, amount, number
		FROM order_detail
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order details: %w", err)
	}
	defer rows.Close()

	var details []model.OrderDetail
	for rows.Next() {
		var d model.OrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.DishID, &d.SetmealID, &d.Name, &d.Image, &d.Flavor, &d.Amount, &d.Number); err != nil {
			return nil, fmt.Errorf("scan order detail: %w", err)
		}
		details = append(details, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return details, nil
}
