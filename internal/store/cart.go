package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eatery/internal/model"
)

const cartColumns = `id, user_id, dish_id, setmeal_id, name, image, flavor, amount, number`

// QueryCartLine looks up the line identified by (user, dish-or-setmeal,
// flavor). The flavor signature is part of the key.
func (p *Postgres) QueryCartLine(ctx context.Context, userID int64, ref model.CartItemRef) (*model.ShoppingCartLine, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+cartColumns+`
		FROM shopping_cart
		WHERE user_id = $1
		  AND dish_id IS NOT DISTINCT FROM $2
		  AND setmeal_id IS NOT DISTINCT FROM $3
		  AND flavor = $4
	`, userID, ref.DishID, ref.SetmealID, ref.Flavor)

	line, err := scanCartLine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query cart line: %w", err)
	}
	return line, nil
}

func (p *Postgres) InsertCartLine(ctx context.Context, line *model.ShoppingCartLine) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO shopping_cart (user_id, dish_id, setmeal_id, name, image, flavor, amount, number,
			created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, line.UserID, line.DishID, line.SetmealID, line.Name, line.Image, line.Flavor,
		line.Amount, line.Number, line.CreatedAt, line.UpdatedAt, line.CreatedBy, line.UpdatedBy)
	if err != nil {
		return fmt.Errorf("insert cart line: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateCartQuantity(ctx context.Context, id int64, number int, at time.Time, actor int64) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE shopping_cart SET number = $1, updated_at = $2, updated_by = $3 WHERE id = $4
	`, number, at, actor, id)
	if err != nil {
		return fmt.Errorf("update cart quantity: %w", err)
	}
	return nil
}

func (p *Postgres) DeleteCartLine(ctx context.Context, id int64) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM shopping_cart WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (p *Postgres) ListCart(ctx context.Context, userID int64) ([]model.ShoppingCartLine, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+cartColumns+`
		FROM shopping_cart
		WHERE user_id = $1
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	var lines []model.ShoppingCartLine
	for rows.Next() {
		line, err := scanCartLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, *line)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return lines, nil
}

func (p *Postgres) ClearCart(ctx context.Context, userID int64) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM shopping_cart WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (p *Postgres) GetDish(ctx context.Context, id int64) (*model.Dish, error) {
	var d model.Dish
	err := p.db.QueryRowContext(ctx, `SELECT id, name, price, image FROM dishes WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Price, &d.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dish: %w", err)
	}
	return &d, nil
}

func (p *Postgres) GetSetmeal(ctx context.Context, id int64) (*model.Setmeal, error) {
	var m model.Setmeal
	err := p.db.QueryRowContext(ctx, `SELECT id, name, price, image FROM setmeals WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Price, &m.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get setmeal: %w", err)
	}
	return &m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCartLine(row rowScanner) (*model.ShoppingCartLine, error) {
	var line model.ShoppingCartLine
	err := row.Scan(&line.ID, &line.UserID, &line.DishID, &line.SetmealID,
		&line.Name, &line.Image, &line.Flavor, &line.Amount, &line.Number)
	if err != nil {
		return nil, err
	}
	return &line, nil
}
