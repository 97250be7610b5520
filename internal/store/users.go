package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eatery/internal/model"
)

var ErrDuplicateLogin = errors.New("login already exists")

func (p *Postgres) CreateUser(ctx context.Context, login string, passwordHash []byte, name string) (*model.User, error) {
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO users (login, password_hash, name) VALUES ($1, $2, $3)
		RETURNING id, login, name, created_at
	`, login, passwordHash, name)

	var user model.User
	if err := row.Scan(&user.ID, &user.Login, &user.Name, &user.CreatedAt); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, ErrDuplicateLogin
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	user.PasswordHash = passwordHash

	return &user, nil
}

func (p *Postgres) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, login, password_hash, name, provider_id, created_at FROM users WHERE login = $1
	`, login)
	return scanUser(row)
}

func (p *Postgres) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, login, password_hash, name, provider_id, created_at FROM users WHERE id = $1
	`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(&user.ID, &user.Login, &user.PasswordHash, &user.Name, &user.ProviderID, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetAddress resolves an address-book entry and checks it belongs to the
// given user.
func (p *Postgres) GetAddress(ctx context.Context, id, userID int64) (*model.AddressBookEntry, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, consignee, phone, detail, is_default
		FROM address_book
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	var a model.AddressBookEntry
	err := row.Scan(&a.ID, &a.UserID, &a.Consignee, &a.Phone, &a.Detail, &a.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	return &a, nil
}
