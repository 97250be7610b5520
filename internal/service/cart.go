package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eatery/internal/model"
	"eatery/internal/store"
)

type CartStore interface {
	QueryCartLine(ctx context.Context, userID int64, ref model.CartItemRef) (*model.ShoppingCartLine, error)
	InsertCartLine(ctx context.Context, line *model.ShoppingCartLine) error
	UpdateCartQuantity(ctx context.Context, id int64, number int, at time.Time, actor int64) error
	DeleteCartLine(ctx context.Context, id int64) error
	ListCart(ctx context.Context, userID int64) ([]model.ShoppingCartLine, error)
	ClearCart(ctx context.Context, userID int64) error
}

type CatalogReader interface {
	GetDish(ctx context.Context, id int64) (*model.Dish, error)
	GetSetmeal(ctx context.Context, id int64) (*model.Setmeal, error)
}

type CartService struct {
	carts   CartStore
	catalog CatalogReader
	now     func() time.Time
}

func NewCartService(carts CartStore, catalog CatalogReader) *CartService {
	return &CartService{carts: carts, catalog: catalog, now: time.Now}
}

// Add increments the line matching (item, flavor) or inserts a new one with
// the current catalog name and price snapshotted onto it.
func (s *CartService) Add(ctx context.Context, userID int64, ref model.CartItemRef) error {
	if !ref.Valid() {
		return ErrInvalidCartItem
	}

	now := s.now()

	existing, err := s.carts.QueryCartLine(ctx, userID, ref)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("query cart line: %w", err)
	}
	if existing != nil {
		if err := s.carts.UpdateCartQuantity(ctx, existing.ID, existing.Number+1, now, userID); err != nil {
			return fmt.Errorf("increment cart line: %w", err)
		}
		return nil
	}

	line := &model.ShoppingCartLine{
		UserID:    userID,
		DishID:    ref.DishID,
		SetmealID: ref.SetmealID,
		Flavor:    ref.Flavor,
		Number:    1,
	}
	if ref.DishID != nil {
		dish, err := s.catalog.GetDish(ctx, *ref.DishID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnknownProduct
			}
			return fmt.Errorf("load dish: %w", err)
		}
		line.Name = dish.Name
		line.Amount = dish.Price
		line.Image = dish.Image
	} else {
		setmeal, err := s.catalog.GetSetmeal(ctx, *ref.SetmealID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUnknownProduct
			}
			return fmt.Errorf("load setmeal: %w", err)
		}
		line.Name = setmeal.Name
		line.Amount = setmeal.Price
		line.Image = setmeal.Image
	}
	line.StampCreate(now, userID)

	if err := s.carts.InsertCartLine(ctx, line); err != nil {
		return fmt.Errorf("insert cart line: %w", err)
	}
	return nil
}

// Sub decrements the matching line and deletes it when the quantity reaches
// zero. A missing line is a no-op.
func (s *CartService) Sub(ctx context.Context, userID int64, ref model.CartItemRef) error {
	if !ref.Valid() {
		return ErrInvalidCartItem
	}

	existing, err := s.carts.QueryCartLine(ctx, userID, ref)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("query cart line: %w", err)
	}

	if existing.Number > 1 {
		if err := s.carts.UpdateCartQuantity(ctx, existing.ID, existing.Number-1, s.now(), userID); err != nil {
			return fmt.Errorf("decrement cart line: %w", err)
		}
		return nil
	}

	if err := s.carts.DeleteCartLine(ctx, existing.ID); err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (s *CartService) List(ctx context.Context, userID int64) ([]model.ShoppingCartLine, error) {
	lines, err := s.carts.ListCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return lines, nil
}

func (s *CartService) Clean(ctx context.Context, userID int64) error {
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("clean cart: %w", err)
	}
	return nil
}
