package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"eatery/internal/model"
	"eatery/internal/store"
)

type mockCartStore struct {
	lines  map[int64]*model.ShoppingCartLine
	nextID int64

	updateCalls int
	lastQty     int
	deleteCalls int
	clearCalls  int
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{lines: make(map[int64]*model.ShoppingCartLine), nextID: 1}
}

func sameRef(line *model.ShoppingCartLine, ref model.CartItemRef) bool {
	if line.Flavor != ref.Flavor {
		return false
	}
	if ref.DishID != nil {
		return line.DishID != nil && *line.DishID == *ref.DishID
	}
	return line.SetmealID != nil && *line.SetmealID == *ref.SetmealID
}

func (m *mockCartStore) QueryCartLine(ctx context.Context, userID int64, ref model.CartItemRef) (*model.ShoppingCartLine, error) {
	for _, line := range m.lines {
		if line.UserID == userID && sameRef(line, ref) {
			copied := *line
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockCartStore) InsertCartLine(ctx context.Context, line *model.ShoppingCartLine) error {
	stored := *line
	stored.ID = m.nextID
	m.nextID++
	m.lines[stored.ID] = &stored
	return nil
}

func (m *mockCartStore) UpdateCartQuantity(ctx context.Context, id int64, number int, at time.Time, actor int64) error {
	m.updateCalls++
	m.lastQty = number
	if line, ok := m.lines[id]; ok {
		line.Number = number
	}
	return nil
}

func (m *mockCartStore) DeleteCartLine(ctx context.Context, id int64) error {
	m.deleteCalls++
	delete(m.lines, id)
	return nil
}

func (m *mockCartStore) ListCart(ctx context.Context, userID int64) ([]model.ShoppingCartLine, error) {
	var out []model.ShoppingCartLine
	for _, line := range m.lines {
		if line.UserID == userID {
			out = append(out, *line)
		}
	}
	return out, nil
}

func (m *mockCartStore) ClearCart(ctx context.Context, userID int64) error {
	m.clearCalls++
	for id, line := range m.lines {
		if line.UserID == userID {
			delete(m.lines, id)
		}
	}
	return nil
}

type mockCatalog struct {
	dishes   map[int64]*model.Dish
	setmeals map[int64]*model.Setmeal
}

func (m *mockCatalog) GetDish(ctx context.Context, id int64) (*model.Dish, error) {
	d, ok := m.dishes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return d, nil
}

func (m *mockCatalog) GetSetmeal(ctx context.Context, id int64) (*model.Setmeal, error) {
	s, ok := m.setmeals[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s, nil
}

func newCartFixture() (*CartService, *mockCartStore) {
	carts := newMockCartStore()
	catalog := &mockCatalog{
		dishes:   map[int64]*model.Dish{101: {ID: 101, Name: "dish A", Price: 5}},
		setmeals: map[int64]*model.Setmeal{201: {ID: 201, Name: "meal B", Price: 10}},
	}
	svc := NewCartService(carts, catalog)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc, carts
}

func TestCartAddNewLineSnapshots(t *testing.T) {
	svc, carts := newCartFixture()

	if err := svc.Add(context.Background(), 7, model.CartItemRef{DishID: dishID(101), Flavor: "spicy"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines, _ := carts.ListCart(context.Background(), 7)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	if line.Name != "dish A" || line.Amount != 5 {
		t.Errorf("catalog snapshot not copied: %+v", line)
	}
	if line.Number != 1 {
		t.Errorf("new line quantity must be 1, got %d", line.Number)
	}
	if line.Flavor != "spicy" {
		t.Errorf("flavor signature lost: %q", line.Flavor)
	}
}

func TestCartAddIncrementsExisting(t *testing.T) {
	svc, carts := newCartFixture()
	ref := model.CartItemRef{DishID: dishID(101), Flavor: "spicy"}

	for i := 0; i < 3; i++ {
		if err := svc.Add(context.Background(), 7, ref); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	lines, _ := carts.ListCart(context.Background(), 7)
	if len(lines) != 1 {
		t.Fatalf("identical key must stay one line, got %d", len(lines))
	}
	if lines[0].Number != 3 {
		t.Errorf("expected quantity 3, got %d", lines[0].Number)
	}
}

func TestCartAddDifferentFlavorIsNewLine(t *testing.T) {
	svc, carts := newCartFixture()

	_ = svc.Add(context.Background(), 7, model.CartItemRef{DishID: dishID(101), Flavor: "spicy"})
	_ = svc.Add(context.Background(), 7, model.CartItemRef{DishID: dishID(101), Flavor: "mild"})

	lines, _ := carts.ListCart(context.Background(), 7)
	if len(lines) != 2 {
		t.Fatalf("different flavor must be a separate line, got %d", len(lines))
	}
}

func TestCartSubDecrementsAndDeletes(t *testing.T) {
	svc, carts := newCartFixture()
	ref := model.CartItemRef{SetmealID: dishID(201)}

	_ = svc.Add(context.Background(), 7, ref)
	_ = svc.Add(context.Background(), 7, ref)

	if err := svc.Sub(context.Background(), 7, ref); err != nil {
		t.Fatalf("sub: %v", err)
	}
	lines, _ := carts.ListCart(context.Background(), 7)
	if len(lines) != 1 || lines[0].Number != 1 {
		t.Fatalf("expected one line at quantity 1, got %+v", lines)
	}

	if err := svc.Sub(context.Background(), 7, ref); err != nil {
		t.Fatalf("sub to zero: %v", err)
	}
	lines, _ = carts.ListCart(context.Background(), 7)
	if len(lines) != 0 {
		t.Errorf("line must be deleted at zero quantity, got %+v", lines)
	}
	if carts.deleteCalls != 1 {
		t.Errorf("expected one delete, got %d", carts.deleteCalls)
	}
}

func TestCartSubMissingLineIsNoop(t *testing.T) {
	svc, carts := newCartFixture()

	if err := svc.Sub(context.Background(), 7, model.CartItemRef{DishID: dishID(101)}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if carts.deleteCalls != 0 || carts.updateCalls != 0 {
		t.Errorf("nothing must change for a missing line")
	}
}

func TestCartAddValidation(t *testing.T) {
	svc, _ := newCartFixture()

	err := svc.Add(context.Background(), 7, model.CartItemRef{})
	if !errors.Is(err, ErrInvalidCartItem) {
		t.Errorf("expected ErrInvalidCartItem for empty ref, got %v", err)
	}

	err = svc.Add(context.Background(), 7, model.CartItemRef{DishID: dishID(101), SetmealID: dishID(201)})
	if !errors.Is(err, ErrInvalidCartItem) {
		t.Errorf("expected ErrInvalidCartItem for double ref, got %v", err)
	}

	err = svc.Add(context.Background(), 7, model.CartItemRef{DishID: dishID(999)})
	if !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("expected ErrUnknownProduct, got %v", err)
	}
}

func TestCartClean(t *testing.T) {
	svc, carts := newCartFixture()
	_ = svc.Add(context.Background(), 7, model.CartItemRef{DishID: dishID(101)})
	_ = svc.Add(context.Background(), 7, model.CartItemRef{SetmealID: dishID(201)})

	if err := svc.Clean(context.Background(), 7); err != nil {
		t.Fatalf("clean: %v", err)
	}
	lines, _ := carts.ListCart(context.Background(), 7)
	if len(lines) != 0 {
		t.Errorf("cart must be empty after clean, got %+v", lines)
	}
}
