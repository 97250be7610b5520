package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eatery/internal/metrics"
	"eatery/internal/model"
	"eatery/internal/notify"
	"eatery/internal/ordernum"
	"eatery/internal/store"
)

type OrderStore interface {
	SubmitOrder(ctx context.Context, order *model.Order, details []model.OrderDetail) (int64, error)
	GetOrderByNumber(ctx context.Context, number string) (*model.Order, error)
	MarkPaid(ctx context.Context, id int64, at time.Time, actor int64) error
}

type CartReader interface {
	ListCart(ctx context.Context, userID int64) ([]model.ShoppingCartLine, error)
}

type UserReader interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

type AddressReader interface {
	GetAddress(ctx context.Context, id, userID int64) (*model.AddressBookEntry, error)
}

type OrderService struct {
	orders    OrderStore
	carts     CartReader
	users     UserReader
	addresses AddressReader
	provider  PaymentProvider
	notifier  notify.Notifier
	numbers   *ordernum.Generator
	met       *metrics.Registry
	now       func() time.Time
}

func NewOrderService(orders OrderStore, carts CartReader, users UserReader, addresses AddressReader,
	provider PaymentProvider, notifier notify.Notifier, numbers *ordernum.Generator, met *metrics.Registry) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		users:     users,
		addresses: addresses,
		provider:  provider,
		notifier:  notifier,
		numbers:   numbers,
		met:       met,
		now:       time.Now,
	}
}

// Submit materializes the user's cart into an order. The order row, its
// detail lines and the cart deletion land in one store transaction; the
// consignee/phone/address/name snapshots are taken here and never refreshed.
func (s *OrderService) Submit(ctx context.Context, userID, addressID int64) (*model.OrderReceipt, error) {
	address, err := s.addresses.GetAddress(ctx, addressID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidAddress
		}
		return nil, fmt.Errorf("resolve address: %w", err)
	}

	lines, err := s.carts.ListCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := s.now()

	var amount float64
	details := make([]model.OrderDetail, 0, len(lines))
	for _, line := range lines {
		amount += line.Amount * float64(line.Number)
		details = append(details, model.OrderDetail{
			DishID:    line.DishID,
			SetmealID: line.SetmealID,
			Name:      line.Name,
			Image:     line.Image,
			Flavor:    line.Flavor,
			Amount:    line.Amount,
			Number:    line.Number,
		})
	}

	order := &model.Order{
		Number:        s.numbers.Next(now),
		UserID:        userID,
		AddressBookID: addressID,
		Status:        model.StatusPendingPayment,
		PayStatus:     model.PayStatusUnpaid,
		Amount:        amount,
		Consignee:     address.Consignee,
		Phone:         address.Phone,
		Address:       address.Detail,
		UserName:      user.Name,
		OrderTime:     now,
	}
	order.StampCreate(now, userID)

	id, err := s.orders.SubmitOrder(ctx, order, details)
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}
	order.ID = id
	s.met.OrdersSubmitted.Inc()

	if err := s.notifier.OrderSubmitted(ctx, order); err != nil {
		slog.Error("order submitted notification failed", "number", order.Number, "error", err)
	}

	return &model.OrderReceipt{
		ID:        id,
		Number:    order.Number,
		Amount:    amount,
		OrderTime: now,
	}, nil
}

// RequestPayment asks the provider for a payable transaction for the order.
func (s *OrderService) RequestPayment(ctx context.Context, userID int64, orderNumber string) (*PaymentHandle, error) {
	order, err := s.orders.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownOrder
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrUnknownOrder
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	handle, alreadyPaid, err := s.provider.CreatePayment(ctx, orderNumber, order.Amount, "takeout order", user.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	if alreadyPaid {
		return nil, ErrAlreadyPaid
	}

	return &handle, nil
}

// ApplySettlement is the provider's out-of-band settlement callback.
// Re-applying to an already-paid order is a no-op so retried callbacks stay
// harmless.
func (s *OrderService) ApplySettlement(ctx context.Context, orderNumber string) error {
	order, err := s.orders.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownOrder
		}
		return fmt.Errorf("load order: %w", err)
	}

	if order.PayStatus == model.PayStatusPaid {
		slog.Info("settlement already applied", "number", orderNumber)
		return nil
	}

	now := s.now()
	if err := s.orders.MarkPaid(ctx, order.ID, now, order.UserID); err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	s.met.PaymentsApplied.Inc()

	order.Status = model.StatusToBeConfirmed
	order.PayStatus = model.PayStatusPaid
	order.CheckoutTime = &now
	if err := s.notifier.OrderPaid(ctx, order); err != nil {
		slog.Error("order paid notification failed", "number", order.Number, "error", err)
	}

	return nil
}
