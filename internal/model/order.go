package model

import (
	"time"
)

type OrderStatus int

const (
	StatusPendingPayment     OrderStatus = 1
	StatusToBeConfirmed      OrderStatus = 2
	StatusConfirmed          OrderStatus = 3
	StatusDeliveryInProgress OrderStatus = 4
	StatusCompleted          OrderStatus = 5
	StatusCancelled          OrderStatus = 6
)

func (s OrderStatus) String() string {
	switch s {
	case StatusPendingPayment:
		return "PENDING_PAYMENT"
	case StatusToBeConfirmed:
		return "TO_BE_CONFIRMED"
	case StatusConfirmed:
		return "CONFIRMED"
	case StatusDeliveryInProgress:
		return "DELIVERY_IN_PROGRESS"
	case StatusCompleted:
		return "COMPLETED"
	case StatusCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

type PayStatus int

const (
	PayStatusUnpaid   PayStatus = 0
	PayStatusPaid     PayStatus = 1
	PayStatusRefunded PayStatus = 2
)

// Order is a point-in-time snapshot: consignee, phone, address and user name
// are copied from the address book and profile at submission and never
// re-read afterwards.
type Order struct {
	ID            int64       `json:"id"`
	Number        string      `json:"number"`
	UserID        int64       `json:"user_id"`
	AddressBookID int64       `json:"address_book_id"`
	Status        OrderStatus `json:"status"`
	PayStatus     PayStatus   `json:"pay_status"`
	Amount        float64     `json:"amount"`
	Remark        string      `json:"remark,omitempty"`
	Consignee     string      `json:"consignee"`
	Phone         string      `json:"phone"`
	Address       string      `json:"address"`
	UserName      string      `json:"user_name"`
	CancelReason  string      `json:"cancel_reason,omitempty"`
	OrderTime     time.Time   `json:"order_time"`
	CheckoutTime  *time.Time  `json:"checkout_time,omitempty"`
	DeliveryTime  *time.Time  `json:"delivery_time,omitempty"`
	CancelTime    *time.Time  `json:"cancel_time,omitempty"`
	Audit
}

// OrderDetail lines are created atomically with their order and carry their
// own price/name/flavor snapshots so catalog edits do not rewrite history.
type OrderDetail struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	DishID    *int64  `json:"dish_id,omitempty"`
	SetmealID *int64  `json:"setmeal_id,omitempty"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Flavor    string  `json:"flavor,omitempty"`
	Amount    float64 `json:"amount"`
	Number    int     `json:"number"`
}

// OrderReceipt is what submit hands back to the storefront.
type OrderReceipt struct {
	ID        int64     `json:"id"`
	Number    string    `json:"order_number"`
	Amount    float64   `json:"order_amount"`
	OrderTime time.Time `json:"order_time"`
}
