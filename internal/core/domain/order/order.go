package order

import "time"

type Status int

const (
	StatusPendingPayment     Status = 1
	StatusToBeConfirmed      Status = 2
	StatusConfirmed          Status = 3
	StatusDeliveryInProgress Status = 4
	StatusCompleted          Status = 5
	StatusCancelled          Status = 6
)

const (
	// CancelReasonPaymentTimeout is stamped by the timeout sweep when an
	// order sat unpaid past the payment window.
	CancelReasonPaymentTimeout = "order payment timed out"
	CancelReasonUser           = "cancelled by user"
)

// Order is never deleted, only status-transitioned.
type Order struct {
	ID           int64      `json:"id" db:"id"`
	Number       string     `json:"number" db:"number"`
	UserID       int64      `json:"user_id" db:"user_id"`
	Status       Status     `json:"status" db:"status"`
	Amount       int64      `json:"amount" db:"amount"` // cents
	Address      string     `json:"address" db:"address"`
	OrderTime    time.Time  `json:"order_time" db:"order_time"`
	CheckoutTime *time.Time `json:"checkout_time,omitempty" db:"checkout_time"`
	CancelReason string     `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CancelTime   *time.Time `json:"cancel_time,omitempty" db:"cancel_time"`
}

// Detail is one line item of an order, snapshotted from the cart at
// submission time.
type Detail struct {
	ID         int64  `json:"id" db:"id"`
	OrderID    int64  `json:"order_id" db:"order_id"`
	DishID     int64  `json:"dish_id" db:"dish_id"`
	Name       string `json:"name" db:"name"`
	DishFlavor string `json:"dish_flavor" db:"dish_flavor"`
	Number     int    `json:"number" db:"number"`
	Amount     int64  `json:"amount" db:"amount"`
}

type SubmitOrderRequest struct {
	Address string `json:"address"`
}
