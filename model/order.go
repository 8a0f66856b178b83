package model

import (
	"errors"
	"time"
)

var ErrOrder_EmptyLineItems = errors.New("order line items are required")
var ErrOrder_AmountInvalid = errors.New("invalid order amount")
var ErrOrder_StatusInvalid = errors.New("invalid order status")
var ErrOrder_StatusTransitionInvalid = errors.New("invalid order status transition")

type OrderStatus string

const (
	OrderStatus_Pending   OrderStatus = "pending"
	OrderStatus_Confirmed OrderStatus = "confirmed"
	OrderStatus_Cancelled OrderStatus = "cancelled"
)

// forward only transitions, terminal cancellation allowed from pending
var orderStatusTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatus_Pending: {
		OrderStatus_Confirmed: true,
		OrderStatus_Cancelled: true,
	},
	OrderStatus_Confirmed: {
		OrderStatus_Cancelled: true,
	},
	OrderStatus_Cancelled: {},
}

// Order structure
type Order struct {
	ID               uint64      `gorm:"type:bigint;PRIMARY_KEY;UNIQUE;NOT NULL;" json:"id"`
	CustomerID       uint64      `gorm:"column:customer_id" json:"customer_id"`
	AffiliateID      *uint64     `gorm:"column:affiliate_id" json:"affiliate_id"`
	TotalAmountCents int64       `gorm:"column:total_amount_cents" json:"total_amount_cents"`
	Status           OrderStatus `gorm:"column:status" json:"status"`
	CreatedAt        time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"column:updated_at" json:"updated_at"`
}

// OrderItem structure
type OrderItem struct {
	ID          uint64 `gorm:"type:bigint;PRIMARY_KEY;UNIQUE;NOT NULL;" json:"id"`
	OrderID     uint64 `gorm:"column:order_id" json:"order_id"`
	ProductID   uint64 `gorm:"column:product_id" json:"product_id"`
	Description string `gorm:"column:description" json:"description"`
	Quantity    int    `gorm:"column:quantity" json:"quantity"`
	PriceCents  int64  `gorm:"column:price_cents" json:"price_cents"`
}

// SetStatus moves the order to the given status if the transition is allowed
func (order *Order) SetStatus(status OrderStatus) error {
	if order.Status == status {
		return nil
	}
	if allowed, ok := orderStatusTransitions[order.Status]; !ok || !allowed[status] {
		return ErrOrder_StatusTransitionInvalid
	}
	order.Status = status
	return nil
}

// GetOrderStatusFromString -
func GetOrderStatusFromString(s string) (OrderStatus, error) {
	switch s {
	case "pending":
		return OrderStatus_Pending, nil
	case "confirmed":
		return OrderStatus_Confirmed, nil
	case "cancelled":
		return OrderStatus_Cancelled, nil
	default:
		return OrderStatus_Pending, ErrOrder_StatusInvalid
	}
}
