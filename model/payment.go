package model

import (
	"errors"
	"time"

	gouuid "github.com/nu7hatch/gouuid"
)

var ErrPayment_StatusInvalid = errors.New("invalid payment status")
var ErrPayment_StatusTransitionInvalid = errors.New("invalid payment status transition")
var ErrPayment_AlreadyCharged = errors.New("a processor charge already exists for this order")
var ErrPayment_NotFound = errors.New("payment not found")

type PaymentStatus string

const (
	PaymentStatus_Pending    PaymentStatus = "pending"
	PaymentStatus_Processing PaymentStatus = "processing"
	PaymentStatus_Confirmed  PaymentStatus = "confirmed"
	PaymentStatus_Failed     PaymentStatus = "failed"
	PaymentStatus_Refunded   PaymentStatus = "refunded"
)

var paymentStatusTransitions = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentStatus_Pending: {
		PaymentStatus_Processing: true,
		PaymentStatus_Confirmed:  true,
		PaymentStatus_Failed:     true,
	},
	PaymentStatus_Processing: {
		PaymentStatus_Confirmed: true,
		PaymentStatus_Failed:    true,
	},
	PaymentStatus_Confirmed: {
		PaymentStatus_Refunded: true,
	},
	PaymentStatus_Failed:   {},
	PaymentStatus_Refunded: {},
}

// Payment structure
//
// One per order. No processor payment id is stored until the processor
// actually returned a charge, so a failed creation attempt never leaves the
// row in an ambiguous state. The correlation id ties the payment attempt to
// exactly one settlement outcome.
type Payment struct {
	ID                 uint64        `gorm:"type:bigint;PRIMARY_KEY;UNIQUE;NOT NULL;" json:"id"`
	OrderID            uint64        `gorm:"column:order_id" json:"order_id"`
	ProcessorPaymentID string        `gorm:"column:processor_payment_id" json:"processor_payment_id"`
	CorrelationID      string        `gorm:"column:correlation_id" json:"correlation_id"`
	BillingType        string        `gorm:"column:billing_type" json:"billing_type"`
	AmountCents        int64         `gorm:"column:amount_cents" json:"amount_cents"`
	Status             PaymentStatus `gorm:"column:status" json:"status"`
	CreatedAt          time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

// NewPayment creates a pending payment with a fresh correlation id
func NewPayment(orderID uint64, amountCents int64, billingType string) *Payment {
	correlationID, _ := gouuid.NewV4()
	return &Payment{
		OrderID:       orderID,
		CorrelationID: correlationID.String(),
		BillingType:   billingType,
		AmountCents:   amountCents,
		Status:        PaymentStatus_Pending,
	}
}

// SetStatus moves the payment forward if the transition is allowed
func (payment *Payment) SetStatus(status PaymentStatus) error {
	if payment.Status == status {
		return nil
	}
	if allowed, ok := paymentStatusTransitions[payment.Status]; !ok || !allowed[status] {
		return ErrPayment_StatusTransitionInvalid
	}
	payment.Status = status
	return nil
}

// GetPaymentStatusFromString -
func GetPaymentStatusFromString(s string) (PaymentStatus, error) {
	switch s {
	case "pending":
		return PaymentStatus_Pending, nil
	case "processing":
		return PaymentStatus_Processing, nil
	case "confirmed":
		return PaymentStatus_Confirmed, nil
	case "failed":
		return PaymentStatus_Failed, nil
	case "refunded":
		return PaymentStatus_Refunded, nil
	default:
		return PaymentStatus_Pending, ErrPayment_StatusInvalid
	}
}
