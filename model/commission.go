package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrCommission_Immutable = errors.New("commission rows are write once")

type CommissionStatus string

const (
	CommissionStatus_Pending   CommissionStatus = "pending"
	CommissionStatus_Paid      CommissionStatus = "paid"
	CommissionStatus_Cancelled CommissionStatus = "cancelled"
)

type BeneficiaryType string

const (
	BeneficiaryType_Affiliate BeneficiaryType = "affiliate"
	BeneficiaryType_House     BeneficiaryType = "house"
)

type CommissionLevel int

const (
	CommissionLevel_House CommissionLevel = 0
	CommissionLevel_1     CommissionLevel = 1
	CommissionLevel_2     CommissionLevel = 2
	CommissionLevel_3     CommissionLevel = 3
)

func (level CommissionLevel) Int() int {
	return int(level)
}

// Label - human readable level label used by the export
func (level CommissionLevel) Label() string {
	if level == CommissionLevel_House {
		return "House"
	}
	return fmt.Sprintf("Level %d", int(level))
}

// Commission structure
//
// One row per (order, beneficiary, level). Amounts are integer cents, never
// float. Rows are created exactly once when the payment is confirmed; a
// cancellation appends reversal rows instead of mutating originals.
type Commission struct {
	ID              uint64           `gorm:"type:bigint;PRIMARY_KEY;UNIQUE;NOT NULL;" json:"id"`
	OrderID         uint64           `gorm:"column:order_id" json:"order_id"`
	BeneficiaryID   uint64           `gorm:"column:beneficiary_id" json:"beneficiary_id"`
	BeneficiaryType BeneficiaryType  `gorm:"column:beneficiary_type" json:"beneficiary_type"`
	Level           CommissionLevel  `gorm:"column:level" json:"level"`
	AmountCents     int64            `gorm:"column:amount_cents" json:"amount_cents"`
	Status          CommissionStatus `gorm:"column:status" json:"status"`
	CorrelationID   string           `gorm:"column:correlation_id" json:"correlation_id"`
	CreatedAt       time.Time        `gorm:"column:created_at" json:"created_at"`
}

// Reversal builds the compensating row for a cancelled commission
func (commission *Commission) Reversal() *Commission {
	return &Commission{
		OrderID:         commission.OrderID,
		BeneficiaryID:   commission.BeneficiaryID,
		BeneficiaryType: commission.BeneficiaryType,
		Level:           commission.Level,
		AmountCents:     -commission.AmountCents,
		Status:          CommissionStatus_Cancelled,
		CorrelationID:   commission.CorrelationID,
	}
}
