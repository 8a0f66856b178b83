package settlement

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CommissionLine - one settled commission inside the event payload
type CommissionLine struct {
	BeneficiaryID   uint64 `json:"beneficiary_id"`
	BeneficiaryType string `json:"beneficiary_type"`
	Level           int    `json:"level"`
	AmountCents     int64  `json:"amount_cents"`
}

// SettlementCompleted - published once per order after the commission rows
// are committed. Consumers treat the correlation id as the dedup key.
type SettlementCompleted struct {
	OrderID          uint64           `json:"order_id"`
	PaymentID        uint64           `json:"payment_id"`
	CorrelationID    string           `json:"correlation_id"`
	SaleAmountCents  int64            `json:"sale_amount_cents"`
	TotalCommissions int64            `json:"total_commissions"`
	Path             string           `json:"path"`
	Lines            []CommissionLine `json:"lines"`
	SettledAt        int64            `json:"settled_at"`
}

// FromBinary loads an event from a byte array
func (event *SettlementCompleted) FromBinary(msg []byte) error {
	return json.Unmarshal(msg, event)
}

// ToBinary converts an event to a byte string
func (event *SettlementCompleted) ToBinary() ([]byte, error) {
	return json.Marshal(event)
}
