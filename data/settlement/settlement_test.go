package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettlementCompletedRoundTrip(t *testing.T) {
	event := SettlementCompleted{
		OrderID:          5,
		PaymentID:        7,
		CorrelationID:    "corr-7",
		SaleAmountCents:  329000,
		TotalCommissions: 98700,
		Path:             "webhook",
		Lines: []CommissionLine{
			{BeneficiaryID: 30, BeneficiaryType: "affiliate", Level: 1, AmountCents: 49350},
			{BeneficiaryID: 9001, BeneficiaryType: "house", Level: 0, AmountCents: 24675},
			{BeneficiaryID: 9002, BeneficiaryType: "house", Level: 0, AmountCents: 24675},
		},
		SettledAt: 1756339200,
	}

	payload, err := event.ToBinary()
	assert.NoError(t, err)

	decoded := SettlementCompleted{}
	assert.NoError(t, decoded.FromBinary(payload))
	assert.Equal(t, event, decoded)
}
