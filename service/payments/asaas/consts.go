package asaas

// Processor side payment statuses
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusReceived  = "RECEIVED"
	PaymentStatusConfirmed = "CONFIRMED"
	PaymentStatusOverdue   = "OVERDUE"
	PaymentStatusRefunded  = "REFUNDED"
)

// Billing types accepted on charge creation
const (
	BillingTypeBoleto     = "BOLETO"
	BillingTypeCreditCard = "CREDIT_CARD"
	BillingTypePix        = "PIX"
	BillingTypeUndefined  = "UNDEFINED"
)

// IsTerminalConfirmed - processor statuses that settle the payment
func IsTerminalConfirmed(status string) bool {
	return status == PaymentStatusReceived || status == PaymentStatusConfirmed
}

// IsTerminalFailed - processor statuses that fail the payment
func IsTerminalFailed(status string) bool {
	return status == PaymentStatusOverdue || status == PaymentStatusRefunded
}
