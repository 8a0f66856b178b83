package asaas

// Customer structure
type Customer struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"mobilePhone,omitempty"`
	CpfCnpj string `json:"cpfCnpj"`
}

type customerListResponse struct {
	Data       []Customer `json:"data"`
	TotalCount int        `json:"totalCount"`
}

// SplitInstruction - processor side split of a charge towards a wallet
type SplitInstruction struct {
	WalletID        string  `json:"walletId"`
	FixedValue      float64 `json:"fixedValue,omitempty"`
	PercentualValue float64 `json:"percentualValue,omitempty"`
}

// CreatePaymentRequest structure
type CreatePaymentRequest struct {
	Customer          string             `json:"customer"`
	BillingType       string             `json:"billingType"`
	Value             float64            `json:"value"`
	DueDate           string             `json:"dueDate"`
	Description       string             `json:"description,omitempty"`
	ExternalReference string             `json:"externalReference"`
	Split             []SplitInstruction `json:"split,omitempty"`
}

// Payment - processor side representation of a charge
type Payment struct {
	ID                string  `json:"id"`
	Customer          string  `json:"customer"`
	Status            string  `json:"status"`
	Value             float64 `json:"value"`
	BillingType       string  `json:"billingType"`
	ExternalReference string  `json:"externalReference"`
	InvoiceUrl        string  `json:"invoiceUrl"`
	DueDate           string  `json:"dueDate"`
}

type apiError struct {
	Errors []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"errors"`
}

// WebhookEvent - payload delivered by the processor webhook
type WebhookEvent struct {
	Event   string  `json:"event"`
	Payment Payment `json:"payment"`
}
