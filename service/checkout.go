package service

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"gitlab.com/vendalink-commerce/affiliate_api/model"
	"gitlab.com/vendalink-commerce/affiliate_api/monitor"
	"gitlab.com/vendalink-commerce/affiliate_api/service/payments/asaas"
)

// Checkout states, forward only
const (
	CheckoutState_Initiated        = "INITIATED"
	CheckoutState_CustomerResolved = "CUSTOMER_RESOLVED"
	CheckoutState_ChargeCreated    = "CHARGE_CREATED"
	CheckoutState_Confirming       = "CONFIRMING"
	CheckoutState_Failed           = "FAILED"
)

// ValidationError - rejected before any external call, machine readable
type ValidationError struct {
	Code   string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Code)
}

// CheckoutRequest structure
type CheckoutRequest struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Document      string
	BillingType   string
	Items         []model.OrderItem
	Fingerprint   string // visitor fingerprint from the attribution cookie
	DueDate       time.Time
}

// CheckoutResult structure
type CheckoutResult struct {
	State      string         `json:"state"`
	Order      *model.Order   `json:"order"`
	Payment    *model.Payment `json:"payment"`
	InvoiceUrl string         `json:"invoice_url,omitempty"`
}

// Checkout drives an order through the payment-first confirmation flow:
// validate, persist the pending order, resolve the processor customer by
// email, create the charge. Confirmation happens later through the webhook or
// the poller; both end in Settle.
func (service *Service) Checkout(request CheckoutRequest) (*CheckoutResult, error) {
	logger := log.With().
		Str("service", "checkout").
		Str("email", request.CustomerEmail).
		Logger()

	if err := service.validateCheckout(&request); err != nil {
		return nil, err
	}

	affiliateID, err := service.resolveAttributedAffiliate(request.Fingerprint)
	if err != nil {
		// attribution problems never block a sale
		logger.Warn().Err(err).Msg("unable to resolve attribution, proceeding without affiliate")
		affiliateID = nil
	}

	total := int64(0)
	for _, item := range request.Items {
		total += item.PriceCents * int64(item.Quantity)
	}

	order := &model.Order{
		AffiliateID:      affiliateID,
		TotalAmountCents: total,
		Status:           model.OrderStatus_Pending,
	}
	payment := model.NewPayment(0, total, request.BillingType)

	tx := service.repo.Conn.Begin()
	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for i := range request.Items {
		request.Items[i].OrderID = order.ID
		if err := tx.Create(&request.Items[i]).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	payment.OrderID = order.ID
	if err := tx.Create(payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// external calls happen after the pending rows are durable; a processor
	// failure leaves the payment pending with no external id
	customer, err := service.ResolveCustomer(request)
	if err != nil {
		logger.Error().Err(err).Msg("unable to resolve processor customer")
		return &CheckoutResult{State: CheckoutState_Failed, Order: order, Payment: payment}, err
	}

	processorPayment, err := service.CreateCharge(payment, customer.ID, request)
	if err != nil {
		logger.Error().Err(err).Msg("unable to create processor charge")
		return &CheckoutResult{State: CheckoutState_Failed, Order: order, Payment: payment}, err
	}

	monitor.PaymentsCreated.WithLabelValues(request.BillingType).Inc()
	return &CheckoutResult{
		State:      CheckoutState_Confirming,
		Order:      order,
		Payment:    payment,
		InvoiceUrl: processorPayment.InvoiceUrl,
	}, nil
}

func (service *Service) validateCheckout(request *CheckoutRequest) error {
	fields := map[string]string{}
	if len(request.Items) == 0 {
		// hard precondition, line items feed attribution and analytics downstream
		fields["items"] = model.ErrOrder_EmptyLineItems.Error()
	}
	for _, item := range request.Items {
		if item.Quantity <= 0 || item.PriceCents <= 0 {
			fields["items"] = model.ErrOrder_AmountInvalid.Error()
		}
	}
	if request.CustomerEmail == "" {
		fields["email"] = "email is required"
	}
	if request.BillingType == "" {
		fields["billing_type"] = "billing type is required"
	}
	if _, err := model.ParseDocument(request.Document); err != nil {
		fields["document"] = err.Error()
	}
	if len(fields) > 0 {
		return &ValidationError{Code: "checkout_invalid", Fields: fields}
	}
	if request.DueDate.IsZero() {
		request.DueDate = time.Now().AddDate(0, 0, 3)
	}
	return nil
}

func (service *Service) resolveAttributedAffiliate(fingerprint string) (*uint64, error) {
	if fingerprint == "" {
		return nil, nil
	}
	attribution, err := service.attribution.Resolve(fingerprint)
	if err != nil {
		return nil, err
	}
	if attribution == nil {
		return nil, nil
	}
	affiliate, err := service.GetAffiliateByReferralCode(attribution.ReferralCode)
	if err != nil {
		return nil, err
	}
	return &affiliate.ID, nil
}

// ResolveCustomer looks an external processor customer up by email and
// creates one when absent. Idempotent by email.
func (service *Service) ResolveCustomer(request CheckoutRequest) (*asaas.Customer, error) {
	existing, err := service.processor.FindCustomerByEmail(request.CustomerEmail)
	if err != nil {
		return nil, errors.Wrap(err, "customer lookup failed")
	}
	if existing != nil {
		return existing, nil
	}

	document, err := model.ParseDocument(request.Document)
	if err != nil {
		return nil, err
	}
	created, err := service.processor.CreateCustomer(asaas.Customer{
		Name:    request.CustomerName,
		Email:   request.CustomerEmail,
		Phone:   request.CustomerPhone,
		CpfCnpj: document.Digits,
	})
	if err != nil {
		return nil, errors.Wrap(err, "customer creation failed")
	}
	return created, nil
}

// CreateCharge creates the processor side charge for the payment, at most
// once per order. The processor payment id is only persisted once the
// processor actually returned one.
func (service *Service) CreateCharge(payment *model.Payment, customerID string, request CheckoutRequest) (*asaas.Payment, error) {
	if payment.Status != model.PaymentStatus_Pending || payment.ProcessorPaymentID != "" {
		return nil, model.ErrPayment_AlreadyCharged
	}

	processorPayment, err := service.processor.CreatePayment(asaas.CreatePaymentRequest{
		Customer:          customerID,
		BillingType:       request.BillingType,
		Value:             asaas.CentsToValue(payment.AmountCents),
		DueDate:           request.DueDate.Format("2006-01-02"),
		ExternalReference: fmt.Sprintf("%d", payment.OrderID),
	})
	if err != nil {
		return nil, errors.Wrap(err, "charge creation failed")
	}

	payment.ProcessorPaymentID = processorPayment.ID
	if err := payment.SetStatus(model.PaymentStatus_Processing); err != nil {
		return nil, err
	}
	if err := service.repo.Conn.Model(&model.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]interface{}{
			"processor_payment_id": payment.ProcessorPaymentID,
			"status":               payment.Status,
		}).Error; err != nil {
		return nil, err
	}
	return processorPayment, nil
}
