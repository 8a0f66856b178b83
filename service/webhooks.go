package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"gitlab.com/vendalink-commerce/affiliate_api/model"
	"gitlab.com/vendalink-commerce/affiliate_api/monitor"
	"gitlab.com/vendalink-commerce/affiliate_api/service/payments/asaas"
)

// ProcessWebhookEvent routes a processor webhook delivery. Confirmed payments
// go through Settle, which absorbs duplicate deliveries and races with the
// poller. Unknown payment ids are ignored so the processor stops retrying.
func (service *Service) ProcessWebhookEvent(ctx context.Context, event *asaas.WebhookEvent) error {
	logger := log.With().
		Str("service", "webhooks").
		Str("event", event.Event).
		Str("processor_payment_id", event.Payment.ID).
		Logger()

	switch {
	case asaas.IsTerminalConfirmed(event.Payment.Status):
		err := service.Settle(ctx, event.Payment.ID, "webhook")
		if err == model.ErrPayment_NotFound {
			logger.Warn().Msg("webhook for unknown payment, ignoring")
			monitor.WebhookDeliveries.WithLabelValues("unknown").Inc()
			return nil
		}
		if err != nil {
			monitor.WebhookDeliveries.WithLabelValues("error").Inc()
			return err
		}
		monitor.PaymentsConfirmed.WithLabelValues("webhook").Inc()
		monitor.WebhookDeliveries.WithLabelValues("settled").Inc()
		return nil
	case asaas.IsTerminalFailed(event.Payment.Status):
		status, err := service.cancelPayment(event.Payment.ID)
		if err == model.ErrPayment_NotFound {
			logger.Warn().Msg("webhook for unknown payment, ignoring")
			monitor.WebhookDeliveries.WithLabelValues("unknown").Inc()
			return nil
		}
		if err != nil {
			monitor.WebhookDeliveries.WithLabelValues("error").Inc()
			return err
		}
		monitor.WebhookDeliveries.WithLabelValues(string(status)).Inc()
		return nil
	default:
		logger.Info().Str("status", event.Payment.Status).Msg("non terminal webhook event, ignoring")
		monitor.WebhookDeliveries.WithLabelValues("ignored").Inc()
		return nil
	}
}

// cancelPayment routes a terminal failure to the right lifecycle step. A
// payment that never confirmed just fails; a confirmed one is refunded, with
// compensating commission rows. Redelivered events are a no-op.
func (service *Service) cancelPayment(processorPaymentID string) (model.PaymentStatus, error) {
	payments := []model.Payment{}
	db := service.repo.Conn.Find(&payments, "processor_payment_id = ?", processorPaymentID)
	if db.Error != nil {
		return "", db.Error
	}
	if len(payments) == 0 {
		return "", model.ErrPayment_NotFound
	}
	payment := payments[0]
	switch payment.Status {
	case model.PaymentStatus_Failed, model.PaymentStatus_Refunded:
		return payment.Status, nil
	case model.PaymentStatus_Confirmed:
		return model.PaymentStatus_Refunded, service.refundPayment(&payment)
	default:
		return model.PaymentStatus_Failed, service.failPayment(&payment)
	}
}

func (service *Service) failPayment(payment *model.Payment) error {
	if err := payment.SetStatus(model.PaymentStatus_Failed); err != nil {
		return err
	}
	tx := service.repo.Conn.Begin()
	if err := tx.Model(&model.Payment{}).Where("id = ?", payment.ID).
		Update("status", payment.Status).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Model(&model.Order{}).Where("id = ?", payment.OrderID).
		Update("status", model.OrderStatus_Cancelled).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// refundPayment reverses a settled payment. Commission originals stay
// untouched; every settled row gets a negative compensating row, and those
// sit outside the settlement unique index because of their cancelled status.
func (service *Service) refundPayment(payment *model.Payment) error {
	if err := payment.SetStatus(model.PaymentStatus_Refunded); err != nil {
		return err
	}
	commissions := []model.Commission{}
	db := service.repo.Conn.Find(&commissions, "order_id = ?", payment.OrderID)
	if db.Error != nil {
		return db.Error
	}

	tx := service.repo.Conn.Begin()
	for i := range commissions {
		if commissions[i].Status == model.CommissionStatus_Cancelled {
			continue
		}
		if err := tx.Create(commissions[i].Reversal()).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Model(&model.Payment{}).Where("id = ?", payment.ID).
		Update("status", payment.Status).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Model(&model.Order{}).Where("id = ?", payment.OrderID).
		Update("status", model.OrderStatus_Cancelled).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}
	monitor.SettlementsTotal.WithLabelValues("refunded").Inc()
	return nil
}
