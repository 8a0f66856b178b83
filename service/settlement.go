package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"gitlab.com/vendalink-commerce/affiliate_api/data/settlement"
	"gitlab.com/vendalink-commerce/affiliate_api/model"
	"gitlab.com/vendalink-commerce/affiliate_api/monitor"
	"gitlab.com/vendalink-commerce/affiliate_api/service/commission"
)

const pgUniqueViolation = "23505"

// Settle confirms the payment and writes the commission rows for its order,
// exactly once. The webhook handler and the poller can both land here for the
// same payment; the unique constraint on (order_id, beneficiary_id, level)
// makes the second writer a no-op instead of a double payout.
func (service *Service) Settle(ctx context.Context, processorPaymentID, path string) error {
	logger := log.With().
		Str("service", "settlement").
		Str("processor_payment_id", processorPaymentID).
		Str("path", path).
		Logger()

	payments := []model.Payment{}
	db := service.repo.Conn.Find(&payments, "processor_payment_id = ?", processorPaymentID)
	if db.Error != nil {
		return db.Error
	}
	if len(payments) == 0 {
		return model.ErrPayment_NotFound
	}
	payment := payments[0]

	if payment.Status == model.PaymentStatus_Confirmed {
		logger.Info().Msg("payment already settled, skipping")
		monitor.SettlementsTotal.WithLabelValues("duplicate").Inc()
		return nil
	}

	orders := []model.Order{}
	db = service.repo.Conn.Find(&orders, "id = ?", payment.OrderID)
	if db.Error != nil {
		return db.Error
	}
	if len(orders) == 0 {
		return errors.Errorf("order %d not found for payment %d", payment.OrderID, payment.ID)
	}
	order := orders[0]

	chain := []model.ChainEntry{}
	if order.AffiliateID != nil {
		var err error
		chain, err = service.tree.GetAncestorChain(*order.AffiliateID)
		if err != nil {
			return errors.Wrap(err, "unable to resolve ancestor chain")
		}
	}
	lines := service.calc.Calculate(order.TotalAmountCents, chain)

	if err := payment.SetStatus(model.PaymentStatus_Confirmed); err != nil {
		return err
	}
	if err := order.SetStatus(model.OrderStatus_Confirmed); err != nil {
		return err
	}

	totalCommissions := int64(0)
	tx := service.repo.Conn.Begin()
	for _, line := range lines {
		row := &model.Commission{
			OrderID:         order.ID,
			BeneficiaryID:   line.BeneficiaryID,
			BeneficiaryType: line.BeneficiaryType,
			Level:           line.Level,
			AmountCents:     line.AmountCents,
			Status:          model.CommissionStatus_Pending,
			CorrelationID:   payment.CorrelationID,
		}
		if err := tx.Create(row).Error; err != nil {
			tx.Rollback()
			if isUniqueViolation(err) {
				// the other path already settled this order
				logger.Info().Msg("commission rows already written, skipping")
				monitor.SettlementsTotal.WithLabelValues("duplicate").Inc()
				return nil
			}
			monitor.SettlementsTotal.WithLabelValues("error").Inc()
			return err
		}
		totalCommissions += line.AmountCents
	}
	if err := tx.Model(&model.Payment{}).Where("id = ?", payment.ID).
		Update("status", payment.Status).Error; err != nil {
		tx.Rollback()
		monitor.SettlementsTotal.WithLabelValues("error").Inc()
		return err
	}
	if err := tx.Model(&model.Order{}).Where("id = ?", order.ID).
		Update("status", order.Status).Error; err != nil {
		tx.Rollback()
		monitor.SettlementsTotal.WithLabelValues("error").Inc()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		monitor.SettlementsTotal.WithLabelValues("error").Inc()
		return err
	}

	monitor.SettlementsTotal.WithLabelValues("settled").Inc()
	logger.Info().
		Uint64("order_id", order.ID).
		Int64("total_commissions", totalCommissions).
		Int("lines", len(lines)).
		Msg("order settled")

	service.publishSettlementEvent(ctx, &order, &payment, path, lines, totalCommissions)
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

func (service *Service) publishSettlementEvent(ctx context.Context, order *model.Order, payment *model.Payment, path string, lines []commission.Line, totalCommissions int64) {
	event := settlement.SettlementCompleted{
		OrderID:          order.ID,
		PaymentID:        payment.ID,
		CorrelationID:    payment.CorrelationID,
		SaleAmountCents:  order.TotalAmountCents,
		TotalCommissions: totalCommissions,
		Path:             path,
		SettledAt:        time.Now().Unix(),
	}
	for _, line := range lines {
		event.Lines = append(event.Lines, settlement.CommissionLine{
			BeneficiaryID:   line.BeneficiaryID,
			BeneficiaryType: string(line.BeneficiaryType),
			Level:           line.Level.Int(),
			AmountCents:     line.AmountCents,
		})
	}
	payload, err := event.ToBinary()
	if err != nil {
		log.Error().Err(err).Str("service", "settlement").Msg("unable to encode settlement event")
		return
	}
	key := []byte(fmt.Sprintf("%d", order.ID))
	if err := service.settlementEvents.WriteMessage(ctx, key, payload); err != nil {
		log.Error().Err(err).Str("service", "settlement").Msg("unable to publish settlement event")
	}
}
