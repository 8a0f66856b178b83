package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"gitlab.com/vendalink-commerce/affiliate_api/monitor"
	"gitlab.com/vendalink-commerce/affiliate_api/service/payments/asaas"
)

// PollResult structure
type PollResult struct {
	Confirmed bool   `json:"confirmed"`
	Failed    bool   `json:"failed"`
	TimedOut  bool   `json:"timeout"`
	Status    string `json:"status,omitempty"`
	Attempts  int    `json:"attempts"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// PollPaymentStatus checks the processor for a terminal payment status,
// issuing one check per interval for at most floor(timeout/interval)
// attempts. The first check goes out immediately. A processor 404 fails the
// poll right away, it is a different outcome than running out of attempts.
// Transient processor errors consume an attempt and the loop carries on.
func (service *Service) PollPaymentStatus(ctx context.Context, processorPaymentID, correlationID string, timeout, interval time.Duration) *PollResult {
	logger := log.With().
		Str("service", "poller").
		Str("processor_payment_id", processorPaymentID).
		Str("correlation_id", correlationID).
		Logger()

	result := &PollResult{}
	if interval <= 0 || timeout < interval {
		result.TimedOut = true
		return result
	}
	maxAttempts := int(timeout / interval)
	started := time.Now()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result.Attempts = attempt
		monitor.PollAttempts.Inc()

		payment, err := service.processor.GetPayment(processorPaymentID)
		switch {
		case err == asaas.ErrPaymentNotFound:
			logger.Warn().Int("attempt", attempt).Msg("payment unknown to the processor")
			result.Failed = true
			result.ElapsedMs = time.Since(started).Milliseconds()
			return result
		case err != nil:
			logger.Warn().Err(err).Int("attempt", attempt).Msg("status check failed")
		case asaas.IsTerminalConfirmed(payment.Status):
			result.Confirmed = true
			result.Status = payment.Status
			result.ElapsedMs = time.Since(started).Milliseconds()
			return result
		case asaas.IsTerminalFailed(payment.Status):
			result.Failed = true
			result.Status = payment.Status
			result.ElapsedMs = time.Since(started).Milliseconds()
			return result
		}

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			result.TimedOut = true
			result.ElapsedMs = time.Since(started).Milliseconds()
			return result
		case <-time.After(interval):
		}
	}

	result.TimedOut = true
	result.ElapsedMs = time.Since(started).Milliseconds()
	return result
}

// PollAndSettle runs the poll loop and settles commissions when the payment
// comes back confirmed. Used by the manual poll endpoint as the fallback path
// when webhook delivery is delayed.
func (service *Service) PollAndSettle(ctx context.Context, processorPaymentID, correlationID string, timeout, interval time.Duration) (*PollResult, error) {
	result := service.PollPaymentStatus(ctx, processorPaymentID, correlationID, timeout, interval)
	if result.Confirmed {
		if err := service.Settle(ctx, processorPaymentID, "poller"); err != nil {
			return result, err
		}
		monitor.PaymentsConfirmed.WithLabelValues("poller").Inc()
	}
	return result, nil
}
