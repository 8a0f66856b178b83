package actions

import (
	"time"

	"github.com/gin-gonic/gin"

	"gitlab.com/vendalink-commerce/affiliate_api/monitor"
	"gitlab.com/vendalink-commerce/affiliate_api/service/payments/asaas"
)

const (
	defaultPollTimeoutSecs  = 15
	defaultPollIntervalSecs = 1
	maxPollTimeout          = 5 * time.Minute
	minPollInterval         = time.Second
)

// pollWindow reads the bounded poll window from the request, defaulting to a
// 15 second timeout with one second between checks
func pollWindow(c *gin.Context) (time.Duration, time.Duration) {
	timeout := time.Duration(getQueryAsInt(c, "timeout_secs", defaultPollTimeoutSecs)) * time.Second
	if timeout > maxPollTimeout {
		timeout = maxPollTimeout
	}
	interval := time.Duration(getQueryAsInt(c, "interval_secs", defaultPollIntervalSecs)) * time.Second
	if interval < minPollInterval {
		interval = minPollInterval
	}
	return timeout, interval
}

// AsaasWebhook godoc
// swagger:route POST /webhooks/asaas payments asaas_webhook
// Asaas webhook
//
// Receive a payment event from the processor. Duplicate deliveries are absorbed.
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: StringResp
//	  401: RequestErrorResp
func (actions *Actions) AsaasWebhook(c *gin.Context) {
	log := getlog(c)
	if c.GetHeader("asaas-access-token") != actions.cfg.Asaas.WebhookToken {
		monitor.WebhookDeliveries.WithLabelValues("rejected").Inc()
		abortWithError(c, Unauthorized, "Invalid webhook token")
		return
	}

	event := asaas.WebhookEvent{}
	if err := c.ShouldBindJSON(&event); err != nil {
		monitor.WebhookDeliveries.WithLabelValues("malformed").Inc()
		abortWithError(c, BadRequest, "Malformed webhook payload")
		return
	}

	if err := actions.service.ProcessWebhookEvent(actions.ctx, &event); err != nil {
		log.Error().Err(err).
			Str("section", "payments").
			Str("action", "webhook").
			Str("event", event.Event).
			Msg("Unable to process webhook event")
		// non 2xx makes the processor redeliver later
		abortWithError(c, ServerError, "Unable to process webhook event")
		return
	}
	c.JSON(OK, "ok")
}

// PollPaymentStatus godoc
// swagger:route POST /payments/{payment_id}/poll payments poll_payment_status
// Poll payment status
//
// Check the processor for a terminal status, settling on confirmation. Fallback
// for delayed webhook delivery.
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: PollResult
//	  404: RequestErrorResp
func (actions *Actions) PollPaymentStatus(c *gin.Context) {
	log := getlog(c)
	processorPaymentID := c.Param("payment_id")
	if processorPaymentID == "" {
		abortWithError(c, BadRequest, "Invalid payment id")
		return
	}

	timeout, interval := pollWindow(c)
	result, err := actions.service.PollAndSettle(c.Request.Context(), processorPaymentID, c.Query("correlation_id"), timeout, interval)
	if err != nil {
		log.Error().Err(err).
			Str("section", "payments").
			Str("action", "poll").
			Str("processor_payment_id", processorPaymentID).
			Msg("Poll finished but settlement failed")
		abortWithError(c, ServerError, "Unable to settle confirmed payment")
		return
	}
	c.JSON(OK, result)
}
