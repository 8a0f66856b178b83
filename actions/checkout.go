package actions

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"gitlab.com/vendalink-commerce/affiliate_api/httputils"
	"gitlab.com/vendalink-commerce/affiliate_api/model"
	"gitlab.com/vendalink-commerce/affiliate_api/service"
)

type checkoutItemRequest struct {
	ProductID   uint64 `json:"product_id"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
}

type checkoutRequest struct {
	CustomerName  string                `json:"customer_name" binding:"required"`
	CustomerEmail string                `json:"customer_email" binding:"required,email"`
	CustomerPhone string                `json:"customer_phone"`
	Document      string                `json:"document" binding:"required"`
	BillingType   string                `json:"billing_type" binding:"required"`
	DueDate       string                `json:"due_date"`
	Items         []checkoutItemRequest `json:"items"`
}

// Checkout godoc
// swagger:route POST /checkout checkout create_checkout
// Checkout
//
// Create the order and its processor charge; confirmation arrives later by webhook or poll
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
//	Responses:
//	  201: CheckoutResult
//	  422: RequestErrorResp
//	  500: RequestErrorResp
func (actions *Actions) Checkout(c *gin.Context) {
	log := getlog(c)
	request := checkoutRequest{}
	if err := c.ShouldBindJSON(&request); err != nil {
		abortWithError(c, BadRequest, err.Error())
		return
	}

	items := make([]model.OrderItem, 0, len(request.Items))
	for _, item := range request.Items {
		items = append(items, model.OrderItem{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			PriceCents:  item.PriceCents,
		})
	}

	dueDate := time.Time{}
	if request.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", request.DueDate)
		if err != nil {
			abortWithError(c, BadRequest, "Invalid due date, expected YYYY-MM-DD")
			return
		}
		dueDate = parsed
	}

	store := actions.service.Attribution()
	fingerprint := ""
	if cookie, err := c.Cookie(store.CookieName()); err == nil {
		fingerprint, _ = store.VerifyCookie(cookie)
	}

	result, err := actions.service.Checkout(service.CheckoutRequest{
		CustomerName:  request.CustomerName,
		CustomerEmail: request.CustomerEmail,
		CustomerPhone: request.CustomerPhone,
		Document:      request.Document,
		BillingType:   request.BillingType,
		Items:         items,
		Fingerprint:   fingerprint,
		DueDate:       dueDate,
	})
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			c.AbortWithStatusJSON(ValidationFailed, httputils.FieldErrors{
				Error:  "Checkout validation failed",
				Code:   validationErr.Code,
				Fields: validationErr.Fields,
			})
			return
		}
		log.Error().Err(err).
			Str("section", "checkout").
			Str("action", "create").
			Msg("Unable to complete checkout")
		abortWithError(c, ServerError, "Unable to complete checkout")
		return
	}
	c.JSON(Created, result)
}
