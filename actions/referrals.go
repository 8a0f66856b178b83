package actions

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.com/vendalink-commerce/affiliate_api/featureflags"
	"gitlab.com/vendalink-commerce/affiliate_api/model"
	"gitlab.com/vendalink-commerce/affiliate_api/monitor"
	"gitlab.com/vendalink-commerce/affiliate_api/service"
)

// Track godoc
// swagger:route GET /track referrals track_referral
// Track referral
//
// Capture the referral code a visitor arrived with and set the attribution cookie
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: StringResp
//	  404: RequestErrorResp
func (actions *Actions) Track(c *gin.Context) {
	log := getlog(c)
	code := c.Query("ref")
	if !model.ValidReferralCode(code) {
		abortWithError(c, BadRequest, "Invalid referral code")
		return
	}
	affiliate, err := actions.service.GetAffiliateByReferralCode(code)
	if err != nil {
		abortWithError(c, NotFound, "Unable to find an affiliate for the given referral code")
		return
	}
	if affiliate.Status != model.AffiliateStatus_Active {
		abortWithError(c, NotFound, "Referral code is not active")
		return
	}

	store := actions.service.Attribution()
	fingerprint := ""
	if cookie, err := c.Cookie(store.CookieName()); err == nil {
		fingerprint, _ = store.VerifyCookie(cookie)
	}
	if fingerprint == "" {
		fingerprint = store.NewFingerprint()
	}

	tags := model.CampaignTags{
		Source:   c.Query("utm_source"),
		Medium:   c.Query("utm_medium"),
		Campaign: c.Query("utm_campaign"),
		Content:  c.Query("utm_content"),
	}
	sticky := c.Query("sticky") == "1"
	attribution, err := store.Capture(fingerprint, code, tags, sticky)
	if err != nil {
		log.Error().Err(err).
			Str("section", "referrals").
			Str("action", "track").
			Msg("Unable to capture attribution")
		abortWithError(c, ServerError, "Unable to capture attribution")
		return
	}
	monitor.AttributionCaptures.Inc()

	c.SetCookie(store.CookieName(), store.SignCookie(fingerprint),
		int(store.CookieTTL().Seconds()), "/", actions.cfg.Attribution.CookieDomain, false, true)

	if redirect := c.Query("redirect"); redirect != "" {
		c.Redirect(http.StatusFound, redirect)
		return
	}
	c.JSON(OK, attribution)
}

// RegisterAffiliate godoc
// swagger:route POST /affiliates referrals register_affiliate
// Register affiliate
//
// Register a new affiliate, optionally under the referrer identified by the signup code
//
//	Consumes:
//	- application/x-www-form-urlencoded
//
//	Produces:
//	- application/json
//
//	Responses:
//	  201: Affiliate
//	  400: RequestErrorResp
func (actions *Actions) RegisterAffiliate(c *gin.Context) {
	log := getlog(c)
	request := struct {
		FirstName    string `form:"first_name" binding:"required"`
		LastName     string `form:"last_name" binding:"required"`
		Email        string `form:"email" binding:"required,email"`
		Phone        string `form:"phone" binding:"required"`
		Document     string `form:"document" binding:"required"`
		ReferralCode string `form:"referral_code"`
	}{}
	if err := c.ShouldBind(&request); err != nil {
		abortWithError(c, BadRequest, err.Error())
		return
	}

	affiliate, err := actions.service.RegisterAffiliate(service.RegisterAffiliateRequest{
		FirstName:    request.FirstName,
		LastName:     request.LastName,
		Email:        request.Email,
		Phone:        request.Phone,
		Document:     request.Document,
		ReferralCode: request.ReferralCode,
	})
	if err != nil {
		log.Warn().Err(err).
			Str("section", "referrals").
			Str("action", "register").
			Msg("Unable to register affiliate")
		abortWithError(c, BadRequest, err.Error())
		return
	}
	c.JSON(Created, affiliate)
}

// GetReferrals godoc
// swagger:route GET /referrals/{affiliate_id} referrals list_referrals
// List referrals
//
// List the direct referrals of an affiliate with downline counts and earnings
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: ReferralListResponse
//	  404: RequestErrorResp
func (actions *Actions) GetReferrals(c *gin.Context) {
	if !featureflags.IsEnabled("api.affiliate_network") {
		abortWithError(c, NotFound, "Not found")
		return
	}
	affiliateID, ok := getParamAsUint64(c, "affiliate_id")
	if !ok {
		abortWithError(c, BadRequest, "Invalid affiliate id")
		return
	}
	page, limit := getPagination(c)
	referrals, err := actions.service.GetReferrals(affiliateID, limit, page)
	if err != nil {
		abortWithError(c, ServerError, "Unable to list referrals")
		return
	}
	c.JSON(OK, referrals)
}

// GetNetworkSummary godoc
func (actions *Actions) GetNetworkSummary(c *gin.Context) {
	if !featureflags.IsEnabled("api.affiliate_network") {
		abortWithError(c, NotFound, "Not found")
		return
	}
	affiliateID, ok := getParamAsUint64(c, "affiliate_id")
	if !ok {
		abortWithError(c, BadRequest, "Invalid affiliate id")
		return
	}
	summary, err := actions.service.GetNetworkSummary(affiliateID)
	if err != nil {
		abortWithError(c, ServerError, "Unable to build network summary")
		return
	}
	c.JSON(OK, summary)
}

// GetTopAffiliates godoc
func (actions *Actions) GetTopAffiliates(c *gin.Context) {
	top, err := actions.service.GetTopAffiliates()
	if err != nil {
		abortWithError(c, ServerError, "Unable to list top affiliates")
		return
	}
	c.JSON(OK, top)
}

// GetCommissions godoc
// swagger:route GET /commissions/{affiliate_id} referrals list_commissions
// List commissions
//
// List the commission rows of a beneficiary, newest first
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: CommissionListResponse
func (actions *Actions) GetCommissions(c *gin.Context) {
	affiliateID, ok := getParamAsUint64(c, "affiliate_id")
	if !ok {
		abortWithError(c, BadRequest, "Invalid affiliate id")
		return
	}
	page, limit := getPagination(c)
	commissions, err := actions.service.GetCommissions(affiliateID, limit, page)
	if err != nil {
		abortWithError(c, ServerError, "Unable to list commissions")
		return
	}
	c.JSON(OK, commissions)
}

// ExportCommissions godoc
// swagger:route GET /commissions/{affiliate_id}/export referrals export_commissions
// Export commissions
//
// Export the commission rows of a beneficiary as csv or pdf
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: GeneratedFile
func (actions *Actions) ExportCommissions(c *gin.Context) {
	affiliateID, ok := getParamAsUint64(c, "affiliate_id")
	if !ok {
		abortWithError(c, BadRequest, "Invalid affiliate id")
		return
	}
	format := c.Query("format")
	if format != "csv" && format != "pdf" {
		format = "csv"
	}
	from := getQueryAsInt(c, "from", 0)
	to := getQueryAsInt(c, "to", 0)
	file, err := actions.service.ExportCommissions(format, affiliateID, from, to)
	if err != nil {
		abortWithError(c, ServerError, "Unable to export commissions")
		return
	}
	c.JSON(OK, file)
}
