package actions

import (
	"github.com/gin-gonic/gin"
)

// ReparentAffiliate godoc
// swagger:route POST /admin/affiliates/{affiliate_id}/reparent admin reparent_affiliate
// Re-parent affiliate
//
// Move an affiliate under a new parent and rebuild its subtree projection.
// Already settled commissions keep the old chain; only future orders follow
// the new one.
//
//	Consumes:
//	- application/x-www-form-urlencoded
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: Affiliate
//	  400: RequestErrorResp
//	  404: RequestErrorResp
func (actions *Actions) ReparentAffiliate(c *gin.Context) {
	log := getlog(c)
	affiliateID, ok := getParamAsUint64(c, "affiliate_id")
	if !ok {
		abortWithError(c, BadRequest, "Invalid affiliate id")
		return
	}

	var newParentID *uint64
	request := struct {
		NewParentID uint64 `form:"new_parent_id"`
	}{}
	if err := c.ShouldBind(&request); err != nil {
		abortWithError(c, BadRequest, err.Error())
		return
	}
	if request.NewParentID != 0 {
		newParentID = &request.NewParentID
	}

	affiliate, err := actions.service.ReparentAffiliate(affiliateID, newParentID)
	if err != nil {
		log.Warn().Err(err).
			Str("section", "admin").
			Str("action", "reparent").
			Uint64("affiliate_id", affiliateID).
			Msg("Unable to re-parent affiliate")
		abortWithError(c, BadRequest, err.Error())
		return
	}
	c.JSON(OK, affiliate)
}

// RebuildNetworkEdges godoc
// swagger:route POST /admin/network/rebuild admin rebuild_network_edges
// Rebuild network edges
//
// Rebuild the denormalized edge rows for every affiliate from the live table
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: StringResp
func (actions *Actions) RebuildNetworkEdges(c *gin.Context) {
	log := getlog(c)
	if err := actions.service.RebuildAllNetworkEdges(); err != nil {
		log.Error().Err(err).
			Str("section", "admin").
			Str("action", "rebuild_edges").
			Msg("Unable to rebuild network edges")
		abortWithError(c, ServerError, "Unable to rebuild network edges")
		return
	}
	c.JSON(OK, "ok")
}
