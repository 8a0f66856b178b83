package actions

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"gitlab.com/vendalink-commerce/affiliate_api/httputils"
	"gitlab.com/vendalink-commerce/affiliate_api/logger"
)

// Ping godoc
// swagger:route GET /ping misc ping
// Ping
//
// Ping the server
//
//	Produces:
//	- application/json
//
//	Responses:
//	  200: StringResp
func Ping(c *gin.Context) {
	c.JSON(200, "pong")
}

func abortWithError(c *gin.Context, code int, message string) {
	l := getlog(c)
	l.Debug().Stack().Int("resp_code", code).Msg(message)
	c.AbortWithStatusJSON(code, httputils.RequestError{Error: message})
}

func getlog(c *gin.Context) zerolog.Logger {
	return logger.GetLogger(c)
}

func getPagination(c *gin.Context) (int, int) {
	page := getQueryAsInt(c, "page", 1)
	limit := getQueryAsInt(c, "limit", 10)
	return page, limit
}

func getQueryAsInt(c *gin.Context, name string, defaultValue int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getParamAsUint64(c *gin.Context, name string) (uint64, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// getIPFromRequest - get the first IP from request
func getIPFromRequest(ip string) string {
	if ip == "" {
		return ip
	}
	return strings.SplitAfter(ip, ",")[0]
}

// RateLimit rejects clients that exceeded their shared request budget
func (actions *Actions) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := getIPFromRequest(c.GetHeader("X-Forwarded-For"))
		if identity == "" {
			identity = c.ClientIP()
		}
		if !actions.limiter.Allow(identity) {
			abortWithError(c, TooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}
