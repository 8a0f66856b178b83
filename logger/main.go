package logger

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config for logger
type Config struct {
	Logger *zerolog.Logger
	// SkipPath - request paths that never get a request logger attached
	SkipPath []string
}

// GetLogger from gin context
func GetLogger(c *gin.Context) zerolog.Logger {
	if logger, ok := c.Get("_log"); ok {
		return logger.(zerolog.Logger)
	}
	return log.Logger
}

// SetLogger initializes the logging middleware.
func SetLogger(config ...Config) gin.HandlerFunc {
	var newConfig Config
	if len(config) > 0 {
		newConfig = config[0]
	}
	var skip map[string]struct{}
	if length := len(newConfig.SkipPath); length > 0 {
		skip = make(map[string]struct{}, length)
		for _, path := range newConfig.SkipPath {
			skip[path] = struct{}{}
		}
	}

	var sublog zerolog.Logger
	if newConfig.Logger == nil {
		sublog = log.Logger
	} else {
		sublog = *newConfig.Logger
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		fullPath := path
		if raw := c.Request.URL.RawQuery; raw != "" {
			fullPath = path + "?" + raw
		}

		track := true
		if _, ok := skip[path]; ok {
			track = false
		}

		id := xid.New().String()
		c.Writer.Header().Set("X-Request-Id", id)
		var reqlogger zerolog.Logger

		if track {
			reqlogger = sublog.With().
				Str("request_id", id).
				Logger()
			c.Set("_log", reqlogger)
		}

		c.Next()

		if track && c.Writer.Status() >= http.StatusBadRequest {
			msg := "Request"
			if len(c.Errors) > 0 {
				msg = c.Errors.String()
			}

			dumplogger := reqlogger.With().
				Str("method", c.Request.Method).
				Str("path", fullPath).
				Str("ip", c.ClientIP()).
				Int("status", c.Writer.Status()).
				Logger()

			switch {
			case c.Writer.Status() >= http.StatusInternalServerError:
				dumplogger.Error().Msg(msg)
			default:
				dumplogger.Warn().Msg(msg)
			}
		}
	}
}
