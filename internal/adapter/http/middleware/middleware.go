package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"retail_backoffice/pkg"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const APIKeyHeader = "x-api-key"

var errUnauthorized = pkg.NewDomainErrorSimple("UNAUTHORIZED", "Invalid or missing API key", http.StatusUnauthorized)

// APIKey rejects requests without the configured x-api-key. An empty key
// disables the check. Paths starting with one of publicPrefixes stay open.
func APIKey(key string, publicPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" || isPublic(c.Request.URL.Path, publicPrefixes) {
			c.Next()
			return
		}
		got := c.GetHeader(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(errUnauthorized.HTTPStatus, errUnauthorized.ToHTTPError())
			return
		}
		c.Next()
	}
}

func isPublic(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// RequestLogger logs one line per request with logrus fields.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("[http] request")
		case status >= http.StatusBadRequest:
			entry.Warn("[http] request")
		default:
			entry.Info("[http] request")
		}
	}
}

// Recovery turns a panic into a 500 AppError body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.WithField("path", c.Request.URL.Path).Errorf("[http] recovered from panic: %v", recovered)
		appErr := pkg.NewDomainErrorSimple("INTERNAL_ERROR", "An internal error occurred", http.StatusInternalServerError)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToHTTPError())
	})
}
