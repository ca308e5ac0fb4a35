package daemon

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ginLogger routes gin request logging through logrus. Requests that
// address a specific engine carry the device name so logs from a daemon
// serving several pads stay attributable.
func ginLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Handlers may rewrite the path; keep the original.
		path := c.Request.URL.Path
		start := time.Now()
		c.Next()
		latencyMs := time.Since(start).Milliseconds()
		statusCode := c.Writer.Status()
		dataLength := c.Writer.Size()
		if dataLength < 0 {
			dataLength = 0
		}

		fields := logrus.Fields{
			"statusCode": statusCode,
			"latencyMs":  latencyMs,
			"method":     c.Request.Method,
			"path":       path,
			"dataLength": dataLength,
		}
		if device := c.Query("device"); device != "" {
			fields["device"] = device
		}
		entry := logger.WithFields(fields)

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
			return
		}

		msg := fmt.Sprintf("%s %s %d (%dms)", c.Request.Method, path, statusCode, latencyMs)
		switch {
		case statusCode >= http.StatusInternalServerError:
			entry.Error(msg)
		case statusCode >= http.StatusBadRequest:
			entry.Warn(msg)
		default:
			entry.Debug(msg)
		}
	}
}
