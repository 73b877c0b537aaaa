package reqlog

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HeaderRequestID carries the request id in both directions
const HeaderRequestID = "X-Request-ID"

// ContextKeyRequestID is the gin context key holding the request id
const ContextKeyRequestID = "request_id"

// Middleware logs every request to logger and records it in sink. The user
// id is taken from the "uid" context key set by the auth middleware.
func Middleware(sink *Sink, logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)

		c.Next()

		dur := time.Since(start)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		e := Entry{
			ID:         id,
			Time:       start.UTC(),
			Method:     c.Request.Method,
			Path:       path,
			Status:     c.Writer.Status(),
			DurationMs: dur.Milliseconds(),
			RemoteIP:   c.ClientIP(),
			UserID:     c.GetInt("uid"),
		}
		if sink != nil {
			sink.Add(e)
		}

		fields := logrus.Fields{
			"request_id":  e.ID,
			"method":      e.Method,
			"path":        c.Request.URL.Path,
			"status":      e.Status,
			"bytes":       c.Writer.Size(),
			"remote_ip":   e.RemoteIP,
			"duration_ms": e.DurationMs,
		}
		if e.UserID != 0 {
			fields["user_id"] = e.UserID
		}
		logger.WithFields(fields).Log(levelForStatus(e.Status), "http request")
	}
}

func levelForStatus(code int) logrus.Level {
	if code >= 500 {
		return logrus.ErrorLevel
	}
	if code >= 400 {
		return logrus.WarnLevel
	}
	return logrus.InfoLevel
}
