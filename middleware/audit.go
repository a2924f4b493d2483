package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/karumeo/gameledger/audit"
)

type auditWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *auditWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Audit records every mutating request (anything but GET) to the audit
// trail, with the request and response bodies as JSON blobs.
func Audit(svc *audit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		var reqBody []byte
		if c.Request.Body != nil {
			reqBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(reqBody))
		}

		w := &auditWriter{ResponseWriter: c.Writer}
		c.Writer = w

		start := time.Now()
		c.Next()

		entry := audit.Entry{
			TraceID:    GetTraceID(c),
			Action:     c.Request.Method + " " + c.FullPath(),
			IP:         c.ClientIP(),
			DurationMs: int(time.Since(start).Milliseconds()),
		}
		if len(reqBody) > 0 && json.Valid(reqBody) {
			entry.Request = json.RawMessage(reqBody)
		}
		if body := w.body.Bytes(); json.Valid(body) {
			entry.Response = json.RawMessage(body)
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			entry.Error = http.StatusText(c.Writer.Status())
		}
		if id, err := strconv.ParseInt(c.Param("account_id"), 10, 64); err == nil {
			entry.AccountID = &id
		}
		svc.Log(entry)
	}
}
