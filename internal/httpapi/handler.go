package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rscheck/rscheck/internal/aggregator"
)

type handler struct {
	agg  *aggregator.Aggregator
	opts Options
}

// serve answers both GET and HEAD at opts.Location. GET always returns
// 200: the body, not the status code, carries the health signal. HEAD
// returns 200 or 503, the machine-readable signal load balancers act on.
func (h *handler) serve(c *gin.Context) {
	rawQuery := c.Request.URL.RawQuery
	args, err := parseQueryString(rawQuery)
	if err != nil {
		h.writeError(c, http.StatusBadRequest, err)
		return
	}

	h.agg.RunQuery(rawQuery, args)
	exclude := excludeSet(args)
	healthy, message := h.agg.Snapshot(rawQuery, exclude)

	status := http.StatusOK
	if c.Request.Method == http.MethodHead && !healthy {
		status = http.StatusServiceUnavailable
	}

	h.writeBody(c, status, message)
}

func (h *handler) writeError(c *gin.Context, status int, err error) {
	body := ""
	if h.opts.ErrorMessage {
		body = err.Error()
	}
	h.writeBody(c, status, body)
}

func (h *handler) writeBody(c *gin.Context, status int, body string) {
	w := c.Writer
	header := w.Header()
	header.Set("Content-Type", "text/html; charset=utf-8")
	header.Set("Server", "RSCheck/"+Version)

	isHead := c.Request.Method == http.MethodHead
	if isHead && h.opts.KeepAlive {
		header.Set("Content-Length", "0")
	}
	if !h.opts.KeepAlive {
		header.Set("Connection", "close")
	}

	w.WriteHeader(status)
	if !isHead {
		fmt.Fprint(w, body)
	}
}
