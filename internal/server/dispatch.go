package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/campanel/internal/dispatch"
	"github.com/jpalmerr/campanel/internal/fetch"
)

const (
	xmlContentType  = "application/xml; charset=UTF-8"
	htmlContentType = "text/html; charset=utf-8"

	// expiredDate is any date in the past; browsers then never reuse a reply.
	expiredDate = "Mon, 26 Jul 1997 05:00:00 GMT"
)

// ErrorDocument is the body written in place of the upstream reply when the
// fetch fails.
func ErrorDocument(code int) []byte {
	return []byte(fmt.Sprintf(`<?xml version="1.0"?><error>wget error %d</error>`, code))
}

// setNoCache sets the cache-defeating headers sent in both modes.
func setNoCache(h http.Header) {
	h.Set("Cache-Control", "no-cache, must-revalidate")
	h.Set("Expires", expiredDate)
}

// handleDispatch serves the single panel endpoint.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	setNoCache(w.Header())

	switch req := dispatch.Parse(r.URL.Query()).(type) {
	case dispatch.ProxyRequest:
		s.metrics.requests.WithLabelValues(req.Mode.String()).Inc()
		s.serveProxy(w, r, req)
	case dispatch.PageRequest:
		s.metrics.requests.WithLabelValues("page").Inc()
		s.servePage(w, r, req)
	}
}

// serveProxy fetches the upstream document and passes it through unmodified.
// A failed fetch still answers 200 with a synthetic error document.
func (s *Server) serveProxy(w http.ResponseWriter, r *http.Request, req dispatch.ProxyRequest) {
	requestID := uuid.NewString()
	w.Header().Set("Content-Type", xmlContentType)
	w.Header().Set("X-Request-Id", requestID)

	start := time.Now()
	body, err := s.fetcher.Fetch(r.Context(), req.URL)
	latency := time.Since(start)
	s.metrics.observeFetch(req.Mode, latency, err)

	logAttrs := []any{
		"request_id", requestID,
		"port", req.Port,
		"query", req.Mode.String(),
		"url", req.URL,
		"latency_ms", latency.Milliseconds(),
	}
	if err != nil {
		code := fetch.Code(err)
		s.logger.Warn("upstream fetch failed", append(logAttrs, "code", code, "error", err.Error())...)
		body = ErrorDocument(code)
	} else {
		s.logger.Debug("upstream fetch completed", append(logAttrs, "bytes", len(body))...)
	}

	if _, err := w.Write(body); err != nil {
		s.logger.Error("failed to write proxy response", "request_id", requestID, "error", err)
	}
}
