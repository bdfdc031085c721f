package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/PaperRAG/internal/adapter/utils"
	"github.com/akolanti/PaperRAG/internal/config"
	"github.com/akolanti/PaperRAG/internal/metrics"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type Middleware struct {
	authToken    string
	noAuthBypass bool
	limiter      *IPRateLimiter
}

func New(settings *config.Settings) *Middleware {
	return &Middleware{
		authToken:    settings.AuthToken,
		noAuthBypass: settings.NoAuthBypass,
		limiter:      NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND),
	}
}

// Wrap runs trace injection, bearer auth and the per-IP rate limiter before next.
func (m *Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return m.wrap(next, true)
}

// WrapPublic only injects the trace and records metrics.
func (m *Middleware) WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return m.wrap(next, false)
}

// WrapHandler is Wrap for plain http.Handlers such as the MCP endpoint.
func (m *Middleware) WrapHandler(next http.Handler) http.HandlerFunc {
	return m.wrap(next.ServeHTTP, true)
}

func (m *Middleware) wrap(next http.HandlerFunc, protected bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		re := m.processRequest(requestResponseStruct{req: r, writer: rec}, protected)

		if !handleBadRequest(re) {
			metrics.HttpRequestsTotal.WithLabelValues(utils.RoutePattern(r), strconv.Itoa(rec.Status)).Inc()
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(utils.RoutePattern(r), strconv.Itoa(rec.Status)).Inc()
	}
}

func (m *Middleware) processRequest(re requestResponseStruct, protected bool) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if re.badRequest.isBadRequest || !protected {
		return re
	}
	re.logger.Info("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	re = m.authenticate(re)
	if re.badRequest.isBadRequest {
		return re
	}
	return m.rateLimiter(re)
}
