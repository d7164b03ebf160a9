// Package control exposes the operational surface of the monitor over HTTP:
// status, start, stop and manual scan or digest triggers.
package control

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lueurxax/trend-notifier/internal/core/domain"
	apperrors "github.com/lueurxax/trend-notifier/internal/core/errors"
	"github.com/lueurxax/trend-notifier/internal/platform/observability"
	"github.com/lueurxax/trend-notifier/internal/process/monitor"
)

// Routes served by the handler.
const (
	PathStatus = "/monitor/status"
	PathStart  = "/monitor/start"
	PathStop   = "/monitor/stop"
	PathScan   = "/monitor/scan"
	PathDigest = "/monitor/digest"
)

// HeaderAdminToken carries the admin token when one is configured.
const HeaderAdminToken = "X-Admin-Token"

// Rate limiting constants.
const (
	rateLimitRequests = 30
	rateLimitBurst    = 10
	rateLimitWindow   = time.Minute
)

const (
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
	logFieldRoute     = "route"
)

// Controller is the monitor surface driven by operators.
type Controller interface {
	Start(ctx context.Context) error
	Stop()
	Status() monitor.Status
	RunScanNow(ctx context.Context) (domain.ScanResult, error)
	RunWeeklyDigestNow(ctx context.Context) (domain.DigestResult, error)
}

// Handler serves the control routes.
type Handler struct {
	ctrl       Controller
	lifecycle  context.Context
	adminToken string
	logger     *zerolog.Logger

	limiters   map[string]*rate.Limiter
	limitersMu sync.Mutex
}

// NewHandler creates a control handler. lifecycle bounds monitors started
// through the handler, so it should live as long as the process. An empty
// adminToken disables authentication.
func NewHandler(lifecycle context.Context, ctrl Controller, adminToken string, logger *zerolog.Logger) *Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Handler{
		ctrl:       ctrl,
		lifecycle:  lifecycle,
		adminToken: adminToken,
		logger:     logger,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// Register mounts the control routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET "+PathStatus, h.guard(PathStatus, h.handleStatus))
	mux.Handle("POST "+PathStart, h.guard(PathStart, h.handleStart))
	mux.Handle("POST "+PathStop, h.guard(PathStop, h.handleStop))
	mux.Handle("POST "+PathScan, h.guard(PathScan, h.handleScan))
	mux.Handle("POST "+PathDigest, h.guard(PathDigest, h.handleDigest))
}

// statusResponse is the JSON shape of the monitor status.
type statusResponse struct {
	Running         bool   `json:"running"`
	LastScannedAt   string `json:"lastScannedAt,omitempty"`
	IntervalSeconds int64  `json:"intervalSeconds"`
}

type scanResponse struct {
	Items      int   `json:"items"`
	Matched    int   `json:"matched"`
	Sent       int   `json:"sent"`
	Failed     int   `json:"failed"`
	Suppressed int   `json:"suppressed"`
	DurationMS int64 `json:"durationMs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) int {
	return h.writeJSON(w, http.StatusOK, toStatusResponse(h.ctrl.Status()))
}

func (h *Handler) handleStart(w http.ResponseWriter, _ *http.Request) int {
	if err := h.ctrl.Start(h.lifecycle); err != nil {
		return h.writeError(w, err)
	}

	return h.writeJSON(w, http.StatusOK, toStatusResponse(h.ctrl.Status()))
}

func (h *Handler) handleStop(w http.ResponseWriter, _ *http.Request) int {
	h.ctrl.Stop()

	return h.writeJSON(w, http.StatusOK, toStatusResponse(h.ctrl.Status()))
}

// Manual scans and digests run on a context detached from the request.
func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) int {
	res, err := h.ctrl.RunScanNow(context.WithoutCancel(r.Context()))
	if err != nil {
		return h.writeError(w, err)
	}

	return h.writeJSON(w, http.StatusOK, scanResponse{
		Items:      res.Items,
		Matched:    res.Matched,
		Sent:       res.Sent,
		Failed:     res.Failed,
		Suppressed: res.Suppressed,
		DurationMS: res.Duration.Milliseconds(),
	})
}

func (h *Handler) handleDigest(w http.ResponseWriter, r *http.Request) int {
	res, err := h.ctrl.RunWeeklyDigestNow(context.WithoutCancel(r.Context()))
	if err != nil {
		return h.writeError(w, err)
	}

	return h.writeJSON(w, http.StatusOK, res)
}

func toStatusResponse(s monitor.Status) statusResponse {
	resp := statusResponse{
		Running:         s.Running,
		IntervalSeconds: s.IntervalSeconds,
	}

	if !s.LastScannedAt.IsZero() {
		resp.LastScannedAt = s.LastScannedAt.UTC().Format(time.RFC3339)
	}

	return resp
}

// guard applies rate limiting and admin authentication, then records the
// response status.
func (h *Handler) guard(route string, fn func(http.ResponseWriter, *http.Request) int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := h.serveGuarded(w, r, route, fn)
		observability.ControlRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

func (h *Handler) serveGuarded(w http.ResponseWriter, r *http.Request, route string, fn func(http.ResponseWriter, *http.Request) int) int {
	if !h.allowRequest(getClientIP(r)) {
		return h.writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
	}

	if !h.authorized(r) {
		h.logger.Warn().Str(logFieldRoute, route).Str("client", getClientIP(r)).Msg("unauthorized control request")

		return h.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}

	return fn(w, r)
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.adminToken == "" {
		return true
	}

	got := r.Header.Get(HeaderAdminToken)

	return subtle.ConstantTimeCompare([]byte(got), []byte(h.adminToken)) == 1
}

func (h *Handler) writeError(w http.ResponseWriter, err error) int {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("control request failed")
	}

	return h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrScanInProgress), errors.Is(err, apperrors.ErrDigestInProgress):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrNotifierMissing), errors.Is(err, apperrors.ErrConfiguration):
		return http.StatusPreconditionFailed
	case errors.Is(err, apperrors.ErrFetch):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) int {
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn().Err(err).Msg("write control response")
	}

	return status
}

func (h *Handler) allowRequest(ip string) bool {
	h.limitersMu.Lock()

	limiter, ok := h.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(rateLimitWindow/rateLimitRequests), rateLimitBurst)
		h.limiters[ip] = limiter
	}

	h.limitersMu.Unlock()

	return limiter.Allow()
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
