// Package api serves the dashboard and public booking page over JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"lanebook/internal/gateway"
	"lanebook/internal/timeline"
)

// HTTPServer exposes timeline views and admin edits.
type HTTPServer struct {
	timeline *timeline.Service
	adminKey string
	validate *validator.Validate
	logger   zerolog.Logger
	server   *http.Server
}

// NewHTTPServer wires routes on addr. An empty adminKey leaves admin routes open.
func NewHTTPServer(addr string, readTimeout time.Duration, svc *timeline.Service, adminKey string, logger *zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		timeline: svc,
		adminKey: adminKey,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("component", "api").Logger(),
	}

	mux := http.NewServeMux()
	s.route(mux, "GET /api/v1/availability", "availability", false, s.handleAvailability)
	s.route(mux, "GET /api/v1/availability/check", "availability_check", false, s.handleAvailabilityCheck)
	s.route(mux, "GET /api/v1/timeline/week", "timeline_week", true, s.handleWeek)
	s.route(mux, "GET /api/v1/timeline/day", "timeline_day", true, s.handleDay)
	s.route(mux, "GET /api/v1/stats/week", "stats_week", true, s.handleWeekStats)
	s.route(mux, "GET /api/v1/reports/week", "report_week", true, s.handleWeekReport)
	s.route(mux, "PUT /api/v1/business-hours/{day}", "business_hours_update", true, s.handleUpdateBusinessHours)
	s.route(mux, "PATCH /api/v1/bookings/{id}/status", "booking_status_update", true, s.handleUpdateBookingStatus)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.recoverer(s.requestLogging(mux)),
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
	}
	return s
}

// Handler returns the root handler, middleware included.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Str("addr", s.server.Addr).Msg("api server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) route(mux *http.ServeMux, pattern, name string, admin bool, h http.HandlerFunc) {
	var handler http.Handler = h
	if admin {
		handler = s.requireAdmin(handler)
	}
	mux.Handle(pattern, withMetrics(name, handler))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps service and backend errors onto HTTP status codes.
func (s *HTTPServer) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	msg := "booking backend unavailable"
	switch {
	case errors.Is(err, timeline.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, gateway.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, gateway.ErrRejected):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, context.Canceled):
		return
	}

	event := s.logger.Warn()
	if status >= 500 {
		event = s.logger.Error()
	}
	event.Err(err).
		Str("request_id", requestIDOf(r)).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request failed")
	writeError(w, status, msg)
}
