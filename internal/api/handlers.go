package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"lanebook/internal/availability"
	"lanebook/internal/model"
	"lanebook/internal/report"
	"lanebook/internal/timeline"
)

// BusinessHoursRequest is the body of PUT /api/v1/business-hours/{day}.
type BusinessHoursRequest struct {
	Opens    string `json:"opens" validate:"required_unless=IsClosed true,max=8"`
	Closes   string `json:"closes" validate:"required_unless=IsClosed true,max=8"`
	IsClosed bool   `json:"is_closed"`
}

// BookingStatusRequest is the body of PATCH /api/v1/bookings/{id}/status.
type BookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

// WeekStatsResponse is returned by GET /api/v1/stats/week.
type WeekStatsResponse struct {
	Start string             `json:"start"`
	End   string             `json:"end"`
	Stats availability.Stats `json:"stats"`
}

// CanBookResponse is returned by GET /api/v1/availability/check.
type CanBookResponse struct {
	Date      string `json:"date"`
	Lane      int    `json:"lane"`
	Start     string `json:"start"`
	Minutes   int    `json:"minutes"`
	Available bool   `json:"available"`
}

// handleWeek returns the week grid containing ?date (default today).
// GET /api/v1/timeline/week
func (s *HTTPServer) handleWeek(w http.ResponseWriter, r *http.Request) {
	anchor, err := s.timeline.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	view, err := s.timeline.Week(r.Context(), anchor)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleDay returns bookings and lane slots for ?date, optionally narrowed by
// ?lane and ?status.
// GET /api/v1/timeline/day
func (s *HTTPServer) handleDay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := s.timeline.ParseDate(q.Get("date"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	filter, err := parseDayFilter(q.Get("lane"), q.Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.timeline.Day(r.Context(), date, filter)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleAvailability lists free slots per lane for ?date.
// GET /api/v1/availability
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	date, err := s.timeline.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	view, err := s.timeline.Availability(r.Context(), date)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleAvailabilityCheck answers whether ?lane is free for ?minutes from ?start.
// GET /api/v1/availability/check
func (s *HTTPServer) handleAvailabilityCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := s.timeline.ParseDate(q.Get("date"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	lane, err := strconv.Atoi(q.Get("lane"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lane must be a number")
		return
	}
	minutes, err := strconv.Atoi(q.Get("minutes"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "minutes must be a number")
		return
	}
	start := q.Get("start")

	ok, err := s.timeline.CanBook(r.Context(), date, lane, start, minutes)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CanBookResponse{
		Date:      date.Format("2006-01-02"),
		Lane:      lane,
		Start:     start,
		Minutes:   minutes,
		Available: ok,
	})
}

// handleWeekStats returns only the weekly totals.
// GET /api/v1/stats/week
func (s *HTTPServer) handleWeekStats(w http.ResponseWriter, r *http.Request) {
	anchor, err := s.timeline.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	view, err := s.timeline.Week(r.Context(), anchor)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, WeekStatsResponse{Start: view.Start, End: view.End, Stats: view.Stats})
}

// handleWeekReport streams the week as an Excel workbook.
// GET /api/v1/reports/week
func (s *HTTPServer) handleWeekReport(w http.ResponseWriter, r *http.Request) {
	anchor, err := s.timeline.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	view, err := s.timeline.Week(r.Context(), anchor)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteWeek(&buf, view); err != nil {
		s.logger.Error().Err(err).Str("request_id", requestIDOf(r)).Msg("render weekly report")
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(view)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleUpdateBusinessHours replaces the window of one weekday.
// PUT /api/v1/business-hours/{day}
func (s *HTTPServer) handleUpdateBusinessHours(w http.ResponseWriter, r *http.Request) {
	day, ok := model.ParseWeekday(r.PathValue("day"))
	if !ok {
		writeError(w, http.StatusBadRequest, "day must be 0-6 or a weekday name")
		return
	}

	var req BusinessHoursRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	window := model.BusinessHourWindow{
		DayOfWeek: day,
		Opens:     req.Opens,
		Closes:    req.Closes,
		IsClosed:  req.IsClosed,
	}
	if err := s.timeline.SetBusinessHours(r.Context(), window); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateBookingStatus confirms, cancels or reopens a booking.
// PATCH /api/v1/bookings/{id}/status
func (s *HTTPServer) handleUpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))

	var req BookingStatusRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.timeline.SetBookingStatus(r.Context(), id, model.BookingStatus(req.Status)); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body into v and runs struct validation.
func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed %s validation", strings.ToLower(fe.Field()), fe.Tag())
		}
		return err
	}
	return nil
}

func parseDayFilter(lane, status string) (timeline.DayFilter, error) {
	var f timeline.DayFilter
	if lane != "" {
		n, err := strconv.Atoi(lane)
		if err != nil || n <= 0 {
			return f, errors.New("lane must be a positive number")
		}
		f.Lane = n
	}
	if status != "" {
		switch strings.ToLower(status) {
		case "pending", "confirmed", "approved", "cancelled", "canceled", "rejected":
			f.Status = model.ParseBookingStatus(strings.ToLower(status))
		default:
			return f, fmt.Errorf("unknown status %q", status)
		}
	}
	return f, nil
}
