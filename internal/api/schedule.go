package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hey-show123/beauty-scheduler/internal/assembler"
	"github.com/hey-show123/beauty-scheduler/internal/export"
	"github.com/hey-show123/beauty-scheduler/internal/metrics"
	"github.com/hey-show123/beauty-scheduler/internal/model"
	"github.com/hey-show123/beauty-scheduler/internal/optimizer"
	"github.com/hey-show123/beauty-scheduler/internal/workload"
)

const (
	dateLayout   = "2006-01-02"
	readyTimeout = time.Second
)

// ScheduleRequest is the body of the optimize and preview endpoints. Omitted
// id lists fall back to the default selection: all staff and every booking of
// the date that has not started yet. IncludePast keeps started bookings too.
type ScheduleRequest struct {
	ScheduleDate string   `json:"schedule_date"` // Format: YYYY-MM-DD
	StaffIDs     []string `json:"staff_ids,omitempty"`
	BookingIDs   []string `json:"booking_ids,omitempty"`
	IncludePast  bool     `json:"include_past,omitempty"`
}

// ScheduleResponse is the accepted schedule with its checks and totals.
type ScheduleResponse struct {
	ScheduleDate string          `json:"schedule_date"`
	State        assembler.State `json:"state"`
	assembler.Display
	Message    string                `json:"message,omitempty"`
	PreFilter  []assembler.Candidacy `json:"prefilter"`
	Unservable []string              `json:"unservable"`
	Summary    workload.Summary      `json:"summary"`
	LaborCost  float64               `json:"labor_cost"`
}

// handleOptimize solves the selection with the configured optimizer and
// keeps the result for export.
// POST /api/v1/optimize-schedule/
func (s *HTTPServer) handleOptimize(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("optimize_schedule")

	opt := s.optimizer
	if opt == nil {
		opt = optimizer.NewPreviewer(s.store, s.calendar())
	}
	resp, ok := s.solve(w, r, opt)
	if !ok {
		return
	}
	if resp.Status.Solved() {
		s.mu.Lock()
		s.last = &lastSchedule{date: resp.ScheduleDate, display: resp.Display}
		s.mu.Unlock()
	}
	writeJSON(w, statusFor(resp.Status), resp)
}

// handlePreview runs the local greedy assigner. Previews are not kept.
// POST /api/v1/preview-schedule/
func (s *HTTPServer) handlePreview(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("preview_schedule")

	resp, ok := s.solve(w, r, optimizer.NewPreviewer(s.store, s.calendar()))
	if !ok {
		return
	}
	writeJSON(w, statusFor(resp.Status), resp)
}

// solve runs one assembler session. On failure it writes the error response
// and returns false.
func (s *HTTPServer) solve(w http.ResponseWriter, r *http.Request, opt assembler.Optimizer) (ScheduleResponse, bool) {
	var req ScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return ScheduleResponse{}, false
	}
	if req.ScheduleDate == "" {
		writeError(w, http.StatusBadRequest, "schedule_date is required")
		return ScheduleResponse{}, false
	}
	date, err := time.ParseInLocation(dateLayout, req.ScheduleDate, s.location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid schedule_date format; expected YYYY-MM-DD")
		return ScheduleResponse{}, false
	}

	ctx := r.Context()
	staffPool, err := s.store.ListStaff(ctx)
	if err != nil {
		s.writeStoreError(w, err)
		return ScheduleResponse{}, false
	}
	bookingPool, err := s.store.ListBookingsOn(ctx, date)
	if err != nil {
		s.writeStoreError(w, err)
		return ScheduleResponse{}, false
	}

	sess := assembler.NewSession(date, staffPool, bookingPool, assembler.SessionDeps{
		Optimizer: opt,
		Calendar:  s.calendar(),
		Bus:       s.bus,
		Logger:    &s.log,
	})
	if err := s.selectFor(sess, &req, staffPool, bookingPool); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return ScheduleResponse{}, false
	}

	sel := sess.Selection()
	cands := assembler.PreFilter(sel.Staff, sel.Bookings)
	unservable := assembler.Unservable(cands)
	if len(unservable) > 0 {
		s.log.Warn().Strs("booking_ids", unservable).Msg("bookings have no compatible staff at their requested start")
	}

	display, err := sess.Solve(ctx)
	switch {
	case errors.Is(err, assembler.ErrEmptySelection):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return ScheduleResponse{}, false
	case errors.Is(err, assembler.ErrSolveInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return ScheduleResponse{}, false
	case err != nil:
		s.log.Error().Err(err).Msg("solve failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return ScheduleResponse{}, false
	}

	if unservable == nil {
		unservable = []string{}
	}
	return ScheduleResponse{
		ScheduleDate: req.ScheduleDate,
		State:        sess.State(),
		Display:      display,
		Message:      sess.Result().Message,
		PreFilter:    cands,
		Unservable:   unservable,
		Summary:      workload.Summarize(display.Schedule),
		LaborCost:    workload.Cost(display.Schedule, assembler.StaffIndex(sel.Staff)),
	}, true
}

func (s *HTTPServer) selectFor(sess *assembler.Session, req *ScheduleRequest, staffPool []model.Staff, bookingPool []model.Booking) error {
	if !req.IncludePast && len(req.StaffIDs) == 0 && len(req.BookingIDs) == 0 {
		return sess.SelectDefaults(s.now())
	}

	staffIDs := req.StaffIDs
	if len(staffIDs) == 0 {
		for _, m := range staffPool {
			staffIDs = append(staffIDs, m.ID)
		}
	}
	bookingIDs := req.BookingIDs
	if len(bookingIDs) == 0 {
		defaults := bookingPool
		if !req.IncludePast {
			defaults = assembler.DefaultSelection(staffPool, bookingPool, s.now()).Bookings
		}
		for _, b := range defaults {
			bookingIDs = append(bookingIDs, b.ID)
		}
	}
	if err := sess.SelectStaff(staffIDs); err != nil {
		return fmt.Errorf("staff_ids: %w", err)
	}
	if err := sess.SelectBookings(bookingIDs); err != nil {
		return fmt.Errorf("booking_ids: %w", err)
	}
	return nil
}

// handleExport renders the last optimized schedule.
// GET /api/v1/schedule/export?format=csv|xlsx|grid
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("schedule_export")

	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()
	if last == nil {
		writeError(w, http.StatusNotFound, "no schedule has been optimized yet")
		return
	}

	cal := s.calendar()
	items := last.display.Schedule
	var (
		buf         bytes.Buffer
		contentType string
		ext         string
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		contentType, ext = "text/csv; charset=utf-8", "csv"
		if err := export.WriteCSV(&buf, items, cal); err != nil {
			s.log.Error().Err(err).Msg("csv export failed")
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
	case "xlsx":
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
		if err := export.WriteXLSX(&buf, items, cal); err != nil {
			s.log.Error().Err(err).Msg("xlsx export failed")
			writeError(w, http.StatusInternalServerError, "export failed")
			return
		}
	case "grid":
		contentType, ext = "text/plain; charset=utf-8", "txt"
		buf.WriteString(export.Grid(items, cal))
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q; use csv, xlsx or grid", format))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="schedule-%s.%s"`, last.date, ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// StatsResponse is returned by GET /api/v1/stats.
type StatsResponse struct {
	TotalStaff       int                         `json:"total_staff"`
	TotalBookings    int                         `json:"total_bookings"`
	BookingsByStatus map[model.BookingStatus]int `json:"bookings_by_status"`
	ServiceTypes     []model.ServiceType         `json:"service_types"`
	SkillLevels      []model.SkillLevel          `json:"skill_levels"`
	LastSchedule     *LastScheduleStats          `json:"last_schedule,omitempty"`
}

// LastScheduleStats summarizes the last optimized schedule.
type LastScheduleStats struct {
	ScheduleDate string             `json:"schedule_date"`
	Status       model.ResultStatus `json:"status"`
	Warnings     int                `json:"warnings"`
	workload.Summary
}

// GET /api/v1/stats
func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("stats")

	ctx := r.Context()
	staff, err := s.store.ListStaff(ctx)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	resp := StatsResponse{
		TotalStaff:       len(staff),
		TotalBookings:    len(bookings),
		BookingsByStatus: make(map[model.BookingStatus]int),
		ServiceTypes:     model.ServiceTypes,
		SkillLevels:      []model.SkillLevel{model.LevelBeginner, model.LevelIntermediate, model.LevelAdvanced, model.LevelExpert},
	}
	for _, b := range bookings {
		resp.BookingsByStatus[b.Status]++
	}

	s.mu.RLock()
	if s.last != nil {
		resp.LastSchedule = &LastScheduleStats{
			ScheduleDate: s.last.date,
			Status:       s.last.display.Status,
			Warnings:     len(s.last.display.Warnings),
			Summary:      workload.Summarize(s.last.display.Schedule),
		}
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, resp)
}

// GET /healthz
func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Beauty Scheduler API is running",
	})
}

// GET /readyz
func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	checks := map[string]string{"database": "ok"}
	ready := true
	if err := s.store.PingContext(ctx); err != nil {
		checks["database"], ready = err.Error(), false
	}
	if s.redis != nil {
		checks["redis"] = "ok"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			checks["redis"], ready = err.Error(), false
		}
	}
	if hc, ok := s.optimizer.(HealthChecker); ok {
		checks["optimizer"] = "ok"
		if err := hc.HealthCheck(ctx); err != nil {
			checks["optimizer"], ready = err.Error(), false
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"ready": ready, "checks": checks})
}

// statusFor maps ERROR results to 502; every other status is a 200.
func statusFor(status model.ResultStatus) int {
	if status == model.ResultError {
		return http.StatusBadGateway
	}
	return http.StatusOK
}
