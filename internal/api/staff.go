package api

import (
	"net/http"

	"github.com/hey-show123/beauty-scheduler/internal/events"
	"github.com/hey-show123/beauty-scheduler/internal/metrics"
	"github.com/hey-show123/beauty-scheduler/internal/model"
)

// StaffRequest is the body of POST and PUT /api/v1/staff/.
type StaffRequest struct {
	Name            string               `json:"name"`
	Skills          []model.Skill        `json:"skills"`
	Availability    []model.Availability `json:"availability"`
	HourlyRate      float64              `json:"hourly_rate"`
	MaxHoursPerDay  int                  `json:"max_hours_per_day,omitempty"`
	MaxHoursPerWeek int                  `json:"max_hours_per_week,omitempty"`
}

func (r StaffRequest) toModel(id string) model.Staff {
	return model.Staff{
		ID:              id,
		Name:            r.Name,
		Skills:          r.Skills,
		Availability:    r.Availability,
		HourlyRate:      r.HourlyRate,
		MaxHoursPerDay:  r.MaxHoursPerDay,
		MaxHoursPerWeek: r.MaxHoursPerWeek,
	}
}

// CreatedResponse is returned by create endpoints.
type CreatedResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// GET /api/v1/staff/
func (s *HTTPServer) handleListStaff(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("staff_list")

	staff, err := s.store.ListStaff(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

// POST /api/v1/staff/
func (s *HTTPServer) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("staff_create")

	var req StaffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	staff := req.toModel("")
	if err := s.store.CreateStaff(r.Context(), &staff); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.publish(events.TypeStaffChanged, staff.ID, "create")
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: staff.ID, Message: "staff created"})
}

// GET /api/v1/staff/{id}
func (s *HTTPServer) handleGetStaff(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("staff_get")

	staff, err := s.store.GetStaff(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, staff)
}

// PUT /api/v1/staff/{id}
func (s *HTTPServer) handleUpdateStaff(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("staff_update")

	var req StaffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id := r.PathValue("id")
	existing, err := s.store.GetStaff(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	staff := req.toModel(id)
	if staff.MaxHoursPerDay == 0 {
		staff.MaxHoursPerDay = existing.MaxHoursPerDay
	}
	if staff.MaxHoursPerWeek == 0 {
		staff.MaxHoursPerWeek = existing.MaxHoursPerWeek
	}
	if err := s.store.UpdateStaff(r.Context(), &staff); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.publish(events.TypeStaffChanged, staff.ID, "update")
	writeJSON(w, http.StatusOK, staff)
}

// DELETE /api/v1/staff/{id}
func (s *HTTPServer) handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("staff_delete")

	id := r.PathValue("id")
	if err := s.store.DeleteStaff(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.publish(events.TypeStaffChanged, id, "delete")
	w.WriteHeader(http.StatusNoContent)
}
