package api

import (
	"net/http"
	"time"

	"github.com/hey-show123/beauty-scheduler/internal/events"
	"github.com/hey-show123/beauty-scheduler/internal/metrics"
	"github.com/hey-show123/beauty-scheduler/internal/model"
)

// BookingRequest is the body of POST and PUT /api/v1/bookings/.
type BookingRequest struct {
	CustomerName      string              `json:"customer_name"`
	CustomerPhone     string              `json:"customer_phone"`
	CustomerEmail     string              `json:"customer_email,omitempty"`
	Priority          model.Priority      `json:"priority,omitempty"`
	PreferredStaffIDs []string            `json:"preferred_staff_ids,omitempty"`
	Services          []model.Service     `json:"services"`
	ScheduledStart    time.Time           `json:"scheduled_start"`
	Status            model.BookingStatus `json:"status,omitempty"`
	AssignedStaffID   string              `json:"assigned_staff_id,omitempty"`
	Notes             string              `json:"notes,omitempty"`
}

func (r BookingRequest) toModel(id string) model.Booking {
	return model.Booking{
		ID: id,
		Customer: model.Customer{
			Name:              r.CustomerName,
			Phone:             r.CustomerPhone,
			Email:             r.CustomerEmail,
			Priority:          r.Priority,
			PreferredStaffIDs: r.PreferredStaffIDs,
		},
		Services:        r.Services,
		ScheduledStart:  r.ScheduledStart,
		Status:          r.Status,
		AssignedStaffID: r.AssignedStaffID,
		Notes:           r.Notes,
	}
}

// GET /api/v1/bookings/?date=YYYY-MM-DD
func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_list")

	var (
		bookings []model.Booking
		err      error
	)
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, perr := time.ParseInLocation(dateLayout, raw, s.location())
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		bookings, err = s.store.ListBookingsOn(r.Context(), date)
	} else {
		bookings, err = s.store.ListBookings(r.Context())
	}
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// POST /api/v1/bookings/
func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_create")

	var req BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Status != "" && req.Status != model.StatusScheduled {
		writeError(w, http.StatusBadRequest, "new bookings start in scheduled status")
		return
	}

	booking := req.toModel("")
	if err := s.store.CreateBooking(r.Context(), &booking); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.publish(events.TypeBookingChanged, booking.ID, "create")
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: booking.ID, Message: "booking created"})
}

// GET /api/v1/bookings/{id}
func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_get")

	booking, err := s.store.GetBooking(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// PUT /api/v1/bookings/{id}
func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_update")

	var req BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id := r.PathValue("id")
	existing, err := s.store.GetBooking(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	booking := req.toModel(id)
	booking.Customer.ID = existing.Customer.ID
	if booking.Status == "" {
		booking.Status = existing.Status
	}
	if booking.Customer.Priority == "" {
		booking.Customer.Priority = existing.Customer.Priority
	}
	if err := s.store.UpdateBooking(r.Context(), &booking); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.publish(events.TypeBookingChanged, id, "update")
	writeJSON(w, http.StatusOK, booking)
}

// DELETE /api/v1/bookings/{id}
func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_delete")

	id := r.PathValue("id")
	if err := s.store.DeleteBooking(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.publish(events.TypeBookingChanged, id, "delete")
	w.WriteHeader(http.StatusNoContent)
}
