package model

import (
	"fmt"
	"time"
)

// BookingStatus is the store-side lifecycle state of a booking.
type BookingStatus string

const (
	StatusScheduled  BookingStatus = "scheduled"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Priority ranks customers.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityVIP    Priority = "VIP"
)

// Weight returns 0 for LOW up to 3 for VIP. Unknown values count as NORMAL.
func (p Priority) Weight() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityHigh:
		return 2
	case PriorityVIP:
		return 3
	default:
		return 1
	}
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityVIP:
		return true
	}
	return false
}

// Service is one line of a booking.
type Service struct {
	ServiceType        ServiceType `json:"service_type"`
	DurationMinutes    int         `json:"duration_minutes"`
	RequiredSkillLevel SkillLevel  `json:"required_skill_level"`
	Price              float64     `json:"price"`
	SetupMinutes       int         `json:"setup_minutes,omitempty"`
	CleanupMinutes     int         `json:"cleanup_minutes,omitempty"`
}

// TotalMinutes returns duration including setup and cleanup.
func (s Service) TotalMinutes() int {
	return s.DurationMinutes + s.SetupMinutes + s.CleanupMinutes
}

// Customer is the person a booking is for.
type Customer struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Phone             string   `json:"phone"`
	Email             string   `json:"email,omitempty"`
	Priority          Priority `json:"priority"`
	PreferredStaffIDs []string `json:"preferred_staff_ids"`
}

// Prefers reports whether staffID is in the customer's preferred list.
func (c *Customer) Prefers(staffID string) bool {
	for _, id := range c.PreferredStaffIDs {
		if id == staffID {
			return true
		}
	}
	return false
}

// Booking is a customer appointment made of one or more services.
type Booking struct {
	ID              string        `json:"id"`
	Customer        Customer      `json:"customer"`
	Services        []Service     `json:"services"`
	ScheduledStart  time.Time     `json:"scheduled_start"`
	Status          BookingStatus `json:"status"`
	AssignedStaffID string        `json:"assigned_staff_id,omitempty"`
	Notes           string        `json:"notes"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TotalMinutes sums service durations including setup and cleanup.
func (b *Booking) TotalMinutes() int {
	total := 0
	for _, s := range b.Services {
		total += s.TotalMinutes()
	}
	return total
}

// TotalDuration returns TotalMinutes as a time.Duration.
func (b *Booking) TotalDuration() time.Duration {
	return time.Duration(b.TotalMinutes()) * time.Minute
}

// TotalPrice sums service prices.
func (b *Booking) TotalPrice() float64 {
	var total float64
	for _, s := range b.Services {
		total += s.Price
	}
	return total
}

// EstimatedEnd returns the scheduled start plus total duration.
func (b *Booking) EstimatedEnd() time.Time {
	return b.ScheduledStart.Add(b.TotalDuration())
}

// ServiceNames returns the service type identifiers in booking order.
func (b *Booking) ServiceNames() []string {
	names := make([]string, len(b.Services))
	for i, s := range b.Services {
		names[i] = string(s.ServiceType)
	}
	return names
}

// NeedsService reports whether the booking includes st.
func (b *Booking) NeedsService(st ServiceType) bool {
	for _, s := range b.Services {
		if s.ServiceType == st {
			return true
		}
	}
	return false
}

// Validate checks required fields and ranges.
func (b *Booking) Validate() error {
	if b.Customer.Name == "" {
		return fmt.Errorf("customer.name is required")
	}
	if b.Customer.Phone == "" {
		return fmt.Errorf("customer.phone is required")
	}
	if b.Customer.Priority != "" && !b.Customer.Priority.Valid() {
		return fmt.Errorf("customer.priority: unknown value %q", b.Customer.Priority)
	}
	if len(b.Services) == 0 {
		return fmt.Errorf("at least one service is required")
	}
	for i, s := range b.Services {
		if !s.ServiceType.Valid() {
			return fmt.Errorf("services[%d]: unknown service type %q", i, s.ServiceType)
		}
		if s.DurationMinutes <= 0 {
			return fmt.Errorf("services[%d]: duration_minutes must be positive", i)
		}
		if !s.RequiredSkillLevel.Valid() {
			return fmt.Errorf("services[%d]: required_skill_level must be 1-4, got %d", i, s.RequiredSkillLevel)
		}
		if s.Price < 0 {
			return fmt.Errorf("services[%d]: price cannot be negative", i)
		}
		if s.SetupMinutes < 0 || s.CleanupMinutes < 0 {
			return fmt.Errorf("services[%d]: setup/cleanup minutes cannot be negative", i)
		}
	}
	if b.ScheduledStart.IsZero() {
		return fmt.Errorf("scheduled_start is required")
	}
	if b.Status != "" && !b.Status.Valid() {
		return fmt.Errorf("status: unknown value %q", b.Status)
	}
	return nil
}
