package model

import "time"

// ScheduleItem is one booking placed on one staff member's timeline.
type ScheduleItem struct {
	BookingID     string   `json:"booking_id"`
	StaffID       string   `json:"staff_id"`
	StaffName     string   `json:"staff_name"`
	CustomerName  string   `json:"customer_name"`
	Services      []string `json:"services"`
	StartSlot     int      `json:"start_slot"`
	DurationSlots int      `json:"duration_slots"`
}

// EndSlot returns the exclusive end of the item's slot range.
func (i ScheduleItem) EndSlot() int {
	return i.StartSlot + i.DurationSlots
}

// OptimizationRequest is the universe the optimizer may consider.
type OptimizationRequest struct {
	ScheduleDate time.Time `json:"schedule_date"`
	StaffIDs     []string  `json:"staff_ids"`
	BookingIDs   []string  `json:"booking_ids"`
}

// ResultStatus is the optimizer outcome.
type ResultStatus string

const (
	ResultOptimal    ResultStatus = "OPTIMAL"
	ResultFeasible   ResultStatus = "FEASIBLE"
	ResultInfeasible ResultStatus = "INFEASIBLE"
	ResultError      ResultStatus = "ERROR"
)

// Solved reports whether the status carries a schedule.
func (s ResultStatus) Solved() bool {
	return s == ResultOptimal || s == ResultFeasible
}

// SolverStats are reported by the optimizer; absent stats decode as zeros.
type SolverStats struct {
	SolveTime      float64 `json:"solve_time"`
	ObjectiveValue float64 `json:"objective_value"`
}

// OptimizationResult is the optimizer response.
type OptimizationResult struct {
	Status      ResultStatus   `json:"status"`
	Schedule    []ScheduleItem `json:"schedule,omitempty"`
	SolverStats SolverStats    `json:"solver_stats"`
	Message     string         `json:"message,omitempty"`
}

// ErrorResult builds an ERROR result with a distinguishable reason.
func ErrorResult(reason string) OptimizationResult {
	return OptimizationResult{Status: ResultError, Message: reason}
}
