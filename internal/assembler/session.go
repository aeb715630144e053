package assembler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hey-show123/beauty-scheduler/internal/events"
	"github.com/hey-show123/beauty-scheduler/internal/metrics"
	"github.com/hey-show123/beauty-scheduler/internal/model"
	"github.com/hey-show123/beauty-scheduler/internal/slots"
)

// ErrSolveInProgress is returned when a solve is requested while one is pending.
var ErrSolveInProgress = errors.New("SOLVE_IN_PROGRESS")

// ErrUnknownSelection is returned when a selected id is not in the session pool.
var ErrUnknownSelection = errors.New("selected id not in pool")

// ErrNoOptimizer is the solve error of a session built without an optimizer.
var ErrNoOptimizer = errors.New("no optimizer configured")

// Optimizer solves a scheduling request. Implementations report transport
// failures both as an ERROR result and as err.
type Optimizer interface {
	Optimize(ctx context.Context, req model.OptimizationRequest) (model.OptimizationResult, error)
}

// SessionDeps are the collaborators of a Session. Bus and Logger are optional.
type SessionDeps struct {
	Optimizer Optimizer
	Calendar  slots.Calendar
	Bus       *events.Bus
	Logger    *zerolog.Logger
}

// SolvedPayload is published with schedule.solved and schedule.failed events.
type SolvedPayload struct {
	Date     string             `json:"date"`
	Status   model.ResultStatus `json:"status"`
	Items    int                `json:"items"`
	Warnings int                `json:"warnings"`
	Message  string             `json:"message,omitempty"`
}

// Session owns one date's pools, selection and result.
type Session struct {
	mu    sync.Mutex
	fsm   *FSM
	state State
	deps  SessionDeps
	log   zerolog.Logger

	date        time.Time
	staffPool   []model.Staff
	bookingPool []model.Booking

	staff    []model.Staff
	bookings []model.Booking

	request model.OptimizationRequest
	result  model.OptimizationResult
	display Display
}

// NewSession starts a session in DATE_SELECTED.
func NewSession(date time.Time, staffPool []model.Staff, bookingPool []model.Booking, deps SessionDeps) *Session {
	log := zerolog.Nop()
	if deps.Logger != nil {
		log = deps.Logger.With().Str("component", "assembler").Str("date", date.Format("2006-01-02")).Logger()
	}
	if deps.Calendar.SlotsPerDay() == 0 {
		deps.Calendar = slots.Default()
	}
	return &Session{
		fsm:         NewFSM(),
		state:       StateDateSelected,
		deps:        deps,
		log:         log,
		date:        date,
		staffPool:   staffPool,
		bookingPool: bookingPool,
	}
}

// State returns the current wizard stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Date returns the schedule date.
func (s *Session) Date() time.Time {
	return s.date
}

// Selection returns copies of the current staff and booking selection.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Selection{
		Staff:    append([]model.Staff(nil), s.staff...),
		Bookings: append([]model.Booking(nil), s.bookings...),
	}
}

// Display returns the last accepted result.
func (s *Session) Display() Display {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display
}

// Result returns the raw optimizer result of the last solve.
func (s *Session) Result() model.OptimizationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// SelectStaff picks staff from the pool by id, in the given order.
func (s *Session) SelectStaff(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	picked, err := pick(s.staffPool, ids, func(m model.Staff) string { return m.ID })
	if err != nil {
		return err
	}
	next, err := s.fsm.Next(s.state, StateStaffSelected)
	if err != nil {
		return err
	}
	s.staff, s.state = picked, next
	return nil
}

// SelectBookings picks bookings from the pool by id, in the given order.
func (s *Session) SelectBookings(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	picked, err := pick(s.bookingPool, ids, func(b model.Booking) string { return b.ID })
	if err != nil {
		return err
	}
	next, err := s.fsm.Next(s.state, StateBookingsSelected)
	if err != nil {
		return err
	}
	s.bookings, s.state = picked, next
	return nil
}

// SelectDefaults applies DefaultSelection for now and walks the wizard
// through both selection stages.
func (s *Session) SelectDefaults(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel := DefaultSelection(s.staffPool, s.bookingPool, now)
	state, err := s.fsm.Next(s.state, StateStaffSelected)
	if err != nil {
		return err
	}
	if state, err = s.fsm.Next(state, StateBookingsSelected); err != nil {
		return err
	}
	s.staff, s.bookings, s.state = sel.Staff, sel.Bookings, state
	return nil
}

// Solve sends the selection to the optimizer and accepts the answer. An empty
// selection fails with ErrEmptySelection before the optimizer is called.
// Optimizer errors land in SOLVE_FAILED with a NO_SOLUTION warning.
func (s *Session) Solve(ctx context.Context) (Display, error) {
	s.mu.Lock()
	if s.state == StateSolving {
		s.mu.Unlock()
		return Display{}, ErrSolveInProgress
	}
	if !s.fsm.CanTransition(s.state, StateSolving) {
		state := s.state
		s.mu.Unlock()
		return Display{}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, state, StateSolving)
	}
	req, err := BuildRequest(s.date, s.staff, s.bookings)
	if err != nil {
		s.mu.Unlock()
		return Display{}, err
	}
	s.state = StateSolving
	s.request = req
	staffByID := StaffIndex(s.staff)
	s.mu.Unlock()

	s.log.Info().Int("staff", len(req.StaffIDs)).Int("bookings", len(req.BookingIDs)).Msg("solving schedule")

	started := time.Now()
	var (
		result model.OptimizationResult
		optErr error
	)
	if s.deps.Optimizer == nil {
		optErr = ErrNoOptimizer
	} else {
		result, optErr = s.deps.Optimizer.Optimize(ctx, req)
	}
	elapsed := time.Since(started)

	if optErr != nil {
		if result.Status != model.ResultError {
			result = model.ErrorResult(optErr.Error())
		}
		s.log.Error().Err(optErr).Dur("elapsed", elapsed).Msg("optimizer call failed")
	}

	display := AcceptResult(result, staffByID, s.deps.Calendar)

	s.mu.Lock()
	s.result = result
	s.display = display
	if result.Status.Solved() {
		s.state = StateResultReady
	} else {
		s.state = StateSolveFailed
	}
	s.mu.Unlock()

	s.record(display, result, elapsed)
	return display, nil
}

// Retry moves a failed session back to BOOKINGS_SELECTED and clears the result.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSolveFailed {
		return fmt.Errorf("%w: retry from %s", ErrIllegalTransition, s.state)
	}
	s.state = StateBookingsSelected
	s.result = model.OptimizationResult{}
	s.display = Display{}
	return nil
}

func (s *Session) record(d Display, result model.OptimizationResult, elapsed time.Duration) {
	metrics.ObserveSolve(string(result.Status), elapsed)
	for _, w := range d.Warnings {
		metrics.IncWarning(string(w.Code))
	}

	payload := SolvedPayload{
		Date:     s.date.Format("2006-01-02"),
		Status:   result.Status,
		Items:    len(d.Schedule),
		Warnings: len(d.Warnings),
		Message:  result.Message,
	}
	eventType := events.TypeScheduleSolved
	if !result.Status.Solved() {
		eventType = events.TypeScheduleFailed
	}
	if err := s.deps.Bus.PublishJSON(eventType, payload); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("event handler failed")
	}

	s.log.Info().
		Str("status", string(result.Status)).
		Int("items", len(d.Schedule)).
		Int("warnings", len(d.Warnings)).
		Float64("objective", result.SolverStats.ObjectiveValue).
		Dur("elapsed", elapsed).
		Msg("schedule accepted")
}

func pick[T any](pool []T, ids []string, id func(T) string) ([]T, error) {
	index := make(map[string]int, len(pool))
	for i, v := range pool {
		index[id(v)] = i
	}
	out := make([]T, 0, len(ids))
	for _, want := range ids {
		i, ok := index[want]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSelection, want)
		}
		out = append(out, pool[i])
	}
	return out, nil
}
