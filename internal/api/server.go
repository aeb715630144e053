// Package api serves the scheduler's JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hey-show123/beauty-scheduler/internal/assembler"
	"github.com/hey-show123/beauty-scheduler/internal/config"
	"github.com/hey-show123/beauty-scheduler/internal/events"
	"github.com/hey-show123/beauty-scheduler/internal/model"
	"github.com/hey-show123/beauty-scheduler/internal/slots"
	"github.com/hey-show123/beauty-scheduler/internal/store"
)

const apiKeyHeader = "x-api-key"

// Store is the persistence the API needs.
type Store interface {
	ListStaff(ctx context.Context) ([]model.Staff, error)
	GetStaff(ctx context.Context, id string) (model.Staff, error)
	CreateStaff(ctx context.Context, s *model.Staff) error
	UpdateStaff(ctx context.Context, s *model.Staff) error
	DeleteStaff(ctx context.Context, id string) error

	ListBookings(ctx context.Context) ([]model.Booking, error)
	ListBookingsOn(ctx context.Context, date time.Time) ([]model.Booking, error)
	GetBooking(ctx context.Context, id string) (model.Booking, error)
	CreateBooking(ctx context.Context, b *model.Booking) error
	UpdateBooking(ctx context.Context, b *model.Booking) error
	DeleteBooking(ctx context.Context, id string) error

	PingContext(ctx context.Context) error
}

// HealthChecker is implemented by optimizers that can report readiness.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps are the collaborators of the HTTP server. Optimizer may be nil, in
// which case schedules are solved by the local preview assigner. Bus, Redis
// and Logger are optional.
type Deps struct {
	Store     Store
	Optimizer assembler.Optimizer
	Bus       *events.Bus
	Redis     *redis.Client
	Calendar  slots.Calendar
	Location  *time.Location
	Now       func() time.Time
	Logger    *zerolog.Logger
}

// ChangePayload is published with staff.changed and booking.changed events.
type ChangePayload struct {
	ID string `json:"id"`
	Op string `json:"op"`
}

type lastSchedule struct {
	date    string
	display assembler.Display
}

// HTTPServer exposes staff and booking CRUD plus schedule solving.
type HTTPServer struct {
	server *http.Server
	apiKey string

	store     Store
	optimizer assembler.Optimizer
	bus       *events.Bus
	redis     *redis.Client
	now       func() time.Time
	log       zerolog.Logger

	mu   sync.RWMutex
	cal  slots.Calendar
	loc  *time.Location
	last *lastSchedule
}

// NewHTTPServer wires routes for cfg.Address.
func NewHTTPServer(cfg config.ServerConfig, deps Deps) *HTTPServer {
	log := zerolog.Nop()
	if deps.Logger != nil {
		log = deps.Logger.With().Str("component", "api").Logger()
	}
	if deps.Calendar.SlotsPerDay() == 0 {
		deps.Calendar = slots.Default()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &HTTPServer{
		apiKey:    cfg.APIKey,
		store:     deps.Store,
		optimizer: deps.Optimizer,
		bus:       deps.Bus,
		redis:     deps.Redis,
		loc:       deps.Location,
		now:       deps.Now,
		log:       log,
		cal:       deps.Calendar,
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/staff/{$}", s.handleListStaff)
	api.HandleFunc("POST /api/v1/staff/{$}", s.handleCreateStaff)
	api.HandleFunc("GET /api/v1/staff/{id}", s.handleGetStaff)
	api.HandleFunc("PUT /api/v1/staff/{id}", s.handleUpdateStaff)
	api.HandleFunc("DELETE /api/v1/staff/{id}", s.handleDeleteStaff)

	api.HandleFunc("GET /api/v1/bookings/{$}", s.handleListBookings)
	api.HandleFunc("POST /api/v1/bookings/{$}", s.handleCreateBooking)
	api.HandleFunc("GET /api/v1/bookings/{id}", s.handleGetBooking)
	api.HandleFunc("PUT /api/v1/bookings/{id}", s.handleUpdateBooking)
	api.HandleFunc("DELETE /api/v1/bookings/{id}", s.handleDeleteBooking)

	api.HandleFunc("POST /api/v1/optimize-schedule/{$}", s.handleOptimize)
	api.HandleFunc("POST /api/v1/preview-schedule/{$}", s.handlePreview)
	api.HandleFunc("GET /api/v1/schedule/export", s.handleExport)
	api.HandleFunc("GET /api/v1/stats", s.handleStats)

	mux := http.NewServeMux()
	mux.Handle("/api/", s.requireAPIKey(api))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the root handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start listens until Shutdown is called.
func (s *HTTPServer) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// SetCalendar swaps the business-day calendar used by later requests.
func (s *HTTPServer) SetCalendar(cal slots.Calendar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cal = cal
}

func (s *HTTPServer) calendar() slots.Calendar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cal
}

// SetLocation swaps the zone request dates are read in. A nil loc is ignored.
func (s *HTTPServer) SetLocation(loc *time.Location) {
	if loc == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loc = loc
}

func (s *HTTPServer) location() *time.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loc
}

func (s *HTTPServer) requireAPIKey(next http.Handler) http.Handler {
	if s.apiKey == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(apiKeyHeader) != s.apiKey {
			writeError(w, http.StatusUnauthorized, "missing or invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) publish(eventType, id, op string) {
	if err := s.bus.PublishJSON(eventType, ChangePayload{ID: id, Op: op}); err != nil {
		s.log.Warn().Err(err).Str("event", eventType).Msg("event handler failed")
	}
}

// writeStoreError maps store errors to status codes.
func (s *HTTPServer) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("store error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
