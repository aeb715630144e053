package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hey-show123/beauty-scheduler/internal/metrics"
	"github.com/hey-show123/beauty-scheduler/internal/model"
)

const bookingColumns = `id, customer, services, scheduled_start, status, assigned_staff_id, notes, created_at, updated_at`

// ListBookings returns all bookings ordered by scheduled start.
func (db *DB) ListBookings(ctx context.Context) ([]model.Booking, error) {
	return db.queryBookings(ctx, "list", `SELECT `+bookingColumns+` FROM bookings ORDER BY scheduled_start, id`)
}

// ListBookingsOn returns the bookings starting on date's calendar day in
// date's location.
func (db *DB) ListBookingsOn(ctx context.Context, date time.Time) ([]model.Booking, error) {
	y, m, d := date.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	to := from.AddDate(0, 0, 1)

	return db.queryBookings(ctx, "list_day",
		`SELECT `+bookingColumns+` FROM bookings WHERE scheduled_start >= ? AND scheduled_start < ? ORDER BY scheduled_start, id`,
		from.UTC().Format(timeLayout), to.UTC().Format(timeLayout))
}

func (db *DB) queryBookings(ctx context.Context, op, query string, args ...any) (out []model.Booking, err error) {
	defer func() { metrics.IncStoreOp("booking", op, err) }()

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	defer rows.Close()

	loc := db.location()
	out = []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		b.ScheduledStart = b.ScheduledStart.In(loc)
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetBooking returns one booking or ErrNotFound.
func (db *DB) GetBooking(ctx context.Context, id string) (b model.Booking, err error) {
	defer func() { metrics.IncStoreOp("booking", "get", err) }()

	row := db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err = scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, notFound("booking", id)
	}
	b.ScheduledStart = b.ScheduledStart.In(db.location())
	return b, err
}

// CreateBooking validates b, assigns an id when empty and inserts it.
// New bookings default to scheduled status and NORMAL priority.
func (db *DB) CreateBooking(ctx context.Context, b *model.Booking) (err error) {
	defer func() { metrics.IncStoreOp("booking", "create", err) }()

	if b.Status == "" {
		b.Status = model.StatusScheduled
	}
	if b.Customer.Priority == "" {
		b.Customer.Priority = model.PriorityNormal
	}
	if err := b.Validate(); err != nil {
		return invalid(err)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Customer.ID == "" {
		b.Customer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	customer, services, err := encodeBookingJSON(b)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO bookings (`+bookingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, customer, services, b.ScheduledStart.UTC().Format(timeLayout), string(b.Status),
		nullString(b.AssignedStaffID), b.Notes,
		b.CreatedAt.Format(timeLayout), b.UpdatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting booking: %w", err)
	}
	db.logger.Info().Str("booking_id", b.ID).Time("start", b.ScheduledStart).Msg("booking created")
	return nil
}

// UpdateBooking replaces the stored booking with b.
func (db *DB) UpdateBooking(ctx context.Context, b *model.Booking) (err error) {
	defer func() { metrics.IncStoreOp("booking", "update", err) }()

	if err := b.Validate(); err != nil {
		return invalid(err)
	}
	existing, err := db.GetBooking(ctx, b.ID)
	if err != nil {
		return err
	}
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = time.Now().UTC()

	customer, services, err := encodeBookingJSON(b)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE bookings SET customer = ?, services = ?, scheduled_start = ?, status = ?,
		assigned_staff_id = ?, notes = ?, updated_at = ? WHERE id = ?`,
		customer, services, b.ScheduledStart.UTC().Format(timeLayout), string(b.Status),
		nullString(b.AssignedStaffID), b.Notes, b.UpdatedAt.Format(timeLayout), b.ID)
	if err != nil {
		return fmt.Errorf("updating booking: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("booking", b.ID)
	}
	return nil
}

// DeleteBooking removes a booking.
func (db *DB) DeleteBooking(ctx context.Context, id string) (err error) {
	defer func() { metrics.IncStoreOp("booking", "delete", err) }()

	res, err := db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting booking: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("booking", id)
	}
	db.logger.Info().Str("booking_id", id).Msg("booking deleted")
	return nil
}

func encodeBookingJSON(b *model.Booking) (customer, services string, err error) {
	c := b.Customer
	c.PreferredStaffIDs = nonNil(c.PreferredStaffIDs)
	if customer, err = encodeJSON(c); err != nil {
		return "", "", fmt.Errorf("encoding customer: %w", err)
	}
	if services, err = encodeJSON(nonNil(b.Services)); err != nil {
		return "", "", fmt.Errorf("encoding services: %w", err)
	}
	return customer, services, nil
}

func scanBooking(row rowScanner) (model.Booking, error) {
	var (
		b                       model.Booking
		customer, services      string
		start, created, updated string
		status                  string
		assigned                sql.NullString
	)
	err := row.Scan(&b.ID, &customer, &services, &start, &status, &assigned, &b.Notes, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return b, err
		}
		return b, fmt.Errorf("scanning booking: %w", err)
	}
	if err := json.Unmarshal([]byte(customer), &b.Customer); err != nil {
		return b, fmt.Errorf("decoding customer of %s: %w", b.ID, err)
	}
	if err := json.Unmarshal([]byte(services), &b.Services); err != nil {
		return b, fmt.Errorf("decoding services of %s: %w", b.ID, err)
	}
	b.ScheduledStart = parseTime(start)
	b.Status = model.BookingStatus(status)
	b.AssignedStaffID = assigned.String
	b.CreatedAt = parseTime(created)
	b.UpdatedAt = parseTime(updated)
	return b, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
