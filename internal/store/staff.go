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

const staffColumns = `id, name, skills, availability, hourly_rate, max_hours_per_day, max_hours_per_week, created_at, updated_at`

// ListStaff returns all staff ordered by name.
func (db *DB) ListStaff(ctx context.Context) (out []model.Staff, err error) {
	defer func() { metrics.IncStoreOp("staff", "list", err) }()

	rows, err := db.QueryContext(ctx, `SELECT `+staffColumns+` FROM staff ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing staff: %w", err)
	}
	defer rows.Close()

	out = []model.Staff{}
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetStaff returns one staff member or ErrNotFound.
func (db *DB) GetStaff(ctx context.Context, id string) (s model.Staff, err error) {
	defer func() { metrics.IncStoreOp("staff", "get", err) }()

	row := db.QueryRowContext(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = ?`, id)
	s, err = scanStaff(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Staff{}, notFound("staff", id)
	}
	return s, err
}

// CreateStaff validates s, assigns an id when empty and inserts it.
func (db *DB) CreateStaff(ctx context.Context, s *model.Staff) (err error) {
	defer func() { metrics.IncStoreOp("staff", "create", err) }()

	if s.MaxHoursPerDay == 0 {
		s.MaxHoursPerDay = 8
	}
	if s.MaxHoursPerWeek == 0 {
		s.MaxHoursPerWeek = 40
	}
	if err := s.Validate(); err != nil {
		return invalid(err)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now

	skills, availability, err := encodeStaffJSON(s)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO staff (`+staffColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, skills, availability, s.HourlyRate, s.MaxHoursPerDay, s.MaxHoursPerWeek,
		s.CreatedAt.Format(timeLayout), s.UpdatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting staff: %w", err)
	}
	db.logger.Info().Str("staff_id", s.ID).Str("name", s.Name).Msg("staff created")
	return nil
}

// UpdateStaff replaces the stored staff member with s.
func (db *DB) UpdateStaff(ctx context.Context, s *model.Staff) (err error) {
	defer func() { metrics.IncStoreOp("staff", "update", err) }()

	if err := s.Validate(); err != nil {
		return invalid(err)
	}
	existing, err := db.GetStaff(ctx, s.ID)
	if err != nil {
		return err
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = time.Now().UTC()

	skills, availability, err := encodeStaffJSON(s)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE staff SET name = ?, skills = ?, availability = ?, hourly_rate = ?,
		max_hours_per_day = ?, max_hours_per_week = ?, updated_at = ? WHERE id = ?`,
		s.Name, skills, availability, s.HourlyRate, s.MaxHoursPerDay, s.MaxHoursPerWeek,
		s.UpdatedAt.Format(timeLayout), s.ID)
	if err != nil {
		return fmt.Errorf("updating staff: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("staff", s.ID)
	}
	return nil
}

// DeleteStaff removes a staff member.
func (db *DB) DeleteStaff(ctx context.Context, id string) (err error) {
	defer func() { metrics.IncStoreOp("staff", "delete", err) }()

	res, err := db.ExecContext(ctx, `DELETE FROM staff WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting staff: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("staff", id)
	}
	db.logger.Info().Str("staff_id", id).Msg("staff deleted")
	return nil
}

func encodeStaffJSON(s *model.Staff) (skills, availability string, err error) {
	if skills, err = encodeJSON(nonNil(s.Skills)); err != nil {
		return "", "", fmt.Errorf("encoding skills: %w", err)
	}
	if availability, err = encodeJSON(nonNil(s.Availability)); err != nil {
		return "", "", fmt.Errorf("encoding availability: %w", err)
	}
	return skills, availability, nil
}

func scanStaff(row rowScanner) (model.Staff, error) {
	var (
		s                    model.Staff
		skills, availability string
		created, updated     string
	)
	err := row.Scan(&s.ID, &s.Name, &skills, &availability, &s.HourlyRate,
		&s.MaxHoursPerDay, &s.MaxHoursPerWeek, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, err
		}
		return s, fmt.Errorf("scanning staff: %w", err)
	}
	if err := json.Unmarshal([]byte(skills), &s.Skills); err != nil {
		return s, fmt.Errorf("decoding skills of %s: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(availability), &s.Availability); err != nil {
		return s, fmt.Errorf("decoding availability of %s: %w", s.ID, err)
	}
	s.CreatedAt = parseTime(created)
	s.UpdatedAt = parseTime(updated)
	return s, nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
