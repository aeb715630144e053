package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hey-show123/beauty-scheduler/internal/config"
	"github.com/hey-show123/beauty-scheduler/internal/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleStaff(name string) *model.Staff {
	return &model.Staff{
		Name: name,
		Skills: []model.Skill{
			{ServiceType: model.ServiceCut, Level: model.LevelExpert, YearsExperience: 8},
		},
		Availability: []model.Availability{
			{DayOfWeek: 0, StartTime: "09:00", EndTime: "18:00", IsPreferred: true},
		},
		HourlyRate: 3000,
	}
}

func sampleBooking(start time.Time) *model.Booking {
	return &model.Booking{
		Customer: model.Customer{Name: "Hanako", Phone: "090-0000-0000", PreferredStaffIDs: []string{"x"}},
		Services: []model.Service{
			{ServiceType: model.ServiceCut, DurationMinutes: 60, RequiredSkillLevel: model.LevelIntermediate, Price: 5000},
		},
		ScheduledStart: start,
	}
}

func TestStaffCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	s := sampleStaff("Yui")
	require.NoError(t, db.CreateStaff(ctx, s))
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 8, s.MaxHoursPerDay)
	assert.Equal(t, 40, s.MaxHoursPerWeek)

	got, err := db.GetStaff(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Yui", got.Name)
	assert.Equal(t, s.Skills, got.Skills)
	assert.Equal(t, s.Availability, got.Availability)
	assert.True(t, got.CreatedAt.Equal(s.CreatedAt))

	got.Name = "Yui K."
	got.MaxHoursPerDay = 6
	require.NoError(t, db.UpdateStaff(ctx, &got))

	list, err := db.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Yui K.", list[0].Name)
	assert.Equal(t, 6, list[0].MaxHoursPerDay)

	require.NoError(t, db.DeleteStaff(ctx, s.ID))
	_, err = db.GetStaff(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.DeleteStaff(ctx, s.ID), ErrNotFound)
}

func TestStaff_ValidationAndMissing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	bad := sampleStaff("")
	assert.ErrorIs(t, db.CreateStaff(ctx, bad), ErrInvalid)

	ghost := sampleStaff("Ghost")
	ghost.ID = "nope"
	ghost.MaxHoursPerDay = 8
	assert.ErrorIs(t, db.UpdateStaff(ctx, ghost), ErrNotFound)

	list, err := db.ListStaff(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestBookingCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	jst := time.FixedZone("JST", 9*3600)
	db.UseLocation(jst)

	b := sampleBooking(time.Date(2026, 3, 9, 10, 0, 0, 0, jst))
	require.NoError(t, db.CreateBooking(ctx, b))
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, model.StatusScheduled, b.Status)
	assert.Equal(t, model.PriorityNormal, b.Customer.Priority)

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.ScheduledStart.Equal(b.ScheduledStart))
	assert.Equal(t, 10, got.ScheduledStart.Hour())
	assert.Equal(t, b.Services, got.Services)
	assert.Equal(t, []string{"x"}, got.Customer.PreferredStaffIDs)

	got.Status = model.StatusConfirmed
	got.AssignedStaffID = "staff-1"
	require.NoError(t, db.UpdateBooking(ctx, &got))

	again, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, again.Status)
	assert.Equal(t, "staff-1", again.AssignedStaffID)

	require.NoError(t, db.DeleteBooking(ctx, b.ID))
	_, err = db.GetBooking(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUseLocation_AppliesToLaterReads(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	b := sampleBooking(time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC))
	require.NoError(t, db.CreateBooking(ctx, b))

	got, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.ScheduledStart.Location())
	assert.Equal(t, 1, got.ScheduledStart.Hour())

	jst := time.FixedZone("JST", 9*3600)
	db.UseLocation(jst)
	db.UseLocation(nil)

	got, err = db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.ScheduledStart.Hour())

	list, err := db.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, jst, list[0].ScheduledStart.Location())
}

func TestBooking_Invalid(t *testing.T) {
	db := newTestDB(t)
	b := sampleBooking(time.Now())
	b.Services = nil
	assert.ErrorIs(t, db.CreateBooking(context.Background(), b), ErrInvalid)
}

func TestListBookings_OrderAndDay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	for _, start := range []time.Time{
		day.Add(15 * time.Hour),
		day.Add(-2 * time.Hour),
		day.Add(9 * time.Hour),
		day.Add(26 * time.Hour),
	} {
		require.NoError(t, db.CreateBooking(ctx, sampleBooking(start)))
	}

	all, err := db.ListBookings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].ScheduledStart.Before(all[i].ScheduledStart))
	}

	on, err := db.ListBookingsOn(ctx, day.Add(12*time.Hour))
	require.NoError(t, err)
	require.Len(t, on, 2)
	assert.Equal(t, 9, on[0].ScheduledStart.Hour())
	assert.Equal(t, 15, on[1].ScheduledStart.Hour())
}

func TestBackupAndCleanup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.CreateStaff(ctx, sampleStaff("Mio")))

	dir := filepath.Join(t.TempDir(), "backups")
	path, err := db.Backup(ctx, dir)
	require.NoError(t, err)

	logger := zerolog.New(io.Discard)
	restored, err := Open(path, &logger)
	require.NoError(t, err)
	defer restored.Close()
	list, err := restored.ListStaff(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mio", list[0].Name)

	old := filepath.Join(dir, "backup_old.db")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	stale := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(old, stale, stale))
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(other, stale, stale))

	removed, err := CleanupBackups(dir, 7, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, old)
	assert.FileExists(t, other)
	assert.FileExists(t, path)

	removed, err = CleanupBackups(dir, 0, time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestBackupService_RunOnce(t *testing.T) {
	db := newTestDB(t)
	logger := zerolog.New(io.Discard)
	dir := t.TempDir()

	svc := NewBackupService(db, config.BackupConfig{Enabled: true, StoragePath: dir, RetentionDays: 7}, &logger)
	svc.RunOnce(context.Background())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
