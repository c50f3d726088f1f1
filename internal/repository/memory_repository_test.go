package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/appointment_bot/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduled(phone string, date model.Date, clock model.ClockTime) *model.Appointment {
	return &model.Appointment{
		PhoneNumber: phone,
		PatientName: "Jane Doe",
		Date:        date,
		Time:        clock,
		Reason:      "Checkup",
	}
}

func TestMemory_InsertEnforcesSlotUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAppointmentRepository()

	first := scheduled("+1", testDate, testClock)
	require.NoError(t, repo.Insert(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, model.AppointmentStatusScheduled, first.Status)

	err := repo.Insert(ctx, scheduled("+2", testDate, testClock))
	assert.ErrorIs(t, err, model.ErrSlotConflict)
	assert.Equal(t, 1, repo.Len())

	_, err = repo.CancelScheduled(ctx, first.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, scheduled("+2", testDate, testClock)))
	assert.Equal(t, 2, repo.Len())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAppointmentRepository()

	a := scheduled("+1", testDate, testClock)
	require.NoError(t, repo.Insert(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	got.PatientName = "Mutated"

	again, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", again.PatientName)
}

func TestMemory_FindLatestByPhone(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAppointmentRepository()

	repo.Seed(model.Appointment{PhoneNumber: "+1", PatientName: "Old Name", Date: testDate, Time: testClock,
		Status: model.AppointmentStatusCancelled, CreatedAt: testCreated})
	repo.Seed(model.Appointment{PhoneNumber: "+1", PatientName: "New Name", Date: testDate, Time: model.Clock(10, 0),
		Status: model.AppointmentStatusScheduled, CreatedAt: testCreated.Add(time.Hour)})

	latest, err := repo.FindLatestByPhone(ctx, "+1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", latest.PatientName)

	none, err := repo.FindLatestByPhone(ctx, "+2")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMemory_UpdateScheduled(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAppointmentRepository()

	mine := scheduled("+1", testDate, testClock)
	other := scheduled("+2", testDate, model.Clock(10, 0))
	require.NoError(t, repo.Insert(ctx, mine))
	require.NoError(t, repo.Insert(ctx, other))

	taken := model.Clock(10, 0)
	_, err := repo.UpdateScheduled(ctx, mine.ID, model.AppointmentPatch{Time: &taken})
	assert.ErrorIs(t, err, model.ErrSlotConflict)

	free := model.Clock(11, 0)
	updated, err := repo.UpdateScheduled(ctx, mine.ID, model.AppointmentPatch{Time: &free})
	require.NoError(t, err)
	assert.Equal(t, free, updated.Time)
	assert.Equal(t, testDate, updated.Date)

	missing, err := repo.UpdateScheduled(ctx, uuid.New(), model.AppointmentPatch{Time: &free})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemory_ListScheduled(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAppointmentRepository()

	past := scheduled("+1", testDate.AddDays(-7), testClock)
	later := scheduled("+1", testDate.AddDays(1), testClock)
	early := scheduled("+1", testDate, model.Clock(8, 0))
	for _, a := range []*model.Appointment{past, later, early} {
		require.NoError(t, repo.Insert(ctx, a))
	}

	keys, err := repo.ListScheduledFrom(ctx, testDate)
	require.NoError(t, err)
	assert.ElementsMatch(t, []model.SlotKey{later.SlotKey(), early.SlotKey()}, keys)

	list, err := repo.ListScheduledByPhone(ctx, "+1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, past.ID, list[0].ID)
	assert.Equal(t, early.ID, list[1].ID)
	assert.Equal(t, later.ID, list[2].ID)
}

func TestMemory_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewMemoryAppointmentRepository()
	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Ping(ctx), context.Canceled)
}
