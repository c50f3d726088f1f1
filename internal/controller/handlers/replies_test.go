package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/appointment_bot/internal/agent"
	"github.com/Freeeeeet/appointment_bot/internal/controller/state"
	"github.com/Freeeeeet/appointment_bot/internal/model"
	"github.com/Freeeeeet/appointment_bot/internal/repository"
	"github.com/Freeeeeet/appointment_bot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const chatID int64 = 100

func newTestHandlers(t *testing.T) (*Handlers, *repository.MemoryAppointmentRepository) {
	t.Helper()

	now := time.Date(2026, time.February, 9, 8, 0, 0, 0, time.Local)
	store := repository.NewMemoryAppointmentRepository()
	svc := service.NewBookingService(store, service.BookingConfig{Slots: model.DefaultSlotConfig()}, zap.NewNop()).
		WithClock(func() time.Time { return now })

	return NewHandlers(agent.NewTools(svc, nil, zap.NewNop()), state.NewManager(), zap.NewNop()), store
}

func introduce(t *testing.T, h *Handlers, phone, name string) {
	t.Helper()
	ctx := context.Background()

	h.StartReply(chatID)
	reply, handled := h.TextReply(ctx, chatID, phone)
	require.True(t, handled)
	if name != "" {
		require.Contains(t, reply, "Как вас зовут")
		_, handled = h.TextReply(ctx, chatID, name)
		require.True(t, handled)
	}
}

func TestDialog_NewPatient(t *testing.T) {
	h, _ := newTestHandlers(t)
	ctx := context.Background()

	_, handled := h.TextReply(ctx, chatID, "hello")
	assert.False(t, handled, "text outside a dialog is ignored")

	assert.Equal(t, msgNeedStart, h.BookReply(ctx, chatID, []string{"2026-02-09", "09:00"}))

	introduce(t, h, "+15551234567", "Jane Doe")

	phone, name, ok := h.stateManager.Patient(chatID)
	require.True(t, ok)
	assert.Equal(t, "+15551234567", phone)
	assert.Equal(t, "Jane Doe", name)
	assert.Equal(t, state.StateNone, h.stateManager.GetState(chatID))
}

func TestDialog_ReturningPatient(t *testing.T) {
	h, store := newTestHandlers(t)
	ctx := context.Background()

	store.Seed(model.Appointment{
		PhoneNumber: "+15551234567",
		PatientName: "Jane Doe",
		Date:        model.Date{Year: 2026, Month: time.January, Day: 5},
		Time:        model.Clock(9, 0),
		Status:      model.AppointmentStatusCancelled,
	})

	h.StartReply(chatID)
	reply, handled := h.TextReply(ctx, chatID, "+15551234567")
	require.True(t, handled)
	assert.Contains(t, reply, "С возвращением, Jane Doe")

	_, _, ok := h.stateManager.Patient(chatID)
	assert.True(t, ok)
}

func TestBookAndManage(t *testing.T) {
	h, store := newTestHandlers(t)
	ctx := context.Background()
	introduce(t, h, "+15551234567", "Jane Doe")

	reply := h.BookReply(ctx, chatID, []string{"2026-02-09", "09:00", "Sore", "throat"})
	assert.Contains(t, reply, "Вы записаны")
	assert.Contains(t, reply, "Sore throat")
	require.Equal(t, 1, store.Len())

	reply = h.BookReply(ctx, chatID, []string{"2026-02-09", "09:00"})
	assert.Equal(t, "❌ Slot on 2026-02-09 at 09:00 is already booked. Please choose another time.", reply)

	list, err := store.ListScheduledByPhone(ctx, "+15551234567")
	require.NoError(t, err)
	id := list[0].ID.String()

	reply = h.MyAppointmentsReply(ctx, chatID)
	assert.Contains(t, reply, id)

	reply = h.RescheduleReply(ctx, chatID, []string{id, "11:30", "2026-02-10"})
	assert.Contains(t, reply, "Запись перенесена")
	assert.Contains(t, reply, "10.02.2026 (Вт) в 11:30")

	reply = h.RescheduleReply(ctx, chatID, []string{id})
	assert.Equal(t, "❌ No changes specified", reply)

	reply = h.CancelReply(ctx, chatID, []string{id})
	assert.Contains(t, reply, "Запись отменена")

	reply = h.CancelReply(ctx, chatID, []string{id})
	assert.Equal(t, "❌ Appointment not found or already cancelled", reply)

	reply = h.MyAppointmentsReply(ctx, chatID)
	assert.Contains(t, reply, "нет активных записей")
}

func TestSlotsReply(t *testing.T) {
	h, _ := newTestHandlers(t)
	ctx := context.Background()

	reply := h.SlotsReply(ctx, chatID, nil)
	assert.True(t, strings.HasPrefix(reply, "🗓 Свободно: 80 слотов (показаны первые 10)"), reply)
	assert.Contains(t, reply, "09.02.2026 (Пн), Dr. Smith")

	reply = h.SlotsReply(ctx, chatID, []string{"2026-02-14"})
	assert.Equal(t, "😔 Свободных слотов нет.", reply)

	reply = h.SlotsReply(ctx, chatID, []string{"soon"})
	assert.True(t, strings.HasPrefix(reply, "❌ preferred_date"), reply)
}

func TestEndReplyClearsChat(t *testing.T) {
	h, _ := newTestHandlers(t)
	ctx := context.Background()
	introduce(t, h, "+15551234567", "Jane Doe")

	reply := h.EndReply(ctx, chatID, []string{"Booked", "Monday"})
	assert.Contains(t, reply, "Разговор завершён")

	_, _, ok := h.stateManager.Patient(chatID)
	assert.False(t, ok)
}

type unavailableTools struct {
	Tools
}

func (unavailableTools) FetchSlots(context.Context, string) (any, error) {
	return nil, errors.New("fetch_slots: store timeout")
}

func TestToolFailureShowsUnavailable(t *testing.T) {
	h := NewHandlers(unavailableTools{}, state.NewManager(), zap.NewNop())

	assert.Equal(t, msgUnavailable, h.SlotsReply(context.Background(), chatID, nil))
}

func TestCommandArgs(t *testing.T) {
	assert.Equal(t, []string{"2026-02-09", "09:00"}, commandArgs("/book  2026-02-09 09:00"))
	assert.Empty(t, commandArgs("/myappointments"))
	assert.Nil(t, commandArgs(""))
}
