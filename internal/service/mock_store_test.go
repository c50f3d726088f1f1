package service_test

import (
	"context"

	"github.com/Freeeeeet/appointment_bot/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockAppointmentStore struct {
	mock.Mock
}

func (m *MockAppointmentStore) FindLatestByPhone(ctx context.Context, phone string) (*model.Appointment, error) {
	args := m.Called(ctx, phone)
	a, _ := args.Get(0).(*model.Appointment)
	return a, args.Error(1)
}

func (m *MockAppointmentStore) ListScheduledFrom(ctx context.Context, from model.Date) ([]model.SlotKey, error) {
	args := m.Called(ctx, from)
	keys, _ := args.Get(0).([]model.SlotKey)
	return keys, args.Error(1)
}

func (m *MockAppointmentStore) FindScheduledAt(ctx context.Context, key model.SlotKey, excludeID uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, key, excludeID)
	a, _ := args.Get(0).(*model.Appointment)
	return a, args.Error(1)
}

func (m *MockAppointmentStore) Insert(ctx context.Context, appointment *model.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*model.Appointment)
	return a, args.Error(1)
}

func (m *MockAppointmentStore) ListScheduledByPhone(ctx context.Context, phone string) ([]*model.Appointment, error) {
	args := m.Called(ctx, phone)
	list, _ := args.Get(0).([]*model.Appointment)
	return list, args.Error(1)
}

func (m *MockAppointmentStore) CancelScheduled(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*model.Appointment)
	return a, args.Error(1)
}

func (m *MockAppointmentStore) UpdateScheduled(ctx context.Context, id uuid.UUID, patch model.AppointmentPatch) (*model.Appointment, error) {
	args := m.Called(ctx, id, patch)
	a, _ := args.Get(0).(*model.Appointment)
	return a, args.Error(1)
}
