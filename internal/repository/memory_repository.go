package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/appointment_bot/internal/model"
	"github.com/google/uuid"
)

// MemoryAppointmentRepository хранит записи в памяти процесса.
// Соблюдает тот же инвариант, что и уникальный индекс в Postgres:
// не больше одной активной записи на слот.
type MemoryAppointmentRepository struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*model.Appointment
	now          func() time.Time
}

func NewMemoryAppointmentRepository() *MemoryAppointmentRepository {
	return &MemoryAppointmentRepository{
		appointments: make(map[uuid.UUID]*model.Appointment),
		now:          time.Now,
	}
}

// Seed кладёт запись как есть, для тестов и локального запуска
func (r *MemoryAppointmentRepository) Seed(appointment model.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := appointment
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.now()
	}
	r.appointments[a.ID] = &a
}

// Len количество записей в любом статусе
func (r *MemoryAppointmentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.appointments)
}

func (r *MemoryAppointmentRepository) FindLatestByPhone(ctx context.Context, phone string) (*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.Appointment
	for _, a := range r.appointments {
		if a.PhoneNumber != phone {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}

	return clone(latest), nil
}

func (r *MemoryAppointmentRepository) ListScheduledFrom(ctx context.Context, from model.Date) ([]model.SlotKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []model.SlotKey
	for _, a := range r.appointments {
		if a.Status == model.AppointmentStatusScheduled && !a.Date.Before(from) {
			keys = append(keys, a.SlotKey())
		}
	}

	return keys, nil
}

func (r *MemoryAppointmentRepository) FindScheduledAt(ctx context.Context, key model.SlotKey, excludeID uuid.UUID) (*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return clone(r.scheduledAtLocked(key, excludeID)), nil
}

func (r *MemoryAppointmentRepository) Insert(ctx context.Context, appointment *model.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusScheduled
	}

	if appointment.Status == model.AppointmentStatusScheduled && r.scheduledAtLocked(appointment.SlotKey(), uuid.Nil) != nil {
		return fmt.Errorf("create appointment: %w", model.ErrSlotConflict)
	}

	appointment.CreatedAt = r.now()
	stored := *appointment
	r.appointments[stored.ID] = &stored

	return nil
}

func (r *MemoryAppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return clone(r.appointments[id]), nil
}

func (r *MemoryAppointmentRepository) ListScheduledByPhone(ctx context.Context, phone string) ([]*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Appointment
	for _, a := range r.appointments {
		if a.PhoneNumber == phone && a.Status == model.AppointmentStatusScheduled {
			result = append(result, clone(a))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Time < result[j].Time
	})

	return result, nil
}

func (r *MemoryAppointmentRepository) CancelScheduled(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok || a.Status != model.AppointmentStatusScheduled {
		return nil, nil
	}

	a.Status = model.AppointmentStatusCancelled
	return clone(a), nil
}

func (r *MemoryAppointmentRepository) UpdateScheduled(ctx context.Context, id uuid.UUID, patch model.AppointmentPatch) (*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok || a.Status != model.AppointmentStatusScheduled {
		return nil, nil
	}

	target := a.SlotKey()
	if patch.Date != nil {
		target.Date = *patch.Date
	}
	if patch.Time != nil {
		target.Time = *patch.Time
	}

	if r.scheduledAtLocked(target, id) != nil {
		return nil, fmt.Errorf("update appointment: %w", model.ErrSlotConflict)
	}

	a.Date = target.Date
	a.Time = target.Time
	return clone(a), nil
}

func (r *MemoryAppointmentRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryAppointmentRepository) scheduledAtLocked(key model.SlotKey, excludeID uuid.UUID) *model.Appointment {
	for id, a := range r.appointments {
		if id == excludeID || a.Status != model.AppointmentStatusScheduled {
			continue
		}
		if a.SlotKey() == key {
			return a
		}
	}
	return nil
}

func clone(a *model.Appointment) *model.Appointment {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
