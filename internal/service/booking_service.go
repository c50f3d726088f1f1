package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/appointment_bot/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AppointmentStore хранилище записей, которым пользуется BookingService.
// Реализации: repository.AppointmentRepository (Postgres) и
// repository.MemoryAppointmentRepository.
type AppointmentStore interface {
	FindLatestByPhone(ctx context.Context, phone string) (*model.Appointment, error)
	ListScheduledFrom(ctx context.Context, from model.Date) ([]model.SlotKey, error)
	FindScheduledAt(ctx context.Context, key model.SlotKey, excludeID uuid.UUID) (*model.Appointment, error)
	Insert(ctx context.Context, appointment *model.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	ListScheduledByPhone(ctx context.Context, phone string) ([]*model.Appointment, error)
	CancelScheduled(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	UpdateScheduled(ctx context.Context, id uuid.UUID, patch model.AppointmentPatch) (*model.Appointment, error)
}

// BookingConfig настройки сервиса записи
type BookingConfig struct {
	Slots         model.SlotConfig
	DefaultReason string
	StoreTimeout  time.Duration
}

// BookRequest данные новой записи
type BookRequest struct {
	PhoneNumber string
	PatientName string
	Date        model.Date
	Time        model.ClockTime
	Reason      string
}

// BookingService запись к врачу: поиск слотов, запись, отмена, перенос.
// Состояния между вызовами не хранит.
type BookingService struct {
	store  AppointmentStore
	cfg    BookingConfig
	now    func() time.Time
	logger *zap.Logger
}

func NewBookingService(store AppointmentStore, cfg BookingConfig, logger *zap.Logger) *BookingService {
	if cfg.DefaultReason == "" {
		cfg.DefaultReason = model.DefaultReason
	}

	return &BookingService{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock подменяет источник текущего времени
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// SlotConfig возвращает конфигурацию сетки
func (s *BookingService) SlotConfig() model.SlotConfig {
	return s.cfg.Slots
}

// Today текущая дата в локальной зоне
func (s *BookingService) Today() model.Date {
	return model.DateOf(s.now())
}

// IdentifyPatient ищет пациента по телефону среди всех его записей
func (s *BookingService) IdentifyPatient(ctx context.Context, phone string) (*model.Identity, error) {
	phone = strings.TrimSpace(phone)

	callCtx, cancel := s.storeContext(ctx)
	defer cancel()

	latest, err := s.store.FindLatestByPhone(callCtx, phone)
	if err != nil {
		return nil, storeError("identify patient", err)
	}

	if latest == nil {
		s.logger.Info("Patient not found", zap.String("phone", phone))
		return &model.Identity{Found: false, PhoneNumber: phone}, nil
	}

	return &model.Identity{Found: true, Name: latest.PatientName, PhoneNumber: phone}, nil
}

// ListAvailableSlots возвращает свободные слоты от сегодняшнего дня.
// preferred ограничивает выдачу одной датой.
func (s *BookingService) ListAvailableSlots(ctx context.Context, preferred *model.Date) ([]model.Slot, error) {
	today := s.Today()
	lattice := GenerateSlots(s.cfg.Slots, today, 0)

	callCtx, cancel := s.storeContext(ctx)
	defer cancel()

	booked, err := s.store.ListScheduledFrom(callCtx, today)
	if err != nil {
		return nil, storeError("list booked slots", err)
	}

	conflicts := make(map[model.SlotKey]struct{}, len(booked))
	for _, key := range booked {
		conflicts[key] = struct{}{}
	}

	available := make([]model.Slot, 0, len(lattice))
	for _, slot := range lattice {
		if _, taken := conflicts[slot.Key()]; taken {
			continue
		}
		if preferred != nil && slot.Date != *preferred {
			continue
		}
		available = append(available, slot)
	}

	s.logger.Debug("Available slots listed",
		zap.String("from", today.String()),
		zap.Int("lattice", len(lattice)),
		zap.Int("booked", len(booked)),
		zap.Int("available", len(available)),
	)

	return available, nil
}

// Book записывает пациента на слот
func (s *BookingService) Book(ctx context.Context, req BookRequest) (*model.Appointment, error) {
	key := model.SlotKey{Date: req.Date, Time: req.Time}
	if !req.Time.Valid() {
		return nil, model.NewBookingError(model.ErrInvalidInput, fmt.Sprintf("Invalid appointment time %s", req.Time))
	}

	// Быстрая проверка. Окончательное решение за уникальным индексом хранилища.
	existing, err := s.findScheduledAt(ctx, key, uuid.Nil)
	if err != nil {
		return nil, storeError("check slot", err)
	}
	if existing != nil {
		s.logger.Info("Slot already booked",
			zap.String("date", req.Date.String()),
			zap.String("time", req.Time.String()),
		)
		return nil, slotTakenError(key, true)
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = s.cfg.DefaultReason
	}

	appointment := &model.Appointment{
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		PatientName: strings.TrimSpace(req.PatientName),
		Date:        req.Date,
		Time:        req.Time,
		Reason:      reason,
		Status:      model.AppointmentStatusScheduled,
	}

	callCtx, cancel := s.storeContext(ctx)
	defer cancel()

	if err := s.store.Insert(callCtx, appointment); err != nil {
		if errors.Is(err, model.ErrSlotConflict) {
			s.logger.Warn("Slot taken concurrently",
				zap.String("date", req.Date.String()),
				zap.String("time", req.Time.String()),
			)
			return nil, slotTakenError(key, true)
		}
		return nil, storeError("create appointment", err)
	}

	s.logger.Info("Appointment booked",
		zap.String("appointment_id", appointment.ID.String()),
		zap.String("phone", appointment.PhoneNumber),
		zap.String("date", appointment.Date.String()),
		zap.String("time", appointment.Time.String()),
	)

	return appointment, nil
}

// ListAppointments получает активные записи пациента по возрастанию даты
func (s *BookingService) ListAppointments(ctx context.Context, phone string) ([]*model.Appointment, error) {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()

	appointments, err := s.store.ListScheduledByPhone(callCtx, strings.TrimSpace(phone))
	if err != nil {
		return nil, storeError("list appointments", err)
	}

	if appointments == nil {
		appointments = []*model.Appointment{}
	}
	return appointments, nil
}

// Cancel отменяет активную запись. Повторная отмена даёт ту же ошибку,
// что и несуществующая запись.
func (s *BookingService) Cancel(ctx context.Context, appointmentID string) (*model.Appointment, error) {
	id, err := uuid.Parse(strings.TrimSpace(appointmentID))
	if err != nil {
		return nil, notFoundOrCancelledError()
	}

	callCtx, cancel := s.storeContext(ctx)
	defer cancel()

	cancelled, err := s.store.CancelScheduled(callCtx, id)
	if err != nil {
		return nil, storeError("cancel appointment", err)
	}
	if cancelled == nil {
		s.logger.Info("Nothing to cancel", zap.String("appointment_id", id.String()))
		return nil, notFoundOrCancelledError()
	}

	s.logger.Info("Appointment cancelled",
		zap.String("appointment_id", id.String()),
		zap.String("date", cancelled.Date.String()),
		zap.String("time", cancelled.Time.String()),
	)

	return cancelled, nil
}

// Modify переносит запись на другую дату и/или время.
// Не переданное поле остаётся прежним.
func (s *BookingService) Modify(ctx context.Context, appointmentID string, newDate *model.Date, newTime *model.ClockTime) (*model.Appointment, error) {
	patch := model.AppointmentPatch{Date: newDate, Time: newTime}
	if patch.IsEmpty() {
		return nil, model.NewBookingError(model.ErrNoChangesRequested, "No changes specified")
	}
	if newTime != nil && !newTime.Valid() {
		return nil, model.NewBookingError(model.ErrInvalidInput, fmt.Sprintf("Invalid appointment time %s", *newTime))
	}

	id, err := uuid.Parse(strings.TrimSpace(appointmentID))
	if err != nil {
		return nil, model.NewBookingError(model.ErrNotFound, "Appointment not found")
	}

	current, err := s.getByID(ctx, id)
	if err != nil {
		return nil, storeError("get appointment", err)
	}
	if current == nil {
		return nil, model.NewBookingError(model.ErrNotFound, "Appointment not found")
	}

	target := current.SlotKey()
	if newDate != nil {
		target.Date = *newDate
	}
	if newTime != nil {
		target.Time = *newTime
	}

	// Сама запись в проверке не участвует: перенос на свой же слот допустим
	other, err := s.findScheduledAt(ctx, target, id)
	if err != nil {
		return nil, storeError("check slot", err)
	}
	if other != nil {
		s.logger.Info("Reschedule target already booked",
			zap.String("appointment_id", id.String()),
			zap.String("date", target.Date.String()),
			zap.String("time", target.Time.String()),
		)
		return nil, slotTakenError(target, false)
	}

	callCtx, cancel := s.storeContext(ctx)
	defer cancel()

	updated, err := s.store.UpdateScheduled(callCtx, id, patch)
	if err != nil {
		if errors.Is(err, model.ErrSlotConflict) {
			return nil, slotTakenError(target, false)
		}
		return nil, storeError("update appointment", err)
	}
	if updated == nil {
		return nil, notFoundOrCancelledError()
	}

	s.logger.Info("Appointment rescheduled",
		zap.String("appointment_id", id.String()),
		zap.String("from_date", current.Date.String()),
		zap.String("from_time", current.Time.String()),
		zap.String("date", updated.Date.String()),
		zap.String("time", updated.Time.String()),
	)

	return updated, nil
}

func (s *BookingService) findScheduledAt(ctx context.Context, key model.SlotKey, excludeID uuid.UUID) (*model.Appointment, error) {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.store.FindScheduledAt(callCtx, key, excludeID)
}

func (s *BookingService) getByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.store.GetByID(callCtx, id)
}

// storeContext ограничивает один вызов хранилища по времени
func (s *BookingService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.StoreTimeout)
}

func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, model.ErrStoreTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func slotTakenError(key model.SlotKey, suggestOther bool) *model.BookingError {
	msg := fmt.Sprintf("Slot on %s at %s is already booked.", key.Date, key.Time)
	if suggestOther {
		msg += " Please choose another time."
	}
	return model.NewBookingError(model.ErrSlotConflict, msg)
}

func notFoundOrCancelledError() *model.BookingError {
	return model.NewBookingError(model.ErrAlreadyCancelled, "Appointment not found or already cancelled")
}
