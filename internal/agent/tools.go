// Package agent инструменты, которые вызывает разговорный агент.
// Доменные отказы возвращаются как {"success": false, "error": ...},
// сбои хранилища - как ошибка Go.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/appointment_bot/internal/events"
	"github.com/Freeeeeet/appointment_bot/internal/model"
	"github.com/Freeeeeet/appointment_bot/internal/service"
	"go.uber.org/zap"
)

// Имена инструментов
const (
	ToolIdentifyUser         = "identify_user"
	ToolFetchSlots           = "fetch_slots"
	ToolBookAppointment      = "book_appointment"
	ToolRetrieveAppointments = "retrieve_appointments"
	ToolCancelAppointment    = "cancel_appointment"
	ToolModifyAppointment    = "modify_appointment"
	ToolEndConversation      = "end_conversation"
)

// fetchSlotsLimit сколько слотов отдавать агенту за раз
const fetchSlotsLimit = 10

var (
	ErrUnknownTool  = errors.New("unknown tool")
	ErrBadArguments = errors.New("bad tool arguments")
)

// Booking операции записи, которые нужны инструментам
type Booking interface {
	IdentifyPatient(ctx context.Context, phone string) (*model.Identity, error)
	ListAvailableSlots(ctx context.Context, preferred *model.Date) ([]model.Slot, error)
	Book(ctx context.Context, req service.BookRequest) (*model.Appointment, error)
	ListAppointments(ctx context.Context, phone string) ([]*model.Appointment, error)
	Cancel(ctx context.Context, appointmentID string) (*model.Appointment, error)
	Modify(ctx context.Context, appointmentID string, newDate *model.Date, newTime *model.ClockTime) (*model.Appointment, error)
}

// Failure доменный отказ, который агент пересказывает собеседнику
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type SlotsResult struct {
	Slots          []model.Slot `json:"slots"`
	TotalAvailable int          `json:"total_available"`
}

type BookResult struct {
	Success     bool               `json:"success"`
	Appointment *model.Appointment `json:"appointment"`
}

type AppointmentsResult struct {
	Appointments []*model.Appointment `json:"appointments"`
	Count        int                  `json:"count"`
}

type CancelResult struct {
	Success   bool               `json:"success"`
	Cancelled *model.Appointment `json:"cancelled"`
}

type ModifyResult struct {
	Success bool               `json:"success"`
	Updated *model.Appointment `json:"updated"`
}

type EndResult struct {
	Message string `json:"message"`
	Summary string `json:"summary"`
}

// Arguments аргументы всех инструментов, как их присылает агент
type Arguments struct {
	PhoneNumber     string `json:"phone_number"`
	PatientName     string `json:"patient_name"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Reason          string `json:"reason"`
	PreferredDate   string `json:"preferred_date"`
	AppointmentID   string `json:"appointment_id"`
	NewDate         string `json:"new_date"`
	NewTime         string `json:"new_time"`
	Summary         string `json:"summary"`
}

type Tools struct {
	booking   Booking
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewTools(booking Booking, publisher events.Publisher, logger *zap.Logger) *Tools {
	return &Tools{
		booking:   booking,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Names список инструментов в порядке сценария разговора
func Names() []string {
	return []string{
		ToolIdentifyUser,
		ToolFetchSlots,
		ToolBookAppointment,
		ToolRetrieveAppointments,
		ToolCancelAppointment,
		ToolModifyAppointment,
		ToolEndConversation,
	}
}

// Call вызывает инструмент по имени с JSON-аргументами
func (t *Tools) Call(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	var args Arguments
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadArguments, err)
		}
	}

	switch name {
	case ToolIdentifyUser:
		return t.IdentifyUser(ctx, args.PhoneNumber)
	case ToolFetchSlots:
		return t.FetchSlots(ctx, args.PreferredDate)
	case ToolBookAppointment:
		return t.BookAppointment(ctx, args)
	case ToolRetrieveAppointments:
		return t.RetrieveAppointments(ctx, args.PhoneNumber)
	case ToolCancelAppointment:
		return t.CancelAppointment(ctx, args.AppointmentID)
	case ToolModifyAppointment:
		return t.ModifyAppointment(ctx, args.AppointmentID, args.NewDate, args.NewTime)
	case ToolEndConversation:
		return t.EndConversation(ctx, args.Summary)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

// IdentifyUser ищет пациента по номеру телефона
func (t *Tools) IdentifyUser(ctx context.Context, phone string) (any, error) {
	args := map[string]any{"phone_number": phone}

	return t.run(ctx, ToolIdentifyUser, args, func() (any, error) {
		return t.booking.IdentifyPatient(ctx, phone)
	})
}

// FetchSlots свободные слоты, опционально на одну дату
func (t *Tools) FetchSlots(ctx context.Context, preferredDate string) (any, error) {
	args := map[string]any{"preferred_date": preferredDate}

	return t.run(ctx, ToolFetchSlots, args, func() (any, error) {
		preferred, err := optionalDate("preferred_date", preferredDate)
		if err != nil {
			return nil, err
		}

		slots, err := t.booking.ListAvailableSlots(ctx, preferred)
		if err != nil {
			return nil, err
		}

		shown := slots
		if len(shown) > fetchSlotsLimit {
			shown = shown[:fetchSlotsLimit]
		}
		return SlotsResult{Slots: shown, TotalAvailable: len(slots)}, nil
	})
}

// BookAppointment записывает пациента на слот
func (t *Tools) BookAppointment(ctx context.Context, in Arguments) (any, error) {
	args := map[string]any{
		"phone_number":     in.PhoneNumber,
		"patient_name":     in.PatientName,
		"appointment_date": in.AppointmentDate,
		"appointment_time": in.AppointmentTime,
		"reason":           in.Reason,
	}

	return t.run(ctx, ToolBookAppointment, args, func() (any, error) {
		if err := required("phone_number", in.PhoneNumber); err != nil {
			return nil, err
		}
		if err := required("patient_name", in.PatientName); err != nil {
			return nil, err
		}

		date, err := model.ParseDate(in.AppointmentDate)
		if err != nil {
			return nil, model.NewBookingError(model.ErrInvalidInput, err.Error())
		}
		clock, err := model.ParseClock(in.AppointmentTime)
		if err != nil {
			return nil, model.NewBookingError(model.ErrInvalidInput, err.Error())
		}

		appointment, err := t.booking.Book(ctx, service.BookRequest{
			PhoneNumber: in.PhoneNumber,
			PatientName: in.PatientName,
			Date:        date,
			Time:        clock,
			Reason:      in.Reason,
		})
		if err != nil {
			return nil, err
		}
		return BookResult{Success: true, Appointment: appointment}, nil
	})
}

// RetrieveAppointments активные записи пациента
func (t *Tools) RetrieveAppointments(ctx context.Context, phone string) (any, error) {
	args := map[string]any{"phone_number": phone}

	return t.run(ctx, ToolRetrieveAppointments, args, func() (any, error) {
		appointments, err := t.booking.ListAppointments(ctx, phone)
		if err != nil {
			return nil, err
		}
		return AppointmentsResult{Appointments: appointments, Count: len(appointments)}, nil
	})
}

// CancelAppointment отменяет запись
func (t *Tools) CancelAppointment(ctx context.Context, appointmentID string) (any, error) {
	args := map[string]any{"appointment_id": appointmentID}

	return t.run(ctx, ToolCancelAppointment, args, func() (any, error) {
		cancelled, err := t.booking.Cancel(ctx, appointmentID)
		if err != nil {
			return nil, err
		}
		return CancelResult{Success: true, Cancelled: cancelled}, nil
	})
}

// ModifyAppointment переносит запись. Пустая строка - поле не меняется
func (t *Tools) ModifyAppointment(ctx context.Context, appointmentID, newDate, newTime string) (any, error) {
	args := map[string]any{
		"appointment_id": appointmentID,
		"new_date":       newDate,
		"new_time":       newTime,
	}

	return t.run(ctx, ToolModifyAppointment, args, func() (any, error) {
		date, err := optionalDate("new_date", newDate)
		if err != nil {
			return nil, err
		}
		clock, err := optionalClock("new_time", newTime)
		if err != nil {
			return nil, err
		}

		updated, err := t.booking.Modify(ctx, appointmentID, date, clock)
		if err != nil {
			return nil, err
		}
		return ModifyResult{Success: true, Updated: updated}, nil
	})
}

// EndConversation завершает разговор и публикует итог звонка
func (t *Tools) EndConversation(ctx context.Context, summary string) (any, error) {
	args := map[string]any{"summary": summary}

	return t.run(ctx, ToolEndConversation, args, func() (any, error) {
		t.publish(ctx, model.TopicCallSummary, model.CallSummary{Summary: summary})
		return EndResult{Message: "Conversation ended", Summary: summary}, nil
	})
}

// run публикует started/completed вокруг вызова и превращает доменный отказ в Failure
func (t *Tools) run(ctx context.Context, name string, args map[string]any, fn func() (any, error)) (any, error) {
	t.publish(ctx, model.TopicToolCall, model.NewToolCallEvent(name, model.ToolCallStarted, args, nil, t.now()))

	result, err := fn()
	if err != nil {
		if !model.IsDomainError(err) {
			t.logger.Error("Tool call failed",
				zap.String("tool", name),
				zap.Error(err),
			)
			t.publish(ctx, model.TopicToolCall, model.NewToolCallEvent(name, model.ToolCallError, args,
				map[string]any{"error": err.Error()}, t.now()))
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		t.logger.Info("Tool call rejected",
			zap.String("tool", name),
			zap.String("reason", err.Error()),
		)
		result = Failure{Success: false, Error: err.Error()}
	}

	t.publish(ctx, model.TopicToolCall, model.NewToolCallEvent(name, model.ToolCallCompleted, args, result, t.now()))
	return result, nil
}

// publish best-effort: ошибка только логируется
func (t *Tools) publish(ctx context.Context, topic string, payload any) {
	if t.publisher == nil {
		return
	}
	if err := t.publisher.Publish(ctx, topic, payload); err != nil {
		t.logger.Warn("Failed to publish event",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return model.NewBookingError(model.ErrInvalidInput, name+" is required")
	}
	return nil
}

func optionalDate(name, value string) (*model.Date, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return nil, model.NewBookingError(model.ErrInvalidInput, fmt.Sprintf("%s: %v", name, err))
	}
	return &d, nil
}

func optionalClock(name, value string) (*model.ClockTime, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	c, err := model.ParseClock(value)
	if err != nil {
		return nil, model.NewBookingError(model.ErrInvalidInput, fmt.Sprintf("%s: %v", name, err))
	}
	return &c, nil
}
