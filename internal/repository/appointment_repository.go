package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/appointment_bot/internal/model"
	"github.com/Freeeeeet/appointment_bot/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const appointmentColumns = `id, phone_number, patient_name, appointment_date, appointment_time, reason, status, created_at`

type AppointmentRepository struct {
	*base.Repository
}

func NewAppointmentRepository(db base.DBConn) *AppointmentRepository {
	return &AppointmentRepository{Repository: base.NewRepository(db)}
}

// FindLatestByPhone возвращает последнюю созданную запись с этим телефоном (любой статус)
func (r *AppointmentRepository) FindLatestByPhone(ctx context.Context, phone string) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE phone_number = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	appointment, err := scanAppointment(r.QueryRow(ctx, query, phone))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find appointment by phone: %w", err)
	}

	return appointment, nil
}

// ListScheduledFrom возвращает занятые слоты начиная с даты from
func (r *AppointmentRepository) ListScheduledFrom(ctx context.Context, from model.Date) ([]model.SlotKey, error) {
	query := `
		SELECT appointment_date, appointment_time
		FROM appointments
		WHERE status = 'scheduled'
		  AND appointment_date >= $1
	`

	rows, err := r.Query(ctx, query, pgDate(from))
	if err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}
	defer rows.Close()

	var keys []model.SlotKey
	for rows.Next() {
		var d pgtype.Date
		var t pgtype.Time
		if err := rows.Scan(&d, &t); err != nil {
			return nil, fmt.Errorf("scan booked slot: %w", err)
		}
		keys = append(keys, model.SlotKey{Date: dateFromPg(d), Time: clockFromPg(t)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}

	return keys, nil
}

// FindScheduledAt ищет активную запись на слот, кроме excludeID
func (r *AppointmentRepository) FindScheduledAt(ctx context.Context, key model.SlotKey, excludeID uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE appointment_date = $1
		  AND appointment_time = $2
		  AND status = 'scheduled'
		  AND id <> $3
		LIMIT 1
	`

	appointment, err := scanAppointment(r.QueryRow(ctx, query, pgDate(key.Date), pgClock(key.Time), excludeID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find scheduled appointment: %w", err)
	}

	return appointment, nil
}

// Insert создаёт запись. Нарушение уникального индекса слота - ErrSlotConflict
func (r *AppointmentRepository) Insert(ctx context.Context, appointment *model.Appointment) error {
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	if appointment.Status == "" {
		appointment.Status = model.AppointmentStatusScheduled
	}

	query := `
		INSERT INTO appointments (id, phone_number, patient_name, appointment_date, appointment_time, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.QueryRow(
		ctx, query,
		appointment.ID,
		appointment.PhoneNumber,
		appointment.PatientName,
		pgDate(appointment.Date),
		pgClock(appointment.Time),
		appointment.Reason,
		appointment.Status,
	).Scan(&appointment.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create appointment: %w", model.ErrSlotConflict)
		}
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

// GetByID получает запись по ID (любой статус)
func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE id = $1
	`

	appointment, err := scanAppointment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return appointment, nil
}

// ListScheduledByPhone получает активные записи пациента по возрастанию даты
func (r *AppointmentRepository) ListScheduledByPhone(ctx context.Context, phone string) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE phone_number = $1
		  AND status = 'scheduled'
		ORDER BY appointment_date, appointment_time
	`

	rows, err := r.Query(ctx, query, phone)
	if err != nil {
		return nil, fmt.Errorf("get appointments by phone: %w", err)
	}
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get appointments by phone: %w", err)
	}

	return appointments, nil
}

// CancelScheduled отменяет только активную запись. nil - не найдена или уже отменена
func (r *AppointmentRepository) CancelScheduled(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'scheduled'
		RETURNING ` + appointmentColumns

	appointment, err := scanAppointment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	return appointment, nil
}

// UpdateScheduled переносит активную запись, меняя только переданные поля.
// nil - не найдена или уже отменена
func (r *AppointmentRepository) UpdateScheduled(ctx context.Context, id uuid.UUID, patch model.AppointmentPatch) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET appointment_date = COALESCE($2, appointment_date),
		    appointment_time = COALESCE($3, appointment_time)
		WHERE id = $1 AND status = 'scheduled'
		RETURNING ` + appointmentColumns

	newDate := pgtype.Date{}
	if patch.Date != nil {
		newDate = pgDate(*patch.Date)
	}
	newTime := pgtype.Time{}
	if patch.Time != nil {
		newTime = pgClock(*patch.Time)
	}

	appointment, err := scanAppointment(r.QueryRow(ctx, query, id, newDate, newTime))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		if base.IsUniqueViolation(err) {
			return nil, fmt.Errorf("update appointment: %w", model.ErrSlotConflict)
		}
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	return appointment, nil
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	var d pgtype.Date
	var t pgtype.Time

	err := row.Scan(
		&a.ID,
		&a.PhoneNumber,
		&a.PatientName,
		&d,
		&t,
		&a.Reason,
		&a.Status,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Date = dateFromPg(d)
	a.Time = clockFromPg(t)
	return &a, nil
}

func pgDate(d model.Date) pgtype.Date {
	return pgtype.Date{Time: time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC), Valid: true}
}

func dateFromPg(d pgtype.Date) model.Date {
	return model.DateOf(d.Time)
}

func pgClock(c model.ClockTime) pgtype.Time {
	return pgtype.Time{Microseconds: int64(c) * int64(time.Minute/time.Microsecond), Valid: true}
}

// clockFromPg отбрасывает секунды и доли секунд
func clockFromPg(t pgtype.Time) model.ClockTime {
	return model.ClockTime(t.Microseconds / int64(time.Minute/time.Microsecond))
}
