package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// DefaultReason подставляется, если причина визита не указана
const DefaultReason = "General checkup"

type Appointment struct {
	ID          uuid.UUID         `json:"id"`
	PhoneNumber string            `json:"phone_number"`
	PatientName string            `json:"patient_name"`
	Date        Date              `json:"appointment_date"`
	Time        ClockTime         `json:"appointment_time"`
	Reason      string            `json:"reason"`
	Status      AppointmentStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (a *Appointment) SlotKey() SlotKey {
	return SlotKey{Date: a.Date, Time: a.Time}
}

// AppointmentPatch поля для переноса записи, nil - не менять
type AppointmentPatch struct {
	Date *Date
	Time *ClockTime
}

func (p AppointmentPatch) IsEmpty() bool {
	return p.Date == nil && p.Time == nil
}

// Identity результат поиска пациента по номеру телефона
type Identity struct {
	Found       bool   `json:"found"`
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phone"`
}
