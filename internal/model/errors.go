package model

import "errors"

// Доменные ошибки, их текст передаётся собеседнику
var (
	ErrNotFound           = errors.New("not found")
	ErrSlotConflict       = errors.New("slot already booked")
	ErrNoChangesRequested = errors.New("no changes requested")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrAlreadyCancelled is indistinguishable from ErrNotFound after a
	// conditional update matched zero rows.
	ErrAlreadyCancelled = ErrNotFound
)

// ErrStoreTimeout хранилище не ответило вовремя, операцию можно повторить
var ErrStoreTimeout = errors.New("store timeout")

// BookingError доменный отказ с человекочитаемым сообщением
type BookingError struct {
	Kind    error
	Message string
}

func (e *BookingError) Error() string {
	return e.Message
}

func (e *BookingError) Unwrap() error {
	return e.Kind
}

func NewBookingError(kind error, message string) *BookingError {
	return &BookingError{Kind: kind, Message: message}
}

// IsDomainError отличает доменный отказ от сбоя инфраструктуры
func IsDomainError(err error) bool {
	var be *BookingError
	return errors.As(err, &be)
}
