package model

// Slot свободный для записи интервал, в БД не хранится
type Slot struct {
	Date   Date      `json:"date"`
	Time   ClockTime `json:"time"`
	Doctor string    `json:"doctor"`
}

// SlotKey пара (дата, время) для проверки конфликтов
type SlotKey struct {
	Date Date
	Time ClockTime
}

func (s Slot) Key() SlotKey {
	return SlotKey{Date: s.Date, Time: s.Time}
}

// SlotConfig настройки сетки слотов, неизменяемы после старта
type SlotConfig struct {
	StartHour           int
	EndHour             int
	SlotDurationMinutes int
	DaysAheadDefault    int
	DoctorName          string
}

// DefaultSlotConfig 9:00-17:00, 30 minutes, 5 business days.
func DefaultSlotConfig() SlotConfig {
	return SlotConfig{
		StartHour:           9,
		EndHour:             17,
		SlotDurationMinutes: 30,
		DaysAheadDefault:    5,
		DoctorName:          "Dr. Smith",
	}
}
