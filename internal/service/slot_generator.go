package service

import "github.com/Freeeeeet/appointment_bot/internal/model"

// GenerateSlots строит сетку слотов на daysAhead рабочих дней начиная с from.
// Выходные пропускаются и не учитываются в daysAhead. Слот попадает в сетку,
// только если его конец не позже EndHour:00. При daysAhead <= 0 берётся
// значение из конфига. Некорректный конфиг даёт пустую сетку.
func GenerateSlots(cfg model.SlotConfig, from model.Date, daysAhead int) []model.Slot {
	if daysAhead <= 0 {
		daysAhead = cfg.DaysAheadDefault
	}

	dayStart := model.Clock(cfg.StartHour, 0)
	dayEnd := model.Clock(cfg.EndHour, 0)
	step := cfg.SlotDurationMinutes

	if daysAhead <= 0 || step <= 0 || cfg.StartHour < 0 || cfg.EndHour > 24 || dayEnd <= dayStart {
		return nil
	}

	perDay := (int(dayEnd) - int(dayStart)) / step
	if perDay == 0 {
		return nil
	}

	slots := make([]model.Slot, 0, perDay*daysAhead)
	current := from
	for added := 0; added < daysAhead; current = current.AddDays(1) {
		if !current.IsBusinessDay() {
			continue
		}

		for t := dayStart; int(t)+step <= int(dayEnd); t += model.ClockTime(step) {
			slots = append(slots, model.Slot{
				Date:   current,
				Time:   t,
				Doctor: cfg.DoctorName,
			})
		}
		added++
	}

	return slots
}
