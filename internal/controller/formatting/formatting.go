// Package formatting тексты для сообщений бота.
package formatting

import (
	"fmt"
	"strings"

	"github.com/Freeeeeet/appointment_bot/internal/model"
)

// FormatDate форматирует дату с коротким днём недели: 09.02.2026 (Пн)
func FormatDate(d model.Date) string {
	return fmt.Sprintf("%02d.%02d.%04d (%s)", d.Day, int(d.Month), d.Year, GetWeekdayShortName(int(d.Weekday())))
}

// GetWeekdayShortName возвращает краткое название дня недели на русском
func GetWeekdayShortName(weekday int) string {
	names := []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}
	if weekday >= 0 && weekday < len(names) {
		return names[weekday]
	}
	return "?"
}

// StatusDisplay emoji и текст статуса записи
type StatusDisplay struct {
	Emoji string
	Text  string
}

func GetStatusDisplay(status model.AppointmentStatus) StatusDisplay {
	switch status {
	case model.AppointmentStatusScheduled:
		return StatusDisplay{"✅", "Запланирована"}
	case model.AppointmentStatusCancelled:
		return StatusDisplay{"❌", "Отменена"}
	default:
		return StatusDisplay{"❓", "Неизвестно"}
	}
}

// PluralizeSlots возвращает правильное склонение слова "слот"
func PluralizeSlots(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "слот"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "слота"
	}
	return "слотов"
}

// PluralizeAppointments возвращает правильное склонение слова "запись"
func PluralizeAppointments(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "запись"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "записи"
	}
	return "записей"
}

// FormatSlots группирует слоты по дням
func FormatSlots(slots []model.Slot, total int) string {
	if len(slots) == 0 {
		return "😔 Свободных слотов нет."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🗓 Свободно: %d %s", total, PluralizeSlots(total))
	if total > len(slots) {
		fmt.Fprintf(&sb, " (показаны первые %d)", len(slots))
	}
	sb.WriteString("\n")

	var current model.Date
	for i, slot := range slots {
		if i == 0 || slot.Date != current {
			current = slot.Date
			fmt.Fprintf(&sb, "\n📅 %s, %s\n", FormatDate(slot.Date), slot.Doctor)
		}
		fmt.Fprintf(&sb, "  • %s\n", slot.Time)
	}

	sb.WriteString("\nЗаписаться: /book ГГГГ-ММ-ДД ЧЧ:ММ [причина]")
	return sb.String()
}

// FormatAppointment карточка записи
func FormatAppointment(a *model.Appointment) string {
	display := GetStatusDisplay(a.Status)

	return fmt.Sprintf(
		"%s %s в %s\n"+
			"👤 %s\n"+
			"📝 %s\n"+
			"🆔 %s",
		display.Emoji,
		FormatDate(a.Date),
		a.Time,
		a.PatientName,
		a.Reason,
		a.ID,
	)
}

// FormatAppointments список записей пациента
func FormatAppointments(appointments []*model.Appointment) string {
	if len(appointments) == 0 {
		return "📭 У вас нет активных записей.\n\nПосмотреть свободное время: /slots"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 У вас %d %s:\n", len(appointments), PluralizeAppointments(len(appointments)))
	for _, a := range appointments {
		sb.WriteString("\n")
		sb.WriteString(FormatAppointment(a))
		sb.WriteString("\n")
	}
	sb.WriteString("\nОтменить: /cancel ID\nПеренести: /reschedule ID [ГГГГ-ММ-ДД] [ЧЧ:ММ]")
	return sb.String()
}
