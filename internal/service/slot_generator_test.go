package service_test

import (
	"testing"
	"time"

	"github.com/Freeeeeet/appointment_bot/internal/model"
	"github.com/Freeeeeet/appointment_bot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = model.Date{Year: 2026, Month: time.February, Day: 9}

func TestGenerateSlots_DefaultDay(t *testing.T) {
	slots := service.GenerateSlots(model.DefaultSlotConfig(), monday, 1)

	require.Len(t, slots, 16)
	assert.Equal(t, model.Clock(9, 0), slots[0].Time)
	assert.Equal(t, model.Clock(16, 30), slots[15].Time)
	for _, slot := range slots {
		assert.Equal(t, monday, slot.Date)
		assert.Equal(t, "Dr. Smith", slot.Doctor)
	}
}

func TestGenerateSlots_DefaultDaysAhead(t *testing.T) {
	slots := service.GenerateSlots(model.DefaultSlotConfig(), monday, 0)

	// пн-пт, 16 слотов в день
	require.Len(t, slots, 80)
	assert.Equal(t, monday, slots[0].Date)
	assert.Equal(t, monday.AddDays(4), slots[79].Date)
}

func TestGenerateSlots_SkipsWeekend(t *testing.T) {
	saturday := monday.AddDays(5)

	slots := service.GenerateSlots(model.DefaultSlotConfig(), saturday, 1)

	require.NotEmpty(t, slots)
	assert.Equal(t, monday.AddDays(7), slots[0].Date)
	assert.Equal(t, time.Monday, slots[0].Date.Weekday())
}

func TestGenerateSlots_DistinctBusinessDates(t *testing.T) {
	thursday := monday.AddDays(3)

	slots := service.GenerateSlots(model.DefaultSlotConfig(), thursday, 4)

	var dates []model.Date
	seen := make(map[model.Date]bool)
	for _, slot := range slots {
		assert.True(t, slot.Date.IsBusinessDay(), slot.Date.String())
		if !seen[slot.Date] {
			seen[slot.Date] = true
			dates = append(dates, slot.Date)
		}
	}

	assert.Equal(t, []model.Date{thursday, thursday.AddDays(1), thursday.AddDays(4), thursday.AddDays(5)}, dates)
}

func TestGenerateSlots_StepAndBounds(t *testing.T) {
	cfg := model.SlotConfig{StartHour: 8, EndHour: 10, SlotDurationMinutes: 45, DaysAheadDefault: 1, DoctorName: "Dr. Who"}

	slots := service.GenerateSlots(cfg, monday, 1)

	// 08:00, 08:45; 09:30 не помещается до 10:00
	require.Len(t, slots, 2)
	assert.Equal(t, model.Clock(8, 0), slots[0].Time)
	assert.Equal(t, model.Clock(8, 45), slots[1].Time)
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, model.ClockTime(45), slots[i].Time-slots[i-1].Time)
	}
}

func TestGenerateSlots_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  model.SlotConfig
	}{
		{"zero duration", model.SlotConfig{StartHour: 9, EndHour: 17, SlotDurationMinutes: 0, DaysAheadDefault: 5}},
		{"end before start", model.SlotConfig{StartHour: 17, EndHour: 9, SlotDurationMinutes: 30, DaysAheadDefault: 5}},
		{"empty day", model.SlotConfig{StartHour: 9, EndHour: 9, SlotDurationMinutes: 30, DaysAheadDefault: 5}},
		{"slot longer than day", model.SlotConfig{StartHour: 9, EndHour: 10, SlotDurationMinutes: 90, DaysAheadDefault: 5}},
		{"no days", model.SlotConfig{StartHour: 9, EndHour: 17, SlotDurationMinutes: 30, DaysAheadDefault: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, service.GenerateSlots(tt.cfg, monday, 0))
		})
	}
}
