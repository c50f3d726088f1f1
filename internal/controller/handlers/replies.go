package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/appointment_bot/internal/agent"
	"github.com/Freeeeeet/appointment_bot/internal/controller/formatting"
	"github.com/Freeeeeet/appointment_bot/internal/controller/state"
	"github.com/Freeeeeet/appointment_bot/internal/model"
)

const helpText = "📚 Справка по командам:\n\n" +
	"/start - Представиться по номеру телефона\n" +
	"/slots [ГГГГ-ММ-ДД] - Свободное время\n" +
	"/book ГГГГ-ММ-ДД ЧЧ:ММ [причина] - Записаться\n" +
	"/myappointments - Мои записи\n" +
	"/cancel ID - Отменить запись\n" +
	"/reschedule ID [ГГГГ-ММ-ДД] [ЧЧ:ММ] - Перенести запись\n" +
	"/end [итог] - Завершить разговор\n" +
	"/help - Показать эту справку"

// StartReply начинает знакомство заново
func (h *Handlers) StartReply(chatID int64) string {
	h.stateManager.ClearState(chatID)
	h.stateManager.SetState(chatID, state.StateAwaitingPhone)

	return "👋 Здравствуйте! Это запись на приём к врачу.\n\n" +
		"📱 Отправьте ваш номер телефона."
}

// TextReply обрабатывает свободный текст по шагу диалога. false - текст не ожидался
func (h *Handlers) TextReply(ctx context.Context, chatID int64, text string) (string, bool) {
	text = strings.TrimSpace(text)

	switch h.stateManager.GetState(chatID) {
	case state.StateAwaitingPhone:
		return h.phoneReply(ctx, chatID, text), true
	case state.StateAwaitingName:
		return h.nameReply(chatID, text), true
	default:
		return "", false
	}
}

func (h *Handlers) phoneReply(ctx context.Context, chatID int64, phone string) string {
	if phone == "" {
		return "📱 Номер телефона не может быть пустым. Попробуйте ещё раз."
	}

	result, err := h.tools.IdentifyUser(ctx, phone)
	if err != nil {
		return h.toolFailed(chatID, agent.ToolIdentifyUser, err)
	}

	identity, ok := result.(*model.Identity)
	if !ok {
		return failureText(result)
	}

	h.stateManager.SetData(chatID, state.KeyPhone, identity.PhoneNumber)
	if identity.Found {
		h.stateManager.SetData(chatID, state.KeyName, identity.Name)
		h.stateManager.SetState(chatID, state.StateNone)
		return fmt.Sprintf("✅ С возвращением, %s!\n\n%s", identity.Name, helpText)
	}

	h.stateManager.SetState(chatID, state.StateAwaitingName)
	return "🆕 Мы вас ещё не знаем. Как вас зовут?"
}

func (h *Handlers) nameReply(chatID int64, name string) string {
	if name == "" {
		return "✍️ Имя не может быть пустым. Как вас зовут?"
	}

	h.stateManager.SetData(chatID, state.KeyName, name)
	h.stateManager.SetState(chatID, state.StateNone)
	return fmt.Sprintf("✅ Приятно познакомиться, %s!\n\n%s", name, helpText)
}

// SlotsReply /slots [date]
func (h *Handlers) SlotsReply(ctx context.Context, chatID int64, args []string) string {
	preferred := ""
	if len(args) > 0 {
		preferred = args[0]
	}

	result, err := h.tools.FetchSlots(ctx, preferred)
	if err != nil {
		return h.toolFailed(chatID, agent.ToolFetchSlots, err)
	}

	slots, ok := result.(agent.SlotsResult)
	if !ok {
		return failureText(result)
	}
	return formatting.FormatSlots(slots.Slots, slots.TotalAvailable)
}

// BookReply /book DATE TIME [reason]
func (h *Handlers) BookReply(ctx context.Context, chatID int64, args []string) string {
	phone, name, reply, ok := h.requirePatient(chatID)
	if !ok {
		return reply
	}
	if len(args) < 2 {
		return "ℹ️ Формат: /book ГГГГ-ММ-ДД ЧЧ:ММ [причина]"
	}

	result, err := h.tools.BookAppointment(ctx, agent.Arguments{
		PhoneNumber:     phone,
		PatientName:     name,
		AppointmentDate: args[0],
		AppointmentTime: args[1],
		Reason:          strings.Join(args[2:], " "),
	})
	if err != nil {
		return h.toolFailed(chatID, agent.ToolBookAppointment, err)
	}

	booked, ok := result.(agent.BookResult)
	if !ok {
		return failureText(result)
	}
	return "🎉 Вы записаны!\n\n" + formatting.FormatAppointment(booked.Appointment)
}

// MyAppointmentsReply /myappointments
func (h *Handlers) MyAppointmentsReply(ctx context.Context, chatID int64) string {
	phone, _, reply, ok := h.requirePatient(chatID)
	if !ok {
		return reply
	}

	result, err := h.tools.RetrieveAppointments(ctx, phone)
	if err != nil {
		return h.toolFailed(chatID, agent.ToolRetrieveAppointments, err)
	}

	list, ok := result.(agent.AppointmentsResult)
	if !ok {
		return failureText(result)
	}
	return formatting.FormatAppointments(list.Appointments)
}

// CancelReply /cancel ID
func (h *Handlers) CancelReply(ctx context.Context, chatID int64, args []string) string {
	if _, _, reply, ok := h.requirePatient(chatID); !ok {
		return reply
	}
	if len(args) != 1 {
		return "ℹ️ Формат: /cancel ID\n\nID записи есть в /myappointments"
	}

	result, err := h.tools.CancelAppointment(ctx, args[0])
	if err != nil {
		return h.toolFailed(chatID, agent.ToolCancelAppointment, err)
	}

	cancelled, ok := result.(agent.CancelResult)
	if !ok {
		return failureText(result)
	}
	return "🗑 Запись отменена.\n\n" + formatting.FormatAppointment(cancelled.Cancelled)
}

// RescheduleReply /reschedule ID [DATE] [TIME]. Аргумент с двоеточием считается временем
func (h *Handlers) RescheduleReply(ctx context.Context, chatID int64, args []string) string {
	if _, _, reply, ok := h.requirePatient(chatID); !ok {
		return reply
	}
	if len(args) < 1 || len(args) > 3 {
		return "ℹ️ Формат: /reschedule ID [ГГГГ-ММ-ДД] [ЧЧ:ММ]"
	}

	var newDate, newTime string
	for _, arg := range args[1:] {
		if strings.Contains(arg, ":") {
			newTime = arg
		} else {
			newDate = arg
		}
	}

	result, err := h.tools.ModifyAppointment(ctx, args[0], newDate, newTime)
	if err != nil {
		return h.toolFailed(chatID, agent.ToolModifyAppointment, err)
	}

	updated, ok := result.(agent.ModifyResult)
	if !ok {
		return failureText(result)
	}
	return "🔄 Запись перенесена.\n\n" + formatting.FormatAppointment(updated.Updated)
}

// EndReply /end [summary] публикует итог и забывает чат
func (h *Handlers) EndReply(ctx context.Context, chatID int64, args []string) string {
	summary := strings.Join(args, " ")
	if summary == "" {
		summary = "Telegram conversation ended by patient"
	}

	if _, err := h.tools.EndConversation(ctx, summary); err != nil {
		return h.toolFailed(chatID, agent.ToolEndConversation, err)
	}

	h.stateManager.ClearState(chatID)
	return "👋 Спасибо! Разговор завершён. Чтобы начать снова: /start"
}

func failureText(result any) string {
	if f, ok := result.(agent.Failure); ok {
		return "❌ " + f.Error
	}
	return msgUnavailable
}

// commandArgs аргументы команды без самой команды
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}
