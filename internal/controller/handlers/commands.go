package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, h.StartReply(update.Message.Chat.ID))
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleSlots обрабатывает команду /slots
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleCommand(ctx, b, update, func(chatID int64, args []string) string {
		return h.SlotsReply(ctx, chatID, args)
	})
}

// HandleBook обрабатывает команду /book
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleCommand(ctx, b, update, func(chatID int64, args []string) string {
		return h.BookReply(ctx, chatID, args)
	})
}

// HandleMyAppointments обрабатывает команду /myappointments
func (h *Handlers) HandleMyAppointments(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleCommand(ctx, b, update, func(chatID int64, _ []string) string {
		return h.MyAppointmentsReply(ctx, chatID)
	})
}

// HandleCancel обрабатывает команду /cancel
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleCommand(ctx, b, update, func(chatID int64, args []string) string {
		return h.CancelReply(ctx, chatID, args)
	})
}

// HandleReschedule обрабатывает команду /reschedule
func (h *Handlers) HandleReschedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleCommand(ctx, b, update, func(chatID int64, args []string) string {
		return h.RescheduleReply(ctx, chatID, args)
	})
}

// HandleEnd обрабатывает команду /end
func (h *Handlers) HandleEnd(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handleCommand(ctx, b, update, func(chatID int64, args []string) string {
		return h.EndReply(ctx, chatID, args)
	})
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от шага диалога
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	chatID := update.Message.Chat.ID
	reply, handled := h.TextReply(ctx, chatID, update.Message.Text)
	if !handled {
		h.logger.Debug("No active dialog, ignoring message", zap.Int64("chat_id", chatID))
		return
	}

	h.sendMessage(ctx, b, chatID, reply)
}

func (h *Handlers) handleCommand(ctx context.Context, b *bot.Bot, update *models.Update, reply func(chatID int64, args []string) string) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	h.logger.Debug("Command received",
		zap.Int64("chat_id", chatID),
		zap.String("text", update.Message.Text),
	)

	h.sendMessage(ctx, b, chatID, reply(chatID, commandArgs(update.Message.Text)))
}
