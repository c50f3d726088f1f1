package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

const (
	msgUnavailable = "❌ Сервис записи временно недоступен. Попробуйте позже."
	msgNeedStart   = "👋 Сначала представьтесь: /start"
)

// requirePatient возвращает телефон и имя, если знакомство завершено
func (h *Handlers) requirePatient(chatID int64) (phone, name string, reply string, ok bool) {
	phone, name, ok = h.stateManager.Patient(chatID)
	if !ok {
		return "", "", msgNeedStart, false
	}
	return phone, name, "", true
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// toolFailed логирует сбой инструмента и возвращает текст для пользователя
func (h *Handlers) toolFailed(chatID int64, tool string, err error) string {
	h.logger.Error("Tool failed",
		zap.Int64("chat_id", chatID),
		zap.String("tool", tool),
		zap.Error(err),
	)
	return msgUnavailable
}
