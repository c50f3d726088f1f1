// Package events доставляет события о ходе работы инструментов подписчикам:
// браузеру по websocket, шине RabbitMQ и в лог. Доставка best-effort.
package events

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Publisher публикует событие в топик
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// Multi рассылает событие всем publisher'ам, ошибки объединяет
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, topic string, payload any) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, topic, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher пишет события в лог на уровне Debug
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, topic string, payload any) error {
	p.logger.Debug("Event published",
		zap.String("topic", topic),
		zap.Any("payload", payload),
	)
	return nil
}
