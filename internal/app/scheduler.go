package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/appointment_bot/internal/events"
	"github.com/Freeeeeet/appointment_bot/internal/model"
	"go.uber.org/zap"
)

// AvailabilitySource источник свободных слотов
type AvailabilitySource interface {
	ListAvailableSlots(ctx context.Context, preferred *model.Date) ([]model.Slot, error)
}

// Scheduler периодически публикует сводку свободных слотов в топик availability
type Scheduler struct {
	source    AvailabilitySource
	publisher events.Publisher
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
	stopChan  chan struct{}
	stopOnce  sync.Once
}

// NewScheduler создаёт новый планировщик
func NewScheduler(source AvailabilitySource, publisher events.Publisher, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		source:    source,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
}

// Start запускает фоновую задачу. При interval <= 0 ничего не делает
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Availability report disabled")
		return
	}

	s.logger.Info("Starting availability reporter", zap.Duration("interval", s.interval))
	go s.runAvailabilityTask(ctx)
}

// Stop останавливает фоновую задачу
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping availability reporter")
		close(s.stopChan)
	})
}

func (s *Scheduler) runAvailabilityTask(ctx context.Context) {
	// Первый отчёт сразу при старте
	s.ReportOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.ReportOnce(ctx)
		case <-s.stopChan:
			s.logger.Info("Availability task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Availability task cancelled")
			return
		}
	}
}

// ReportOnce строит и публикует одну сводку
func (s *Scheduler) ReportOnce(ctx context.Context) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		s.logger.Error("Failed to build availability snapshot", zap.Error(err))
		return
	}

	if err := s.publisher.Publish(ctx, model.TopicAvailability, snapshot); err != nil {
		s.logger.Warn("Failed to publish availability snapshot", zap.Error(err))
		return
	}

	s.logger.Debug("Availability snapshot published", zap.Int("total_available", snapshot.TotalAvailable))
}

// Snapshot считает свободные слоты по дням
func (s *Scheduler) Snapshot(ctx context.Context) (model.AvailabilitySnapshot, error) {
	slots, err := s.source.ListAvailableSlots(ctx, nil)
	if err != nil {
		return model.AvailabilitySnapshot{}, err
	}

	byDate := make(map[string]int)
	for _, slot := range slots {
		byDate[slot.Date.String()]++
	}

	return model.AvailabilitySnapshot{
		TotalAvailable: len(slots),
		ByDate:         byDate,
		GeneratedAt:    s.now().UTC().Format(time.RFC3339),
	}, nil
}
