package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/appointment_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSource struct {
	slots []model.Slot
	err   error
}

func (s staticSource) ListAvailableSlots(context.Context, *model.Date) ([]model.Slot, error) {
	return s.slots, s.err
}

type capturePublisher struct {
	mu        sync.Mutex
	snapshots []model.AvailabilitySnapshot
}

func (p *capturePublisher) Publish(_ context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if topic == model.TopicAvailability {
		p.snapshots = append(p.snapshots, payload.(model.AvailabilitySnapshot))
	}
	return nil
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snapshots)
}

func testSlots() []model.Slot {
	monday := model.Date{Year: 2026, Month: time.February, Day: 9}
	return []model.Slot{
		{Date: monday, Time: model.Clock(9, 0)},
		{Date: monday, Time: model.Clock(9, 30)},
		{Date: monday.AddDays(1), Time: model.Clock(9, 0)},
	}
}

func TestScheduler_Snapshot(t *testing.T) {
	s := NewScheduler(staticSource{slots: testSlots()}, &capturePublisher{}, time.Minute, zap.NewNop())

	snapshot, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.TotalAvailable)
	assert.Equal(t, map[string]int{"2026-02-09": 2, "2026-02-10": 1}, snapshot.ByDate)
	assert.NotEmpty(t, snapshot.GeneratedAt)
}

func TestScheduler_ReportOnceSkipsOnError(t *testing.T) {
	pub := &capturePublisher{}
	s := NewScheduler(staticSource{err: errors.New("db down")}, pub, time.Minute, zap.NewNop())

	s.ReportOnce(context.Background())
	assert.Equal(t, 0, pub.count())
}

func TestScheduler_StartStop(t *testing.T) {
	pub := &capturePublisher{}
	s := NewScheduler(staticSource{slots: testSlots()}, pub, 10*time.Millisecond, zap.NewNop())

	s.Start(context.Background())
	require.Eventually(t, func() bool { return pub.count() >= 2 }, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
}

func TestScheduler_Disabled(t *testing.T) {
	pub := &capturePublisher{}
	s := NewScheduler(staticSource{slots: testSlots()}, pub, 0, zap.NewNop())

	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, pub.count())
}
