package handlers

import (
	"context"

	"github.com/Freeeeeet/appointment_bot/internal/agent"
	"github.com/Freeeeeet/appointment_bot/internal/controller/state"
	"go.uber.org/zap"
)

// Tools инструменты записи, через которые бот работает с расписанием
type Tools interface {
	IdentifyUser(ctx context.Context, phone string) (any, error)
	FetchSlots(ctx context.Context, preferredDate string) (any, error)
	BookAppointment(ctx context.Context, in agent.Arguments) (any, error)
	RetrieveAppointments(ctx context.Context, phone string) (any, error)
	CancelAppointment(ctx context.Context, appointmentID string) (any, error)
	ModifyAppointment(ctx context.Context, appointmentID, newDate, newTime string) (any, error)
	EndConversation(ctx context.Context, summary string) (any, error)
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	tools        Tools
	stateManager *state.Manager
	logger       *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(tools Tools, stateManager *state.Manager, logger *zap.Logger) *Handlers {
	return &Handlers{
		tools:        tools,
		stateManager: stateManager,
		logger:       logger,
	}
}
