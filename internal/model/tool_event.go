package model

import "time"

type ToolCallStatus string

const (
	ToolCallStarted   ToolCallStatus = "started"
	ToolCallCompleted ToolCallStatus = "completed"
	ToolCallError     ToolCallStatus = "error"
)

// Топики канала событий
const (
	TopicToolCall     = "tool_call"
	TopicCallSummary  = "call_summary"
	TopicAvailability = "availability"
)

// ToolCallEvent публикуется в канал событий для отображения вызовов инструментов
type ToolCallEvent struct {
	ToolName  string         `json:"tool_name"`
	Status    ToolCallStatus `json:"status"`
	Arguments map[string]any `json:"arguments"`
	Result    any            `json:"result"`
	Timestamp string         `json:"timestamp"`
}

// NewToolCallEvent ставит метку времени в UTC
func NewToolCallEvent(toolName string, status ToolCallStatus, args map[string]any, result any, now time.Time) ToolCallEvent {
	return ToolCallEvent{
		ToolName:  toolName,
		Status:    status,
		Arguments: args,
		Result:    result,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
}

type CallSummary struct {
	Summary string `json:"summary"`
}

// AvailabilitySnapshot сводка свободных слотов по дням
type AvailabilitySnapshot struct {
	TotalAvailable int            `json:"total_available"`
	ByDate         map[string]int `json:"by_date"`
	GeneratedAt    string         `json:"generated_at"`
}
