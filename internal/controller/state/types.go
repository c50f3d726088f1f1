package state

// DialogState шаг диалога в чате
type DialogState string

const (
	StateNone DialogState = "" // Нет активного диалога

	// Знакомство: сначала телефон, затем имя для новых пациентов
	StateAwaitingPhone DialogState = "awaiting_phone"
	StateAwaitingName  DialogState = "awaiting_name"
)

// Ключи данных чата
const (
	KeyPhone = "phone"
	KeyName  = "name"
)

// ChatData состояние и данные одного чата
type ChatData struct {
	State DialogState
	Data  map[string]string
}
