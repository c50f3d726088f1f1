package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const clientSendBuffer = 256

// Message конверт события для websocket-клиента
type Message struct {
	Topic string          `json:"topic"`
	Data  json.RawMessage `json:"data"`
}

// ClientMessage входящее сообщение клиента: подписка/отписка
type ClientMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

// Client одно websocket-подключение
type Client struct {
	ID     string
	Topics []string
	Send   chan []byte
}

// NewClient создаёт клиента с буфером отправки
func NewClient(topics []string) *Client {
	return &Client{
		ID:     uuid.New().String(),
		Topics: topics,
		Send:   make(chan []byte, clientSendBuffer),
	}
}

// Hub подписки клиентов на топики. Медленный клиент пропускает события,
// публикация никогда не блокируется.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // topic -> clients
	all     map[*Client]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		all:     make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register добавляет клиента и подписывает на его топики
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}
	for _, topic := range client.Topics {
		h.subscribeLocked(client, topic)
	}
}

// Unregister удаляет клиента и закрывает его канал
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}

	for _, topic := range client.Topics {
		h.unsubscribeLocked(client, topic)
	}

	delete(h.all, client)
	close(client.Send)
}

// Subscribe добавляет топики уже подключённому клиенту
func (h *Hub) Subscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}

	for _, topic := range topics {
		if h.subscribeLocked(client, topic) {
			client.Topics = append(client.Topics, topic)
		}
	}
}

// Unsubscribe убирает топики у клиента
func (h *Hub) Unsubscribe(client *Client, topics []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	remove := make(map[string]struct{}, len(topics))
	for _, topic := range topics {
		remove[topic] = struct{}{}
		h.unsubscribeLocked(client, topic)
	}

	remaining := client.Topics[:0]
	for _, topic := range client.Topics {
		if _, rm := remove[topic]; !rm {
			remaining = append(remaining, topic)
		}
	}
	client.Topics = remaining
}

// ProcessMessage обрабатывает сообщение клиента
func (h *Hub) ProcessMessage(client *Client, msg ClientMessage) {
	switch msg.Action {
	case "subscribe":
		h.Subscribe(client, msg.Topics)
	case "unsubscribe":
		h.Unsubscribe(client, msg.Topics)
	}
}

// Publish рассылает событие подписчикам топика
func (h *Hub) Publish(_ context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	frame, err := json.Marshal(Message{Topic: topic, Data: data})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[topic] {
		select {
		case client.Send <- frame:
		default:
			h.logger.Debug("Client buffer full, event dropped",
				zap.String("client_id", client.ID),
				zap.String("topic", topic),
			)
		}
	}

	return nil
}

// ClientCount общее количество подключений
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// TopicCount количество подписчиков топика
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

func (h *Hub) subscribeLocked(client *Client, topic string) bool {
	if h.clients[topic] == nil {
		h.clients[topic] = make(map[*Client]struct{})
	}
	if _, ok := h.clients[topic][client]; ok {
		return false
	}
	h.clients[topic][client] = struct{}{}
	return true
}

func (h *Hub) unsubscribeLocked(client *Client, topic string) {
	subscribers, ok := h.clients[topic]
	if !ok {
		return
	}
	delete(subscribers, client)
	if len(subscribers) == 0 {
		delete(h.clients, topic)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleConnect поднимает websocket и подписывает на топики из ?topics=a,b
func (h *Hub) HandleConnect(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	var topics []string
	if raw := c.QueryParam("topics"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}

	client := NewClient(topics)
	h.Register(client)

	h.logger.Info("Websocket client connected",
		zap.String("client_id", client.ID),
		zap.Strings("topics", topics),
	)

	go h.writePump(client, ws)
	go h.readPump(client, ws)

	return nil
}

func (h *Hub) readPump(client *Client, ws *websocket.Conn) {
	defer func() {
		h.Unregister(client)
		ws.Close()
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		h.ProcessMessage(client, msg)
	}
}

func (h *Hub) writePump(client *Client, ws *websocket.Conn) {
	defer ws.Close()

	for frame := range client.Send {
		if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}
