package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/intel-feed/internal/metrics"
	"github.com/kovalyov-valentin/intel-feed/internal/model"
)

const (
	DefaultBuffer       = 256
	DefaultClientBuffer = 64

	wsWriteTimeout = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsReadLimit    = 512
)

// Живая лента для подключенных зрителей.
// Publish кладет событие в ограниченную очередь и никогда не блокируется,
// раздачей по клиентам занимается Run в отдельной горутине
type Hub struct {
	sync.RWMutex
	clients map[string]chan []byte

	events       chan model.ArticleEvent
	clientBuffer int
	upgrader     websocket.Upgrader
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	return &Hub{
		clients:      make(map[string]chan []byte),
		events:       make(chan model.ArticleEvent, buffer),
		clientBuffer: DefaultClientBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Лента публичная, страница может жить на другом домене
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Hub) Publish(event model.ArticleEvent) {
	event.Timestamp = event.Timestamp.UTC()

	select {
	case h.events <- event: // Non-blocking send
	default:
		metrics.BroadcastDropped.Inc()
		log.WithField("id", event.ID).Warn("broadcast queue full, dropping event")
	}
}

// Раздаем события, пока не отменят контекст. После выхода все клиенты отключены
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.Shutdown()
			return
		case event := <-h.events:
			h.fanOut(event)
		}
	}
}

func (h *Hub) fanOut(event model.ArticleEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Error("encode broadcast event")
		return
	}

	h.RLock()
	defer h.RUnlock()

	for id, client := range h.clients {
		select {
		case client <- payload: // Non-blocking send
		default:
			metrics.BroadcastDropped.Inc()
			log.Warnf("Client channel full, skipping event for client: %v", id)
		}
	}
}

func (h *Hub) AddClient(key string) <-chan []byte {
	h.Lock()
	defer h.Unlock()

	client := make(chan []byte, h.clientBuffer)
	h.clients[key] = client
	metrics.Subscribers.Set(float64(len(h.clients)))

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(h.clients),
	}).Info("Adding client to broadcaster")

	return client
}

func (h *Hub) RemoveClient(key string) {
	h.Lock()
	defer h.Unlock()

	client, ok := h.clients[key]
	if !ok {
		return
	}

	close(client)
	delete(h.clients, key)
	metrics.Subscribers.Set(float64(len(h.clients)))

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(h.clients),
	}).Info("Removed client from broadcaster")
}

func (h *Hub) Subscribers() int {
	h.RLock()
	defer h.RUnlock()

	return len(h.clients)
}

func (h *Hub) Shutdown() {
	log.Info("Shutting down broadcaster")

	h.Lock()
	defer h.Unlock()

	for key, client := range h.clients {
		close(client)
		delete(h.clients, key)
	}
	metrics.Subscribers.Set(0)
}

// HTTP обработчик, который апгрейдит соединение до websocket и держит его, пока клиент жив
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade")
		return
	}

	key := uuid.New().String()
	client := h.AddClient(key)

	go h.readLoop(conn, key)
	h.writeLoop(conn, client)
}

// Читаем только служебные сообщения, чтобы заметить отключение клиента
func (h *Hub) readLoop(conn *websocket.Conn, key string) {
	defer func() {
		h.RemoveClient(key)
		conn.Close()
	}()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, client <-chan []byte) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
