package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/signova/internal/app"
	"github.com/ayusman/signova/internal/sentence"
)

// broadcastInterval is how often status is pushed to clients.
const broadcastInterval = 200 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// StatusSource provides recognition status snapshots.
type StatusSource interface {
	Status(lang sentence.Language) app.Status
}

// StatusHub pushes recognition status to WebSocket clients. Each client
// may pick a translation language with ?language=.
type StatusHub struct {
	source  StatusSource
	log     logrus.FieldLogger
	clients map[*websocket.Conn]sentence.Language
	mu      sync.RWMutex
	stop    chan struct{}
	once    sync.Once
}

// NewStatusHub creates a hub and starts its broadcast loop.
func NewStatusHub(source StatusSource, log logrus.FieldLogger) *StatusHub {
	h := &StatusHub{
		source:  source,
		log:     log,
		clients: make(map[*websocket.Conn]sentence.Language),
		stop:    make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StatusHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var lang sentence.Language
	if v := r.URL.Query().Get("language"); v != "" {
		l, err := sentence.ParseLanguage(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		lang = l
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = lang
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *StatusHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcast loop.
func (h *StatusHub) Close() {
	h.once.Do(func() { close(h.stop) })
}

// broadcast sends status to all connected clients.
func (h *StatusHub) broadcast() {
	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}

		h.mu.RLock()
		targets := make(map[*websocket.Conn]sentence.Language, len(h.clients))
		for c, l := range h.clients {
			targets[c] = l
		}
		h.mu.RUnlock()
		if len(targets) == 0 {
			continue
		}

		msgs := make(map[sentence.Language][]byte)
		for conn, lang := range targets {
			msg, ok := msgs[lang]
			if !ok {
				var err error
				msg, err = json.Marshal(h.source.Status(lang))
				if err != nil {
					h.log.WithError(err).Warn("failed to encode status")
					continue
				}
				msgs[lang] = msg
			}

			conn.SetWriteDeadline(time.Now().Add(time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.WithError(err).Debug("dropping websocket client")
				conn.Close()
			}
		}
	}
}
