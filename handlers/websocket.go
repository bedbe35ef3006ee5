package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"botwerk-server/middleware"
	"botwerk-server/models"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // authenticated by token
	},
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
	sendBuffer     = 256
)

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// Hub tracks open websocket connections and fans events out to a user's clients.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		done:       make(chan struct{}),
	}
}

// Run owns client registration until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	logrus.Info("[WS HUB] Hub started and running")
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			logrus.Debugf("[WS HUB] Client registered: %s (total clients: %d)", client.userID, clientCount)

		case client := <-h.unregister:
			if h.remove(client) {
				logrus.Debugf("[WS HUB] Client unregistered: %s", client.userID)
			}

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logrus.Info("[WS HUB] Hub stopped")
			return
		}
	}
}

// remove drops a client and closes its send channel exactly once.
func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	close(client.send)
	return true
}

// ClientCount reports the number of open connections for a user.
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for client := range h.clients {
		if client.userID == userID {
			n++
		}
	}
	return n
}

func (h *Hub) SendToUser(userID string, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).Errorf("[WS] SendToUser marshal error for type '%s'", msg.Type)
		return
	}

	sentCount := 0
	var staleClients []*Client
	h.mu.RLock()
	for client := range h.clients {
		if client.userID != userID {
			continue
		}
		select {
		case client.send <- data:
			sentCount++
		default:
			staleClients = append(staleClients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range staleClients {
		logrus.Warnf("[WS] SendToUser: client %s buffer full, closing", client.userID)
		h.remove(client)
	}

	if msg.Type != models.WSTypeTyping {
		logrus.Debugf("[WS] SendToUser type '%s' to user %s: sent to %d connections", msg.Type, userID, sentCount)
	}
}

// DisconnectUser closes every connection of a user, e.g. after the account was deleted.
func (h *Hub) DisconnectUser(userID string) {
	h.mu.Lock()
	var toRemove []*Client
	for client := range h.clients {
		if client.userID == userID {
			toRemove = append(toRemove, client)
		}
	}
	for _, client := range toRemove {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()

	if len(toRemove) > 0 {
		logrus.Infof("[WS] Disconnected %d connection(s) for user %s", len(toRemove), userID)
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		writeError(w, "Token required", http.StatusUnauthorized)
		return
	}

	claims, err := middleware.ValidateToken(token)
	if err != nil {
		logrus.Debugf("[WS] Connection rejected - invalid token from %s: %v", r.RemoteAddr, err)
		writeError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warnf("[WS] Upgrade error for user %s", claims.UserID)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		userID: claims.UserID,
	}

	welcomeMsg := []byte(`{"type":"welcome","payload":{"message":"connected"}}`)
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, welcomeMsg); err != nil {
		logrus.WithError(err).Warnf("[WS] Failed to send welcome message to %s", claims.UserID)
		conn.Close()
		return
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logrus.WithError(err).Warnf("[WS] Unexpected close error for client %s", c.userID)
			}
			return
		}

		// Clients only listen; anything they send is logged and dropped.
		var wsMsg models.WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			logrus.Debugf("[WS] Failed to unmarshal message from client %s: %v", c.userID, err)
			continue
		}
		logrus.Debugf("[WS] Ignoring message type '%s' from client %s", wsMsg.Type, c.userID)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithError(err).Debugf("[WS] Write error for client %s", c.userID)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
