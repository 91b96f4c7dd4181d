package websocket

import (
	"context"
	"net/http"
	"slices"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"shopping-list/internal/lists"
	"shopping-list/internal/logging"
	"shopping-list/internal/models"
)

// Message types sent to clients
const (
	MessageTypeLists = "lists"
	MessageTypePong  = "pong"
	MessageTypeError = "error"
)

// WebSocket message structure
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
	Time int64       `json:"time"`
}

// Client represents a connected UI client
type Client struct {
	ID     string
	Device string
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan Message
}

// inbound is a client request handled on the hub goroutine, which is the
// only writer to (and closer of) Client.Send.
type inbound struct {
	client *Client
	kind   string
}

// Hub fans published list snapshots out to every connected client and
// replays the latest one to clients that connect later.
type Hub struct {
	// Registered clients
	Clients map[*Client]bool

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Broadcast channel for sending messages
	Broadcast chan Message

	requests chan inbound
	done     chan struct{}
	latest   *Message
	logger   logging.Logger
	upgrader websocket.Upgrader

	// Mutex for thread-safe operations
	mutex sync.RWMutex
}

// NewHub creates a new WebSocket hub. Upgrades are accepted from the listed
// origins and from clients that send no Origin header.
func NewHub(logger logging.Logger, allowedOrigins []string) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan Message),
		requests:   make(chan inbound),
		done:       make(chan struct{}),
		logger:     logger.With("component", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := slices.Clone(allowedOrigins)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// Run is the hub's main loop. It returns when ctx is done, after closing
// every client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.Register:
			h.registerClient(ctx, client)

		case client := <-h.Unregister:
			h.unregisterClient(ctx, client)

		case message := <-h.Broadcast:
			h.broadcastMessage(message)

		case req := <-h.requests:
			h.handleRequest(req)
		}
	}
}

// Follow forwards every snapshot of sub to the clients until ctx is done or
// the subscription ends. It closes sub on return.
func (h *Hub) Follow(ctx context.Context, sub *lists.Subscription) {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-sub.Updates():
			if !ok {
				return
			}
			select {
			case h.Broadcast <- listsMessage(snapshot):
			case <-ctx.Done():
				return
			case <-h.done:
				return
			}
		}
	}
}

func listsMessage(snapshot []models.ShoppingList) Message {
	return Message{Type: MessageTypeLists, Data: snapshot}
}

// registerClient adds a client to the hub and replays the latest snapshot
func (h *Hub) registerClient(ctx context.Context, client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.Clients[client] = true
	if h.latest != nil {
		h.send(client, *h.latest)
	}

	h.logger.Info(ctx, "client connected", "client_id", client.ID, "device", client.Device, "clients", len(h.Clients))
}

// unregisterClient removes a client from the hub
func (h *Hub) unregisterClient(ctx context.Context, client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.Clients[client]; ok {
		delete(h.Clients, client)
		close(client.Send)
		h.logger.Info(ctx, "client disconnected", "client_id", client.ID, "clients", len(h.Clients))
	}
}

// broadcastMessage sends a message to every client
func (h *Hub) broadcastMessage(message Message) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if message.Type == MessageTypeLists {
		h.latest = &message
	}
	for client := range h.Clients {
		h.send(client, message)
	}
}

func (h *Hub) handleRequest(req inbound) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if !h.Clients[req.client] {
		return
	}

	switch req.kind {
	case ClientMessagePing:
		h.send(req.client, Message{Type: MessageTypePong})
	case ClientMessageRefresh:
		if h.latest != nil {
			h.send(req.client, *h.latest)
		}
	default:
		h.send(req.client, Message{Type: MessageTypeError, Data: map[string]string{"error": "unknown message type"}})
	}
}

// send drops a client whose buffer is full. Callers hold the mutex.
func (h *Hub) send(client *Client, message Message) {
	select {
	case client.Send <- message:
	default:
		close(client.Send)
		delete(h.Clients, client)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.Clients {
		close(client.Send)
		delete(h.Clients, client)
	}
}

// Devices returns the device names of the connected clients
func (h *Hub) Devices() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	devices := make([]string, 0, len(h.Clients))
	for client := range h.Clients {
		devices = append(devices, client.Device)
	}
	sort.Strings(devices)
	return devices
}

// ServeWS upgrades the request and attaches the connection to the hub
func (h *Hub) ServeWS(c *gin.Context, device string) {
	ctx := c.Request.Context()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn(ctx, "websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		ID:     "client_" + uuid.NewString(),
		Device: device,
		Hub:    h,
		Conn:   conn,
		Send:   make(chan Message, 256),
	}

	select {
	case h.Register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
