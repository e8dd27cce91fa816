package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a WebSocket client
type Client struct {
	ID       uint
	UserType string
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client %d connected", client.ID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("Client %d disconnected", client.ID)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register attaches a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister detaches a client and closes its send channel
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastToUser sends a message to a specific user
func (h *Hub) BroadcastToUser(userID uint, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.ID == userID {
			select {
			case client.Send <- message:
			default:
				log.Printf("Warning: Could not send to client %d (channel full)", client.ID)
			}
		}
	}
}

// BroadcastToUserType sends a message to all users of a specific type
func (h *Hub) BroadcastToUserType(userType string, message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.UserType == userType {
			select {
			case client.Send <- message:
			default:
				log.Printf("Warning: Could not send to client %d (channel full)", client.ID)
			}
		}
	}
}

// BroadcastToAll sends a message to all connected clients
func (h *Hub) BroadcastToAll(message []byte) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		select {
		case client.Send <- message:
			// Message sent successfully
		default:
			// Client's send channel is full, skip
			log.Printf("Warning: Could not send to client %d (channel full)", client.ID)
		}
	}
}

// GetConnectedClients returns the number of connected clients
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// WebSocket message types
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// OccupancyUpdate is broadcast to every client when the live headcount changes
type OccupancyUpdate struct {
	Occupancy int64 `json:"occupancy"`
	Timestamp int64 `json:"timestamp"`
}

// BookingDecision notifies a member that an admin decided their booking
type BookingDecision struct {
	BookingID uint   `json:"bookingId"`
	ItemID    uint   `json:"itemId"`
	ItemName  string `json:"itemName"`
	Status    string `json:"status"` // approved, rejected
}

// ReturnApproved notifies a borrower that their equipment return was accepted
type ReturnApproved struct {
	ItemID   uint   `json:"itemId"`
	ItemName string `json:"itemName"`
	Quantity int    `json:"quantity"`
}

// NoticePosted announces a new notice to all connected clients
type NoticePosted struct {
	NoticeID uint   `json:"noticeId"`
	Title    string `json:"title"`
}

// SendOccupancyUpdate broadcasts the current headcount to all clients
func (h *Hub) SendOccupancyUpdate(update OccupancyUpdate) {
	message := WebSocketMessage{
		Type: "occupancy_update",
		Data: update,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling occupancy update: %v", err)
		return
	}

	h.BroadcastToAll(data)
}

// SendBookingDecision sends a booking decision to the member who requested it
func (h *Hub) SendBookingDecision(userID uint, decision BookingDecision) {
	message := WebSocketMessage{
		Type: "booking_decision",
		Data: decision,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling booking decision: %v", err)
		return
	}

	h.BroadcastToUser(userID, data)
}

// SendReturnApproved tells the borrower their return was accepted
func (h *Hub) SendReturnApproved(userID uint, approved ReturnApproved) {
	message := WebSocketMessage{
		Type: "return_approved",
		Data: approved,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling return approved: %v", err)
		return
	}

	h.BroadcastToUser(userID, data)
}

// SendNoticePosted announces a new notice to everyone who is connected
func (h *Hub) SendNoticePosted(posted NoticePosted) {
	message := WebSocketMessage{
		Type: "notice_posted",
		Data: posted,
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling notice posted: %v", err)
		return
	}

	h.BroadcastToAll(data)
}

// HandleWebSocket handles WebSocket connections
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint, userType string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:       userID,
		UserType: userType,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Hub:      hub,
	}

	client.Hub.Register(client)

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Clients only listen; inbound frames are logged and dropped
		var wsMessage WebSocketMessage
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			log.Printf("Error unmarshaling WebSocket message: %v", err)
			continue
		}
		log.Printf("Ignoring inbound %q message from client %d", wsMessage.Type, c.ID)
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
