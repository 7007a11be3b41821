// Package realtime pushes lifecycle events to connected clients over
// WebSocket. Publishing is fire-and-forget: a slow or absent client never
// blocks the caller.
package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tasket/tasket-server/internal/models"
)

// Event kinds sent to clients.
const (
	EventTaskCreated  = "task_created"
	EventTaskUpdated  = "task_updated"
	EventTaskDeleted  = "task_deleted"
	EventNotification = "notification"
)

// Publisher is the surface services use to emit events.
type Publisher interface {
	// TaskCreated and TaskUpdated broadcast to every connected client.
	TaskCreated(task *models.Task)
	TaskUpdated(task *models.Task)

	// TaskDeleted broadcasts the deleted task's id and department id so
	// clients can drop it from department-scoped views.
	TaskDeleted(taskID uuid.UUID, departmentID *uuid.UUID)

	// Notify delivers a notification to one employee's connections.
	Notify(employeeID uuid.UUID, notification *models.Notification)
}

type envelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type message struct {
	employeeID *uuid.UUID // nil means broadcast
	data       []byte
}

// Hub owns all client connections. All map access happens on the Run
// goroutine; the channels are the only way in.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	outbound   chan message
	clients    map[*Client]struct{}
	byEmployee map[uuid.UUID]map[*Client]struct{}
	done       chan struct{}
	log        *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan message, 256),
		clients:    make(map[*Client]struct{}),
		byEmployee: make(map[uuid.UUID]map[*Client]struct{}),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run processes registrations and outbound messages until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			conns, ok := h.byEmployee[client.employeeID]
			if !ok {
				conns = make(map[*Client]struct{})
				h.byEmployee[client.employeeID] = conns
			}
			conns[client] = struct{}{}

		case client := <-h.unregister:
			h.drop(client)

		case msg := <-h.outbound:
			if msg.employeeID != nil {
				for client := range h.byEmployee[*msg.employeeID] {
					h.deliver(client, msg.data)
				}
				continue
			}
			for client := range h.clients {
				h.deliver(client, msg.data)
			}

		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// attach and detach hand a client to the Run goroutine without blocking
// forever once the hub has shut down.
func (h *Hub) attach(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	if conns, ok := h.byEmployee[client.employeeID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.byEmployee, client.employeeID)
		}
	}
	close(client.send)
}

func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		// Client can't keep up; drop it rather than block the hub.
		h.drop(client)
	}
}

func (h *Hub) publish(employeeID *uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("failed to encode realtime event")
		return
	}
	select {
	case h.outbound <- message{employeeID: employeeID, data: data}:
	default:
		h.log.WithField("event", event).Warn("realtime outbound queue full, dropping event")
	}
}

func (h *Hub) TaskCreated(task *models.Task) {
	h.publish(nil, EventTaskCreated, task)
}

func (h *Hub) TaskUpdated(task *models.Task) {
	h.publish(nil, EventTaskUpdated, task)
}

func (h *Hub) TaskDeleted(taskID uuid.UUID, departmentID *uuid.UUID) {
	h.publish(nil, EventTaskDeleted, map[string]interface{}{
		"task_id":       taskID,
		"department_id": departmentID,
	})
}

func (h *Hub) Notify(employeeID uuid.UUID, notification *models.Notification) {
	h.publish(&employeeID, EventNotification, notification)
}
