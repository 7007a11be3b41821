package realtime

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewHub(log)
}

func newTestClient(h *Hub, employeeID uuid.UUID) *Client {
	return &Client{hub: h, employeeID: employeeID, send: make(chan []byte, 8)}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.send:
		return data
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestHubBroadcastsTaskDeleted(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	a := newTestClient(hub, uuid.New())
	b := newTestClient(hub, uuid.New())
	hub.attach(a)
	hub.attach(b)

	taskID := uuid.New()
	hub.TaskDeleted(taskID, nil)

	for _, client := range []*Client{a, b} {
		var envelope struct {
			Event   string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(receive(t, client), &envelope))
		assert.Equal(t, EventTaskDeleted, envelope.Event)
	}
}

func TestHubNotifyTargetsOneEmployee(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	recipientID := uuid.New()
	recipient := newTestClient(hub, recipientID)
	bystander := newTestClient(hub, uuid.New())
	hub.attach(recipient)
	hub.attach(bystander)

	hub.Notify(recipientID, nil)

	var envelope struct {
		Event string `json:"event"`
	}
	require.NoError(t, json.Unmarshal(receive(t, recipient), &envelope))
	assert.Equal(t, EventNotification, envelope.Event)

	select {
	case <-bystander.send:
		t.Fatal("notification leaked to another employee")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubDetachAfterShutdownDoesNotBlock(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := newTestClient(hub, uuid.New())
	hub.attach(client)

	cancel()
	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	finished := make(chan struct{})
	go func() {
		hub.detach(client)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("detach blocked after hub shutdown")
	}
}
