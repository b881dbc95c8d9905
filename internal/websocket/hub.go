package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/capogreco/string.assembly.fm-sub005/internal/model"
)

// Controller receives peer lifecycle and request events. Implemented by
// the ensemble coordinator.
type Controller interface {
	PeerConnected(id string)
	PeerDisconnected(id string)
	ProgramRequested(id string)
	BankProgramRequested(id string, bankID int, transition *model.TransitionConfig)
}

// Client is one connected synth peer.
type Client struct {
	SynthID string
	Conn    *websocket.Conn
	Send    chan []byte
}

// Hub maintains the active peer connections and is the coordinator's
// transport. One client per synth id; a reconnect with the same id
// replaces the old connection.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	controller Controller
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// SetController wires the event sink. Must be called before serving; the
// hub and coordinator reference each other so this breaks the cycle.
func (h *Hub) SetController(c Controller) {
	h.controller = c
}

// Send marshals a message and queues it for one peer. Fire-and-forget: a
// full send buffer counts as a failed send rather than blocking the
// caller's broadcast loop.
func (h *Hub) Send(peerID string, message any) error {
	h.mu.RLock()
	client, ok := h.clients[peerID]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("peer %s not connected", peerID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message for peer %s: %w", peerID, err)
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return fmt.Errorf("peer %s send buffer full", peerID)
	}
}

// HandleConnection runs one peer's connection until it closes. Must be
// called from the fiber websocket handler's goroutine.
func (h *Hub) HandleConnection(c *websocket.Conn, synthID string) {
	client := &Client{
		SynthID: synthID,
		Conn:    c,
		Send:    make(chan []byte, 64),
	}

	h.register(client)
	defer h.unregister(client)

	// Writer goroutine with keep-alive ping
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for peer %s: %v", synthID, err)
			}
			break
		}

		var msg model.PeerMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case model.MessageTypeProgramRequest:
			h.controller.ProgramRequested(synthID)

		case model.MessageTypeBankProgramRequest:
			h.controller.BankProgramRequested(synthID, msg.BankID, msg.Transition)

		case model.MessageTypePing:
			pong, _ := json.Marshal(model.PeerMessage{Type: model.MessageTypePong})
			select {
			case client.Send <- pong:
			default:
			}
		}
	}
}

// register installs the client, replacing any previous connection with the
// same synth id, and notifies the controller.
func (h *Hub) register(client *Client) {
	h.mu.Lock()
	if old, ok := h.clients[client.SynthID]; ok {
		close(old.Send)
	}
	h.clients[client.SynthID] = client
	h.mu.Unlock()

	h.controller.PeerConnected(client.SynthID)
}

// unregister tears down one connection. Only the connection that still
// owns the registration deregisters the peer: after a reconnect with the
// same synth id has replaced the entry, the old connection's teardown must
// leave the live peer registered with the coordinator.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	owns := h.clients[client.SynthID] == client
	if owns {
		delete(h.clients, client.SynthID)
		close(client.Send)
	}
	h.mu.Unlock()

	if owns {
		h.controller.PeerDisconnected(client.SynthID)
	}
}

// Connected reports the currently connected synth ids.
func (h *Hub) Connected() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}
