// Package ws streams committed session events to read-only observers.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindmapx/application/ports"
	"mindmapx/domain/events"
)

// Message types sent besides domain events
const (
	TypeSnapshot = "session.snapshot"
	TypePing     = "ping"
)

// Message is one frame pushed to observers
type Message struct {
	SessionID string          `json:"session_id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// ObserverGauge tracks connected observers
type ObserverGauge interface {
	ObserverConnected(delta int)
}

type nopGauge struct{}

func (nopGauge) ObserverConnected(int) {}

// HubMetrics tracks delivery counts
type HubMetrics struct {
	ActiveConnections int64
	MessagesSent      int64
	MessagesFailed    int64
}

// Hub fans session events out to every observer of that session
type Hub struct {
	connections map[string]map[*Client]bool // sessionID -> observers
	mu          sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	gauge  ObserverGauge

	metrics   HubMetrics
	metricsMu sync.Mutex
}

var _ ports.EventPublisher = (*Hub)(nil)

// NewHub creates a new hub. gauge may be nil.
func NewHub(logger *zap.Logger, gauge ObserverGauge) *Hub {
	if gauge == nil {
		gauge = nopGauge{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		connections: make(map[string]map[*Client]bool),
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
		gauge:       gauge,
	}
}

// Run pings observers periodically until Stop is called
func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info("Hub shutting down")
			h.closeAllConnections()
			return
		case <-ticker.C:
			h.performHealthCheck()
		}
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}

// Publish implements ports.EventPublisher. Events are queued per observer
// in the order given.
func (h *Hub) Publish(_ context.Context, sessionID string, evts []events.DomainEvent) error {
	h.mu.RLock()
	observers := len(h.connections[sessionID])
	h.mu.RUnlock()
	if observers == 0 {
		return nil
	}

	for _, evt := range evts {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("failed to marshal %s event: %w", evt.GetEventType(), err)
		}
		h.Send(&Message{
			SessionID: sessionID,
			Type:      evt.GetEventType(),
			Data:      payload,
			Timestamp: evt.GetTimestamp().UnixMilli(),
		})
	}
	return nil
}

// Send delivers message to every observer of its session
func (h *Hub) Send(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal message",
			zap.Error(err),
			zap.String("type", message.Type),
		)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.connections[message.SessionID]))
	for c := range h.connections[message.SessionID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	var sent, failed int64
	for _, client := range clients {
		if client.enqueue(data) {
			sent++
			continue
		}
		failed++
		h.logger.Warn("Closing slow observer",
			zap.String("session_id", client.sessionID),
			zap.String("connection_id", client.id),
		)
		go h.unregister(client)
	}

	h.metricsMu.Lock()
	h.metrics.MessagesSent += sent
	h.metrics.MessagesFailed += failed
	h.metricsMu.Unlock()
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	if h.connections[client.sessionID] == nil {
		h.connections[client.sessionID] = make(map[*Client]bool)
	}
	h.connections[client.sessionID][client] = true
	count := len(h.connections[client.sessionID])
	h.metricsMu.Lock()
	h.metrics.ActiveConnections++
	h.metricsMu.Unlock()
	h.gauge.ObserverConnected(1)
	h.mu.Unlock()

	h.logger.Info("Observer registered",
		zap.String("session_id", client.sessionID),
		zap.String("connection_id", client.id),
		zap.Int("session_observers", count),
	)
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	clients, ok := h.connections[client.sessionID]
	if !ok || !clients[client] {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.connections, client.sessionID)
	}
	h.metricsMu.Lock()
	h.metrics.ActiveConnections--
	h.metricsMu.Unlock()
	h.gauge.ObserverConnected(-1)
	h.mu.Unlock()

	client.close()

	h.logger.Info("Observer unregistered",
		zap.String("session_id", client.sessionID),
		zap.String("connection_id", client.id),
	)
}

// Disconnect drops every observer of a session
func (h *Hub) Disconnect(sessionID string) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.connections[sessionID]))
	for c := range h.connections[sessionID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

func (h *Hub) performHealthCheck() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ping := []byte(`{"type":"` + TypePing + `"}`)
	total := 0
	for sessionID, clients := range h.connections {
		total += len(clients)
		for client := range clients {
			if !client.enqueue(ping) {
				h.logger.Warn("Failed to ping observer",
					zap.String("session_id", sessionID),
					zap.String("connection_id", client.id),
				)
			}
		}
	}

	h.logger.Debug("Health check performed",
		zap.Int("total_connections", total),
		zap.Int("total_sessions", len(h.connections)),
	)
}

func (h *Hub) closeAllConnections() {
	h.mu.RLock()
	var all []*Client
	for _, clients := range h.connections {
		for c := range clients {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.unregister(c)
	}
	h.logger.Info("All observer connections closed")
}

// GetMetrics returns current hub metrics
func (h *Hub) GetMetrics() HubMetrics {
	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	return h.metrics
}

// GetConnectionCount returns the number of observers of a session
func (h *Hub) GetConnectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[sessionID])
}
