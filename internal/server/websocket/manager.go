package websocket

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/frogstop/payments/internal/domain"
	"github.com/frogstop/payments/internal/domain/interfaces"
)

// Manager fans payment status updates out to every connected dashboard
// client. The stream has no per-user addressing: the merchant dashboard is a
// single audience and every update goes to all subscribers.
type Manager struct {
	clients   map[string]*Client
	clientsMu sync.RWMutex
	logger    zerolog.Logger
}

func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		clients: make(map[string]*Client),
		logger:  logger.With().Str("component", "ws_manager").Logger(),
	}
}

var _ interfaces.PaymentStreamer = (*Manager)(nil)

func (m *Manager) AddClient(client *Client) {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()

	m.clients[client.ID()] = client

	m.logger.Info().
		Str("client_id", client.ID()).
		Int("total_clients", len(m.clients)).
		Msg("WebSocket client added")
}

func (m *Manager) RemoveClient(clientID string) {
	m.clientsMu.Lock()
	defer m.clientsMu.Unlock()

	if client, exists := m.clients[clientID]; exists {
		client.Close()
		delete(m.clients, clientID)

		m.logger.Info().
			Str("client_id", clientID).
			Int("total_clients", len(m.clients)).
			Msg("WebSocket client removed")
	}
}

// BroadcastPayment sends a payment update to all connected clients. Slow
// clients drop messages rather than blocking the webhook path.
func (m *Manager) BroadcastPayment(update *domain.PaymentUpdate) {
	m.clientsMu.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for _, client := range m.clients {
		clients = append(clients, client)
	}
	m.clientsMu.RUnlock()

	for _, client := range clients {
		if err := client.Send(update); err != nil {
			m.logger.Warn().
				Err(err).
				Str("client_id", client.ID()).
				Str("payment_id", update.PaymentID).
				Msg("Failed to send WebSocket message")
		}
	}

	m.logger.Debug().
		Str("payment_id", update.PaymentID).
		Str("status", string(update.Status)).
		Int("client_count", len(clients)).
		Msg("Broadcast payment update")
}

func (m *Manager) ClientCount() int {
	m.clientsMu.RLock()
	defer m.clientsMu.RUnlock()
	return len(m.clients)
}
