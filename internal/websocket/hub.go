// internal/websocket/hub.go
package websocket

import (
	"context"
	"fmt"
	"sync"

	wstypes "fixit-service/internal/domain/websocket"
	"fixit-service/internal/pkg/jwt"
	"fixit-service/internal/pkg/session"

	"go.uber.org/zap"
)

// Hub fans real-time events out to the connected clients of each user.
// Clients are indexed by email; one user may hold several connections
// (multiple tabs or devices).
type Hub struct {
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	// Registration/unregistration
	Register   chan *Client
	unregister chan *Client

	// Broadcasting
	broadcast chan *BroadcastMessage

	// Auth dependencies
	verifier *jwt.Verifier
	registry *session.Registry
	logger   *zap.Logger
}

type BroadcastMessage struct {
	// UserEmails nil means broadcast to everyone.
	UserEmails []string
	Message    *wstypes.WSMessage
}

func NewHub(verifier *jwt.Verifier, registry *session.Registry, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		verifier:   verifier,
		registry:   registry,
		logger:     logger,
	}
}

// AuthenticateClient validates the JWT token and checks the user still
// has a valid session before admitting the connection.
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	claims, err := h.verifier.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !h.registry.Validate(claims.Email) {
		return nil, ErrSessionExpired
	}

	return &ClientAuth{
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	}, nil
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.email] == nil {
		h.clients[client.email] = make(map[*Client]bool)
	}
	h.clients[client.email][client] = true

	h.logger.Info("websocket client connected",
		zap.String("user_email", client.email),
		zap.Int("total", h.totalClients()))

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"user_email": client.email,
		"role":       client.role,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.email]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, client.email)
			}

			h.logger.Info("websocket client disconnected",
				zap.String("user_email", client.email),
				zap.Int("total", h.totalClients()))
		}
	}
}

func (h *Hub) broadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.UserEmails == nil {
		for _, clients := range h.clients {
			for client := range clients {
				client.SendMessage(msg.Message)
			}
		}
		return
	}

	for _, email := range msg.UserEmails {
		if clients, ok := h.clients[email]; ok {
			for client := range clients {
				client.SendMessage(msg.Message)
			}
		}
	}
}

// NotifySessionExpired pushes a forced logout to all of a user's
// connections. Wired into the session registry as a timeout callback.
func (h *Hub) NotifySessionExpired(email, reason string) {
	msg := wstypes.NewMessage(wstypes.EventTypeSessionExpired, wstypes.SessionEventData{
		UserEmail: email,
		Reason:    reason,
		Message:   "Your session has expired, please sign in again",
	})
	h.broadcast <- &BroadcastMessage{
		UserEmails: []string{email},
		Message:    msg,
	}
}

// NotifyForceLogout kicks a user's connections when a new sign-in
// replaces the session they were on.
func (h *Hub) NotifyForceLogout(email, reason string) {
	msg := wstypes.NewMessage(wstypes.EventTypeForceLogout, wstypes.SessionEventData{
		UserEmail: email,
		Reason:    reason,
		Message:   "You signed in from another device, this session is closed",
	})
	h.broadcast <- &BroadcastMessage{
		UserEmails: []string{email},
		Message:    msg,
	}
}

// NotifySessionWarning tells a user their session is about to expire
// so the client can offer an extension. Wired into the session
// registry as a warning callback.
func (h *Hub) NotifySessionWarning(email string, minutesLeft int) {
	msg := wstypes.NewMessage(wstypes.EventTypeSessionWarning, wstypes.SessionEventData{
		UserEmail: email,
		Reason:    "expiring",
		Message:   fmt.Sprintf("Your session expires in %d minutes", minutesLeft),
	})
	h.broadcast <- &BroadcastMessage{
		UserEmails: []string{email},
		Message:    msg,
	}
}

// NotifyReportStatusChanged tells the report owner their report moved.
func (h *Hub) NotifyReportStatusChanged(ownerEmail string, data wstypes.ReportStatusData) {
	msg := wstypes.NewMessage(wstypes.EventTypeReportStatusChanged, data)
	h.broadcast <- &BroadcastMessage{
		UserEmails: []string{ownerEmail},
		Message:    msg,
	}
}

func (h *Hub) ConnectedClients(email string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.clients[email]; ok {
		return len(clients)
	}
	return 0
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
}
