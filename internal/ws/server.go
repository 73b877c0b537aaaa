package ws

import (
	"context"
	"fmt"
	"net/http"
	"time"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/sirupsen/logrus"

	"budgeter/internal/auth"
	"budgeter/internal/ban"
)

// Events pushed to clients
const (
	EventConnected      = "connected"
	EventSessionRevoked = "session:revoked"
	EventBanLifted      = "session:restored"
)

// SessionChecker reports the live ban status of a session holder
type SessionChecker interface {
	CheckSession(ctx context.Context, userID int) (ban.BanStatus, error)
}

// SessionCheckFunc adapts a function to SessionChecker
type SessionCheckFunc func(ctx context.Context, userID int) (ban.BanStatus, error)

// CheckSession implements SessionChecker
func (f SessionCheckFunc) CheckSession(ctx context.Context, userID int) (ban.BanStatus, error) {
	return f(ctx, userID)
}

type broadcaster interface {
	BroadcastToRoom(namespace, room, event string, args ...interface{}) bool
}

// connSession is stored as the socket.io connection context
type connSession struct {
	UserID int
}

// RevokedPayload is the body of a session:revoked push
type RevokedPayload struct {
	Reason      *string    `json:"reason"`
	BannedUntil *time.Time `json:"bannedUntil"`
}

// Hub pushes ban changes to the sockets of the affected user. It implements
// ban.Notifier.
type Hub struct {
	server   *socketio.Server
	bc       broadcaster
	tokens   *auth.TokenManager
	sessions SessionChecker
	logger   *logrus.Entry
}

// NewHub creates the Socket.IO server. sessions may be nil.
func NewHub(tokens *auth.TokenManager, sessions SessionChecker, logger *logrus.Entry) *Hub {
	checkOrigin := func(r *http.Request) bool {
		// Tokens, not cookies, authenticate the socket
		return true
	}
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&polling.Transport{CheckOrigin: checkOrigin},
			&websocket.Transport{CheckOrigin: checkOrigin},
		},
	})

	h := &Hub{
		server:   server,
		bc:       server,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger.WithField("component", "ws"),
	}

	server.OnConnect("/", h.onConnect)

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		h.logger.WithFields(logrus.Fields{
			"conn_id": s.ID(),
			"reason":  reason,
		}).Debug("Client disconnected")
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		entry := h.logger.WithError(e)
		if s != nil {
			entry = entry.WithField("conn_id", s.ID())
		}
		entry.Warn("Socket error")
	})

	return h
}

// Start serves the Socket.IO engine until Close is called
func (h *Hub) Start() {
	go func() {
		if err := h.server.Serve(); err != nil {
			h.logger.WithError(err).Error("Socket.IO server stopped")
		}
	}()
	h.logger.Info("Socket.IO server initialized")
}

// Close shuts the Socket.IO server down
func (h *Hub) Close() error {
	return h.server.Close()
}

// Handler returns the authenticated HTTP handler to mount at /socket.io/
func (h *Hub) Handler() http.Handler {
	return WrapWithAuth(h.server, h.tokens, h.logger)
}

func (h *Hub) onConnect(s socketio.Conn) error {
	u := s.URL()
	token := tokenFrom(&u, s.RemoteHeader())
	claims, err := h.tokens.Parse(token)
	if err != nil {
		h.logger.WithField("conn_id", s.ID()).Warn("Connection rejected: invalid token")
		return fmt.Errorf("unauthorized")
	}

	s.SetContext(connSession{UserID: claims.UID})
	s.Join(RoomFor(claims.UID))
	s.Emit(EventConnected, map[string]interface{}{"ok": true})

	h.logger.WithFields(logrus.Fields{
		"conn_id": s.ID(),
		"user_id": claims.UID,
	}).Debug("Client connected")

	// A session holder banned before connecting is told right away.
	if h.sessions != nil {
		status, err := h.sessions.CheckSession(context.Background(), claims.UID)
		if err != nil {
			h.logger.WithError(err).WithField("user_id", claims.UID).Debug("Session check on connect failed")
			return nil
		}
		if status.IsBanned {
			s.Emit(EventSessionRevoked, RevokedPayload{Reason: status.Reason, BannedUntil: status.BannedUntil})
		}
	}
	return nil
}

// RoomFor returns the room every socket of userID joins
func RoomFor(userID int) string {
	return fmt.Sprintf("user:%d", userID)
}

// NotifyBanned implements ban.Notifier
func (h *Hub) NotifyBanned(userID int, status ban.BanStatus) {
	delivered := h.bc.BroadcastToRoom("/", RoomFor(userID), EventSessionRevoked, RevokedPayload{
		Reason:      status.Reason,
		BannedUntil: status.BannedUntil,
	})
	h.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"delivered": delivered,
	}).Debug("Pushed session revocation")
}

// NotifyUnbanned implements ban.Notifier
func (h *Hub) NotifyUnbanned(userID int) {
	h.bc.BroadcastToRoom("/", RoomFor(userID), EventBanLifted, map[string]interface{}{"ok": true})
}
