package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/DaniRico987/Sagittarius/internal/app/router"
	"github.com/DaniRico987/Sagittarius/internal/app/server/ws"
	"github.com/DaniRico987/Sagittarius/internal/core/contracts"
	"github.com/DaniRico987/Sagittarius/pkg/middleware"
)

const (
	heartbeatInterval = 30 * time.Second
	presenceTTL       = 60 * time.Second
)

type WSHandler struct {
	hub      contracts.Registry
	router   *router.Router
	presence contracts.PresenceStore

	heartbeatInterval time.Duration
	presenceTTL       time.Duration
}

func NewWSHandler(hub contracts.Registry, rt *router.Router, presence contracts.PresenceStore) *WSHandler {
	return &WSHandler{
		hub:               hub,
		router:            rt,
		presence:          presence,
		heartbeatInterval: heartbeatInterval,
		presenceTTL:       presenceTTL,
	}
}

func (s *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log, _ := r.Context().Value(middleware.LoggerKey).(*slog.Logger)
	span := trace.SpanFromContext(r.Context())
	userID, ok := middleware.UserFromContext(r.Context())
	if !ok {
		log.ErrorContext(r.Context(), "ws handler - unauthorised missing user_id")
		http.Error(w, "Unauthorized: User ID missing", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	// The connection outlives the upgrade request.
	sessionCtx := context.WithoutCancel(r.Context())
	ctx, cancel := context.WithCancel(sessionCtx)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // tighten later
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade - ws upgrade failed", "err", err)
		cancel()
		return
	}
	conn.SetCloseHandler(func(code int, text string) error {
		log.Info("ws handler - ws closed", "user_id", userID)
		cancel()
		return nil
	})

	sock := ws.NewWebSocket(ctx, log, conn)
	client := ws.NewClient(ctx, sock, userID)

	s.hub.Register(client)
	s.hub.JoinUser(userID, client)
	defer func() {
		// Abrupt disconnects never reach the close handler; the
		// heartbeat must stop here too or the user stays online.
		cancel()
		s.hub.Unregister(client)
		if err := s.presence.SetOffline(context.WithoutCancel(ctx), userID); err != nil {
			log.Warn("ws handler - set offline failed", "user_id", userID, "err", err)
		}
		client.Close()
	}()
	log.InfoContext(r.Context(), "ws handler - ws connection established", "user_id", userID, "conn_id", client.ID())

	go s.heartbeat(ctx, log, userID)

	// Frames are dispatched synchronously so events from one
	// connection are handled in arrival order.
	sock.ReadLoop(func(data []byte) {
		s.router.HandleEvent(ctx, client, data)
	})
}

func (s *WSHandler) heartbeat(ctx context.Context, log *slog.Logger, userID string) {
	ticker := time.NewTicker(s.heartbeatInterval)
	defer ticker.Stop()

	if err := s.presence.SetOnline(ctx, userID, s.presenceTTL); err != nil {
		log.Warn("ws handler - heartbeat - set online failed", "user_id", userID, "err", err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.presence.SetOnline(ctx, userID, s.presenceTTL); err != nil {
				log.Warn("ws handler - heartbeat - set online failed", "user_id", userID, "err", err)
			}
		}
	}
}
