package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gridrooms/tictactoe-backend/internal/broadcast"
	"github.com/gridrooms/tictactoe-backend/internal/entity"
	"github.com/gridrooms/tictactoe-backend/internal/pkg"
)

type roomManager interface {
	CreateRoom(ctx context.Context) (*entity.Room, error)
	Join(ctx context.Context, code, connectionID, name string) (*entity.Room, error)
	Move(ctx context.Context, code, connectionID string, cell int) (*entity.Room, error)
	Reset(ctx context.Context, code, connectionID string) (*entity.Room, error)
	Disconnect(ctx context.Context, connectionID string) error
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type Server struct {
	logger *slog.Logger
	rooms  roomManager
	hub    *broadcast.Hub

	handlers map[string]func(ctx context.Context, connectionID string, payload json.RawMessage) error
}

func New(logger *slog.Logger, rooms roomManager, hub *broadcast.Hub) *Server {
	server := &Server{
		logger: logger,
		rooms:  rooms,
		hub:    hub,

		handlers: make(map[string]func(context.Context, string, json.RawMessage) error),
	}

	server.handlers[actionRoomCreate] = server.handleCreateRoom
	server.handlers[actionRoomJoin] = server.handleJoinRoom
	server.handlers[actionRoomMove] = server.handleMove
	server.handlers[actionRoomReset] = server.handleReset

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConnection - upgrades the connection and pumps its messages until
// it drops. Every connection gets a fresh opaque identity; rejoining
// after a drop is a new connection as far as the rooms are concerned.
func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	conn, err := upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	connectionID := pkg.GenerateConnectionID()
	log = log.With("connectionID", connectionID)

	that.hub.Register(connectionID, conn)
	log.Info("WebSocket connection established")

	defer func() {
		that.hub.Unregister(connectionID)

		if err := that.rooms.Disconnect(ctx, connectionID); err != nil {
			log.Error("failed to handle disconnect", "error", err)
		}

		if err := conn.Close(); err != nil {
			log.Debug("failed to close connection", "error", err)
		}

		log.Info("WebSocket connection closed")
	}()

	that.handleMessages(ctx, connectionID, conn)
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, connectionID string, conn *websocket.Conn) {
	log := that.logger.With("method", "handleMessages", "connectionID", connectionID)

	for {
		var message Message
		if err := conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			that.sendError(connectionID, message.Action, "unknown action")
			continue
		}

		if err := handler(ctx, connectionID, message.Payload); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) sendError(connectionID, action, errorMsg string) {
	if err := that.hub.Send(connectionID, newMessage(action, ErrorResponse{Error: errorMsg})); err != nil && !errors.Is(err, broadcast.ErrConnectionNotFound) {
		that.logger.Error("failed to send error response", "connectionID", connectionID, "error", err)
	}
}
