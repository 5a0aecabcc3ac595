package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gridrooms/tictactoe-backend/internal/entity"
)

type roomManager interface {
	CreateRoom(ctx context.Context) (*entity.Room, error)
	GetRoom(ctx context.Context, code string) (*entity.Room, error)
}

type Server struct {
	logger *slog.Logger
	rooms  roomManager
}

func New(logger *slog.Logger, rooms roomManager) *Server {
	return &Server{
		logger: logger,
		rooms:  rooms,
	}
}

func (that *Server) Start(port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", that.pingHandler)
	mux.HandleFunc("POST /rooms", that.createRoomHandler)
	mux.HandleFunc("GET /rooms/{code}", that.getRoomHandler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
