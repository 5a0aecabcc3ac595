package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gridrooms/tictactoe-backend/internal/apperror"
	"github.com/gridrooms/tictactoe-backend/internal/entity"
)

type createRoomResponse struct {
	Code string `json:"code"`
}

type playerResponse struct {
	Mark      string `json:"mark"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

type roomResponse struct {
	Code    string           `json:"code"`
	Board   [9]string        `json:"board"`
	Turn    string           `json:"turn,omitempty"`
	Status  string           `json:"status"`
	Winner  string           `json:"winner,omitempty"`
	Players []playerResponse `json:"players"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) createRoomHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "createRoomHandler")

	room, err := that.rooms.CreateRoom(r.Context())
	if errors.Is(err, apperror.ErrRoomCodeExhausted) {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	if err != nil {
		log.Error("failed to create room", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to create room"})
		return
	}

	log.Info("room created", "room", room.Code)
	writeJSON(w, http.StatusCreated, createRoomResponse{Code: room.Code})
}

func (that *Server) getRoomHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "getRoomHandler")

	code := r.PathValue("code")

	room, err := that.rooms.GetRoom(r.Context(), code)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.ErrRoomNotFound.Error()})
		return
	}

	if err != nil {
		log.Error("failed to get room", "room", code, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to get room"})
		return
	}

	writeJSON(w, http.StatusOK, newRoomResponse(room))
}

func newRoomResponse(room *entity.Room) roomResponse {
	players := make([]playerResponse, 0, len(room.Players))
	for _, player := range room.Players {
		players = append(players, playerResponse{
			Mark:      player.Mark,
			Name:      player.Name,
			Connected: player.Connected,
		})
	}

	return roomResponse{
		Code:    room.Code,
		Board:   room.Board,
		Turn:    room.Turn,
		Status:  room.Status,
		Winner:  room.Winner,
		Players: players,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
