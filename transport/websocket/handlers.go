package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gridrooms/tictactoe-backend/internal/apperror"
)

func (that *Server) handleCreateRoom(ctx context.Context, connectionID string, payload json.RawMessage) error {
	log := that.logger.With("method", "handleCreateRoom", "connectionID", connectionID)

	var req CreateRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	room, err := that.rooms.CreateRoom(ctx)
	if errors.Is(err, apperror.ErrRoomCodeExhausted) {
		that.sendError(connectionID, actionRoomCreate, err.Error())
		return nil
	}

	if err != nil {
		log.Error("failed to create room", "error", err)
		that.sendError(connectionID, actionRoomCreate, "failed to create room")
		return nil
	}

	if err = that.hub.Send(connectionID, newMessage(actionRoomCreate, CreateResponse{Code: room.Code})); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	// The creator joins their own room right away; the join broadcast
	// carries the initial room state.
	if _, err = that.rooms.Join(ctx, room.Code, connectionID, req.Name); err != nil {
		log.Error("failed to join created room", "room", room.Code, "error", err)
		that.sendError(connectionID, actionRoomJoin, "failed to join room")
		return nil
	}

	log.Info("room created", "room", room.Code)

	return nil
}

func (that *Server) handleJoinRoom(ctx context.Context, connectionID string, payload json.RawMessage) error {
	log := that.logger.With("method", "handleJoinRoom", "connectionID", connectionID)

	var req JoinRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	if req.Code == "" {
		that.sendError(connectionID, actionRoomJoin, "room code is required")
		return nil
	}

	room, err := that.rooms.Join(ctx, req.Code, connectionID, req.Name)
	if errors.Is(err, apperror.ErrRoomNotFound) || errors.Is(err, apperror.ErrRoomFull) {
		that.sendError(connectionID, actionRoomJoin, unwrapMessage(err))
		return nil
	}

	if err != nil {
		log.Error("failed to join room", "room", req.Code, "error", err)
		that.sendError(connectionID, actionRoomJoin, "failed to join room")
		return nil
	}

	log.Info("player joined room", "room", room.Code)

	return nil
}

func (that *Server) handleMove(ctx context.Context, connectionID string, payload json.RawMessage) error {
	log := that.logger.With("method", "handleMove", "connectionID", connectionID)

	var req MoveRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	if req.Cell == nil {
		that.sendError(connectionID, actionRoomMove, "cell is required")
		return nil
	}

	room, err := that.rooms.Move(ctx, req.Code, connectionID, *req.Cell)

	switch {
	case errors.Is(err, apperror.ErrNotInRoom),
		errors.Is(err, apperror.ErrGameNotInProgress),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrInvalidCell),
		errors.Is(err, apperror.ErrCellOccupied):
		that.sendError(connectionID, actionRoomMove, unwrapMessage(err))
		return nil
	case err != nil:
		log.Error("failed to make move", "room", req.Code, "error", err)
		that.sendError(connectionID, actionRoomMove, "failed to make move")
		return nil
	}

	log.Info("player moved", "room", room.Code, "cell", *req.Cell)

	return nil
}

func (that *Server) handleReset(ctx context.Context, connectionID string, payload json.RawMessage) error {
	log := that.logger.With("method", "handleReset", "connectionID", connectionID)

	var req ResetRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	room, err := that.rooms.Reset(ctx, req.Code, connectionID)
	if errors.Is(err, apperror.ErrNotInRoom) {
		that.sendError(connectionID, actionRoomReset, unwrapMessage(err))
		return nil
	}

	if err != nil {
		log.Error("failed to reset room", "room", req.Code, "error", err)
		that.sendError(connectionID, actionRoomReset, "failed to reset room")
		return nil
	}

	log.Info("room reset", "room", room.Code)

	return nil
}

// unwrapMessage - strips wrapping down to the sentinel's message, so the
// client sees "room not found" rather than the server's wrap chain.
func unwrapMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}
