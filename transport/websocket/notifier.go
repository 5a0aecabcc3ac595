package websocket

import (
	"log/slog"

	"github.com/gridrooms/tictactoe-backend/internal/broadcast"
	"github.com/gridrooms/tictactoe-backend/internal/entity"
	"github.com/gridrooms/tictactoe-backend/internal/usecase"
)

// Notifier turns coordinator events into wire messages and hands them to
// the hub. Delivery failures are logged, never propagated: the room
// state is already committed by the time an event is sent.
type Notifier struct {
	logger *slog.Logger
	hub    *broadcast.Hub
}

func NewNotifier(logger *slog.Logger, hub *broadcast.Hub) *Notifier {
	return &Notifier{
		logger: logger,
		hub:    hub,
	}
}

func (that *Notifier) RoomState(connectionID string, room *entity.Room, lastMove *usecase.LastMove) {
	that.send(connectionID, actionRoomState, newRoomState(room, lastMove))
}

func (that *Notifier) TurnNotice(connectionID string, isMyTurn bool) {
	that.send(connectionID, actionRoomTurn, TurnNotice{IsMyTurn: isMyTurn})
}

func (that *Notifier) PlayerLeft(connectionID string, mark string) {
	that.send(connectionID, actionRoomPlayerLeft, PlayerLeftNotice{Mark: mark})
}

func (that *Notifier) send(connectionID, action string, payload any) {
	if err := that.hub.Send(connectionID, newMessage(action, payload)); err != nil {
		that.logger.Error("failed to send event", "action", action, "connectionID", connectionID, "error", err)
	}
}
