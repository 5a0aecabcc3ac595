package websocket

import (
	"encoding/json"

	"github.com/gridrooms/tictactoe-backend/internal/entity"
	"github.com/gridrooms/tictactoe-backend/internal/usecase"
)

const (
	actionRoomCreate = "room:create"
	actionRoomJoin   = "room:join"
	actionRoomMove   = "room:move"
	actionRoomReset  = "room:reset"

	actionRoomState      = "room:state"
	actionRoomTurn       = "room:turn"
	actionRoomPlayerLeft = "room:player_left"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CreateRequest struct {
	Name string `json:"name"`
}

type JoinRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type MoveRequest struct {
	Code string `json:"code"`
	Cell *int   `json:"cell"`
}

type ResetRequest struct {
	Code string `json:"code"`
}

// PlayerInfo is the client-visible slice of a player record. Connection
// IDs stay server-side.
type PlayerInfo struct {
	Mark      string `json:"mark"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// RoomState is the full room snapshot broadcast after every applied action.
type RoomState struct {
	Code     string            `json:"code"`
	Board    [9]string         `json:"board"`
	Turn     string            `json:"turn,omitempty"`
	Status   string            `json:"status"`
	Winner   string            `json:"winner,omitempty"`
	Players  []PlayerInfo      `json:"players"`
	LastMove *usecase.LastMove `json:"last_move,omitempty"`
}

type CreateResponse struct {
	Code string `json:"code"`
}

type TurnNotice struct {
	IsMyTurn bool `json:"is_my_turn"`
}

type PlayerLeftNotice struct {
	Mark string `json:"mark"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func newRoomState(room *entity.Room, lastMove *usecase.LastMove) *RoomState {
	players := make([]PlayerInfo, 0, len(room.Players))
	for _, player := range room.Players {
		players = append(players, PlayerInfo{
			Mark:      player.Mark,
			Name:      player.Name,
			Connected: player.Connected,
		})
	}

	return &RoomState{
		Code:     room.Code,
		Board:    room.Board,
		Turn:     room.Turn,
		Status:   room.Status,
		Winner:   room.Winner,
		Players:  players,
		LastMove: lastMove,
	}
}

func newMessage(action string, payload any) *Message {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}

	return &Message{
		Action:  action,
		Payload: raw,
	}
}
