package entity

import "time"

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"

	MarkX = "X"
	MarkO = "O"

	WinnerNone = ""
	WinnerDraw = "draw"

	EmptyCell = ""
)

// Room is one match instance, addressed by its code. Players are stored
// inside the room record so a single write commits the whole state.
type Room struct {
	Code      string    `json:"code"`
	Board     [9]string `json:"board"`
	Turn      string    `json:"turn"`
	Status    string    `json:"status"`
	Winner    string    `json:"winner"`
	Players   []*Player `json:"players,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewRoom(code string) *Room {
	now := time.Now().UTC()

	return &Room{
		Code:      code,
		Board:     [9]string{},
		Turn:      MarkX,
		Status:    StatusWaiting,
		Winner:    WinnerNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

// PlayerByMark - returns the player record holding the mark, if any.
func (that *Room) PlayerByMark(mark string) *Player {
	for _, player := range that.Players {
		if player.Mark == mark {
			return player
		}
	}

	return nil
}

// PlayerByConnection - returns the player record owned by the connection, if any.
func (that *Room) PlayerByConnection(connectionID string) *Player {
	for _, player := range that.Players {
		if player.ConnectionID == connectionID {
			return player
		}
	}

	return nil
}

// ConnectedPlayers - counts records with a live connection.
func (that *Room) ConnectedPlayers() int {
	count := 0
	for _, player := range that.Players {
		if player.Connected {
			count++
		}
	}

	return count
}

// ResetBoard - clears the board back to a fresh match: X to move, playing, no winner.
func (that *Room) ResetBoard() {
	that.Board = [9]string{}
	that.Turn = MarkX
	that.Status = StatusPlaying
	that.Winner = WinnerNone
	that.UpdatedAt = time.Now().UTC()
}

// ToggleMark - returns the opposite mark.
func ToggleMark(mark string) string {
	if mark == MarkX {
		return MarkO
	}

	return MarkX
}
