package entity

// Player is a room membership record. ConnectionID is empty while the
// player is disconnected; the mark never changes for the room's lifetime.
type Player struct {
	ConnectionID string `json:"connection_id,omitempty"`
	RoomCode     string `json:"room_code"`
	Mark         string `json:"mark"`
	Name         string `json:"name"`
	Connected    bool   `json:"connected"`
}
