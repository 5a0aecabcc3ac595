package session

import "sync"

// Binding ties a live connection to its room and mark.
type Binding struct {
	RoomCode string
	Mark     string
}

// Registry is process-local and non-authoritative: it is rebuilt from
// join messages after a restart, while the room store survives.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[string]Binding),
	}
}

// Bind - associates the connection with a (room, mark) pair, replacing
// any previous binding for the connection.
func (that *Registry) Bind(connectionID, roomCode, mark string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.bindings[connectionID] = Binding{RoomCode: roomCode, Mark: mark}
}

func (that *Registry) Lookup(connectionID string) (Binding, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	binding, ok := that.bindings[connectionID]

	return binding, ok
}

func (that *Registry) Unbind(connectionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.bindings, connectionID)
}
