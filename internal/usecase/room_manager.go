package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gridrooms/tictactoe-backend/internal/apperror"
	"github.com/gridrooms/tictactoe-backend/internal/entity"
	"github.com/gridrooms/tictactoe-backend/internal/pkg"
	"github.com/gridrooms/tictactoe-backend/internal/repository"
	"github.com/gridrooms/tictactoe-backend/internal/session"
	"github.com/gridrooms/tictactoe-backend/internal/tictactoe"
)

const cleanupTimeout = 10 * time.Second

// LastMove identifies the cell written by the most recent move.
type LastMove struct {
	Position int    `json:"position"`
	Mark     string `json:"mark"`
}

type roomRepo interface {
	Create(ctx context.Context, room *entity.Room) error
	GetByCode(ctx context.Context, code string) (*entity.Room, error)
	Save(ctx context.Context, room *entity.Room) error
	DeleteByCode(ctx context.Context, code string) error
}

// notifier delivers coordinator-produced events. Send failures are the
// notifier's problem; the coordinator never aborts on them.
type notifier interface {
	RoomState(connectionID string, room *entity.Room, lastMove *LastMove)
	TurnNotice(connectionID string, isMyTurn bool)
	PlayerLeft(connectionID string, mark string)
}

// Options carry the room lifecycle knobs from config.
type Options struct {
	GracePeriod     time.Duration
	CodeLength      int
	CodeMaxAttempts int
	DefaultName     string
}

// RoomManager validates and applies player actions against the room
// store. All operations on one room code run under a per-room mutex,
// held through the store round trip and the resulting broadcasts, so
// the order of broadcast states matches the order of commits.
type RoomManager struct {
	logger   *slog.Logger
	rooms    roomRepo
	sessions *session.Registry
	notifier notifier
	opts     Options

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	timersMu sync.Mutex
	timers   map[string]*time.Timer
}

func NewRoomManager(logger *slog.Logger, rooms roomRepo, sessions *session.Registry, notifier notifier, opts Options) *RoomManager {
	return &RoomManager{
		logger:   logger,
		rooms:    rooms,
		sessions: sessions,
		notifier: notifier,
		opts:     opts,

		locks:  make(map[string]*sync.Mutex),
		timers: make(map[string]*time.Timer),
	}
}

// CreateRoom - reserves a fresh code and persists an empty waiting room.
// Code collisions are retried up to the attempt budget.
func (that *RoomManager) CreateRoom(ctx context.Context) (*entity.Room, error) {
	for attempt := 0; attempt < that.opts.CodeMaxAttempts; attempt++ {
		room := entity.NewRoom(pkg.GenerateRoomCode(that.opts.CodeLength))

		err := that.rooms.Create(ctx, room)
		if errors.Is(err, repository.ErrRoomCodeTaken) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}

		// A room nobody ever joins must not sit in the store forever;
		// the fire-time live check keeps it if a player arrived.
		that.scheduleCleanup(room.Code)

		return room, nil
	}

	return nil, apperror.ErrRoomCodeExhausted
}

// Join - binds the connection into the room. The first joiner gets X,
// the second O; a disconnected record holding the assigned mark is taken
// over so marks stay stable across reconnects. A connection holds at
// most one membership: joining while bound elsewhere releases the old
// room first, and re-joining the same room refreshes its own slot.
func (that *RoomManager) Join(ctx context.Context, code, connectionID, name string) (*entity.Room, error) {
	if prior, ok := that.sessions.Lookup(connectionID); ok && prior.RoomCode != code {
		that.sessions.Unbind(connectionID)

		if err := that.releaseMembership(ctx, prior.RoomCode, connectionID, prior.Mark); err != nil {
			return nil, fmt.Errorf("failed to release previous room: %w", err)
		}
	}

	unlock := that.lockRoom(code)
	defer unlock()

	room, err := that.rooms.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	if name == "" {
		name = that.opts.DefaultName
	}

	if existing := room.PlayerByConnection(connectionID); existing != nil {
		existing.Name = name
		existing.Connected = true
		room.UpdatedAt = time.Now().UTC()

		if err = that.rooms.Save(ctx, room); err != nil {
			return nil, fmt.Errorf("failed to save room: %w", err)
		}

		that.sessions.Bind(connectionID, code, existing.Mark)
		that.broadcastRoom(room, nil)

		return room, nil
	}

	connected := room.ConnectedPlayers()
	if connected >= 2 {
		return nil, apperror.ErrRoomFull
	}

	mark := entity.MarkX
	if connected == 1 {
		for _, player := range room.Players {
			if player.Connected {
				mark = entity.ToggleMark(player.Mark)
				break
			}
		}
	}

	if existing := room.PlayerByMark(mark); existing != nil {
		existing.ConnectionID = connectionID
		existing.Name = name
		existing.Connected = true
	} else {
		room.Players = append(room.Players, &entity.Player{
			ConnectionID: connectionID,
			RoomCode:     code,
			Mark:         mark,
			Name:         name,
			Connected:    true,
		})
	}

	if room.IsWaiting() && room.ConnectedPlayers() == 2 {
		room.Status = entity.StatusPlaying
	}

	room.UpdatedAt = time.Now().UTC()

	if err = that.rooms.Save(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	that.sessions.Bind(connectionID, code, mark)
	that.broadcastRoom(room, nil)

	return room, nil
}

// Move - applies one move for the connection's bound mark.
func (that *RoomManager) Move(ctx context.Context, code, connectionID string, cell int) (*entity.Room, error) {
	binding, ok := that.sessions.Lookup(connectionID)
	if !ok || binding.RoomCode != code {
		return nil, apperror.ErrNotInRoom
	}

	unlock := that.lockRoom(code)
	defer unlock()

	room, err := that.rooms.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	if !room.IsPlaying() {
		return nil, apperror.ErrGameNotInProgress
	}

	if room.Turn != binding.Mark {
		return nil, apperror.ErrNotYourTurn
	}

	if err = tictactoe.ApplyMove(&room.Board, cell, binding.Mark); err != nil {
		return nil, fmt.Errorf("invalid move: %w", err)
	}

	if winner := tictactoe.Evaluate(room.Board); winner != entity.WinnerNone {
		room.Winner = winner
		room.Status = entity.StatusFinished
		room.Turn = ""
	} else {
		room.Turn = entity.ToggleMark(binding.Mark)
	}

	room.UpdatedAt = time.Now().UTC()

	if err = that.rooms.Save(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	that.broadcastRoom(room, &LastMove{Position: cell, Mark: binding.Mark})

	return room, nil
}

// Reset - starts the room over: empty board, X to move. Either bound
// player may reset, whatever the room's status.
func (that *RoomManager) Reset(ctx context.Context, code, connectionID string) (*entity.Room, error) {
	binding, ok := that.sessions.Lookup(connectionID)
	if !ok || binding.RoomCode != code {
		return nil, apperror.ErrNotInRoom
	}

	unlock := that.lockRoom(code)
	defer unlock()

	room, err := that.rooms.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	room.ResetBoard()

	if err = that.rooms.Save(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	that.broadcastRoom(room, nil)

	return room, nil
}

// Disconnect - releases the connection's slot, tells the remaining
// players which mark left, and arms the grace-period cleanup.
func (that *RoomManager) Disconnect(ctx context.Context, connectionID string) error {
	binding, ok := that.sessions.Lookup(connectionID)
	if !ok {
		return nil
	}

	that.sessions.Unbind(connectionID)

	return that.releaseMembership(ctx, binding.RoomCode, connectionID, binding.Mark)
}

// releaseMembership - gives up the connection's slot in the room: the
// record stays, disconnected, so the mark survives a reconnect.
func (that *RoomManager) releaseMembership(ctx context.Context, code, connectionID, mark string) error {
	unlock := that.lockRoom(code)
	defer unlock()

	room, err := that.rooms.GetByCode(ctx, code)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get room: %w", err)
	}

	if player := room.PlayerByConnection(connectionID); player != nil {
		player.Connected = false
		player.ConnectionID = ""
	}

	room.UpdatedAt = time.Now().UTC()

	if err = that.rooms.Save(ctx, room); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}

	for _, player := range room.Players {
		if !player.Connected {
			continue
		}

		that.notifier.PlayerLeft(player.ConnectionID, mark)
	}

	that.scheduleCleanup(code)

	return nil
}

// GetRoom - read-only room lookup.
func (that *RoomManager) GetRoom(ctx context.Context, code string) (*entity.Room, error) {
	room, err := that.rooms.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

// scheduleCleanup - arms (or re-arms) the grace timer for the room.
func (that *RoomManager) scheduleCleanup(code string) {
	that.timersMu.Lock()
	defer that.timersMu.Unlock()

	if timer, ok := that.timers[code]; ok {
		timer.Stop()
	}

	that.timers[code] = time.AfterFunc(that.opts.GracePeriod, func() {
		that.cleanupRoom(code)
	})
}

// cleanupRoom - deletes the room once the grace period passed with no
// connected players. The room is re-read at fire time, so a reconnect
// under any connection identity cancels the cleanup implicitly.
func (that *RoomManager) cleanupRoom(code string) {
	log := that.logger.With("method", "cleanupRoom", "room", code)

	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	that.timersMu.Lock()
	delete(that.timers, code)
	that.timersMu.Unlock()

	unlock := that.lockRoom(code)
	defer unlock()

	room, err := that.rooms.GetByCode(ctx, code)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		that.releaseLock(code)
		return
	}

	if err != nil {
		log.Error("failed to get room for cleanup", "error", err)
		return
	}

	if room.ConnectedPlayers() > 0 {
		return
	}

	if err = that.rooms.DeleteByCode(ctx, code); err != nil {
		log.Error("failed to delete room", "error", err)
		return
	}

	that.releaseLock(code)

	log.Info("room deleted after grace period")
}

// releaseLock - drops the per-room mutex entry once the room is gone.
// A goroutine still holding the old mutex only races lookups of a
// deleted code, which fail with not-found either way.
func (that *RoomManager) releaseLock(code string) {
	that.locksMu.Lock()
	defer that.locksMu.Unlock()

	delete(that.locks, code)
}

// broadcastRoom - fans out the committed state, then each connected
// player's turn flag from the same snapshot. Runs under the room lock.
func (that *RoomManager) broadcastRoom(room *entity.Room, lastMove *LastMove) {
	for _, player := range room.Players {
		if !player.Connected {
			continue
		}

		that.notifier.RoomState(player.ConnectionID, room, lastMove)
	}

	for _, player := range room.Players {
		if !player.Connected {
			continue
		}

		that.notifier.TurnNotice(player.ConnectionID, player.Mark == room.Turn && room.IsPlaying())
	}
}

func (that *RoomManager) lockRoom(code string) func() {
	that.locksMu.Lock()
	mu, ok := that.locks[code]
	if !ok {
		mu = &sync.Mutex{}
		that.locks[code] = mu
	}
	that.locksMu.Unlock()

	mu.Lock()

	return mu.Unlock
}
